package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/amadou/nexus-connect/internal/apperror"
	"github.com/amadou/nexus-connect/internal/model"
	"github.com/amadou/nexus-connect/internal/repository"
)

// EntrepreneurDB implements repository.EntrepreneurRepository.
type EntrepreneurDB struct {
	db *DB
}

// compile-time check
var _ repository.EntrepreneurRepository = (*EntrepreneurDB)(nil)

const entrepreneurColumns = `id, user_id, profile_type, first_name, last_name,
	company_name, activity_name, logo, description, tags, phone, whatsapp,
	email, location, city, website, portfolio, rating, review_count,
	is_premium, created_at, updated_at`

// Create inserts a new entrepreneur profile. ID and both timestamps are
// generated here. A second profile for the same user violates the
// UNIQUE(user_id) constraint and surfaces as apperror.ErrConflict.
func (r *EntrepreneurDB) Create(ctx context.Context, ent *model.Entrepreneur) error {
	ent.ID = xid.New().String()
	now := time.Now().UTC()
	ent.CreatedAt = now
	ent.UpdatedAt = now

	tags, portfolio, err := encodeProfileJSON(ent)
	if err != nil {
		return err
	}

	_, err = r.db.conn.ExecContext(ctx,
		`INSERT INTO entrepreneurs (`+entrepreneurColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ent.ID,
		ent.UserID,
		ent.ProfileType,
		ent.FirstName,
		ent.LastName,
		ent.CompanyName,
		ent.ActivityName,
		ent.Logo,
		ent.Description,
		tags,
		ent.Phone,
		ent.Whatsapp,
		ent.Email,
		ent.Location,
		ent.City,
		ent.Website,
		portfolio,
		ent.Rating,
		ent.ReviewCount,
		ent.IsPremium,
		encodeTime(ent.CreatedAt),
		encodeTime(ent.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user already has a profile")
		}
		return fmt.Errorf("sqlite: inserting entrepreneur for user %s: %w", ent.UserID, err)
	}

	return nil
}

// GetByID retrieves a profile by its ID.
func (r *EntrepreneurDB) GetByID(ctx context.Context, id string) (*model.Entrepreneur, error) {
	return r.getEntrepreneur(ctx,
		`SELECT `+entrepreneurColumns+` FROM entrepreneurs WHERE id = ?`, id)
}

// GetByUserID retrieves the profile owned by a user.
func (r *EntrepreneurDB) GetByUserID(ctx context.Context, userID string) (*model.Entrepreneur, error) {
	return r.getEntrepreneur(ctx,
		`SELECT `+entrepreneurColumns+` FROM entrepreneurs WHERE user_id = ?`, userID)
}

func (r *EntrepreneurDB) getEntrepreneur(ctx context.Context, query, arg string) (*model.Entrepreneur, error) {
	row := r.db.conn.QueryRowContext(ctx, query, arg)
	ent, err := scanEntrepreneur(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("entrepreneur", arg)
		}
		return nil, fmt.Errorf("sqlite: getting entrepreneur %s: %w", arg, err)
	}
	return ent, nil
}

// Update persists the full profile record. The caller (the service layer)
// is responsible for keeping the immutable fields untouched; this method
// writes every mutable column plus updated_at.
func (r *EntrepreneurDB) Update(ctx context.Context, ent *model.Entrepreneur) error {
	ent.UpdatedAt = time.Now().UTC()

	tags, portfolio, err := encodeProfileJSON(ent)
	if err != nil {
		return err
	}

	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE entrepreneurs SET
			profile_type = ?, first_name = ?, last_name = ?, company_name = ?,
			activity_name = ?, logo = ?, description = ?, tags = ?, phone = ?,
			whatsapp = ?, email = ?, location = ?, city = ?, website = ?,
			portfolio = ?, updated_at = ?
		 WHERE id = ?`,
		ent.ProfileType,
		ent.FirstName,
		ent.LastName,
		ent.CompanyName,
		ent.ActivityName,
		ent.Logo,
		ent.Description,
		tags,
		ent.Phone,
		ent.Whatsapp,
		ent.Email,
		ent.Location,
		ent.City,
		ent.Website,
		portfolio,
		encodeTime(ent.UpdatedAt),
		ent.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating entrepreneur %s: %w", ent.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("entrepreneur", ent.ID)
	}

	return nil
}

// List runs a filtered, sorted, paginated query over profiles.
//
// Filters are AND'd. The free-text filter is an OR block of LIKE matches
// across the five searchable fields; LIKE is case-insensitive for ASCII in
// SQLite, which matches the case-insensitive substring semantics we want.
// The tag filter uses json_each over the tags column: a profile matches
// when at least one of its tags is in the requested set.
func (r *EntrepreneurDB) List(ctx context.Context, filter repository.ProfileFilter) ([]model.Entrepreneur, error) {
	var (
		where []string
		args  []any
	)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where,
			`(first_name LIKE ? OR last_name LIKE ? OR company_name LIKE ?
			  OR activity_name LIKE ? OR description LIKE ?)`)
		args = append(args, pattern, pattern, pattern, pattern, pattern)
	}
	if filter.Location != "" {
		where = append(where, `location = ?`)
		args = append(args, filter.Location)
	}
	if filter.City != "" {
		where = append(where, `city = ?`)
		args = append(args, filter.City)
	}
	if filter.ProfileType != "" {
		where = append(where, `profile_type = ?`)
		args = append(args, filter.ProfileType)
	}
	if len(filter.Tags) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Tags))
		where = append(where,
			`EXISTS (SELECT 1 FROM json_each(entrepreneurs.tags)
			 WHERE json_each.value IN (`+placeholders[:len(placeholders)-1]+`))`)
		for _, tag := range filter.Tags {
			args = append(args, tag)
		}
	}
	if filter.MinRating > 0 {
		where = append(where, `rating >= ?`)
		args = append(args, filter.MinRating)
	}

	query := `SELECT ` + entrepreneurColumns + ` FROM entrepreneurs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}

	// Always descending. "relevance" has no text scoring behind it and
	// degrades to rating.
	switch filter.Sort {
	case repository.SortRating, repository.SortRelevance:
		query += ` ORDER BY rating DESC`
	default:
		query += ` ORDER BY created_at DESC`
	}

	query += ` LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Skip)

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing entrepreneurs: %w", err)
	}
	defer rows.Close()

	ents := []model.Entrepreneur{}
	for rows.Next() {
		ent, err := scanEntrepreneur(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning entrepreneur row: %w", err)
		}
		ents = append(ents, *ent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating entrepreneur rows: %w", err)
	}

	return ents, nil
}

// Count returns the number of profiles.
func (r *EntrepreneurDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM entrepreneurs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting entrepreneurs: %w", err)
	}
	return n, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntrepreneur(s scanner) (*model.Entrepreneur, error) {
	var (
		ent                  model.Entrepreneur
		tags, portfolio      string
		createdAt, updatedAt string
	)

	err := s.Scan(
		&ent.ID,
		&ent.UserID,
		&ent.ProfileType,
		&ent.FirstName,
		&ent.LastName,
		&ent.CompanyName,
		&ent.ActivityName,
		&ent.Logo,
		&ent.Description,
		&tags,
		&ent.Phone,
		&ent.Whatsapp,
		&ent.Email,
		&ent.Location,
		&ent.City,
		&ent.Website,
		&portfolio,
		&ent.Rating,
		&ent.ReviewCount,
		&ent.IsPremium,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &ent.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags for %s: %w", ent.ID, err)
	}
	if err := json.Unmarshal([]byte(portfolio), &ent.Portfolio); err != nil {
		return nil, fmt.Errorf("decoding portfolio for %s: %w", ent.ID, err)
	}
	if ent.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if ent.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, err
	}

	return &ent, nil
}

// encodeProfileJSON serializes the tags and portfolio columns. nil slices
// encode as empty arrays so the stored JSON is always valid for json_each.
func encodeProfileJSON(ent *model.Entrepreneur) (tags, portfolio string, err error) {
	if ent.Tags == nil {
		ent.Tags = []string{}
	}
	if ent.Portfolio == nil {
		ent.Portfolio = []model.PortfolioItem{}
	}

	t, err := json.Marshal(ent.Tags)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding tags: %w", err)
	}
	p, err := json.Marshal(ent.Portfolio)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding portfolio: %w", err)
	}

	return string(t), string(p), nil
}
