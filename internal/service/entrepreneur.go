package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amadou/nexus-connect/internal/apperror"
	"github.com/amadou/nexus-connect/internal/model"
	"github.com/amadou/nexus-connect/internal/repository"
)

// Listing pagination bounds. The limit is clamped so a single request
// can't drain the table.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ProfileInput is the mutable portion of an entrepreneur profile, shared
// by create and update. The validator tags encode the business
// constraints: description capped at 200 characters, at most 5 tags, and
// the closed profileType set.
type ProfileInput struct {
	ProfileType  string                `json:"profileType" validate:"required,oneof=entreprise freelance pme artisan ONG cabinet organisation autre"`
	FirstName    string                `json:"firstName"`
	LastName     string                `json:"lastName"`
	CompanyName  string                `json:"companyName"`
	ActivityName string                `json:"activityName"`
	Logo         string                `json:"logo"`
	Description  string                `json:"description" validate:"required,max=200"`
	Tags         []string              `json:"tags" validate:"max=5"`
	Phone        string                `json:"phone" validate:"required"`
	Whatsapp     string                `json:"whatsapp" validate:"required"`
	Email        string                `json:"email" validate:"required,email"`
	Location     string                `json:"location" validate:"required"`
	City         string                `json:"city" validate:"required"`
	Website      string                `json:"website"`
	Portfolio    []model.PortfolioItem `json:"portfolio" validate:"dive"`
}

// EntrepreneurService handles profile CRUD and the public listing query.
type EntrepreneurService struct {
	profiles repository.EntrepreneurRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewEntrepreneurService creates an EntrepreneurService.
func NewEntrepreneurService(
	profiles repository.EntrepreneurRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *EntrepreneurService {
	return &EntrepreneurService{
		profiles: profiles,
		users:    users,
		logger:   logger,
	}
}

// Create validates and saves a new profile for userID, then flips the
// owner's hasProfile flag. A user who already owns a profile gets a
// conflict; the UNIQUE(user_id) constraint backs the check when two
// creations race.
func (s *EntrepreneurService) Create(ctx context.Context, userID string, input ProfileInput) (*model.Entrepreneur, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}

	_, err := s.profiles.GetByUserID(ctx, userID)
	if err == nil {
		return nil, apperror.Conflict("user already has a profile")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/entrepreneur: checking profile for user %s: %w", userID, err)
	}

	ent := &model.Entrepreneur{UserID: userID}
	applyInput(ent, input)

	if err := s.profiles.Create(ctx, ent); err != nil {
		return nil, fmt.Errorf("service/entrepreneur: creating profile for user %s: %w", userID, err)
	}

	if err := s.users.SetHasProfile(ctx, userID, true); err != nil {
		return nil, fmt.Errorf("service/entrepreneur: flagging profile for user %s: %w", userID, err)
	}

	s.logger.Info("profile created",
		slog.String("profileID", ent.ID),
		slog.String("userID", userID),
	)

	return ent, nil
}

// Get returns the public (contact-redacted) view of a profile.
func (s *EntrepreneurService) Get(ctx context.Context, id string) (*model.EntrepreneurPublic, error) {
	ent, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := ent.Public()
	return &pub, nil
}

// GetContact returns exactly the three contact fields of a profile. This
// is the only path by which contact details leave the system.
func (s *EntrepreneurService) GetContact(ctx context.Context, id string) (*model.ContactInfo, error) {
	ent, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := ent.Contact()
	return &info, nil
}

// GetOwn returns the caller's full, unredacted profile.
func (s *EntrepreneurService) GetOwn(ctx context.Context, userID string) (*model.Entrepreneur, error) {
	ent, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("profile for user", userID)
		}
		return nil, err
	}
	return ent, nil
}

// Update replaces the mutable fields of a profile. Only the owner may
// update; id, userId, createdAt, rating, reviewCount and isPremium never
// change through this path.
func (s *EntrepreneurService) Update(ctx context.Context, id, callerID string, input ProfileInput) (*model.Entrepreneur, error) {
	ent, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ent.UserID != callerID {
		return nil, apperror.Forbidden("not authorized to update this profile")
	}

	if err := checkInput(input); err != nil {
		return nil, err
	}

	applyInput(ent, input)

	if err := s.profiles.Update(ctx, ent); err != nil {
		return nil, fmt.Errorf("service/entrepreneur: updating profile %s: %w", id, err)
	}

	s.logger.Info("profile updated", slog.String("profileID", id))

	return ent, nil
}

// List runs the public search. Limit defaults to 50 and is clamped to 100;
// skip is floored at zero; unknown sort keys fall back to createdAt.
// Returns redacted views only, whatever the filters.
func (s *EntrepreneurService) List(ctx context.Context, filter repository.ProfileFilter) ([]model.EntrepreneurPublic, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	switch filter.Sort {
	case repository.SortRating, repository.SortRelevance:
	default:
		filter.Sort = repository.SortCreatedAt
	}
	filter.Search = strings.TrimSpace(filter.Search)

	ents, err := s.profiles.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service/entrepreneur: listing profiles: %w", err)
	}

	views := make([]model.EntrepreneurPublic, 0, len(ents))
	for i := range ents {
		views = append(views, ents[i].Public())
	}
	return views, nil
}

// applyInput copies the mutable fields onto ent.
func applyInput(ent *model.Entrepreneur, input ProfileInput) {
	ent.ProfileType = input.ProfileType
	ent.FirstName = strings.TrimSpace(input.FirstName)
	ent.LastName = strings.TrimSpace(input.LastName)
	ent.CompanyName = strings.TrimSpace(input.CompanyName)
	ent.ActivityName = strings.TrimSpace(input.ActivityName)
	ent.Logo = input.Logo
	ent.Description = input.Description
	ent.Tags = input.Tags
	ent.Phone = strings.TrimSpace(input.Phone)
	ent.Whatsapp = strings.TrimSpace(input.Whatsapp)
	ent.Email = strings.TrimSpace(input.Email)
	ent.Location = input.Location
	ent.City = input.City
	ent.Website = strings.TrimSpace(input.Website)
	ent.Portfolio = input.Portfolio
}
