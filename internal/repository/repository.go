// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage provides the concrete implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/amadou/nexus-connect/internal/model"
)

// Sort keys accepted by ProfileFilter. "relevance" degrades to rating
// descending; there is no text-relevance scoring.
const (
	SortCreatedAt = "createdAt"
	SortRating    = "rating"
	SortRelevance = "relevance"
)

// ProfileFilter describes an entrepreneur listing query. All filters are
// optional and combined with AND; Tags matches profiles containing at
// least one of the given tags.
type ProfileFilter struct {
	Search      string  // case-insensitive substring across name/company/activity/description
	Location    string  // exact country code
	City        string  // exact match
	ProfileType string  // exact match
	Tags        []string
	MinRating   float64 // inclusive lower bound; 0 disables the filter
	Sort        string  // SortCreatedAt (default), SortRating, SortRelevance
	Limit       int
	Skip        int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// SetGoogleID attaches a federated subject id to an existing account.
	SetGoogleID(ctx context.Context, id, googleID string) error
	// SetHasProfile flips the hasProfile flag when a profile is created.
	SetHasProfile(ctx context.Context, id string, has bool) error
	Count(ctx context.Context) (int, error)
}

type EntrepreneurRepository interface {
	Create(ctx context.Context, ent *model.Entrepreneur) error
	GetByID(ctx context.Context, id string) (*model.Entrepreneur, error)
	GetByUserID(ctx context.Context, userID string) (*model.Entrepreneur, error)
	Update(ctx context.Context, ent *model.Entrepreneur) error
	List(ctx context.Context, filter ProfileFilter) ([]model.Entrepreneur, error)
	Count(ctx context.Context) (int, error)
}

type ContactMessageRepository interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
}
