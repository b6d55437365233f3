package service

import (
	"context"
	"fmt"

	"github.com/amadou/nexus-connect/internal/model"
	"github.com/amadou/nexus-connect/internal/repository"
)

// StatsService aggregates the dashboard counters.
type StatsService struct {
	users    repository.UserRepository
	profiles repository.EntrepreneurRepository
}

// NewStatsService creates a StatsService.
func NewStatsService(users repository.UserRepository, profiles repository.EntrepreneurRepository) *StatsService {
	return &StatsService{users: users, profiles: profiles}
}

// Snapshot returns live user/profile counts. Views and problems stay at
// zero until a tracking subsystem exists.
func (s *StatsService) Snapshot(ctx context.Context) (*model.Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/stats: counting users: %w", err)
	}
	profiles, err := s.profiles.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/stats: counting profiles: %w", err)
	}

	return &model.Stats{
		TotalUsers:    users,
		TotalProfiles: profiles,
	}, nil
}
