package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/monster_tracker/internal/logging"
	"github.com/Skotchmaster/monster_tracker/internal/models"
	"github.com/Skotchmaster/monster_tracker/internal/repo"
)

// PreferencesService serves the process-wide goals and settings documents.
type PreferencesService struct {
	Repo repo.Preferences
}

func (s *PreferencesService) GetGoals(ctx context.Context) (*models.Goals, error) {
	g, err := s.Repo.GetOrCreateGoals(ctx, models.DefaultGoals())
	if err != nil {
		logging.FromContext(ctx).Error("goals_fetch_failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return g, nil
}

func (s *PreferencesService) UpdateGoals(ctx context.Context, g models.Goals) (*models.Goals, error) {
	if err := s.Repo.SaveGoals(ctx, &g); err != nil {
		logging.FromContext(ctx).Error("goals_update_failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return &g, nil
}

func (s *PreferencesService) GetSettings(ctx context.Context) (*models.Settings, error) {
	st, err := s.Repo.GetOrCreateSettings(ctx, models.DefaultSettings())
	if err != nil {
		logging.FromContext(ctx).Error("settings_fetch_failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return st, nil
}

func (s *PreferencesService) UpdateSettings(ctx context.Context, st models.Settings) (*models.Settings, error) {
	if err := s.Repo.SaveSettings(ctx, &st); err != nil {
		logging.FromContext(ctx).Error("settings_update_failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return &st, nil
}
