package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/monster_tracker/internal/logging"
	"github.com/Skotchmaster/monster_tracker/internal/models"
	"github.com/Skotchmaster/monster_tracker/internal/mykafka"
	"github.com/Skotchmaster/monster_tracker/internal/repo"
)

type ConsumptionService struct {
	Repo   repo.Consumption
	Events mykafka.Publisher
}

// List returns the user's records newest first, never nil.
func (s *ConsumptionService) List(ctx context.Context, username string) ([]models.ConsumptionRecord, error) {
	items, err := s.Repo.ListConsumption(ctx, username)
	if err != nil {
		logging.FromContext(ctx).Error("consumption_list_failed", "username", username, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if items == nil {
		items = []models.ConsumptionRecord{}
	}
	return items, nil
}

// Save stores rec under username, replacing any record for the same date.
// The record's own Username is always overwritten.
func (s *ConsumptionService) Save(ctx context.Context, username string, rec models.ConsumptionRecord) (*models.ConsumptionRecord, error) {
	l := logging.FromContext(ctx)

	if username == "" || rec.Date == "" {
		return nil, fmt.Errorf("%w: username and date are required", ErrValidation)
	}

	rec.ID = 0
	rec.Username = username
	if rec.Drinks == nil {
		rec.Drinks = []models.DrinkItem{}
	}

	if err := s.Repo.UpsertConsumption(ctx, &rec); err != nil {
		l.Error("consumption_save_failed", "username", username, "date", rec.Date, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	ev := mykafka.NewEvent(mykafka.EventConsumptionSaved, username)
	ev.Date = rec.Date
	publishEvent(ctx, s.Events, ev)

	l.Debug("consumption_saved", "username", username, "date", rec.Date)
	return &rec, nil
}
