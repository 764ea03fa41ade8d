package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/monster_tracker/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type Users interface {
	// CreateUser returns ErrDuplicate when the username is taken.
	CreateUser(ctx context.Context, u *models.User) error
	// FindUser returns ErrNotFound when no such username exists.
	FindUser(ctx context.Context, username string) (*models.User, error)
}

type Consumption interface {
	// ListConsumption returns the user's records, newest date first.
	ListConsumption(ctx context.Context, username string) ([]models.ConsumptionRecord, error)
	// UpsertConsumption replaces or inserts the record keyed by (Username, Date).
	UpsertConsumption(ctx context.Context, rec *models.ConsumptionRecord) error
}

type Preferences interface {
	// GetOrCreateGoals inserts defaults when no goals exist yet and returns the stored document.
	GetOrCreateGoals(ctx context.Context, defaults models.Goals) (*models.Goals, error)
	SaveGoals(ctx context.Context, g *models.Goals) error
	GetOrCreateSettings(ctx context.Context, defaults models.Settings) (*models.Settings, error)
	SaveSettings(ctx context.Context, s *models.Settings) error
}

// Store is everything the service layer needs from a backend.
type Store interface {
	Users
	Consumption
	Preferences
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
