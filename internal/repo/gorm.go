package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/monster_tracker/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

var _ Store = (*GormRepo)(nil)

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepo) Close(context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	tx := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(u)
	if tx.Error != nil {
		return fmt.Errorf("create user: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *GormRepo) FindUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *GormRepo) ListConsumption(ctx context.Context, username string) ([]models.ConsumptionRecord, error) {
	items := []models.ConsumptionRecord{}
	if err := r.DB.WithContext(ctx).
		Where("username = ?", username).
		Order("date DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list consumption: %w", err)
	}
	return items, nil
}

func (r *GormRepo) UpsertConsumption(ctx context.Context, rec *models.ConsumptionRecord) error {
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"drinks", "total_caffeine", "total_cost"}),
		}).
		Create(rec).Error
	if err != nil {
		return fmt.Errorf("upsert consumption: %w", err)
	}
	return nil
}

func (r *GormRepo) GetOrCreateGoals(ctx context.Context, defaults models.Goals) (*models.Goals, error) {
	defaults.ID = models.SingletonID
	if err := r.insertIfAbsent(ctx, &defaults); err != nil {
		return nil, fmt.Errorf("init goals: %w", err)
	}

	var g models.Goals
	if err := r.DB.WithContext(ctx).First(&g, "id = ?", models.SingletonID).Error; err != nil {
		return nil, fmt.Errorf("get goals: %w", err)
	}
	return &g, nil
}

func (r *GormRepo) SaveGoals(ctx context.Context, g *models.Goals) error {
	g.ID = models.SingletonID
	if err := r.replace(ctx, g); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

func (r *GormRepo) GetOrCreateSettings(ctx context.Context, defaults models.Settings) (*models.Settings, error) {
	defaults.ID = models.SingletonID
	if err := r.insertIfAbsent(ctx, &defaults); err != nil {
		return nil, fmt.Errorf("init settings: %w", err)
	}

	var s models.Settings
	if err := r.DB.WithContext(ctx).First(&s, "id = ?", models.SingletonID).Error; err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

func (r *GormRepo) SaveSettings(ctx context.Context, s *models.Settings) error {
	s.ID = models.SingletonID
	if err := r.replace(ctx, s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (r *GormRepo) insertIfAbsent(ctx context.Context, doc any) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(doc).Error
}

func (r *GormRepo) replace(ctx context.Context, doc any) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(doc).Error
}
