package models

import (
	"time"

	"gorm.io/datatypes"
)

// SingletonID keys the one process-wide goals row and the one settings row.
// Neither document is scoped to a user.
const SingletonID = "global"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"        bson:"-"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username" bson:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"        bson:"password"`
	CreatedAt    time.Time `gorm:"not null"                 json:"-"        bson:"created_at"`
}

type DrinkItem struct {
	ID    string  `json:"id"    bson:"id"`
	Price float64 `json:"price" bson:"price"`
}

// ConsumptionRecord is one user's intake for one calendar day (YYYY-MM-DD).
type ConsumptionRecord struct {
	ID            uint                           `gorm:"primaryKey;autoIncrement"                      json:"-"             bson:"-"`
	Username      string                         `gorm:"uniqueIndex:idx_consumption_user_date;not null" json:"username"      bson:"username"`
	Date          string                         `gorm:"uniqueIndex:idx_consumption_user_date;not null" json:"date"          bson:"date"`
	Drinks        datatypes.JSONSlice[DrinkItem] `gorm:"not null"                                      json:"drinks"        bson:"drinks"`
	TotalCaffeine float64                        `gorm:"not null"                                      json:"totalCaffeine" bson:"totalCaffeine"`
	TotalCost     float64                        `gorm:"not null"                                      json:"totalCost"     bson:"totalCost"`
}

func (ConsumptionRecord) TableName() string {
	return "consumption"
}

type Goals struct {
	ID                  string  `gorm:"primaryKey;size:16" json:"-"                   bson:"_id,omitempty"`
	EnableDailyLimit    bool    `gorm:"not null"           json:"enableDailyLimit"    bson:"enableDailyLimit"`
	DailyLimit          float64 `gorm:"not null"           json:"dailyLimit"          bson:"dailyLimit"`
	LimitType           string  `gorm:"not null"           json:"limitType"           bson:"limitType"`
	EnableNotifications bool    `gorm:"not null"           json:"enableNotifications" bson:"enableNotifications"`
}

func (Goals) TableName() string {
	return "goals"
}

type Settings struct {
	ID                 string `gorm:"primaryKey;size:16" json:"-"                  bson:"_id,omitempty"`
	DarkModeContrast   string `gorm:"not null"           json:"darkModeContrast"   bson:"darkModeContrast"`
	AnimationIntensity string `gorm:"not null"           json:"animationIntensity" bson:"animationIntensity"`
	ReducedMotion      bool   `gorm:"not null"           json:"reducedMotion"      bson:"reducedMotion"`
	AutoRefresh        bool   `gorm:"not null"           json:"autoRefresh"        bson:"autoRefresh"`
	ShowAdvancedStats  bool   `gorm:"not null"           json:"showAdvancedStats"  bson:"showAdvancedStats"`
}

func (Settings) TableName() string {
	return "settings"
}

func DefaultGoals() Goals {
	return Goals{
		EnableDailyLimit:    true,
		DailyLimit:          400,
		LimitType:           "daily",
		EnableNotifications: true,
	}
}

func DefaultSettings() Settings {
	return Settings{
		DarkModeContrast:   "normal",
		AnimationIntensity: "normal",
		ReducedMotion:      false,
		AutoRefresh:        true,
		ShowAdvancedStats:  true,
	}
}

// All lists the models migrated into a SQL store.
func All() []any {
	return []any{&User{}, &ConsumptionRecord{}, &Goals{}, &Settings{}}
}
