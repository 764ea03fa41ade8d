package transport

import (
	"github.com/Skotchmaster/monster_tracker/internal/models"
	"github.com/Skotchmaster/monster_tracker/internal/service"
)

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserOut struct {
	Username string `json:"username"`
}

type TokenResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        UserOut `json:"user"`
}

func NewTokenResponse(res *service.TokenResult) TokenResponse {
	return TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		User:        UserOut{Username: res.Username},
	}
}

type DrinkItem struct {
	ID    string   `json:"id"    validate:"required"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

// ConsumptionData is the wire shape of a daily record. Username is accepted
// but always replaced by the caller's identity.
type ConsumptionData struct {
	Date          string      `json:"date"          validate:"required,datetime=2006-01-02"`
	Drinks        []DrinkItem `json:"drinks"        validate:"omitempty,dive"`
	TotalCaffeine *float64    `json:"totalCaffeine" validate:"required,gte=0"`
	TotalCost     *float64    `json:"totalCost"     validate:"required,gte=0"`
	Username      string      `json:"username"`
}

func (d ConsumptionData) Record() models.ConsumptionRecord {
	drinks := make([]models.DrinkItem, 0, len(d.Drinks))
	for _, it := range d.Drinks {
		drinks = append(drinks, models.DrinkItem{ID: it.ID, Price: *it.Price})
	}
	return models.ConsumptionRecord{
		Date:          d.Date,
		Drinks:        drinks,
		TotalCaffeine: *d.TotalCaffeine,
		TotalCost:     *d.TotalCost,
		Username:      d.Username,
	}
}

type GoalsData struct {
	EnableDailyLimit    *bool    `json:"enableDailyLimit"    validate:"required"`
	DailyLimit          *float64 `json:"dailyLimit"          validate:"required,gte=0"`
	LimitType           string   `json:"limitType"           validate:"required"`
	EnableNotifications *bool    `json:"enableNotifications" validate:"required"`
}

func (g GoalsData) Goals() models.Goals {
	return models.Goals{
		EnableDailyLimit:    *g.EnableDailyLimit,
		DailyLimit:          *g.DailyLimit,
		LimitType:           g.LimitType,
		EnableNotifications: *g.EnableNotifications,
	}
}

type SettingsData struct {
	DarkModeContrast   string `json:"darkModeContrast"   validate:"required"`
	AnimationIntensity string `json:"animationIntensity" validate:"required"`
	ReducedMotion      *bool  `json:"reducedMotion"      validate:"required"`
	AutoRefresh        *bool  `json:"autoRefresh"        validate:"required"`
	ShowAdvancedStats  *bool  `json:"showAdvancedStats"  validate:"required"`
}

func (s SettingsData) Settings() models.Settings {
	return models.Settings{
		DarkModeContrast:   s.DarkModeContrast,
		AnimationIntensity: s.AnimationIntensity,
		ReducedMotion:      *s.ReducedMotion,
		AutoRefresh:        *s.AutoRefresh,
		ShowAdvancedStats:  *s.ShowAdvancedStats,
	}
}
