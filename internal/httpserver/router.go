package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/monster_tracker/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/monster_tracker/internal/middleware/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	AuthHandler        *AuthHTTP
	ConsumptionHandler *ConsumptionHTTP
	PreferencesHandler *PreferencesHTTP

	Verifier auth.TokenVerifier
	Store    Pinger

	// ProtectPreferences puts goals and settings behind the bearer check.
	ProtectPreferences bool
	StaticDir          string
}

// New builds the echo instance with the shared middleware chain and all routes.
func New(logger *slog.Logger, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(logger),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderOrigin},
		}),
	)

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	if d.StaticDir != "" {
		e.Static("/static", d.StaticDir)
	}

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/login", d.AuthHandler.Login)

	requireBearer := auth.RequireBearer(d.Verifier)

	consumption := api.Group("/consumption", requireBearer)
	consumption.GET("", d.ConsumptionHandler.List)
	consumption.POST("", d.ConsumptionHandler.Save)

	var prefsMw []echo.MiddlewareFunc
	if d.ProtectPreferences {
		prefsMw = append(prefsMw, requireBearer)
	}
	api.GET("/goals", d.PreferencesHandler.GetGoals, prefsMw...)
	api.PUT("/goals", d.PreferencesHandler.UpdateGoals, prefsMw...)
	api.GET("/settings", d.PreferencesHandler.GetSettings, prefsMw...)
	api.PUT("/settings", d.PreferencesHandler.UpdateSettings, prefsMw...)
}

func (d *Deps) ready(c echo.Context) error {
	if d.Store == nil {
		return c.NoContent(http.StatusOK)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := d.Store.Ping(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable").SetInternal(err)
	}
	return c.NoContent(http.StatusOK)
}
