package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/monster_tracker/internal/logging"
	"github.com/Skotchmaster/monster_tracker/internal/service"
	"github.com/Skotchmaster/monster_tracker/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.Credentials
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("register_error", "status", http.StatusUnprocessableEntity, "error", err)
		return err
	}

	res, err := h.Svc.Register(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConflict):
			return echo.NewHTTPError(http.StatusBadRequest, "Username already exists")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		default:
			l.Error("register_error", "status", http.StatusInternalServerError, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Error registering user")
		}
	}

	return c.JSON(http.StatusOK, transport.NewTokenResponse(res))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.Credentials
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("login_error", "status", http.StatusUnprocessableEntity, "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		l.Error("login_error", "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error logging in")
	}

	l.Info("login_successful", "username", res.Username)
	return c.JSON(http.StatusOK, transport.NewTokenResponse(res))
}
