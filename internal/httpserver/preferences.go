package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/monster_tracker/internal/service"
	"github.com/Skotchmaster/monster_tracker/internal/transport"
)

type PreferencesHTTP struct {
	Svc *service.PreferencesService
}

func (h *PreferencesHTTP) GetGoals(c echo.Context) error {
	g, err := h.Svc.GetGoals(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error fetching goals")
	}
	return c.JSON(http.StatusOK, g)
}

func (h *PreferencesHTTP) UpdateGoals(c echo.Context) error {
	var req transport.GoalsData
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	g, err := h.Svc.UpdateGoals(c.Request().Context(), req.Goals())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error updating goals")
	}
	return c.JSON(http.StatusOK, g)
}

func (h *PreferencesHTTP) GetSettings(c echo.Context) error {
	s, err := h.Svc.GetSettings(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error fetching settings")
	}
	return c.JSON(http.StatusOK, s)
}

func (h *PreferencesHTTP) UpdateSettings(c echo.Context) error {
	var req transport.SettingsData
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	s, err := h.Svc.UpdateSettings(c.Request().Context(), req.Settings())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error updating settings")
	}
	return c.JSON(http.StatusOK, s)
}
