package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/monster_tracker/internal/logging"
	"github.com/Skotchmaster/monster_tracker/internal/middleware/auth"
	"github.com/Skotchmaster/monster_tracker/internal/service"
	"github.com/Skotchmaster/monster_tracker/internal/transport"
)

type ConsumptionHTTP struct {
	Svc *service.ConsumptionService
}

func (h *ConsumptionHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.Svc.List(ctx, auth.Username(c))
	if err != nil {
		logging.FromContext(ctx).Error("consumption_list_error", "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error fetching data")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ConsumptionHTTP) Save(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "consumption_save")

	var req transport.ConsumptionData
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("consumption_save_error", "status", http.StatusUnprocessableEntity, "error", err)
		return err
	}

	rec, err := h.Svc.Save(ctx, auth.Username(c), req.Record())
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		l.Error("consumption_save_error", "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error saving data")
	}
	return c.JSON(http.StatusOK, rec)
}
