package availability

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicops/clinicops/internal/platform/clock"
)

type Handler struct {
	svc *Service
	clk clock.Clock
}

func NewHandler(svc *Service, clk clock.Clock) *Handler {
	return &Handler{svc: svc, clk: clk}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments/timings", h.Timings)
}

// Timings serves the booking UI's slot picker. from/to are civil dates; an
// empty start list with the window attached means nothing fits, which is a
// normal answer rather than an error.
func (h *Handler) Timings(c echo.Context) error {
	branchID, err := uuid.Parse(c.QueryParam("branch_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid branch_id")
	}
	serviceIDs, err := parseServiceIDs(c.QueryParam("service_ids"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	loc := h.clk.Location()
	from, err := parseDateParam(c.QueryParam("from"), loc)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
	}
	to, err := parseDateParam(c.QueryParam("to"), loc)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
	}
	if !to.IsZero() {
		to = endOfDay(to)
	}

	timings, err := h.svc.Timings(c.Request().Context(), h.clk.Now(), branchID, serviceIDs, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, timings)
}

func parseServiceIDs(raw string) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "service_ids is required")
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid service id: "+p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseDateParam(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", raw, loc)
}
