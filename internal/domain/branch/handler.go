package branch

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicops/clinicops/internal/platform/auth"
	"github.com/clinicops/clinicops/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("", auth.RequireRole("admin", "ops"))
	admin.POST("/branches", h.CreateBranch)
	admin.PUT("/branches/:id", h.UpdateBranch)
	admin.DELETE("/branches/:id", h.DeleteBranch)
	admin.POST("/branches/:id/operating-hours", h.CreateOperatingHour)
	admin.PUT("/operating-hours/:id", h.UpdateOperatingHour)
	admin.DELETE("/operating-hours/:id", h.DeleteOperatingHour)
	admin.POST("/branches/:id/appointment-hours", h.CreateAppointmentHour)
	admin.PUT("/appointment-hours/:id", h.UpdateAppointmentHour)
	admin.DELETE("/appointment-hours/:id", h.DeleteAppointmentHour)

	// Branch listings are readable by any authenticated staff.
	read := api.Group("", auth.RequireRole("admin", "ops", "staff"))
	read.GET("/branches", h.ListBranches)
	read.GET("/branches/:id", h.GetBranch)
	read.GET("/branches/:id/operating-hours", h.ListOperatingHours)
	read.GET("/branches/:id/appointment-hours", h.ListAppointmentHours)
}

func (h *Handler) CreateBranch(c echo.Context) error {
	var b Branch
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateBranch(c.Request().Context(), &b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetBranch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBranch(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "branch not found")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListBranches(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBranches(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateBranch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var b Branch
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b.ID = id
	if err := h.svc.UpdateBranch(c.Request().Context(), &b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBranch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteBranch(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateOperatingHour(c echo.Context) error {
	branchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid branch id")
	}
	var oh OperatingHour
	if err := c.Bind(&oh); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	oh.BranchID = branchID
	if err := h.svc.CreateOperatingHour(c.Request().Context(), &oh); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, oh)
}

func (h *Handler) UpdateOperatingHour(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var oh OperatingHour
	if err := c.Bind(&oh); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	oh.ID = id
	if err := h.svc.UpdateOperatingHour(c.Request().Context(), &oh); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, oh)
}

func (h *Handler) DeleteOperatingHour(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteOperatingHour(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListOperatingHours(c echo.Context) error {
	branchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid branch id")
	}
	items, err := h.svc.ListOperatingHours(c.Request().Context(), branchID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateAppointmentHour(c echo.Context) error {
	branchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid branch id")
	}
	var ah AppointmentOperatingHour
	if err := c.Bind(&ah); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ah.BranchID = branchID
	if err := h.svc.CreateAppointmentHour(c.Request().Context(), &ah); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, ah)
}

func (h *Handler) UpdateAppointmentHour(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var ah AppointmentOperatingHour
	if err := c.Bind(&ah); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ah.ID = id
	if err := h.svc.UpdateAppointmentHour(c.Request().Context(), &ah); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, ah)
}

func (h *Handler) DeleteAppointmentHour(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteAppointmentHour(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListAppointmentHours(c echo.Context) error {
	branchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid branch id")
	}
	items, err := h.svc.ListAppointmentHours(c.Request().Context(), branchID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}
