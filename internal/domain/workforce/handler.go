package workforce

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medicore/hms/internal/platform/auth"
	"github.com/medicore/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := auth.RequireRole(auth.StaffRoles()...)

	api.POST("/attendance/check-in", h.CheckIn, staff)
	api.POST("/attendance/check-out", h.CheckOut, staff)
	api.GET("/attendance", h.ListAttendance, staff)

	api.POST("/leaves", h.ApplyLeave, staff)
	api.GET("/leaves", h.ListLeaves, staff)
	api.PUT("/leaves/:id", h.DecideLeave, auth.RequireRole(auth.RoleHR, auth.RoleAdmin))
}

func (h *Handler) CheckIn(c echo.Context) error {
	ctx := c.Request().Context()
	rec, err := h.svc.CheckIn(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, ErrAlreadyCheckedIn) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) CheckOut(c echo.Context) error {
	ctx := c.Request().Context()
	rec, err := h.svc.CheckOut(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, ErrNotCheckedIn) || errors.Is(err, ErrAlreadyCheckedOut) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

// ListAttendance returns the caller's own records. HR and admins can query
// another user with ?user_id= or a whole day with ?date=.
func (h *Handler) ListAttendance(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	role := auth.RoleFromContext(ctx)

	if role == auth.RoleHR || role == auth.RoleAdmin {
		if date := c.QueryParam("date"); date != "" {
			items, total, err := h.svc.AttendanceByDate(ctx, date, pg.Limit, pg.Offset)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
		}
		if uid := c.QueryParam("user_id"); uid != "" {
			userID, err := uuid.Parse(uid)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
			}
			items, total, err := h.svc.MyAttendance(ctx, userID, pg.Limit, pg.Offset)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
		}
	}

	items, total, err := h.svc.MyAttendance(ctx, auth.UserIDFromContext(ctx), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ApplyLeave(c echo.Context) error {
	var req LeaveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.ApplyLeave(ctx, auth.UserIDFromContext(ctx), &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, req)
}

// ListLeaves returns the caller's own requests. HR and admins see all,
// optionally filtered with ?status=.
func (h *Handler) ListLeaves(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	role := auth.RoleFromContext(ctx)

	if role == auth.RoleHR || role == auth.RoleAdmin {
		items, total, err := h.svc.ListLeaves(ctx, c.QueryParam("status"), pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	items, total, err := h.svc.MyLeaves(ctx, auth.UserIDFromContext(ctx), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DecideLeave(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req struct {
		Status  string  `json:"status"`
		Comment *string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	leave, err := h.svc.DecideLeave(ctx, auth.UserIDFromContext(ctx), id, req.Status, req.Comment)
	if err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, leave)
}
