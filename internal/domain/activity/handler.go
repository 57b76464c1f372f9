package activity

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medicore/hms/internal/platform/auth"
	"github.com/medicore/hms/pkg/pagination"
)

type Handler struct {
	repo LogRepository
}

func NewHandler(repo LogRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/activity-logs", h.List, auth.RequireRole(auth.RoleAdmin))
}

// List serves the admin audit trail. Unlike the rest of the API it is
// page-numbered (?page=N&limit=M) and filters with camelCase query params,
// matching the admin console that consumes it.
func (h *Handler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	if limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	params := map[string]string{
		"action":     c.QueryParam("action"),
		"entity":     c.QueryParam("entity"),
		"user_id":    c.QueryParam("userId"),
		"start_date": c.QueryParam("startDate"),
		"end_date":   c.QueryParam("endDate"),
	}
	items, total, err := h.repo.Search(c.Request().Context(), params, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, limit, offset))
}
