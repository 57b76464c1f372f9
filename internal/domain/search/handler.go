package search

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medicore/hms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/search", h.Search)
}

func (h *Handler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	res, err := h.svc.Search(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), c.QueryParam("q"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
