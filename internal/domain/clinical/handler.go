package clinical

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
	api.POST("/lab-reports", h.OrderLabReport, auth.RequireRole(auth.RoleDoctor))
	api.POST("/lab-reports/:id/start", h.StartLabReport, auth.RequireRole(auth.RoleDoctor, auth.RoleReceptionist))
	api.POST("/lab-reports/:id/complete", h.CompleteLabReport, auth.RequireRole(auth.RoleDoctor, auth.RoleReceptionist))
	api.GET("/lab-reports", h.ListLabReports)
	api.GET("/lab-reports/:id", h.GetLabReport)

	api.POST("/medical-history", h.AddHistoryRecord, auth.RequireRole(auth.RoleDoctor))
	api.PUT("/medical-history/:id/active", h.SetHistoryActive, auth.RequireRole(auth.RoleDoctor))
	api.GET("/patients/:id/medical-history", h.PatientHistory)
}

func (h *Handler) OrderLabReport(c echo.Context) error {
	var req struct {
		PatientID uuid.UUID `json:"patient_id"`
		TestName  string    `json:"test_name"`
		Category  *string   `json:"category"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	rep, err := h.svc.OrderLabReport(ctx, auth.UserIDFromContext(ctx), req.PatientID, req.TestName, req.Category)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rep)
}

func (h *Handler) StartLabReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rep, err := h.svc.StartLabReport(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrAlreadyCompleted) {
			return echo.NewHTTPError(http.StatusBadRequest, "lab report is not in the ordered status")
		}
		return echo.NewHTTPError(http.StatusNotFound, "lab report not found")
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) CompleteLabReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req struct {
		Result string `json:"result"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.CompleteLabReport(c.Request().Context(), id, req.Result)
	if err != nil {
		if errors.Is(err, ErrAlreadyCompleted) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) GetLabReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	rep, err := h.svc.GetLabReport(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "lab report not found")
	}
	if auth.RoleFromContext(ctx) == auth.RolePatient && rep.PatientID != auth.UserIDFromContext(ctx) {
		return echo.NewHTTPError(http.StatusForbidden, "not your lab report")
	}
	return c.JSON(http.StatusOK, rep)
}

// ListLabReports scopes to the caller: patients see their own, staff see the
// open queue or a patient's reports by query.
func (h *Handler) ListLabReports(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	if auth.RoleFromContext(ctx) == auth.RolePatient {
		items, total, err := h.svc.ListLabReportsByPatient(ctx, auth.UserIDFromContext(ctx), pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	if pid := c.QueryParam("patient_id"); pid != "" {
		patientID, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, total, err := h.svc.ListLabReportsByPatient(ctx, patientID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	items, total, err := h.svc.ListOpenLabReports(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AddHistoryRecord(c echo.Context) error {
	var rec HistoryRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.AddHistoryRecord(ctx, auth.UserIDFromContext(ctx), &rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) SetHistoryActive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetHistoryActive(c.Request().Context(), id, req.Active); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "history record not found")
	}
	return c.JSON(http.StatusOK, map[string]bool{"active": req.Active})
}

func (h *Handler) PatientHistory(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == auth.RolePatient && patientID != auth.UserIDFromContext(ctx) {
		return echo.NewHTTPError(http.StatusForbidden, "not your medical history")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.PatientHistory(ctx, patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
