package pharmacy

import (
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
	api.GET("/medicines", h.SearchMedicines)
	api.GET("/medicines/:id", h.GetMedicine)

	pharmacistGroup := api.Group("", auth.RequireRole(auth.RolePharmacist))
	pharmacistGroup.POST("/medicines", h.AddMedicine)
	pharmacistGroup.PUT("/medicines/:id", h.UpdateMedicine)
	pharmacistGroup.DELETE("/medicines/:id", h.DeleteMedicine)
	pharmacistGroup.GET("/medicines/low-stock", h.LowStock)

	api.POST("/prescriptions", h.CreatePrescription, auth.RequireRole(auth.RoleDoctor))
	api.GET("/prescriptions", h.ListPrescriptions)
	api.GET("/prescriptions/:id", h.GetPrescription)
}

func (h *Handler) AddMedicine(c echo.Context) error {
	var m Medicine
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddMedicine(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMedicine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.GetMedicine(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "medicine not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) UpdateMedicine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var m Medicine
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.ID = id
	if err := h.svc.UpdateMedicine(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMedicine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteMedicine(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SearchMedicines(c echo.Context) error {
	params := map[string]string{}
	for _, key := range []string{"name", "category"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.SearchMedicines(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) LowStock(c echo.Context) error {
	items, err := h.svc.LowStock(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Medicine{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreatePrescription(c echo.Context) error {
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.CreatePrescription(ctx, auth.UserIDFromContext(ctx), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

// ListPrescriptions scopes to the caller: patients see their own, doctors
// the ones they wrote, pharmacists look up any patient's by query.
func (h *Handler) ListPrescriptions(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	userID := auth.UserIDFromContext(ctx)

	switch auth.RoleFromContext(ctx) {
	case auth.RolePatient:
		items, total, err := h.svc.ListByPatient(ctx, userID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	case auth.RoleDoctor:
		items, total, err := h.svc.ListByDoctor(ctx, userID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	case auth.RolePharmacist, auth.RoleAdmin:
		patientID, err := uuid.Parse(c.QueryParam("patient_id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "patient_id query parameter is required")
		}
		items, total, err := h.svc.ListByPatient(ctx, patientID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	default:
		return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
	}
}

func (h *Handler) GetPrescription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	p, err := h.svc.GetPrescription(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
	}

	userID := auth.UserIDFromContext(ctx)
	switch auth.RoleFromContext(ctx) {
	case auth.RolePatient:
		if p.PatientID != userID {
			return echo.NewHTTPError(http.StatusForbidden, "not your prescription")
		}
	case auth.RoleDoctor:
		if p.DoctorID != userID {
			return echo.NewHTTPError(http.StatusForbidden, "not your prescription")
		}
	}
	return c.JSON(http.StatusOK, p)
}
