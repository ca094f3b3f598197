package records

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/domain/clinicerr"
	"github.com/clinicore/clinicore/internal/platform/access"
	"github.com/clinicore/clinicore/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/records", h.ListRecords)
	api.GET("/records/:id", h.GetRecord)
	api.POST("/records", h.CreateRecord, access.Require(access.OpWrite, access.ResourceRecord))
	api.PUT("/records/:id", h.UpdateRecord, access.Require(access.OpWrite, access.ResourceRecord))
	api.DELETE("/records/:id", h.DeleteRecord, access.Require(access.OpWrite, access.ResourceRecord))
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var rec MedicalRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRecord(c.Request().Context(), &rec); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, clinicerr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "record not found")
		}
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), "internal server error")
	}
	return c.JSON(http.StatusOK, rec)
}

// ListRecords requires a patient_id or practitioner_id filter; records are
// never listed clinic-wide.
func (h *Handler) ListRecords(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if patientID := c.QueryParam("patient_id"); patientID != "" {
		pid, err := uuid.Parse(patientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, total, err := h.svc.ListByPatient(ctx, pid, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	if practID := c.QueryParam("practitioner_id"); practID != "" {
		pid, err := uuid.Parse(practID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid practitioner_id")
		}
		items, total, err := h.svc.ListByPractitioner(ctx, pid, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	return echo.NewHTTPError(http.StatusBadRequest, "patient_id or practitioner_id query parameter required")
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var rec MedicalRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec.ID = id
	if err := h.svc.UpdateRecord(c.Request().Context(), &rec); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteRecord(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
