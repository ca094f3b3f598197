package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/domain/clinicerr"
	"github.com/clinicore/clinicore/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts account endpoints. Account creation is an
// administrative action; reads are open to any authenticated caller.
func (h *Handler) RegisterRoutes(api *echo.Group, adminOnly echo.MiddlewareFunc) {
	api.GET("/accounts", h.ListAccounts)
	api.GET("/accounts/:id", h.GetAccount)
	api.POST("/accounts", h.CreateAccount, adminOnly)
	api.PUT("/accounts/:id", h.UpdateAccount, adminOnly)
}

func (h *Handler) CreateAccount(c echo.Context) error {
	var a Account
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateAccount(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAccount(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, clinicerr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "account not found")
		}
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), "internal server error")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var a Account
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = id
	if err := h.svc.UpdateAccount(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAccounts(c echo.Context) error {
	// Username is unique, so a username filter resolves to at most one account.
	if username := c.QueryParam("username"); username != "" {
		a, err := h.svc.GetAccountByUsername(c.Request().Context(), username)
		if err != nil {
			return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse([]*Account{a}, 1, 1, 0))
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAccounts(c.Request().Context(), c.QueryParam("role"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
