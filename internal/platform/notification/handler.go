package notification

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handler exposes the delivery log over HTTP. These are operational
// endpoints and are mounted behind admin-only middleware.
type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/notifications", h.listByRecipient)
	g.GET("/notifications/stats", h.stats)
	g.GET("/notifications/:id", h.get)
	g.POST("/notifications/:id/retry", h.retry)
}

func (h *Handler) get(c echo.Context) error {
	n, err := h.manager.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) listByRecipient(c echo.Context) error {
	recipient := c.QueryParam("recipient")
	if recipient == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recipient query parameter is required")
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	list, err := h.manager.ListByRecipient(c.Request().Context(), recipient, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if list == nil {
		list = []*Notification{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) retry(c echo.Context) error {
	if err := h.manager.Retry(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}

func (h *Handler) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.manager.Stats(c.Request().Context()))
}
