package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aioutlet/admin-service/internal/api/middleware"
	"github.com/aioutlet/admin-service/internal/core/ports"
	"github.com/aioutlet/admin-service/internal/core/service"
)

type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(svc ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// parseLimit reads ?limit=N. Missing, malformed or non-positive values fall
// back to the default; large values are capped.
func parseLimit(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || n <= 0 {
		return service.DefaultRecentLimit
	}
	if n > service.MaxRecentLimit {
		return service.MaxRecentLimit
	}
	return n
}

// Stats aggregates counts from the user, order, product and review services.
// Sections whose upstream failed are zeroed; the call itself still succeeds.
//
// @Summary      Dashboard statistics
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardStatsResponse
// @Failure      401  {object}  apierror.Body
// @Router       /api/admin/dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	_, token, err := caller(c)
	if err != nil {
		return err
	}

	stats, err := h.service.GetStats(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardStatsResponse{
		Success:       true,
		Data:          stats,
		CorrelationID: middleware.CorrelationID(c),
	})
}

// RecentOrders lists the newest orders.
//
// @Summary      Recent orders
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Number of orders (default 5, max 100)"
// @Success      200    {object}  recentOrdersResponse
// @Failure      502    {object}  apierror.Body
// @Router       /api/admin/dashboard/recent-orders [get]
func (h *DashboardHandler) RecentOrders(c echo.Context) error {
	_, token, err := caller(c)
	if err != nil {
		return err
	}

	orders, err := h.service.RecentOrders(c.Request().Context(), token, parseLimit(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recentOrdersResponse{
		Success:       true,
		Data:          orders,
		CorrelationID: middleware.CorrelationID(c),
	})
}

// RecentUsers lists the newest user accounts.
//
// @Summary      Recent users
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Number of users (default 5, max 100)"
// @Success      200    {object}  recentUsersResponse
// @Router       /api/admin/dashboard/recent-users [get]
func (h *DashboardHandler) RecentUsers(c echo.Context) error {
	_, token, err := caller(c)
	if err != nil {
		return err
	}

	users, err := h.service.RecentUsers(c.Request().Context(), token, parseLimit(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recentUsersResponse{
		Success:       true,
		Data:          users,
		CorrelationID: middleware.CorrelationID(c),
	})
}
