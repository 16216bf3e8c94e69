package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aioutlet/admin-service/internal/api/middleware"
)

// HomeHandler serves the public landing routes. A valid token is optional.
type HomeHandler struct {
	service string
	version string
	env     string
}

func NewHomeHandler(service, version, env string) *HomeHandler {
	return &HomeHandler{service: service, version: version, env: env}
}

// Welcome
//
// @Summary      Welcome message
// @Tags         home
// @Produce      json
// @Success      200  {object}  welcomeResponse
// @Router       /api/home [get]
func (h *HomeHandler) Welcome(c echo.Context) error {
	resp := welcomeResponse{
		Message:     "Welcome to the Admin Service",
		Service:     h.service,
		Description: "Administrative management service for AIOutlet platform",
	}
	if id := middleware.IdentityFrom(c); id != nil {
		resp.User = id.ID
	}
	return c.JSON(http.StatusOK, resp)
}

// Version
//
// @Summary      Service version
// @Tags         home
// @Produce      json
// @Success      200  {object}  versionResponse
// @Router       /api/home/version [get]
func (h *HomeHandler) Version(c echo.Context) error {
	return c.JSON(http.StatusOK, versionResponse{
		Version:     h.version,
		Service:     h.service,
		Environment: h.env,
	})
}
