package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aioutlet/admin-service/internal/api/apierror"
	"github.com/aioutlet/admin-service/internal/core/domain"
	"github.com/aioutlet/admin-service/internal/core/ports"
	"github.com/aioutlet/admin-service/internal/core/validation"
)

var errTrailingData = errors.New("unexpected data after JSON body")

// AdminHandler proxies user management to the user-service after validating
// the request locally. Upstream documents are returned unchanged.
type AdminHandler struct {
	users ports.UserClient
	log   zerolog.Logger
}

func NewAdminHandler(users ports.UserClient, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{users: users, log: log}
}

// ListUsers returns every user account.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   object
// @Failure      401  {object}  apierror.Body
// @Failure      403  {object}  apierror.Body
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	identity, token, err := caller(c)
	if err != nil {
		return err
	}

	h.log.Info().Str("actor_id", identity.ID).Msg("admin requested all users")
	users, err := h.users.FetchAllUsers(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, users)
}

// GetUser returns one user account.
//
// @Summary      Get user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID (24 hex characters)"
// @Success      200  {object}  object
// @Failure      400  {object}  apierror.Body
// @Failure      404  {object}  apierror.Body
// @Router       /api/admin/users/{id} [get]
func (h *AdminHandler) GetUser(c echo.Context) error {
	identity, token, err := caller(c)
	if err != nil {
		return err
	}
	id, ok, err := userIDParam(c)
	if !ok {
		return err
	}

	h.log.Info().Str("actor_id", identity.ID).Str("target_id", id).Msg("admin requested user by id")
	user, err := h.users.FetchUserByID(c.Request().Context(), id, token)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, user)
}

// UpdateUser applies a partial update. Only whitelisted fields are accepted
// and the payload is forwarded as sent.
//
// @Summary      Update user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  object
// @Failure      400   {object}  apierror.Body
// @Router       /api/admin/users/{id} [patch]
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	identity, token, err := caller(c)
	if err != nil {
		return err
	}
	id, ok, err := userIDParam(c)
	if !ok {
		return err
	}

	body, err := decodePayload(c)
	if err != nil {
		return apierror.BadRequest(c, "Invalid update payload")
	}
	payload, err := validation.ValidateUpdatePayload(body)
	if err != nil {
		return writeValidation(c, err)
	}

	h.log.Info().
		Str("actor_id", identity.ID).
		Str("target_id", id).
		Strs("fields", payloadKeys(payload)).
		Msg("admin updating user")
	updated, err := h.users.UpdateUserByID(c.Request().Context(), id, payload, token)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, updated)
}

// DeleteUser removes a user account. Administrators cannot delete themselves.
//
// @Summary      Delete user
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      400  {object}  apierror.Body
// @Failure      403  {object}  apierror.Body
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	identity, token, err := caller(c)
	if err != nil {
		return err
	}
	id, ok, err := userIDParam(c)
	if !ok {
		return err
	}
	if isSelf(identity, id) {
		return apierror.Forbidden(c, "Admins cannot delete their own account", nil)
	}

	h.log.Info().Str("actor_id", identity.ID).Str("target_id", id).Msg("admin deleting user")
	if err := h.users.RemoveUserByID(c.Request().Context(), id, token); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangePassword sets a new password for a user.
//
// @Summary      Change user password
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User ID"
// @Param        body  body      passwordChangeRequest  true  "New password"
// @Success      200   {object}  object
// @Failure      400   {object}  apierror.Body
// @Router       /api/admin/users/{id}/password/change [post]
func (h *AdminHandler) ChangePassword(c echo.Context) error {
	identity, token, err := caller(c)
	if err != nil {
		return err
	}
	id, ok, err := userIDParam(c)
	if !ok {
		return err
	}

	var req passwordChangeRequest
	if err := c.Bind(&req); err != nil {
		return apierror.BadRequest(c, "Invalid password")
	}
	if err := c.Validate(&req); err != nil {
		return writeValidation(c, err)
	}

	h.log.Info().Str("actor_id", identity.ID).Str("target_id", id).Msg("admin changing user password")
	payload := domain.UpdatePayload{string(domain.FieldPassword): req.NewPassword}
	result, err := h.users.UpdateUserByID(c.Request().Context(), id, payload, token)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, result)
}

// ActivateUser re-enables a user account.
//
// @Summary      Activate user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  object
// @Router       /api/admin/users/{id}/activate [post]
func (h *AdminHandler) ActivateUser(c echo.Context) error {
	return h.setActive(c, true)
}

// DeactivateUser disables a user account. Administrators cannot deactivate themselves.
//
// @Summary      Deactivate user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  object
// @Failure      403  {object}  apierror.Body
// @Router       /api/admin/users/{id}/deactivate [post]
func (h *AdminHandler) DeactivateUser(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *AdminHandler) setActive(c echo.Context, active bool) error {
	identity, token, err := caller(c)
	if err != nil {
		return err
	}
	id, ok, err := userIDParam(c)
	if !ok {
		return err
	}
	if !active && isSelf(identity, id) {
		return apierror.Forbidden(c, "Admins cannot deactivate their own account", nil)
	}

	h.log.Info().Str("actor_id", identity.ID).Str("target_id", id).Bool("active", active).Msg("admin changing user activation")
	payload := domain.UpdatePayload{string(domain.FieldIsActive): active}
	result, err := h.users.UpdateUserByID(c.Request().Context(), id, payload, token)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, result)
}

// decodePayload reads the request body keeping numbers as json.Number, so
// they are forwarded exactly as sent.
func decodePayload(c echo.Context) (any, error) {
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errTrailingData
	}
	return body, nil
}

// writeValidation answers 400 for a *domain.ValidationError and hands
// anything else to the error handler.
func writeValidation(c echo.Context, err error) error {
	if verr, ok := err.(*domain.ValidationError); ok {
		return apierror.BadRequest(c, verr.Message)
	}
	return err
}

func payloadKeys(p domain.UpdatePayload) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	return keys
}
