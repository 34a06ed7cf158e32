package user

import (
	"errors"
	"log/slog"
	"net/http"

	"libraryapi/internal/httpx"
)

const (
	msgDeleteNotAllowed = "You are not allowed to delete this account!"
	msgDeleted          = "Account Successfully deleted."
)

type HTTPHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewHTTPHandler(service *Service, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{service: service, logger: logger}
}

// GetCurrentUser handles GET /api/users/me
// @Summary Get current user
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /users/me [get]
func (h *HTTPHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	u, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return
		}
		httpx.InternalError(w, r, h.logger, err)
		return
	}

	httpx.JSONSuccess(w, r, u, nil)
}

// DeleteMe handles DELETE /api/users/deleteMe/{id}
// @Summary Delete an account
// @Description Owners may delete their own account; administrators may delete any. Held books are returned.
// @Tags users
// @Produce json
// @Security Bearer
// @Param id path string true "User ID"
// @Success 200 {object} httpx.MessageResponse
// @Failure 401 {object} httpx.MessageResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users/deleteMe/{id} [delete]
func (h *HTTPHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r), httpx.IsAdminFrom(r))
	switch {
	case err == nil:
		httpx.Message(w, http.StatusOK, msgDeleted)
	case errors.Is(err, ErrUnauthorized):
		httpx.Message(w, http.StatusUnauthorized, msgDeleteNotAllowed)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	default:
		httpx.InternalError(w, r, h.logger, err)
	}
}
