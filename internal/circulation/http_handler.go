package circulation

import (
	"errors"
	"log/slog"
	"net/http"

	"libraryapi/internal/book"
	"libraryapi/internal/httpx"
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

// Issue handles PATCH /api/users/issue/{id}
// @Summary Issue a book
// @Tags circulation
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.MessageResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users/issue/{id} [patch]
func (h *HTTPHandler) Issue(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	outcome, err := h.service.Issue(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.Message(w, http.StatusOK, outcome.Message())
}

// Return handles PATCH /api/users/return/{id}
// @Summary Return a book
// @Tags circulation
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.MessageResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users/return/{id} [patch]
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	outcome, err := h.service.Return(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.Message(w, http.StatusOK, outcome.Message())
}

// MyBooks handles GET /api/users/myBooks
func (h *HTTPHandler) MyBooks(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	books, err := h.service.MyBooks(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, book.ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrUnknownHolder):
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Account no longer exists", nil)
	default:
		httpx.InternalError(w, r, h.logger, err)
	}
}
