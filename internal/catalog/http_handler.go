package catalog

import (
	"errors"
	"log/slog"
	"net/http"

	"libraryapi/internal/book"
	"libraryapi/internal/httpx"
)

const (
	msgUpdated = "The book has been updated!"
	msgDeleted = "Book deleted successfully!"
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

type createBookReq struct {
	CoverName  string `json:"coverName"`
	AuthorName string `json:"authorName"`
	Genre      string `json:"genre"`
}

type updateBookReq struct {
	CoverName  *string `json:"coverName"`
	AuthorName *string `json:"authorName"`
	Genre      *string `json:"genre"`
}

func actorFrom(r *http.Request) Actor {
	return Actor{UserID: httpx.UserIDFrom(r), IsAdmin: httpx.IsAdminFrom(r)}
}

// Create handles POST /api/books
// @Summary Add a book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body createBookReq true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {string} string
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookReq
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	created, err := h.service.Create(r.Context(), actorFrom(r), book.Fields{
		CoverName:  req.CoverName,
		AuthorName: req.AuthorName,
		Genre:      req.Genre,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, created)
}

// List handles GET /api/books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

// ListByGenre handles GET /api/books/Genre/{genre}
func (h *HTTPHandler) ListByGenre(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListByGenre(r.Context(), r.PathValue("genre"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

// Get handles GET /api/books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

// Update handles PATCH /api/books/update/{id}
// @Summary Update a book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.MessageResponse
// @Failure 403 {string} string
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/update/{id} [patch]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateBookReq
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	_, err := h.service.Update(r.Context(), actorFrom(r), r.PathValue("id"), book.Patch{
		CoverName:  req.CoverName,
		AuthorName: req.AuthorName,
		Genre:      req.Genre,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.Message(w, http.StatusOK, msgUpdated)
}

// Delete handles DELETE /api/books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), actorFrom(r), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, msgDeleted)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var forbidden *ForbiddenError
	var invalid *book.ValidationError
	switch {
	case errors.As(err, &forbidden):
		httpx.JSON(w, http.StatusForbidden, forbidden.Message)
	case errors.As(err, &invalid):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
			{Field: invalid.Field, Message: invalid.Message},
		})
	case errors.Is(err, book.ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	default:
		httpx.InternalError(w, r, h.logger, err)
	}
}
