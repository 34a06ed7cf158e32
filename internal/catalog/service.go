package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"libraryapi/internal/book"
)

// Actor is the authenticated caller of a catalog operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Create adds an available book to the catalog.
func (s *Service) Create(ctx context.Context, actor Actor, fields book.Fields) (book.Book, error) {
	if !actor.IsAdmin {
		return book.Book{}, &ForbiddenError{Message: MsgCreateForbidden}
	}
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return book.Book{}, err
	}

	b := &book.Book{
		CoverName:  fields.CoverName,
		AuthorName: fields.AuthorName,
		Genre:      fields.Genre,
	}
	if err := s.repo.CreateBook(ctx, b); err != nil {
		return book.Book{}, fmt.Errorf("create book: %w", err)
	}

	s.logger.InfoContext(ctx, "book created", "book_id", b.ID, "admin_id", actor.UserID)
	return *b, nil
}

// Update merges the supplied catalog fields. Circulation state is untouched.
func (s *Service) Update(ctx context.Context, actor Actor, id string, patch book.Patch) (book.Book, error) {
	if !actor.IsAdmin {
		return book.Book{}, &ForbiddenError{Message: MsgUpdateForbidden}
	}
	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		return book.Book{}, err
	}
	if patch.Empty() {
		current, err := s.repo.GetBook(ctx, id)
		if err != nil {
			return book.Book{}, fmt.Errorf("get book %s: %w", id, err)
		}
		return current, nil
	}

	updated, err := s.repo.UpdateBook(ctx, id, patch)
	if err != nil {
		return book.Book{}, fmt.Errorf("update book %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "book updated", "book_id", id, "admin_id", actor.UserID)
	return updated, nil
}

// Delete removes a book, issued or not.
func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin {
		return &ForbiddenError{Message: MsgDeleteForbidden}
	}
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "book deleted", "book_id", id, "admin_id", actor.UserID)
	return nil
}

func (s *Service) List(ctx context.Context) ([]book.Book, error) {
	return s.repo.ListBooks(ctx, book.Filter{})
}

func (s *Service) ListByGenre(ctx context.Context, genre string) ([]book.Book, error) {
	return s.repo.ListBooks(ctx, book.Filter{Genre: genre})
}

func (s *Service) Get(ctx context.Context, id string) (book.Book, error) {
	return s.repo.GetBook(ctx, id)
}
