package catalog

//go:generate mockgen -source=ports.go -destination=mock_repository_test.go -package=catalog

import (
	"context"

	"libraryapi/internal/book"
)

// Repository defines the contract for catalog storage.
//
// UpdateBook merges the patch without touching circulation state.
type Repository interface {
	CreateBook(ctx context.Context, b *book.Book) error
	GetBook(ctx context.Context, id string) (book.Book, error)
	UpdateBook(ctx context.Context, id string, patch book.Patch) (book.Book, error)
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, filter book.Filter) ([]book.Book, error)
}
