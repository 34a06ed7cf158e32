package circulation

import (
	"context"

	"libraryapi/internal/book"
)

// Store is the persistence the engine needs.
//
// IssueBook and ReturnBook are single conditional writes. They return the
// book as it stands after the attempt and whether the write applied; a
// write that did not apply is not an error. Both return book.ErrNotFound
// when the book no longer exists.
type Store interface {
	GetBook(ctx context.Context, id string) (book.Book, error)
	// IssueBook sets the holder only if the book is currently available.
	IssueBook(ctx context.Context, id, holderID string) (book.Book, bool, error)
	// ReturnBook clears the holder only if holderID currently holds the book.
	ReturnBook(ctx context.Context, id, holderID string) (book.Book, bool, error)
	ListBooks(ctx context.Context, filter book.Filter) ([]book.Book, error)
}
