// Package store implements book and user persistence on Postgres, SQLite
// and process memory. Every store satisfies catalog.Repository,
// circulation.Store and user.Repository.
package store

import (
	"context"
	"io"

	"libraryapi/internal/catalog"
	"libraryapi/internal/circulation"
	"libraryapi/internal/user"
)

// Store is the full persistence surface the application wires.
type Store interface {
	catalog.Repository
	circulation.Store
	user.Repository
	Ping(ctx context.Context) error
	io.Closer
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Postgres)(nil)
	_ Store = (*SQLite)(nil)
)
