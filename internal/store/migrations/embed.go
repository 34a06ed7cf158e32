// Package migrations holds the embedded schema for each SQL backend.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Postgres returns the goose migrations for Postgres.
func Postgres() fs.FS {
	return mustSub("postgres")
}

// SQLite returns the goose migrations for SQLite.
func SQLite() fs.FS {
	return mustSub("sqlite")
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(FS, dir)
	if err != nil {
		panic(fmt.Sprintf("migrations: sub %s: %v", dir, err))
	}
	return sub
}
