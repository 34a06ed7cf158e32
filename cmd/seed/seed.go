package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"libraryapi/internal/book"
	"libraryapi/internal/catalog"
	"libraryapi/internal/user"
)

var (
	genres = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}
	words  = []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	surnames = []string{"Austen", "Herbert", "Le Guin", "Orwell", "Tolkien", "Woolf", "Borges", "Achebe", "Murakami", "Shelley"}
)

type accountCreator interface {
	Signup(ctx context.Context, email, username, password string, isAdmin bool) (user.User, error)
}

// seedAdmin creates an administrator. An existing account with the same
// email is reported, not overwritten.
func seedAdmin(ctx context.Context, accounts accountCreator, email, username, password string) (user.User, error) {
	u, err := accounts.Signup(ctx, email, username, password, true)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			return user.User{}, fmt.Errorf("account %s already exists", email)
		}
		return user.User{}, err
	}
	return u, nil
}

// seedBooks adds count random books through the catalog, so every row passes
// the same validation as an admin request.
func seedBooks(ctx context.Context, books *catalog.Service, rng *rand.Rand, count int, progress func(done int)) (int, error) {
	admin := catalog.Actor{UserID: "seed", IsAdmin: true}
	for i := 0; i < count; i++ {
		fields := book.Fields{
			CoverName:  fmt.Sprintf("Book Title %d - %s", i+1, pick(rng, words)),
			AuthorName: fmt.Sprintf("%s %s", pick(rng, words), pick(rng, surnames)),
			Genre:      pick(rng, genres),
		}
		if _, err := books.Create(ctx, admin, fields); err != nil {
			return i, fmt.Errorf("insert book %d: %w", i+1, err)
		}
		if progress != nil && (i+1)%1000 == 0 {
			progress(i + 1)
		}
	}
	return count, nil
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.Intn(len(from))]
}
