package book

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// Book represents a catalogued book and its circulation state.
//
// IsIssued is true exactly when IssuedBy holds the id of the current holder.
type Book struct {
	ID         string    `json:"id"`
	CoverName  string    `json:"coverName"`
	AuthorName string    `json:"authorName"`
	Genre      string    `json:"genre"`
	IsIssued   bool      `json:"isIssued"`
	IssuedBy   string    `json:"issuedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Available reports whether the book can be issued.
func (b Book) Available() bool {
	return !b.IsIssued
}

// HeldBy reports whether userID is the current holder.
func (b Book) HeldBy(userID string) bool {
	return b.IsIssued && userID != "" && b.IssuedBy == userID
}

// Fields are the catalog attributes an administrator supplies on create.
type Fields struct {
	CoverName  string
	AuthorName string
	Genre      string
}

// Patch carries the catalog attributes to merge on update. Nil means "keep".
type Patch struct {
	CoverName  *string
	AuthorName *string
	Genre      *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.CoverName == nil && p.AuthorName == nil && p.Genre == nil
}

// Apply merges the patch into b and returns the result.
func (p Patch) Apply(b Book) Book {
	if p.CoverName != nil {
		b.CoverName = *p.CoverName
	}
	if p.AuthorName != nil {
		b.AuthorName = *p.AuthorName
	}
	if p.Genre != nil {
		b.Genre = *p.Genre
	}
	return b
}

// Filter narrows a listing. The zero value matches every book.
type Filter struct {
	Genre    string
	IssuedBy string
}

// Match reports whether b satisfies the filter.
func (f Filter) Match(b Book) bool {
	if f.Genre != "" && b.Genre != f.Genre {
		return false
	}
	if f.IssuedBy != "" && b.IssuedBy != f.IssuedBy {
		return false
	}
	return true
}
