package ingest

import (
	"time"
)

// Run statuses.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Run summarizes one import.
type Run struct {
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	Subjects     []string
	BooksMax     int
	BooksFetched int
	// BooksImported counts catalog entries created by this run.
	BooksImported int
	// BooksSkipped counts hits that were duplicates or failed validation.
	BooksSkipped int
	Error        string
}
