package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"libraryapi/internal/book"
	"libraryapi/internal/catalog"
	"libraryapi/internal/platform/openlibrary"
)

type Config struct {
	Subjects []string
	// BooksMax caps how many books a run creates.
	BooksMax int
	// SearchLimit is the page size requested per subject.
	SearchLimit int
}

type OpenLibraryClient interface {
	SearchBySubject(ctx context.Context, subject string, limit int) (*openlibrary.SearchResponse, error)
}

// Service imports works from Open Library into the catalog. Every entry goes
// through catalog.Service as the given administrator, so imported books obey
// the same validation as ones added over HTTP.
type Service struct {
	olClient OpenLibraryClient
	catalog  *catalog.Service
	admin    catalog.Actor
	cfg      Config
	logger   *slog.Logger
}

func NewService(olClient OpenLibraryClient, catalogService *catalog.Service, admin catalog.Actor, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 100
	}
	return &Service{olClient: olClient, catalog: catalogService, admin: admin, cfg: cfg, logger: logger}
}

func (s *Service) Run(ctx context.Context) (run Run, err error) {
	run = Run{
		Subjects:  s.cfg.Subjects,
		BooksMax:  s.cfg.BooksMax,
		StartedAt: time.Now(),
	}
	defer func() {
		run.FinishedAt = time.Now()
		if err != nil {
			run.Status = StatusFailed
			run.Error = err.Error()
		} else {
			run.Status = StatusCompleted
		}
		s.logger.InfoContext(ctx, "ingest finished",
			"status", run.Status,
			"fetched", run.BooksFetched,
			"imported", run.BooksImported,
			"skipped", run.BooksSkipped,
		)
	}()

	existing, err := s.catalog.List(ctx)
	if err != nil {
		return run, fmt.Errorf("list catalog: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, b := range existing {
		seen[dedupeKey(b.CoverName, b.AuthorName)] = true
	}

	for _, subject := range s.cfg.Subjects {
		if s.cfg.BooksMax > 0 && run.BooksImported >= s.cfg.BooksMax {
			break
		}

		searchRes, err := s.olClient.SearchBySubject(ctx, subject, s.cfg.SearchLimit)
		if err != nil {
			return run, fmt.Errorf("search failed for %s: %w", subject, err)
		}
		run.BooksFetched += len(searchRes.Docs)

		genre := genreFor(subject)
		for _, doc := range searchRes.Docs {
			if s.cfg.BooksMax > 0 && run.BooksImported >= s.cfg.BooksMax {
				break
			}
			if len(doc.AuthorNames) == 0 {
				run.BooksSkipped++
				continue
			}
			fields := book.Fields{CoverName: doc.Title, AuthorName: doc.AuthorNames[0], Genre: genre}.Normalize()
			key := dedupeKey(fields.CoverName, fields.AuthorName)
			if seen[key] {
				run.BooksSkipped++
				continue
			}

			if _, err := s.catalog.Create(ctx, s.admin, fields); err != nil {
				var invalid *book.ValidationError
				if errors.As(err, &invalid) {
					s.logger.DebugContext(ctx, "skipping work", "key", doc.Key, "reason", invalid.Message)
					run.BooksSkipped++
					continue
				}
				return run, err
			}
			seen[key] = true
			run.BooksImported++
		}
	}

	return run, nil
}

func dedupeKey(title, author string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "\x00" + strings.ToLower(strings.TrimSpace(author))
}

// genreFor turns a subject slug like "science_fiction" into "Science Fiction".
func genreFor(subject string) string {
	words := strings.FieldsFunc(subject, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
