package circulation

import (
	"context"
	"fmt"
	"log/slog"

	"libraryapi/internal/book"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "libraryapi/internal/circulation"

// Service runs the per-book issue/return state machine. It holds no locks:
// every transition is a single conditional write in the store.
type Service struct {
	store  Store
	logger *slog.Logger
	tracer trace.Tracer
}

type Option func(*Service)

// WithTracer overrides the globally registered tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// Issue lends bookID to requesterID if it is available.
func (s *Service) Issue(ctx context.Context, bookID, requesterID string) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.Issue", trace.WithAttributes(
		attribute.String("book.id", bookID),
		attribute.String("user.id", requesterID),
	))
	defer span.End()

	current, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return 0, s.fail(span, "load book", err)
	}

	var outcome Outcome
	switch {
	case current.HeldBy(requesterID):
		outcome = AlreadyHeldBySelf
	case !current.Available():
		outcome = HeldByOther
	default:
		after, applied, err := s.store.IssueBook(ctx, bookID, requesterID)
		if err != nil {
			return 0, s.fail(span, "issue book", err)
		}
		outcome = issueOutcome(after, applied, requesterID)
	}

	s.record(ctx, span, "issue", bookID, requesterID, outcome)
	return outcome, nil
}

// issueOutcome interprets the state the store reports after a conditional
// write. A lost race is never retried.
func issueOutcome(after book.Book, applied bool, requesterID string) Outcome {
	switch {
	case applied:
		return Issued
	case after.HeldBy(requesterID):
		return AlreadyHeldBySelf
	default:
		return HeldByOther
	}
}

// Return gives bookID back if requesterID is its holder.
func (s *Service) Return(ctx context.Context, bookID, requesterID string) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.Return", trace.WithAttributes(
		attribute.String("book.id", bookID),
		attribute.String("user.id", requesterID),
	))
	defer span.End()

	current, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return 0, s.fail(span, "load book", err)
	}

	outcome := NotHeld
	if current.HeldBy(requesterID) {
		_, applied, err := s.store.ReturnBook(ctx, bookID, requesterID)
		if err != nil {
			return 0, s.fail(span, "return book", err)
		}
		if applied {
			outcome = Returned
		}
	}

	s.record(ctx, span, "return", bookID, requesterID, outcome)
	return outcome, nil
}

// MyBooks lists the books requesterID currently holds.
func (s *Service) MyBooks(ctx context.Context, requesterID string) ([]book.Book, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.MyBooks", trace.WithAttributes(
		attribute.String("user.id", requesterID),
	))
	defer span.End()

	books, err := s.store.ListBooks(ctx, book.Filter{IssuedBy: requesterID})
	if err != nil {
		return nil, s.fail(span, "list held books", err)
	}
	span.SetAttributes(attribute.Int("books.count", len(books)))
	return books, nil
}

func (s *Service) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) record(ctx context.Context, span trace.Span, action, bookID, requesterID string, outcome Outcome) {
	span.SetAttributes(
		attribute.String("circulation.outcome", outcome.String()),
		attribute.Bool("circulation.applied", outcome.Applied()),
	)
	s.logger.InfoContext(ctx, "circulation "+action,
		"book_id", bookID,
		"user_id", requesterID,
		"outcome", outcome.String(),
	)
}
