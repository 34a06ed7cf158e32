package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/circulation"
	"libraryapi/internal/user"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	tableBooks = "books"
	tableUsers = "users"

	colID         = "id"
	colCoverName  = "cover_name"
	colAuthorName = "author_name"
	colGenre      = "genre"
	colIsIssued   = "is_issued"
	colIssuedBy   = "issued_by"
	colCreatedAt  = "created_at"
	colUpdatedAt  = "updated_at"
	colEmail      = "email"
	colUsername   = "username"
	colPassword   = "password_hash"
	colIsAdmin    = "is_admin"

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var pgDialect = goqu.Dialect("postgres")

// Postgres stores books and users in PostgreSQL.
type Postgres struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// defaultQueryTimeout bounds each statement when the caller passes none.
const defaultQueryTimeout = 3 * time.Second

func NewPostgres(db *pgxpool.Pool, timeout time.Duration) *Postgres {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Postgres{db: db, timeout: timeout}
}

func (r *Postgres) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Postgres) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(timeoutCtx)
}

func (r *Postgres) Close() error {
	r.db.Close()
	return nil
}

func pgBookColumns() []interface{} {
	return []interface{}{
		goqu.L("id::text").As(colID),
		goqu.C(colCoverName),
		goqu.C(colAuthorName),
		goqu.C(colGenre),
		goqu.C(colIsIssued),
		goqu.L("COALESCE(issued_by::text, '')").As(colIssuedBy),
		goqu.C(colCreatedAt),
		goqu.C(colUpdatedAt),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPGBook(row rowScanner) (book.Book, error) {
	var b book.Book
	err := row.Scan(&b.ID, &b.CoverName, &b.AuthorName, &b.Genre, &b.IsIssued, &b.IssuedBy, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// validID filters out ids Postgres would reject as malformed uuids.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *Postgres) CreateUser(ctx context.Context, u *user.User) error {
	query, args, err := pgDialect.Insert(tableUsers).
		Rows(goqu.Record{
			colEmail:    u.Email,
			colUsername: u.Username,
			colPassword: u.PasswordHash,
			colIsAdmin:  u.IsAdmin,
		}).
		Returning(goqu.L("id::text"), goqu.C(colCreatedAt)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, query, args...).Scan(&u.ID, &u.CreatedAt); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return user.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Postgres) getUser(ctx context.Context, where goqu.Expression) (user.User, error) {
	query, args, err := pgDialect.From(tableUsers).
		Select(goqu.L("id::text"), goqu.C(colEmail), goqu.C(colUsername), goqu.C(colPassword), goqu.C(colIsAdmin), goqu.C(colCreatedAt)).
		Where(where).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return user.User{}, fmt.Errorf("build select user: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var u user.User
	err = r.db.QueryRow(timeoutCtx, query, args...).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *Postgres) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getUser(ctx, goqu.Func("lower", goqu.C(colEmail)).Eq(strings.ToLower(email)))
}

func (r *Postgres) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if !validID(id) {
		return user.User{}, user.ErrNotFound
	}
	return r.getUser(ctx, goqu.C(colID).Eq(id))
}

// DeleteUser removes the account. The issued_by foreign key releases the
// user's books in the same statement.
func (r *Postgres) DeleteUser(ctx context.Context, id string) error {
	if !validID(id) {
		return user.ErrNotFound
	}
	query, args, err := pgDialect.Delete(tableUsers).Where(goqu.C(colID).Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete user: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *Postgres) CreateBook(ctx context.Context, b *book.Book) error {
	query, args, err := pgDialect.Insert(tableBooks).
		Rows(goqu.Record{
			colCoverName:  b.CoverName,
			colAuthorName: b.AuthorName,
			colGenre:      b.Genre,
		}).
		Returning(pgBookColumns()...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert book: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	created, err := scanPGBook(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		return err
	}
	*b = created
	return nil
}

func (r *Postgres) GetBook(ctx context.Context, id string) (book.Book, error) {
	if !validID(id) {
		return book.Book{}, book.ErrNotFound
	}
	query, args, err := pgDialect.From(tableBooks).
		Select(pgBookColumns()...).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return book.Book{}, fmt.Errorf("build select book: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanPGBook(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}
	return b, nil
}

func (r *Postgres) UpdateBook(ctx context.Context, id string, patch book.Patch) (book.Book, error) {
	if !validID(id) {
		return book.Book{}, book.ErrNotFound
	}
	set := goqu.Record{colUpdatedAt: goqu.L("NOW()")}
	if patch.CoverName != nil {
		set[colCoverName] = *patch.CoverName
	}
	if patch.AuthorName != nil {
		set[colAuthorName] = *patch.AuthorName
	}
	if patch.Genre != nil {
		set[colGenre] = *patch.Genre
	}

	query, args, err := pgDialect.Update(tableBooks).
		Set(set).
		Where(goqu.C(colID).Eq(id)).
		Returning(pgBookColumns()...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return book.Book{}, fmt.Errorf("build update book: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanPGBook(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}
	return b, nil
}

func (r *Postgres) DeleteBook(ctx context.Context, id string) error {
	if !validID(id) {
		return book.ErrNotFound
	}
	query, args, err := pgDialect.Delete(tableBooks).Where(goqu.C(colID).Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete book: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return book.ErrNotFound
	}
	return nil
}

func (r *Postgres) ListBooks(ctx context.Context, filter book.Filter) ([]book.Book, error) {
	ds := pgDialect.From(tableBooks).Select(pgBookColumns()...)
	if filter.Genre != "" {
		ds = ds.Where(goqu.C(colGenre).Eq(filter.Genre))
	}
	if filter.IssuedBy != "" {
		if !validID(filter.IssuedBy) {
			return []book.Book{}, nil
		}
		ds = ds.Where(goqu.C(colIssuedBy).Eq(filter.IssuedBy))
	}
	query, args, err := ds.Order(goqu.C(colCreatedAt).Asc(), goqu.C(colID).Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list books: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []book.Book{}
	for rows.Next() {
		b, err := scanPGBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// IssueBook sets the holder in one conditional UPDATE. Concurrent callers
// serialise on the row lock; losers match zero rows.
func (r *Postgres) IssueBook(ctx context.Context, id, holderID string) (book.Book, bool, error) {
	if !validID(id) {
		return book.Book{}, false, book.ErrNotFound
	}
	if !validID(holderID) {
		return book.Book{}, false, circulation.ErrUnknownHolder
	}
	query, args, err := pgDialect.Update(tableBooks).
		Set(goqu.Record{colIssuedBy: holderID, colUpdatedAt: goqu.L("NOW()")}).
		Where(goqu.C(colID).Eq(id), goqu.C(colIssuedBy).IsNull()).
		Returning(pgBookColumns()...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return book.Book{}, false, fmt.Errorf("build issue book: %w", err)
	}
	return r.conditionalWrite(ctx, id, query, args)
}

// ReturnBook clears the holder only while holderID still holds the book.
func (r *Postgres) ReturnBook(ctx context.Context, id, holderID string) (book.Book, bool, error) {
	if !validID(id) {
		return book.Book{}, false, book.ErrNotFound
	}
	if !validID(holderID) {
		b, err := r.GetBook(ctx, id)
		return b, false, err
	}
	query, args, err := pgDialect.Update(tableBooks).
		Set(goqu.Record{colIssuedBy: nil, colUpdatedAt: goqu.L("NOW()")}).
		Where(goqu.C(colID).Eq(id), goqu.C(colIssuedBy).Eq(holderID)).
		Returning(pgBookColumns()...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return book.Book{}, false, fmt.Errorf("build return book: %w", err)
	}
	return r.conditionalWrite(ctx, id, query, args)
}

func (r *Postgres) conditionalWrite(ctx context.Context, id, query string, args []interface{}) (book.Book, bool, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanPGBook(r.db.QueryRow(timeoutCtx, query, args...))
	switch {
	case err == nil:
		return b, true, nil
	case errors.Is(err, pgx.ErrNoRows):
		current, err := r.GetBook(ctx, id)
		if err != nil {
			return book.Book{}, false, err
		}
		return current, false, nil
	case pgCode(err) == pgForeignKeyViolation:
		return book.Book{}, false, circulation.ErrUnknownHolder
	default:
		return book.Book{}, false, err
	}
}
