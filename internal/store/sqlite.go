package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/circulation"
	"libraryapi/internal/user"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const sqliteBookColumns = `id, cover_name, author_name, genre, is_issued, issued_by, created_at, updated_at`

// SQLite stores books and users in a single SQLite file.
// The pool holds one connection, so writes are serialised by database/sql.
type SQLite struct {
	db      *sqlx.DB
	timeout time.Duration
}

type sqliteBook struct {
	ID         string         `db:"id"`
	CoverName  string         `db:"cover_name"`
	AuthorName string         `db:"author_name"`
	Genre      string         `db:"genre"`
	IsIssued   bool           `db:"is_issued"`
	IssuedBy   sql.NullString `db:"issued_by"`
	CreatedAt  int64          `db:"created_at"`
	UpdatedAt  int64          `db:"updated_at"`
}

func (r sqliteBook) toBook() book.Book {
	return book.Book{
		ID:         r.ID,
		CoverName:  r.CoverName,
		AuthorName: r.AuthorName,
		Genre:      r.Genre,
		IsIssued:   r.IsIssued,
		IssuedBy:   r.IssuedBy.String,
		CreatedAt:  fromMillis(r.CreatedAt),
		UpdatedAt:  fromMillis(r.UpdatedAt),
	}
}

type sqliteUser struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	IsAdmin      bool   `db:"is_admin"`
	CreatedAt    int64  `db:"created_at"`
}

func (r sqliteUser) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Email:        r.Email,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		IsAdmin:      r.IsAdmin,
		CreatedAt:    fromMillis(r.CreatedAt),
	}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens the database at path and applies the embedded schema.
func OpenSQLite(ctx context.Context, path string, timeout time.Duration) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrateSQLite(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &SQLite{db: db, timeout: timeout}, nil
}

func (r *SQLite) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *SQLite) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.PingContext(timeoutCtx)
}

func (r *SQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func sqliteCode(err error) int {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()
	}
	return 0
}

func (r *SQLite) CreateUser(ctx context.Context, u *user.User) error {
	const insertSQL = `
		INSERT INTO users (id, email, username, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id := uuid.NewString()
	createdAt := time.Now().UTC()

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(timeoutCtx, insertSQL, id, u.Email, u.Username, u.PasswordHash, u.IsAdmin, toMillis(createdAt))
	if err != nil {
		switch sqliteCode(err) {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return user.ErrAlreadyExists
		}
		return err
	}
	u.ID = id
	u.CreatedAt = fromMillis(toMillis(createdAt))
	return nil
}

func (r *SQLite) getUser(ctx context.Context, query string, arg string) (user.User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var row sqliteUser
	if err := r.db.GetContext(timeoutCtx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return row.toUser(), nil
}

func (r *SQLite) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getUser(ctx, `
		SELECT id, email, username, password_hash, is_admin, created_at
		FROM users WHERE email = ? COLLATE NOCASE LIMIT 1
	`, email)
}

func (r *SQLite) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return r.getUser(ctx, `
		SELECT id, email, username, password_hash, is_admin, created_at
		FROM users WHERE id = ? LIMIT 1
	`, id)
}

// DeleteUser removes the account; ON DELETE SET NULL releases its books.
func (r *SQLite) DeleteUser(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.db.ExecContext(timeoutCtx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *SQLite) CreateBook(ctx context.Context, b *book.Book) error {
	const insertSQL = `
		INSERT INTO books (id, cover_name, author_name, genre, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING ` + sqliteBookColumns

	now := toMillis(time.Now())
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var row sqliteBook
	if err := r.db.GetContext(timeoutCtx, &row, insertSQL, uuid.NewString(), b.CoverName, b.AuthorName, b.Genre, now, now); err != nil {
		return err
	}
	*b = row.toBook()
	return nil
}

func (r *SQLite) GetBook(ctx context.Context, id string) (book.Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var row sqliteBook
	err := r.db.GetContext(timeoutCtx, &row, `SELECT `+sqliteBookColumns+` FROM books WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}
	return row.toBook(), nil
}

func (r *SQLite) UpdateBook(ctx context.Context, id string, patch book.Patch) (book.Book, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{toMillis(time.Now())}
	if patch.CoverName != nil {
		sets = append(sets, "cover_name = ?")
		args = append(args, *patch.CoverName)
	}
	if patch.AuthorName != nil {
		sets = append(sets, "author_name = ?")
		args = append(args, *patch.AuthorName)
	}
	if patch.Genre != nil {
		sets = append(sets, "genre = ?")
		args = append(args, *patch.Genre)
	}
	args = append(args, id)
	query := `UPDATE books SET ` + strings.Join(sets, ", ") + ` WHERE id = ? RETURNING ` + sqliteBookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var row sqliteBook
	if err := r.db.GetContext(timeoutCtx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}
	return row.toBook(), nil
}

func (r *SQLite) DeleteBook(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.db.ExecContext(timeoutCtx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return book.ErrNotFound
	}
	return nil
}

func (r *SQLite) ListBooks(ctx context.Context, filter book.Filter) ([]book.Book, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Genre != "" {
		where = append(where, "genre = ?")
		args = append(args, filter.Genre)
	}
	if filter.IssuedBy != "" {
		where = append(where, "issued_by = ?")
		args = append(args, filter.IssuedBy)
	}
	query := `SELECT ` + sqliteBookColumns + ` FROM books`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at ASC, rowid ASC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var rows []sqliteBook
	if err := r.db.SelectContext(timeoutCtx, &rows, query, args...); err != nil {
		return nil, err
	}
	books := make([]book.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.toBook())
	}
	return books, nil
}

func (r *SQLite) IssueBook(ctx context.Context, id, holderID string) (book.Book, bool, error) {
	const issueSQL = `
		UPDATE books SET issued_by = ?, updated_at = ?
		WHERE id = ? AND issued_by IS NULL
		RETURNING ` + sqliteBookColumns
	return r.conditionalWrite(ctx, id, issueSQL, holderID, toMillis(time.Now()), id)
}

func (r *SQLite) ReturnBook(ctx context.Context, id, holderID string) (book.Book, bool, error) {
	const returnSQL = `
		UPDATE books SET issued_by = NULL, updated_at = ?
		WHERE id = ? AND issued_by = ?
		RETURNING ` + sqliteBookColumns
	return r.conditionalWrite(ctx, id, returnSQL, toMillis(time.Now()), id, holderID)
}

func (r *SQLite) conditionalWrite(ctx context.Context, id, query string, args ...interface{}) (book.Book, bool, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var row sqliteBook
	err := r.db.GetContext(timeoutCtx, &row, query, args...)
	switch {
	case err == nil:
		return row.toBook(), true, nil
	case errors.Is(err, sql.ErrNoRows):
		current, err := r.GetBook(ctx, id)
		if err != nil {
			return book.Book{}, false, err
		}
		return current, false, nil
	case sqliteCode(err) == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
		return book.Book{}, false, circulation.ErrUnknownHolder
	default:
		return book.Book{}, false, err
	}
}
