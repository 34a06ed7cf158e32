package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/circulation"
	"libraryapi/internal/user"

	"github.com/google/uuid"
)

type memBook struct {
	seq uint64
	b   book.Book
}

// Memory keeps users and books in process memory.
// A single mutex guards both maps so that user deletion and the release of
// the user's books happen in one step.
type Memory struct {
	mu      sync.RWMutex
	seq     uint64
	books   map[string]*memBook
	users   map[string]user.User
	byEmail map[string]string
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		books:   make(map[string]*memBook),
		users:   make(map[string]user.User),
		byEmail: make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) CreateUser(ctx context.Context, u *user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, taken := m.byEmail[key]; taken {
		return user.ErrAlreadyExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}
	m.users[u.ID] = *u
	m.byEmail[key] = u.ID
	return nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return m.users[id], nil
}

func (m *Memory) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// DeleteUser removes the account and releases every book it holds.
func (m *Memory) DeleteUser(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return user.ErrNotFound
	}
	now := m.now()
	for _, mb := range m.books {
		if mb.b.IssuedBy == id {
			mb.b.IssuedBy = ""
			mb.b.IsIssued = false
			mb.b.UpdatedAt = now
		}
	}
	delete(m.byEmail, strings.ToLower(u.Email))
	delete(m.users, id)
	return nil
}

func (m *Memory) CreateBook(ctx context.Context, b *book.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b.ID = uuid.NewString()
	b.IsIssued = false
	b.IssuedBy = ""
	b.CreatedAt = now
	b.UpdatedAt = now

	m.seq++
	m.books[b.ID] = &memBook{seq: m.seq, b: *b}
	return nil
}

func (m *Memory) GetBook(ctx context.Context, id string) (book.Book, error) {
	if err := ctx.Err(); err != nil {
		return book.Book{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	mb, ok := m.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return mb.b, nil
}

func (m *Memory) UpdateBook(ctx context.Context, id string, patch book.Patch) (book.Book, error) {
	if err := ctx.Err(); err != nil {
		return book.Book{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	mb, ok := m.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	mb.b = patch.Apply(mb.b)
	mb.b.UpdatedAt = m.now()
	return mb.b, nil
}

func (m *Memory) DeleteBook(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return book.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

// ListBooks returns matching books in creation order.
func (m *Memory) ListBooks(ctx context.Context, filter book.Filter) ([]book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	matched := make([]*memBook, 0, len(m.books))
	for _, mb := range m.books {
		if filter.Match(mb.b) {
			matched = append(matched, mb)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	out := make([]book.Book, 0, len(matched))
	for _, mb := range matched {
		out = append(out, mb.b)
	}
	return out, nil
}

func (m *Memory) IssueBook(ctx context.Context, id, holderID string) (book.Book, bool, error) {
	if err := ctx.Err(); err != nil {
		return book.Book{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	mb, ok := m.books[id]
	if !ok {
		return book.Book{}, false, book.ErrNotFound
	}
	if mb.b.IsIssued {
		return mb.b, false, nil
	}
	if _, ok := m.users[holderID]; !ok {
		return book.Book{}, false, circulation.ErrUnknownHolder
	}
	mb.b.IsIssued = true
	mb.b.IssuedBy = holderID
	mb.b.UpdatedAt = m.now()
	return mb.b, true, nil
}

func (m *Memory) ReturnBook(ctx context.Context, id, holderID string) (book.Book, bool, error) {
	if err := ctx.Err(); err != nil {
		return book.Book{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	mb, ok := m.books[id]
	if !ok {
		return book.Book{}, false, book.ErrNotFound
	}
	if !mb.b.HeldBy(holderID) {
		return mb.b, false, nil
	}
	mb.b.IsIssued = false
	mb.b.IssuedBy = ""
	mb.b.UpdatedAt = m.now()
	return mb.b, true, nil
}
