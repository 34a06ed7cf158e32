package catalog

import (
	"context"
	"errors"
	"testing"

	"libraryapi/internal/book"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin  = Actor{UserID: "admin-1", IsAdmin: true}
	member = Actor{UserID: "member-1"}
)

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo, nil)
	ctx := context.Background()

	t.Run("admin creates available book", func(t *testing.T) {
		mockRepo.EXPECT().
			CreateBook(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, b *book.Book) error {
				assert.Equal(t, "Dune", b.CoverName)
				assert.False(t, b.IsIssued)
				assert.Empty(t, b.IssuedBy)
				b.ID = "b1"
				return nil
			})

		created, err := service.Create(ctx, admin, book.Fields{CoverName: "  Dune ", AuthorName: "Frank Herbert", Genre: "SciFi"})
		require.NoError(t, err)
		assert.Equal(t, "b1", created.ID)
		assert.Equal(t, "Dune", created.CoverName)
	})

	t.Run("member is forbidden and nothing is stored", func(t *testing.T) {
		_, err := service.Create(ctx, member, book.Fields{CoverName: "Dune", AuthorName: "Frank Herbert", Genre: "SciFi"})

		require.ErrorIs(t, err, ErrForbidden)
		var fe *ForbiddenError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "Only admin can add a book!", fe.Message)
	})

	t.Run("invalid field", func(t *testing.T) {
		_, err := service.Create(ctx, admin, book.Fields{CoverName: "Dune", AuthorName: "Fr", Genre: "SciFi"})

		var vErr *book.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "authorName", vErr.Field)
	})

	t.Run("store failure", func(t *testing.T) {
		mockRepo.EXPECT().CreateBook(gomock.Any(), gomock.Any()).Return(errors.New("db error"))

		_, err := service.Create(ctx, admin, book.Fields{CoverName: "Dune", AuthorName: "Frank", Genre: "SciFi"})
		assert.Error(t, err)
	})
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo, nil)
	ctx := context.Background()
	genre := "Classic"

	t.Run("admin merges patch", func(t *testing.T) {
		mockRepo.EXPECT().
			UpdateBook(gomock.Any(), "b1", book.Patch{Genre: &genre}).
			Return(book.Book{ID: "b1", Genre: genre}, nil)

		updated, err := service.Update(ctx, admin, "b1", book.Patch{Genre: &genre})
		require.NoError(t, err)
		assert.Equal(t, genre, updated.Genre)
	})

	t.Run("missing book", func(t *testing.T) {
		mockRepo.EXPECT().UpdateBook(gomock.Any(), "nope", gomock.Any()).Return(book.Book{}, book.ErrNotFound)

		_, err := service.Update(ctx, admin, "nope", book.Patch{Genre: &genre})
		assert.ErrorIs(t, err, book.ErrNotFound)
	})

	t.Run("empty patch reads without writing", func(t *testing.T) {
		mockRepo.EXPECT().GetBook(gomock.Any(), "b1").Return(book.Book{ID: "b1", Genre: "SciFi"}, nil)

		current, err := service.Update(ctx, admin, "b1", book.Patch{})
		require.NoError(t, err)
		assert.Equal(t, "SciFi", current.Genre)
	})

	t.Run("empty patch on missing book", func(t *testing.T) {
		mockRepo.EXPECT().GetBook(gomock.Any(), "nope").Return(book.Book{}, book.ErrNotFound)

		_, err := service.Update(ctx, admin, "nope", book.Patch{})
		assert.ErrorIs(t, err, book.ErrNotFound)
	})

	t.Run("member is forbidden", func(t *testing.T) {
		_, err := service.Update(ctx, member, "b1", book.Patch{Genre: &genre})
		var fe *ForbiddenError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "Only admin can update a book!", fe.Message)
	})

	t.Run("short field", func(t *testing.T) {
		short := " ab "
		_, err := service.Update(ctx, admin, "b1", book.Patch{CoverName: &short})
		var vErr *book.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "coverName", vErr.Field)
	})
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.EXPECT().DeleteBook(gomock.Any(), "b1").Return(nil)
	assert.NoError(t, service.Delete(ctx, admin, "b1"))

	mockRepo.EXPECT().DeleteBook(gomock.Any(), "b2").Return(book.ErrNotFound)
	assert.ErrorIs(t, service.Delete(ctx, admin, "b2"), book.ErrNotFound)

	err := service.Delete(ctx, member, "b1")
	var fe *ForbiddenError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Only admin can remove a book!", fe.Message)
}

func TestService_Reads(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.EXPECT().ListBooks(gomock.Any(), book.Filter{}).Return([]book.Book{{ID: "b1"}}, nil)
	all, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	mockRepo.EXPECT().ListBooks(gomock.Any(), book.Filter{Genre: "SciFi"}).Return([]book.Book{}, nil)
	scifi, err := service.ListByGenre(ctx, "SciFi")
	require.NoError(t, err)
	assert.Empty(t, scifi)

	mockRepo.EXPECT().GetBook(gomock.Any(), "b1").Return(book.Book{ID: "b1"}, nil)
	got, err := service.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", got.ID)
}
