package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"libraryapi/internal/platform/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeAccounts map[string]bool

func (f fakeAccounts) Exists(_ context.Context, userID string) (bool, error) {
	if userID == "boom" {
		return false, errors.New("store down")
	}
	return f[userID], nil
}

func TestAuthMiddleware(t *testing.T) {
	accounts := fakeAccounts{"user-1": true, "admin-1": true}

	var gotUser string
	var gotAdmin bool
	protected := AuthMiddleware(testSecret, accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFrom(r)
		gotAdmin = IsAdminFrom(r)
		w.WriteHeader(http.StatusOK)
	}))

	token := func(userID string, admin bool) string {
		tok, _, err := crypto.GenerateToken(testSecret, userID, admin, time.Hour)
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
		wantAdmin  bool
	}{
		{"member", "Bearer " + token("user-1", false), http.StatusOK, "user-1", false},
		{"admin", "Bearer " + token("admin-1", true), http.StatusOK, "admin-1", true},
		{"missing header", "", http.StatusUnauthorized, "", false},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "", false},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized, "", false},
		{"deleted account", "Bearer " + token("gone", false), http.StatusUnauthorized, "", false},
		{"lookup failure", "Bearer " + token("boom", false), http.StatusInternalServerError, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser, gotAdmin = "", false
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			protected.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantUser, gotUser)
			assert.Equal(t, tt.wantAdmin, gotAdmin)
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	protected := AuthMiddleware(testSecret, nil)(okHandler())

	tok, _, err := crypto.GenerateToken(testSecret, "user-1", false, -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
