package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/httpx"
	"libraryapi/internal/platform/crypto"
	"libraryapi/internal/user"

	"github.com/golang-jwt/jwt/v5"
)

// TestSecret signs tokens in handler tests.
const TestSecret = "test-secret"

// TestUser is a member account for testing
var TestUser = user.User{
	ID:        "test-user-id-123",
	Username:  "testuser",
	Email:     "test@example.com",
	CreatedAt: time.Now(),
}

// TestAdminUser is an administrator account for testing
var TestAdminUser = user.User{
	ID:        "test-admin-id-456",
	Username:  "adminuser",
	Email:     "admin@example.com",
	IsAdmin:   true,
	CreatedAt: time.Now(),
}

// TestBook is an available book for testing
var TestBook = book.Book{
	ID:         "test-book-id-789",
	CoverName:  "Test Book Title",
	AuthorName: "Test Author",
	Genre:      "Fiction",
	CreatedAt:  time.Now(),
	UpdatedAt:  time.Now(),
}

// GenerateTestToken generates a JWT token for testing
func GenerateTestToken(secret, userID string, isAdmin bool) string {
	token, _, _ := crypto.GenerateToken(secret, userID, isAdmin, time.Hour)
	return token
}

// GenerateExpiredToken generates an expired JWT token for testing
func GenerateExpiredToken(secret, userID string, isAdmin bool) string {
	c := crypto.Claims{
		Sub:   userID,
		Admin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token, _ := t.SignedString([]byte(secret))
	return token
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		if raw, ok := body.(string); ok {
			bodyBytes = []byte(raw)
		} else {
			bodyBytes, _ = json.Marshal(body)
		}
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithAuth creates a new HTTP request with JWT auth for testing
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// AsUser attaches an authenticated caller to r without going through the
// auth middleware.
func AsUser(r *http.Request, userID string, isAdmin bool) *http.Request {
	return r.WithContext(httpx.ContextWithUser(r.Context(), userID, isAdmin))
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
	Raw    []byte
}

// RecordHTTPResponse records the HTTP response. Body is only filled for
// JSON object bodies; Raw always holds the bytes.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
		Raw:    bodyBytes,
	}
}

// DecodeRaw unmarshals the raw body into dst.
func (rr RecordResponse) DecodeRaw(dst interface{}) error {
	return json.Unmarshal(rr.Raw, dst)
}

// ErrorCode returns error.code from an envelope error body.
func (rr RecordResponse) ErrorCode() string {
	errBody, _ := rr.Body["error"].(map[string]interface{})
	code, _ := errBody["code"].(string)
	return code
}

// AssertResponseCode checks if the response code matches expected
func AssertResponseCode(t interface {
	Errorf(format string, args ...any)
}, got, want int) {
	if got != want {
		t.Errorf("got status code %d, want %d", got, want)
	}
}

// AssertResponseBody checks if the response body contains expected field
func AssertResponseBody(t interface {
	Errorf(format string, args ...any)
}, body map[string]interface{}, key string, expectedValue interface{}) {
	value, ok := body[key]
	if !ok {
		t.Errorf("response body missing key %q", key)
		return
	}
	if value != expectedValue {
		t.Errorf("got %q for key %q, want %q", value, key, expectedValue)
	}
}
