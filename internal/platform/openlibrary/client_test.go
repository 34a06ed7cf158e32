package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("libraryapi-test", 1000, 2, WithBaseURL(srv.URL), WithBackoff(time.Millisecond))
}

func TestSearchBySubject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "subject:science fiction", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "libraryapi-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"numFound":2,"docs":[
			{"key":"/works/OL1W","title":"Dune","author_name":["Frank Herbert"],"first_publish_year":1965},
			{"key":"/works/OL2W","title":"Solaris","author_name":["Stanisław Lem"]}
		]}`))
	})

	res, err := c.SearchBySubject(context.Background(), "science fiction", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.NumFound)
	require.Len(t, res.Docs, 2)
	assert.Equal(t, "Dune", res.Docs[0].Title)
	assert.Equal(t, []string{"Frank Herbert"}, res.Docs[0].AuthorNames)
	assert.Equal(t, 1965, res.Docs[0].FirstPublishYear)
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"numFound":0,"docs":[]}`))
	})

	_, err := c.SearchBySubject(context.Background(), "fantasy", 10)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.SearchBySubject(context.Background(), "fantasy", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.SearchBySubject(context.Background(), "fantasy", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}
