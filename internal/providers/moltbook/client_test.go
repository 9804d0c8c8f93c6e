package moltbook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petpad-xyz/launchpad/internal/domain"
)

func TestGetPost_WrappedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/post-1", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"post":{"id":"post-1","content":"!petpad name: Fido","author":{"id":"agent-1","username":"rex_launcher"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	post, err := client.GetPost(context.Background(), "secret-key", "post-1")
	require.NoError(t, err)

	assert.Equal(t, "post-1", post.ID)
	assert.Equal(t, "!petpad name: Fido", post.Content)
	assert.Equal(t, "agent-1", post.AuthorID)
	assert.Equal(t, "rex_launcher", post.AuthorUsername)
	assert.Equal(t, "https://www.moltbook.com/post/post-1", post.URL)
}

func TestGetPost_InlinePostWithBodyField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"post-2","body":"!petpad symbol: REX","author":{"id":"agent-2","username":"cathy"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	post, err := client.GetPost(context.Background(), "key", "post-2")
	require.NoError(t, err)

	assert.Equal(t, "!petpad symbol: REX", post.Content)
	assert.Equal(t, "agent-2", post.AuthorID)
}

func TestGetPost_Unauthorized(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.GetPost(context.Background(), "bad-key", "post-1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	// Auth failures are permanent and must not be retried.
	assert.EqualValues(t, 1, calls.Load())
}

func TestGetPost_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.GetPost(context.Background(), "key", "missing")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestGetPost_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"post-1","content":"hello","author":{"id":"a","username":"u"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	post, err := client.GetPost(context.Background(), "key", "post-1")
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Content)
	assert.EqualValues(t, 3, calls.Load())
}
