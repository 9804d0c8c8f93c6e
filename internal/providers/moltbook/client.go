// Package moltbook fetches posts from the Moltbook API on behalf of a
// caller-supplied credential.
package moltbook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/petpad-xyz/launchpad/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client fetches posts and their author identity
//
// The credential is passed through per call; the client itself holds
// no authentication state.
type Client interface {
	// GetPost fetches a post by id using the supplied API key
	GetPost(ctx context.Context, apiKey, postID string) (*domain.Post, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Moltbook API client
func NewClient(baseURL string, timeout time.Duration) Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// postEnvelope mirrors the wire format; some deployments wrap the post
// in a "post" object and some inline it
type postEnvelope struct {
	Post *postBody `json:"post"`
	postBody
}

type postBody struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Body    string `json:"body"`
	Author  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"author"`
}

// GetPost fetches a post by id using the supplied API key. Transient
// server errors are retried with exponential backoff; authentication
// and not-found failures are surfaced immediately.
func (c *client) GetPost(ctx context.Context, apiKey, postID string) (*domain.Post, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/posts/%s", c.baseURL, postID), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return backoff.Permanent(domain.ErrUnauthorized)
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(domain.ErrPostNotFound)
		case resp.StatusCode >= 500:
			return fmt.Errorf("moltbook returned status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("moltbook returned status %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}

	var envelope postEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode post response: %w", err)
	}

	post := envelope.postBody
	if envelope.Post != nil {
		post = *envelope.Post
	}

	content := post.Content
	if content == "" {
		content = post.Body
	}

	return &domain.Post{
		ID:             postID,
		Content:        content,
		AuthorID:       post.Author.ID,
		AuthorUsername: post.Author.Username,
		URL:            PostURL(postID),
	}, nil
}

// PostURL returns the public permalink for a post
func PostURL(postID string) string {
	return "https://www.moltbook.com/post/" + postID
}
