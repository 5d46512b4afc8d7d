// Package mastodon is the publishing collaborator: it posts statuses,
// replies to them, and searches for candidate posts to reply to.
package mastodon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"socialcast/internal/core"
	"socialcast/internal/logger"
)

// MaxPostLength is the default status length limit of a Mastodon instance.
const MaxPostLength = 500

// Client talks to a single Mastodon instance with one access token.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client

	// Delay between sequential posts in threads and reply batches. A
	// politeness pause, not rate-limit handling.
	PostDelay time.Duration
}

// NewClient creates a client for the given instance.
func NewClient(accessToken, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://mastodon.social"
	}
	return &Client{
		accessToken: accessToken,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		PostDelay:   2 * time.Second,
	}
}

// status is the wire shape of a Mastodon status.
type status struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	Account   struct {
		ID          string `json:"id"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		URL         string `json:"url"`
	} `json:"account"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
	FavouritesCount int `json:"favourites_count"`
	ReblogsCount    int `json:"reblogs_count"`
	RepliesCount    int `json:"replies_count"`
}

func (s status) toPost() core.Post {
	return core.Post{
		ID:        s.ID,
		Content:   s.Content,
		URL:       s.URL,
		CreatedAt: s.CreatedAt,
		Account: core.Account{
			Username:    s.Account.Username,
			DisplayName: s.Account.DisplayName,
			URL:         s.Account.URL,
		},
		FavouritesCount: s.FavouritesCount,
		ReblogsCount:    s.ReblogsCount,
		RepliesCount:    s.RepliesCount,
	}
}

// AccountInfo returns the authenticated account.
func (c *Client) AccountInfo(ctx context.Context) (core.AccountInfo, error) {
	var account struct {
		ID             string `json:"id"`
		Username       string `json:"username"`
		DisplayName    string `json:"display_name"`
		FollowersCount int    `json:"followers_count"`
		FollowingCount int    `json:"following_count"`
		StatusesCount  int    `json:"statuses_count"`
		URL            string `json:"url"`
	}
	if err := c.request(ctx, http.MethodGet, "/api/v1/accounts/verify_credentials", nil, &account); err != nil {
		return core.AccountInfo{}, fmt.Errorf("failed to verify credentials: %w", err)
	}
	return core.AccountInfo{
		ID:             account.ID,
		Username:       account.Username,
		DisplayName:    account.DisplayName,
		FollowersCount: account.FollowersCount,
		FollowingCount: account.FollowingCount,
		StatusesCount:  account.StatusesCount,
		URL:            account.URL,
	}, nil
}

// PublishOptions controls status visibility and content warnings.
type PublishOptions struct {
	Visibility  string
	Sensitive   bool
	SpoilerText string
}

// Publish posts a new status and returns its identifying fields.
func (c *Client) Publish(ctx context.Context, content string, opts PublishOptions) (core.Status, error) {
	if opts.Visibility == "" {
		opts.Visibility = "public"
	}
	logger.Info("Posting to Mastodon", "chars", len(content), "visibility", opts.Visibility)

	payload := map[string]any{
		"status":     content,
		"visibility": opts.Visibility,
		"sensitive":  opts.Sensitive,
	}
	if opts.SpoilerText != "" {
		payload["spoiler_text"] = opts.SpoilerText
	}

	var posted status
	if err := c.request(ctx, http.MethodPost, "/api/v1/statuses", payload, &posted); err != nil {
		return core.Status{}, fmt.Errorf("failed to post status: %w", err)
	}

	logger.Info("Posted status", "id", posted.ID, "url", posted.URL)
	return core.Status{
		ID:              posted.ID,
		URL:             posted.URL,
		CreatedAt:       posted.CreatedAt,
		Visibility:      opts.Visibility,
		FavouritesCount: posted.FavouritesCount,
		ReblogsCount:    posted.ReblogsCount,
	}, nil
}

// Reply posts a status in reply to an existing one.
func (c *Client) Reply(ctx context.Context, statusID, content, visibility string) (core.Status, error) {
	if visibility == "" {
		visibility = "public"
	}
	payload := map[string]any{
		"status":         content,
		"visibility":     visibility,
		"in_reply_to_id": statusID,
	}

	var posted status
	if err := c.request(ctx, http.MethodPost, "/api/v1/statuses", payload, &posted); err != nil {
		return core.Status{}, fmt.Errorf("failed to post reply: %w", err)
	}
	return core.Status{ID: posted.ID, URL: posted.URL, CreatedAt: posted.CreatedAt}, nil
}

// PostThread posts the contents as a chained thread, pausing PostDelay
// between posts. A failure stops the thread and returns what was posted.
func (c *Client) PostThread(ctx context.Context, contents []string, visibility string) []core.Status {
	if visibility == "" {
		visibility = "public"
	}

	var results []core.Status
	inReplyTo := ""
	for i, content := range contents {
		logger.Info("Posting thread item", "index", i+1, "total", len(contents))

		payload := map[string]any{
			"status":     content,
			"visibility": visibility,
		}
		if inReplyTo != "" {
			payload["in_reply_to_id"] = inReplyTo
		}

		var posted status
		if err := c.request(ctx, http.MethodPost, "/api/v1/statuses", payload, &posted); err != nil {
			logger.Error("Error posting thread item", err, "index", i+1)
			break
		}
		results = append(results, core.Status{ID: posted.ID, URL: posted.URL, CreatedAt: posted.CreatedAt})
		inReplyTo = posted.ID

		if i < len(contents)-1 {
			time.Sleep(c.PostDelay)
		}
	}

	logger.Info("Posted thread", "posts", len(results))
	return results
}

// DeleteStatus removes a posted status. Returns false on failure.
func (c *Client) DeleteStatus(ctx context.Context, statusID string) bool {
	if err := c.request(ctx, http.MethodDelete, "/api/v1/statuses/"+statusID, nil, nil); err != nil {
		logger.Error("Error deleting status", err, "status_id", statusID)
		return false
	}
	logger.Info("Deleted status", "status_id", statusID)
	return true
}

// Search finds recent candidate posts for the query. It first reads the
// hashtag timeline for the normalized query; when that yields nothing it
// falls back to the public timeline filtered by substring match over content
// and tags. Posts from excludeAccountID are dropped on both paths.
func (c *Client) Search(ctx context.Context, query string, limit int, excludeAccountID string) ([]core.Post, error) {
	if limit <= 0 {
		limit = 5
	}

	tag := normalizeTag(query)
	statuses, err := c.tagTimeline(ctx, tag, limit, excludeAccountID)
	if err != nil {
		logger.Warn("Tag timeline lookup failed, falling back to public timeline", "tag", tag, "error", err.Error())
	}
	if len(statuses) > 0 {
		return statuses, nil
	}

	return c.publicTimelineFiltered(ctx, query, limit, excludeAccountID)
}

func (c *Client) tagTimeline(ctx context.Context, tag string, limit int, excludeAccountID string) ([]core.Post, error) {
	if tag == "" {
		return nil, nil
	}

	var statuses []status
	path := fmt.Sprintf("/api/v1/timelines/tag/%s?limit=%d", url.PathEscape(tag), limit)
	if err := c.request(ctx, http.MethodGet, path, nil, &statuses); err != nil {
		return nil, err
	}

	var posts []core.Post
	for _, s := range statuses {
		if s.Account.ID == excludeAccountID {
			continue
		}
		posts = append(posts, s.toPost())
		if len(posts) >= limit {
			break
		}
	}
	return posts, nil
}

func (c *Client) publicTimelineFiltered(ctx context.Context, query string, limit int, excludeAccountID string) ([]core.Post, error) {
	var statuses []status
	if err := c.request(ctx, http.MethodGet, "/api/v1/timelines/public?limit=40", nil, &statuses); err != nil {
		return nil, fmt.Errorf("failed to fetch public timeline: %w", err)
	}

	needle := strings.ToLower(query)
	var posts []core.Post
	for _, s := range statuses {
		if s.Account.ID == excludeAccountID {
			continue
		}
		if !statusMatches(s, needle) {
			continue
		}
		posts = append(posts, s.toPost())
		if len(posts) >= limit {
			break
		}
	}

	logger.Info("Searched public timeline", "query", query, "matches", len(posts))
	return posts, nil
}

func statusMatches(s status, needle string) bool {
	if strings.Contains(strings.ToLower(s.Content), needle) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag.Name), needle) {
			return true
		}
	}
	return false
}

// normalizeTag reduces a query to a hashtag-like token: lowercase with
// non-alphanumeric characters removed.
func normalizeTag(query string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(query) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (c *Client) request(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Mastodon API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
