// Package knowledge fetches company information from a Notion page and
// renders it as a markdown-like summary for generation context.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"socialcast/internal/logger"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	notionVersion  = "2022-06-28"
)

// Client fetches and caches the content of a single Notion page. The cache
// lives for the process unless Invalidate is called.
type Client struct {
	apiKey     string
	pageID     string
	baseURL    string
	httpClient *http.Client

	cached *pageContent
}

// NewClient creates a client for the given API key and page.
func NewClient(apiKey, pageID string) *Client {
	return &Client{
		apiKey:     apiKey,
		pageID:     pageID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetBaseURL overrides the API root, used by tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// heading is a parsed heading block with its level.
type heading struct {
	Level int
	Text  string
}

// pageContent is the parsed structure of the Notion page.
type pageContent struct {
	Title      string
	Headings   []heading
	Paragraphs []string
	Lists      []string
	Quotes     []string
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type blockBody struct {
	RichText []richText `json:"rich_text"`
}

type block struct {
	Type             string     `json:"type"`
	Paragraph        *blockBody `json:"paragraph"`
	Heading1         *blockBody `json:"heading_1"`
	Heading2         *blockBody `json:"heading_2"`
	Heading3         *blockBody `json:"heading_3"`
	BulletedListItem *blockBody `json:"bulleted_list_item"`
	NumberedListItem *blockBody `json:"numbered_list_item"`
	Quote            *blockBody `json:"quote"`
}

type blocksResponse struct {
	Results []block `json:"results"`
}

type pageProperty struct {
	Type  string     `json:"type"`
	Title []richText `json:"title"`
}

type pageResponse struct {
	Properties map[string]pageProperty `json:"properties"`
}

// CompanyInfoSummary returns a markdown-like rendering of the page: title,
// headings, then paragraphs. The result is cached until Invalidate.
func (c *Client) CompanyInfoSummary(ctx context.Context) (string, error) {
	content, err := c.fetchPageContent(ctx)
	if err != nil {
		return "", err
	}

	parts := []string{fmt.Sprintf("# %s\n", content.Title)}
	for _, h := range content.Headings {
		parts = append(parts, fmt.Sprintf("\n%s %s", strings.Repeat("#", h.Level+1), h.Text))
	}
	parts = append(parts, content.Paragraphs...)

	return strings.Join(parts, "\n\n"), nil
}

// Invalidate clears the cached page content. The next summary request
// refetches from Notion.
func (c *Client) Invalidate() {
	c.cached = nil
	logger.Info("Cleared Notion cache")
}

func (c *Client) fetchPageContent(ctx context.Context) (*pageContent, error) {
	if c.cached != nil {
		logger.Debug("Using cached Notion content")
		return c.cached, nil
	}

	logger.Info("Fetching Notion page", "page_id", c.pageID)

	var page pageResponse
	if err := c.get(ctx, "/pages/"+c.pageID, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	var blocks blocksResponse
	if err := c.get(ctx, "/blocks/"+c.pageID+"/children", &blocks); err != nil {
		return nil, fmt.Errorf("failed to fetch page blocks: %w", err)
	}

	content := parseBlocks(blocks.Results)
	content.Title = extractPageTitle(page)

	c.cached = content
	logger.Info("Fetched Notion page", "title", content.Title)
	return content, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", notionVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Notion API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func extractPageTitle(page pageResponse) string {
	for _, prop := range page.Properties {
		if prop.Type == "title" && len(prop.Title) > 0 {
			return prop.Title[0].PlainText
		}
	}
	return "Untitled"
}

func parseBlocks(blocks []block) *pageContent {
	content := &pageContent{}

	for _, b := range blocks {
		switch b.Type {
		case "paragraph":
			if text := blockText(b.Paragraph); text != "" {
				content.Paragraphs = append(content.Paragraphs, text)
			}
		case "heading_1":
			appendHeading(content, 1, b.Heading1)
		case "heading_2":
			appendHeading(content, 2, b.Heading2)
		case "heading_3":
			appendHeading(content, 3, b.Heading3)
		case "bulleted_list_item":
			if text := blockText(b.BulletedListItem); text != "" {
				content.Lists = append(content.Lists, text)
			}
		case "numbered_list_item":
			if text := blockText(b.NumberedListItem); text != "" {
				content.Lists = append(content.Lists, text)
			}
		case "quote":
			if text := blockText(b.Quote); text != "" {
				content.Quotes = append(content.Quotes, text)
			}
		}
	}

	return content
}

func appendHeading(content *pageContent, level int, body *blockBody) {
	if text := blockText(body); text != "" {
		content.Headings = append(content.Headings, heading{Level: level, Text: text})
	}
}

func blockText(body *blockBody) string {
	if body == nil {
		return ""
	}
	var sb strings.Builder
	for _, rt := range body.RichText {
		sb.WriteString(rt.PlainText)
	}
	return sb.String()
}
