// Package feeds pulls entries from configured RSS/Atom sources, scores them
// against the company keyword list, and ranks them for downstream comment
// generation.
package feeds

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialcast/internal/core"
	"socialcast/internal/logger"
	"socialcast/internal/textutil"
)

const summaryMaxLength = 500

// RSS represents an RSS feed document.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Channel Channel  `xml:"channel"`
}

// Channel represents an RSS channel.
type Channel struct {
	Title string    `xml:"title"`
	Items []RSSItem `xml:"item"`
}

// RSSItem represents an RSS item.
type RSSItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// Atom represents an Atom feed document.
type Atom struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []AtomEntry `xml:"entry"`
}

// AtomLink represents an Atom link element.
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// AtomEntry represents an Atom entry.
type AtomEntry struct {
	Title     string     `xml:"title"`
	Link      []AtomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

// rawEntry is the feed-format-neutral shape handed to parseEntry.
type rawEntry struct {
	title     string
	link      string
	summary   string
	published string
}

// Fetcher fetches and ranks articles from the configured feed sources.
type Fetcher struct {
	sources            []core.FeedSource
	keywords           []string
	maxArticlesPerFeed int
	client             *http.Client
}

// NewFetcher creates a fetcher for the given sources and keyword list.
func NewFetcher(sources []core.FeedSource, keywords []string, maxArticlesPerFeed int) *Fetcher {
	if maxArticlesPerFeed <= 0 {
		maxArticlesPerFeed = 20
	}
	return &Fetcher{
		sources:            sources,
		keywords:           keywords,
		maxArticlesPerFeed: maxArticlesPerFeed,
		client:             &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchArticles fetches entries from every configured feed and returns those
// inside the recency window. A failing feed is logged and skipped; it never
// aborts the run. Entries without a parseable date are always included --
// a deliberate policy so feeds with unusual date formats are not silenced.
func (f *Fetcher) FetchArticles(minAgeHours, maxAgeDays int) []core.Article {
	logger.Info("Fetching articles", "feeds", len(f.sources))

	now := time.Now()
	minDate := now.AddDate(0, 0, -maxAgeDays)
	maxDate := now.Add(-time.Duration(minAgeHours) * time.Hour)

	var all []core.Article
	for _, source := range f.sources {
		if source.URL == "" {
			logger.Warn("No URL for feed", "feed", source.Name)
			continue
		}

		entries, err := f.fetchFeed(source.URL)
		if err != nil {
			logger.Error("Error fetching feed", err, "feed", source.Name)
			continue
		}

		if len(entries) > f.maxArticlesPerFeed {
			entries = entries[:f.maxArticlesPerFeed]
		}

		count := 0
		for _, entry := range entries {
			article, ok := f.parseEntry(entry, source.Name)
			if !ok {
				continue
			}
			if article.PublishedDate != nil {
				d := *article.PublishedDate
				if d.Before(minDate) || d.After(maxDate) {
					continue
				}
			}
			all = append(all, article)
			count++
		}
		logger.Info("Fetched feed", "feed", source.Name, "articles", count)
	}

	logger.Info("Fetched articles", "total", len(all))
	return all
}

// FilterByKeywords keeps articles with at least minKeywords keyword matches.
func (f *Fetcher) FilterByKeywords(articles []core.Article, minKeywords int) []core.Article {
	filtered := []core.Article{}
	for _, a := range articles {
		if a.RelevanceScore >= minKeywords {
			filtered = append(filtered, a)
		}
	}
	logger.Info("Filtered articles by keywords", "kept", len(filtered), "total", len(articles))
	return filtered
}

// RankArticles sorts articles by relevance score then published date, both
// descending, and returns the first topN. Articles without a date rank below
// dated ones at the same score. The sort is stable, so equal articles keep
// their input order.
func (f *Fetcher) RankArticles(articles []core.Article, topN int) []core.Article {
	ranked := make([]core.Article, len(articles))
	copy(ranked, articles)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RelevanceScore != ranked[j].RelevanceScore {
			return ranked[i].RelevanceScore > ranked[j].RelevanceScore
		}
		return publishedOrMin(ranked[i]).After(publishedOrMin(ranked[j]))
	})

	if topN < len(ranked) {
		ranked = ranked[:topN]
	}
	logger.Info("Selected top articles", "count", len(ranked))
	return ranked
}

// TopArticles runs the full fetch -> filter -> rank pipeline.
func (f *Fetcher) TopArticles(count, minAgeHours, maxAgeDays, minKeywords int) []core.Article {
	articles := f.FetchArticles(minAgeHours, maxAgeDays)
	filtered := f.FilterByKeywords(articles, minKeywords)
	return f.RankArticles(filtered, count)
}

// fetchFeed retrieves a feed URL and parses it as RSS first, then Atom.
func (f *Fetcher) fetchFeed(feedURL string) ([]rawEntry, error) {
	req, err := http.NewRequest(http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "socialcast/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	var rss RSS
	if err := xml.Unmarshal(body, &rss); err == nil && rss.Channel.Title != "" {
		return rssEntries(rss), nil
	}

	var atom Atom
	if err := xml.Unmarshal(body, &atom); err == nil && atom.Title != "" {
		return atomEntries(atom), nil
	}

	return nil, fmt.Errorf("unable to parse as RSS or Atom feed")
}

func rssEntries(rss RSS) []rawEntry {
	entries := make([]rawEntry, 0, len(rss.Channel.Items))
	for _, item := range rss.Channel.Items {
		entries = append(entries, rawEntry{
			title:     item.Title,
			link:      item.Link,
			summary:   item.Description,
			published: item.PubDate,
		})
	}
	return entries
}

func atomEntries(atom Atom) []rawEntry {
	entries := make([]rawEntry, 0, len(atom.Entries))
	for _, entry := range atom.Entries {
		var link string
		for _, l := range entry.Link {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}
		summary := entry.Summary
		if summary == "" {
			summary = entry.Content
		}
		published := entry.Published
		if published == "" {
			published = entry.Updated
		}
		entries = append(entries, rawEntry{
			title:     entry.Title,
			link:      link,
			summary:   summary,
			published: published,
		})
	}
	return entries
}

// parseEntry converts a raw entry into an Article. Entries without a title
// or link are skipped, not treated as errors.
func (f *Fetcher) parseEntry(entry rawEntry, source string) (core.Article, bool) {
	title := strings.TrimSpace(entry.title)
	link := strings.TrimSpace(entry.link)
	if title == "" || link == "" {
		return core.Article{}, false
	}

	summary := textutil.CleanText(entry.summary)
	if len(summary) > summaryMaxLength {
		summary = summary[:summaryMaxLength]
	}

	// Date parse failures are swallowed; the article just carries no date.
	var published *time.Time
	if t, ok := parseFeedDate(entry.published); ok {
		published = &t
	}

	matched := textutil.MatchKeywords(title+" "+summary, f.keywords)

	return core.Article{
		ID:              generateArticleID(link),
		Title:           title,
		URL:             link,
		Summary:         summary,
		Source:          source,
		PublishedDate:   published,
		MatchedKeywords: matched,
		RelevanceScore:  len(matched),
	}, true
}

// generateArticleID creates a deterministic ID for an article based on its URL.
func generateArticleID(link string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
}

// feedDateFormats covers the date shapes seen across RSS and Atom feeds.
var feedDateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
}

// parseFeedDate tries the known feed date formats in order.
func parseFeedDate(dateStr string) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, false
	}
	for _, format := range feedDateFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// publishedOrMin treats a missing date as the zero time so dateless articles
// sort last among equal scores.
func publishedOrMin(a core.Article) time.Time {
	if a.PublishedDate == nil {
		return time.Time{}
	}
	return *a.PublishedDate
}
