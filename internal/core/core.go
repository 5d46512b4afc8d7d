// Package core defines the shared record types passed between subsystems.
package core

import "time"

// FeedSource describes a single RSS/Atom feed to ingest.
type FeedSource struct {
	Name string `json:"name" mapstructure:"name"`
	URL  string `json:"url" mapstructure:"url"`
}

// Article represents an entry ingested from a feed, scored against the
// configured keyword list. Immutable once ranked.
type Article struct {
	ID              string     `json:"id"`               // Deterministic ID derived from the entry link
	Title           string     `json:"title"`            // Entry title
	URL             string     `json:"url"`              // Entry link
	Summary         string     `json:"summary"`          // Cleaned summary, capped at 500 characters
	Source          string     `json:"source"`           // Feed name the entry came from
	PublishedDate   *time.Time `json:"published_date"`   // nil when the feed carried no parseable date
	MatchedKeywords []string   `json:"matched_keywords"` // Keywords found in title+summary, config order
	RelevanceScore  int        `json:"relevance_score"`  // len(MatchedKeywords)
}

// CommentedArticle is an Article augmented with a generated comment. The
// base fields are embedded by copy; the original Article is never mutated.
type CommentedArticle struct {
	Article
	Comment            *string `json:"comment"`                // nil when generation failed
	CommentGeneratedAt string  `json:"comment_generated_at,omitempty"`
	CommentLength      int     `json:"comment_length,omitempty"`
	Error              string  `json:"error,omitempty"` // Set when generation failed
}

// Account identifies the author of a candidate post.
type Account struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}

// Post is a third-party social-network post fetched via search, eligible
// for a reply decision. Treated as immutable input.
type Post struct {
	ID              string  `json:"id"`
	Content         string  `json:"content"` // May contain HTML markup
	URL             string  `json:"url"`
	CreatedAt       string  `json:"created_at"`
	Account         Account `json:"account"`
	FavouritesCount int     `json:"favourites_count"`
	ReblogsCount    int     `json:"reblogs_count"`
	RepliesCount    int     `json:"replies_count"`
}

// RepliedPost is a Post augmented with the outcome of a reply decision.
type RepliedPost struct {
	Post
	Reply       *string `json:"reply"` // nil when ShouldReply is false
	ShouldReply bool    `json:"should_reply"`
	Reason      string  `json:"reason"`
	ReplyLength int     `json:"reply_length,omitempty"`
	GeneratedAt string  `json:"generated_at,omitempty"`
}

// ReplyDecision is one element of the structured JSON array the model is
// asked to return for a batch of candidate posts.
type ReplyDecision struct {
	PostIndex   int    `json:"post_index"`
	Reply       string `json:"reply"`
	ShouldReply bool   `json:"should_reply"`
	Reason      string `json:"reason"`
}

// GeneratedPost is a social media post produced by the post generator.
// Posted/PostedAt/MastodonURL are flipped exactly once by the publishing
// flow after a successful publish.
type GeneratedPost struct {
	ID          int    `json:"id"`
	Content     string `json:"content"`
	Style       string `json:"style"`
	Length      int    `json:"length"`
	GeneratedAt string `json:"generated_at"`
	Posted      bool   `json:"posted"`
	PostedAt    string `json:"posted_at,omitempty"`
	MastodonURL string `json:"mastodon_url,omitempty"`
}

// Status is the result of publishing or replying on the social network.
type Status struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	CreatedAt       string `json:"created_at"`
	Visibility      string `json:"visibility,omitempty"`
	FavouritesCount int    `json:"favourites_count,omitempty"`
	ReblogsCount    int    `json:"reblogs_count,omitempty"`
}

// AccountInfo describes the authenticated social network account.
type AccountInfo struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
	StatusesCount  int    `json:"statuses_count"`
	URL            string `json:"url"`
}

// FormattedComment is an article comment rendered as a publishable post.
type FormattedComment struct {
	ArticleTitle    string   `json:"article_title"`
	ArticleURL      string   `json:"article_url"`
	Comment         string   `json:"comment"`
	MastodonPost    string   `json:"mastodon_post"`
	PostLength      int      `json:"post_length"`
	Source          string   `json:"source"`
	MatchedKeywords []string `json:"matched_keywords"`
}
