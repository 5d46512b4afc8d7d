package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"socialcast/internal/core"
)

func TestGenerateComments(t *testing.T) {
	client := &mockLLM{
		commentFunc: func(title, summary, companyContext string, maxLength int) (string, error) {
			return "insightful  comment on " + title, nil
		},
	}
	gen := NewCommentGenerator(client, &mockContext{summary: "context"}, 300)

	articles := []core.Article{
		{Title: "A", URL: "https://e.com/a", Source: "Feed"},
		{Title: "B", URL: "https://e.com/b", Source: "Feed"},
	}

	results := gen.GenerateComments(context.Background(), articles, 0.7)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Comment == nil {
			t.Fatalf("Result %d: expected a comment", i)
		}
		if !strings.Contains(*r.Comment, articles[i].Title) {
			t.Errorf("Result %d: comment %q missing title", i, *r.Comment)
		}
		if strings.Contains(*r.Comment, "  ") {
			t.Errorf("Result %d: comment not cleaned: %q", i, *r.Comment)
		}
		if r.CommentLength != len(*r.Comment) {
			t.Errorf("Result %d: comment length mismatch", i)
		}
		if r.CommentGeneratedAt == "" {
			t.Errorf("Result %d: missing generation timestamp", i)
		}
		// Original article fields are carried through untouched.
		if r.Title != articles[i].Title || r.URL != articles[i].URL {
			t.Errorf("Result %d: base article fields changed: %+v", i, r)
		}
	}
}

func TestGenerateCommentsRecordsFailures(t *testing.T) {
	call := 0
	client := &mockLLM{
		commentFunc: func(title, summary, companyContext string, maxLength int) (string, error) {
			call++
			if call == 1 {
				return "", errors.New("rate limited")
			}
			return "ok", nil
		},
	}
	gen := NewCommentGenerator(client, &mockContext{summary: "context"}, 300)

	articles := []core.Article{{Title: "A"}, {Title: "B"}}
	results := gen.GenerateComments(context.Background(), articles, 0.7)

	if len(results) != 2 {
		t.Fatalf("Expected a result for every article, got %d", len(results))
	}
	if results[0].Comment != nil {
		t.Error("Expected nil comment for the failed article")
	}
	if !strings.Contains(results[0].Error, "rate limited") {
		t.Errorf("Expected error recorded, got %q", results[0].Error)
	}
	if results[1].Comment == nil {
		t.Error("Expected second article to succeed after first failed")
	}
}

func TestGenerateCommentsUsesDefaultContextOnFailure(t *testing.T) {
	var gotContext string
	client := &mockLLM{
		commentFunc: func(title, summary, companyContext string, maxLength int) (string, error) {
			gotContext = companyContext
			return "c", nil
		},
	}
	gen := NewCommentGenerator(client, &mockContext{err: errors.New("notion down")}, 300)

	gen.GenerateComments(context.Background(), []core.Article{{Title: "A"}}, 0.7)

	if gotContext != defaultCommentContext {
		t.Errorf("Expected hardcoded default context, got %q", gotContext)
	}
}

func TestGenerateCommentsTruncates(t *testing.T) {
	client := &mockLLM{
		commentFunc: func(title, summary, companyContext string, maxLength int) (string, error) {
			return strings.Repeat("z", 400), nil
		},
	}
	gen := NewCommentGenerator(client, &mockContext{summary: "c"}, 300)

	results := gen.GenerateComments(context.Background(), []core.Article{{Title: "A"}}, 0.7)
	if len(*results[0].Comment) != 300 {
		t.Errorf("Expected comment truncated to 300, got %d", len(*results[0].Comment))
	}
}

func TestFormatForMastodon(t *testing.T) {
	gen := NewCommentGenerator(&mockLLM{}, &mockContext{}, 300)
	article := core.Article{URL: "https://e.com/a"}

	post := gen.FormatForMastodon(article, "great read", true, 500)
	if !strings.Contains(post, "great read") || !strings.Contains(post, "https://e.com/a") {
		t.Errorf("Expected comment and URL in post, got %q", post)
	}

	noURL := gen.FormatForMastodon(article, "great read", false, 500)
	if strings.Contains(noURL, "https://e.com/a") {
		t.Errorf("Expected URL omitted, got %q", noURL)
	}

	long := gen.FormatForMastodon(article, strings.Repeat("a", 600), true, 500)
	if len(long) > 500 {
		t.Errorf("Expected formatted post capped at 500, got %d", len(long))
	}
}

func TestBatchFormatForMastodonSkipsFailedComments(t *testing.T) {
	gen := NewCommentGenerator(&mockLLM{}, &mockContext{}, 300)

	good := "a comment"
	items := []core.CommentedArticle{
		{Article: core.Article{Title: "ok", URL: "u", Source: "s", MatchedKeywords: []string{"ai"}}, Comment: &good},
		{Article: core.Article{Title: "failed"}, Comment: nil, Error: "boom"},
	}

	formatted := gen.BatchFormatForMastodon(items, 500)
	if len(formatted) != 1 {
		t.Fatalf("Expected only the commented article, got %d", len(formatted))
	}
	f := formatted[0]
	if f.ArticleTitle != "ok" || f.Comment != "a comment" || f.PostLength != len(f.MastodonPost) {
		t.Errorf("Unexpected formatted comment: %+v", f)
	}
	if len(f.MatchedKeywords) != 1 {
		t.Errorf("Expected matched keywords carried through, got %v", f.MatchedKeywords)
	}
}
