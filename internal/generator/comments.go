package generator

import (
	"context"
	"fmt"
	"time"

	"socialcast/internal/core"
	"socialcast/internal/llm"
	"socialcast/internal/logger"
	"socialcast/internal/textutil"
)

// defaultCommentContext is substituted when the knowledge source fails.
const defaultCommentContext = "TrustStack is an AI/ML company focused on innovative solutions."

// CommentGenerator generates article comments from the company perspective.
type CommentGenerator struct {
	llm           CompletionClient
	contextSource ContextSource
	maxLength     int
}

// NewCommentGenerator creates a comment generator. maxLength values <= 0
// default to 300.
func NewCommentGenerator(client CompletionClient, contextSource ContextSource, maxLength int) *CommentGenerator {
	if maxLength <= 0 {
		maxLength = 300
	}
	return &CommentGenerator{llm: client, contextSource: contextSource, maxLength: maxLength}
}

// GenerateComments generates one comment per article. The company context is
// fetched once up front. A failed article yields an augmented record carrying
// the error instead of a comment; the loop continues.
func (g *CommentGenerator) GenerateComments(ctx context.Context, articles []core.Article, temperature float64) []core.CommentedArticle {
	logger.Info("Generating comments", "articles", len(articles))

	companyContext := g.companyContext(ctx)

	results := make([]core.CommentedArticle, 0, len(articles))
	for i, article := range articles {
		logger.Info("Generating comment", "index", i+1, "total", len(articles))

		comment, err := g.generateComment(ctx, article, companyContext, temperature)
		if err != nil {
			logger.Error("Error generating comment", err, "index", i+1)
			results = append(results, core.CommentedArticle{
				Article: article,
				Comment: nil,
				Error:   err.Error(),
			})
			continue
		}

		results = append(results, core.CommentedArticle{
			Article:            article,
			Comment:            &comment,
			CommentGeneratedAt: time.Now().Format(time.RFC3339),
			CommentLength:      len(comment),
		})
	}

	generated := 0
	for _, r := range results {
		if r.Comment != nil {
			generated++
		}
	}
	logger.Info("Generated comments", "count", generated)
	return results
}

// GenerateSingleComment generates a comment for one article, fetching the
// company context if none is supplied.
func (g *CommentGenerator) GenerateSingleComment(ctx context.Context, article core.Article, companyContext string, temperature float64) (string, error) {
	if companyContext == "" {
		companyContext = g.companyContext(ctx)
	}
	return g.generateComment(ctx, article, companyContext, temperature)
}

func (g *CommentGenerator) generateComment(ctx context.Context, article core.Article, companyContext string, temperature float64) (string, error) {
	comment, err := g.llm.GenerateArticleComment(ctx, article.Title, article.Summary, companyContext, g.maxLength, temperature)
	if err != nil {
		return "", err
	}
	return textutil.Truncate(textutil.CleanText(comment), g.maxLength), nil
}

// FormatForMastodon renders a comment as a publishable post, appending the
// article link and truncating to the status limit.
func (g *CommentGenerator) FormatForMastodon(article core.Article, comment string, includeURL bool, maxLength int) string {
	post := comment
	if includeURL && article.URL != "" {
		post += "\n\n🔗 " + article.URL
	}
	return textutil.Truncate(post, maxLength)
}

// BatchFormatForMastodon formats every commented article that actually has a
// comment; records with errors are skipped.
func (g *CommentGenerator) BatchFormatForMastodon(items []core.CommentedArticle, maxLength int) []core.FormattedComment {
	formatted := []core.FormattedComment{}
	for _, item := range items {
		if item.Comment == nil {
			continue
		}
		post := g.FormatForMastodon(item.Article, *item.Comment, true, maxLength)
		formatted = append(formatted, core.FormattedComment{
			ArticleTitle:    item.Title,
			ArticleURL:      item.URL,
			Comment:         *item.Comment,
			MastodonPost:    post,
			PostLength:      len(post),
			Source:          item.Source,
			MatchedKeywords: item.MatchedKeywords,
		})
	}
	logger.Info("Formatted comments for Mastodon", "count", len(formatted))
	return formatted
}

// RefineComment revises a comment according to feedback under the same
// length budget.
func (g *CommentGenerator) RefineComment(ctx context.Context, comment, feedback string, temperature float64) (string, error) {
	prompt := fmt.Sprintf(`Original comment:
%s

Feedback: %s

Please refine the comment based on the feedback while keeping it under %d characters.

Refined comment:`, comment, feedback, g.maxLength)

	refined, err := g.llm.Complete(ctx, prompt, llm.Options{Temperature: temperature, MaxTokens: 200})
	if err != nil {
		return "", err
	}
	return textutil.Truncate(textutil.CleanText(refined), g.maxLength), nil
}

// companyContext fetches the knowledge summary, substituting the hardcoded
// default when the collaborator fails.
func (g *CommentGenerator) companyContext(ctx context.Context) string {
	summary, err := g.contextSource.CompanyInfoSummary(ctx)
	if err != nil {
		logger.Warn("Failed to fetch company context, using default", "error", err.Error())
		return defaultCommentContext
	}
	return summary
}
