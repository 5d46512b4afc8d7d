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

// PostGenerator generates social media posts from the company knowledge
// summary.
type PostGenerator struct {
	llm           CompletionClient
	contextSource ContextSource
	maxLength     int
}

// NewPostGenerator creates a post generator. maxLength bounds every
// generated post; values <= 0 default to 500.
func NewPostGenerator(client CompletionClient, contextSource ContextSource, maxLength int) *PostGenerator {
	if maxLength <= 0 {
		maxLength = 500
	}
	return &PostGenerator{llm: client, contextSource: contextSource, maxLength: maxLength}
}

// GeneratePosts generates count posts, cycling through styles round-robin.
// A nil styles list uses DefaultStyles. Individual generation failures are
// logged and skipped; the remaining iterations continue. Post IDs follow the
// iteration index, so a failed slot leaves a gap.
func (g *PostGenerator) GeneratePosts(ctx context.Context, count int, styles []string, temperature float64) ([]core.GeneratedPost, error) {
	logger.Info("Generating social media posts", "count", count)

	companyInfo, err := g.contextSource.CompanyInfoSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company information: %w", err)
	}

	if len(styles) == 0 {
		styles = DefaultStyles
	}

	var posts []core.GeneratedPost
	for i := 0; i < count; i++ {
		style := styles[i%len(styles)]
		logger.Info("Generating post", "index", i+1, "count", count, "style", style)

		content, err := g.llm.GenerateSocialPost(ctx, companyInfo, style, g.maxLength, temperature)
		if err != nil {
			logger.Error("Error generating post", err, "index", i+1)
			continue
		}

		content = textutil.Truncate(textutil.CleanText(content), g.maxLength)
		posts = append(posts, core.GeneratedPost{
			ID:          i + 1,
			Content:     content,
			Style:       style,
			Length:      len(content),
			GeneratedAt: time.Now().Format(time.RFC3339),
			Posted:      false,
		})
	}

	logger.Info("Generated posts", "count", len(posts))
	return posts, nil
}

// GenerateSinglePost generates one post. customContext, when non-empty,
// replaces the knowledge-source summary.
func (g *PostGenerator) GenerateSinglePost(ctx context.Context, style string, temperature float64, customContext string) (core.GeneratedPost, error) {
	companyInfo := customContext
	if companyInfo == "" {
		var err error
		companyInfo, err = g.contextSource.CompanyInfoSummary(ctx)
		if err != nil {
			return core.GeneratedPost{}, fmt.Errorf("failed to fetch company information: %w", err)
		}
	}

	content, err := g.llm.GenerateSocialPost(ctx, companyInfo, style, g.maxLength, temperature)
	if err != nil {
		return core.GeneratedPost{}, err
	}

	content = textutil.Truncate(textutil.CleanText(content), g.maxLength)
	return core.GeneratedPost{
		Content:     content,
		Style:       style,
		Length:      len(content),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Posted:      false,
	}, nil
}

// RefinePost asks the model to revise a post according to free-form feedback
// and re-applies the length budget.
func (g *PostGenerator) RefinePost(ctx context.Context, content, feedback string, temperature float64) (string, error) {
	prompt := fmt.Sprintf(`Original post:
%s

Feedback: %s

Please refine the post based on the feedback while keeping it under %d characters.

Refined post:`, content, feedback, g.maxLength)

	refined, err := g.llm.Complete(ctx, prompt, llm.Options{Temperature: temperature, MaxTokens: 300})
	if err != nil {
		return "", err
	}
	return textutil.Truncate(textutil.CleanText(refined), g.maxLength), nil
}
