// Package generator orchestrates the content generators: social posts,
// article comments, and the batched reply decision engine.
package generator

import (
	"context"

	"socialcast/internal/llm"
)

// CompletionClient is the slice of the completion façade the generators use.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, opts llm.Options) (string, error)
	GenerateSocialPost(ctx context.Context, companyInfo, style string, maxLength int, temperature float64) (string, error)
	GenerateArticleComment(ctx context.Context, articleTitle, articleSummary, companyContext string, maxLength int, temperature float64) (string, error)
}

// ContextSource supplies the company-information summary used as prompt
// context. Implementations cache per-process; see knowledge.Client.
type ContextSource interface {
	CompanyInfoSummary(ctx context.Context) (string, error)
}

// DefaultStyles is the rotation used when no styles are configured.
var DefaultStyles = []string{"professional", "casual", "technical", "inspirational", "educational"}
