package generator

import (
	"context"
	"errors"

	"socialcast/internal/llm"
)

// mockLLM implements CompletionClient with per-call hooks.
type mockLLM struct {
	completeFunc func(prompt string, opts llm.Options) (string, error)
	postFunc     func(companyInfo, style string, maxLength int) (string, error)
	commentFunc  func(title, summary, companyContext string, maxLength int) (string, error)

	completeCalls int
	prompts       []string
}

func (m *mockLLM) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	m.completeCalls++
	m.prompts = append(m.prompts, prompt)
	if m.completeFunc == nil {
		return "", errors.New("no completeFunc configured")
	}
	return m.completeFunc(prompt, opts)
}

func (m *mockLLM) GenerateSocialPost(ctx context.Context, companyInfo, style string, maxLength int, temperature float64) (string, error) {
	if m.postFunc == nil {
		return "", errors.New("no postFunc configured")
	}
	return m.postFunc(companyInfo, style, maxLength)
}

func (m *mockLLM) GenerateArticleComment(ctx context.Context, title, summary, companyContext string, maxLength int, temperature float64) (string, error) {
	if m.commentFunc == nil {
		return "", errors.New("no commentFunc configured")
	}
	return m.commentFunc(title, summary, companyContext, maxLength)
}

// mockContext implements ContextSource.
type mockContext struct {
	summary string
	err     error
}

func (m *mockContext) CompanyInfoSummary(ctx context.Context) (string, error) {
	return m.summary, m.err
}
