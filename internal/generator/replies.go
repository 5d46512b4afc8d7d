package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"socialcast/internal/core"
	"socialcast/internal/llm"
	"socialcast/internal/logger"
	"socialcast/internal/textutil"
)

// defaultReplyContext is substituted when the knowledge source fails.
const defaultReplyContext = "TrustStack is an e-commerce trust & safety company helping mid-sized marketplaces combat fraud and abuse."

const batchSystemPrompt = `You are a social media manager for TrustStack, an e-commerce trust & safety company.
Generate helpful, engaging replies to posts that are relevant to TrustStack's expertise.

IMPORTANT GUIDELINES:
- Be genuinely helpful and add value to the conversation
- Don't be overly promotional - focus on insights and expertise
- Keep replies concise (under 400 chars each)
- Be professional but friendly
- Only mention TrustStack if naturally relevant
- Avoid generic responses

Generate replies as a JSON array with this structure:
[
  {
    "post_index": 0,
    "reply": "Your thoughtful reply here",
    "should_reply": true/false,
    "reason": "Why replying or not"
  }
]`

// ReplyGenerator decides, per candidate post, whether to reply and with what
// text. It prefers one batched structured-output request and falls back to
// one-by-one free-text generation when the batch response cannot be parsed.
type ReplyGenerator struct {
	llm           CompletionClient
	contextSource ContextSource
	maxLength     int
}

// NewReplyGenerator creates a reply generator. maxLength values <= 0 default
// to 500.
func NewReplyGenerator(client CompletionClient, contextSource ContextSource, maxLength int) *ReplyGenerator {
	if maxLength <= 0 {
		maxLength = 500
	}
	return &ReplyGenerator{llm: client, contextSource: contextSource, maxLength: maxLength}
}

// GenerateRepliesBatch produces exactly one decision per input post, in
// input order. The batch path asks the model for a JSON array of decisions
// and reconciles them back to the posts by post_index; any request or parse
// failure routes every post through the individual fallback instead.
func (g *ReplyGenerator) GenerateRepliesBatch(ctx context.Context, posts []core.Post, temperature float64) []core.RepliedPost {
	logger.Info("Generating replies", "posts", len(posts))

	companyContext := g.companyContext(ctx)
	batchPrompt := g.buildBatchPrompt(posts, companyContext)

	response, err := g.llm.Complete(ctx, batchPrompt, llm.Options{
		SystemPrompt: batchSystemPrompt,
		Temperature:  temperature,
		MaxTokens:    2000,
	})
	if err != nil {
		logger.Error("Error generating batch replies", err)
		return g.generateRepliesIndividual(ctx, posts, companyContext, temperature)
	}

	decisions, err := parseDecisions(response)
	if err != nil {
		logger.Error("Error parsing batch reply response", err)
		return g.generateRepliesIndividual(ctx, posts, companyContext, temperature)
	}

	results := g.reconcile(posts, decisions)

	replied := 0
	for _, r := range results {
		if r.ShouldReply {
			replied++
		}
	}
	logger.Info("Generated replies", "count", replied)
	return results
}

// buildBatchPrompt concatenates the company context with one block per post.
func (g *ReplyGenerator) buildBatchPrompt(posts []core.Post, companyContext string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company Context:\n%s\n", companyContext))
	sb.WriteString("\nPosts to reply to:\n")

	for idx, post := range posts {
		sb.WriteString(fmt.Sprintf("\n--- Post %d ---\nAuthor: @%s\nContent: %s\n",
			idx, post.Account.Username, stripHTML(post.Content)))
	}

	sb.WriteString("\nGenerate replies for each post. For each post, decide if it's relevant to TrustStack's expertise " +
		"and worth replying to. If yes, create a thoughtful, helpful reply. If no, explain why.\n\n" +
		"Output as JSON array:")
	return sb.String()
}

// parseDecisions parses the model response as a JSON decision array. A
// response wrapped in a fenced code block has its first and last lines
// dropped before parsing; an unterminated fence therefore fails the parse
// and triggers the fallback.
func parseDecisions(response string) ([]core.ReplyDecision, error) {
	clean := strings.TrimSpace(response)
	if strings.HasPrefix(clean, "```") {
		lines := strings.Split(clean, "\n")
		if len(lines) >= 2 {
			clean = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	var decisions []core.ReplyDecision
	if err := json.Unmarshal([]byte(clean), &decisions); err != nil {
		return nil, fmt.Errorf("failed to parse decision array: %w", err)
	}
	return decisions, nil
}

// reconcile matches decisions back to posts by position. Every post yields
// exactly one output record: a positive decision carries a cleaned and
// truncated reply; a negative or missing decision carries a nil reply and
// the model's reason, or "Not relevant" when the index was absent.
func (g *ReplyGenerator) reconcile(posts []core.Post, decisions []core.ReplyDecision) []core.RepliedPost {
	results := make([]core.RepliedPost, 0, len(posts))

	for idx, post := range posts {
		var decision *core.ReplyDecision
		for i := range decisions {
			if decisions[i].PostIndex == idx {
				decision = &decisions[i]
				break
			}
		}

		now := time.Now().Format(time.RFC3339)
		if decision != nil && decision.ShouldReply {
			reply := textutil.Truncate(textutil.CleanText(decision.Reply), g.maxLength)
			results = append(results, core.RepliedPost{
				Post:        post,
				Reply:       &reply,
				ShouldReply: true,
				Reason:      decision.Reason,
				ReplyLength: len(reply),
				GeneratedAt: now,
			})
		} else {
			reason := "Not relevant"
			if decision != nil {
				reason = decision.Reason
			}
			results = append(results, core.RepliedPost{
				Post:        post,
				Reply:       nil,
				ShouldReply: false,
				Reason:      reason,
				GeneratedAt: now,
			})
		}

		logger.Info("Reply decision", "post", idx+1, "will_reply", decision != nil && decision.ShouldReply)
	}

	return results
}

// generateRepliesIndividual is the fallback path: one free-text completion
// per post. A successful generation is always marked should_reply=true; the
// batch path's negative outcome has no equivalent here, an asymmetry kept
// from the observed behavior. A per-post failure downgrades only that post.
func (g *ReplyGenerator) generateRepliesIndividual(ctx context.Context, posts []core.Post, companyContext string, temperature float64) []core.RepliedPost {
	logger.Info("Using individual reply generation (fallback)")

	results := make([]core.RepliedPost, 0, len(posts))
	for idx, post := range posts {
		prompt := fmt.Sprintf(`Company Context: %s

Post to reply to:
Author: @%s
Content: %s

Should we reply to this post? If yes, generate a helpful, engaging reply (under 400 chars).
If no, explain why not.

Reply:`, companyContext, post.Account.Username, stripHTML(post.Content))

		response, err := g.llm.Complete(ctx, prompt, llm.Options{Temperature: temperature, MaxTokens: 300})
		if err != nil {
			logger.Error("Error generating fallback reply", err, "post", idx)
			results = append(results, core.RepliedPost{
				Post:        post,
				Reply:       nil,
				ShouldReply: false,
				Reason:      fmt.Sprintf("Error: %s", err.Error()),
			})
			continue
		}

		reply := textutil.Truncate(textutil.CleanText(response), g.maxLength)
		results = append(results, core.RepliedPost{
			Post:        post,
			Reply:       &reply,
			ShouldReply: true,
			Reason:      "Relevant to expertise",
			ReplyLength: len(reply),
			GeneratedAt: time.Now().Format(time.RFC3339),
		})
	}

	return results
}

// stripHTML extracts the visible text from markup. Unparseable input is
// passed through unchanged rather than failing the operation.
func stripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return doc.Text()
}

// companyContext fetches the knowledge summary, substituting the hardcoded
// default when the collaborator fails.
func (g *ReplyGenerator) companyContext(ctx context.Context) string {
	summary, err := g.contextSource.CompanyInfoSummary(ctx)
	if err != nil {
		logger.Warn("Failed to fetch company context, using default", "error", err.Error())
		return defaultReplyContext
	}
	return summary
}
