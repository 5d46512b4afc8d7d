package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"socialcast/internal/core"
	"socialcast/internal/llm"
)

func candidatePosts(n int) []core.Post {
	posts := make([]core.Post, n)
	for i := range posts {
		posts[i] = core.Post{
			ID:      string(rune('a' + i)),
			Content: "<p>post content</p>",
			Account: core.Account{Username: "user"},
		}
	}
	return posts
}

// Scenario: two input posts, one decision in the response. The decided post
// gets its reply; the undecided one defaults to a negative decision.
func TestBatchRepliesReconciliation(t *testing.T) {
	client := &mockLLM{
		completeFunc: func(prompt string, opts llm.Options) (string, error) {
			return `[{"post_index":0,"should_reply":true,"reply":"ok","reason":"r"}]`, nil
		},
	}
	gen := NewReplyGenerator(client, &mockContext{summary: "ctx"}, 500)

	results := gen.GenerateRepliesBatch(context.Background(), candidatePosts(2), 0.7)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if !results[0].ShouldReply {
		t.Error("Expected post 0 to be replied to")
	}
	if results[0].Reply == nil || *results[0].Reply != "ok" {
		t.Errorf("Expected reply 'ok', got %v", results[0].Reply)
	}
	if results[0].Reason != "r" {
		t.Errorf("Expected reason 'r', got %q", results[0].Reason)
	}
	if results[1].ShouldReply {
		t.Error("Expected post 1 to default to no reply")
	}
	if results[1].Reply != nil {
		t.Error("Expected nil reply for undecided post")
	}
	if results[1].Reason != "Not relevant" {
		t.Errorf("Expected default reason 'Not relevant', got %q", results[1].Reason)
	}
}

func TestBatchRepliesNegativeDecisionKeepsReason(t *testing.T) {
	client := &mockLLM{
		completeFunc: func(prompt string, opts llm.Options) (string, error) {
			return `[{"post_index":0,"should_reply":false,"reply":"","reason":"off topic"}]`, nil
		},
	}
	gen := NewReplyGenerator(client, &mockContext{summary: "ctx"}, 500)

	results := gen.GenerateRepliesBatch(context.Background(), candidatePosts(1), 0.7)

	if results[0].ShouldReply {
		t.Error("Expected negative decision honored")
	}
	if results[0].Reason != "off topic" {
		t.Errorf("Expected model's reason kept, got %q", results[0].Reason)
	}
}

func TestBatchRepliesHandlesOutOfOrderAndExtraIndices(t *testing.T) {
	client := &mockLLM{
		completeFunc: func(prompt string, opts llm.Options) (string, error) {
			return `[
				{"post_index":5,"should_reply":true,"reply":"ghost","reason":"x"},
				{"post_index":1,"should_reply":true,"reply":"second","reason":"b"},
				{"post_index":0,"should_reply":true,"reply":"first","reason":"a"}
			]`, nil
		},
	}
	gen := NewReplyGenerator(client, &mockContext{summary: "ctx"}, 500)

	results := gen.GenerateRepliesBatch(context.Background(), candidatePosts(3), 0.7)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results in input order, got %d", len(results))
	}
	if *results[0].Reply != "first" || *results[1].Reply != "second" {
		t.Errorf("Expected decisions matched by index, got %v %v", results[0].Reply, results[1].Reply)
	}
	if results[2].ShouldReply || results[2].Reason != "Not relevant" {
		t.Errorf("Expected post 2 to default, got %+v", results[2])
	}
}

func TestBatchRepliesStripsFencedCodeBlock(t *testing.T) {
	client := &mockLLM{
		completeFunc: func(prompt string, opts llm.Options) (string, error) {
			return "```json\n[{\"post_index\":0,\"should_reply\":true,\"reply\":\"fenced\",\"reason\":\"r\"}]\n```", nil
		},
	}
	gen := NewReplyGenerator(client, &mockContext{summary: "ctx"}, 500)

	results := gen.GenerateRepliesBatch(context.Background(), candidatePosts(1), 0.7)
	if results[0].Reply == nil || *results[0].Reply != "fenced" {
		t.Errorf("Expected fenced JSON parsed, got %+v", results[0])
	}
}

func TestBatchRepliesTruncatesLongReplies(t *testing.T) {
	longReply := strings.Repeat("w", 700)
	client := &mockLLM{
		completeFunc: func(prompt string, opts llm.Options) (string, error) {
			return `[{"post_index":0,"should_reply":true,"reply":"` + longReply + `","reason":"r"}]`, nil
		},
	}
	gen := NewReplyGenerator(client, &mockContext{summary: "ctx"}, 500)

	results := gen.GenerateRepliesBatch(context.Background(), candidatePosts(1), 0.7)
	if len(*results[0].Reply) != 500 {
		t.Errorf("Expected reply truncated to 500, got %d", len(*results[0].Reply))
	}
	if results[0].ReplyLength != 500 {
		t.Errorf("Expected reply_length 500, got %d", results[0].ReplyLength)
	}
}

func TestMalformedBatchResponseTriggersFallback(t *testing.T) {
	calls := 0
	client := &mockLLM{
		completeFunc: func(prompt string, opts llm.Options) (string, error) {
			calls++
			if calls == 1 {
				return "I cannot produce JSON today", nil
			}
			return "a friendly reply", nil
		},
	}
	gen := NewReplyGenerator(client, &mockContext{summary: "ctx"}, 500)

	posts := candidatePosts(3)
	results := gen.GenerateRepliesBatch(context.Background(), posts, 0.7)

	if calls != 4 {
		t.Errorf("Expected 1 batch call + 3 individual calls, got %d", calls)
	}
	if len(results) != 3 {
		t.Fatalf("Expected a result per post, got %d", len(results))
	}
	for i, r := range results {
		if !r.ShouldReply {
			t.Errorf("Post %d: fallback successes are always marked should_reply", i)
		}
		if r.Reason != "Relevant to expertise" {
			t.Errorf("Post %d: expected fallback reason, got %q", i, r.Reason)
		}
		if r.Reply == nil || *r.Reply != "a friendly reply" {
			t.Errorf("Post %d: expected fallback reply, got %v", i, r.Reply)
		}
	}
}

func TestUnterminatedFenceTriggersFallback(t *testing.T) {
	calls := 0
	client := &mockLLM{
		completeFunc: func(prompt string, opts llm.Options) (string, error) {
			calls++
			if calls == 1 {
				// Opening fence with no closing fence: the fence-stripping
				// drops the final JSON line and the parse fails.
				return "```json\n[{\"post_index\":0,\"should_reply\":true,\"reply\":\"x\",\"reason\":\"r\"}]", nil
			}
			return "fallback reply", nil
		},
	}
	gen := NewReplyGenerator(client, &mockContext{summary: "ctx"}, 500)

	results := gen.GenerateRepliesBatch(context.Background(), candidatePosts(2), 0.7)
	if calls != 3 {
		t.Errorf("Expected fallback after fence mangling, got %d calls", calls)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
}

func TestBatchRequestErrorTriggersFallback(t *testing.T) {
	calls := 0
	client := &mockLLM{
		completeFunc: func(prompt string, opts llm.Options) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("api down")
			}
			return "recovered", nil
		},
	}
	gen := NewReplyGenerator(client, &mockContext{summary: "ctx"}, 500)

	results := gen.GenerateRepliesBatch(context.Background(), candidatePosts(2), 0.7)
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if !r.ShouldReply {
			t.Errorf("Post %d: expected fallback reply", i)
		}
	}
}

func TestFallbackPerPostErrorDowngradesOnlyThatPost(t *testing.T) {
	calls := 0
	client := &mockLLM{
		completeFunc: func(prompt string, opts llm.Options) (string, error) {
			calls++
			switch calls {
			case 1:
				return "not json", nil
			case 3:
				return "", errors.New("timeout")
			default:
				return "fine", nil
			}
		},
	}
	gen := NewReplyGenerator(client, &mockContext{summary: "ctx"}, 500)

	results := gen.GenerateRepliesBatch(context.Background(), candidatePosts(3), 0.7)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if !results[0].ShouldReply || !results[2].ShouldReply {
		t.Error("Expected surrounding posts unaffected by one failure")
	}
	if results[1].ShouldReply {
		t.Error("Expected failed post downgraded")
	}
	if results[1].Reply != nil {
		t.Error("Expected nil reply for failed post")
	}
	if !strings.Contains(results[1].Reason, "timeout") {
		t.Errorf("Expected error-derived reason, got %q", results[1].Reason)
	}
}

func TestBatchPromptStripsHTMLAndIndexesPosts(t *testing.T) {
	client := &mockLLM{
		completeFunc: func(prompt string, opts llm.Options) (string, error) {
			return `[]`, nil
		},
	}
	gen := NewReplyGenerator(client, &mockContext{summary: "the company context"}, 500)

	posts := []core.Post{
		{Content: "<p>hello <b>world</b></p>", Account: core.Account{Username: "alice"}},
		{Content: "plain text", Account: core.Account{Username: "bob"}},
	}
	gen.GenerateRepliesBatch(context.Background(), posts, 0.7)

	prompt := client.prompts[0]
	if !strings.Contains(prompt, "the company context") {
		t.Error("Expected company context in prompt")
	}
	if !strings.Contains(prompt, "--- Post 0 ---") || !strings.Contains(prompt, "--- Post 1 ---") {
		t.Error("Expected zero-based post blocks in prompt")
	}
	if !strings.Contains(prompt, "@alice") || !strings.Contains(prompt, "@bob") {
		t.Error("Expected authors in prompt")
	}
	if strings.Contains(prompt, "<p>") || strings.Contains(prompt, "<b>") {
		t.Error("Expected HTML stripped from post content")
	}
	if !strings.Contains(prompt, "hello world") {
		t.Error("Expected visible text preserved")
	}
}

func TestBatchRepliesUsesDefaultContextOnFailure(t *testing.T) {
	client := &mockLLM{
		completeFunc: func(prompt string, opts llm.Options) (string, error) {
			return `[]`, nil
		},
	}
	gen := NewReplyGenerator(client, &mockContext{err: errors.New("notion down")}, 500)

	gen.GenerateRepliesBatch(context.Background(), candidatePosts(1), 0.7)

	if !strings.Contains(client.prompts[0], defaultReplyContext) {
		t.Error("Expected hardcoded default company context in prompt")
	}
}

func TestParseDecisions(t *testing.T) {
	decisions, err := parseDecisions(`[{"post_index":1,"should_reply":false,"reason":"no"}]`)
	if err != nil {
		t.Fatalf("parseDecisions returned error: %v", err)
	}
	if len(decisions) != 1 || decisions[0].PostIndex != 1 || decisions[0].ShouldReply {
		t.Errorf("Unexpected decisions: %+v", decisions)
	}

	if _, err := parseDecisions("not json at all"); err == nil {
		t.Error("Expected parse error for non-JSON input")
	}
}

func TestStripHTML(t *testing.T) {
	if got := stripHTML("<p>a <em>b</em> c</p>"); got != "a b c" {
		t.Errorf("stripHTML = %q, want %q", got, "a b c")
	}
	if got := stripHTML("no markup"); got != "no markup" {
		t.Errorf("stripHTML = %q, want unchanged text", got)
	}
}
