package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected /chat/completions, got %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`)
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model")
	client.SetBaseURL(server.URL)

	text, err := client.Complete(context.Background(), "say hello", Options{
		SystemPrompt: "be brief",
		Temperature:  0.7,
		MaxTokens:    50,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != "hello there" {
		t.Errorf("Expected completion text, got %q", text)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("Expected model test-model, got %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("Expected system+user messages, got %d", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "be brief" {
		t.Errorf("Expected system message first, got %+v", gotReq.Messages[0])
	}
	if gotReq.Messages[1].Role != "user" || gotReq.Messages[1].Content != "say hello" {
		t.Errorf("Expected user message second, got %+v", gotReq.Messages[1])
	}
	if gotReq.MaxTokens != 50 {
		t.Errorf("Expected max_tokens 50, got %d", gotReq.MaxTokens)
	}
}

func TestCompleteOmitsSystemMessageWhenEmpty(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer server.Close()

	client := NewClient("k", "")
	client.SetBaseURL(server.URL)

	if _, err := client.Complete(context.Background(), "p", Options{}); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Errorf("Expected a single user message, got %+v", gotReq.Messages)
	}
	if gotReq.Model != DefaultModel {
		t.Errorf("Expected default model, got %q", gotReq.Model)
	}
}

func TestCompletePropagatesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid key"}`)
	}))
	defer server.Close()

	client := NewClient("bad-key", "m")
	client.SetBaseURL(server.URL)

	if _, err := client.Complete(context.Background(), "p", Options{}); err == nil {
		t.Fatal("Expected error on non-200 status")
	}
}

func TestCompleteFailsOnEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer server.Close()

	client := NewClient("k", "m")
	client.SetBaseURL(server.URL)

	if _, err := client.Complete(context.Background(), "p", Options{}); err == nil {
		t.Fatal("Expected error on empty choices")
	}
}

func TestGenerateSocialPostBuildsStylePrompt(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"a post"}}]}`)
	}))
	defer server.Close()

	client := NewClient("k", "m")
	client.SetBaseURL(server.URL)

	if _, err := client.GenerateSocialPost(context.Background(), "company info", "casual", 500, 0.7); err != nil {
		t.Fatalf("GenerateSocialPost returned error: %v", err)
	}

	system := gotReq.Messages[0].Content
	user := gotReq.Messages[1].Content
	for _, fragment := range []string{"casual", "500"} {
		if !strings.Contains(system, fragment) && !strings.Contains(user, fragment) {
			t.Errorf("Expected prompt to mention %q", fragment)
		}
	}
	if !strings.Contains(user, "company info") {
		t.Error("Expected company info embedded in the prompt")
	}
	if gotReq.MaxTokens != 300 {
		t.Errorf("Expected max_tokens 300 for posts, got %d", gotReq.MaxTokens)
	}
}

func TestGenerateArticleCommentBuildsPrompt(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"a comment"}}]}`)
	}))
	defer server.Close()

	client := NewClient("k", "m")
	client.SetBaseURL(server.URL)

	if _, err := client.GenerateArticleComment(context.Background(), "Title", "Summary text", "Context", 300, 0.5); err != nil {
		t.Fatalf("GenerateArticleComment returned error: %v", err)
	}

	user := gotReq.Messages[1].Content
	for _, fragment := range []string{"Title", "Summary text", "Context"} {
		if !strings.Contains(user, fragment) {
			t.Errorf("Expected prompt to contain %q", fragment)
		}
	}
	if gotReq.MaxTokens != 200 {
		t.Errorf("Expected max_tokens 200 for comments, got %d", gotReq.MaxTokens)
	}
}
