package core

import (
	"encoding/json"
	"strings"
	"testing"
)

// A failed comment must serialize as an explicit null, not be omitted:
// downstream selection filters on the comment field being present and null.
func TestCommentedArticleNullComment(t *testing.T) {
	item := CommentedArticle{
		Article: Article{Title: "t", URL: "u"},
		Comment: nil,
		Error:   "generation failed",
	}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	out := string(data)

	if !strings.Contains(out, `"comment":null`) {
		t.Errorf("Expected explicit null comment, got %s", out)
	}
	if strings.Contains(out, `"comment_generated_at"`) {
		t.Errorf("Expected empty metadata omitted, got %s", out)
	}
	if !strings.Contains(out, `"error":"generation failed"`) {
		t.Errorf("Expected error recorded, got %s", out)
	}
}

// Augmented records flatten the embedded base record so the JSON shape
// matches the un-augmented one plus the new fields.
func TestRepliedPostFlattensBasePost(t *testing.T) {
	reply := "a reply"
	item := RepliedPost{
		Post:        Post{ID: "1", Content: "c", Account: Account{Username: "alice"}},
		Reply:       &reply,
		ShouldReply: true,
		Reason:      "relevant",
		ReplyLength: len(reply),
	}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	out := string(data)

	if strings.Contains(out, `"Post"`) || strings.Contains(out, `"post":{`) {
		t.Errorf("Expected embedded post flattened, got %s", out)
	}
	if !strings.Contains(out, `"id":"1"`) || !strings.Contains(out, `"should_reply":true`) {
		t.Errorf("Expected base and decision fields side by side, got %s", out)
	}
}

func TestReplyDecisionFieldNames(t *testing.T) {
	var decision ReplyDecision
	input := `{"post_index":2,"reply":"r","should_reply":true,"reason":"because"}`
	if err := json.Unmarshal([]byte(input), &decision); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decision.PostIndex != 2 || !decision.ShouldReply || decision.Reply != "r" {
		t.Errorf("Unexpected decision: %+v", decision)
	}
}

func TestGeneratedPostOmitsUnpostedFields(t *testing.T) {
	post := GeneratedPost{ID: 1, Content: "c", Style: "casual", Length: 1}

	data, err := json.Marshal(post)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	out := string(data)

	if !strings.Contains(out, `"posted":false`) {
		t.Errorf("Expected posted flag always present, got %s", out)
	}
	if strings.Contains(out, `"posted_at"`) || strings.Contains(out, `"mastodon_url"`) {
		t.Errorf("Expected publish metadata omitted until posted, got %s", out)
	}
}

func TestArticleNilPublishedDate(t *testing.T) {
	article := Article{ID: "a", Title: "t"}

	data, err := json.Marshal(article)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if !strings.Contains(string(data), `"published_date":null`) {
		t.Errorf("Expected dateless article to carry explicit null, got %s", data)
	}
}
