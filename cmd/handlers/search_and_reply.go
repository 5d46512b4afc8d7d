package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"socialcast/internal/config"
	"socialcast/internal/core"
	"socialcast/internal/generator"
	"socialcast/internal/knowledge"
	"socialcast/internal/llm"
	"socialcast/internal/mastodon"
	"socialcast/internal/store"

	"github.com/spf13/cobra"
)

// defaultSearchKeywords is used when the config carries no search keywords
// and no --keyword flag was given. Only the first entry is searched.
var defaultSearchKeywords = []string{
	"ecommerce fraud",
	"marketplace safety",
	"trust and safety",
	"payment fraud",
	"account takeover",
}

// NewSearchAndReplyCmd creates the search-and-reply command
func NewSearchAndReplyCmd() *cobra.Command {
	var (
		keyword     string
		count       int
		output      string
		postReplies bool
	)

	cmd := &cobra.Command{
		Use:   "search-and-reply",
		Short: "Search for relevant posts and generate replies using structured outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearchAndReply(cmd.Context(), keyword, count, output, postReplies)
		},
	}

	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Keyword to search for (defaults to business-related terms)")
	cmd.Flags().IntVarP(&count, "count", "c", 5, "Number of posts to find")
	cmd.Flags().StringVarP(&output, "output", "o", "output/replies.json", "Output file path")
	cmd.Flags().BoolVar(&postReplies, "post-replies", false, "Actually post the replies to Mastodon")

	return cmd
}

func runSearchAndReply(ctx context.Context, keyword string, count int, output string, postReplies bool) error {
	cfg := config.Get()

	if keyword == "" {
		keywords := cfg.ReplySettings.SearchKeywords
		if len(keywords) == 0 {
			keywords = defaultSearchKeywords
		}
		keyword = keywords[0]
		fmt.Printf("Using default keyword: %s\n", keyword)
	}

	fmt.Printf("\nSearching Mastodon for: '%s'\n", keyword)
	fmt.Printf("Looking for %d recent posts...\n", count)

	mastodonClient := mastodon.NewClient(cfg.Mastodon.AccessToken, cfg.Mastodon.APIBaseURL)

	// The authenticated account's own posts are excluded from the search.
	accountInfo, err := mastodonClient.AccountInfo(ctx)
	if err != nil {
		return err
	}

	posts, err := mastodonClient.Search(ctx, keyword, count, accountInfo.ID)
	if err != nil {
		return err
	}

	if len(posts) == 0 {
		fmt.Println("\n✗ No relevant posts found. Try a different keyword.")
		return nil
	}

	fmt.Printf("\n✓ Found %d posts\n", len(posts))

	fmt.Println("\nPosts found:")
	for i, post := range posts {
		fmt.Printf("\n%d. @%s\n", i+1, post.Account.Username)
		fmt.Printf("   %s...\n", snippet(post.Content, 100))
		fmt.Printf("   URL: %s\n", post.URL)
	}

	notionClient := knowledge.NewClient(cfg.Notion.APIKey, cfg.Notion.PageID)
	llmClient := llm.NewClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model)

	fmt.Println("\n🤖 Generating replies using AI structured outputs...")

	replyGenerator := generator.NewReplyGenerator(llmClient, notionClient, cfg.ReplySettings.MaxLength)
	withReplies := replyGenerator.GenerateRepliesBatch(ctx, posts, 0.7)

	if err := store.Save(output, withReplies); err != nil {
		return err
	}
	fmt.Printf("\n✓ Saved replies to %s\n", output)

	divider := strings.Repeat("=", 60)
	fmt.Println("\n" + divider)
	fmt.Println("Generated Replies:")
	fmt.Println(divider)

	var repliesToPost []core.RepliedPost
	for i, item := range withReplies {
		fmt.Printf("\n--- Post %d ---\n", i+1)
		fmt.Printf("Author: @%s\n", item.Account.Username)
		fmt.Printf("Original: %s...\n", snippet(item.Content, 80))
		decision := "✗ NO"
		if item.ShouldReply {
			decision = "✓ YES"
		}
		fmt.Printf("Should Reply: %s\n", decision)
		fmt.Printf("Reason: %s\n", item.Reason)

		if item.ShouldReply && item.Reply != nil {
			fmt.Printf("\nReply (%d chars):\n", item.ReplyLength)
			fmt.Printf("  %s\n", *item.Reply)
			repliesToPost = append(repliesToPost, item)
		}
	}

	switch {
	case postReplies && len(repliesToPost) > 0:
		fmt.Println("\n" + divider)
		fmt.Printf("Posting %d replies to Mastodon...\n", len(repliesToPost))
		fmt.Println(divider)

		for i, item := range repliesToPost {
			fmt.Printf("\n[%d/%d] Replying to @%s...\n", i+1, len(repliesToPost), item.Account.Username)

			result, err := mastodonClient.Reply(ctx, item.ID, *item.Reply, "public")
			if err != nil {
				fmt.Fprintf(os.Stderr, "  ✗ Error: %v\n", err)
				continue
			}
			fmt.Printf("  ✓ Posted: %s\n", result.URL)

			// Brief pause between replies
			if i < len(repliesToPost)-1 {
				time.Sleep(2 * time.Second)
			}
		}

		fmt.Printf("\n✓ Posted %d replies!\n", len(repliesToPost))
	case !postReplies:
		fmt.Println("\n💡 To actually post these replies, run with --post-replies flag")
	default:
		fmt.Println("\n✗ No relevant posts to reply to")
	}

	return nil
}
