package handlers

import (
	"context"
	"fmt"
	"os"

	"socialcast/internal/config"
	"socialcast/internal/core"
	"socialcast/internal/generator"
	"socialcast/internal/knowledge"
	"socialcast/internal/llm"
	"socialcast/internal/mastodon"
	"socialcast/internal/store"

	"github.com/spf13/cobra"
)

// NewPostCommentsCmd creates the post-comments command
func NewPostCommentsCmd() *cobra.Command {
	var (
		file    string
		index   int
		preview bool
	)

	cmd := &cobra.Command{
		Use:   "post-comments",
		Short: "Post generated comments to Mastodon",
		RunE: func(cmd *cobra.Command, args []string) error {
			indexSet := cmd.Flags().Changed("index")
			return runPostComments(cmd.Context(), file, index, indexSet, preview)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "output/comments.json", "Input file with comments")
	cmd.Flags().IntVarP(&index, "index", "i", 0, "Comment index to post (0-based)")
	cmd.Flags().BoolVar(&preview, "preview", false, "Preview without posting")

	return cmd
}

func runPostComments(ctx context.Context, file string, index int, indexSet, preview bool) error {
	cfg := config.Get()

	var items []core.CommentedArticle
	if err := store.Load(file, &items); err != nil {
		exitWithError("Error: File not found: %s", file)
	}

	var withComments []core.CommentedArticle
	for _, item := range items {
		if item.Comment != nil && *item.Comment != "" {
			withComments = append(withComments, item)
		}
	}
	if len(withComments) == 0 {
		exitWithError("Error: No comments found in file")
	}

	notionClient := knowledge.NewClient(cfg.Notion.APIKey, cfg.Notion.PageID)
	llmClient := llm.NewClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model)
	mastodonClient := mastodon.NewClient(cfg.Mastodon.AccessToken, cfg.Mastodon.APIBaseURL)

	commentGenerator := generator.NewCommentGenerator(llmClient, notionClient, cfg.CommentSettings.MaxLength)

	formatted := commentGenerator.BatchFormatForMastodon(withComments, mastodon.MaxPostLength)

	var selected core.FormattedComment
	if indexSet {
		if index < 0 || index >= len(formatted) {
			exitWithError("Error: Invalid index %d. Must be 0-%d", index, len(formatted)-1)
		}
		selected = formatted[index]
	} else {
		fmt.Println("\nAvailable comments:")
		for i, item := range formatted {
			fmt.Printf("  %d. %s...\n", i, snippet(item.ArticleTitle, 60))
			fmt.Printf("     Source: %s\n", item.Source)
		}

		chosen, err := promptForIndex("\nSelect comment index to post")
		if err != nil || chosen < 0 || chosen >= len(formatted) {
			exitWithError("Error: Invalid index")
		}
		selected = formatted[chosen]
	}

	content := selected.MastodonPost

	if preview {
		fmt.Println("\n--- Preview ---")
		fmt.Printf("Article: %s\n", selected.ArticleTitle)
		fmt.Printf("\n%s\n", content)
		fmt.Printf("\nLength: %d chars\n", selected.PostLength)
		return nil
	}

	fmt.Println("\nPosting comment to Mastodon...")
	result, err := mastodonClient.Publish(ctx, content, mastodon.PublishOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Error posting: %v\n", err)
		return nil
	}
	fmt.Println("✓ Posted successfully!")
	fmt.Printf("  URL: %s\n", result.URL)

	return nil
}
