package handlers

import (
	"context"
	"fmt"
	"os"

	"socialcast/internal/config"
	"socialcast/internal/generator"
	"socialcast/internal/knowledge"
	"socialcast/internal/llm"
	"socialcast/internal/store"

	"github.com/spf13/cobra"
)

// NewGeneratePostsCmd creates the generate-posts command
func NewGeneratePostsCmd() *cobra.Command {
	var (
		count       int
		output      string
		temperature float64
	)

	cmd := &cobra.Command{
		Use:   "generate-posts",
		Short: "Generate social media posts from Notion content",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeneratePosts(cmd.Context(), count, output, temperature)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "c", 5, "Number of posts to generate")
	cmd.Flags().StringVarP(&output, "output", "o", "output/posts.json", "Output file path")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0.7, "Sampling temperature")

	return cmd
}

func runGeneratePosts(ctx context.Context, count int, output string, temperature float64) error {
	fmt.Printf("Generating %d social media posts...\n", count)

	cfg := config.Get()
	notionClient := knowledge.NewClient(cfg.Notion.APIKey, cfg.Notion.PageID)
	llmClient := llm.NewClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model)

	postGenerator := generator.NewPostGenerator(llmClient, notionClient, cfg.PostSettings.MaxLength)

	posts, err := postGenerator.GeneratePosts(ctx, count, nil, temperature)
	if err != nil {
		return err
	}

	if err := store.Save(output, posts); err != nil {
		return err
	}

	fmt.Printf("\n✓ Generated %d posts\n", len(posts))
	fmt.Printf("✓ Saved to %s\n", output)

	fmt.Println("\nPreview of generated posts:")
	for i, post := range posts {
		if i >= 3 {
			break
		}
		fmt.Printf("\n--- Post %d (%s) ---\n", i+1, post.Style)
		fmt.Println(snippet(post.Content, 150))
	}

	return nil
}

// snippet shortens text for terminal display. The persisted records are
// never shortened, only what gets printed.
func snippet(text string, limit int) string {
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}

func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
