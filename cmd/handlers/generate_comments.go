package handlers

import (
	"context"
	"fmt"

	"socialcast/internal/config"
	"socialcast/internal/core"
	"socialcast/internal/generator"
	"socialcast/internal/knowledge"
	"socialcast/internal/llm"
	"socialcast/internal/store"

	"github.com/spf13/cobra"
)

// NewGenerateCommentsCmd creates the generate-comments command
func NewGenerateCommentsCmd() *cobra.Command {
	var (
		file        string
		output      string
		temperature float64
	)

	cmd := &cobra.Command{
		Use:   "generate-comments",
		Short: "Generate comments for articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateComments(cmd.Context(), file, output, temperature)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "output/articles.json", "Input file with articles")
	cmd.Flags().StringVarP(&output, "output", "o", "output/comments.json", "Output file path")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0.7, "Sampling temperature")

	return cmd
}

func runGenerateComments(ctx context.Context, file, output string, temperature float64) error {
	fmt.Println("Generating comments for articles...")

	cfg := config.Get()

	var articles []core.Article
	if err := store.Load(file, &articles); err != nil {
		exitWithError("Error: File not found: %s", file)
	}

	notionClient := knowledge.NewClient(cfg.Notion.APIKey, cfg.Notion.PageID)
	llmClient := llm.NewClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model)

	commentGenerator := generator.NewCommentGenerator(llmClient, notionClient, cfg.CommentSettings.MaxLength)

	withComments := commentGenerator.GenerateComments(ctx, articles, temperature)

	if err := store.Save(output, withComments); err != nil {
		return err
	}

	fmt.Printf("\n✓ Generated comments for %d articles\n", len(withComments))
	fmt.Printf("✓ Saved to %s\n", output)

	fmt.Println("\nPreview of generated comments:")
	for i, item := range withComments {
		if i >= 3 {
			break
		}
		if item.Comment == nil {
			continue
		}
		fmt.Printf("\n--- Article %d ---\n", i+1)
		fmt.Printf("Title: %s\n", item.Title)
		fmt.Printf("Comment: %s\n", snippet(*item.Comment, 100))
	}

	return nil
}
