package handlers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewFullWorkflowCmd creates the full-workflow command
func NewFullWorkflowCmd() *cobra.Command {
	var (
		postCount      int
		articleCount   int
		postToMastodon bool
	)

	cmd := &cobra.Command{
		Use:   "full-workflow",
		Short: "Run the complete automation workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			divider := strings.Repeat("=", 60)

			fmt.Println(divider)
			fmt.Println("TrustStack Social Media Automation - Full Workflow")
			fmt.Println(divider)

			fmt.Println("\n[Step 1/4] Generating social media posts...")
			if err := runGeneratePosts(ctx, postCount, "output/posts.json", 0.7); err != nil {
				return err
			}

			if postToMastodon {
				fmt.Println("\n[Step 2/4] Posting to Mastodon...")
				if err := runPostToMastodon(ctx, "output/posts.json", 0, true, false, false); err != nil {
					return err
				}
			} else {
				fmt.Println("\n[Step 2/4] Skipping Mastodon posting (use --post-to-mastodon to enable)")
			}

			fmt.Println("\n[Step 3/4] Fetching top articles...")
			if err := runFetchArticles(articleCount, "output/articles.json", 1, 7); err != nil {
				return err
			}

			fmt.Println("\n[Step 4/4] Generating comments...")
			if err := runGenerateComments(ctx, "output/articles.json", "output/comments.json", 0.7); err != nil {
				return err
			}

			fmt.Println("\n" + divider)
			fmt.Println("✓ Workflow complete!")
			fmt.Println(divider)
			fmt.Println("\nGenerated files:")
			fmt.Println("  - output/posts.json (social media posts)")
			fmt.Println("  - output/articles.json (top articles)")
			fmt.Println("  - output/comments.json (article comments)")
			fmt.Println("\nNext steps:")
			fmt.Println("  - Review generated posts: cat output/posts.json")
			fmt.Println("  - Post to Mastodon: socialcast post-to-mastodon")
			fmt.Println("  - Post comments: socialcast post-comments")

			return nil
		},
	}

	cmd.Flags().IntVar(&postCount, "post-count", 3, "Number of posts to generate")
	cmd.Flags().IntVar(&articleCount, "article-count", 5, "Number of articles to fetch")
	cmd.Flags().BoolVar(&postToMastodon, "post-to-mastodon", false, "Actually post to Mastodon (default: preview only)")

	return cmd
}
