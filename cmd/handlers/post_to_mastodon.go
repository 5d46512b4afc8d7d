package handlers

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"socialcast/internal/config"
	"socialcast/internal/core"
	"socialcast/internal/mastodon"
	"socialcast/internal/store"

	"github.com/spf13/cobra"
)

// NewPostToMastodonCmd creates the post-to-mastodon command
func NewPostToMastodonCmd() *cobra.Command {
	var (
		file    string
		index   int
		postAll bool
		preview bool
	)

	cmd := &cobra.Command{
		Use:   "post-to-mastodon",
		Short: "Post generated content to Mastodon",
		RunE: func(cmd *cobra.Command, args []string) error {
			indexSet := cmd.Flags().Changed("index")
			return runPostToMastodon(cmd.Context(), file, index, indexSet, postAll, preview)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "output/posts.json", "Input file with posts")
	cmd.Flags().IntVarP(&index, "index", "i", 0, "Post index to post (0-based)")
	cmd.Flags().BoolVar(&postAll, "all", false, "Post all posts from file")
	cmd.Flags().BoolVar(&preview, "preview", false, "Preview without posting")

	return cmd
}

func runPostToMastodon(ctx context.Context, file string, index int, indexSet, postAll, preview bool) error {
	cfg := config.Get()

	var posts []core.GeneratedPost
	if err := store.Load(file, &posts); err != nil {
		exitWithError("Error: File not found: %s", file)
	}

	client := mastodon.NewClient(cfg.Mastodon.AccessToken, cfg.Mastodon.APIBaseURL)

	var selected []int
	switch {
	case indexSet:
		if index < 0 || index >= len(posts) {
			exitWithError("Error: Invalid index %d. Must be 0-%d", index, len(posts)-1)
		}
		selected = []int{index}
	case postAll:
		for i := range posts {
			selected = append(selected, i)
		}
	default:
		fmt.Println("\nAvailable posts:")
		for i, post := range posts {
			status := "○ Not posted"
			if post.Posted {
				status = "✓ Posted"
			}
			fmt.Printf("  %d. %s - %s (%d chars)\n", i, status, post.Style, post.Length)
		}

		chosen, err := promptForIndex("\nSelect post index to post")
		if err != nil || chosen < 0 || chosen >= len(posts) {
			exitWithError("Error: Invalid index")
		}
		selected = []int{chosen}
	}

	for _, i := range selected {
		content := posts[i].Content

		if preview {
			fmt.Println("\n--- Preview Post ---")
			fmt.Println(content)
			fmt.Printf("Length: %d chars\n", len(content))
			continue
		}

		fmt.Println("\nPosting to Mastodon...")
		result, err := client.Publish(ctx, content, mastodon.PublishOptions{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ Error posting: %v\n", err)
			continue
		}
		fmt.Println("✓ Posted successfully!")
		fmt.Printf("  URL: %s\n", result.URL)

		posts[i].Posted = true
		posts[i].PostedAt = result.CreatedAt
		posts[i].MastodonURL = result.URL
	}

	if !preview {
		if err := store.Save(file, posts); err != nil {
			return err
		}
		fmt.Printf("\n✓ Updated %s\n", file)
	}

	return nil
}

// promptForIndex reads a numeric selection from stdin.
func promptForIndex(label string) (int, error) {
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(line))
}
