package handlers

import (
	"fmt"
	"strings"

	"socialcast/internal/config"
	"socialcast/internal/feeds"
	"socialcast/internal/store"

	"github.com/spf13/cobra"
)

// NewFetchArticlesCmd creates the fetch-articles command
func NewFetchArticlesCmd() *cobra.Command {
	var (
		count       int
		output      string
		minAgeHours int
		maxAgeDays  int
	)

	cmd := &cobra.Command{
		Use:   "fetch-articles",
		Short: "Fetch top articles from tech blogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetchArticles(count, output, minAgeHours, maxAgeDays)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "c", 10, "Number of top articles to fetch")
	cmd.Flags().StringVarP(&output, "output", "o", "output/articles.json", "Output file path")
	cmd.Flags().IntVar(&minAgeHours, "min-age-hours", 1, "Minimum article age in hours")
	cmd.Flags().IntVar(&maxAgeDays, "max-age-days", 7, "Maximum article age in days")

	return cmd
}

func runFetchArticles(count int, output string, minAgeHours, maxAgeDays int) error {
	fmt.Printf("Fetching top %d AI/ML articles...\n", count)

	cfg := config.Get()
	fetcher := feeds.NewFetcher(cfg.RSSFeeds, cfg.ArticleKeywords, cfg.ArticleSettings.MaxArticlesPerFeed)

	articles := fetcher.TopArticles(count, minAgeHours, maxAgeDays, cfg.ArticleSettings.MinKeywords)

	if err := store.Save(output, articles); err != nil {
		return err
	}

	fmt.Printf("\n✓ Fetched %d articles\n", len(articles))
	fmt.Printf("✓ Saved to %s\n", output)

	fmt.Println("\nTop articles:")
	for i, article := range articles {
		if i >= 5 {
			break
		}
		keywords := article.MatchedKeywords
		if len(keywords) > 3 {
			keywords = keywords[:3]
		}
		fmt.Printf("\n%d. %s\n", i+1, article.Title)
		fmt.Printf("   Source: %s\n", article.Source)
		fmt.Printf("   Keywords: %s\n", strings.Join(keywords, ", "))
		fmt.Printf("   URL: %s\n", article.URL)
	}

	return nil
}
