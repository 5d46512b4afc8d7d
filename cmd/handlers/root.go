package handlers

import (
	"fmt"
	"os"

	"socialcast/internal/config"
	"socialcast/internal/logger"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "socialcast",
		Short: "TrustStack social media automation tool",
		Long: `Socialcast automates TrustStack's social media presence:

  - Generates posts from the company knowledge base
  - Fetches and ranks relevant articles from tech blogs
  - Generates commentary for articles
  - Searches Mastodon for relevant posts and drafts replies
  - Publishes posts, comments and replies to Mastodon`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(NewGeneratePostsCmd())
	rootCmd.AddCommand(NewPostToMastodonCmd())
	rootCmd.AddCommand(NewFetchArticlesCmd())
	rootCmd.AddCommand(NewGenerateCommentsCmd())
	rootCmd.AddCommand(NewPostCommentsCmd())
	rootCmd.AddCommand(NewFullWorkflowCmd())
	rootCmd.AddCommand(NewAccountInfoCmd())
	rootCmd.AddCommand(NewSearchAndReplyCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads configuration and verifies required secrets before any
// command runs.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level)

	if errors := cfg.Validate(); len(errors) > 0 {
		fmt.Fprintln(os.Stderr, "Configuration errors found:")
		for _, e := range errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
		fmt.Fprintln(os.Stderr, "\nPlease check your .env file and ensure all required variables are set.")
		os.Exit(1)
	}
}
