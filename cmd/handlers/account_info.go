package handlers

import (
	"fmt"

	"socialcast/internal/config"
	"socialcast/internal/mastodon"

	"github.com/spf13/cobra"
)

// NewAccountInfoCmd creates the account-info command
func NewAccountInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account-info",
		Short: "Display Mastodon account information",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			client := mastodon.NewClient(cfg.Mastodon.AccessToken, cfg.Mastodon.APIBaseURL)

			info, err := client.AccountInfo(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println("\nMastodon Account Information:")
			fmt.Printf("  Username: @%s\n", info.Username)
			fmt.Printf("  Display Name: %s\n", info.DisplayName)
			fmt.Printf("  Followers: %d\n", info.FollowersCount)
			fmt.Printf("  Following: %d\n", info.FollowingCount)
			fmt.Printf("  Posts: %d\n", info.StatusesCount)
			fmt.Printf("  URL: %s\n", info.URL)

			return nil
		},
	}
}
