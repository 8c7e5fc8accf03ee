package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"metislap/internal/auth"
	"metislap/internal/config"
)

// NewTokenCmd mints an instructor token for local development and
// operational testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		instructorID string
		approved     bool
		ttl          time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an instructor token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			secret := cfg.Auth.Secret
			if secret == "" {
				secret = "dev-secret"
			}
			token, err := auth.NewTokenManager(secret, ttl).Mint(instructorID, approved)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&instructorID, "instructor-id", "", "instructor identity to embed")
	cmd.Flags().BoolVar(&approved, "approved", true, "mark the instructor as approved")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("instructor-id")
	return cmd
}
