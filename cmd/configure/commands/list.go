package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbrennan/toolhub/internal/database"
)

// NewListCmd creates the list command, a one-shot dump of all
// database-backed configuration.
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			ctx := context.Background()

			cors, err := database.NewCorsConfigRepository(db).Get(ctx)
			if err != nil {
				return fmt.Errorf("get cors config: %w", err)
			}
			if cors == nil {
				fmt.Println("CORS: not configured (falls back to FRONTEND_URL)")
			} else {
				fmt.Printf("CORS: origins=%s credentials=%v max-age=%d\n",
					cors.AllowedOrigins, cors.AllowCredentials, cors.MaxAge)
			}

			rl, err := database.NewRatelimitConfigRepository(db).Get(ctx)
			if err != nil {
				return fmt.Errorf("get ratelimit config: %w", err)
			}
			if rl == nil {
				fmt.Println("Rate limit: not configured (falls back to default)")
			} else {
				fmt.Printf("Rate limit: %s\n", rl.Rate)
			}

			return nil
		},
	}
}
