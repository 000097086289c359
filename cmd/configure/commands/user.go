package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mbrennan/toolhub/internal/database"
	"github.com/mbrennan/toolhub/internal/models"
	"github.com/mbrennan/toolhub/internal/services/session"
	"github.com/mbrennan/toolhub/internal/validation"
)

// NewUserCmd creates the user management command with create and seed
// subcommands.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
		Long:  "Create accounts directly, bypassing the signup endpoint.",
	}
	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserSeedCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a single user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			users := database.NewUserRepository(db)
			if err := createUser(context.Background(), users, username, password); err != nil {
				return err
			}
			fmt.Printf("User %q created.\n", validation.NormalizeUsername(username))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	return cmd
}

// seedFile is the on-disk format for bulk user creation.
type seedFile struct {
	Users []struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"users"`
}

func newUserSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create users from a YAML file",
		Long:  "Read a YAML file with a 'users' list of username/password pairs and create each account. Existing usernames are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			var seed seedFile
			if err := yaml.Unmarshal(raw, &seed); err != nil {
				return fmt.Errorf("parse seed file: %w", err)
			}
			if len(seed.Users) == 0 {
				return fmt.Errorf("seed file contains no users")
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			users := database.NewUserRepository(db)
			ctx := context.Background()

			created, skipped := 0, 0
			for _, u := range seed.Users {
				err := createUser(ctx, users, u.Username, u.Password)
				if err != nil {
					if database.IsUniqueViolation(err) {
						fmt.Printf("Skipping %q: already exists.\n", validation.NormalizeUsername(u.Username))
						skipped++
						continue
					}
					return fmt.Errorf("create user %q: %w", u.Username, err)
				}
				created++
			}

			fmt.Printf("Seed complete: %d created, %d skipped.\n", created, skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to the YAML seed file (required)")
	return cmd
}

func createUser(ctx context.Context, users *database.UserRepository, username, password string) error {
	normalized := validation.NormalizeUsername(username)
	if !validation.ValidUsername(normalized) {
		return fmt.Errorf("invalid username %q", username)
	}
	if !validation.ValidPassword(password) {
		return fmt.Errorf("invalid password for %q: must be 8-20 characters", username)
	}

	hash, err := session.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return users.Create(ctx, &models.User{
		ID:           uuid.New(),
		Username:     normalized,
		PasswordHash: hash,
		Preferences:  models.DefaultPreferences(),
	})
}
