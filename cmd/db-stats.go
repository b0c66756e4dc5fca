package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jon4hz/folio/internal/config"
	"github.com/jon4hz/folio/internal/database"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display the number of registered users and stored contact messages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := database.New(cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		users, err := db.CountUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		messages, err := db.CountContactMessages(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count contact messages: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Registered Users: %s\n", humanize.Comma(users))
		fmt.Printf("Contact Messages: %s\n", humanize.Comma(messages))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}
