package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

var generateSessionKeyCmd = &cobra.Command{
	Use:   "generate-session-key",
	Short: "Generate a random session key",
	Long:  `Generate a random 32 byte key for signing session cookies. Put it in the session_key config field or FOLIO_SESSION_KEY.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("failed to generate session key: %w", err)
		}

		fmt.Println("Generated session key:")
		fmt.Printf("session_key: \"%s\"\n", hex.EncodeToString(key))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateSessionKeyCmd)
}
