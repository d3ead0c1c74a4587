package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var keygenCost int

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an API key and its config entry",
	Long: `Generate a random API key and the bcrypt hash to put in the config.

The plaintext key is shown once; only the hash is stored.

Example:
  pagecraft keygen
  pagecraft keygen --cost 12`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().IntVar(&keygenCost, "cost", bcrypt.DefaultCost, "bcrypt cost factor")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	key := "pk-" + hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(key), keygenCost)
	if err != nil {
		return fmt.Errorf("hash key: %w", err)
	}

	fmt.Printf("API key (give to the caller, shown once):\n  %s\n\n", key)
	fmt.Printf("Config entry:\n")
	fmt.Printf("auth:\n")
	fmt.Printf("  keys:\n")
	fmt.Printf("    - user_id: <user>\n")
	fmt.Printf("      plan: basic\n")
	fmt.Printf("      hash: %q\n", string(hash))
	return nil
}
