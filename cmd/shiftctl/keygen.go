package main

import (
	"errors"
	"fmt"

	"github.com/arnavshah/shiftledger-api/pkg/auth"
	"github.com/arnavshah/shiftledger-api/pkg/config"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen <name>",
	Short: "Print an HMAC API key for an import client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.APIMasterSecret == "" {
			return errors.New("API_MASTER_SECRET not found in environment or .env")
		}

		key := auth.NewService(cfg.JWTSecret, cfg.APIMasterSecret).GenerateHMACKey(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Generated Key for %s:\n%s\n", args[0], key)
		return nil
	},
}
