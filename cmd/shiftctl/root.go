package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/shiftledger-api/pkg/app"
	"github.com/arnavshah/shiftledger-api/pkg/config"
	"github.com/arnavshah/shiftledger-api/pkg/database"
	"github.com/arnavshah/shiftledger-api/pkg/store"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "shiftctl",
	Short: "Shift ledger command-line tools",
	Long: `shiftctl imports schedules, prints earnings statistics and issues
API keys against the same store the server uses (see STORE_DRIVER).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(keygenCmd)
}

// openStore opens the configured store; the database is only opened for the gorm driver
func openStore(cfg config.Config) (store.SessionStore, error) {
	var db *gorm.DB
	if cfg.StoreDriver == config.DriverGorm {
		var err error
		db, err = database.Open(cfg.DatabaseURL, cfg.DataPath)
		if err != nil {
			return nil, err
		}
	}
	return app.OpenStore(cfg, db)
}
