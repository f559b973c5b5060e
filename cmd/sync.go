package cmd

import (
	"context"
	"os"

	"github.com/keepsync/keepsync/internal/cmdutil"
	"github.com/keepsync/keepsync/internal/daemon"
	"github.com/keepsync/keepsync/internal/logger"
	"github.com/keepsync/keepsync/internal/util"
	rootutil "github.com/keepsync/keepsync/util"
	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var (
	helpSync = `Runs a single synchronization pass against the configured Karakeep
server: fetches all bookmarks page by page, writes new ones into the vault
folder, and pushes any locally edited notes back to the server.`

	exampleSync = dedent.Dedent(`
		# Run one sync pass with the default config
		keepsync sync

		# Run one sync pass with a specific config file
		keepsync sync --config ~/.config/keepsync/KeepsyncConfig.json`,
	)
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Run a single bookmark sync pass",
	Long:    helpSync,
	Example: exampleSync,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmdutil.LoadConfigOrExit(cmd)
		if cfg == nil {
			os.Exit(1)
		}

		log := logger.New(cfg.GetLogPath(), false)
		defer log.Close()

		engine, _ := daemon.BuildEngine(cfg, log)
		result, err := engine.RunPass(context.Background())
		if err != nil {
			util.LogError(util.SyncError, "running sync pass", err)
			os.Exit(1)
		}

		rootutil.GreenBold.Printf("Karakeep sync complete: %s\n", result.Summary())
	},
}
