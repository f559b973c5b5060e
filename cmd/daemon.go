package cmd

import (
	"os"

	"github.com/keepsync/keepsync/internal/cmdutil"
	"github.com/keepsync/keepsync/internal/daemon"
	"github.com/keepsync/keepsync/internal/util"
	rootutil "github.com/keepsync/keepsync/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Daemon management commands",
	Long:  `Manage the keepsync background daemon that periodically syncs Karakeep bookmarks into the vault and watches for local note edits.`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the keepsync daemon",
	Long:  `Start the background daemon that syncs bookmarks every configured interval and pushes local note edits back to Karakeep as they happen.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmdutil.LoadConfigOrExit(cmd)
		if cfg == nil {
			os.Exit(1)
		}

		d, err := daemon.NewDaemon(cfg)
		if err != nil {
			util.LogError(util.DaemonError, "creating daemon", err)
			os.Exit(1)
		}
		if err := d.Start(); err != nil {
			util.LogError(util.DaemonError, "starting daemon", err)
			os.Exit(1)
		}
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status",
	Long:  `Check if the keepsync daemon is currently running and display its configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmdutil.LoadConfigOrExit(cmd)
		if cfg == nil {
			os.Exit(1)
		}

		d, err := daemon.NewDaemon(cfg)
		if err != nil {
			util.LogError(util.DaemonError, "creating daemon", err)
			os.Exit(1)
		}
		if err := d.Status(); err != nil {
			rootutil.Cyan.Println("Run 'keepsync daemon start' to start it")
			os.Exit(1)
		}
	},
}
