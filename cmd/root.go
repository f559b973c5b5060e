package cmd

import (
	"fmt"
	"os"

	"github.com/keepsync/keepsync/internal/config"
	"github.com/keepsync/keepsync/util"
	"github.com/spf13/cobra"
)

func init() {
	configPath, err := config.DefaultConfigPath()
	if err != nil {
		util.Red.Println("Error setting default config path: ", err)
		os.Exit(1)
	}
	rootCmd.PersistentFlags().StringP("config", "c", configPath, "Path to config file")
}

var rootCmd = &cobra.Command{
	Use:   "keepsync",
	Short: "Sync Karakeep bookmarks into a local markdown vault",
	Long: `keepsync mirrors your Karakeep bookmarks into a folder of markdown
documents and pushes local edits of the notes field back to the server.

Each bookmark becomes one file with a metadata header, an optional cached
image, the remote summary and description, and a Notes section you can edit
locally. The daemon re-syncs on an interval and watches the folder for note
edits.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help if no command is provided
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
