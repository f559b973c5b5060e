package cmd

import (
	"os"

	"github.com/keepsync/keepsync/internal/config"
	"github.com/keepsync/keepsync/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configureCmd)
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure keepsync settings",
	Long: `Configure keepsync settings including the Karakeep server and API key,
the vault folder, the sync interval and tag exclusions.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")

		if err := config.Configure(configPath); err != nil {
			util.Red.Printf("Error updating configuration: %v\n", err)
			os.Exit(1)
		}

		util.CyanBold.Println("\nNext steps:")
		util.Cyan.Println("- Run 'keepsync sync' for a one-time sync")
		util.Cyan.Println("- Run 'keepsync daemon start' to sync continuously")
	},
}
