package cmd

import (
	"os"

	"PostGenius/config"
	"PostGenius/utils"

	"github.com/spf13/cobra"
)

var cfg = config.Load()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "postgenius",
	Short: "Generate, schedule and publish Facebook page posts",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.SetLogLevel(cfg.LogLevel)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "persistence driver: file, memory, postgres or valkey")
	rootCmd.PersistentFlags().StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "JSON file used by the file store")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "DEBUG, INFO, WARN or ERROR")

	rootCmd.AddCommand(serveCmd, tickCmd, postsCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
