package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fixlog/fixlog/internal/pkg/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fixlog",
	Short: "GNSS track logger for small always-on devices 📡",
	Long: `Fixlog samples position fixes, buffers them in memory and appends them
to sequentially numbered track files on storage. A persistent counter
survives power cycles so every run gets its own file.
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize config here, after cobra has parsed command line flags
		if err := config.InitConfig(); err != nil {
			fmt.Printf("error initializing config: %s", err)
			os.Exit(1)
		}

		cfg = config.Get()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Run the root command
func Run() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/fixlog-config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-dir", "", "directory to write log files to (default is <data-dir>/logs)")
	rootCmd.PersistentFlags().String("data-dir", "tracks", "directory holding the counter record and the track files")
	rootCmd.PersistentFlags().String("device-id", "", "identifier used to tag logs and metrics (default is a generated UUID)")
	rootCmd.PersistentFlags().String("es-url", "", "comma-separated ElasticSearch URLs to ship logs to")
	rootCmd.PersistentFlags().String("es-index-prefix", "fixlog", "ElasticSearch index prefix for shipped logs")

	config.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(filesCmd())
	rootCmd.AddCommand(versionCmd)

	trackCmdFlags(trackCmd)

	return rootCmd.Execute()
}
