package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fixlog/fixlog/internal/pkg/utils"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version number",
	Run: func(_ *cobra.Command, _ []string) {
		version := utils.GetVersion()

		println("fixlog", version.Version)
		println("- go/version:", version.GoVersion)
	},
}
