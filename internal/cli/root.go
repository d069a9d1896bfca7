package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/ClawDeck/ClawDeck/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"   ____ _                ____            _\n" +
		"  / ___| | __ ___      _|  _ \\  ___  ___| | __\n" +
		" | |   | |/ _` \\ \\ /\\ / / | | |/ _ \\/ __| |/ /\n" +
		" | |___| | (_| |\\ V  V /| |_| |  __/ (__|   <\n" +
		"  \\____|_|\\__,_| \\_/\\_/ |____/ \\___|\\___|_|\\_\\\n"
)

var rootCmd = &cobra.Command{
	Use:   "clawdeck",
	Short: "ClawDeck - AI agent operations cockpit",
	Long:  color.CyanString(logo) + "\nA cockpit for AI agent fleets: document store, REST API, reports and automation proxy.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cockpitCmd)
	rootCmd.AddCommand(workerCmd)
}
