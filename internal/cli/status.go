package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ClawDeck/ClawDeck/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ ClawDeck Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 ClawDeck Status")
		fmt.Printf("Version: %s\n", version)

		// Check config
		configPath, err := config.ConfigPath()
		if err == nil {
			if _, serr := os.Stat(configPath); serr == nil {
				fmt.Println("Config:  ✓ Found (" + configPath + ")")
			} else {
				fmt.Println("Config:  ✗ Not found (defaults apply)")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config:  ? Unable to load (%v)\n", err)
			return
		}

		// Check cockpit document
		if _, err := os.Stat(cfg.Paths.DataFile); err == nil {
			fmt.Println("Document: ✓ Found (" + cfg.Paths.DataFile + ")")
		} else {
			fmt.Println("Document: ✗ Not found (created on first serve)")
		}

		fmt.Printf("Gateway: http://%s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
		if cfg.Report.Enabled {
			fmt.Printf("Report:  ✓ Every %d minutes\n", cfg.Report.IntervalMinutes)
		} else {
			fmt.Println("Report:  ✗ Disabled")
		}
		if cfg.Mirror.Enabled {
			fmt.Printf("Mirror:  ✓ Kafka topic %s\n", cfg.Mirror.Topic)
		} else {
			fmt.Println("Mirror:  ✗ Disabled")
		}
		if cfg.Notify.Slack.Enabled {
			fmt.Printf("Slack:   ✓ #%s\n", cfg.Notify.Slack.Channel)
		} else {
			fmt.Println("Slack:   ✗ Disabled")
		}
		fmt.Printf("Worker:  %s\n", cfg.Worker.URL)

		fmt.Println("Status:  Ready")
	},
}
