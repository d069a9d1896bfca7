package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ClawDeck/ClawDeck/internal/config"
	"github.com/ClawDeck/ClawDeck/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Interact with the remote automation worker",
}

var workerHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the worker's health endpoint",
	Run: func(cmd *cobra.Command, args []string) {
		c := workerClient()
		status, err := c.Health(context.Background())
		if err != nil {
			fmt.Printf("Worker: ✗ unreachable (%v)\n", err)
			os.Exit(1)
		}
		fmt.Printf("Worker: ✓ %s (version %s)\n", status.Status, status.Version)
	},
}

var workerWindowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List open windows on the worker desktop",
	Run: func(cmd *cobra.Command, args []string) {
		c := workerClient()
		windows, err := c.ListWindows(context.Background())
		if err != nil {
			fmt.Printf("List windows failed: %v\n", err)
			os.Exit(1)
		}
		for _, w := range windows {
			fmt.Printf("  %-12s %s\n", w.ID, w.Title)
		}
	},
}

var workerStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the worker host's resource usage",
	Run: func(cmd *cobra.Command, args []string) {
		c := workerClient()
		stats, err := c.SystemStats(context.Background())
		if err != nil {
			fmt.Printf("System stats failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("CPU: %.1f%%  Mem: %.1f%%\n", stats.CPUPercent, stats.MemPercent)
	},
}

var workerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask the worker to close its browser",
	Run: func(cmd *cobra.Command, args []string) {
		c := workerClient()
		if err := c.EmergencyStop(context.Background()); err != nil {
			fmt.Printf("Emergency stop failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("🛑 Browser close requested (in-flight automation finishes on its own)")
	},
}

func workerClient() *worker.Client {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	return worker.NewClient(cfg.Worker.URL, cfg.Worker.Timeout)
}

func init() {
	workerCmd.AddCommand(workerHealthCmd)
	workerCmd.AddCommand(workerWindowsCmd)
	workerCmd.AddCommand(workerStatsCmd)
	workerCmd.AddCommand(workerStopCmd)
}
