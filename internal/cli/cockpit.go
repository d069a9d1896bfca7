package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ClawDeck/ClawDeck/internal/cockpit"
	"github.com/ClawDeck/ClawDeck/internal/config"
	"github.com/ClawDeck/ClawDeck/internal/store"
)

var cockpitCmd = &cobra.Command{
	Use:   "cockpit",
	Short: "Show a terminal snapshot of the cockpit",
	Run:   runCockpit,
}

func runCockpit(cmd *cobra.Command, args []string) {
	printHeader("🧭 ClawDeck Cockpit")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	local, err := cockpit.OpenLocalStore(cfg.Paths.LocalDB)
	if err != nil {
		fmt.Printf("⚠️ Local store unavailable: %v\n", err)
		local = nil
	} else {
		defer local.Close()
	}

	client := cockpit.NewClient(cfg.Cockpit.APIBase, cfg.Cockpit.PollInterval, local, func(msg string) {
		fmt.Printf("🔔 %s\n", msg)
	})
	client.Load(context.Background())
	m := client.Snapshot()

	switch m.State {
	case cockpit.Synced:
		fmt.Println("Sync: " + color.GreenString("synced"))
	case cockpit.PendingWrite:
		fmt.Println("Sync: " + color.YellowString("pending-write"))
	default:
		fmt.Println("Sync: " + color.RedString("local-only"))
	}

	fmt.Printf("\nAgents (%d):\n", len(m.Agents))
	for _, a := range m.Agents {
		status := color.GreenString(a.Status)
		if a.Status == store.AgentPaused {
			status = color.YellowString(a.Status)
		}
		fmt.Printf("  %s %-8s %-22s %s\n", a.Emoji, a.ID, a.Model, status)
	}

	fmt.Printf("\nTasks (%d):\n", len(m.Tasks))
	for _, t := range m.Tasks {
		fmt.Printf("  [%s] %s (%d%%)\n", t.Status, t.Title, t.Progress)
	}

	fmt.Printf("\nFeed (last %d):\n", min(len(m.Feed), 10))
	for i, f := range m.Feed {
		if i == 10 {
			break
		}
		fmt.Printf("  %s  %s\n", f.CreatedAt, f.Content)
	}

	fmt.Printf("\nStats: %d/%d agentes activos, %d tareas pendientes, %d completadas\n",
		m.Stats.ActiveAgents, m.Stats.TotalAgents, m.Stats.PendingTasks, m.Stats.CompletedTasks)
}
