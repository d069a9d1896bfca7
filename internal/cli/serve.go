package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ClawDeck/ClawDeck/internal/api"
	"github.com/ClawDeck/ClawDeck/internal/bus"
	"github.com/ClawDeck/ClawDeck/internal/config"
	"github.com/ClawDeck/ClawDeck/internal/mirror"
	"github.com/ClawDeck/ClawDeck/internal/notify"
	"github.com/ClawDeck/ClawDeck/internal/report"
	"github.com/ClawDeck/ClawDeck/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cockpit API server",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	printHeader("🛰️ ClawDeck Server")
	fmt.Println("Starting ClawDeck...")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	// 2. Open the cockpit document store
	st, loadRes, err := store.Open(cfg.Paths.DataFile)
	if err != nil {
		fmt.Printf("Store error: %v\n", err)
		os.Exit(1)
	}
	switch {
	case loadRes.ParseErr != nil:
		fmt.Printf("⚠️ Document was unreadable, using defaults (backup: %s)\n", loadRes.BackupPath)
	case loadRes.UsedDefaults:
		fmt.Println("📄 New cockpit document created")
	default:
		fmt.Printf("📄 Cockpit document loaded: %s\n", st.Path())
	}

	// 3. Chat bus
	chatBus := bus.NewChatBus()

	// 4. Optional sinks
	var sinks []api.FeedSink
	var reportSinks []report.Sink

	var feedMirror *mirror.FeedMirror
	if cfg.Mirror.Enabled {
		feedMirror = mirror.New(strings.Split(cfg.Mirror.Brokers, ","), cfg.Mirror.Topic)
		if feedMirror != nil {
			sinks = append(sinks, feedMirror)
			reportSinks = append(reportSinks, feedMirror)
			fmt.Printf("📡 Kafka feed mirror enabled (topic %s)\n", cfg.Mirror.Topic)
		}
	}
	if cfg.Notify.Slack.Enabled {
		if notifier := notify.NewSlackNotifier(cfg.Notify.Slack.BotToken, cfg.Notify.Slack.Channel); notifier != nil {
			reportSinks = append(reportSinks, notifier)
			fmt.Printf("💬 Slack report notifier enabled (#%s)\n", cfg.Notify.Slack.Channel)
		}
	}

	// 5. API server
	srv := api.NewServer(st, chatBus, version, sinks...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := srv.RunChatRouter(ctx); err != nil && err != context.Canceled {
			fmt.Printf("⚠️ Chat router stopped: %v\n", err)
		}
	}()
	go func() {
		if err := chatBus.DispatchReplies(ctx); err != nil && err != context.Canceled {
			fmt.Printf("⚠️ Reply dispatcher stopped: %v\n", err)
		}
	}()

	// 6. Socio report
	if cfg.Report.Enabled {
		reporter := report.New(st, time.Duration(cfg.Report.IntervalMinutes)*time.Minute, reportSinks...)
		go func() {
			if err := reporter.Run(ctx); err != nil && err != context.Canceled {
				fmt.Printf("⚠️ Reporter stopped: %v\n", err)
			}
		}()
		fmt.Printf("📊 Socio report every %d minutes (clock-aligned)\n", cfg.Report.IntervalMinutes)
	}

	// 7. HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Gateway.Host, cfg.Gateway.Port)
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: srv.Routes(),
	}
	go func() {
		fmt.Printf("🌐 Cockpit API listening on http://%s\n", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// 8. Wait for shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	<-sigCh

	fmt.Println("\nShutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("⚠️ HTTP shutdown: %v\n", err)
	}
	if feedMirror != nil {
		if err := feedMirror.Close(); err != nil {
			fmt.Printf("⚠️ Mirror close: %v\n", err)
		}
	}
	fmt.Println("Goodbye 👋")
}
