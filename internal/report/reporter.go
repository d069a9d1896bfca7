// Package report produces the periodic Socio Report: a Spanish-language
// status summary appended to the activity feed on a clock-aligned cadence.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ClawDeck/ClawDeck/internal/store"
)

// Sink receives each generated report outside the feed (Slack, mirrors).
// Sink failures are logged, never fatal.
type Sink interface {
	PublishReport(title, body string) error
}

// Reporter generates the recurring Socio Report.
type Reporter struct {
	store    *store.Store
	interval time.Duration
	sinks    []Sink

	// now is swapped in tests.
	now func() time.Time
}

// New creates a reporter that fires every interval, aligned to the wall
// clock. Interval must be a whole number of minutes that divides the day.
func New(st *store.Store, interval time.Duration, sinks ...Sink) *Reporter {
	return &Reporter{
		store:    st,
		interval: interval,
		sinks:    sinks,
		now:      time.Now,
	}
}

// Run ticks once a minute and generates a report whenever the minute of day
// lands on an interval boundary. Alignment is to the clock, not to process
// start, so restarts do not drift the cadence.
func (r *Reporter) Run(ctx context.Context) error {
	slog.Info("Reporter started", "interval", r.interval)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !r.due(r.now()) {
				continue
			}
			if err := r.Generate(); err != nil {
				slog.Error("Reporter: generation failed", "error", err)
			}
		}
	}
}

// due reports whether t lands on an interval boundary of the day.
func (r *Reporter) due(t time.Time) bool {
	intervalMin := int(r.interval.Minutes())
	if intervalMin <= 0 {
		return false
	}
	minuteOfDay := t.Hour()*60 + t.Minute()
	return minuteOfDay%intervalMin == 0
}

// Generate snapshots the store, builds the summary and appends it to the
// feed, then fans out to the sinks.
func (r *Reporter) Generate() error {
	stats := r.store.Stats()
	var pendingTitles []string
	r.store.View(func(doc *store.Document) {
		for _, t := range doc.Tasks {
			if t.Status == store.TaskPending {
				pendingTitles = append(pendingTitles, t.Title)
			}
		}
	})

	title := fmt.Sprintf("📊 Informe Socio — %s", r.now().Format("15:04"))
	body := Summary(stats, pendingTitles)

	if _, err := r.store.AppendFeed(store.FeedItem{
		Type:    store.FeedTypeReport,
		Title:   title,
		Content: body,
	}); err != nil {
		return fmt.Errorf("append report: %w", err)
	}

	for _, sink := range r.sinks {
		if err := sink.PublishReport(title, body); err != nil {
			slog.Warn("Reporter: sink publish failed", "error", err)
		}
	}

	slog.Info("Reporter: informe generado",
		"active_agents", stats.ActiveAgents,
		"pending_tasks", stats.PendingTasks,
		"completed_tasks", stats.CompletedTasks)
	return nil
}

// Summary renders the Spanish multi-line report body from a stats snapshot.
func Summary(stats store.Stats, pendingTitles []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Agentes activos: %d/%d\n", stats.ActiveAgents, stats.TotalAgents)
	fmt.Fprintf(&b, "Tareas pendientes: %d\n", stats.PendingTasks)
	fmt.Fprintf(&b, "Tareas completadas: %d\n", stats.CompletedTasks)
	fmt.Fprintf(&b, "Capturas de pantalla: %d\n", stats.Screenshots)
	fmt.Fprintf(&b, "Entradas en el feed: %d", stats.FeedLength)

	if len(pendingTitles) > 0 {
		b.WriteString("\n\nPendientes:")
		for _, title := range pendingTitles {
			fmt.Fprintf(&b, "\n  • %s", title)
		}
	}
	return b.String()
}
