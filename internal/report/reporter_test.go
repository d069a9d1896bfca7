package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ClawDeck/ClawDeck/internal/store"
)

func newReportStore(t *testing.T) *store.Store {
	t.Helper()
	st, _, err := store.Open(filepath.Join(t.TempDir(), "cockpit.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func TestSummaryCounts(t *testing.T) {
	stats := store.Stats{
		TotalAgents:    5,
		ActiveAgents:   3,
		TotalTasks:     10,
		PendingTasks:   4,
		CompletedTasks: 6,
	}
	body := Summary(stats, []string{"revisar logs", "desplegar"})

	for _, want := range []string{
		"Agentes activos: 3/5",
		"Tareas pendientes: 4",
		"Tareas completadas: 6",
		"revisar logs",
		"desplegar",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("summary missing %q:\n%s", want, body)
		}
	}
}

func TestGenerateAppendsReportFeedEntry(t *testing.T) {
	st := newReportStore(t)
	r := New(st, 40*time.Minute)

	if err := r.Generate(); err != nil {
		t.Fatalf("generate: %v", err)
	}

	feed := st.FeedLast(1)
	if len(feed) != 1 {
		t.Fatal("no feed entry appended")
	}
	if feed[0].Type != store.FeedTypeReport {
		t.Errorf("type = %q, want %q", feed[0].Type, store.FeedTypeReport)
	}
	if !strings.Contains(feed[0].Content, "Agentes activos:") {
		t.Errorf("report body missing agent line:\n%s", feed[0].Content)
	}
}

type captureSink struct {
	titles []string
	err    error
}

func (c *captureSink) PublishReport(title, body string) error {
	c.titles = append(c.titles, title)
	return c.err
}

func TestGenerateFansOutToSinks(t *testing.T) {
	st := newReportStore(t)
	sink := &captureSink{}
	r := New(st, 40*time.Minute, sink)

	if err := r.Generate(); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(sink.titles) != 1 {
		t.Fatalf("sink received %d reports, want 1", len(sink.titles))
	}
}

func TestDueClockAlignment(t *testing.T) {
	r := New(nil, 40*time.Minute)

	cases := []struct {
		hour, min int
		want      bool
	}{
		{0, 0, true},
		{0, 40, true},
		{1, 20, true},
		{2, 0, true},
		{0, 39, false},
		{0, 41, false},
		{13, 37, false},
	}
	for _, c := range cases {
		at := time.Date(2026, 8, 25, c.hour, c.min, 0, 0, time.UTC)
		if got := r.due(at); got != c.want {
			t.Errorf("due(%02d:%02d) = %v, want %v", c.hour, c.min, got, c.want)
		}
	}
}
