// Package cockpit is the dashboard-side client of the REST API. It mirrors
// agents, tasks, feed and stats locally, applies mutations optimistically,
// and keeps working from local state when the backend is unreachable.
package cockpit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ClawDeck/ClawDeck/internal/store"
)

// ErrTitleRequired is returned by CreateTask before any network call when
// the title is empty.
var ErrTitleRequired = errors.New("task title is required")

// Toast is the non-blocking user notification callback. A nil Toast is
// silently ignored.
type Toast func(message string)

// Model is a point-in-time copy of the client's mirrored state.
type Model struct {
	Agents []store.Agent
	Tasks  []store.Task
	Feed   []store.FeedItem
	Mcps   []store.Mcp
	Stats  store.Stats
	State  SyncState
	Typing bool
}

// Client is the dashboard client.
type Client struct {
	apiBase      string
	http         *http.Client
	local        *LocalStore
	toast        Toast
	pollInterval time.Duration

	mu        sync.Mutex
	agents    []store.Agent
	tasks     []store.Task
	feed      []store.FeedItem
	mcps      []store.Mcp
	stats     store.Stats
	variables map[string]any
	state     SyncState
	typing    bool
}

// NewClient builds a client for the cockpit API at apiBase. local may be nil
// (no persistence for offline writes), toast may be nil.
func NewClient(apiBase string, pollInterval time.Duration, local *LocalStore, toast Toast) *Client {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Client{
		apiBase:      apiBase,
		http:         &http.Client{Timeout: 10 * time.Second},
		local:        local,
		toast:        toast,
		pollInterval: pollInterval,
		variables:    map[string]any{},
		state:        LocalOnly,
	}
}

// Snapshot returns a copy of the mirrored state.
func (c *Client) Snapshot() Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Model{
		Agents: append([]store.Agent{}, c.agents...),
		Tasks:  append([]store.Task{}, c.tasks...),
		Feed:   append([]store.FeedItem{}, c.feed...),
		Mcps:   append([]store.Mcp{}, c.mcps...),
		Stats:  c.stats,
		State:  c.state,
		Typing: c.typing,
	}
}

// State returns the current sync state.
func (c *Client) State() SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) notify(msg string) {
	if c.toast != nil {
		c.toast(msg)
	}
}

// --- Initial load ----------------------------------------------------------

// Load fetches agents, tasks, feed, mcps and stats in parallel. Any failure
// falls back to the seeded roster for that resource; load never returns a
// hard error, it just lands in the local-only state.
func (c *Client) Load(ctx context.Context) {
	var (
		wg      sync.WaitGroup
		agents  []store.Agent
		tasks   []store.Task
		feed    []store.FeedItem
		mcps    []store.Mcp
		stats   store.Stats
		failures = make([]error, 5)
	)

	wg.Add(5)
	go func() { defer wg.Done(); failures[0] = c.getJSON(ctx, "/api/agents", &agents) }()
	go func() { defer wg.Done(); failures[1] = c.getJSON(ctx, "/api/tasks", &tasks) }()
	go func() { defer wg.Done(); failures[2] = c.getJSON(ctx, "/api/feed", &feed) }()
	go func() { defer wg.Done(); failures[3] = c.getJSON(ctx, "/api/mcps", &mcps) }()
	go func() { defer wg.Done(); failures[4] = c.getJSON(ctx, "/api/stats", &stats) }()
	wg.Wait()

	failed := false
	for _, err := range failures {
		if err != nil {
			failed = true
			slog.Warn("Cockpit: initial load fetch failed", "error", err)
		}
	}

	c.mu.Lock()
	if failures[0] == nil {
		c.agents = agents
	} else {
		seed := store.DefaultDocument()
		c.agents = seed.Agents
	}
	if failures[1] == nil {
		c.tasks = tasks
	}
	if failures[2] == nil {
		c.feed = feed
	}
	if failures[3] == nil {
		c.mcps = mcps
	} else if len(c.mcps) == 0 {
		c.mcps = store.DefaultDocument().Mcps
	}
	if failures[4] == nil {
		c.stats = stats
	}
	if failed {
		c.state = LocalOnly
		slog.Warn("Cockpit: running from local state")
	} else {
		c.state = Synced
	}
	c.mu.Unlock()

	// Writes queued during a previous offline session are still on disk;
	// a reachable backend is the moment to replay them.
	if !failed {
		c.drainPending(ctx)
	}
}

// --- Polling ---------------------------------------------------------------

// Poll refreshes feed and stats on the configured interval until the context
// is cancelled. Only feed and stats are polled; the rest refreshes on user
// action. A successful poll also drains any queued offline writes.
func (c *Client) Poll(ctx context.Context) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.refresh(ctx)
		}
	}
}

func (c *Client) refresh(ctx context.Context) {
	var feed []store.FeedItem
	var stats store.Stats

	feedErr := c.getJSON(ctx, "/api/feed", &feed)
	statsErr := c.getJSON(ctx, "/api/stats", &stats)

	c.mu.Lock()
	if feedErr == nil {
		c.feed = feed
	}
	if statsErr == nil {
		c.stats = stats
	}
	if feedErr != nil || statsErr != nil {
		c.state = LocalOnly
	}
	c.mu.Unlock()

	if feedErr != nil || statsErr != nil {
		slog.Warn("Cockpit: poll failed", "feed_err", feedErr, "stats_err", statsErr)
		return
	}
	c.drainPending(ctx)
}

// drainPending replays queued offline writes and, if all of them land,
// moves back to the synced state. Called whenever the backend answers, so
// writes persisted by a previous offline session get replayed too.
func (c *Client) drainPending(ctx context.Context) {
	pending, err := c.local.Pending()
	if err != nil {
		slog.Warn("Cockpit: pending read failed", "error", err)
		return
	}
	if len(pending) == 0 {
		c.markSynced()
		return
	}

	err = c.local.Flush(func(rec PendingWriteRecord) error {
		return c.send(ctx, rec.Method, rec.Path, []byte(rec.Body), nil)
	})
	c.mu.Lock()
	if err != nil {
		c.state = PendingWrite
	} else {
		c.state = Synced
	}
	c.mu.Unlock()
	if err != nil {
		slog.Warn("Cockpit: pending drain incomplete", "error", err)
		return
	}
	c.notify("synced")
}

// --- Mutations -------------------------------------------------------------

// CreateTask validates the title, applies the task optimistically and writes
// it through. The optimistic copy uses a provisional id that the next poll
// replaces with the server's.
func (c *Client) CreateTask(ctx context.Context, title, description, agentID, priority string) (store.Task, error) {
	if title == "" {
		return store.Task{}, ErrTitleRequired
	}

	task := store.Task{
		ID:          time.Now().UnixMilli(),
		Title:       title,
		Description: description,
		AgentID:     agentID,
		Priority:    priority,
		Status:      store.TaskPending,
		Progress:    0,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	c.mu.Lock()
	c.tasks = append(c.tasks, task)
	c.mu.Unlock()

	body, _ := json.Marshal(map[string]string{
		"title":       title,
		"description": description,
		"agentId":     agentID,
		"priority":    priority,
	})
	var out struct {
		Success bool       `json:"success"`
		Task    store.Task `json:"task"`
	}
	if err := c.send(ctx, http.MethodPost, "/api/tasks", body, &out); err != nil {
		c.writeFailed(http.MethodPost, "/api/tasks", body, err)
		return task, nil
	}

	// Replace the provisional task with the server's copy.
	c.mu.Lock()
	for i := range c.tasks {
		if c.tasks[i].ID == task.ID {
			c.tasks[i] = out.Task
			break
		}
	}
	c.state = Synced
	c.mu.Unlock()
	c.notify("synced")
	return out.Task, nil
}

// SetAgentStatus pauses or resumes an agent optimistically.
func (c *Client) SetAgentStatus(ctx context.Context, agentID, status string) {
	c.mu.Lock()
	for i := range c.agents {
		if c.agents[i].ID == agentID {
			c.agents[i].Status = status
			break
		}
	}
	c.mu.Unlock()

	action := "resume"
	if status == store.AgentPaused {
		action = "pause"
	}
	path := fmt.Sprintf("/api/agents/%s/%s", agentID, action)
	if err := c.send(ctx, http.MethodPost, path, nil, nil); err != nil {
		c.writeFailed(http.MethodPost, path, nil, err)
		return
	}
	c.markSynced()
}

// UpdateTask shallow-patches one task optimistically.
func (c *Client) UpdateTask(ctx context.Context, taskID int64, status string, progress int) {
	c.mu.Lock()
	for i := range c.tasks {
		if c.tasks[i].ID == taskID {
			c.tasks[i].Status = status
			c.tasks[i].Progress = progress
			break
		}
	}
	c.mu.Unlock()

	body, _ := json.Marshal(map[string]any{"status": status, "progress": progress})
	path := fmt.Sprintf("/api/tasks/%d", taskID)
	if err := c.send(ctx, http.MethodPut, path, body, nil); err != nil {
		c.writeFailed(http.MethodPut, path, body, err)
		return
	}
	c.markSynced()
}

// ToggleMcp flips one integration's enabled state optimistically.
func (c *Client) ToggleMcp(ctx context.Context, mcpID string, enabled bool) {
	c.mu.Lock()
	for i := range c.mcps {
		if c.mcps[i].ID == mcpID {
			c.mcps[i].Enabled = enabled
			break
		}
	}
	c.mu.Unlock()

	body, _ := json.Marshal(map[string]bool{"enabled": enabled})
	path := "/api/mcps/" + mcpID
	if err := c.send(ctx, http.MethodPut, path, body, nil); err != nil {
		c.writeFailed(http.MethodPut, path, body, err)
		return
	}
	c.markSynced()
}

// SaveVariable sets one user variable locally and writes the whole variable
// map through to the shared memory collection under the "variables" key.
func (c *Client) SaveVariable(ctx context.Context, name string, value any) {
	c.mu.Lock()
	c.variables[name] = value
	snapshot := make(map[string]any, len(c.variables))
	for k, v := range c.variables {
		snapshot[k] = v
	}
	c.mu.Unlock()

	c.SaveMemory(ctx, "variables", snapshot)
}

// Variable reads one user variable from the local mirror.
func (c *Client) Variable(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.variables[name]
	return v, ok
}

// SaveMemory stores a per-agent memory value, best effort.
func (c *Client) SaveMemory(ctx context.Context, agentID string, value any) {
	body, _ := json.Marshal(value)
	path := "/api/memory/" + agentID
	if err := c.send(ctx, http.MethodPut, path, body, nil); err != nil {
		c.writeFailed(http.MethodPut, path, body, err)
		return
	}
	c.markSynced()
}

// SendChat posts one message to the chat endpoint. kind selects an agent or a
// model target; they are mutually exclusive by construction. Any failure
// synthesizes the canned assistant reply locally so the conversation never
// dead-ends.
func (c *Client) SendChat(ctx context.Context, message, target, kind string) (string, error) {
	if message == "" {
		return "", errors.New("message is required")
	}

	c.mu.Lock()
	c.typing = true
	c.feed = append([]store.FeedItem{{
		Type:      "chat",
		AgentID:   target,
		Content:   message,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}}, c.feed...)
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.typing = false
		c.mu.Unlock()
	}()

	body, _ := json.Marshal(map[string]string{"message": message, "target": target, "type": kind})
	var out struct {
		Success   bool   `json:"success"`
		MessageID string `json:"messageId"`
	}
	if err := c.send(ctx, http.MethodPost, "/api/chat", body, &out); err != nil {
		slog.Warn("Cockpit: chat send failed, using canned reply", "error", err)
		reply := fmt.Sprintf("(%s no está disponible ahora mismo; tu mensaje quedó guardado)", target)
		c.mu.Lock()
		c.feed = append([]store.FeedItem{{
			Type:      "chat",
			AgentID:   target,
			Content:   reply,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}}, c.feed...)
		c.mu.Unlock()
		return reply, nil
	}
	return out.MessageID, nil
}

// --- Plumbing --------------------------------------------------------------

// writeFailed records an optimistic write that did not reach the backend:
// queue it locally when possible and flag the model state accordingly.
func (c *Client) writeFailed(method, path string, body []byte, err error) {
	slog.Warn("Cockpit: write-through failed", "method", method, "path", path, "error", err)

	state := PendingWrite
	if qerr := c.local.Enqueue(method, path, string(body)); qerr != nil {
		slog.Warn("Cockpit: local queue failed", "error", qerr)
		state = LocalOnly
	}
	if c.local == nil {
		state = LocalOnly
	}

	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	c.notify("local only")
}

func (c *Client) markSynced() {
	c.mu.Lock()
	changed := c.state != Synced
	c.state = Synced
	c.mu.Unlock()
	if changed {
		c.notify("synced")
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cockpit %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cockpit %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
