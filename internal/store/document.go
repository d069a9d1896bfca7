// Package store owns the single JSON cockpit document: every collection the
// dashboard serves lives in one file that is merged over compiled-in defaults
// at load time and rewritten wholesale on every mutation.
package store

import "time"

// Agent status values.
const (
	AgentActive = "active"
	AgentPaused = "paused"
)

// Task status values.
const (
	TaskPending    = "pending"
	TaskInProgress = "in-progress"
	TaskCompleted  = "completed"
)

// FeedTypeReport marks feed entries appended by the report generator so the
// dashboard can highlight them.
const FeedTypeReport = "report"

// Agent is a named AI worker tracked by the cockpit.
type Agent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Emoji  string `json:"emoji,omitempty"`
	Model  string `json:"model,omitempty"`
	Role   string `json:"role,omitempty"`
	Status string `json:"status"`
}

// Task is a unit of work assigned to an agent.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AgentID     string `json:"agentId,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	CreatedAt   string `json:"createdAt"`
}

// FeedItem is one entry of the append-only activity feed.
type FeedItem struct {
	ID        int64  `json:"id"`
	Type      string `json:"type,omitempty"`
	AgentID   string `json:"agentId,omitempty"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// Screenshot references a capture collected by the external screenshot
// collector. Read-only from the cockpit's perspective.
type Screenshot struct {
	Path      string `json:"path"`
	Filename  string `json:"filename"`
	CreatedAt string `json:"createdAt"`
}

// Account is a provider account record.
type Account struct {
	Name   string   `json:"name"`
	Type   string   `json:"type,omitempty"`
	Status string   `json:"status,omitempty"`
	Models []string `json:"models,omitempty"`
}

// Session is a static catalog entry describing a provider session and the
// ordered models it exposes.
type Session struct {
	ID       string   `json:"id"`
	Provider string   `json:"provider"`
	Tool     string   `json:"tool"`
	Status   string   `json:"status"`
	Models   []string `json:"models"`
}

// Skill is a capability advertised in the cockpit catalog.
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Mcp is a tool integration whose only mutable field is the enabled toggle.
type Mcp struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// NewsItem is a static news entry surfaced on the dashboard.
type NewsItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Date  string `json:"date,omitempty"`
}

// Quota is a provider-level token-usage accounting record. Static/simulated.
type Quota struct {
	Provider string `json:"provider"`
	Used     int64  `json:"used"`
	Limit    int64  `json:"limit"`
	ResetAt  string `json:"resetAt,omitempty"`
}

// Document is the whole persisted cockpit state. One top-level key per
// collection; the file on disk mirrors this struct pretty-printed.
type Document struct {
	Agents      []Agent        `json:"agents"`
	Tasks       []Task         `json:"tasks"`
	Feed        []FeedItem     `json:"feed"`
	Screenshots []Screenshot   `json:"screenshots"`
	Accounts    []Account      `json:"accounts"`
	Sessions    []Session      `json:"sessions"`
	Skills      []Skill        `json:"skills"`
	Mcps        []Mcp          `json:"mcps"`
	News        []NewsItem     `json:"news"`
	Memory      map[string]any `json:"memory"`
	Quotas      []Quota        `json:"quotas"`
}

// DefaultDocument returns the compiled-in seed state. The on-disk file is
// shallow-merged over this: a top-level key present in the file replaces the
// default collection wholesale.
func DefaultDocument() *Document {
	return &Document{
		Agents: []Agent{
			{ID: "atlas", Name: "Atlas", Emoji: "🧭", Model: "claude-sonnet", Role: "coordinator", Status: AgentActive},
			{ID: "scout", Name: "Scout", Emoji: "🔎", Model: "claude-haiku", Role: "research", Status: AgentActive},
			{ID: "forge", Name: "Forge", Emoji: "🔨", Model: "claude-sonnet", Role: "builder", Status: AgentActive},
			{ID: "sentry", Name: "Sentry", Emoji: "🛡️", Model: "claude-haiku", Role: "monitor", Status: AgentPaused},
		},
		Tasks: []Task{},
		Feed: []FeedItem{
			{
				ID:        1,
				Type:      "system",
				Content:   "ClawDeck inicializado",
				CreatedAt: time.Now().UTC().Format(time.RFC3339),
			},
		},
		Screenshots: []Screenshot{},
		Accounts:    []Account{},
		Sessions: []Session{
			{ID: "claude", Provider: "anthropic", Tool: "claude", Status: "active", Models: []string{"claude-opus", "claude-sonnet", "claude-haiku"}},
			{ID: "openai", Provider: "openai", Tool: "codex", Status: "active", Models: []string{"gpt-5", "gpt-5-mini"}},
			{ID: "gemini", Provider: "google", Tool: "gemini", Status: "active", Models: []string{"gemini-pro", "gemini-flash"}},
		},
		Skills: []Skill{
			{ID: "web-research", Name: "Web Research", Description: "Browse and summarize web sources"},
			{ID: "desktop-automation", Name: "Desktop Automation", Description: "Drive the remote automation worker"},
		},
		Mcps: []Mcp{
			{ID: "filesystem", Name: "Filesystem", Enabled: true},
			{ID: "browser", Name: "Browser", Enabled: false},
			{ID: "vision", Name: "Vision", Enabled: false},
		},
		News:   []NewsItem{},
		Memory: map[string]any{},
		Quotas: []Quota{
			{Provider: "anthropic", Used: 0, Limit: 1_000_000},
			{Provider: "openai", Used: 0, Limit: 500_000},
		},
	}
}
