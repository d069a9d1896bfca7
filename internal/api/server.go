// Package api exposes the cockpit REST surface over the store.
//
// Wire contract (kept from the dashboard this replaces): mutations always
// answer {"success": true}; a PUT or action on a missing id is a silent no-op
// that still reports success. Those cases are logged so operators can tell
// them apart even though the HTTP contract cannot.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ClawDeck/ClawDeck/internal/bus"
	"github.com/ClawDeck/ClawDeck/internal/store"
)

// feedListCap is the read-time cap on GET /api/feed. The stored feed itself
// is append-only and never trimmed.
const feedListCap = 100

// FeedSink receives a copy of every feed entry appended through the API.
// Sinks are best-effort: a sink error never fails the request.
type FeedSink interface {
	PublishFeed(item store.FeedItem) error
}

// Server serves the cockpit REST API.
type Server struct {
	store   *store.Store
	bus     *bus.ChatBus
	sinks   []FeedSink
	version string
}

// NewServer creates an API server over the given store. The chat bus and
// sinks are optional.
func NewServer(st *store.Store, chatBus *bus.ChatBus, version string, sinks ...FeedSink) *Server {
	return &Server{store: st, bus: chatBus, sinks: sinks, version: version}
}

// Routes builds the HTTP handler for all cockpit endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/agents", s.handleAgents)
	mux.HandleFunc("/api/agents/", s.handleAgentByID)
	mux.HandleFunc("/api/tasks", s.handleTasks)
	mux.HandleFunc("/api/tasks/", s.handleTaskByID)
	mux.HandleFunc("/api/feed", s.handleFeed)
	mux.HandleFunc("/api/screenshots", s.handleScreenshots)
	mux.HandleFunc("/api/accounts", s.handleAccounts)
	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc("/api/skills", s.handleSkills)
	mux.HandleFunc("/api/mcps", s.handleMcps)
	mux.HandleFunc("/api/mcps/", s.handleMcpByID)
	mux.HandleFunc("/api/memory/", s.handleMemory)
	mux.HandleFunc("/api/news", s.handleNews)
	mux.HandleFunc("/api/quotas", s.handleQuotas)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/chat", s.handleChat)

	return corsMiddleware(mux)
}

// corsMiddleware applies the permissive CORS headers the dashboard expects
// and short-circuits preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeSuccess is the uniform mutation response.
func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, map[string]any{"success": true})
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

// mergePatch shallow-merges a JSON object onto dst: top-level fields present
// in patch replace the current value, absent fields are untouched.
func mergePatch(dst any, patch map[string]json.RawMessage) error {
	base, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return err
	}
	for k, v := range patch {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return json.Unmarshal(out, dst)
}

func decodePatch(r *http.Request) (map[string]json.RawMessage, error) {
	patch := map[string]json.RawMessage{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		return nil, fmt.Errorf("invalid body: %w", err)
	}
	return patch, nil
}

// appendFeed stores the entry and fans it out to the configured sinks.
func (s *Server) appendFeed(item store.FeedItem) (store.FeedItem, error) {
	stored, err := s.store.AppendFeed(item)
	if err != nil {
		return stored, err
	}
	for _, sink := range s.sinks {
		if serr := sink.PublishFeed(stored); serr != nil {
			slog.Warn("API: feed sink publish failed", "error", serr)
		}
	}
	return stored, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, map[string]any{
		"status":    "ok",
		"service":   "clawdeck",
		"version":   s.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, s.store.Stats())
}
