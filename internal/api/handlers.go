package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ClawDeck/ClawDeck/internal/store"
)

// --- Agents ----------------------------------------------------------------

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var agents []store.Agent
		s.store.View(func(doc *store.Document) {
			agents = append([]store.Agent{}, doc.Agents...)
		})
		writeJSON(w, agents)
	case http.MethodPost:
		var agent store.Agent
		if err := json.NewDecoder(r.Body).Decode(&agent); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if err := s.store.Update(func(doc *store.Document) error {
			for _, existing := range doc.Agents {
				if existing.ID == agent.ID {
					// Accepted anyway: the wire contract never rejected
					// duplicates. Logged so the condition is visible.
					slog.Warn("API: duplicate agent id accepted", "id", agent.ID)
					break
				}
			}
			doc.Agents = append(doc.Agents, agent)
			return nil
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeSuccess(w)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleAgentByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/agents/")

	// Handle /api/agents/:id/pause and /api/agents/:id/resume
	if id, ok := strings.CutSuffix(path, "/pause"); ok {
		s.setAgentStatus(w, r, id, store.AgentPaused)
		return
	}
	if id, ok := strings.CutSuffix(path, "/resume"); ok {
		s.setAgentStatus(w, r, id, store.AgentActive)
		return
	}
	if strings.Contains(path, "/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		var agent *store.Agent
		s.store.View(func(doc *store.Document) {
			for i := range doc.Agents {
				if doc.Agents[i].ID == path {
					a := doc.Agents[i]
					agent = &a
					return
				}
			}
		})
		writeJSON(w, agent) // null when not found, matching the list contract
	case http.MethodPut:
		patch, err := decodePatch(r)
		if err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if err := s.store.Update(func(doc *store.Document) error {
			for i := range doc.Agents {
				if doc.Agents[i].ID == path {
					return mergePatch(&doc.Agents[i], patch)
				}
			}
			slog.Warn("API: update on unknown agent is a no-op", "id", path)
			return nil
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeSuccess(w)
	default:
		methodNotAllowed(w)
	}
}

// setAgentStatus mutates a single agent's status field. Idempotent; a
// missing agent is a silent no-op that still reports success.
func (s *Server) setAgentStatus(w http.ResponseWriter, r *http.Request, id, status string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := s.store.Update(func(doc *store.Document) error {
		for i := range doc.Agents {
			if doc.Agents[i].ID == id {
				doc.Agents[i].Status = status
				return nil
			}
		}
		slog.Warn("API: status action on unknown agent is a no-op", "id", id, "status", status)
		return nil
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeSuccess(w)
}

// --- Tasks -----------------------------------------------------------------

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var tasks []store.Task
		s.store.View(func(doc *store.Document) {
			tasks = append([]store.Task{}, doc.Tasks...)
		})
		writeJSON(w, tasks)
	case http.MethodPost:
		var task store.Task
		if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		var stored store.Task
		if err := s.store.Update(func(doc *store.Document) error {
			// Server-assigned fields win over whatever the caller sent.
			task.ID = s.store.NextTaskID()
			task.Status = store.TaskPending
			task.Progress = 0
			task.CreatedAt = time.Now().UTC().Format(time.RFC3339)
			doc.Tasks = append(doc.Tasks, task)
			stored = task
			return nil
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"success": true, "task": stored})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	patch, err := decodePatch(r)
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := s.store.Update(func(doc *store.Document) error {
		for i := range doc.Tasks {
			if doc.Tasks[i].ID == id {
				return mergePatch(&doc.Tasks[i], patch)
			}
		}
		slog.Warn("API: update on unknown task is a no-op", "id", id)
		return nil
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeSuccess(w)
}

// --- Feed ------------------------------------------------------------------

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.store.FeedLast(feedListCap))
	case http.MethodPost:
		var item store.FeedItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if _, err := s.appendFeed(item); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeSuccess(w)
	default:
		methodNotAllowed(w)
	}
}

// --- Read-only collections -------------------------------------------------

func (s *Server) handleScreenshots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	var shots []store.Screenshot
	s.store.View(func(doc *store.Document) {
		shots = append([]store.Screenshot{}, doc.Screenshots...)
	})
	writeJSON(w, shots)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	var sessions []store.Session
	s.store.View(func(doc *store.Document) {
		sessions = append([]store.Session{}, doc.Sessions...)
	})
	writeJSON(w, sessions)
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	var skills []store.Skill
	s.store.View(func(doc *store.Document) {
		skills = append([]store.Skill{}, doc.Skills...)
	})
	writeJSON(w, skills)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	var news []store.NewsItem
	s.store.View(func(doc *store.Document) {
		news = append([]store.NewsItem{}, doc.News...)
	})
	writeJSON(w, news)
}

func (s *Server) handleQuotas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	var quotas []store.Quota
	s.store.View(func(doc *store.Document) {
		quotas = append([]store.Quota{}, doc.Quotas...)
	})
	writeJSON(w, quotas)
}

// --- Accounts --------------------------------------------------------------

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var accounts []store.Account
		s.store.View(func(doc *store.Document) {
			accounts = append([]store.Account{}, doc.Accounts...)
		})
		writeJSON(w, accounts)
	case http.MethodPost:
		var account store.Account
		if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if err := s.store.Update(func(doc *store.Document) error {
			doc.Accounts = append(doc.Accounts, account)
			return nil
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeSuccess(w)
	default:
		methodNotAllowed(w)
	}
}

// --- Mcps ------------------------------------------------------------------

func (s *Server) handleMcps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	var mcps []store.Mcp
	s.store.View(func(doc *store.Document) {
		mcps = append([]store.Mcp{}, doc.Mcps...)
	})
	writeJSON(w, mcps)
}

func (s *Server) handleMcpByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/mcps/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		var mcp *store.Mcp
		s.store.View(func(doc *store.Document) {
			for i := range doc.Mcps {
				if doc.Mcps[i].ID == id {
					m := doc.Mcps[i]
					mcp = &m
					return
				}
			}
		})
		writeJSON(w, mcp)
	case http.MethodPut:
		// Only the enabled toggle is mutable on an mcp.
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if err := s.store.Update(func(doc *store.Document) error {
			for i := range doc.Mcps {
				if doc.Mcps[i].ID == id {
					doc.Mcps[i].Enabled = body.Enabled
					return nil
				}
			}
			slog.Warn("API: toggle on unknown mcp is a no-op", "id", id)
			return nil
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeSuccess(w)
	default:
		methodNotAllowed(w)
	}
}

// --- Memory ----------------------------------------------------------------

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	agentID := strings.TrimPrefix(r.URL.Path, "/api/memory/")
	if agentID == "" || strings.Contains(agentID, "/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		var value any
		s.store.View(func(doc *store.Document) {
			value = doc.Memory[agentID]
		})
		writeJSON(w, value)
	case http.MethodPut:
		var value any
		if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if err := s.store.Update(func(doc *store.Document) error {
			doc.Memory[agentID] = value
			return nil
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeSuccess(w)
	default:
		methodNotAllowed(w)
	}
}
