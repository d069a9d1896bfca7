package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ClawDeck/ClawDeck/internal/bus"
	"github.com/ClawDeck/ClawDeck/internal/store"
)

// chatRequest is the POST /api/chat body. Exactly one of an agent or a model
// target is addressed per message; the type field disambiguates.
type chatRequest struct {
	Message string `json:"message"`
	Target  string `json:"target"`
	Kind    string `json:"type"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if req.Kind != bus.TargetAgent && req.Kind != bus.TargetModel {
		http.Error(w, "type must be agent or model", http.StatusBadRequest)
		return
	}
	if req.Target == "" {
		http.Error(w, "target is required", http.StatusBadRequest)
		return
	}

	msgID := uuid.New().String()

	// Record the user turn in the feed before routing, so the conversation
	// is visible even if no consumer ever answers.
	if _, err := s.appendFeed(store.FeedItem{
		Type:    "chat",
		AgentID: req.Target,
		Title:   fmt.Sprintf("Mensaje a %s", req.Target),
		Content: req.Message,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if s.bus != nil {
		s.bus.Publish(&bus.ChatMessage{
			ID:      msgID,
			TraceID: uuid.New().String(),
			Target:  req.Target,
			Kind:    req.Kind,
			Content: req.Message,
		})
	}

	writeJSON(w, map[string]any{"success": true, "messageId": msgID})
}

// RunChatRouter consumes routed chat messages and appends the reply to the
// feed. No model backend is wired in yet, so every message gets the canned
// acknowledgement; the bus boundary is where a real runtime would plug in.
func (s *Server) RunChatRouter(ctx context.Context) error {
	slog.Info("Chat router started")
	for {
		msg, err := s.bus.Consume(ctx)
		if err != nil {
			return err
		}

		reply := cannedReply(msg)
		if _, err := s.appendFeed(store.FeedItem{
			Type:    "chat",
			AgentID: msg.Target,
			Title:   fmt.Sprintf("Respuesta de %s", msg.Target),
			Content: reply,
		}); err != nil {
			slog.Warn("Chat router: failed to record reply", "error", err, "message_id", msg.ID)
			continue
		}
		s.bus.Reply(&bus.ChatReply{MessageID: msg.ID, Target: msg.Target, Content: reply})
	}
}

func cannedReply(msg *bus.ChatMessage) string {
	switch msg.Kind {
	case bus.TargetModel:
		return fmt.Sprintf("Modelo %s recibió tu mensaje. Procesando...", msg.Target)
	default:
		return fmt.Sprintf("Agente %s recibió tu mensaje y lo está procesando.", msg.Target)
	}
}
