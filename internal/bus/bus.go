// Package bus provides the async message bus for cockpit chat routing.
package bus

import (
	"context"
	"sync"
	"time"
)

// Chat target kinds. Agent and model targets are mutually exclusive.
const (
	TargetAgent = "agent"
	TargetModel = "model"
)

// ChatMessage represents a user message routed to an agent or model target.
type ChatMessage struct {
	ID        string         `json:"id"`
	TraceID   string         `json:"trace_id,omitempty"`
	Target    string         `json:"target"`
	Kind      string         `json:"kind"` // TargetAgent or TargetModel
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ChatReply represents a response produced for a routed message.
type ChatReply struct {
	MessageID string `json:"message_id"`
	Target    string `json:"target"`
	Content   string `json:"content"`
}

// ChatBus decouples the HTTP chat endpoint from whatever answers the message.
type ChatBus struct {
	inbound chan *ChatMessage
	replies chan *ChatReply
	subs    map[string][]func(*ChatReply)
	mu      sync.RWMutex
}

// NewChatBus creates a new chat bus.
func NewChatBus() *ChatBus {
	return &ChatBus{
		inbound: make(chan *ChatMessage, 100),
		replies: make(chan *ChatReply, 100),
		subs:    make(map[string][]func(*ChatReply)),
	}
}

// Publish sends a chat message toward its target.
func (b *ChatBus) Publish(msg *ChatMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	b.inbound <- msg
}

// Consume blocks until a message is available or the context is cancelled.
func (b *ChatBus) Consume(ctx context.Context) (*ChatMessage, error) {
	select {
	case msg := <-b.inbound:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Reply publishes a response for a routed message.
func (b *ChatBus) Reply(reply *ChatReply) {
	b.replies <- reply
}

// Subscribe registers a callback for replies addressed to a target.
func (b *ChatBus) Subscribe(target string, callback func(*ChatReply)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[target] = append(b.subs[target], callback)
}

// DispatchReplies runs the reply dispatcher.
// This should be run as a goroutine.
func (b *ChatBus) DispatchReplies(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case reply := <-b.replies:
			b.mu.RLock()
			callbacks := b.subs[reply.Target]
			b.mu.RUnlock()

			for _, cb := range callbacks {
				cb(reply)
			}
		}
	}
}

// PendingSize returns the number of queued inbound messages.
func (b *ChatBus) PendingSize() int {
	return len(b.inbound)
}
