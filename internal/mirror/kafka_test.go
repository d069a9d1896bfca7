package mirror

import (
	"encoding/json"
	"testing"

	"github.com/ClawDeck/ClawDeck/internal/store"
)

func TestNewRequiresBrokersAndTopic(t *testing.T) {
	if m := New(nil, "clawdeck.feed"); m != nil {
		t.Error("expected nil mirror without brokers")
	}
	if m := New([]string{"localhost:9092"}, ""); m != nil {
		t.Error("expected nil mirror without topic")
	}
	if m := New([]string{"localhost:9092"}, "clawdeck.feed"); m == nil {
		t.Error("expected mirror with brokers and topic")
	}
}

func TestNilMirrorIsSafe(t *testing.T) {
	var m *FeedMirror
	if err := m.PublishFeed(store.FeedItem{Content: "x"}); err != nil {
		t.Errorf("nil PublishFeed: %v", err)
	}
	if err := m.PublishReport("t", "b"); err != nil {
		t.Errorf("nil PublishReport: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestFeedMessageShape(t *testing.T) {
	item := store.FeedItem{ID: 42, Type: "chat", Content: "hola", CreatedAt: "2026-08-25T10:00:00Z"}

	msg, err := feedMessage(item)
	if err != nil {
		t.Fatalf("feedMessage: %v", err)
	}
	if string(msg.Key) != "42" {
		t.Errorf("key = %q, want 42", msg.Key)
	}

	var decoded store.FeedItem
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if decoded != item {
		t.Errorf("round-trip = %+v, want %+v", decoded, item)
	}
}
