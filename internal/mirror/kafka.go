// Package mirror republishes feed entries onto a Kafka topic so external
// consumers can follow cockpit activity without polling the REST API.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ClawDeck/ClawDeck/internal/store"
)

// FeedMirror implements api.FeedSink over a kafka-go Writer. One message per
// feed entry, keyed by the entry id so re-publishes land on the same
// partition.
type FeedMirror struct {
	writer *kafka.Writer
	topic  string
}

// New builds a mirror for the given brokers and topic. Returns nil when no
// brokers are configured; a nil mirror is safe to call.
func New(brokers []string, topic string) *FeedMirror {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &FeedMirror{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// PublishFeed writes the feed entry to the topic. Errors propagate to the
// caller, which treats sink failures as non-fatal.
func (m *FeedMirror) PublishFeed(item store.FeedItem) error {
	if m == nil {
		return nil
	}
	msg, err := feedMessage(item)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("mirror publish: %w", err)
	}
	return nil
}

// PublishReport satisfies report.Sink: reports ride the same topic as a feed
// entry of the report type.
func (m *FeedMirror) PublishReport(title, body string) error {
	if m == nil {
		return nil
	}
	return m.PublishFeed(store.FeedItem{
		Type:      store.FeedTypeReport,
		Title:     title,
		Content:   body,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// Close flushes and closes the underlying writer.
func (m *FeedMirror) Close() error {
	if m == nil {
		return nil
	}
	slog.Info("Mirror: closing writer", "topic", m.topic)
	return m.writer.Close()
}

// feedMessage renders the Kafka message for a feed entry.
func feedMessage(item store.FeedItem) (kafka.Message, error) {
	value, err := json.Marshal(item)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal feed item: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(item.ID, 10)),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "source", Value: []byte("clawdeck")},
		},
	}, nil
}
