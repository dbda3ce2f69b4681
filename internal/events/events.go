package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type Action string

const (
	ActionSaved    Action = "saved"
	ActionDeployed Action = "deployed"
)

// PreviewEvent announces a change to a stored preview. Messages are keyed by
// preview name so events for one preview stay ordered on a partition.
type PreviewEvent struct {
	Name     string    `json:"name"`
	Action   Action    `json:"action"`
	URL      string    `json:"url,omitempty"`
	Snapshot string    `json:"snapshot,omitempty"`
	UserID   string    `json:"user_id,omitempty"`
	At       time.Time `json:"at"`
}

func (e PreviewEvent) Valid() bool {
	if e.Name == "" {
		return false
	}
	switch e.Action {
	case ActionSaved:
		return true
	case ActionDeployed:
		return e.URL != ""
	}
	return false
}

// Decode parses a Kafka message value into a PreviewEvent.
func Decode(raw []byte) (PreviewEvent, error) {
	var ev PreviewEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return ev, fmt.Errorf("failed to parse preview event: %w", err)
	}
	if !ev.Valid() {
		return ev, fmt.Errorf("invalid preview event %q for %q", ev.Action, ev.Name)
	}
	return ev, nil
}

// Publisher sends preview events.
type Publisher interface {
	Publish(ev PreviewEvent) error
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(p sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: p, topic: topic}
}

func (p *Producer) Publish(ev PreviewEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if !ev.Valid() {
		return fmt.Errorf("refusing to publish invalid preview event %q for %q", ev.Action, ev.Name)
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode preview event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.Name),
		Value: sarama.ByteEncoder(raw),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish preview event: %w", err)
	}
	slog.Info("Preview event published", "name", ev.Name, "action", ev.Action, "partition", partition, "offset", offset)
	return nil
}

// Discard drops every event. It stands in when no broker is configured.
type Discard struct{}

func (Discard) Publish(PreviewEvent) error { return nil }
