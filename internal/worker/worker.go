package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/illegalcall/codeshell/internal/config"
	"github.com/illegalcall/codeshell/internal/events"
	"github.com/illegalcall/codeshell/internal/metrics"
	"github.com/illegalcall/codeshell/internal/models"
)

// PreviewCache is the part of the preview store the worker keeps in sync.
type PreviewCache interface {
	Invalidate(ctx context.Context, name string) error
	RecordDeployment(ctx context.Context, d models.Deployment) error
}

type Worker struct {
	cfg      *config.Config
	cache    PreviewCache
	consumer sarama.ConsumerGroup
}

func NewWorker(cfg *config.Config, cache PreviewCache, consumer sarama.ConsumerGroup) *Worker {
	return &Worker{
		cfg:      cfg,
		cache:    cache,
		consumer: consumer,
	}
}

// Start consumes preview events until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	topics := []string{w.cfg.Kafka.Topic}
	slog.Info("Starting worker", "topics", topics, "group", w.cfg.Kafka.Group)

	errs := w.consumer.Errors()
	go func() {
		for err := range errs {
			slog.Error("Kafka consumer error received", "error", err)
		}
	}()

	// Consume returns on every rebalance and has to be called again.
	for {
		if err := w.consumer.Consume(ctx, topics, w); err != nil {
			slog.Error("Error from consumer.Consume", "error", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("Worker shutting down", "reason", ctx.Err())
			return nil
		case <-time.After(w.cfg.Kafka.RetryBackoff):
		}
	}
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (w *Worker) Setup(session sarama.ConsumerGroupSession) error {
	slog.Info("Consumer group session started", "member", session.MemberID(), "claims", session.Claims())
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (w *Worker) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (w *Worker) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := w.handle(session.Context(), msg); err != nil {
				slog.Error("Failed to process preview event", "offset", msg.Offset, "partition", msg.Partition, "error", err)
			}
			// Failed events are dropped after retries; the cache expires on its own.
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	ev, err := events.Decode(msg.Value)
	if err != nil {
		metrics.EventsConsumed.WithLabelValues("unknown", "invalid").Inc()
		return err
	}

	err = w.withRetry(ctx, func() error { return w.apply(ctx, ev) })
	result := "ok"
	if err != nil {
		result = "failed"
	}
	metrics.EventsConsumed.WithLabelValues(string(ev.Action), result).Inc()
	if err != nil {
		return fmt.Errorf("%s event for %q: %w", ev.Action, ev.Name, err)
	}
	slog.Info("Preview event processed", "name", ev.Name, "action", ev.Action)
	return nil
}

func (w *Worker) apply(ctx context.Context, ev events.PreviewEvent) error {
	switch ev.Action {
	case events.ActionSaved:
		return w.cache.Invalidate(ctx, ev.Name)
	case events.ActionDeployed:
		if err := w.cache.RecordDeployment(ctx, models.Deployment{AppName: ev.Name, URL: ev.URL, DeployedAt: ev.At, Snapshot: ev.Snapshot}); err != nil {
			return err
		}
		return w.cache.Invalidate(ctx, ev.Name)
	}
	return fmt.Errorf("unhandled action %q", ev.Action)
}

func (w *Worker) withRetry(ctx context.Context, fn func() error) error {
	attempts := w.cfg.Kafka.RetryMax
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		slog.Warn("Preview event attempt failed", "attempt", attempt, "error", err)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.cfg.Kafka.RetryBackoff):
		}
	}
	return err
}
