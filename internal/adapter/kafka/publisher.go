package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/takeoff-audit/internal/config"
	"github.com/couchcryptid/takeoff-audit/internal/domain"
	"github.com/couchcryptid/takeoff-audit/internal/observability"
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces audit violations to a Kafka topic.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured violations topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchFlushInterval,
		WriteTimeout: cfg.KafkaTimeout,
	}
	return &Publisher{writer: w, timeout: cfg.KafkaTimeout, logger: logger, metrics: metrics}
}

// Publish writes every violation in a single WriteMessages call. All
// messages share one audited_at stamp.
func (p *Publisher) Publish(ctx context.Context, vs []domain.ViolationRecord) error {
	if len(vs) == 0 {
		return nil
	}
	auditedAt := domain.Now()
	msgs := make([]kafkago.Message, len(vs))
	for i := range vs {
		msg, err := serializeToMessage(vs[i], auditedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.metrics.PublishErrors.Inc()
		return fmt.Errorf("publish violations: %w", err)
	}
	p.metrics.ViolationsPublished.Add(float64(len(msgs)))
	p.logger.Info("violations published", "count", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// MessageKey identifies a takeoff: student and takeoff timestamp.
func MessageKey(v domain.ViolationRecord) string {
	return v.Student + "|" + v.Takeoff
}

// serializeToMessage marshals a violation into a Kafka message.
func serializeToMessage(v domain.ViolationRecord, auditedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize violation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(v)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "reason", Value: []byte(v.Reason)},
			{Key: "audited_at", Value: []byte(auditedAt.Format(time.RFC3339))},
		},
	}, nil
}
