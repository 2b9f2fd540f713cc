package outbox

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"storefront/internal/logger"
)

// Publisher sends a message to the broker.
type Publisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type pendingStore interface {
	FetchPending(ctx context.Context, limit int) ([]Record, error)
	MarkSent(ctx context.Context, id int64) error
}

// NewWriter returns a kafka writer keyed by the record key, so events of one
// order land on one partition.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

type Relay struct {
	store     pendingStore
	pub       Publisher
	topic     string
	batchSize int
	lg        *zap.Logger
}

// NewRelay publishes pending records to topic. Records keep their own topic
// as a message header.
func NewRelay(store pendingStore, pub Publisher, topic string, batchSize int, lg *zap.Logger) *Relay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{store: store, pub: pub, topic: topic, batchSize: batchSize, lg: logger.OrNop(lg).Named("outbox")}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
			r.lg.Warn("flush failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Flush publishes one batch and returns how many records were sent.
// A record is marked sent only after the broker accepted it.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	records, err := r.store.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, errors.Wrap(err, "fetch pending")
	}
	sent := 0
	for _, rec := range records {
		msg := kafka.Message{
			Topic: r.topic,
			Key:   []byte(rec.Key),
			Value: rec.Payload,
			Time:  rec.CreatedAt.UTC(),
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(rec.EventID)},
				{Key: "event_type", Value: []byte(rec.Topic)},
			},
		}
		if err := r.pub.WriteMessages(ctx, msg); err != nil {
			return sent, errors.Wrapf(err, "publish event %s", rec.EventID)
		}
		if err := r.store.MarkSent(ctx, rec.ID); err != nil {
			return sent, err
		}
		sent++
	}
	if sent > 0 {
		r.lg.Debug("published", zap.Int("count", sent))
	}
	return sent, nil
}
