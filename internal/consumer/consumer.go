package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
)

// RecordApplier applies upstream participant events to local storage.
type RecordApplier interface {
	Apply(ctx context.Context, payload []byte) error
	ApplyTombstone(ctx context.Context, id uuid.UUID) error
}

// Consumer drains the participant-updates topic and applies each event in
// order. Offsets are committed per record, only after a successful apply, so
// a crash mid-batch redelivers the uncommitted tail.
type Consumer struct {
	client  *kgo.Client
	applier RecordApplier
	logger  *zap.Logger
}

// New constructs a Consumer on top of a configured consumer-group client.
func New(client *kgo.Client, applier RecordApplier, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{client: client, applier: applier, logger: logger}
}

// Run polls until the context is cancelled. A contract violation on a record
// stops the loop with the offset uncommitted: the event is malformed in a way
// retries cannot fix, and letting it poison silently would desynchronize the
// local store from the upstream.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("fetch error",
				zap.String("topic", topic),
				zap.Int32("partition", partition),
				zap.Error(err))
		})

		var applyErr error
		fetches.EachRecord(func(rec *kgo.Record) {
			if applyErr != nil {
				return
			}
			if err := c.handle(ctx, rec); err != nil {
				applyErr = fmt.Errorf("apply record %s[%d]@%d: %w", rec.Topic, rec.Partition, rec.Offset, err)
				return
			}
			if err := c.client.CommitRecords(ctx, rec); err != nil {
				applyErr = fmt.Errorf("commit %s[%d]@%d: %w", rec.Topic, rec.Partition, rec.Offset, err)
			}
		})
		if applyErr != nil {
			return applyErr
		}
	}
}

// Close releases the underlying client.
func (c *Consumer) Close() {
	c.client.Close()
}

func (c *Consumer) handle(ctx context.Context, rec *kgo.Record) error {
	key, err := uuid.ParseBytes(rec.Key)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "record key is not a participant id")
	}

	if rec.Value == nil {
		return c.applier.ApplyTombstone(ctx, key)
	}
	return c.applier.Apply(ctx, rec.Value)
}

// RunWithRetry keeps the consumer alive across transient failures, backing
// off between attempts. Contract violations are surfaced the same way; the
// operator is expected to act on the logged offset.
func RunWithRetry(ctx context.Context, c *Consumer, backoff time.Duration) {
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	for {
		err := c.Run(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		c.logger.Error("consumer stopped, restarting", zap.Duration("backoff", backoff), zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}
