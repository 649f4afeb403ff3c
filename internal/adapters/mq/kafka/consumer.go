// Package kafka consumes result messages from a Kafka topic and feeds
// them into the ingest path.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/okian/coursecorrect/internal/adapters/dedupe"
	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/timeparse"
	"github.com/okian/coursecorrect/pkg/logger"
	"github.com/okian/coursecorrect/pkg/metrics"
)

// Reader exposes the minimal kafka.Reader interface needed by the consumer.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Submitter accepts decoded results for dedupe and queueing.
type Submitter interface {
	SubmitResult(ctx context.Context, r model.Result) error
}

// resultMessage is the wire shape of one result on the topic. It matches
// the items accepted by the HTTP ingest endpoint.
type resultMessage struct {
	RecordID      string  `json:"record_id"`
	Venue         string  `json:"venue"`
	Gender        string  `json:"gender"`
	FinishTime    string  `json:"finish_time"`
	FinishSeconds float64 `json:"finish_seconds"`
}

// Consumer pulls result messages from Kafka, decodes them, and submits
// them to the ingest path.
type Consumer struct {
	reader    Reader
	submitter Submitter
	logger    logger.Logger
}

// NewConsumer constructs a Consumer with the provided reader and submitter.
func NewConsumer(reader Reader, submitter Submitter, opts ...Option) *Consumer {
	c := &Consumer{
		reader:    reader,
		submitter: submitter,
		logger:    logger.Get().Named("kafka-consumer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewReader builds a kafka.Reader for the configured brokers and topic.
func NewReader(brokers []string, groupID, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:         brokers,
		GroupID:         groupID,
		Topic:           topic,
		MinBytes:        1e3,
		MaxBytes:        10e6,
		CommitInterval:  time.Second,
		RetentionTime:   24 * time.Hour,
		ReadLagInterval: -1,
	})
}

// Run starts a blocking loop that processes messages until the context
// is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			c.logger.Error(ctx, "fetch error", logger.Err(err))
			continue
		}

		r, decodeErr := decodeResult(msg)
		if decodeErr != nil {
			c.logger.Warn(ctx, "dropping malformed result message",
				logger.String("topic", msg.Topic),
				logger.Int("partition", msg.Partition),
				logger.Int64("offset", msg.Offset),
				logger.Err(decodeErr),
			)
			metrics.RecordRecordRejected()
			// Commit malformed messages to avoid poison-pill loops.
			if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
				c.logger.Error(ctx, "commit error after decode failure", logger.Err(commitErr))
			}
			continue
		}

		if submitErr := c.submitter.SubmitResult(ctx, r); submitErr != nil {
			if errors.Is(submitErr, dedupe.ErrDuplicate) {
				// Replays arrive already recorded; commit and move on.
				if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
					c.logger.Error(ctx, "commit error after duplicate", logger.Err(commitErr))
				}
				continue
			}
			// Leaving the message uncommitted lets it be redelivered.
			c.logger.Error(ctx, "submit failed for result",
				logger.String("recordID", r.ID),
				logger.Err(submitErr),
			)
			continue
		}

		if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
			c.logger.Error(ctx, "commit error", logger.Err(commitErr))
		}
	}
}

// decodeResult normalizes one message into a model.Result. The payload
// carries either finish_time or finish_seconds; seconds win when both
// are present.
func decodeResult(msg kafka.Message) (model.Result, error) {
	var rm resultMessage
	if err := json.Unmarshal(msg.Value, &rm); err != nil {
		return model.Result{}, fmt.Errorf("decode result: %w", err)
	}

	venue := strings.TrimSpace(rm.Venue)
	if venue == "" {
		return model.Result{}, fmt.Errorf("%w: venue is required", model.ErrInvalidRecord)
	}

	gender, err := model.ParseGender(rm.Gender)
	if err != nil {
		return model.Result{}, err
	}

	seconds := rm.FinishSeconds
	if seconds == 0 && rm.FinishTime != "" {
		seconds, err = timeparse.ParseToSeconds(rm.FinishTime)
		if err != nil {
			return model.Result{}, err
		}
	}
	if !timeparse.ValidSeconds(seconds) {
		return model.Result{}, fmt.Errorf("%w: finish time must be positive", model.ErrInvalidRecord)
	}

	id := strings.TrimSpace(rm.RecordID)
	if id == "" {
		id = uuid.New().String()
	}

	return model.Result{
		ID:            id,
		Venue:         venue,
		Gender:        gender,
		FinishSeconds: seconds,
	}, nil
}
