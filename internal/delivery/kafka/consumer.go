package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/azizikri/coach-ledger/internal/config"
	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/metrics"
	"github.com/azizikri/coach-ledger/internal/usecase"
	"github.com/twmb/franz-go/pkg/kgo"
)

// SaleRecorder books a completed sale into a coach's earnings.
type SaleRecorder interface {
	RecordSale(ctx context.Context, in usecase.RecordSaleInput) (domain.SaleResult, error)
}

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

type disposition string

const (
	outcomeRecorded disposition = "recorded"
	outcomeReplayed disposition = "replayed"
	outcomeRetried  disposition = "retried"
	outcomeRejected disposition = "rejected"
	outcomeInvalid  disposition = "invalid"
	outcomeExhaust  disposition = "exhausted"

	outcomeRedeliver disposition = "redelivered"
)

type Consumer struct {
	client   *kgo.Client
	producer producer
	cfg      *config.Config
	sales    SaleRecorder
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time
	ready    chan struct{}
}

func NewConsumer(cfg *config.Config, client *kgo.Client, sales SaleRecorder, m *metrics.Metrics, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Consumer{
		client:  client,
		cfg:     cfg,
		sales:   sales,
		metrics: m,
		log:     logger.With("component", "sale-consumer"),
		now:     time.Now,
		ready:   make(chan struct{}),
	}
	if client != nil {
		c.producer = client
	}
	return c
}

// Start consumes sale events until ctx is cancelled or the client closes.
func (c *Consumer) Start(ctx context.Context) {
	close(c.ready)
	c.consume(ctx, func(ctx context.Context, record *kgo.Record) error {
		_, err := c.handle(ctx, record)
		return err
	})
}

// StartRetry drains the retry topic, holding each record until its
// x-next-at time before putting it back on the sale topic.
func (c *Consumer) StartRetry(ctx context.Context) {
	c.consume(ctx, c.requeue)
}

func (c *Consumer) Ready() <-chan struct{} {
	return c.ready
}

func (c *Consumer) consume(ctx context.Context, process func(context.Context, *kgo.Record) error) {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.log.Warn("poll error", "topic", topic, "partition", partition, "error", err)
		})

		done, rewind := c.processBatch(ctx, fetches.Records(), process)
		if ctx.Err() != nil {
			return
		}
		if err := c.client.CommitRecords(ctx, done...); err != nil {
			c.log.Error("failed to commit records", "error", err)
		}
		if len(rewind) > 0 {
			c.client.SetOffsets(rewind)
			if err := c.sleep(ctx, c.retryDelay()); err != nil {
				return
			}
		}
	}
}

// processBatch runs process over records in order. A failed record stops its
// partition: it and every later record of that partition stay uncommitted and
// rewind holds the offset to fetch again from.
func (c *Consumer) processBatch(ctx context.Context, records []*kgo.Record, process func(context.Context, *kgo.Record) error) (done []*kgo.Record, rewind map[string]map[int32]kgo.EpochOffset) {
	type partition struct {
		topic string
		id    int32
	}
	blocked := make(map[partition]bool)

	for _, record := range records {
		p := partition{record.Topic, record.Partition}
		if blocked[p] {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if err := process(ctx, record); err != nil {
			c.log.Error("record left for redelivery",
				"topic", record.Topic,
				"partition", record.Partition,
				"offset", record.Offset,
				"error", err,
			)
			blocked[p] = true
			if rewind == nil {
				rewind = make(map[string]map[int32]kgo.EpochOffset)
			}
			if rewind[p.topic] == nil {
				rewind[p.topic] = make(map[int32]kgo.EpochOffset)
			}
			rewind[p.topic][p.id] = kgo.EpochOffset{Epoch: record.LeaderEpoch, Offset: record.Offset}
			continue
		}
		done = append(done, record)
	}
	return done, rewind
}

func (c *Consumer) requeue(ctx context.Context, record *kgo.Record) error {
	if err := c.sleep(ctx, c.untilDue(record)); err != nil {
		return err
	}
	requeued := &kgo.Record{
		Topic:   TopicSaleCompleted,
		Key:     record.Key,
		Value:   record.Value,
		Headers: record.Headers,
	}
	if err := c.producer.ProduceSync(ctx, requeued).FirstErr(); err != nil {
		return fmt.Errorf("requeue retry record: %w", err)
	}
	return nil
}

func (c *Consumer) untilDue(record *kgo.Record) time.Duration {
	nextAt, ok := retryNextAt(record)
	if !ok {
		return 0
	}
	return nextAt.Sub(c.now())
}

func (c *Consumer) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// handle books one sale event. A non-nil error means the event could not be
// handed to the retry or dead-letter topic and must be delivered again.
func (c *Consumer) handle(ctx context.Context, record *kgo.Record) (disposition, error) {
	var event SaleEvent
	if err := json.Unmarshal(record.Value, &event); err != nil {
		return c.settle(outcomeInvalid, c.deadLetter(ctx, record, fmt.Errorf("%w: malformed sale event: %v", domain.ErrValidation, err)))
	}
	if err := event.validate(); err != nil {
		return c.settle(outcomeInvalid, c.deadLetter(ctx, record, err))
	}

	result, err := c.sales.RecordSale(ctx, event.input())
	if err == nil {
		if result.Replayed {
			return c.settle(outcomeReplayed, nil)
		}
		return c.settle(outcomeRecorded, nil)
	}

	log := c.log.With("sale_reference", event.Reference(), "coach_id", event.CoachID)
	if domain.IsBusinessError(err) {
		log.Warn("sale event rejected", "error", err)
		return c.settle(outcomeRejected, c.deadLetter(ctx, record, err))
	}

	attempt := deliveryAttempt(record)
	if attempt >= c.maxAttempts() {
		log.Error("sale event exhausted retries", "attempt", attempt, "error", err)
		return c.settle(outcomeExhaust, c.deadLetter(ctx, record, err))
	}

	log.Warn("sale event scheduled for retry", "attempt", attempt, "error", err)
	return c.settle(outcomeRetried, c.retry(ctx, record, attempt))
}

func (c *Consumer) settle(d disposition, publishErr error) (disposition, error) {
	if publishErr != nil {
		d = outcomeRedeliver
	}
	c.metrics.SaleEvent(string(d))
	return d, publishErr
}

func (c *Consumer) maxAttempts() int {
	if c.cfg == nil || c.cfg.KafkaMaxDeliveryAttempts < 1 {
		return 5
	}
	return c.cfg.KafkaMaxDeliveryAttempts
}

func (c *Consumer) retryDelay() time.Duration {
	if c.cfg == nil || c.cfg.KafkaRetryDelay <= 0 {
		return 5 * time.Second
	}
	return c.cfg.KafkaRetryDelay
}

func (c *Consumer) retry(ctx context.Context, record *kgo.Record, attempt int) error {
	nextAt := c.now().Add(c.retryDelay() * time.Duration(attempt)).UTC()
	headers := withHeader(record.Headers, RetryHeaderAttempt, strconv.Itoa(attempt+1))
	headers = withHeader(headers, RetryHeaderNextAt, nextAt.Format(time.RFC3339))

	retry := &kgo.Record{
		Topic:   TopicSaleRetry,
		Key:     record.Key,
		Value:   record.Value,
		Headers: headers,
	}
	if err := c.producer.ProduceSync(ctx, retry).FirstErr(); err != nil {
		return fmt.Errorf("schedule retry: %w", err)
	}
	return nil
}

func (c *Consumer) deadLetter(ctx context.Context, record *kgo.Record, cause error) error {
	headers := withHeader(record.Headers, ErrorHeaderKey, cause.Error())
	headers = withHeader(headers, ErrorCodeHeaderKey, domain.ErrorCode(cause))

	dlq := &kgo.Record{
		Topic:   TopicSaleDLQ,
		Key:     record.Key,
		Value:   record.Value,
		Headers: headers,
	}
	if err := c.producer.ProduceSync(ctx, dlq).FirstErr(); err != nil {
		return fmt.Errorf("dead-letter record: %w", err)
	}
	return nil
}

// deliveryAttempt is the 1-based attempt number carried in x-attempt.
func deliveryAttempt(record *kgo.Record) int {
	for _, header := range record.Headers {
		if header.Key != RetryHeaderAttempt {
			continue
		}
		n, err := strconv.Atoi(string(header.Value))
		if err != nil || n < 1 {
			return 1
		}
		return n
	}
	return 1
}

func retryNextAt(record *kgo.Record) (time.Time, bool) {
	for _, header := range record.Headers {
		if header.Key != RetryHeaderNextAt {
			continue
		}
		nextAt, err := time.Parse(time.RFC3339, string(header.Value))
		if err != nil {
			return time.Time{}, false
		}
		return nextAt, true
	}

	return time.Time{}, false
}

func withHeader(headers []kgo.RecordHeader, key, value string) []kgo.RecordHeader {
	out := make([]kgo.RecordHeader, 0, len(headers)+1)
	for _, h := range headers {
		if h.Key != key {
			out = append(out, h)
		}
	}
	return append(out, kgo.RecordHeader{Key: key, Value: []byte(value)})
}
