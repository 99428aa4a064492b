package kafka

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"runtime"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
	"github.com/nguyentranbao-ct/community-realtime/pkg/util"
)

// kafkaConsumer hands each message to a single-worker lane picked by its key,
// so events of one room are applied in the order they were produced.
type kafkaConsumer struct {
	reader         *kafka.Reader
	metrics        *prometheus.HistogramVec
	lanes          []*workerpool.WorkerPool
	consumeTimeout time.Duration
	handler        EventHandler
	log            *zap.SugaredLogger
}

func NewConsumer(conf *config.Config, handler EventHandler) (Consumer, error) {
	cfg := conf.Kafka
	if !cfg.Enabled {
		return &noopConsumer{}, nil
	}

	metrics, err := util.GetHistogramVec("kafka_messages_consumed", "status", "topic", "group")
	if err != nil {
		return nil, fmt.Errorf("get histogram vec: %w", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: []string{cfg.Topic},
		StartOffset: kafka.LastOffset,
	})
	return newConsumer(reader, metrics, handler, cfg.Workers), nil
}

func newConsumer(reader *kafka.Reader, metrics *prometheus.HistogramVec, handler EventHandler, workers int) *kafkaConsumer {
	lanes := make([]*workerpool.WorkerPool, max(workers, 1))
	for i := range lanes {
		lanes[i] = workerpool.New(1)
	}
	return &kafkaConsumer{
		reader:         reader,
		metrics:        metrics,
		lanes:          lanes,
		consumeTimeout: 30 * time.Second,
		handler:        handler,
		log:            logger.MustNamed("kafka.consumer"),
	}
}

func (c *kafkaConsumer) Start(ctx context.Context) error {
	groupID := c.reader.Config().GroupID
	c.log.Infow("Starting Kafka consumer", "topics", c.reader.Config().GroupTopics, "group", groupID, "lanes", len(c.lanes))

	for ctx.Err() == nil {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			c.log.Errorw("Error reading message", "error", err)
			continue
		}
		c.lane(msg.Key).Submit(func() {
			c.processMessage(ctx, msg, groupID)
		})
	}
	return nil
}

func (c *kafkaConsumer) Stop(ctx context.Context) error {
	c.log.Infow("Stopping Kafka consumer")
	for _, lane := range c.lanes {
		lane.StopWait()
	}
	return c.reader.Close()
}

func (c *kafkaConsumer) lane(key []byte) *workerpool.WorkerPool {
	if len(c.lanes) == 1 || len(key) == 0 {
		return c.lanes[0]
	}
	h := fnv.New32a()
	_, _ = h.Write(key)
	return c.lanes[h.Sum32()%uint32(len(c.lanes))]
}

func (c *kafkaConsumer) processMessage(ctx context.Context, msg kafka.Message, groupID string) {
	start := time.Now()
	lagMs := start.Sub(msg.Time).Milliseconds()

	err := c.handle(ctx, msg)
	duration := time.Since(start)
	code := getCode(err)

	content := "success"
	if err != nil {
		content = err.Error()
	}
	args := []any{
		"code", code.String(),
		"duration_ms", duration.Milliseconds(),
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"lag_ms", lagMs,
		"key", string(msg.Key),
		"value", json.RawMessage(msg.Value),
	}
	switch getLogLevel(code) {
	case levelInfo:
		c.log.Infow(content, args...)
	case levelWarn:
		c.log.Warnw(content, args...)
	default:
		c.log.Errorw(content, args...)
	}

	c.metrics.
		WithLabelValues(code.String(), msg.Topic, groupID).
		Observe(duration.Seconds())
}

func (c *kafkaConsumer) handle(msgCtx context.Context, msg kafka.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			length := runtime.Stack(stack, false)
			err = fmt.Errorf("PANIC RECOVER: %+v / %s", r, string(stack[:length]))
		}
	}()

	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return status.Errorf(codes.InvalidArgument, "unmarshal kafka message: %v", err)
	}

	ctx, cancel := context.WithTimeout(msgCtx, c.consumeTimeout)
	defer cancel()
	return c.handler.HandleEvent(ctx, event)
}

func getCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return codes.DeadlineExceeded
	}
	if errors.Is(err, context.Canceled) {
		return codes.Canceled
	}
	return status.Code(err)
}

type logLevel int

const (
	levelInfo logLevel = iota
	levelWarn
	levelError
)

// getLogLevel keeps client mistakes out of the error stream.
func getLogLevel(code codes.Code) logLevel {
	switch code {
	case codes.OK:
		return levelInfo
	case codes.Canceled,
		codes.InvalidArgument,
		codes.NotFound,
		codes.AlreadyExists,
		codes.PermissionDenied,
		codes.Unauthenticated,
		codes.ResourceExhausted,
		codes.FailedPrecondition,
		codes.Aborted,
		codes.Unimplemented,
		codes.OutOfRange:
		return levelWarn
	default:
		return levelError
	}
}

type noopConsumer struct{}

func (n *noopConsumer) Start(ctx context.Context) error {
	logger.MustNamed("kafka.consumer").Infow("Kafka consumer is disabled")
	return nil
}

func (n *noopConsumer) Stop(ctx context.Context) error {
	return nil
}
