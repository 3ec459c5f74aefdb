package oplog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-portfolio/internal/domain/model"
	"go-portfolio/internal/logging"
	"go-portfolio/internal/repository/dao"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	maxErrorsLen = 2000
	retryBase    = 200 * time.Millisecond
	retryMax     = 10 * time.Second
)

// errMalformedEvent 无法解析的消息，重试也不会成功，提交后跳过
var errMalformedEvent = errors.New("malformed oplog event")

// messageReader kafka.Reader 中用到的部分
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkaGo.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer 消费操作日志 topic 并写入 operation_logs
type Consumer struct {
	reader    messageReader
	dao       *dao.OperationLogDAO
	logger    *logging.Logger
	retryBase time.Duration
}

func NewConsumer(cfg Config, d *dao.OperationLogDAO, l *logging.Logger) *Consumer {
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1, MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, dao: d, logger: l, retryBase: retryBase}
}

// Run 阻塞直到 ctx 取消。offset 只在落库成功 (或消息无法解析) 后提交；
// 落库失败按退避重试同一条消息，进程退出时未提交的消息由下一个消费者重新拿到。
func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := c.persist(ctx, m); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			// 提交失败只会导致重复投递
			c.logger.Warn("oplog_commit_failed", zap.Error(err), zap.Int64("offset", m.Offset), zap.Int("partition", m.Partition))
		}
	}
}

// persist 落库直到成功；无法解析的消息记录日志后放行
func (c *Consumer) persist(ctx context.Context, m kafkaGo.Message) error {
	wait := c.retryBase
	if wait <= 0 {
		wait = retryBase
	}
	for {
		err := c.Handle(ctx, m.Value)
		if err == nil {
			return nil
		}
		if errors.Is(err, errMalformedEvent) {
			c.logger.Warn("oplog_event_dropped", zap.Error(err), zap.Int64("offset", m.Offset), zap.Int("partition", m.Partition))
			return nil
		}
		c.logger.Warn("oplog_persist_retry", zap.Error(err), zap.Int64("offset", m.Offset), zap.Int("partition", m.Partition), zap.Duration("wait", wait))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, retryMax)
	}
}

// Handle 解析一条事件并落库
func (c *Consumer) Handle(ctx context.Context, payload []byte) error {
	var e model.OpLogEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}
	rec := toRecord(e, time.Now())
	return c.dao.Create(ctx, &rec)
}

func (c *Consumer) Close() error { return c.reader.Close() }

// toRecord 事件时间无法解析时使用 now
func toRecord(e model.OpLogEvent, now time.Time) model.OperationLog {
	ts := now.Unix()
	if t, err := time.Parse(time.RFC3339, e.Time); err == nil {
		ts = t.Unix()
	}
	return model.OperationLog{
		ActionName: e.ActionName,
		Path:       e.Path,
		Target:     e.Target,
		Method:     e.Method,
		Status:     e.Status,
		LatencyMS:  e.LatencyMS,
		IP:         e.IP,
		TraceID:    e.TraceID,
		Errors:     truncate(strings.Join(e.Errors, "; "), maxErrorsLen),
		AddTime:    ts,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
