// Package outbox 实现发件箱模式：事件与业务数据同库写入，由中继服务异步投递到RabbitMQ。
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio-go/internal/config"
	"portfolio-go/internal/constants"
	"portfolio-go/internal/storage"
	"portfolio-go/internal/storage/models"
	"portfolio-go/internal/tracing"
)

const (
	defaultPollingInterval = 5 * time.Second
	defaultBatchSize       = 10
	maxRetryCount          = 5
)

// Publisher 消息发布器，*storage.RabbitMQ 实现了该接口
type Publisher interface {
	PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error
}

var _ Publisher = (*storage.RabbitMQ)(nil)

// MessageRelay 轮询 outbox 表并将消息发布到消息代理。
type MessageRelay struct {
	db              *gorm.DB
	publisher       Publisher
	logger          *log.Logger
	pollingInterval time.Duration
	batchSize       int
	done            chan struct{}
	stopOnce        sync.Once
	tracer          trace.Tracer
	now             func() time.Time
}

// NewMessageRelay 创建中继服务，cfg 为nil时使用默认轮询间隔和批量大小
func NewMessageRelay(db *gorm.DB, publisher Publisher, cfg *config.RabbitMQConfig, logger *log.Logger) *MessageRelay {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	r := &MessageRelay{
		db:              db,
		publisher:       publisher,
		logger:          logger,
		pollingInterval: defaultPollingInterval,
		batchSize:       defaultBatchSize,
		done:            make(chan struct{}),
		tracer:          otel.Tracer("portfolio-go/outbox"),
		now:             time.Now,
	}
	if cfg != nil {
		r.pollingInterval = config.GetDuration(cfg.RetryInterval, defaultPollingInterval)
		if cfg.BatchSize > 0 {
			r.batchSize = cfg.BatchSize
		}
	}
	return r
}

// Start 在后台开始轮询
func (r *MessageRelay) Start() {
	r.logger.Printf("MessageRelay 启动, 轮询间隔 %s, 批量 %d", r.pollingInterval, r.batchSize)
	ticker := time.NewTicker(r.pollingInterval)

	go func() {
		for {
			select {
			case <-r.done:
				ticker.Stop()
				r.logger.Println("MessageRelay 已停止")
				return
			case <-ticker.C:
				if err := r.processPendingMessages(context.Background()); err != nil {
					r.logger.Printf("[ERROR] 处理待投递消息失败: %v", err)
				}
			}
		}
	}()
}

// Stop 停止轮询，可重复调用
func (r *MessageRelay) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

// processPendingMessages 认领一批待投递消息并发布，状态更新与认领在同一事务内。
func (r *MessageRelay) processPendingMessages(ctx context.Context) error {
	var messages []models.OutboxMessage

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	// SKIP LOCKED 让多个实例可以并行认领不同的消息
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", models.OutboxStatusPending).
		Order("created_at asc").
		Limit(r.batchSize).
		Find(&messages).Error
	if err != nil {
		return fmt.Errorf("查询待投递消息失败: %w", err)
	}

	// 空轮询不创建span
	if len(messages) == 0 {
		return tx.Commit().Error
	}

	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(attribute.Int("messaging.batch.message_count", len(messages))))
	defer span.End()

	r.publishBatch(ctx, messages)

	for i := range messages {
		if err := tx.Save(&messages[i]).Error; err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeDB)
			return fmt.Errorf("更新消息 %d 状态失败: %w", messages[i].ID, err)
		}
	}
	return tx.Commit().Error
}

// publishBatch 逐条发布并就地更新状态，返回成功条数
func (r *MessageRelay) publishBatch(ctx context.Context, messages []models.OutboxMessage) int {
	sent := 0
	for i := range messages {
		msg := &messages[i]
		err := r.publisher.PublishMessage(ctx, msg.TargetExchange, msg.TargetRoutingKey, []byte(msg.Payload), true)
		if err != nil {
			msg.RetryCount++
			msg.ErrorMessage = err.Error()
			if msg.RetryCount >= maxRetryCount {
				msg.Status = models.OutboxStatusFailed
			}
			r.logger.Printf("[WARN] 发布消息 %d (简历 %s) 失败, 第 %d 次: %v", msg.ID, msg.AggregateID, msg.RetryCount, err)
			continue
		}
		now := r.now()
		msg.Status = models.OutboxStatusSent
		msg.ProcessedAt = &now
		msg.ErrorMessage = ""
		sent++
	}
	return sent
}

// NewResumeParsedMessage 构造一条待投递的 resume.parsed 事件
func NewResumeParsedMessage(event storage.ResumeParsedEvent, cfg *config.RabbitMQConfig) (*models.OutboxMessage, error) {
	if cfg == nil || cfg.ResumeEventsExchange == "" {
		return nil, fmt.Errorf("未配置简历事件交换机")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("序列化 resume.parsed 事件失败: %w", err)
	}
	return &models.OutboxMessage{
		AggregateID:      strconv.FormatUint(event.ResumeID, 10),
		EventType:        constants.EventTypeResumeParsed,
		Payload:          string(payload),
		TargetExchange:   cfg.ResumeEventsExchange,
		TargetRoutingKey: cfg.ParsedRoutingKey,
		Status:           models.OutboxStatusPending,
	}, nil
}
