package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// 事件主题
const (
	SubjectRatingSubmitted = "ratings.submitted"
	SubjectRatingEdited    = "ratings.edited"
)

// RatingEvent 评分变更事件
type RatingEvent struct {
	EventType  string    `json:"event_type"`
	RatingID   int64     `json:"rating_id"`
	StoreID    int64     `json:"store_id"`
	UserID     int64     `json:"user_id"`
	Score      int       `json:"score"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher 评分事件发布
type Publisher interface {
	PublishRating(subject string, evt RatingEvent) error
	Close()
}

// ==================== NATS ====================

// NatsPublisher 基于 NATS core 的发布者
type NatsPublisher struct {
	conn *nats.Conn
	log  *zap.Logger
}

// NewNatsPublisher 连接 NATS，断线后由客户端自动重连
func NewNatsPublisher(url string, log *zap.Logger) (*NatsPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("store-rating-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS 连接断开", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS 已重连", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &NatsPublisher{conn: nc, log: log}, nil
}

// PublishRating 发布评分事件
func (p *NatsPublisher) PublishRating(subject string, evt RatingEvent) error {
	if evt.EventType == "" {
		evt.EventType = subject
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.log.Debug("已发布事件", zap.String("subject", subject), zap.Int64("rating_id", evt.RatingID))
	return nil
}

// Close 刷新缓冲后断开
func (p *NatsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// ==================== Noop ====================

// NoopPublisher 未配置 NATS 时使用
type NoopPublisher struct{}

func (NoopPublisher) PublishRating(string, RatingEvent) error { return nil }

func (NoopPublisher) Close() {}
