// Package publisher announces completed checkouts on Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const DefaultTopic = "checkout-completed"

// OrderEvent is the message value written for every completed checkout.
type OrderEvent struct {
	OrderID    string              `json:"order_id"`
	SessionID  string              `json:"session_id"`
	Customer   domain.CustomerInfo `json:"customer"`
	Items      []domain.CartItem   `json:"items"`
	Total      string              `json:"total"`
	Currency   string              `json:"currency"`
	OccurredAt time.Time           `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[any]
	timeout time.Duration
	log     *zap.Logger
}

func NewKafkaPublisher(topic string, log *zap.Logger, brokers ...string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, log)
}

func newKafkaPublisher(w messageWriter, log *zap.Logger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	p := &KafkaPublisher{writer: w, timeout: 5 * time.Second, log: log}
	p.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "kafka-orders",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return p
}

// Publish writes the order keyed by its id. While the breaker is open the
// write is skipped and gobreaker.ErrOpenState returned.
func (p *KafkaPublisher) Publish(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(OrderEvent{
		OrderID:    order.ID.String(),
		SessionID:  order.SessionID,
		Customer:   order.Customer,
		Items:      order.Items,
		Total:      order.Total.StringFixed(2),
		Currency:   order.Currency,
		OccurredAt: order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	_, err = p.breaker.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return nil, p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(order.ID.String()),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "event-type", Value: []byte("checkout.completed")},
			},
		})
	})
	if err != nil {
		return fmt.Errorf("publish order %s: %w", order.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *domain.Order) error { return nil }
func (NopPublisher) Close() error { return nil }
