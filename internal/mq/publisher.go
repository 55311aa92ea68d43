package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeStepInvoke MessageType = "step.invoke"
	MessageTypeStepResult MessageType = "step.result"
)

// Message — конверт сообщения.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage создаёт сообщение с новым ID.
func NewMessage(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// InvokePayload — запрос на выполнение шага.
type InvokePayload struct {
	InvocationID uuid.UUID        `json:"invocation_id"`
	StepType     string           `json:"step_type"`
	Inputs       map[string][]any `json:"inputs,omitempty"`
}

// ResultPayload — исход выполнения шага.
type ResultPayload struct {
	InvocationID uuid.UUID `json:"invocation_id"`
	StepType     string    `json:"step_type"`
	Status       string    `json:"status"` // SUCCEEDED или FAILED
	Result       any       `json:"result,omitempty"`
	Error        string    `json:"error,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty"`
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// publishing собирает AMQP сообщение из конверта.
func publishing(msg *Message, correlationID string) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}

	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     msg.ID,
		CorrelationId: correlationID,
		Type:          string(msg.Type),
		Timestamp:     msg.Timestamp,
		Body:          body,
	}, nil
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message, correlationID string) error {
	pub, err := publishing(msg, correlationID)
	if err != nil {
		return err
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := ch.PublishWithContext(ctx, string(exchange), string(routingKey), false, false, pub); err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishInvoke публикует запрос на выполнение шага.
// Потребитель: Worker.
func (p *Publisher) PublishInvoke(ctx context.Context, payload InvokePayload) error {
	msg := NewMessage(MessageTypeStepInvoke, payload)
	return p.Publish(ctx, ExchangeSteps, RoutingKeyInvoke, msg, payload.InvocationID.String())
}

// PublishResult публикует исход выполнения шага.
func (p *Publisher) PublishResult(ctx context.Context, payload ResultPayload) error {
	msg := NewMessage(MessageTypeStepResult, payload)
	return p.Publish(ctx, ExchangeSteps, RoutingKeyResult, msg, payload.InvocationID.String())
}
