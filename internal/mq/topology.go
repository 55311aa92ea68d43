package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeSteps Exchange = "worklog.steps"
	ExchangeDLQ   Exchange = "worklog.dlq"
)

// Queues — имена очередей.
const (
	QueueStepsInvoke  Queue = "steps.invoke"
	QueueStepsResults Queue = "steps.results"
	QueueDLQSteps     Queue = "dlq.steps"
)

// Routing keys.
const (
	RoutingKeyInvoke   RoutingKey = "invoke"
	RoutingKeyResult   RoutingKey = "result"
	RoutingKeyDLQSteps RoutingKey = "steps"
)

// exchangeDecl — объявление обменника.
type exchangeDecl struct {
	name Exchange
	kind string
}

// queueDecl — объявление очереди с привязкой.
type queueDecl struct {
	name       Queue
	exchange   Exchange
	routingKey RoutingKey
	args       amqp.Table
}

// exchanges — все обменники.
var exchanges = []exchangeDecl{
	{ExchangeSteps, amqp.ExchangeDirect},
	{ExchangeDLQ, amqp.ExchangeDirect},
}

// queues — все очереди и их привязки.
var queues = []queueDecl{
	// steps.invoke — отклонённые вызовы уходят в DLQ, повторов нет
	{QueueStepsInvoke, ExchangeSteps, RoutingKeyInvoke, amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQSteps),
	}},

	// steps.results — исходы вызовов для внешних потребителей
	{QueueStepsResults, ExchangeSteps, RoutingKeyResult, nil},

	// dlq.steps — ручной разбор
	{QueueDLQSteps, ExchangeDLQ, RoutingKeyDLQSteps, nil},
}

// SetupTopology объявляет обменники, очереди и привязки. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range exchanges {
			err := ch.ExchangeDeclare(
				string(ex.name), // name
				ex.kind,         // type
				true,            // durable
				false,           // auto-deleted
				false,           // internal
				false,           // no-wait
				nil,             // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex.name, err)
			}
		}

		for _, q := range queues {
			if _, err := ch.QueueDeclare(string(q.name), true, false, false, false, q.args); err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}
			if err := ch.QueueBind(string(q.name), string(q.routingKey), string(q.exchange), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", q.name, q.exchange, err)
			}
		}

		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Worklog RabbitMQ Topology:

    worklog.steps (direct)
    ├── steps.invoke [routing: invoke]
    │       Consumer: Worker
    │       DLQ: dlq.steps
    └── steps.results [routing: result]
            Consumer: external

    worklog.dlq (direct)
    └── dlq.steps [routing: steps]
            Manual processing
  `
}
