// Package mq — транспорт вызовов шагов через RabbitMQ.
//
// Структура:
//   - connection.go — соединение с reconnect
//   - topology.go   — exchanges, queues, bindings
//   - publisher.go  — конверт Message и публикация
//   - consumer.go   — потребление с ack/nack
//
// Типы сообщений:
//   - step.invoke — запрос на выполнение шага (payload InvokePayload)
//   - step.result — исход выполнения (payload ResultPayload)
//
// Шаги не повторяются: при ошибке обработчика сообщение
// отклоняется без requeue и попадает в dlq.steps.
package mq
