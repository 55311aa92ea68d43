// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go            — Handler с DI (executor, хранилище, publisher, logger)
//   - routes.go             — регистрация маршрутов
//   - middleware.go         — middleware (recovery, metrics, logging)
//   - response.go           — унифицированные JSON-ответы и обработка ошибок
//   - dto.go                — Data Transfer Objects (request/response)
//   - invocation_handler.go — обработчики для /steps и /invocations
//
// Исход шага — это данные вызова (status, error, error_kind), а не HTTP статус:
// синхронный вызов, завершившийся fail, отвечает 200 со статусом FAILED.
package api
