package domain

// InvocationStatus — статус вызова шага.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
type InvocationStatus string

const (
	// InvocationStatusPending — вызов принят (асинхронно), ещё не выполняется.
	InvocationStatusPending InvocationStatus = "PENDING"

	// InvocationStatusRunning — шаг выполняется.
	InvocationStatusRunning InvocationStatus = "RUNNING"

	// InvocationStatusSucceeded — шаг вызвал complete.
	InvocationStatusSucceeded InvocationStatus = "SUCCEEDED"

	// InvocationStatusFailed — шаг вызвал fail.
	InvocationStatusFailed InvocationStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s InvocationStatus) IsTerminal() bool {
	switch s {
	case InvocationStatusSucceeded, InvocationStatusFailed:
		return true
	default:
		return false
	}
}

// IsValid проверяет, что статус известен.
func (s InvocationStatus) IsValid() bool {
	switch s {
	case InvocationStatusPending, InvocationStatusRunning, InvocationStatusSucceeded, InvocationStatusFailed:
		return true
	default:
		return false
	}
}
