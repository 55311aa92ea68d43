package worker

import "errors"

// Ошибки воркера.
var (
	// ErrAlreadyFinished — вызов уже в финальном статусе (повторная доставка).
	ErrAlreadyFinished = errors.New("invocation already finished")

	// ErrStore — ошибка хранилища вызовов.
	ErrStore = errors.New("invocation store error")
)
