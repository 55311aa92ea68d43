package pick

import "errors"

// Ошибки путей.
var (
	// ErrEmptyPath — путь пустой.
	ErrEmptyPath = errors.New("empty path")

	// ErrInvalidPath — путь не удалось разобрать.
	ErrInvalidPath = errors.New("invalid path")
)

// Ошибки шаблона.
var (
	// ErrInvalidTemplate — шаблон не является объектом, массивом или дескриптором.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrInvalidNode — узел шаблона неподдерживаемого типа (число, bool, null).
	ErrInvalidNode = errors.New("invalid template node")

	// ErrArrayCursor — array-шаблон должен содержать ровно один элемент:
	// путь или дескриптор с keyName.
	ErrArrayCursor = errors.New("array template must hold exactly one entry")

	// ErrInvalidDescriptor — некорректный дескриптор {keyName, fields}.
	ErrInvalidDescriptor = errors.New("invalid descriptor")
)

// ValidationError — ошибка разбора шаблона с указанием места.
type ValidationError struct {
	Location string // место в шаблоне: "$", "$.author", "$[0]"
	Message  string // описание ошибки
	Err      error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Location != "" {
		return "template " + e.Location + ": " + e.Message
	}
	return "template: " + e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку разбора шаблона.
func NewValidationError(location, message string, err error) *ValidationError {
	return &ValidationError{
		Location: location,
		Message:  message,
		Err:      err,
	}
}
