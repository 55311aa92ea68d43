package steps

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Info описывает шаг: входы и ключи окружения, которые он читает.
type Info struct {
	Type     string   `json:"type"`
	Inputs   []string `json:"inputs,omitempty"`
	Required []string `json:"required,omitempty"`
	Env      []string `json:"env,omitempty"`
}

// Describer реализуют шаги, которые умеют описать себя.
type Describer interface {
	Describe() Info
}

// Registry хранит шаги по типу. Безопасен для конкурентного использования:
// API и воркер разделяют один реестр между вызовами.
type Registry struct {
	mu     sync.RWMutex
	byType map[string]Step
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]Step)}
}

// DefaultRegistry — реестр с шагами, собранными в бинарник.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewWorklogUpdateStep())
	return r
}

// Register добавляет шаг; шаг того же типа заменяется.
func (r *Registry) Register(step Step) {
	r.mu.Lock()
	r.byType[step.Type()] = step
	r.mu.Unlock()
}

// Get возвращает шаг или ErrStepNotFound.
func (r *Registry) Get(stepType string) (Step, error) {
	r.mu.RLock()
	step, ok := r.byType[stepType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, stepType)
	}
	return step, nil
}

// Has сообщает, зарегистрирован ли тип.
func (r *Registry) Has(stepType string) bool {
	_, err := r.Get(stepType)
	return err == nil
}

// Types возвращает типы шагов по алфавиту.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byType))
}

// Describe возвращает описания шагов в порядке Types.
// Для шага без Describer заполняется только Type.
func (r *Registry) Describe() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.byType))
	for _, t := range slices.Sorted(maps.Keys(r.byType)) {
		info := Info{Type: t}
		if d, ok := r.byType[t].(Describer); ok {
			info = d.Describe()
			info.Type = t
		}
		infos = append(infos, info)
	}
	return infos
}
