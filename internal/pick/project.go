package pick

// Project проецирует source по шаблону tmpl.
//
// Возвращает ok == false, если результат отсутствует (undefined):
// ни один путь шаблона не разрешился или объект остался пустым.
// source не изменяется: значения в результате — копии.
func Project(source any, tmpl Node) (any, bool) {
	switch t := tmpl.(type) {
	case Object:
		return projectObject(source, t)

	case Array:
		return projectArray(source, t)

	case Descriptor:
		value := source
		if !t.Source.IsZero() {
			v, ok := t.Source.Get(source)
			if !ok {
				return nil, false
			}
			value = v
		}
		if list, ok := value.([]any); ok {
			return mapList(list, t.Fields), true
		}
		return Project(value, t.Fields)

	case Path:
		v, ok := t.Get(source)
		if !ok {
			return nil, false
		}
		return clone(v), true

	default:
		return nil, false
	}
}

// projectArray — курсор: результат равен разрешённому значению.
// Курсором служит путь или дескриптор с keyName; иной элемент
// ничего не выбирает, и результат undefined.
func projectArray(source any, t Array) (any, bool) {
	var src Path
	switch e := t.Elem.(type) {
	case Path:
		src = e
	case Descriptor:
		src = e.Source
	}
	if src.IsZero() {
		return nil, false
	}

	v, ok := src.Get(source)
	if !ok {
		return nil, false
	}
	return clone(v), true
}

// projectObject обходит поля в порядке объявления.
func projectObject(source any, t Object) (any, bool) {
	acc := newAccumulator()

	for _, f := range t {
		src, fields := resolveField(f)

		value, ok := src.Get(source)
		if !ok {
			// промах не пишет ключ; пустота оценивается после обхода всех полей
			continue
		}

		if fields == nil {
			acc.set(f.writePath(), clone(value))
			continue
		}

		if list, isList := value.([]any); isList {
			projected := mapList(list, fields)
			if f.Key == FlattenKey {
				acc.adopt(projected)
			} else {
				acc.adopt(map[string]any{f.Key: projected})
			}
			continue
		}

		if projected, ok := Project(value, fields); ok {
			acc.set(keyPath(f.Key), projected)
		}
	}

	return acc.value()
}

// resolveField возвращает путь чтения и вложенный шаблон поля.
// fields == nil для простого Path-отображения.
//
// Object и Array в позиции значения поля — вложенный шаблон,
// читаемый по ключу поля (как дескриптор без keyName).
func resolveField(f Field) (Path, Node) {
	switch n := f.Node.(type) {
	case Path:
		return n, nil
	case Descriptor:
		if n.Source.IsZero() {
			return outPath(f.Key), n.Fields
		}
		return n.Source, n.Fields
	case Object, Array:
		return outPath(f.Key), n
	default:
		return Path{}, nil
	}
}

// mapList проецирует каждый элемент списка; undefined-элементы пропускаются.
func mapList(list []any, fields Node) []any {
	out := make([]any, 0, len(list))
	for _, el := range list {
		if v, ok := Project(el, fields); ok {
			out = append(out, v)
		}
	}
	return out
}

// accumulator — результат объектной проекции.
// Начинается пустым объектом; "-" может превратить его в список.
type accumulator struct {
	res any
}

func newAccumulator() *accumulator {
	return &accumulator{res: make(map[string]any)}
}

// set пишет значение по пути записи.
func (a *accumulator) set(p Path, value any) {
	if list, ok := a.res.([]any); ok {
		a.res = listToObject(list)
	}
	a.res = p.Set(a.res, value)
}

// adopt принимает значение целиком, если результат пуст, иначе сливает.
func (a *accumulator) adopt(value any) {
	if isEmpty(a.res) {
		a.res = value
		return
	}
	a.res = merge(a.res, value)
}

func (a *accumulator) value() (any, bool) {
	if m, ok := a.res.(map[string]any); ok && len(m) == 0 {
		return nil, false
	}
	return a.res, true
}

func isEmpty(v any) bool {
	switch c := v.(type) {
	case map[string]any:
		return len(c) == 0
	case []any:
		return len(c) == 0
	default:
		return v == nil
	}
}
