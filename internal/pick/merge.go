package pick

import "strconv"

// merge глубоко сливает src в dst и возвращает результат.
//
//   - объект + объект — рекурсивно по ключам
//   - список + список — поэлементно по индексу
//   - объект + список — элементы под ключами "0", "1", ...
//   - список + объект — список сначала превращается в объект
//   - иначе побеждает src
//
// Контейнеры из src копируются, dst изменяется на месте.
func merge(dst, src any) any {
	switch s := src.(type) {
	case map[string]any:
		d, ok := dst.(map[string]any)
		if !ok {
			if list, isList := dst.([]any); isList {
				d = listToObject(list)
			} else {
				d = make(map[string]any, len(s))
			}
		}
		for k, sv := range s {
			d[k] = merge(d[k], sv)
		}
		return d

	case []any:
		switch d := dst.(type) {
		case map[string]any:
			for i, sv := range s {
				k := strconv.Itoa(i)
				d[k] = merge(d[k], sv)
			}
			return d

		case []any:
			for i, sv := range s {
				if i < len(d) {
					d[i] = merge(d[i], sv)
				} else {
					d = append(d, merge(nil, sv))
				}
			}
			return d

		default:
			out := make([]any, 0, len(s))
			for _, sv := range s {
				out = append(out, merge(nil, sv))
			}
			return out
		}

	default:
		return src
	}
}

// clone делает глубокую копию JSON-подобного значения.
func clone(v any) any {
	switch c := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(c))
		for k, val := range c {
			out[k] = clone(val)
		}
		return out
	case []any:
		out := make([]any, len(c))
		for i, val := range c {
			out[i] = clone(val)
		}
		return out
	default:
		return v
	}
}

// listToObject превращает список в объект с индексными ключами.
func listToObject(list []any) map[string]any {
	m := make(map[string]any, len(list))
	for i, v := range list {
		m[strconv.Itoa(i)] = v
	}
	return m
}
