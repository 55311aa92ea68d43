package pick

import (
	"fmt"
	"strconv"
	"strings"
)

// Path — разобранный dotted-путь.
//
// Поддерживаемый синтаксис:
//
//	author.name
//	worklogs[0].id
//	worklogs.0.id          // то же самое
//	fields["customfield.1"]
//
// Один и тот же Path используется и для чтения из источника (Get),
// и для записи в результат (Set).
type Path struct {
	raw  string
	keys []string
}

// ParsePath разбирает строку пути.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, ErrEmptyPath
	}

	keys := make([]string, 0, strings.Count(s, ".")+1)
	var cur strings.Builder
	afterBracket := false
	needKey := true

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '.':
			if cur.Len() > 0 {
				keys = append(keys, cur.String())
				cur.Reset()
			} else if !afterBracket {
				return Path{}, invalidPath(s, "empty segment")
			}
			afterBracket = false
			needKey = true

		case '[':
			if cur.Len() > 0 {
				keys = append(keys, cur.String())
				cur.Reset()
			} else if needKey && i > 0 {
				return Path{}, invalidPath(s, "empty segment before bracket")
			}

			end := strings.IndexByte(s[i+1:], ']')
			if end < 0 {
				return Path{}, invalidPath(s, "unclosed bracket")
			}
			key, err := bracketKey(s[i+1 : i+1+end])
			if err != nil {
				return Path{}, invalidPath(s, err.Error())
			}
			keys = append(keys, key)

			i += end + 1
			afterBracket = true
			needKey = false

		default:
			if afterBracket {
				return Path{}, invalidPath(s, "unexpected character after bracket")
			}
			cur.WriteByte(c)
			needKey = false
		}
	}

	if cur.Len() > 0 {
		keys = append(keys, cur.String())
	} else if needKey {
		return Path{}, invalidPath(s, "trailing dot")
	}

	return Path{raw: s, keys: keys}, nil
}

// MustParsePath разбирает путь и паникует при ошибке.
// Используется для шаблонов, заданных в коде.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// keyPath — путь из одного ключа без разбора (ключ может содержать точки).
func keyPath(key string) Path {
	return Path{raw: key, keys: []string{key}}
}

// String возвращает исходную строку пути.
func (p Path) String() string {
	return p.raw
}

// IsZero проверяет, что путь не задан.
func (p Path) IsZero() bool {
	return len(p.keys) == 0
}

// Keys возвращает копию сегментов пути.
func (p Path) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Get читает значение по пути.
// ok == false, если какой-либо сегмент не разрешился.
func (p Path) Get(source any) (any, bool) {
	if p.IsZero() {
		return nil, false
	}

	cur := source
	for _, key := range p.keys {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[key]
			if !ok {
				return nil, false
			}
			cur = v

		case []any:
			idx, ok := index(key)
			if !ok || idx >= len(c) {
				return nil, false
			}
			cur = c[idx]

		default:
			return nil, false
		}
	}

	return cur, true
}

// Set записывает value по пути в container и возвращает обновлённый контейнер.
//
// Недостающие промежуточные узлы создаются: список, если следующий
// сегмент — индекс, иначе объект. Скаляр на пути заменяется контейнером.
func (p Path) Set(container, value any) any {
	if p.IsZero() {
		return container
	}
	return p.set(container, 0, value)
}

func (p Path) set(container any, i int, value any) any {
	if i == len(p.keys) {
		return value
	}
	key := p.keys[i]

	switch c := container.(type) {
	case map[string]any:
		c[key] = p.set(c[key], i+1, value)
		return c

	case []any:
		if idx, ok := index(key); ok {
			for len(c) <= idx {
				c = append(c, nil)
			}
			c[idx] = p.set(c[idx], i+1, value)
			return c
		}
		m := listToObject(c)
		m[key] = p.set(nil, i+1, value)
		return m

	default:
		if idx, ok := index(key); ok {
			list := make([]any, idx+1)
			list[idx] = p.set(nil, i+1, value)
			return list
		}
		return map[string]any{key: p.set(nil, i+1, value)}
	}
}

// index проверяет, что ключ — неотрицательный индекс без ведущих нулей.
func index(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return n, true
}

// bracketKey извлекает ключ из [..]: индекс или строка в кавычках.
func bracketKey(inner string) (string, error) {
	if n := len(inner); n >= 2 && (inner[0] == '"' || inner[0] == '\'') && inner[n-1] == inner[0] {
		return inner[1 : n-1], nil
	}
	if _, ok := index(inner); ok {
		return inner, nil
	}
	return "", fmt.Errorf("bracket key %q is neither an index nor a quoted string", inner)
}

func invalidPath(path, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidPath, path, reason)
}
