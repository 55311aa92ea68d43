package pick

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Ключи дескриптора.
const (
	descriptorKeyName = "keyName"
	descriptorFields  = "fields"
)

// ParseTemplate разбирает шаблон из JSON.
//
// Порядок ключей объектов сохраняется. Правила:
//   - строка — Path
//   - массив из одного элемента — Array
//   - объект с ключом "fields" — Descriptor (допустим ещё только "keyName")
//   - любой другой объект — Object
//
// Числа, bool и null в шаблоне недопустимы.
func ParseTemplate(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := parseNode(dec, "$")
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, NewValidationError("$", "unexpected data after template", ErrInvalidTemplate)
	}

	switch n.(type) {
	case Object, Array, Descriptor:
		return n, nil
	default:
		return nil, NewValidationError("$", "template must be an object or an array", ErrInvalidTemplate)
	}
}

// parseNode разбирает один узел шаблона.
func parseNode(dec *json.Decoder, loc string) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, NewValidationError(loc, err.Error(), ErrInvalidTemplate)
	}

	switch t := tok.(type) {
	case string:
		p, err := ParsePath(t)
		if err != nil {
			return nil, NewValidationError(loc, err.Error(), err)
		}
		return p, nil

	case json.Delim:
		switch t {
		case '[':
			return parseArray(dec, loc)
		case '{':
			return parseObject(dec, loc)
		}
	}

	return nil, NewValidationError(loc, fmt.Sprintf("unsupported value %v", tok), ErrInvalidNode)
}

// parseArray разбирает array-шаблон (открывающая скобка уже прочитана).
func parseArray(dec *json.Decoder, loc string) (Node, error) {
	var elems []Node
	for i := 0; dec.More(); i++ {
		n, err := parseNode(dec, fmt.Sprintf("%s[%d]", loc, i))
		if err != nil {
			return nil, err
		}
		elems = append(elems, n)
	}

	// закрывающая ']'
	if _, err := dec.Token(); err != nil {
		return nil, NewValidationError(loc, err.Error(), ErrInvalidTemplate)
	}

	if len(elems) != 1 {
		return nil, NewValidationError(loc,
			fmt.Sprintf("array template has %d entries", len(elems)), ErrArrayCursor)
	}

	switch e := elems[0].(type) {
	case Path:
	case Descriptor:
		if e.Source.IsZero() {
			return nil, NewValidationError(loc+"[0]", "array cursor descriptor needs keyName", ErrArrayCursor)
		}
	default:
		return nil, NewValidationError(loc+"[0]", "array cursor must be a path or a descriptor with keyName", ErrArrayCursor)
	}

	return Array{Elem: elems[0]}, nil
}

// parseObject разбирает объект: Object или Descriptor (открывающая скобка уже прочитана).
func parseObject(dec *json.Decoder, loc string) (Node, error) {
	var fields []Field
	seen := make(map[string]bool)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, NewValidationError(loc, err.Error(), ErrInvalidTemplate)
		}
		key, _ := tok.(string)

		if seen[key] {
			return nil, NewValidationError(loc,
				fmt.Sprintf("duplicate key %q", key), ErrInvalidTemplate)
		}
		seen[key] = true

		n, err := parseNode(dec, loc+"."+key)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Key: key, Node: n, out: outPath(key)})
	}

	// закрывающая '}'
	if _, err := dec.Token(); err != nil {
		return nil, NewValidationError(loc, err.Error(), ErrInvalidTemplate)
	}

	if seen[descriptorFields] {
		return buildDescriptor(fields, loc)
	}

	return Object(fields), nil
}

// buildDescriptor собирает Descriptor из полей объекта.
func buildDescriptor(fields []Field, loc string) (Node, error) {
	var d Descriptor

	for _, f := range fields {
		switch f.Key {
		case descriptorKeyName:
			p, ok := f.Node.(Path)
			if !ok {
				return nil, NewValidationError(loc+"."+descriptorKeyName,
					"keyName must be a path string", ErrInvalidDescriptor)
			}
			d.Source = p

		case descriptorFields:
			switch f.Node.(type) {
			case Object, Array, Descriptor:
				d.Fields = f.Node
			default:
				return nil, NewValidationError(loc+"."+descriptorFields,
					"fields must be an object or an array", ErrInvalidDescriptor)
			}

		default:
			return nil, NewValidationError(loc,
				fmt.Sprintf("unexpected descriptor key %q", f.Key), ErrInvalidDescriptor)
		}
	}

	return d, nil
}
