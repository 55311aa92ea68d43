package pick

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlattenKey — ключ, который вставляет спроецированный список
// на место родителя вместо вложения под ключом.
const FlattenKey = "-"

// Node — узел шаблона.
//
// Реализации: Path, Object, Array, Descriptor.
// Тип узла определяется один раз при создании шаблона.
type Node interface {
	node()
}

// Field — пара "ключ результата → узел шаблона" в Object.
type Field struct {
	// Key — ключ результата. Для Path-узлов это dotted-путь записи.
	Key string

	// Node — узел шаблона для этого ключа.
	Node Node

	out Path
}

// Object — объектный шаблон. Порядок полей = порядок обхода.
type Object []Field

// Array — шаблон-курсор: проецирует вход сразу как список.
// Результат — разрешённое значение как есть, без обёртки.
type Array struct {
	Elem Node
}

// Descriptor — узел {keyName?, fields}.
//
// Значение читается по Source (по ключу поля, если Source не задан)
// и проецируется через Fields: каждый элемент списка или объект целиком.
type Descriptor struct {
	Source Path
	Fields Node
}

func (Path) node()       {}
func (Object) node()     {}
func (Array) node()      {}
func (Descriptor) node() {}

// P создаёт Path-узел. Паникует на некорректном пути.
func P(path string) Path {
	return MustParsePath(path)
}

// F создаёт поле объектного шаблона. Паникует на некорректном ключе.
func F(key string, node Node) Field {
	return Field{Key: key, Node: node, out: outPath(key)}
}

// Obj создаёт объектный шаблон.
func Obj(fields ...Field) Object {
	return Object(fields)
}

// Arr создаёт array-шаблон.
func Arr(elem Node) Array {
	return Array{Elem: elem}
}

// Desc создаёт дескриптор. Пустой keyName — читать по ключу поля.
func Desc(keyName string, fields Node) Descriptor {
	d := Descriptor{Fields: fields}
	if keyName != "" {
		d.Source = MustParsePath(keyName)
	}
	return d
}

// outPath возвращает путь записи для ключа поля.
// Ключ, который не разбирается как путь, пишется как есть.
func outPath(key string) Path {
	if p, err := ParsePath(key); err == nil {
		return p
	}
	return keyPath(key)
}

// writePath возвращает путь записи поля (для полей, созданных литералом).
func (f Field) writePath() Path {
	if !f.out.IsZero() {
		return f.out
	}
	return outPath(f.Key)
}

// MarshalJSON сериализует путь как JSON-строку.
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.raw)
}

// MarshalJSON сериализует объектный шаблон с сохранением порядка полей.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := marshalNode(f.Node)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON сериализует array-шаблон как список из одного элемента.
func (a Array) MarshalJSON() ([]byte, error) {
	elem, err := marshalNode(a.Elem)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{'['}, elem...), ']'), nil
}

// MarshalJSON сериализует дескриптор как {"keyName": ..., "fields": ...}.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	fields, err := marshalNode(d.Fields)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	if !d.Source.IsZero() {
		name, err := json.Marshal(d.Source.raw)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"keyName":`)
		buf.Write(name)
		buf.WriteByte(',')
	}
	buf.WriteString(`"fields":`)
	buf.Write(fields)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNode(n Node) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", ErrInvalidNode)
	}
	return json.Marshal(n)
}
