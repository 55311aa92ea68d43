package pick

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// worklogTemplate — шаблон ответа worklog.
var worklogTemplate = Obj(
	F("id", P("id")),
	F("self", P("self")),
	F("author", P("author.name")),
	F("comment", P("comment")),
	F("started", P("started")),
	F("timeSpent", P("timeSpent")),
)

// decode разбирает JSON так же, как его разбирает HTTP-клиент.
func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return v
}

func TestProject_WorklogResponse(t *testing.T) {
	source := decode(t, `{
		"id": 1,
		"self": "http://x",
		"author": {"name": "bob", "displayName": "Bob"},
		"comment": "hi",
		"started": "t1",
		"timeSpent": "1h",
		"timeSpentSeconds": 3600
	}`)

	got, ok := Project(source, worklogTemplate)
	if !ok {
		t.Fatal("expected defined result")
	}

	want := map[string]any{
		"id":        float64(1),
		"self":      "http://x",
		"author":    "bob",
		"comment":   "hi",
		"started":   "t1",
		"timeSpent": "1h",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_AllMissingIsUndefined(t *testing.T) {
	sources := []any{
		map[string]any{},
		map[string]any{"other": 1},
		"not an object",
		nil,
		[]any{1, 2},
	}

	for _, source := range sources {
		got, ok := Project(source, worklogTemplate)
		if ok {
			t.Errorf("expected undefined for %v, got %v", source, got)
		}
	}
}

func TestProject_OnlyResolvedKeys(t *testing.T) {
	source := map[string]any{
		"id":     "7",
		"author": map[string]any{"key": "bob"},
		"extra":  true,
	}

	got, ok := Project(source, worklogTemplate)
	if !ok {
		t.Fatal("expected defined result")
	}

	want := map[string]any{"id": "7"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_MissBeforeHitStillCollects(t *testing.T) {
	// первый ключ промахивается, следующие всё равно заполняют результат
	tmpl := Obj(
		F("missing", P("nope")),
		F("id", P("id")),
	)

	got, ok := Project(map[string]any{"id": 1}, tmpl)
	if !ok {
		t.Fatal("expected defined result")
	}
	if diff := cmp.Diff(map[string]any{"id": 1}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_NullIsDefined(t *testing.T) {
	got, ok := Project(map[string]any{"comment": nil}, Obj(F("comment", P("comment"))))
	if !ok {
		t.Fatal("null must be a defined value")
	}
	if diff := cmp.Diff(map[string]any{"comment": nil}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_DottedWrite(t *testing.T) {
	tmpl := Obj(
		F("author.name", P("author")),
		F("author.id", P("authorId")),
	)

	got, _ := Project(map[string]any{"author": "bob", "authorId": 3}, tmpl)

	want := map[string]any{"author": map[string]any{"name": "bob", "id": 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_ArrayTemplateReturnsRawValue(t *testing.T) {
	source := decode(t, `{"worklogs": [{"id": "1"}, {"id": "2"}], "total": 2}`)

	got, ok := Project(source, Arr(P("worklogs")))
	if !ok {
		t.Fatal("expected defined result")
	}

	want := []any{
		map[string]any{"id": "1"},
		map[string]any{"id": "2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	if _, ok := Project(source, Arr(P("missing"))); ok {
		t.Error("expected undefined for missing cursor")
	}

	got, ok = Project(source, Arr(Desc("total", Obj(F("n", P("n"))))))
	if !ok || got != float64(2) {
		t.Errorf("expected raw value under keyName, got %v (ok=%v)", got, ok)
	}
}

func TestProject_ArrayTemplateWithoutCursorIsUndefined(t *testing.T) {
	source := decode(t, `{"id": "1", "list": [{"id": "a"}]}`)

	tests := []struct {
		name string
		tmpl Node
	}{
		{"object entry", Arr(Obj(F("id", P("id"))))},
		{"descriptor without keyName", Arr(Desc("", Obj(F("id", P("id")))))},
		{"nested array entry", Arr(Arr(P("list")))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := Project(source, tt.tmpl); ok {
				t.Errorf("expected undefined, got %v", got)
			}
		})
	}
}

func TestProject_FlattenKey(t *testing.T) {
	source := decode(t, `{
		"worklogs": [
			{"id": "1", "author": {"name": "bob"}},
			{"id": "2", "author": {"name": "ann"}},
			{"other": true}
		]
	}`)

	tmpl := Obj(
		F(FlattenKey, Desc("worklogs", Obj(
			F("id", P("id")),
			F("author", P("author.name")),
		))),
	)

	got, ok := Project(source, tmpl)
	if !ok {
		t.Fatal("expected defined result")
	}

	// элемент без единого поля пропущен, список не обёрнут в {"-": ...}
	want := []any{
		map[string]any{"id": "1", "author": "bob"},
		map[string]any{"id": "2", "author": "ann"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_WrappedList(t *testing.T) {
	source := decode(t, `{"total": 2, "worklogs": [{"id": "1"}, {"id": "2"}]}`)

	tmpl := Obj(
		F("total", P("total")),
		F("items", Desc("worklogs", Obj(F("id", P("id"))))),
	)

	got, ok := Project(source, tmpl)
	if !ok {
		t.Fatal("expected defined result")
	}

	want := map[string]any{
		"total": float64(2),
		"items": []any{
			map[string]any{"id": "1"},
			map[string]any{"id": "2"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_DescriptorDefaultsToFieldKey(t *testing.T) {
	source := decode(t, `{"author": {"name": "bob", "key": "b"}}`)

	tmpl := Obj(F("author", Desc("", Obj(F("login", P("key"))))))

	got, _ := Project(source, tmpl)

	want := map[string]any{"author": map[string]any{"login": "b"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_NestedObjectWithoutFields(t *testing.T) {
	// объект без "fields" — вложенный шаблон, читаемый по ключу поля
	tmpl, err := ParseTemplate([]byte(`{"author": {"login": "key", "name": "name"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got, _ := Project(decode(t, `{"author": {"name": "bob", "key": "b"}}`), tmpl)

	want := map[string]any{"author": map[string]any{"login": "b", "name": "bob"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_EmptyNestedPropagates(t *testing.T) {
	tmpl := Obj(
		F("id", P("id")),
		F("author", Desc("author", Obj(F("name", P("name"))))),
	)

	got, _ := Project(decode(t, `{"id": "1", "author": {"key": "b"}}`), tmpl)
	if diff := cmp.Diff(map[string]any{"id": "1"}, got); diff != "" {
		t.Errorf("empty nested object must not be written (-want +got):\n%s", diff)
	}

	if _, ok := Project(decode(t, `{"author": {"key": "b"}}`), tmpl); ok {
		t.Error("expected undefined when every subtree is empty")
	}
}

func TestProject_ListOfScalarsThroughArrayFields(t *testing.T) {
	source := decode(t, `{"worklogs": [{"author": {"name": "bob"}}, {"author": {"name": "ann"}}]}`)

	tmpl := Obj(F("authors", Desc("worklogs", Arr(P("author.name")))))

	got, _ := Project(source, tmpl)

	want := map[string]any{"authors": []any{"bob", "ann"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_FlattenMergesIntoCollectedResult(t *testing.T) {
	source := decode(t, `{"id": "1", "worklogs": [{"id": "a"}, {"id": "b"}]}`)

	tmpl := Obj(
		F("id", P("id")),
		F(FlattenKey, Desc("worklogs", Obj(F("id", P("id"))))),
	)

	got, _ := Project(source, tmpl)

	want := map[string]any{
		"id": "1",
		"0":  map[string]any{"id": "a"},
		"1":  map[string]any{"id": "b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_WrappedListsDeepMerge(t *testing.T) {
	source := decode(t, `{
		"ids":     [{"id": "1"}, {"id": "2"}],
		"authors": [{"name": "bob"}, {"name": "ann"}]
	}`)

	tmpl := Obj(
		F("items", Desc("ids", Obj(F("id", P("id"))))),
		F("items", Desc("authors", Obj(F("author", P("name"))))),
	)

	got, _ := Project(source, tmpl)

	want := map[string]any{
		"items": []any{
			map[string]any{"id": "1", "author": "bob"},
			map[string]any{"id": "2", "author": "ann"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_DoesNotMutateSource(t *testing.T) {
	source := decode(t, `{"author": {"name": "bob"}, "id": "1"}`)
	before := clone(source)

	tmpl := Obj(
		F("author", P("author")),
		F("author.id", P("id")),
	)
	if _, ok := Project(source, tmpl); !ok {
		t.Fatal("expected defined result")
	}

	if diff := cmp.Diff(before, source); diff != "" {
		t.Errorf("source was mutated (-before +after):\n%s", diff)
	}
}
