// Package pick содержит движок проекции результатов (pickResult).
//
// Движок извлекает и перестраивает вложенные поля из произвольного
// JSON-значения по декларативному шаблону.
//
// Включает:
//   - path.go     — dotted-пути ("author.name", "items[0].id"): чтение и запись
//   - template.go — шаблон как tagged union: Path, Object, Array, Descriptor
//   - parser.go   — разбор шаблона из JSON с сохранением порядка ключей
//   - project.go  — Project: рекурсивная проекция значения по шаблону
//   - merge.go    — deep merge объектов и списков
//
// # Шаблон
//
//	pick.Obj(
//	    pick.F("id", pick.P("id")),
//	    pick.F("author", pick.P("author.name")),
//	    pick.F("-", pick.Desc("worklogs", pick.Obj(
//	        pick.F("id", pick.P("id")),
//	    ))),
//	)
//
// Тот же шаблон в JSON:
//
//	{
//	    "id": "id",
//	    "author": "author.name",
//	    "-": {"keyName": "worklogs", "fields": {"id": "id"}}
//	}
//
// # Семантика отсутствия
//
// Project возвращает (value, ok). ok == false означает "значения нет"
// (undefined): ключ шаблона, путь которого не разрешился, в результат
// не попадает, а объект без единого заполненного ключа сам становится
// undefined. JSON null — это значение, а не отсутствие.
//
// Специальный ключ "-" (FlattenKey) в паре с дескриптором и списком
// во входных данных вставляет спроецированный список на место родителя
// вместо {"-": [...]}.
package pick
