// Package cli реализует инструмент командной строки worklog.
//
// # Обзор
//
// Основной режим — клиент worklog API по HTTP. Команды update и steps
// умеют работать локально (--local): шаг выполняется в процессе через
// worker.Executor без хранилища и очереди.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для API. Разбирает обёртки ответов (data, list, error)
// и превращает ошибки API в error.
//
//	client := cli.NewClient("http://localhost:8080")
//	inv, err := client.Invoke("jira.worklog.update", cli.CreateInvocationRequest{...})
//
// ## Output
//
// Таблицы (text/tabwriter) по умолчанию, JSON с флагом --json.
// Данные идут в stdout, сообщения в stderr:
//
//	worklog invocation list --json | jq .
//
// ## Commands
//
//   - update ISSUE WORKLOG_ID: обновление worklog
//   - invocation: list, show
//   - steps: список типов шагов
//   - pick: проекция JSON по шаблону, без сети
//
// Фабрики команд принимают clientFn и outputFn, чтобы Client и Output
// создавались после разбора PersistentFlags.
package cli
