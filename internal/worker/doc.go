// Package worker выполняет вызовы шагов.
//
// # Обзор
//
// Executor — общий исполнитель вызова: RUNNING → шаг → SUCCEEDED/FAILED,
// с сохранением каждого перехода в InvocationStore. API использует его
// для синхронных вызовов, Worker — для асинхронных.
//
// Worker потребляет step.invoke из очереди steps.invoke:
//
//	w := worker.New(worker.Config{
//	    Store:     repo.NewInvocationRepo(pool),
//	    Publisher: publisher,
//	    Conn:      mqConn,
//	    Env:       env,
//	    Logger:    logger,
//	})
//	if err := w.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// # Обработка сообщения
//
//  1. Загрузка вызова по invocation_id (или создание, если его нет)
//  2. Пропуск, если вызов уже завершён (повторная доставка)
//  3. Executor.Execute
//  4. Публикация step.result
//
// # Ошибки
//
// Шаги не повторяются. Исход шага всегда сохраняется в вызове;
// сообщение отклоняется (в DLQ) только при сбое хранилища.
package worker
