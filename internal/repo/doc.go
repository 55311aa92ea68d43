// Package repo хранит вызовы шагов в PostgreSQL (pgx/v5).
//
// Хранилище — журнал: одна строка step_invocations на вызов,
// со входами, статусом, результатом и видом ошибки.
// Схема создаётся EnsureSchema при старте процесса.
package repo
