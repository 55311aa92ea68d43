// Package jira — минимальный клиент Jira REST API для обновления worklog.
//
// Клиент выполняет ровно один запрос на вызов:
//
//	PUT {protocol}://{host}:{port}/rest/api/{apiVers}/issue/{issue}/worklog/{id}
//
// Повторов нет, все ошибки терминальные. Классификация ответа:
//
//	200      — тело ответа (JSON или строка)
//	400      — ErrInvalidInput
//	403      — ErrForbidden
//	прочие   — ErrUnexpectedStatus
//	сеть     — ErrTransport
//
// Kind переводит любую ошибку в короткую метку для метрик и хранилища.
package jira
