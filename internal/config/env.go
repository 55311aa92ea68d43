// Package config предоставляет доступ к окружению шага.
//
// Окружение — плоский набор ключ/значение (jira_host, jira_user, ...),
// который хост передаёт шагу. Источники можно комбинировать:
//
//	env := config.Chain(fileEnv, config.OSEnv())
//	host := config.Get(env, "jira_host", "")
package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment — источник значений окружения.
type Environment interface {
	// Lookup возвращает значение ключа и признак его наличия.
	Lookup(key string) (string, bool)
}

// Get возвращает значение ключа или def, если ключ не задан или пуст.
func Get(env Environment, key, def string) string {
	if env == nil {
		return def
	}
	if v, ok := env.Lookup(key); ok && v != "" {
		return v
	}
	return def
}

// GetInt возвращает целое значение ключа или def.
func GetInt(env Environment, key string, def int) int {
	v := Get(env, key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// GetBool возвращает булево значение ключа или def.
func GetBool(env Environment, key string, def bool) bool {
	v := Get(env, key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// MapEnv — окружение из map.
type MapEnv map[string]string

// Lookup реализует Environment.
func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// osEnv — окружение процесса.
type osEnv struct{}

// OSEnv возвращает окружение процесса (os.LookupEnv).
func OSEnv() Environment {
	return osEnv{}
}

// Lookup реализует Environment.
func (osEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// chainEnv — цепочка окружений, первое найденное непустое значение выигрывает.
type chainEnv []Environment

// Chain объединяет окружения. Порядок аргументов = приоритет.
func Chain(envs ...Environment) Environment {
	out := make(chainEnv, 0, len(envs))
	for _, e := range envs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Lookup реализует Environment.
func (c chainEnv) Lookup(key string) (string, bool) {
	for _, e := range c {
		if v, ok := e.Lookup(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
