package jira

import (
	"github.com/shaiso/jira-worklog/internal/config"
)

// Ключи окружения.
const (
	EnvProtocol   = "jira_protocol"
	EnvHost       = "jira_host"
	EnvPort       = "jira_port"
	EnvUser       = "jira_user"
	EnvPassword   = "jira_password"
	EnvAPIVersion = "jira_apiVers"
	EnvStrictSSL  = "jira_strictSSL"
)

// Значения по умолчанию.
const (
	DefaultProtocol   = "https"
	DefaultPort       = "443"
	DefaultAPIVersion = "2"
)

// Auth — параметры подключения к Jira.
type Auth struct {
	Protocol   string
	Host       string
	Port       string
	User       string
	Password   string
	APIVersion string

	// StrictSSL — проверять сертификат сервера.
	StrictSSL bool
}

// AuthFromEnv собирает Auth из окружения.
// Если jira_host, jira_user или jira_password не заданы, возвращает *ConfigError.
func AuthFromEnv(env config.Environment) (Auth, error) {
	auth := Auth{
		Protocol:   config.Get(env, EnvProtocol, DefaultProtocol),
		Host:       config.Get(env, EnvHost, ""),
		Port:       config.Get(env, EnvPort, DefaultPort),
		User:       config.Get(env, EnvUser, ""),
		Password:   config.Get(env, EnvPassword, ""),
		APIVersion: config.Get(env, EnvAPIVersion, DefaultAPIVersion),
		StrictSSL:  config.GetBool(env, EnvStrictSSL, true),
	}

	var missing []string
	if auth.Host == "" {
		missing = append(missing, EnvHost)
	}
	if auth.User == "" {
		missing = append(missing, EnvUser)
	}
	if auth.Password == "" {
		missing = append(missing, EnvPassword)
	}
	if len(missing) > 0 {
		return Auth{}, &ConfigError{Missing: missing}
	}

	return auth, nil
}

// BaseURL возвращает корень REST API: {protocol}://{host}:{port}/rest/api/{apiVers}.
func (a Auth) BaseURL() string {
	return a.Protocol + "://" + a.Host + ":" + a.Port + "/rest/api/" + a.APIVersion
}
