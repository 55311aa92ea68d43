package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile читает окружение из YAML-файла вида:
//
//	jira_host: jira.example.com
//	jira_port: 8443
//	jira_user: bot
//	jira_password: secret
//
// Скалярные значения любых типов приводятся к строке.
func LoadFile(path string) (MapEnv, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by operator
	if err != nil {
		return nil, fmt.Errorf("open env file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var raw map[string]yaml.Node
	if err := yaml.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode env file %s: %w", path, err)
	}

	env := make(MapEnv, len(raw))
	for key, node := range raw {
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("env file %s: key %q must be a scalar", path, key)
		}
		env[key] = node.Value
	}

	return env, nil
}

// Load собирает окружение шагов: значения из файла перекрывают окружение процесса.
// Пустой path — только окружение процесса.
func Load(path string) (Environment, error) {
	if path == "" {
		return OSEnv(), nil
	}

	fileEnv, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Chain(fileEnv, OSEnv()), nil
}
