package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Reloadable — окружение из файла поверх base, перечитываемое при изменении файла.
//
// Используется долгоживущими процессами (API, worker): ротация jira_password
// в файле подхватывается без перезапуска. Вызовы, уже прочитавшие окружение,
// доработают со старыми значениями.
type Reloadable struct {
	path   string
	base   Environment
	logger *slog.Logger
	file   atomic.Pointer[MapEnv]
}

// NewReloadable читает файл и возвращает окружение. Следить за файлом начинает Watch.
func NewReloadable(path string, base Environment, logger *slog.Logger) (*Reloadable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Reloadable{
		path:   filepath.Clean(path),
		base:   base,
		logger: logger.With("env_file", path),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Lookup реализует Environment: сначала файл, затем base.
func (r *Reloadable) Lookup(key string) (string, bool) {
	if file := r.file.Load(); file != nil {
		if v, ok := (*file).Lookup(key); ok && v != "" {
			return v, true
		}
	}
	if r.base == nil {
		return "", false
	}
	return r.base.Lookup(key)
}

// Reload перечитывает файл. При ошибке остаются прежние значения.
func (r *Reloadable) Reload() error {
	env, err := LoadFile(r.path)
	if err != nil {
		return err
	}
	r.file.Store(&env)
	return nil
}

// Watch следит за файлом до отмены ctx.
//
// Наблюдается каталог, а не файл: редакторы и ConfigMap в Kubernetes
// заменяют файл через rename, и наблюдение за самим файлом теряется.
func (r *Reloadable) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("watch %s: %w", r.path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := r.Reload(); err != nil {
				r.logger.Warn("env file reload failed, keeping previous values", "error", err)
				continue
			}
			r.logger.Info("env file reloaded")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("env file watcher error", "error", err)
		}
	}
}
