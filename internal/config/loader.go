package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:default} patterns in a string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		varName := submatch[1]
		defaultVal := ""
		if len(submatch) >= 3 {
			defaultVal = submatch[2]
		}
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return defaultVal
	})
}

// LoadFile reads a YAML file, expands env vars, and unmarshals into dest.
func LoadFile(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), dest); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// envOverrides are the process-level settings a deployment supplies
// without a config file. Zero values leave the loaded config untouched.
type envOverrides struct {
	Port         int    `envconfig:"PORT"`
	OllamaURL    string `envconfig:"OLLAMA_URL"`
	Environment  string `envconfig:"APP_ENV"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	RedisAddr    string `envconfig:"REDIS_ADDR"`
	EventsSource string `envconfig:"EVENTS_SOURCE"`
}

// ApplyEnv overlays environment variables on cfg.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if env.Port != 0 {
		cfg.Server.Port = env.Port
	}
	if env.OllamaURL != "" {
		cfg.Ollama.BaseURL = env.OllamaURL
	}
	if env.Environment != "" {
		cfg.Environment = env.Environment
	}
	if env.LogLevel != "" {
		cfg.Telemetry.LogLevel = env.LogLevel
	}
	if env.DatabaseURL != "" {
		cfg.Database.URL = env.DatabaseURL
	}
	if env.RedisAddr != "" {
		cfg.Redis.Address = env.RedisAddr
	}
	if env.EventsSource != "" {
		cfg.Events.Source = env.EventsSource
	}
	return nil
}

// Loader manages configuration loading and hot-reload via fsnotify.
// An empty path means defaults plus environment only.
type Loader struct {
	path     string
	mu       sync.RWMutex
	cfg      *Config
	watchers []func()
	logger   *slog.Logger
}

func NewLoader(path string, logger *slog.Logger) *Loader {
	return &Loader{
		path:   path,
		logger: logger,
	}
}

func (l *Loader) Load() error {
	cfg := DefaultConfig()
	if l.path != "" {
		if err := LoadFile(l.path, cfg); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()

	l.logger.Info("configuration loaded", "file", l.path, "environment", cfg.Environment)
	return nil
}

func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// OnReload registers a callback that fires after config is reloaded.
func (l *Loader) OnReload(fn func()) {
	l.mu.Lock()
	l.watchers = append(l.watchers, fn)
	l.mu.Unlock()
}

// Watch reloads when the config file or the events file changes.
// It is a no-op when neither is backed by a file.
func (l *Loader) Watch() error {
	files := map[string]bool{}
	if l.path != "" {
		files[filepath.Clean(l.path)] = true
	}
	if cfg := l.Config(); cfg != nil && cfg.Events.Source == EventsSourceFile && cfg.Events.File != "" {
		files[filepath.Clean(cfg.Events.File)] = true
	}
	if len(files) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	dirs := map[string]bool{}
	for f := range files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watch config dir %s: %w", dir, err)
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !files[filepath.Clean(event.Name)] {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					l.logger.Info("config file changed, reloading", "file", event.Name)
					if err := l.Load(); err != nil {
						l.logger.Error("failed to reload config", "error", err)
						continue
					}
					l.notify()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Error("fsnotify error", "error", err)
			}
		}
	}()

	return nil
}

func (l *Loader) notify() {
	l.mu.RLock()
	fns := append([]func(){}, l.watchers...)
	l.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}
