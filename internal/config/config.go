package config

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DBPathKey      = "db.path"
	DBBatchSizeKey = "db.batch_size"
	LoadPathsKey   = "load.paths"
	LoadWorkersKey = "load.workers"
	LogLevelKey    = "log.level"
	LogFormatKey   = "log.format"
	LocaleKey      = "display.locale"
)

func defaults() map[string]any {
	return map[string]any{
		DBPathKey:      "",
		DBBatchSizeKey: 25,
		LoadWorkersKey: runtime.NumCPU(),
		LogLevelKey:    "info",
		LogFormatKey:   "text",
		LocaleKey:      "en",
	}
}

type Config struct {
	k *koanf.Koanf
}

// Default returns a config holding only the built-in defaults.
func Default() Config {
	k := koanf.New(".")
	k.Load(confmap.Provider(defaults(), "."), nil)
	return Config{k}
}

// LoadConfig layers a YAML file over the defaults. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := cfg.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) DBPath() string {
	return c.k.String(DBPathKey)
}

func (c Config) BatchSize() int {
	if n := c.k.Int(DBBatchSizeKey); n > 0 {
		return n
	}
	return 25
}

func (c Config) Workers() int {
	if n := c.k.Int(LoadWorkersKey); n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// PromptExtractPaths lists the directories the loader walks when run from config.
func (c Config) PromptExtractPaths() []string {
	return c.k.Strings(LoadPathsKey)
}

func (c Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.k.String(LogLevelKey))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c Config) LogFormat() string {
	return strings.ToLower(c.k.String(LogFormatKey))
}

func (c Config) Locale() string {
	return c.k.String(LocaleKey)
}
