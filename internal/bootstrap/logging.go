package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoggingConfigPath returns the logging configuration file under home.
func LoggingConfigPath(home string) string {
	return filepath.Join(home, "conf", "logging.yaml")
}

// InitLogging builds the process logger from <home>/conf/logging.yaml.
// The file is a YAML rendering of zap.Config applied on top of the
// production defaults; keys it omits keep their default. A non-empty level
// overrides the level from the file.
func InitLogging(home, level string) (*zap.Logger, error) {
	path := LoggingConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logging config: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse logging config %s: %w", path, err)
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("logging level override: %w", err)
		}
		cfg.Level = lvl
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger from %s: %w", path, err)
	}
	return logger, nil
}
