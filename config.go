package n8nstatus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// DefaultLimit is the number of executions shown when neither the flag nor
// the config file sets one.
const DefaultLimit = 15

const (
	configFileName = ".n8n-status-config.ini"
	configSection  = "n8n-status"
	envDBPath      = "N8N_DB_PATH"
)

// Config is the fully resolved, immutable configuration for one invocation.
// It is built once in main and passed down; nothing below it reads flags,
// files, or the environment.
type Config struct {
	DBPath string
	Limit  int
}

// fileConfig holds the raw values read from a config file, before merging
// with flags and the environment.
type fileConfig struct {
	dbPath string
	limit  int
}

// loadFileConfig reads .n8n-status-config.ini from the current directory,
// falling back to the home directory. A missing file is not an error; an
// unreadable one is reported and otherwise ignored.
func loadFileConfig(logger *slog.Logger) fileConfig {
	var cfg fileConfig

	path := findConfigFile()
	if path == "" {
		return cfg
	}

	file, err := ini.Load(path)
	if err != nil {
		logger.Warn("could not load config file", "path", path, "error", err)
		return cfg
	}

	section := file.Section(configSection)
	if dbPath := section.Key("db_path").String(); dbPath != "" {
		cfg.dbPath = expandHome(dbPath)
	}
	if limit := section.Key("limit").MustInt(0); limit > 0 {
		cfg.limit = limit
	}
	logger.Debug("loaded config file", "path", path)
	return cfg
}

func findConfigFile() string {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName
	}
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// expandHome expands a leading ~ so config files can use paths like
// ~/.n8n/database.sqlite.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
		}
	}
	return path
}

// ResolveConfig merges the flag values with the environment, the config
// file, and the built-in defaults into a Config. Database path priority:
// explicit flag, N8N_DB_PATH, config file, then well-known locations. A
// flagLimit below zero means the flag was not set.
func ResolveConfig(flagDBPath string, flagLimit int, logger *slog.Logger) (Config, error) {
	fileCfg := loadFileConfig(logger)

	limit := DefaultLimit
	if fileCfg.limit > 0 {
		limit = fileCfg.limit
	}
	if flagLimit >= 0 {
		limit = flagLimit
	}

	dbPath, err := resolveDBPath(flagDBPath, fileCfg, logger)
	if err != nil {
		return Config{}, err
	}
	return Config{DBPath: dbPath, Limit: limit}, nil
}

func resolveDBPath(flagDBPath string, fileCfg fileConfig, logger *slog.Logger) (string, error) {
	if flagDBPath != "" {
		return flagDBPath, nil
	}

	if envPath := os.Getenv(envDBPath); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			logger.Info("using database path from environment", "path", envPath)
			return envPath, nil
		}
	}

	if fileCfg.dbPath != "" {
		if _, err := os.Stat(fileCfg.dbPath); err == nil {
			logger.Info("using database path from config file", "path", fileCfg.dbPath)
			return fileCfg.dbPath, nil
		}
	}

	var probes []string
	if home, err := os.UserHomeDir(); err == nil {
		probes = append(probes, filepath.Join(home, ".n8n", "database.sqlite"))
	}
	probes = append(probes, "database.sqlite")
	for _, path := range probes {
		if _, err := os.Stat(path); err == nil {
			logger.Info("found database", "path", path)
			return path, nil
		}
	}

	return "", fmt.Errorf("no n8n database found; specify one with --db-path")
}
