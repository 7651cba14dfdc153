package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config carries the user-tunable settings around the store. Precedence:
// environment variables over the YAML file over zero values; the caller
// applies its own defaults on top.
type Config struct {
	DatabasePath       string `yaml:"database_path"`
	BackupDir          string `yaml:"backup_dir"`
	CacheRetentionDays int    `yaml:"cache_retention_days"`
	Verbose            bool   `yaml:"verbose"`
}

const (
	envDBPath    = "NUTRILOG_DB"
	envBackupDir = "NUTRILOG_BACKUP_DIR"
	envRetention = "NUTRILOG_CACHE_RETENTION_DAYS"
)

// Load reads the YAML config at path (missing file is not an error) and then
// overlays environment variables, including any .env file in the working
// directory.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	_ = godotenv.Load()

	if v := os.Getenv(envDBPath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(envBackupDir); v != "" {
		cfg.BackupDir = v
	}
	if v := os.Getenv(envRetention); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.CacheRetentionDays = days
		}
	}
	return cfg, nil
}
