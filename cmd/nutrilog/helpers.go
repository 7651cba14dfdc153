package nutrilog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/app"
	"github.com/nutrilog/nutrilog/internal/config"
	"github.com/nutrilog/nutrilog/internal/logger"
	"github.com/nutrilog/nutrilog/internal/store"
)

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		defaultPath, err := app.DefaultConfigPath()
		if err == nil {
			path = defaultPath
		}
	}
	return config.Load(path)
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.DatabasePath != "" {
		return cfg.DatabasePath, nil
	}
	return app.DefaultDBPath()
}

func resolveBackupDir() string {
	cfg, err := loadConfig()
	if err != nil {
		return ""
	}
	return cfg.BackupDir
}

func withStore(run func(*store.Store) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	st, err := store.Open(path, logger.L())
	if err != nil {
		return err
	}
	defer st.Close()
	return run(st)
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func dateOrToday(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now().Format("2006-01-02")
	}
	return value
}
