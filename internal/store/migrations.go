package store

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profile (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  age INTEGER NOT NULL CHECK(age >= 0),
  gender TEXT NOT NULL CHECK(gender IN ('male', 'female')),
  height_cm REAL NOT NULL CHECK(height_cm > 0),
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  activity_level TEXT NOT NULL CHECK(activity_level IN ('sedentary', 'light', 'moderate', 'active', 'very_active')),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS food_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  calories REAL NOT NULL CHECK(calories >= 0),
  protein_g REAL NOT NULL CHECK(protein_g >= 0),
  carbs_g REAL NOT NULL CHECK(carbs_g >= 0),
  fat_g REAL NOT NULL CHECK(fat_g >= 0),
  meal_type TEXT NOT NULL CHECK(meal_type IN ('breakfast', 'lunch', 'dinner', 'snack')),
  entry_date TEXT NOT NULL,
  quantity REAL,
  unit TEXT,
  notes TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_food_entries_date ON food_entries(entry_date);
CREATE INDEX IF NOT EXISTS idx_food_entries_meal_type ON food_entries(meal_type);
CREATE INDEX IF NOT EXISTS idx_food_entries_date_meal ON food_entries(entry_date, meal_type);
CREATE INDEX IF NOT EXISTS idx_food_entries_name ON food_entries(name);

CREATE TABLE IF NOT EXISTS health_goals (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  target_calories REAL NOT NULL CHECK(target_calories > 0),
  target_protein_g REAL NOT NULL CHECK(target_protein_g >= 0),
  target_carbs_g REAL NOT NULL CHECK(target_carbs_g >= 0),
  target_fat_g REAL NOT NULL CHECK(target_fat_g >= 0),
  goal_type TEXT CHECK(goal_type IN ('maintain', 'lose', 'gain')),
  notes TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_health_goals_is_active ON health_goals(is_active);
CREATE INDEX IF NOT EXISTS idx_health_goals_created_at ON health_goals(created_at);

CREATE TABLE IF NOT EXISTS food_templates (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  calories REAL NOT NULL CHECK(calories >= 0),
  protein_g REAL NOT NULL CHECK(protein_g >= 0),
  carbs_g REAL NOT NULL CHECK(carbs_g >= 0),
  fat_g REAL NOT NULL CHECK(fat_g >= 0),
  category TEXT,
  serving_size REAL,
  serving_unit TEXT,
  frequency INTEGER NOT NULL DEFAULT 0 CHECK(frequency >= 0),
  last_used DATETIME,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(name, brand)
);

CREATE INDEX IF NOT EXISTS idx_food_templates_name ON food_templates(name);
CREATE INDEX IF NOT EXISTS idx_food_templates_frequency ON food_templates(frequency DESC);
CREATE INDEX IF NOT EXISTS idx_food_templates_last_used ON food_templates(last_used DESC);

CREATE TABLE IF NOT EXISTS nutrition_cache (
  cache_date TEXT PRIMARY KEY,
  total_calories REAL NOT NULL DEFAULT 0,
  total_protein_g REAL NOT NULL DEFAULT 0,
  total_carbs_g REAL NOT NULL DEFAULT 0,
  total_fat_g REAL NOT NULL DEFAULT 0,
  last_updated DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_nutrition_cache_date ON nutrition_cache(cache_date);
`,
	},
	{
		version: 2,
		name:    "template_barcode",
		sql: `
ALTER TABLE food_templates ADD COLUMN barcode TEXT;

CREATE INDEX IF NOT EXISTS idx_food_templates_barcode ON food_templates(barcode);
`,
	},
	{
		version: 3,
		name:    "cache_meal_breakdown",
		sql: `
ALTER TABLE nutrition_cache ADD COLUMN meal_breakdown_json TEXT NOT NULL DEFAULT '';
`,
	},
}

func (s *Store) applyMigrations() error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return &MigrationError{Version: 0, Name: "schema_migrations", Err: err}
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return &MigrationError{Version: m.version, Name: m.name, Err: err}
		}

		tx, err := db.Begin()
		if err != nil {
			return &MigrationError{Version: m.version, Name: m.name, Err: err}
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return &MigrationError{Version: m.version, Name: m.name, Err: err}
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return &MigrationError{Version: m.version, Name: m.name, Err: err}
		}
		if err := tx.Commit(); err != nil {
			return &MigrationError{Version: m.version, Name: m.name, Err: err}
		}
		s.log.Info("applied schema migration", zap.Int("version", m.version), zap.String("name", m.name))
	}
	return nil
}

// SchemaVersion reports the highest applied migration version.
func (s *Store) SchemaVersion() (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var version int
	if err := db.QueryRow(`SELECT IFNULL(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
