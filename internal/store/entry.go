package store

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nutrilog/nutrilog/internal/model"
)

func validateEntry(e *model.FoodEntry) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return invalidField("name", "is required")
	}
	if err := validateMacros(e.Calories, e.ProteinG, e.CarbsG, e.FatG); err != nil {
		return err
	}
	if !model.ValidMealType(e.MealType) {
		return invalidField("meal_type", "must be breakfast, lunch, dinner or snack")
	}
	if err := validateDate("date", e.Date); err != nil {
		return err
	}
	if e.Quantity != nil && *e.Quantity <= 0 {
		return invalidField("quantity", "must be > 0 when set")
	}
	e.Date = strings.TrimSpace(e.Date)
	return nil
}

// InsertFoodEntry stores a logged food and synchronously refreshes the
// per-day cache for the entry's date.
func (s *Store) InsertFoodEntry(e model.FoodEntry) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	if err := validateEntry(&e); err != nil {
		return 0, err
	}

	res, err := db.Exec(`
INSERT INTO food_entries(name, calories, protein_g, carbs_g, fat_g, meal_type, entry_date, quantity, unit, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, e.Name, e.Calories, e.ProteinG, e.CarbsG, e.FatG, e.MealType, e.Date,
		nullableFloat(e.Quantity), nullableString(e.Unit), nullableString(e.Notes))
	if err != nil {
		return 0, fmt.Errorf("insert food entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve inserted entry id: %w", err)
	}
	s.refreshCache(e.Date)
	return id, nil
}

// UpdateFoodEntry rewrites an entry by id. When the entry moved between
// dates, both the old and the new day cache are refreshed.
func (s *Store) UpdateFoodEntry(e model.FoodEntry) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if e.ID <= 0 {
		return invalidField("id", "must be > 0")
	}
	if err := validateEntry(&e); err != nil {
		return err
	}

	var oldDate string
	if err := db.QueryRow(`SELECT entry_date FROM food_entries WHERE id = ?`, e.ID).Scan(&oldDate); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("food entry %d not found", e.ID)
		}
		return fmt.Errorf("find food entry %d: %w", e.ID, err)
	}

	res, err := db.Exec(`
UPDATE food_entries
SET name = ?, calories = ?, protein_g = ?, carbs_g = ?, fat_g = ?, meal_type = ?, entry_date = ?,
    quantity = ?, unit = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, e.Name, e.Calories, e.ProteinG, e.CarbsG, e.FatG, e.MealType, e.Date,
		nullableFloat(e.Quantity), nullableString(e.Unit), nullableString(e.Notes), e.ID)
	if err != nil {
		return fmt.Errorf("update food entry %d: %w", e.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for entry %d: %w", e.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("food entry %d not found", e.ID)
	}

	s.refreshCache(e.Date)
	if oldDate != e.Date {
		s.refreshCache(oldDate)
	}
	return nil
}

func (s *Store) DeleteFoodEntry(id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if id <= 0 {
		return invalidField("id", "must be > 0")
	}
	var date string
	if err := db.QueryRow(`SELECT entry_date FROM food_entries WHERE id = ?`, id).Scan(&date); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("food entry %d not found", id)
		}
		return fmt.Errorf("find food entry %d: %w", id, err)
	}
	if _, err := db.Exec(`DELETE FROM food_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete food entry %d: %w", id, err)
	}
	s.refreshCache(date)
	return nil
}

// refreshCache keeps the derived cache coherent after a write. Cache
// failures never fail the entry mutation; the summary path recomputes on
// demand instead.
func (s *Store) refreshCache(date string) {
	if err := s.RecomputeDay(date); err != nil {
		s.log.Warn("day cache refresh failed", zap.String("date", date), zap.Error(err))
	}
}

const entryColumns = `id, name, calories, protein_g, carbs_g, fat_g, meal_type, entry_date, quantity, IFNULL(unit, ''), IFNULL(notes, ''), created_at, updated_at`

func scanEntries(rows *sql.Rows) ([]model.FoodEntry, error) {
	entries := make([]model.FoodEntry, 0)
	for rows.Next() {
		var e model.FoodEntry
		var quantity sql.NullFloat64
		var created, updated string
		if err := rows.Scan(&e.ID, &e.Name, &e.Calories, &e.ProteinG, &e.CarbsG, &e.FatG,
			&e.MealType, &e.Date, &quantity, &e.Unit, &e.Notes, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan food entry: %w", err)
		}
		if quantity.Valid {
			v := quantity.Float64
			e.Quantity = &v
		}
		e.CreatedAt = parseStoredTime(created)
		e.UpdatedAt = parseStoredTime(updated)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food entries: %w", err)
	}
	return entries, nil
}

func (s *Store) queryEntries(query string, args ...any) ([]model.FoodEntry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list food entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Store) EntriesByDate(date string) ([]model.FoodEntry, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}
	return s.queryEntries(`
SELECT `+entryColumns+`
FROM food_entries
WHERE entry_date = ?
ORDER BY meal_type ASC, name ASC
`, date)
}

func (s *Store) EntriesByRange(from, to string) ([]model.FoodEntry, error) {
	if err := validateDate("from", from); err != nil {
		return nil, err
	}
	if err := validateDate("to", to); err != nil {
		return nil, err
	}
	if from > to {
		return nil, invalidField("from", "must be <= to")
	}
	return s.queryEntries(`
SELECT `+entryColumns+`
FROM food_entries
WHERE entry_date >= ? AND entry_date <= ?
ORDER BY entry_date DESC, meal_type ASC, name ASC
`, from, to)
}

func (s *Store) EntriesByMealType(date, meal string) ([]model.FoodEntry, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}
	if !model.ValidMealType(meal) {
		return nil, invalidField("meal_type", "must be breakfast, lunch, dinner or snack")
	}
	return s.queryEntries(`
SELECT `+entryColumns+`
FROM food_entries
WHERE entry_date = ? AND meal_type = ?
ORDER BY name ASC
`, date, meal)
}

func (s *Store) AllEntries() ([]model.FoodEntry, error) {
	return s.queryEntries(`
SELECT ` + entryColumns + `
FROM food_entries
ORDER BY entry_date DESC, meal_type ASC, name ASC
`)
}
