package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/nutrilog/nutrilog/internal/model"
)

// UpsertFoodTemplate saves a reusable food keyed by (name, brand). Saving an
// existing pair bumps frequency by one, refreshes last_used and rewrites the
// nutrition facts; a first save starts at frequency 1.
func (s *Store) UpsertFoodTemplate(t model.FoodTemplate) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return 0, invalidField("name", "is required")
	}
	t.Brand = strings.TrimSpace(t.Brand)
	if err := validateMacros(t.Calories, t.ProteinG, t.CarbsG, t.FatG); err != nil {
		return 0, err
	}
	if t.ServingSize != nil && *t.ServingSize <= 0 {
		return 0, invalidField("serving_size", "must be > 0 when set")
	}

	if _, err := db.Exec(`
INSERT INTO food_templates(name, brand, calories, protein_g, carbs_g, fat_g, category, serving_size, serving_unit, barcode, frequency, last_used)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
ON CONFLICT(name, brand) DO UPDATE SET
  calories = excluded.calories,
  protein_g = excluded.protein_g,
  carbs_g = excluded.carbs_g,
  fat_g = excluded.fat_g,
  category = excluded.category,
  serving_size = excluded.serving_size,
  serving_unit = excluded.serving_unit,
  barcode = excluded.barcode,
  frequency = frequency + 1,
  last_used = CURRENT_TIMESTAMP
`, t.Name, t.Brand, t.Calories, t.ProteinG, t.CarbsG, t.FatG,
		nullableString(t.Category), nullableFloat(t.ServingSize), nullableString(t.ServingUnit), nullableString(t.Barcode)); err != nil {
		return 0, fmt.Errorf("upsert food template %q: %w", t.Name, err)
	}

	var id int64
	if err := db.QueryRow(`SELECT id FROM food_templates WHERE name = ? AND brand = ?`, t.Name, t.Brand).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve template id for %q: %w", t.Name, err)
	}
	return id, nil
}

const templateColumns = `id, name, brand, calories, protein_g, carbs_g, fat_g, IFNULL(category, ''), serving_size, IFNULL(serving_unit, ''), IFNULL(barcode, ''), frequency, last_used, created_at`

func scanTemplates(rows *sql.Rows) ([]model.FoodTemplate, error) {
	templates := make([]model.FoodTemplate, 0)
	for rows.Next() {
		var t model.FoodTemplate
		var servingSize sql.NullFloat64
		var lastUsed sql.NullString
		var created string
		if err := rows.Scan(&t.ID, &t.Name, &t.Brand, &t.Calories, &t.ProteinG, &t.CarbsG, &t.FatG,
			&t.Category, &servingSize, &t.ServingUnit, &t.Barcode, &t.Frequency, &lastUsed, &created); err != nil {
			return nil, fmt.Errorf("scan food template: %w", err)
		}
		if servingSize.Valid {
			v := servingSize.Float64
			t.ServingSize = &v
		}
		if lastUsed.Valid && lastUsed.String != "" {
			used := parseStoredTime(lastUsed.String)
			t.LastUsed = &used
		}
		t.CreatedAt = parseStoredTime(created)
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food templates: %w", err)
	}
	return templates, nil
}

// FrequentFoodTemplates lists the most used templates.
func (s *Store) FrequentFoodTemplates(limit int) ([]model.FoodTemplate, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
SELECT `+templateColumns+`
FROM food_templates
ORDER BY frequency DESC, name ASC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list frequent templates: %w", err)
	}
	defer rows.Close()
	return scanTemplates(rows)
}

// SearchFoodTemplates matches name or brand by substring.
func (s *Store) SearchFoodTemplates(query string, limit int) ([]model.FoodTemplate, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidField("query", "is required")
	}
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	rows, err := db.Query(`
SELECT `+templateColumns+`
FROM food_templates
WHERE name LIKE ? OR brand LIKE ?
ORDER BY frequency DESC, last_used DESC
LIMIT ?
`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search templates %q: %w", query, err)
	}
	defer rows.Close()
	return scanTemplates(rows)
}

// TemplateByBarcode looks up a template by an exact barcode.
func (s *Store) TemplateByBarcode(barcode string) (*model.FoodTemplate, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, invalidField("barcode", "is required")
	}
	rows, err := db.Query(`
SELECT `+templateColumns+`
FROM food_templates
WHERE barcode = ?
LIMIT 1
`, barcode)
	if err != nil {
		return nil, fmt.Errorf("lookup template by barcode: %w", err)
	}
	defer rows.Close()
	templates, err := scanTemplates(rows)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, nil
	}
	return &templates[0], nil
}

// DeleteFoodTemplate removes a template; templates are only ever deleted by
// explicit maintenance, never by normal logging.
func (s *Store) DeleteFoodTemplate(id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if id <= 0 {
		return invalidField("id", "must be > 0")
	}
	res, err := db.Exec(`DELETE FROM food_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for template %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("template %d not found", id)
	}
	return nil
}
