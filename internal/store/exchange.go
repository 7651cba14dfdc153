package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nutrilog/nutrilog/internal/model"
)

// Document is the whole-store exchange format. Field names are the wire
// contract: import accepts exactly what export produces. The derived
// nutrition cache is excluded and rebuilt lazily after import.
type Document struct {
	ExportDate    string            `json:"exportDate"`
	Version       int               `json:"version"`
	Profile       []ProfileRow      `json:"profile"`
	FoodEntries   []FoodEntryRow    `json:"foodEntries"`
	HealthGoals   []HealthGoalRow   `json:"healthGoals"`
	FoodTemplates []FoodTemplateRow `json:"foodTemplates"`
}

type ProfileRow struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	ActivityLevel string  `json:"activity_level"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type FoodEntryRow struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Calories  float64  `json:"calories"`
	ProteinG  float64  `json:"protein_g"`
	CarbsG    float64  `json:"carbs_g"`
	FatG      float64  `json:"fat_g"`
	MealType  string   `json:"meal_type"`
	Date      string   `json:"date"`
	Quantity  *float64 `json:"quantity,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type HealthGoalRow struct {
	ID             int64   `json:"id"`
	TargetCalories float64 `json:"target_calories"`
	TargetProteinG float64 `json:"target_protein_g"`
	TargetCarbsG   float64 `json:"target_carbs_g"`
	TargetFatG     float64 `json:"target_fat_g"`
	GoalType       string  `json:"goal_type,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type FoodTemplateRow struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand,omitempty"`
	Calories    float64  `json:"calories"`
	ProteinG    float64  `json:"protein_g"`
	CarbsG      float64  `json:"carbs_g"`
	FatG        float64  `json:"fat_g"`
	Category    string   `json:"category,omitempty"`
	ServingSize *float64 `json:"serving_size,omitempty"`
	ServingUnit string   `json:"serving_unit,omitempty"`
	Barcode     string   `json:"barcode,omitempty"`
	Frequency   int      `json:"frequency"`
	LastUsed    string   `json:"last_used,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// ExportDocument snapshots all four authoritative tables plus the schema
// version and a timestamp.
func (s *Store) ExportDocument() (*Document, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	version, err := s.SchemaVersion()
	if err != nil {
		return nil, err
	}
	doc := &Document{
		ExportDate:    time.Now().UTC().Format(time.RFC3339),
		Version:       version,
		Profile:       make([]ProfileRow, 0),
		FoodEntries:   make([]FoodEntryRow, 0),
		HealthGoals:   make([]HealthGoalRow, 0),
		FoodTemplates: make([]FoodTemplateRow, 0),
	}

	profileRows, err := db.Query(`SELECT id, name, age, gender, height_cm, weight_kg, activity_level, created_at, updated_at FROM profile ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("export profile: %w", err)
	}
	for profileRows.Next() {
		var r ProfileRow
		if err := profileRows.Scan(&r.ID, &r.Name, &r.Age, &r.Gender, &r.HeightCm, &r.WeightKg, &r.ActivityLevel, &r.CreatedAt, &r.UpdatedAt); err != nil {
			_ = profileRows.Close()
			return nil, fmt.Errorf("scan export profile: %w", err)
		}
		doc.Profile = append(doc.Profile, r)
	}
	_ = profileRows.Close()

	entryRows, err := db.Query(`
SELECT id, name, calories, protein_g, carbs_g, fat_g, meal_type, entry_date, quantity, IFNULL(unit, ''), IFNULL(notes, ''), created_at, updated_at
FROM food_entries
ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("export food entries: %w", err)
	}
	for entryRows.Next() {
		var r FoodEntryRow
		var quantity sql.NullFloat64
		if err := entryRows.Scan(&r.ID, &r.Name, &r.Calories, &r.ProteinG, &r.CarbsG, &r.FatG,
			&r.MealType, &r.Date, &quantity, &r.Unit, &r.Notes, &r.CreatedAt, &r.UpdatedAt); err != nil {
			_ = entryRows.Close()
			return nil, fmt.Errorf("scan export entry: %w", err)
		}
		if quantity.Valid {
			v := quantity.Float64
			r.Quantity = &v
		}
		doc.FoodEntries = append(doc.FoodEntries, r)
	}
	_ = entryRows.Close()

	goalRows, err := db.Query(`
SELECT id, target_calories, target_protein_g, target_carbs_g, target_fat_g, IFNULL(goal_type, ''), IFNULL(notes, ''), is_active, created_at, updated_at
FROM health_goals
ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("export health goals: %w", err)
	}
	for goalRows.Next() {
		var r HealthGoalRow
		var isActive int
		if err := goalRows.Scan(&r.ID, &r.TargetCalories, &r.TargetProteinG, &r.TargetCarbsG, &r.TargetFatG,
			&r.GoalType, &r.Notes, &isActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			_ = goalRows.Close()
			return nil, fmt.Errorf("scan export goal: %w", err)
		}
		r.IsActive = isActive == 1
		doc.HealthGoals = append(doc.HealthGoals, r)
	}
	_ = goalRows.Close()

	templateRows, err := db.Query(`
SELECT id, name, brand, calories, protein_g, carbs_g, fat_g, IFNULL(category, ''), serving_size, IFNULL(serving_unit, ''), IFNULL(barcode, ''), frequency, IFNULL(last_used, ''), created_at
FROM food_templates
ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("export food templates: %w", err)
	}
	for templateRows.Next() {
		var r FoodTemplateRow
		var servingSize sql.NullFloat64
		if err := templateRows.Scan(&r.ID, &r.Name, &r.Brand, &r.Calories, &r.ProteinG, &r.CarbsG, &r.FatG,
			&r.Category, &servingSize, &r.ServingUnit, &r.Barcode, &r.Frequency, &r.LastUsed, &r.CreatedAt); err != nil {
			_ = templateRows.Close()
			return nil, fmt.Errorf("scan export template: %w", err)
		}
		if servingSize.Valid {
			v := servingSize.Float64
			r.ServingSize = &v
		}
		doc.FoodTemplates = append(doc.FoodTemplates, r)
	}
	_ = templateRows.Close()

	return doc, nil
}

// ImportDocument replaces the whole store with the document's contents in
// one all-or-nothing transaction: every table is emptied (auto-increment
// counters included), then rows are inserted in table order with their
// original ids. Any failure rolls the whole import back; the store is left
// exactly as it was.
func (s *Store) ImportDocument(doc *Document) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if doc == nil {
		return &ImportError{Err: fmt.Errorf("document is nil")}
	}
	version, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if doc.Version > version {
		return &ImportError{Err: fmt.Errorf("document version %d is newer than schema version %d", doc.Version, version)}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.importTx(tx, doc); err != nil {
		return &ImportError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &ImportError{Err: fmt.Errorf("commit import: %w", err)}
	}
	return nil
}

func (s *Store) importTx(tx *sql.Tx, doc *Document) error {
	clears := []string{
		`DELETE FROM nutrition_cache`,
		`DELETE FROM food_entries`,
		`DELETE FROM health_goals`,
		`DELETE FROM food_templates`,
		`DELETE FROM profile`,
		`DELETE FROM sqlite_sequence WHERE name IN ('profile', 'food_entries', 'health_goals', 'food_templates')`,
	}
	for _, stmt := range clears {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}

	if len(doc.Profile) > 1 {
		return fmt.Errorf("profile has %d rows, at most one is allowed", len(doc.Profile))
	}
	for i, r := range doc.Profile {
		p := model.Profile{Name: r.Name, Age: r.Age, Gender: r.Gender, HeightCm: r.HeightCm, WeightKg: r.WeightKg, ActivityLevel: r.ActivityLevel}
		if p.Name == "" || !model.ValidActivityLevel(p.ActivityLevel) || (p.Gender != model.GenderMale && p.Gender != model.GenderFemale) || p.HeightCm <= 0 || p.WeightKg <= 0 || p.Age < 0 {
			return fmt.Errorf("profile[%d] is malformed", i)
		}
		if _, err := tx.Exec(`
INSERT INTO profile(id, name, age, gender, height_cm, weight_kg, activity_level, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
`, r.ID, r.Name, r.Age, r.Gender, r.HeightCm, r.WeightKg, r.ActivityLevel, r.CreatedAt, r.UpdatedAt); err != nil {
			return fmt.Errorf("import profile[%d]: %w", i, err)
		}
	}

	for i, r := range doc.FoodEntries {
		e := model.FoodEntry{Name: r.Name, Calories: r.Calories, ProteinG: r.ProteinG, CarbsG: r.CarbsG, FatG: r.FatG, MealType: r.MealType, Date: r.Date, Quantity: r.Quantity}
		if err := validateEntry(&e); err != nil {
			return fmt.Errorf("foodEntries[%d]: %w", i, err)
		}
		if _, err := tx.Exec(`
INSERT INTO food_entries(id, name, calories, protein_g, carbs_g, fat_g, meal_type, entry_date, quantity, unit, notes, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, r.ID, r.Name, r.Calories, r.ProteinG, r.CarbsG, r.FatG, r.MealType, r.Date,
			nullableFloat(r.Quantity), nullableString(r.Unit), nullableString(r.Notes), r.CreatedAt, r.UpdatedAt); err != nil {
			return fmt.Errorf("import foodEntries[%d]: %w", i, err)
		}
	}

	for i, r := range doc.HealthGoals {
		if r.TargetCalories <= 0 || r.TargetProteinG < 0 || r.TargetCarbsG < 0 || r.TargetFatG < 0 {
			return fmt.Errorf("healthGoals[%d] is malformed", i)
		}
		isActive := 0
		if r.IsActive {
			isActive = 1
		}
		if _, err := tx.Exec(`
INSERT INTO health_goals(id, target_calories, target_protein_g, target_carbs_g, target_fat_g, goal_type, notes, is_active, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, r.ID, r.TargetCalories, r.TargetProteinG, r.TargetCarbsG, r.TargetFatG,
			nullableString(r.GoalType), nullableString(r.Notes), isActive, r.CreatedAt, r.UpdatedAt); err != nil {
			return fmt.Errorf("import healthGoals[%d]: %w", i, err)
		}
	}

	for i, r := range doc.FoodTemplates {
		if r.Name == "" || r.Calories < 0 || r.ProteinG < 0 || r.CarbsG < 0 || r.FatG < 0 || r.Frequency < 0 {
			return fmt.Errorf("foodTemplates[%d] is malformed", i)
		}
		if _, err := tx.Exec(`
INSERT INTO food_templates(id, name, brand, calories, protein_g, carbs_g, fat_g, category, serving_size, serving_unit, barcode, frequency, last_used, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, r.ID, r.Name, r.Brand, r.Calories, r.ProteinG, r.CarbsG, r.FatG,
			nullableString(r.Category), nullableFloat(r.ServingSize), nullableString(r.ServingUnit), nullableString(r.Barcode),
			r.Frequency, nullableString(r.LastUsed), r.CreatedAt); err != nil {
			return fmt.Errorf("import foodTemplates[%d]: %w", i, err)
		}
	}

	return nil
}
