package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/nutrilog/nutrilog/internal/model"
)

// UpsertProfile enforces the at-most-one-row invariant in application code:
// when a row exists it is updated in place, otherwise a new row is inserted.
// The row id is returned either way.
func (s *Store) UpsertProfile(p model.Profile) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return 0, invalidField("name", "is required")
	}
	if p.Age < 0 {
		return 0, invalidField("age", "must be >= 0")
	}
	if p.Gender != model.GenderMale && p.Gender != model.GenderFemale {
		return 0, invalidField("gender", "must be male or female")
	}
	if p.HeightCm <= 0 {
		return 0, invalidField("height_cm", "must be > 0")
	}
	if p.WeightKg <= 0 {
		return 0, invalidField("weight_kg", "must be > 0")
	}
	if !model.ValidActivityLevel(p.ActivityLevel) {
		return 0, invalidField("activity_level", "is not a known activity level")
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin profile upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existingID int64
	err = tx.QueryRow(`SELECT id FROM profile LIMIT 1`).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.Exec(`
INSERT INTO profile(name, age, gender, height_cm, weight_kg, activity_level)
VALUES(?, ?, ?, ?, ?, ?)
`, p.Name, p.Age, p.Gender, p.HeightCm, p.WeightKg, p.ActivityLevel)
		if err != nil {
			return 0, fmt.Errorf("insert profile: %w", err)
		}
		existingID, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("resolve profile id: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("find existing profile: %w", err)
	default:
		if _, err := tx.Exec(`
UPDATE profile
SET name = ?, age = ?, gender = ?, height_cm = ?, weight_kg = ?, activity_level = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, p.Name, p.Age, p.Gender, p.HeightCm, p.WeightKg, p.ActivityLevel, existingID); err != nil {
			return 0, fmt.Errorf("update profile %d: %w", existingID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit profile upsert: %w", err)
	}
	return existingID, nil
}

// Profile returns the current user profile, or nil when onboarding has not
// happened yet.
func (s *Store) Profile() (*model.Profile, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var p model.Profile
	var created, updated string
	err = db.QueryRow(`
SELECT id, name, age, gender, height_cm, weight_kg, activity_level, created_at, updated_at
FROM profile
LIMIT 1
`).Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.HeightCm, &p.WeightKg, &p.ActivityLevel, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	p.CreatedAt = parseStoredTime(created)
	p.UpdatedAt = parseStoredTime(updated)
	return &p, nil
}
