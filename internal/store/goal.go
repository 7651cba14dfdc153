package store

import (
	"database/sql"
	"fmt"

	"github.com/nutrilog/nutrilog/internal/model"
)

// SetCurrentHealthGoal replaces the current goal atomically: all prior rows
// are deleted and the new one inserted in a single transaction, so a reader
// never observes zero or more than one goal. Goal history is intentionally
// not retained.
func (s *Store) SetCurrentHealthGoal(g model.HealthGoal) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	if g.TargetCalories <= 0 {
		return 0, invalidField("target_calories", "must be > 0")
	}
	if err := validateNonNegative("target_protein_g", g.TargetProteinG); err != nil {
		return 0, err
	}
	if err := validateNonNegative("target_carbs_g", g.TargetCarbsG); err != nil {
		return 0, err
	}
	if err := validateNonNegative("target_fat_g", g.TargetFatG); err != nil {
		return 0, err
	}
	if g.GoalType != "" && g.GoalType != model.GoalMaintain && g.GoalType != model.GoalLose && g.GoalType != model.GoalGain {
		return 0, invalidField("goal_type", "must be maintain, lose or gain")
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin goal replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM health_goals`); err != nil {
		return 0, fmt.Errorf("clear previous goals: %w", err)
	}
	res, err := tx.Exec(`
INSERT INTO health_goals(target_calories, target_protein_g, target_carbs_g, target_fat_g, goal_type, notes, is_active)
VALUES(?, ?, ?, ?, ?, ?, 1)
`, g.TargetCalories, g.TargetProteinG, g.TargetCarbsG, g.TargetFatG,
		nullableString(g.GoalType), nullableString(g.Notes))
	if err != nil {
		return 0, fmt.Errorf("insert goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve goal id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit goal replace: %w", err)
	}
	return id, nil
}

// CurrentHealthGoal returns the most recently created active goal, or nil
// when no goal has been set.
func (s *Store) CurrentHealthGoal() (*model.HealthGoal, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var g model.HealthGoal
	var goalType, notes sql.NullString
	var isActive int
	var created, updated string
	err = db.QueryRow(`
SELECT id, target_calories, target_protein_g, target_carbs_g, target_fat_g, goal_type, notes, is_active, created_at, updated_at
FROM health_goals
WHERE is_active = 1
ORDER BY created_at DESC, id DESC
LIMIT 1
`).Scan(&g.ID, &g.TargetCalories, &g.TargetProteinG, &g.TargetCarbsG, &g.TargetFatG,
		&goalType, &notes, &isActive, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load current goal: %w", err)
	}
	g.GoalType = goalType.String
	g.Notes = notes.String
	g.IsActive = isActive == 1
	g.CreatedAt = parseStoredTime(created)
	g.UpdatedAt = parseStoredTime(updated)
	return &g, nil
}
