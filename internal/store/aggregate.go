package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nutrilog/nutrilog/internal/model"
)

// The nutrition_cache table is a materialized view over food_entries. It is
// never authoritative: any row can be rebuilt from the entries of its date,
// and a date with no entries has no row at all, so emptiness and
// "rebuilt from zero" are indistinguishable.

func (s *Store) computeDayTotals(db *sql.DB, date string) (*model.DaySummary, error) {
	rows, err := db.Query(`
SELECT meal_type, SUM(calories), SUM(protein_g), SUM(carbs_g), SUM(fat_g)
FROM food_entries
WHERE entry_date = ?
GROUP BY meal_type
`, date)
	if err != nil {
		return nil, fmt.Errorf("sum entries for %s: %w", date, err)
	}
	defer rows.Close()

	summary := &model.DaySummary{Date: date, ByMeal: map[string]model.MealTotals{}}
	for rows.Next() {
		var meal string
		var t model.MealTotals
		if err := rows.Scan(&meal, &t.Calories, &t.ProteinG, &t.CarbsG, &t.FatG); err != nil {
			return nil, fmt.Errorf("scan day totals for %s: %w", date, err)
		}
		summary.ByMeal[meal] = t
		summary.TotalCalories += t.Calories
		summary.TotalProteinG += t.ProteinG
		summary.TotalCarbsG += t.CarbsG
		summary.TotalFatG += t.FatG
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day totals for %s: %w", date, err)
	}
	if len(summary.ByMeal) == 0 {
		return nil, nil
	}
	summary.LastUpdated = time.Now().UTC()
	return summary, nil
}

// RecomputeDay rebuilds the cache row for one date from its food entries.
// When the date has no entries left the row is deleted rather than kept as
// zeros.
func (s *Store) RecomputeDay(date string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := validateDate("date", date); err != nil {
		return err
	}

	summary, err := s.computeDayTotals(db, date)
	if err != nil {
		return err
	}
	if summary == nil {
		if _, err := db.Exec(`DELETE FROM nutrition_cache WHERE cache_date = ?`, date); err != nil {
			return fmt.Errorf("clear empty cache row %s: %w", date, err)
		}
		return nil
	}
	return s.writeCacheRow(db, summary)
}

func (s *Store) writeCacheRow(db *sql.DB, summary *model.DaySummary) error {
	breakdown, err := json.Marshal(summary.ByMeal)
	if err != nil {
		return fmt.Errorf("marshal meal breakdown for %s: %w", summary.Date, err)
	}
	if _, err := db.Exec(`
INSERT OR REPLACE INTO nutrition_cache(cache_date, total_calories, total_protein_g, total_carbs_g, total_fat_g, meal_breakdown_json, last_updated)
VALUES(?, ?, ?, ?, ?, ?, ?)
`, summary.Date, summary.TotalCalories, summary.TotalProteinG, summary.TotalCarbsG, summary.TotalFatG,
		string(breakdown), summary.LastUpdated.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("write cache row %s: %w", summary.Date, err)
	}
	return nil
}

func (s *Store) cachedSummary(db *sql.DB, date string) (*model.DaySummary, error) {
	var summary model.DaySummary
	var breakdownRaw, updatedRaw string
	err := db.QueryRow(`
SELECT cache_date, total_calories, total_protein_g, total_carbs_g, total_fat_g, IFNULL(meal_breakdown_json, ''), last_updated
FROM nutrition_cache
WHERE cache_date = ?
`, date).Scan(&summary.Date, &summary.TotalCalories, &summary.TotalProteinG,
		&summary.TotalCarbsG, &summary.TotalFatG, &breakdownRaw, &updatedRaw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache row %s: %w", date, err)
	}
	summary.ByMeal = map[string]model.MealTotals{}
	if breakdownRaw != "" {
		if err := json.Unmarshal([]byte(breakdownRaw), &summary.ByMeal); err != nil {
			// Treat a garbled breakdown as a cache miss, not an error.
			return nil, nil
		}
	}
	summary.LastUpdated = parseStoredTime(updatedRaw)
	return &summary, nil
}

// SummaryForDate returns the day's totals, serving from cache when a row is
// present and rebuilding it otherwise. A cache write failure degrades to
// computing straight from food_entries; the caller always gets correct
// totals. A date with no entries yields an all-zero summary.
func (s *Store) SummaryForDate(date string) (*model.DaySummary, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if err := validateDate("date", date); err != nil {
		return nil, err
	}

	cached, err := s.cachedSummary(db, date)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	summary, err := s.computeDayTotals(db, date)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return &model.DaySummary{Date: date, ByMeal: map[string]model.MealTotals{}}, nil
	}
	if err := s.writeCacheRow(db, summary); err != nil {
		s.log.Warn("cache write failed, serving uncached summary", zap.String("date", date), zap.Error(err))
	}
	return summary, nil
}

// SummaryForRange aggregates day summaries across [from, to]. Days without
// entries do not count; dates missing a cache row are rebuilt on the fly.
// An empty range yields zeros with DayCount 0.
func (s *Store) SummaryForRange(from, to string) (*model.RangeSummary, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if err := validateDate("from", from); err != nil {
		return nil, err
	}
	if err := validateDate("to", to); err != nil {
		return nil, err
	}
	if from > to {
		return nil, invalidField("from", "must be <= to")
	}

	rows, err := db.Query(`
SELECT DISTINCT entry_date
FROM food_entries
WHERE entry_date >= ? AND entry_date <= ?
ORDER BY entry_date ASC
`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list dates in range: %w", err)
	}
	dates := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan range date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate range dates: %w", err)
	}
	_ = rows.Close()

	out := &model.RangeSummary{FromDate: from, ToDate: to}
	for _, d := range dates {
		day, err := s.SummaryForDate(d)
		if err != nil {
			return nil, err
		}
		out.Sum.Calories += day.TotalCalories
		out.Sum.ProteinG += day.TotalProteinG
		out.Sum.CarbsG += day.TotalCarbsG
		out.Sum.FatG += day.TotalFatG
		out.DayCount++
	}
	if out.DayCount > 0 {
		div := float64(out.DayCount)
		out.Avg = model.MealTotals{
			Calories: out.Sum.Calories / div,
			ProteinG: out.Sum.ProteinG / div,
			CarbsG:   out.Sum.CarbsG / div,
			FatG:     out.Sum.FatG / div,
		}
	}
	return out, nil
}
