package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrilog/nutrilog/internal/model"
)

func TestDaySummaryTracksEntryMutations(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	if _, err := st.InsertFoodEntry(testEntry("2024-01-01", model.MealLunch, "sandwich", 300)); err != nil {
		t.Fatalf("insert lunch: %v", err)
	}
	snackID, err := st.InsertFoodEntry(testEntry("2024-01-01", model.MealSnack, "trail mix", 200))
	if err != nil {
		t.Fatalf("insert snack: %v", err)
	}

	day, err := st.SummaryForDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 500.0, day.TotalCalories)
	assert.Equal(t, 300.0, day.ByMeal[model.MealLunch].Calories)
	assert.Equal(t, 200.0, day.ByMeal[model.MealSnack].Calories)

	require.NoError(t, st.DeleteFoodEntry(snackID))

	day, err = st.SummaryForDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 300.0, day.TotalCalories)
	_, hasSnack := day.ByMeal[model.MealSnack]
	assert.False(t, hasSnack, "deleted meal should vanish from the breakdown")
}

func TestSummaryForDateWithoutEntriesIsZero(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	day, err := st.SummaryForDate("2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", day.Date)
	assert.Zero(t, day.TotalCalories)
	assert.Empty(t, day.ByMeal)

	db := rawDB(t, st)
	assert.Equal(t, 0, countRows(t, db, "nutrition_cache"),
		"an empty date must not leave a cache row behind")
}

func TestSummaryRebuildsAfterCacheRowDropped(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	db := rawDB(t, st)

	if _, err := st.InsertFoodEntry(testEntry("2024-02-02", model.MealDinner, "curry", 700)); err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	require.Equal(t, 1, countRows(t, db, "nutrition_cache"))

	// Drop the derived row out from under the store; reads must recompute
	// from entries and repopulate it.
	_, err := db.Exec(`DELETE FROM nutrition_cache`)
	require.NoError(t, err)

	day, err := st.SummaryForDate("2024-02-02")
	require.NoError(t, err)
	assert.Equal(t, 700.0, day.TotalCalories)
	assert.Equal(t, 700.0, day.ByMeal[model.MealDinner].Calories)
	assert.Equal(t, 1, countRows(t, db, "nutrition_cache"))
}

func TestStaleCacheRowIsServedUntilRecomputed(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	db := rawDB(t, st)

	if _, err := st.InsertFoodEntry(testEntry("2024-02-03", model.MealLunch, "ramen", 550)); err != nil {
		t.Fatalf("insert entry: %v", err)
	}

	_, err := db.Exec(`UPDATE nutrition_cache SET total_calories = 9999 WHERE cache_date = ?`, "2024-02-03")
	require.NoError(t, err)

	day, err := st.SummaryForDate("2024-02-03")
	require.NoError(t, err)
	assert.Equal(t, 9999.0, day.TotalCalories, "a present cache row wins over recomputation")

	require.NoError(t, st.RecomputeDay("2024-02-03"))
	day, err = st.SummaryForDate("2024-02-03")
	require.NoError(t, err)
	assert.Equal(t, 550.0, day.TotalCalories)
}

func TestGarbledBreakdownFallsBackToRecompute(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	db := rawDB(t, st)

	if _, err := st.InsertFoodEntry(testEntry("2024-02-04", model.MealBreakfast, "eggs", 180)); err != nil {
		t.Fatalf("insert entry: %v", err)
	}

	_, err := db.Exec(`UPDATE nutrition_cache SET meal_breakdown_json = 'not json' WHERE cache_date = ?`, "2024-02-04")
	require.NoError(t, err)

	day, err := st.SummaryForDate("2024-02-04")
	require.NoError(t, err)
	assert.Equal(t, 180.0, day.TotalCalories)
	assert.Equal(t, 180.0, day.ByMeal[model.MealBreakfast].Calories)
}

func TestRangeSummarySumsAndAverages(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	seed := []model.FoodEntry{
		testEntry("2024-05-01", model.MealLunch, "bowl", 600),
		testEntry("2024-05-01", model.MealSnack, "chips", 200),
		testEntry("2024-05-03", model.MealDinner, "steak", 800),
		// Outside the queried range.
		testEntry("2024-05-10", model.MealLunch, "salad", 400),
	}
	for _, e := range seed {
		if _, err := st.InsertFoodEntry(e); err != nil {
			t.Fatalf("seed %q: %v", e.Name, err)
		}
	}

	r, err := st.SummaryForRange("2024-05-01", "2024-05-07")
	require.NoError(t, err)
	assert.Equal(t, 2, r.DayCount, "only days with entries count")
	assert.Equal(t, 1600.0, r.Sum.Calories)
	assert.Equal(t, 800.0, r.Avg.Calories)

	empty, err := st.SummaryForRange("2024-07-01", "2024-07-31")
	require.NoError(t, err)
	assert.Zero(t, empty.DayCount)
	assert.Zero(t, empty.Sum.Calories)
	assert.Zero(t, empty.Avg.Calories)

	_, err = st.SummaryForRange("2024-05-07", "2024-05-01")
	assert.Error(t, err)
}
