package store_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/store"
)

func seedStoreForExchange(t *testing.T, st *store.Store) {
	t.Helper()
	_, err := st.UpsertProfile(model.Profile{
		Name: "ada", Age: 31, Gender: model.GenderFemale,
		HeightCm: 168, WeightKg: 61, ActivityLevel: model.ActivityModerate,
	})
	require.NoError(t, err)

	quantity := 2.0
	entry := testEntry("2024-09-01", model.MealBreakfast, "eggs", 180)
	entry.Quantity = &quantity
	entry.Unit = "piece"
	entry.Notes = "scrambled"
	_, err = st.InsertFoodEntry(entry)
	require.NoError(t, err)
	_, err = st.InsertFoodEntry(testEntry("2024-09-02", model.MealDinner, "stew", 520))
	require.NoError(t, err)

	_, err = st.SetCurrentHealthGoal(model.HealthGoal{
		TargetCalories: 2100, TargetProteinG: 120, TargetCarbsG: 220, TargetFatG: 70,
		GoalType: model.GoalMaintain,
	})
	require.NoError(t, err)

	tpl := testTemplate("stew", "homemade", 260)
	tpl.Barcode = "4006381333931"
	_, err = st.UpsertFoodTemplate(tpl)
	require.NoError(t, err)
}

func TestExportImportRoundTripIsIdentity(t *testing.T) {
	t.Parallel()
	src := newTestStore(t)
	seedStoreForExchange(t, src)

	doc, err := src.ExportDocument()
	require.NoError(t, err)
	require.Len(t, doc.Profile, 1)
	require.Len(t, doc.FoodEntries, 2)
	require.Len(t, doc.HealthGoals, 1)
	require.Len(t, doc.FoodTemplates, 1)

	dst := newTestStore(t)
	require.NoError(t, dst.ImportDocument(doc))

	again, err := dst.ExportDocument()
	require.NoError(t, err)

	// Everything except the export timestamp must survive byte for byte,
	// row ids included.
	assert.Equal(t, doc.Version, again.Version)
	assert.Equal(t, doc.Profile, again.Profile)
	assert.Equal(t, doc.FoodEntries, again.FoodEntries)
	assert.Equal(t, doc.HealthGoals, again.HealthGoals)
	assert.Equal(t, doc.FoodTemplates, again.FoodTemplates)

	// Imported data is live, not just stored: summaries and goal reads work.
	day, err := dst.SummaryForDate("2024-09-02")
	require.NoError(t, err)
	assert.Equal(t, 520.0, day.TotalCalories)
	goal, err := dst.CurrentHealthGoal()
	require.NoError(t, err)
	require.NotNil(t, goal)
	assert.Equal(t, 2100.0, goal.TargetCalories)
}

func TestImportReplacesExistingData(t *testing.T) {
	t.Parallel()
	src := newTestStore(t)
	seedStoreForExchange(t, src)
	doc, err := src.ExportDocument()
	require.NoError(t, err)

	dst := newTestStore(t)
	_, err = dst.InsertFoodEntry(testEntry("2023-12-25", model.MealSnack, "fruitcake", 410))
	require.NoError(t, err)

	require.NoError(t, dst.ImportDocument(doc))

	old, err := dst.EntriesByDate("2023-12-25")
	require.NoError(t, err)
	assert.Empty(t, old, "pre-import rows must be gone")

	db := rawDB(t, dst)
	assert.Equal(t, 2, countRows(t, db, "food_entries"))
	assert.Equal(t, 0, countRows(t, db, "nutrition_cache"),
		"import must drop the derived cache; it rebuilds on read")
}

func TestImportFailureLeavesStoreUntouched(t *testing.T) {
	t.Parallel()
	src := newTestStore(t)
	seedStoreForExchange(t, src)
	doc, err := src.ExportDocument()
	require.NoError(t, err)
	doc.FoodEntries[1].MealType = "second breakfast"

	dst := newTestStore(t)
	_, err = dst.InsertFoodEntry(testEntry("2023-12-25", model.MealSnack, "fruitcake", 410))
	require.NoError(t, err)
	before, err := dst.ExportDocument()
	require.NoError(t, err)

	err = dst.ImportDocument(doc)
	require.Error(t, err)
	var importErr *store.ImportError
	assert.True(t, errors.As(err, &importErr))

	after, err := dst.ExportDocument()
	require.NoError(t, err)
	assert.Equal(t, before.FoodEntries, after.FoodEntries, "failed import must roll back completely")
	assert.Equal(t, before.Profile, after.Profile)
}

func TestImportRejectsNewerDocumentVersion(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	version, err := st.SchemaVersion()
	require.NoError(t, err)

	doc := &store.Document{Version: version + 1}
	err = st.ImportDocument(doc)
	require.Error(t, err)
	var importErr *store.ImportError
	assert.True(t, errors.As(err, &importErr))

	// Older document versions are accepted.
	require.NoError(t, st.ImportDocument(&store.Document{Version: 1}))
}

func TestImportRejectsMultipleProfileRows(t *testing.T) {
	t.Parallel()
	src := newTestStore(t)
	seedStoreForExchange(t, src)
	doc, err := src.ExportDocument()
	require.NoError(t, err)

	second := doc.Profile[0]
	second.ID = doc.Profile[0].ID + 1
	second.Name = "imposter"
	doc.Profile = append(doc.Profile, second)

	dst := newTestStore(t)
	err = dst.ImportDocument(doc)
	require.Error(t, err)
	var importErr *store.ImportError
	assert.True(t, errors.As(err, &importErr))

	db := rawDB(t, dst)
	assert.Equal(t, 0, countRows(t, db, "profile"), "rejected document must leave nothing behind")
}

func TestImportNilDocumentFails(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	err := st.ImportDocument(nil)
	require.Error(t, err)
	var importErr *store.ImportError
	assert.True(t, errors.As(err, &importErr))
}
