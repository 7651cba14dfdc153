package store_test

import (
	"errors"
	"testing"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/store"
)

func TestEntryCRUD(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	e := testEntry("2024-03-10", model.MealBreakfast, "oatmeal", 350)
	quantity := 1.5
	e.Quantity = &quantity
	e.Unit = "cup"
	e.Notes = "with berries"

	id, err := st.InsertFoodEntry(e)
	if err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	entries, err := st.EntriesByDate("2024-03-10")
	if err != nil {
		t.Fatalf("entries by date: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.Name != "oatmeal" || got.Calories != 350 || got.Quantity == nil || *got.Quantity != 1.5 || got.Unit != "cup" {
		t.Fatalf("entry round-trip mismatch: %+v", got)
	}

	got.Calories = 400
	got.Notes = "extra honey"
	if err := st.UpdateFoodEntry(got); err != nil {
		t.Fatalf("update entry: %v", err)
	}
	entries, err = st.EntriesByDate("2024-03-10")
	if err != nil {
		t.Fatalf("entries after update: %v", err)
	}
	if entries[0].Calories != 400 || entries[0].Notes != "extra honey" {
		t.Fatalf("update not persisted: %+v", entries[0])
	}

	if err := st.DeleteFoodEntry(id); err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	entries, err = st.EntriesByDate("2024-03-10")
	if err != nil {
		t.Fatalf("entries after delete: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries after delete, got %d", len(entries))
	}

	if err := st.DeleteFoodEntry(id); err == nil {
		t.Fatalf("expected delete of missing entry to fail")
	}
}

func TestEntryValidation(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	var invalid *store.InvalidRecordError

	e := testEntry("2024-03-10", model.MealLunch, "soup", 150)
	e.Calories = -1
	if _, err := st.InsertFoodEntry(e); !errors.As(err, &invalid) || invalid.Field != "calories" {
		t.Fatalf("expected calories violation, got %v", err)
	}

	e = testEntry("2024-03-10", "brunch", "soup", 150)
	if _, err := st.InsertFoodEntry(e); !errors.As(err, &invalid) || invalid.Field != "meal_type" {
		t.Fatalf("expected meal_type violation, got %v", err)
	}

	e = testEntry("10/03/2024", model.MealLunch, "soup", 150)
	if _, err := st.InsertFoodEntry(e); !errors.As(err, &invalid) || invalid.Field != "date" {
		t.Fatalf("expected date violation, got %v", err)
	}

	e = testEntry("2024-03-10", model.MealLunch, "", 150)
	if _, err := st.InsertFoodEntry(e); !errors.As(err, &invalid) || invalid.Field != "name" {
		t.Fatalf("expected name violation, got %v", err)
	}
}

func TestEntryQueriesAndOrdering(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	seed := []model.FoodEntry{
		testEntry("2024-03-11", model.MealLunch, "burrito", 650),
		testEntry("2024-03-10", model.MealDinner, "salmon", 500),
		testEntry("2024-03-10", model.MealBreakfast, "yogurt", 150),
		testEntry("2024-03-10", model.MealBreakfast, "coffee", 5),
		testEntry("2024-03-12", model.MealSnack, "apple", 95),
	}
	for _, e := range seed {
		if _, err := st.InsertFoodEntry(e); err != nil {
			t.Fatalf("seed entry %q: %v", e.Name, err)
		}
	}

	all, err := st.AllEntries()
	if err != nil {
		t.Fatalf("all entries: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(all))
	}
	// (date desc, meal_type asc, name asc)
	wantOrder := []string{"apple", "burrito", "coffee", "yogurt", "salmon"}
	for i, name := range wantOrder {
		if all[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, all[i].Name)
		}
	}

	ranged, err := st.EntriesByRange("2024-03-10", "2024-03-11")
	if err != nil {
		t.Fatalf("entries by range: %v", err)
	}
	if len(ranged) != 4 {
		t.Fatalf("expected 4 entries in range, got %d", len(ranged))
	}

	meal, err := st.EntriesByMealType("2024-03-10", model.MealBreakfast)
	if err != nil {
		t.Fatalf("entries by meal: %v", err)
	}
	if len(meal) != 2 || meal[0].Name != "coffee" || meal[1].Name != "yogurt" {
		t.Fatalf("unexpected breakfast entries: %+v", meal)
	}

	if _, err := st.EntriesByRange("2024-03-12", "2024-03-10"); err == nil {
		t.Fatalf("expected inverted range to fail")
	}
}

func TestUpdateMovingEntryBetweenDatesKeepsBothDaysCoherent(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	id, err := st.InsertFoodEntry(testEntry("2024-04-01", model.MealLunch, "pasta", 600))
	if err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	if _, err := st.InsertFoodEntry(testEntry("2024-04-01", model.MealSnack, "banana", 100)); err != nil {
		t.Fatalf("insert second entry: %v", err)
	}

	moved := testEntry("2024-04-02", model.MealLunch, "pasta", 600)
	moved.ID = id
	if err := st.UpdateFoodEntry(moved); err != nil {
		t.Fatalf("move entry: %v", err)
	}

	day1, err := st.SummaryForDate("2024-04-01")
	if err != nil {
		t.Fatalf("summary day1: %v", err)
	}
	if day1.TotalCalories != 100 {
		t.Fatalf("expected day1 total 100 after move, got %.0f", day1.TotalCalories)
	}
	day2, err := st.SummaryForDate("2024-04-02")
	if err != nil {
		t.Fatalf("summary day2: %v", err)
	}
	if day2.TotalCalories != 600 {
		t.Fatalf("expected day2 total 600 after move, got %.0f", day2.TotalCalories)
	}
}
