package store_test

import (
	"errors"
	"testing"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/store"
)

func testTemplate(name, brand string, calories float64) model.FoodTemplate {
	return model.FoodTemplate{
		Name:     name,
		Brand:    brand,
		Calories: calories,
		ProteinG: 10,
		CarbsG:   20,
		FatG:     5,
	}
}

func TestTemplateUpsertBumpsFrequencyByExactlyOne(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	db := rawDB(t, st)

	id1, err := st.UpsertFoodTemplate(testTemplate("greek yogurt", "fage", 90))
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Same (name, brand) with fresher facts must update in place.
	updated := testTemplate("greek yogurt", "fage", 100)
	updated.Category = "dairy"
	id2, err := st.UpsertFoodTemplate(updated)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same template id across upserts: %d vs %d", id1, id2)
	}
	if got := countRows(t, db, "food_templates"); got != 1 {
		t.Fatalf("expected 1 template row, got %d", got)
	}

	if _, err := st.UpsertFoodTemplate(updated); err != nil {
		t.Fatalf("third upsert: %v", err)
	}

	templates, err := st.FrequentFoodTemplates(0)
	if err != nil {
		t.Fatalf("frequent templates: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("expected 1 template, got %d", len(templates))
	}
	got := templates[0]
	if got.Frequency != 3 {
		t.Fatalf("expected frequency 3 after three saves, got %d", got.Frequency)
	}
	if got.Calories != 100 || got.Category != "dairy" {
		t.Fatalf("latest facts not kept: %+v", got)
	}
	if got.LastUsed == nil {
		t.Fatalf("expected last_used to be set")
	}

	// Same name under a different brand is a distinct template.
	if _, err := st.UpsertFoodTemplate(testTemplate("greek yogurt", "chobani", 80)); err != nil {
		t.Fatalf("distinct brand upsert: %v", err)
	}
	if got := countRows(t, db, "food_templates"); got != 2 {
		t.Fatalf("expected 2 template rows, got %d", got)
	}
}

func TestTemplateValidation(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	var invalid *store.InvalidRecordError

	if _, err := st.UpsertFoodTemplate(testTemplate("  ", "fage", 90)); !errors.As(err, &invalid) || invalid.Field != "name" {
		t.Fatalf("expected name violation, got %v", err)
	}

	bad := testTemplate("rice", "", 100)
	bad.ProteinG = -2
	if _, err := st.UpsertFoodTemplate(bad); !errors.As(err, &invalid) || invalid.Field != "protein_g" {
		t.Fatalf("expected protein_g violation, got %v", err)
	}

	bad = testTemplate("rice", "", 100)
	zero := 0.0
	bad.ServingSize = &zero
	if _, err := st.UpsertFoodTemplate(bad); !errors.As(err, &invalid) || invalid.Field != "serving_size" {
		t.Fatalf("expected serving_size violation, got %v", err)
	}
}

func TestTemplateSearchAndFrequentOrdering(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	if _, err := st.UpsertFoodTemplate(testTemplate("almond milk", "silk", 30)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := st.UpsertFoodTemplate(testTemplate("almond butter", "justin's", 190)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := st.UpsertFoodTemplate(testTemplate("oat milk", "oatly", 60)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	frequent, err := st.FrequentFoodTemplates(2)
	if err != nil {
		t.Fatalf("frequent templates: %v", err)
	}
	if len(frequent) != 2 {
		t.Fatalf("expected limit to cap results at 2, got %d", len(frequent))
	}
	if frequent[0].Name != "almond butter" {
		t.Fatalf("expected most used first, got %q", frequent[0].Name)
	}

	results, err := st.SearchFoodTemplates("almond", 0)
	if err != nil {
		t.Fatalf("search templates: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches for 'almond', got %d", len(results))
	}
	if results[0].Name != "almond butter" {
		t.Fatalf("expected higher frequency match first, got %q", results[0].Name)
	}

	// Brand substrings match too.
	results, err = st.SearchFoodTemplates("oatly", 0)
	if err != nil {
		t.Fatalf("search by brand: %v", err)
	}
	if len(results) != 1 || results[0].Name != "oat milk" {
		t.Fatalf("expected brand match, got %+v", results)
	}

	if _, err := st.SearchFoodTemplates("   ", 0); err == nil {
		t.Fatalf("expected empty query to fail")
	}
}

func TestTemplateBarcodeLookupAndDelete(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	tpl := testTemplate("protein bar", "rxbar", 210)
	tpl.Barcode = "0857777004003"
	id, err := st.UpsertFoodTemplate(tpl)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	found, err := st.TemplateByBarcode("0857777004003")
	if err != nil {
		t.Fatalf("barcode lookup: %v", err)
	}
	if found == nil || found.ID != id {
		t.Fatalf("expected template %d, got %+v", id, found)
	}

	missing, err := st.TemplateByBarcode("0000000000000")
	if err != nil {
		t.Fatalf("barcode miss: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown barcode, got %+v", missing)
	}

	if err := st.DeleteFoodTemplate(id); err != nil {
		t.Fatalf("delete template: %v", err)
	}
	if err := st.DeleteFoodTemplate(id); err == nil {
		t.Fatalf("expected delete of missing template to fail")
	}
}
