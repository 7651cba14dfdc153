package store_test

import (
	"errors"
	"testing"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/store"
)

func TestProfileSingletonAcrossUpserts(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	p, err := st.Profile()
	if err != nil {
		t.Fatalf("profile on empty store: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil profile on empty store, got %+v", p)
	}

	base := model.Profile{
		Name:          "Alex",
		Age:           31,
		Gender:        model.GenderFemale,
		HeightCm:      168,
		WeightKg:      61.5,
		ActivityLevel: model.ActivityModerate,
	}
	firstID, err := st.UpsertProfile(base)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	base.WeightKg = 60.0
	base.ActivityLevel = model.ActivityActive
	for i := 0; i < 3; i++ {
		id, err := st.UpsertProfile(base)
		if err != nil {
			t.Fatalf("repeat upsert %d: %v", i+1, err)
		}
		if id != firstID {
			t.Fatalf("upsert returned new id %d, expected %d", id, firstID)
		}
	}

	if n := countRows(t, rawDB(t, st), "profile"); n != 1 {
		t.Fatalf("expected exactly 1 profile row, got %d", n)
	}

	p, err = st.Profile()
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if p.WeightKg != 60.0 || p.ActivityLevel != model.ActivityActive {
		t.Fatalf("expected latest values, got %+v", p)
	}
}

func TestUpsertProfileValidation(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	cases := []struct {
		field   string
		profile model.Profile
	}{
		{"name", model.Profile{Gender: model.GenderMale, HeightCm: 180, WeightKg: 80, ActivityLevel: model.ActivityLight}},
		{"gender", model.Profile{Name: "Sam", Gender: "other", HeightCm: 180, WeightKg: 80, ActivityLevel: model.ActivityLight}},
		{"height_cm", model.Profile{Name: "Sam", Gender: model.GenderMale, WeightKg: 80, ActivityLevel: model.ActivityLight}},
		{"weight_kg", model.Profile{Name: "Sam", Gender: model.GenderMale, HeightCm: 180, ActivityLevel: model.ActivityLight}},
		{"activity_level", model.Profile{Name: "Sam", Gender: model.GenderMale, HeightCm: 180, WeightKg: 80, ActivityLevel: "couch"}},
	}
	for _, tc := range cases {
		_, err := st.UpsertProfile(tc.profile)
		var invalid *store.InvalidRecordError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidRecordError for %s, got %v", tc.field, err)
		}
		if invalid.Field != tc.field {
			t.Fatalf("expected offending field %s, got %s", tc.field, invalid.Field)
		}
	}
}
