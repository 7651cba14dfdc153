package store

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func validateNonNegative(field string, value float64) error {
	if value < 0 {
		return invalidField(field, "must be >= 0")
	}
	return nil
}

func validateDate(field, value string) error {
	if _, err := time.Parse(dateLayout, strings.TrimSpace(value)); err != nil {
		return invalidField(field, "must be a YYYY-MM-DD date")
	}
	return nil
}

func validateMacros(calories, protein, carbs, fat float64) error {
	if err := validateNonNegative("calories", calories); err != nil {
		return err
	}
	if err := validateNonNegative("protein_g", protein); err != nil {
		return err
	}
	if err := validateNonNegative("carbs_g", carbs); err != nil {
		return err
	}
	return validateNonNegative("fat_g", fat)
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func parseStoredTime(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
