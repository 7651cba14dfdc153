package store

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX writes the logged entries and saved templates as a spreadsheet,
// one worksheet per table.
func (s *Store) ExportXLSX(path string) error {
	entries, err := s.AllEntries()
	if err != nil {
		return err
	}
	templates, err := s.FrequentFoodTemplates(1 << 20)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const entrySheet = "Food Entries"
	if err := f.SetSheetName("Sheet1", entrySheet); err != nil {
		return fmt.Errorf("rename entry sheet: %w", err)
	}
	entryHeaders := []string{"Date", "Meal", "Name", "Calories", "Protein (g)", "Carbs (g)", "Fat (g)", "Quantity", "Unit", "Notes"}
	for col, header := range entryHeaders {
		if err := setCell(f, entrySheet, col+1, 1, header); err != nil {
			return err
		}
	}
	for i, e := range entries {
		row := i + 2
		quantity := any("")
		if e.Quantity != nil {
			quantity = *e.Quantity
		}
		values := []any{e.Date, e.MealType, e.Name, e.Calories, e.ProteinG, e.CarbsG, e.FatG, quantity, e.Unit, e.Notes}
		for col, v := range values {
			if err := setCell(f, entrySheet, col+1, row, v); err != nil {
				return err
			}
		}
	}

	const templateSheet = "Food Templates"
	if _, err := f.NewSheet(templateSheet); err != nil {
		return fmt.Errorf("create template sheet: %w", err)
	}
	templateHeaders := []string{"Name", "Brand", "Calories", "Protein (g)", "Carbs (g)", "Fat (g)", "Category", "Barcode", "Times Used"}
	for col, header := range templateHeaders {
		if err := setCell(f, templateSheet, col+1, 1, header); err != nil {
			return err
		}
	}
	for i, t := range templates {
		row := i + 2
		values := []any{t.Name, t.Brand, t.Calories, t.ProteinG, t.CarbsG, t.FatG, t.Category, t.Barcode, t.Frequency}
		for col, v := range values {
			if err := setCell(f, templateSheet, col+1, row, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save spreadsheet: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("resolve cell %d,%d: %w", col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}
