package nutrilog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nutrilog/nutrilog/internal/store"
)

var (
	exportFormat string
	exportOut    string
	importIn     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the whole store (json, csv or xlsx)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(exportOut) == "" {
			return fmt.Errorf("--out is required")
		}
		return withStore(func(st *store.Store) error {
			switch strings.ToLower(strings.TrimSpace(exportFormat)) {
			case "json":
				doc, err := st.ExportDocument()
				if err != nil {
					return err
				}
				b, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal export json: %w", err)
				}
				if err := os.WriteFile(exportOut, b, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
			case "csv":
				entries, err := st.AllEntries()
				if err != nil {
					return err
				}
				f, err := os.Create(exportOut)
				if err != nil {
					return fmt.Errorf("create export csv: %w", err)
				}
				defer f.Close()
				w := csv.NewWriter(f)
				defer w.Flush()
				if err := w.Write([]string{"date", "meal_type", "name", "calories", "protein_g", "carbs_g", "fat_g", "quantity", "unit", "notes"}); err != nil {
					return fmt.Errorf("write export csv header: %w", err)
				}
				for _, e := range entries {
					quantity := ""
					if e.Quantity != nil {
						quantity = strconv.FormatFloat(*e.Quantity, 'f', -1, 64)
					}
					record := []string{
						e.Date, e.MealType, e.Name,
						strconv.FormatFloat(e.Calories, 'f', -1, 64),
						strconv.FormatFloat(e.ProteinG, 'f', -1, 64),
						strconv.FormatFloat(e.CarbsG, 'f', -1, 64),
						strconv.FormatFloat(e.FatG, 'f', -1, 64),
						quantity, e.Unit, e.Notes,
					}
					if err := w.Write(record); err != nil {
						return fmt.Errorf("write export csv row: %w", err)
					}
				}
			case "xlsx":
				if err := st.ExportXLSX(exportOut); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown export format %q (json, csv or xlsx)", exportFormat)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", exportOut)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the whole store from a JSON export",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		b, err := os.ReadFile(importIn)
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		var doc store.Document
		if err := json.Unmarshal(b, &doc); err != nil {
			return fmt.Errorf("parse import file: %w", err)
		}
		return withStore(func(st *store.Store) error {
			if err := st.ImportDocument(&doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries, %d templates from %s\n",
				len(doc.FoodEntries), len(doc.FoodTemplates), importIn)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json, csv or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file path")
	importCmd.Flags().StringVar(&importIn, "in", "", "JSON export file path")
}
