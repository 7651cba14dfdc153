package nutrilog

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/store"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage reusable food templates",
}

var (
	templateName        string
	templateBrand       string
	templateCalories    float64
	templateProtein     float64
	templateCarbs       float64
	templateFat         float64
	templateCategory    string
	templateServingSize float64
	templateServingUnit string
	templateBarcode     string
	templateLimit       int
)

var templateSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save or re-save a template (re-saving bumps its use count)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			t := model.FoodTemplate{
				Name:        templateName,
				Brand:       templateBrand,
				Calories:    templateCalories,
				ProteinG:    templateProtein,
				CarbsG:      templateCarbs,
				FatG:        templateFat,
				Category:    templateCategory,
				ServingUnit: templateServingUnit,
				Barcode:     templateBarcode,
			}
			if templateServingSize > 0 {
				size := templateServingSize
				t.ServingSize = &size
			}
			id, err := st.UpsertFoodTemplate(t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved template %d\n", id)
			return nil
		})
	},
}

func printTemplates(cmd *cobra.Command, templates []model.FoodTemplate) {
	fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tBRAND\tKCAL\tP\tC\tF\tUSED\tLAST USED")
	for _, t := range templates {
		lastUsed := "-"
		if t.LastUsed != nil {
			lastUsed = t.LastUsed.Local().Format(time.DateOnly)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\t%d\t%s\n",
			t.ID, t.Name, t.Brand, t.Calories, t.ProteinG, t.CarbsG, t.FatG, t.Frequency, lastUsed)
	}
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most used templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			templates, err := st.FrequentFoodTemplates(templateLimit)
			if err != nil {
				return err
			}
			printTemplates(cmd, templates)
			return nil
		})
	},
}

var templateSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search templates by name or brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			templates, err := st.SearchFoodTemplates(args[0], templateLimit)
			if err != nil {
				return err
			}
			printTemplates(cmd, templates)
			return nil
		})
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a template by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("template id", args[0])
		if err != nil {
			return err
		}
		return withStore(func(st *store.Store) error {
			if err := st.DeleteFoodTemplate(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateSaveCmd, templateListCmd, templateSearchCmd, templateDeleteCmd)

	templateSaveCmd.Flags().StringVar(&templateName, "name", "", "Food name")
	templateSaveCmd.Flags().StringVar(&templateBrand, "brand", "", "Brand")
	templateSaveCmd.Flags().Float64Var(&templateCalories, "calories", 0, "Calories per serving")
	templateSaveCmd.Flags().Float64Var(&templateProtein, "protein", 0, "Protein in grams")
	templateSaveCmd.Flags().Float64Var(&templateCarbs, "carbs", 0, "Carbs in grams")
	templateSaveCmd.Flags().Float64Var(&templateFat, "fat", 0, "Fat in grams")
	templateSaveCmd.Flags().StringVar(&templateCategory, "category", "", "Category label")
	templateSaveCmd.Flags().Float64Var(&templateServingSize, "serving", 0, "Serving size")
	templateSaveCmd.Flags().StringVar(&templateServingUnit, "serving-unit", "", "Serving unit")
	templateSaveCmd.Flags().StringVar(&templateBarcode, "barcode", "", "Product barcode")

	templateListCmd.Flags().IntVar(&templateLimit, "limit", 20, "Max rows")
	templateSearchCmd.Flags().IntVar(&templateLimit, "limit", 20, "Max rows")
}
