package nutrilog

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/store"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage logged food entries",
}

var (
	entryName     string
	entryCalories float64
	entryProtein  float64
	entryCarbs    float64
	entryFat      float64
	entryMeal     string
	entryDate     string
	entryQuantity float64
	entryUnit     string
	entryNotes    string
	entryRemember bool
	entryBrand    string
)

func buildEntry() model.FoodEntry {
	e := model.FoodEntry{
		Name:     entryName,
		Calories: entryCalories,
		ProteinG: entryProtein,
		CarbsG:   entryCarbs,
		FatG:     entryFat,
		MealType: entryMeal,
		Date:     dateOrToday(entryDate),
		Unit:     entryUnit,
		Notes:    entryNotes,
	}
	if entryQuantity > 0 {
		q := entryQuantity
		e.Quantity = &q
	}
	return e
}

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a food entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			e := buildEntry()
			id, err := st.InsertFoodEntry(e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %d\n", id)

			if entryRemember {
				t := model.FoodTemplate{
					Name:     e.Name,
					Brand:    entryBrand,
					Calories: e.Calories,
					ProteinG: e.ProteinG,
					CarbsG:   e.CarbsG,
					FatG:     e.FatG,
					Category: e.MealType,
				}
				if e.Quantity != nil {
					t.ServingSize = e.Quantity
					t.ServingUnit = e.Unit
				}
				if _, err := st.UpsertFoodTemplate(t); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Remembered %q as a template\n", e.Name)
			}
			return nil
		})
	},
}

var (
	listDate string
	listFrom string
	listTo   string
	listMeal string
)

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries for a date, range or meal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			var (
				entries []model.FoodEntry
				err     error
			)
			switch {
			case listMeal != "":
				entries, err = st.EntriesByMealType(dateOrToday(listDate), listMeal)
			case listFrom != "" || listTo != "":
				if listFrom == "" || listTo == "" {
					return fmt.Errorf("--from and --to must be used together")
				}
				entries, err = st.EntriesByRange(listFrom, listTo)
			case listDate != "":
				entries, err = st.EntriesByDate(listDate)
			default:
				entries, err = st.EntriesByDate(dateOrToday(""))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tMEAL\tNAME\tKCAL\tP\tC\tF")
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\n",
					e.ID, e.Date, e.MealType, e.Name, e.Calories, e.ProteinG, e.CarbsG, e.FatG)
			}
			return nil
		})
	},
}

var entryUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rewrite an entry by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withStore(func(st *store.Store) error {
			e := buildEntry()
			e.ID = id
			if err := st.UpdateFoodEntry(e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %d\n", id)
			return nil
		})
	},
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withStore(func(st *store.Store) error {
			if err := st.DeleteFoodEntry(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
			return nil
		})
	},
}

func addEntryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&entryName, "name", "", "Food name")
	cmd.Flags().Float64Var(&entryCalories, "calories", 0, "Calories")
	cmd.Flags().Float64Var(&entryProtein, "protein", 0, "Protein in grams")
	cmd.Flags().Float64Var(&entryCarbs, "carbs", 0, "Carbs in grams")
	cmd.Flags().Float64Var(&entryFat, "fat", 0, "Fat in grams")
	cmd.Flags().StringVar(&entryMeal, "meal", "", "Meal type: "+strings.Join(model.MealTypes, ", "))
	cmd.Flags().StringVar(&entryDate, "date", "", "Date YYYY-MM-DD (default today)")
	cmd.Flags().Float64Var(&entryQuantity, "quantity", 0, "Quantity eaten")
	cmd.Flags().StringVar(&entryUnit, "unit", "", "Quantity unit")
	cmd.Flags().StringVar(&entryNotes, "notes", "", "Free-form notes")
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd, entryListCmd, entryUpdateCmd, entryDeleteCmd)

	addEntryFlags(entryAddCmd)
	entryAddCmd.Flags().BoolVar(&entryRemember, "remember", false, "Save this food as a reusable template")
	entryAddCmd.Flags().StringVar(&entryBrand, "brand", "", "Brand for the remembered template")
	addEntryFlags(entryUpdateCmd)

	entryListCmd.Flags().StringVar(&listDate, "date", "", "Date YYYY-MM-DD")
	entryListCmd.Flags().StringVar(&listFrom, "from", "", "Range start YYYY-MM-DD")
	entryListCmd.Flags().StringVar(&listTo, "to", "", "Range end YYYY-MM-DD")
	entryListCmd.Flags().StringVar(&listMeal, "meal", "", "Filter by meal type")
}
