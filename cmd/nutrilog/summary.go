package nutrilog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/store"
)

var (
	summaryDate string
	summaryFrom string
	summaryTo   string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show per-day or per-range nutrition totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if summaryFrom != "" || summaryTo != "" {
			if summaryFrom == "" || summaryTo == "" {
				return fmt.Errorf("--from and --to must be used together")
			}
			return withStore(func(st *store.Store) error {
				r, err := st.SummaryForRange(summaryFrom, summaryTo)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s .. %s (%d days with entries)\n", r.FromDate, r.ToDate, r.DayCount)
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %.0f kcal, %.1f P, %.1f C, %.1f F\n",
					r.Sum.Calories, r.Sum.ProteinG, r.Sum.CarbsG, r.Sum.FatG)
				fmt.Fprintf(cmd.OutOrStdout(), "Average/day: %.0f kcal, %.1f P, %.1f C, %.1f F\n",
					r.Avg.Calories, r.Avg.ProteinG, r.Avg.CarbsG, r.Avg.FatG)
				return nil
			})
		}

		date := dateOrToday(summaryDate)
		return withStore(func(st *store.Store) error {
			day, err := st.SummaryForDate(date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %.0f kcal, %.1f P, %.1f C, %.1f F\n",
				day.Date, day.TotalCalories, day.TotalProteinG, day.TotalCarbsG, day.TotalFatG)
			for _, meal := range model.MealTypes {
				totals, ok := day.ByMeal[meal]
				if !ok {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %.0f kcal, %.1f P, %.1f C, %.1f F\n",
					meal, totals.Calories, totals.ProteinG, totals.CarbsG, totals.FatG)
			}

			goal, err := st.CurrentHealthGoal()
			if err != nil {
				return err
			}
			if goal != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Remaining vs goal: %.0f kcal, %.1f P, %.1f C, %.1f F\n",
					goal.TargetCalories-day.TotalCalories,
					goal.TargetProteinG-day.TotalProteinG,
					goal.TargetCarbsG-day.TotalCarbsG,
					goal.TargetFatG-day.TotalFatG)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringVar(&summaryDate, "date", "", "Date YYYY-MM-DD (default today)")
	summaryCmd.Flags().StringVar(&summaryFrom, "from", "", "Range start YYYY-MM-DD")
	summaryCmd.Flags().StringVar(&summaryTo, "to", "", "Range end YYYY-MM-DD")
}
