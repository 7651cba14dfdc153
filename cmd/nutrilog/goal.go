package nutrilog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/store"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage the current health goal",
}

var (
	goalCalories float64
	goalProtein  float64
	goalCarbs    float64
	goalFat      float64
	goalType     string
	goalNotes    string
)

var goalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the current goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			id, err := st.SetCurrentHealthGoal(model.HealthGoal{
				TargetCalories: goalCalories,
				TargetProteinG: goalProtein,
				TargetCarbsG:   goalCarbs,
				TargetFatG:     goalFat,
				GoalType:       goalType,
				Notes:          goalNotes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set goal %d\n", id)
			return nil
		})
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			g, err := st.CurrentHealthGoal()
			if err != nil {
				return err
			}
			if g == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No goal set. Run: nutrilog goal set")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Calories: %.0f\nProtein: %.1f g\nCarbs: %.1f g\nFat: %.1f g\n",
				g.TargetCalories, g.TargetProteinG, g.TargetCarbsG, g.TargetFatG)
			if g.GoalType != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Type: %s\n", g.GoalType)
			}
			if g.Notes != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Notes: %s\n", g.Notes)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalSetCmd, goalShowCmd)

	goalSetCmd.Flags().Float64Var(&goalCalories, "calories", 0, "Daily calorie target")
	goalSetCmd.Flags().Float64Var(&goalProtein, "protein", 0, "Daily protein target in grams")
	goalSetCmd.Flags().Float64Var(&goalCarbs, "carbs", 0, "Daily carb target in grams")
	goalSetCmd.Flags().Float64Var(&goalFat, "fat", 0, "Daily fat target in grams")
	goalSetCmd.Flags().StringVar(&goalType, "type", "", "maintain, lose or gain")
	goalSetCmd.Flags().StringVar(&goalNotes, "notes", "", "Free-form notes")
}
