package nutrilog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/store"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the user profile",
}

var (
	profileName     string
	profileAge      int
	profileGender   string
	profileHeight   float64
	profileWeight   float64
	profileActivity string
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			id, err := st.UpsertProfile(model.Profile{
				Name:          profileName,
				Age:           profileAge,
				Gender:        profileGender,
				HeightCm:      profileHeight,
				WeightKg:      profileWeight,
				ActivityLevel: profileActivity,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %d\n", id)
			return nil
		})
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			p, err := st.Profile()
			if err != nil {
				return err
			}
			if p == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No profile set. Run: nutrilog profile set")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Name: %s\nAge: %d\nGender: %s\nHeight: %.1f cm\nWeight: %.1f kg\nActivity: %s\n",
				p.Name, p.Age, p.Gender, p.HeightCm, p.WeightKg, p.ActivityLevel)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd, profileShowCmd)

	profileSetCmd.Flags().StringVar(&profileName, "name", "", "Display name")
	profileSetCmd.Flags().IntVar(&profileAge, "age", 0, "Age in years")
	profileSetCmd.Flags().StringVar(&profileGender, "gender", "", "male or female")
	profileSetCmd.Flags().Float64Var(&profileHeight, "height", 0, "Height in cm")
	profileSetCmd.Flags().Float64Var(&profileWeight, "weight", 0, "Weight in kg")
	profileSetCmd.Flags().StringVar(&profileActivity, "activity", "", "sedentary, light, moderate, active or very_active")
}
