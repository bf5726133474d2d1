package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"lg/calorie-tracker-api/internal/nutrition"
)

/* ─── bmr / target ───────────────────────────────────────────────────── */

func newBMRCmd() *cobra.Command {
	var body bodyFlags
	cmd := &cobra.Command{
		Use:   "bmr",
		Short: "Compute basal metabolic rate (Mifflin-St Jeor)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := body.profile()
			if err != nil {
				return err
			}
			sex, err := p.BMRSex()
			if err != nil {
				return err
			}
			bmr, err := nutrition.ComputeBMR(p.WeightKg, p.HeightCm, p.AgeYears, sex)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "BMR: %.1f kcal/day\n", bmr)
			return nil
		},
	}
	body.register(cmd)
	return cmd
}

func newTargetCmd() *cobra.Command {
	var (
		body     bodyFlags
		activity string
		goal     string
	)
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Compute the daily calorie target for a body profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := body.profile()
			if err != nil {
				return err
			}
			if p.ActivityLevel, err = nutrition.ParseActivityLevel(activity); err != nil {
				return err
			}
			if p.Goal, err = nutrition.ParseGoal(goal); err != nil {
				return err
			}
			bmr, target, err := nutrition.ComputeTarget(p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "BMR: %.1f kcal/day\n", bmr)
			fmt.Fprintf(out, "Target: %d kcal/day\n", target.TargetCalories)
			return nil
		},
	}
	body.register(cmd)
	cmd.Flags().StringVar(&activity, "activity", "sedentary", "sedentary, lightly_active, moderately_active, very_active or extremely_active")
	cmd.Flags().StringVar(&goal, "goal", "maintain", "lose, maintain or gain")
	return cmd
}

/* ─── entry ──────────────────────────────────────────────────────────── */

func newEntryCmd() *cobra.Command {
	var (
		grams               float64
		calories            float64
		protein, carbs, fat float64
	)
	cmd := &cobra.Command{
		Use:   "entry [common food]",
		Short: "Compute nutrition for a quantity of food",
		Long: "Compute nutrition for a quantity of food. Name a built-in food, " +
			"or describe one with --calories and optional macro flags (all per 100 g).",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var food nutrition.FoodItem
			if len(args) == 1 {
				matches := nutrition.SearchCommonFoods(args[0])
				if len(matches) == 0 {
					return fmt.Errorf("no built-in food matches %q", args[0])
				}
				food = matches[0]
			} else {
				if !cmd.Flags().Changed("calories") {
					return fmt.Errorf("either a food name or --calories is required")
				}
				food = nutrition.FoodItem{Name: "custom", CaloriesPer100g: calories}
				food.ProteinPer100g = changed(cmd, "protein", protein)
				food.CarbsPer100g = changed(cmd, "carbs", carbs)
				food.FatPer100g = changed(cmd, "fat", fat)
			}

			n, err := nutrition.ComputeEntryNutrition(food, grams)
			if err != nil {
				return err
			}
			printEntry(cmd.OutOrStdout(), food.Name, grams, n)
			return nil
		},
	}
	cmd.Flags().Float64Var(&grams, "grams", 100, "Quantity eaten in grams")
	cmd.Flags().Float64Var(&calories, "calories", 0, "Calories per 100 g")
	cmd.Flags().Float64Var(&protein, "protein", 0, "Protein grams per 100 g")
	cmd.Flags().Float64Var(&carbs, "carbs", 0, "Carb grams per 100 g")
	cmd.Flags().Float64Var(&fat, "fat", 0, "Fat grams per 100 g")
	return cmd
}

// changed returns &v only when the flag was given, so an unset macro stays absent.
func changed(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func printEntry(w io.Writer, name string, grams float64, n nutrition.EntryNutrition) {
	fmt.Fprintf(w, "%s (%gg)\n", name, grams)
	fmt.Fprintf(w, "Calories: %d\n", n.Calories)
	fmt.Fprintf(w, "Protein: %s\n", grams1(n.Protein))
	fmt.Fprintf(w, "Carbs: %s\n", grams1(n.Carbs))
	fmt.Fprintf(w, "Fat: %s\n", grams1(n.Fat))
}

func grams1(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1fg", *v)
}

/* ─── foods ──────────────────────────────────────────────────────────── */

func newFoodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "foods <query>",
		Short: "Search built-in foods (values per 100 g)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			matches := nutrition.SearchCommonFoods(args[0])
			if len(matches) == 0 {
				fmt.Fprintln(out, "No foods found")
				return nil
			}
			fmt.Fprintln(out, "NAME\tKCAL\tP\tC\tF")
			for _, f := range matches {
				fmt.Fprintf(out, "%s\t%g\t%s\t%s\t%s\n", f.Name, f.CaloriesPer100g,
					strings.TrimSuffix(grams1(f.ProteinPer100g), "g"),
					strings.TrimSuffix(grams1(f.CarbsPer100g), "g"),
					strings.TrimSuffix(grams1(f.FatPer100g), "g"))
			}
			return nil
		},
	}
}
