package main

import (
	"github.com/spf13/cobra"

	"lg/calorie-tracker-api/internal/nutrition"
)

// newRootCmd builds a fresh command tree so flag state never leaks between runs.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nutricalc",
		Short:         "nutricalc computes calorie targets and food nutrition",
		Long:          "nutricalc runs the BMR, daily target and per-entry nutrition formulas from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBMRCmd(), newTargetCmd(), newEntryCmd(), newFoodsCmd())
	return root
}

// bodyFlags are shared by bmr and target.
type bodyFlags struct {
	weight     float64
	height     float64
	age        int
	sex        string
	formulaSex string
}

func (f *bodyFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.weight, "weight", 0, "Body weight in kg")
	cmd.Flags().Float64Var(&f.height, "height", 0, "Height in cm")
	cmd.Flags().IntVar(&f.age, "age", 0, "Age in years")
	cmd.Flags().StringVar(&f.sex, "sex", "", "male, female or other")
	cmd.Flags().StringVar(&f.formulaSex, "formula-sex", "", "male or female formula to use when --sex other")
	for _, name := range []string{"weight", "height", "age", "sex"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

// profile parses the flags into a BodyProfile without activity or goal.
func (f *bodyFlags) profile() (nutrition.BodyProfile, error) {
	sex, err := nutrition.ParseSex(f.sex)
	if err != nil {
		return nutrition.BodyProfile{}, err
	}
	p := nutrition.BodyProfile{WeightKg: f.weight, HeightCm: f.height, AgeYears: f.age, Sex: sex}
	if f.formulaSex != "" {
		fs, err := nutrition.ParseSex(f.formulaSex)
		if err != nil {
			return nutrition.BodyProfile{}, err
		}
		p.FormulaSex = fs
	}
	return p, nil
}
