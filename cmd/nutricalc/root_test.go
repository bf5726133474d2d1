package main

import (
	"bytes"
	"strings"
	"testing"
)

// run executes a fresh command tree and returns combined output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	for _, sub := range []string{"bmr", "target", "entry", "foods"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected %q in help output", sub)
		}
	}
}

func TestBMR(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"male", []string{"--sex", "male"}, "BMR: 1780.0 kcal/day"},
		{"female", []string{"--sex", "female"}, "BMR: 1614.0 kcal/day"},
		{"other uses formula sex", []string{"--sex", "other", "--formula-sex", "female"}, "BMR: 1614.0 kcal/day"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"bmr", "--weight", "80", "--height", "180", "--age", "30"}, tt.args...)
			out, err := run(t, args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q, got %q", tt.want, out)
			}
		})
	}
}

func TestBMR_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"other without formula sex", []string{"--weight", "80", "--height", "180", "--age", "30", "--sex", "other"}, "formula_sex"},
		{"unknown sex", []string{"--weight", "80", "--height", "180", "--age", "30", "--sex", "robot"}, "sex"},
		{"negative weight", []string{"--weight", "-1", "--height", "180", "--age", "30", "--sex", "male"}, "weight_kg"},
		{"missing flag", []string{"--weight", "80", "--height", "180", "--sex", "male"}, "age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"bmr"}, tt.args...)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTarget(t *testing.T) {
	tests := []struct {
		activity, goal string
		want           string
	}{
		{"sedentary", "maintain", "Target: 2136 kcal/day"},
		{"moderately_active", "lose", "Target: 2259 kcal/day"},
		{"very_active", "gain", "Target: 3571 kcal/day"},
	}
	for _, tt := range tests {
		t.Run(tt.activity+"/"+tt.goal, func(t *testing.T) {
			out, err := run(t, "target", "--weight", "80", "--height", "180", "--age", "30", "--sex", "male",
				"--activity", tt.activity, "--goal", tt.goal)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out, "BMR: 1780.0") || !strings.Contains(out, tt.want) {
				t.Errorf("expected BMR and %q, got %q", tt.want, out)
			}
		})
	}
}

func TestTarget_UnknownActivity(t *testing.T) {
	_, err := run(t, "target", "--weight", "80", "--height", "180", "--age", "30", "--sex", "male", "--activity", "couch")
	if err == nil || !strings.Contains(err.Error(), "activity_level") {
		t.Fatalf("expected activity_level error, got %v", err)
	}
}

func TestEntry_CommonFood(t *testing.T) {
	out, err := run(t, "entry", "chicken", "--grams", "150")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Chicken Breast (150g)", "Calories: 248", "Protein: 46.5g", "Carbs: 0.0g", "Fat: 5.4g"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestEntry_CustomFoodKeepsMissingMacrosAbsent(t *testing.T) {
	out, err := run(t, "entry", "--calories", "200", "--protein", "10", "--grams", "50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Calories: 100", "Protein: 5.0g", "Carbs: n/a", "Fat: n/a"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestEntry_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no food", []string{"entry"}, "--calories"},
		{"unknown food", []string{"entry", "pizza"}, "no built-in food"},
		{"zero grams", []string{"entry", "banana", "--grams", "0"}, "quantity_g"},
		{"negative macro", []string{"entry", "--calories", "100", "--fat", "-2"}, "fat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFoods(t *testing.T) {
	out, err := run(t, "foods", "RICE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Rice (cooked)\t130\t2.7\t28.0\t0.3") {
		t.Errorf("unexpected output %q", out)
	}

	out, err = run(t, "foods", "pizza")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No foods found") {
		t.Errorf("expected empty message, got %q", out)
	}
}
