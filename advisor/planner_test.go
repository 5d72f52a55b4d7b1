package advisor

import (
	"math/rand"
	"testing"
)

func newTestPlanner() *Planner {
	return NewPlanner(rand.New(rand.NewSource(1)))
}

func TestWeekExercisePlanShape(t *testing.T) {
	for _, tier := range []Tier{TierBeginner, TierIntermediate, TierAdvanced} {
		plan, err := newTestPlanner().WeekExercisePlan(tier)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tier, err)
		}
		if len(plan) != 7 {
			t.Fatalf("expected 7 entries, got %d", len(plan))
		}
		if plan[6].Activity != RecoveryActivity || plan[6].Category != Recovery {
			t.Fatalf("expected fixed Sunday recovery for %s, got %+v", tier, plan[6])
		}
		if plan[0].Category != Cardio {
			t.Fatalf("expected Cardio on Monday, got %s", plan[0].Category)
		}
		if plan[1].Category != Strength || plan[2].Category != Flexibility {
			t.Fatalf("unexpected weekday rotation: %s, %s", plan[1].Category, plan[2].Category)
		}
		if plan[3].Category != Cardio {
			t.Fatalf("expected rotation to wrap to Cardio on Thursday, got %s", plan[3].Category)
		}
		for i, entry := range plan {
			if entry.Activity == "" {
				t.Fatalf("day %d has empty activity", i)
			}
			if entry.Day != Days[i] {
				t.Fatalf("day %d labeled %s, expected %s", i, entry.Day, Days[i])
			}
		}
	}
}

func TestWeekExercisePlanUnknownTier(t *testing.T) {
	if _, err := newTestPlanner().WeekExercisePlan(Tier("Expert")); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}

func TestExercisePlanDeterministicWithFixedSeed(t *testing.T) {
	planA, err := NewPlanner(rand.New(rand.NewSource(9))).WeekExercisePlan(TierIntermediate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	planB, err := NewPlanner(rand.New(rand.NewSource(9))).WeekExercisePlan(TierIntermediate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range planA {
		if planA[i] != planB[i] {
			t.Fatalf("day %d differs: %+v vs %+v", i, planA[i], planB[i])
		}
	}
}

func TestRegenerateExerciseDay(t *testing.T) {
	planner := newTestPlanner()
	entry, err := planner.RegenerateExerciseDay(TierBeginner, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Day != "Wednesday" || entry.Activity == "" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	found := false
	for _, candidate := range exercisePool[TierBeginner][entry.Category] {
		if candidate == entry.Activity {
			found = true
		}
	}
	if !found {
		t.Fatalf("activity %q not in the %s pool", entry.Activity, entry.Category)
	}
}

func TestRegenerateExerciseSundayStaysFixed(t *testing.T) {
	planner := newTestPlanner()
	for i := 0; i < 10; i++ {
		entry, err := planner.RegenerateExerciseDay(TierAdvanced, 6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.Activity != RecoveryActivity {
			t.Fatalf("Sunday regeneration changed the recovery entry: %+v", entry)
		}
	}
}

func TestRegenerateExerciseDayOutOfRange(t *testing.T) {
	if _, err := newTestPlanner().RegenerateExerciseDay(TierBeginner, 7); err == nil {
		t.Fatal("expected error for day index 7")
	}
}

func TestWeekMealPlanShape(t *testing.T) {
	for _, pref := range []Preference{Vegetarian, NonVegetarian} {
		plan, err := newTestPlanner().WeekMealPlan(pref)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", pref, err)
		}
		if len(plan) != 7 {
			t.Fatalf("expected 7 days, got %d", len(plan))
		}
		for i, meals := range plan {
			if len(meals) != 4 {
				t.Fatalf("day %d has %d meals, expected 4", i, len(meals))
			}
			for _, mealType := range MealTypes {
				if meals[mealType] == "" {
					t.Fatalf("day %d missing %s", i, mealType)
				}
			}
		}
	}
}

func TestRegenerateMeal(t *testing.T) {
	planner := newTestPlanner()
	meal, err := planner.RegenerateMeal(Vegetarian, Lunch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, candidate := range mealPool[Vegetarian][Lunch] {
		if candidate == meal {
			found = true
		}
	}
	if !found {
		t.Fatalf("meal %q not in the vegetarian lunch pool", meal)
	}
	if _, err := planner.RegenerateMeal(Preference("Pescatarian"), Lunch); err == nil {
		t.Fatal("expected error for unknown preference")
	}
	if _, err := planner.RegenerateMeal(Vegetarian, MealType("Brunch")); err == nil {
		t.Fatal("expected error for unknown meal type")
	}
}

func TestCategoryForDay(t *testing.T) {
	want := []Category{Cardio, Strength, Flexibility, Cardio, Strength, Flexibility, Recovery}
	for i, category := range want {
		if got := CategoryForDay(i); got != category {
			t.Fatalf("day %d: got %s, want %s", i, got, category)
		}
	}
}
