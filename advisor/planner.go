package advisor

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// ExerciseEntry is one day's workout assignment, tagged with its category.
type ExerciseEntry struct {
	Day      string   `json:"day"`
	Category Category `json:"category"`
	Activity string   `json:"activity"`
}

// DayMeals maps each meal slot of one day to the drawn entry.
type DayMeals map[MealType]string

// Planner draws plan entries from the fixed pools. The random source is
// injected so tests can fix the sequence; a nil source falls back to a
// time-seeded one. Draws are serialized because rand.Rand is not safe for
// concurrent use.
type Planner struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPlanner(rnd *rand.Rand) *Planner {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Planner{rnd: rnd}
}

// WeekExercisePlan assigns one workout per day. Sunday is always the fixed
// recovery entry; the other days rotate Cardio/Strength/Flexibility by day
// index and draw uniformly within the category. Repeats across days are
// allowed.
func (p *Planner) WeekExercisePlan(tier Tier) ([]ExerciseEntry, error) {
	pool, ok := exercisePool[tier]
	if !ok {
		return nil, fmt.Errorf("unknown tier %q", tier)
	}
	plan := make([]ExerciseEntry, len(Days))
	for i, day := range Days {
		if i == sundayIndex {
			plan[i] = ExerciseEntry{Day: day, Category: Recovery, Activity: RecoveryActivity}
			continue
		}
		category := CategoryForDay(i)
		plan[i] = ExerciseEntry{Day: day, Category: category, Activity: p.pick(pool[category])}
	}
	return plan, nil
}

// RegenerateExerciseDay redraws a single day. The replacement category is
// itself drawn uniformly from the three workout categories. Sunday stays the
// fixed recovery entry.
func (p *Planner) RegenerateExerciseDay(tier Tier, dayIdx int) (ExerciseEntry, error) {
	if dayIdx < 0 || dayIdx >= len(Days) {
		return ExerciseEntry{}, fmt.Errorf("day index %d out of range", dayIdx)
	}
	pool, ok := exercisePool[tier]
	if !ok {
		return ExerciseEntry{}, fmt.Errorf("unknown tier %q", tier)
	}
	if dayIdx == sundayIndex {
		return ExerciseEntry{Day: Days[dayIdx], Category: Recovery, Activity: RecoveryActivity}, nil
	}
	category := p.pickCategory()
	return ExerciseEntry{Day: Days[dayIdx], Category: category, Activity: p.pick(pool[category])}, nil
}

// WeekMealPlan draws one entry per meal type per day, all independently.
func (p *Planner) WeekMealPlan(pref Preference) ([]DayMeals, error) {
	pool, ok := mealPool[pref]
	if !ok {
		return nil, fmt.Errorf("unknown preference %q", pref)
	}
	plan := make([]DayMeals, len(Days))
	for i := range Days {
		meals := make(DayMeals, len(MealTypes))
		for _, mealType := range MealTypes {
			meals[mealType] = p.pick(pool[mealType])
		}
		plan[i] = meals
	}
	return plan, nil
}

// RegenerateMeal redraws one meal slot.
func (p *Planner) RegenerateMeal(pref Preference, mealType MealType) (string, error) {
	pool, ok := mealPool[pref]
	if !ok {
		return "", fmt.Errorf("unknown preference %q", pref)
	}
	entries, ok := pool[mealType]
	if !ok {
		return "", fmt.Errorf("unknown meal type %q", mealType)
	}
	return p.pick(entries), nil
}

func (p *Planner) pick(entries []string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return entries[p.rnd.Intn(len(entries))]
}

func (p *Planner) pickCategory() Category {
	p.mu.Lock()
	defer p.mu.Unlock()
	return weekdayCategories[p.rnd.Intn(len(weekdayCategories))]
}
