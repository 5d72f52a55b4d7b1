package wizard

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pcosadvisor/advisor"
	"pcosadvisor/ml"
)

// ErrInvalidTransition is returned when an operation is invoked in a step
// it does not belong to. The session is left unchanged.
var ErrInvalidTransition = errors.New("operation not allowed in current step")

// Scorer produces a class label and a positive-class probability in [0,1]
// for one feature vector.
type Scorer interface {
	Predict(features []float64) (int, float64, error)
}

// Prediction is the scoring outcome stored on the session. Probability is
// a percentage.
type Prediction struct {
	Label       int     `json:"label"`
	Probability float64 `json:"probability"`
	BMI         float64 `json:"bmi"`
}

// Session is one user's wizard state. All mutation goes through the
// transition methods; callers serialize access via Lock/Unlock.
type Session struct {
	mu sync.Mutex

	ID         string                  `json:"id"`
	Step       Step                    `json:"step"`
	Name       string                  `json:"name"`
	Answers    *Answers                `json:"answers,omitempty"`
	Prediction *Prediction             `json:"prediction,omitempty"`
	Tier       advisor.Tier            `json:"tier,omitempty"`
	Preference advisor.Preference      `json:"preference,omitempty"`
	Exercise   []advisor.ExerciseEntry `json:"exercise_plan,omitempty"`
	Meals      []advisor.DayMeals      `json:"meal_plan,omitempty"`
	DaysDone   [7]bool                 `json:"days_done"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

// SubmitName moves Name -> Welcome. An empty trimmed name is rejected and
// the session stays put.
func (s *Session) SubmitName(name string) error {
	if s.Step != StepName {
		return ErrInvalidTransition
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name must not be empty")
	}
	s.Name = name
	s.Step = StepWelcome
	s.touch()
	return nil
}

// StartAssessment moves Welcome -> Input.
func (s *Session) StartAssessment() error {
	if s.Step != StepWelcome {
		return ErrInvalidTransition
	}
	s.Step = StepInput
	s.touch()
	return nil
}

// SubmitAnswers guards Input -> Result: all 13 answers must be present and
// within bounds, then the scorer runs exactly once. The stored probability
// is the positive-class probability as a percentage; BMI is derived from
// the raw weight and height independently of the classifier.
func (s *Session) SubmitAnswers(answers *Answers, scorer Scorer) error {
	if s.Step != StepInput {
		return ErrInvalidTransition
	}
	if answers == nil {
		return ErrIncompleteAnswers
	}
	if err := answers.Validate(); err != nil {
		return err
	}
	label, prob, err := scorer.Predict(answers.FeatureVector())
	if err != nil {
		return fmt.Errorf("score answers: %w", err)
	}
	s.Answers = answers
	s.Prediction = &Prediction{
		Label:       label,
		Probability: prob * 100,
		BMI:         ml.BMI(*answers.WeightKg, *answers.HeightCm),
	}
	s.Step = StepResult
	s.touch()
	return nil
}

// ToExercisePlan moves Result -> ExercisePlan and draws the week's workouts
// for the chosen tier.
func (s *Session) ToExercisePlan(tier advisor.Tier, planner *advisor.Planner) error {
	if s.Step != StepResult {
		return ErrInvalidTransition
	}
	plan, err := planner.WeekExercisePlan(tier)
	if err != nil {
		return err
	}
	s.Tier = tier
	s.Exercise = plan
	s.DaysDone = [7]bool{}
	s.Step = StepExercisePlan
	s.touch()
	return nil
}

// ToDietPlan moves ExercisePlan -> DietPlan and draws the week's meals.
func (s *Session) ToDietPlan(pref advisor.Preference, planner *advisor.Planner) error {
	if s.Step != StepExercisePlan {
		return ErrInvalidTransition
	}
	plan, err := planner.WeekMealPlan(pref)
	if err != nil {
		return err
	}
	s.Preference = pref
	s.Meals = plan
	s.Step = StepDietPlan
	s.touch()
	return nil
}

// ToSummary moves DietPlan -> Summary.
func (s *Session) ToSummary() error {
	if s.Step != StepDietPlan {
		return ErrInvalidTransition
	}
	s.Step = StepSummary
	s.touch()
	return nil
}

// Reset moves Summary -> Name and clears everything collected along the way.
func (s *Session) Reset() error {
	if s.Step != StepSummary {
		return ErrInvalidTransition
	}
	s.Name = ""
	s.Answers = nil
	s.Prediction = nil
	s.Tier = ""
	s.Preference = ""
	s.Exercise = nil
	s.Meals = nil
	s.DaysDone = [7]bool{}
	s.Step = StepName
	s.touch()
	return nil
}

// RegenerateExerciseDay redraws one workout slot in place. Allowed on the
// exercise plan step and later review steps, since the plan stays visible.
func (s *Session) RegenerateExerciseDay(dayIdx int, planner *advisor.Planner) error {
	if err := s.requirePlan(); err != nil {
		return err
	}
	entry, err := planner.RegenerateExerciseDay(s.Tier, dayIdx)
	if err != nil {
		return err
	}
	s.Exercise[dayIdx] = entry
	s.touch()
	return nil
}

// RegenerateExerciseWeek redraws all seven slots and clears the completion
// flags.
func (s *Session) RegenerateExerciseWeek(planner *advisor.Planner) error {
	if err := s.requirePlan(); err != nil {
		return err
	}
	plan, err := planner.WeekExercisePlan(s.Tier)
	if err != nil {
		return err
	}
	s.Exercise = plan
	s.DaysDone = [7]bool{}
	s.touch()
	return nil
}

// RegenerateMeal redraws a single meal slot.
func (s *Session) RegenerateMeal(dayIdx int, mealType advisor.MealType, planner *advisor.Planner) error {
	if s.Step != StepDietPlan && s.Step != StepSummary {
		return ErrInvalidTransition
	}
	if dayIdx < 0 || dayIdx >= len(s.Meals) {
		return fmt.Errorf("day index %d out of range", dayIdx)
	}
	meal, err := planner.RegenerateMeal(s.Preference, mealType)
	if err != nil {
		return err
	}
	s.Meals[dayIdx][mealType] = meal
	s.touch()
	return nil
}

// RegenerateMealWeek redraws every meal slot of the week.
func (s *Session) RegenerateMealWeek(planner *advisor.Planner) error {
	if s.Step != StepDietPlan && s.Step != StepSummary {
		return ErrInvalidTransition
	}
	plan, err := planner.WeekMealPlan(s.Preference)
	if err != nil {
		return err
	}
	s.Meals = plan
	s.touch()
	return nil
}

// SetDayDone flips one day's completion flag on the progress tracker.
func (s *Session) SetDayDone(dayIdx int, done bool) error {
	if err := s.requirePlan(); err != nil {
		return err
	}
	if dayIdx < 0 || dayIdx >= len(s.DaysDone) {
		return fmt.Errorf("day index %d out of range", dayIdx)
	}
	s.DaysDone[dayIdx] = done
	s.touch()
	return nil
}

// CompletionPercent is the progress tracker value.
func (s *Session) CompletionPercent() int {
	done := 0
	for _, flag := range s.DaysDone {
		if flag {
			done++
		}
	}
	return done * 100 / len(s.DaysDone)
}

func (s *Session) requirePlan() error {
	if s.Step != StepExercisePlan && s.Step != StepDietPlan && s.Step != StepSummary {
		return ErrInvalidTransition
	}
	if len(s.Exercise) == 0 {
		return errors.New("no exercise plan generated")
	}
	return nil
}
