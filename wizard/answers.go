package wizard

import (
	"errors"
	"fmt"
)

// ErrIncompleteAnswers is returned when fewer than all 13 answers are
// present; the session stays on the input step.
var ErrIncompleteAnswers = errors.New("all 13 answers are required")

type numericBound struct {
	name string
	min  float64
	max  float64
}

// Answers collects the questionnaire inputs. Pointer fields distinguish
// "not answered" from a zero value; the wizard only accepts a complete set.
type Answers struct {
	Age             *float64 `json:"age"`
	WeightKg        *float64 `json:"weight_kg"`
	HeightCm        *float64 `json:"height_cm"`
	SleepHours      *float64 `json:"sleep_hours"`
	ExerciseMinutes *float64 `json:"exercise_minutes"`

	FamilyHistory         *bool `json:"family_history_pcos"`
	MenstrualIrregularity *bool `json:"menstrual_irregularity"`
	HormonalImbalance     *bool `json:"hormonal_imbalance"`
	Hirsutism             *bool `json:"hirsutism"`
	MentalHealth          *bool `json:"mental_health"`
	InsulinResistance     *bool `json:"insulin_resistance"`
	Diabetes              *bool `json:"diabetes"`
	Smoking               *bool `json:"smoking"`
}

func (a *Answers) numeric() []*float64 {
	return []*float64{a.Age, a.WeightKg, a.HeightCm, a.SleepHours, a.ExerciseMinutes}
}

func (a *Answers) binary() []*bool {
	return []*bool{
		a.FamilyHistory, a.MenstrualIrregularity, a.HormonalImbalance,
		a.Hirsutism, a.MentalHealth, a.InsulinResistance, a.Diabetes, a.Smoking,
	}
}

// Complete reports whether all 5 numeric and 8 binary answers are present.
func (a *Answers) Complete() bool {
	for _, v := range a.numeric() {
		if v == nil {
			return false
		}
	}
	for _, v := range a.binary() {
		if v == nil {
			return false
		}
	}
	return true
}

var bounds = []numericBound{
	{"age", 15, 45},
	{"weight_kg", 35, 120},
	{"height_cm", 140, 180},
	{"sleep_hours", 4, 10},
	{"exercise_minutes", 0, 90},
}

// Validate checks completeness and the slider bounds of the input form.
func (a *Answers) Validate() error {
	if !a.Complete() {
		return ErrIncompleteAnswers
	}
	for i, v := range a.numeric() {
		b := bounds[i]
		if *v < b.min || *v > b.max {
			return fmt.Errorf("%s %g outside [%g, %g]", b.name, *v, b.min, b.max)
		}
	}
	return nil
}

// FeatureVector projects the answers into the training feature order:
// Age, Weight_kg, Sleep_Hours, Exercise_Duration, then the eight binary
// indicators. Height is not a model feature; it only feeds the BMI. The
// caller must have validated completeness first.
func (a *Answers) FeatureVector() []float64 {
	vector := make([]float64, 0, 12)
	vector = append(vector, *a.Age, *a.WeightKg, *a.SleepHours, *a.ExerciseMinutes)
	for _, v := range a.binary() {
		vector = append(vector, boolToFloat(*v))
	}
	return vector
}

func boolToFloat(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
