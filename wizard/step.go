package wizard

// Step is the wizard position. Transitions are strictly forward; the only
// way back is a full reset from the summary.
type Step int

const (
	StepName Step = iota
	StepWelcome
	StepInput
	StepResult
	StepExercisePlan
	StepDietPlan
	StepSummary
)

var stepNames = map[Step]string{
	StepName:         "name",
	StepWelcome:      "welcome",
	StepInput:        "input",
	StepResult:       "result",
	StepExercisePlan: "exercise_plan",
	StepDietPlan:     "diet_plan",
	StepSummary:      "summary",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Step) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}
