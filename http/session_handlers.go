package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"pcosadvisor/advisor"
	"pcosadvisor/monitoring"
	"pcosadvisor/report"
	"pcosadvisor/wizard"
)

// RegisterSessionHandlers registers the wizard session routes.
func RegisterSessionHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/session", handleSessionCreate)
	mux.HandleFunc("GET /api/session/{id}", handleSessionGet)
	mux.HandleFunc("POST /api/session/{id}/name", handleSessionName)
	mux.HandleFunc("POST /api/session/{id}/start", handleSessionStart)
	mux.HandleFunc("POST /api/session/{id}/answers", handleSessionAnswers)
	mux.HandleFunc("POST /api/session/{id}/advance", handleSessionAdvance)
	mux.HandleFunc("POST /api/session/{id}/exercise/regenerate", handleExerciseRegenerate)
	mux.HandleFunc("POST /api/session/{id}/meals/regenerate", handleMealsRegenerate)
	mux.HandleFunc("POST /api/session/{id}/progress", handleSessionProgress)
	mux.HandleFunc("POST /api/session/{id}/reset", handleSessionReset)
	mux.HandleFunc("GET /api/session/{id}/report.pdf", handleSessionReport)
}

// sessionView is the session payload returned by every session route.
type sessionView struct {
	*wizard.Session
	CompletionPercent int `json:"completion_percent"`
}

func respondSession(w http.ResponseWriter, s *wizard.Session, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	view := sessionView{Session: s, CompletionPercent: s.CompletionPercent()}
	if err := json.NewEncoder(w).Encode(view); err != nil {
		logger().Warnw("failed to encode session", "err", err)
	}
}

func lookupSession(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, "session id is required", http.StatusBadRequest)
		return nil, false
	}
	s, ok := sessionStore.Get(id)
	if !ok {
		respondError(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func transitionStatus(err error) int {
	if errors.Is(err, wizard.ErrInvalidTransition) {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	s := sessionStore.Create()
	s.Lock()
	defer s.Unlock()
	respondSession(w, s, http.StatusCreated)
}

func handleSessionGet(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}
	s.Lock()
	defer s.Unlock()
	respondSession(w, s, http.StatusOK)
}

func handleSessionName(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.Lock()
	defer s.Unlock()
	if err := s.SubmitName(req.Name); err != nil {
		respondError(w, err.Error(), transitionStatus(err))
		return
	}
	respondSession(w, s, http.StatusOK)
}

func handleSessionStart(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()
	if err := s.StartAssessment(); err != nil {
		respondError(w, err.Error(), transitionStatus(err))
		return
	}
	respondSession(w, s, http.StatusOK)
}

func handleSessionAnswers(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}

	f := model.Load()
	if f == nil {
		respondError(w, "model not trained", http.StatusServiceUnavailable)
		return
	}

	var answers wizard.Answers
	if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.Lock()
	defer s.Unlock()
	if err := s.SubmitAnswers(&answers, f); err != nil {
		respondError(w, err.Error(), transitionStatus(err))
		return
	}

	if err := savePrediction(s.ID, s.Prediction.Label, s.Prediction.Probability, s.Prediction.BMI); err != nil {
		logger().Warnw("failed to record prediction", "session", s.ID, "err", err)
	}
	if statusHub != nil {
		statusHub.Broadcast(monitoring.PredictionEvent, map[string]interface{}{
			"session_id":  s.ID,
			"label":       s.Prediction.Label,
			"probability": s.Prediction.Probability,
		})
	}

	respondSession(w, s, http.StatusOK)
}

func handleSessionAdvance(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Tier       advisor.Tier       `json:"tier"`
		Preference advisor.Preference `json:"preference"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	s.Lock()
	defer s.Unlock()

	var err error
	switch s.Step {
	case wizard.StepResult:
		err = s.ToExercisePlan(req.Tier, planner)
	case wizard.StepExercisePlan:
		err = s.ToDietPlan(req.Preference, planner)
	case wizard.StepDietPlan:
		err = s.ToSummary()
	default:
		err = wizard.ErrInvalidTransition
	}
	if err != nil {
		respondError(w, err.Error(), transitionStatus(err))
		return
	}
	respondSession(w, s, http.StatusOK)
}

func handleExerciseRegenerate(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Day  *int `json:"day"`
		Week bool `json:"week"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.Lock()
	defer s.Unlock()

	var err error
	switch {
	case req.Week:
		err = s.RegenerateExerciseWeek(planner)
	case req.Day != nil:
		err = s.RegenerateExerciseDay(*req.Day, planner)
	default:
		respondError(w, "day or week is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		respondError(w, err.Error(), transitionStatus(err))
		return
	}
	respondSession(w, s, http.StatusOK)
}

func handleMealsRegenerate(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Day      *int             `json:"day"`
		MealType advisor.MealType `json:"meal_type"`
		Week     bool             `json:"week"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.Lock()
	defer s.Unlock()

	var err error
	switch {
	case req.Week:
		err = s.RegenerateMealWeek(planner)
	case req.Day != nil:
		err = s.RegenerateMeal(*req.Day, req.MealType, planner)
	default:
		respondError(w, "day or week is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		respondError(w, err.Error(), transitionStatus(err))
		return
	}
	respondSession(w, s, http.StatusOK)
}

func handleSessionProgress(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Day  *int `json:"day"`
		Done bool `json:"done"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Day == nil {
		respondError(w, "day is required", http.StatusBadRequest)
		return
	}

	s.Lock()
	defer s.Unlock()
	if err := s.SetDayDone(*req.Day, req.Done); err != nil {
		respondError(w, err.Error(), transitionStatus(err))
		return
	}
	respondSession(w, s, http.StatusOK)
}

func handleSessionReset(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()
	if err := s.Reset(); err != nil {
		respondError(w, err.Error(), transitionStatus(err))
		return
	}
	respondSession(w, s, http.StatusOK)
}

func handleSessionReport(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()

	var buf bytes.Buffer
	if err := report.Build(&buf, s); err != nil {
		respondError(w, err.Error(), transitionStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="pcos_report.pdf"`)
	if _, err := buf.WriteTo(w); err != nil {
		logger().Warnw("failed to write pdf", "session", s.ID, "err", err)
	}
}
