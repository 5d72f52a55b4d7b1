package http

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"

	"pcosadvisor/advisor"
	"pcosadvisor/db"
	"pcosadvisor/ml"
	"pcosadvisor/monitoring"
	"pcosadvisor/wizard"
)

var (
	sessionStore *wizard.Store
	planner      *advisor.Planner
	model        atomic.Pointer[ml.Forest]
	statusHub    *monitoring.Hub
	log          atomic.Pointer[zap.SugaredLogger]

	// Swappable for tests that do not open a database.
	savePrediction = db.SavePrediction
)

// SetStore installs the session store.
func SetStore(st *wizard.Store) {
	sessionStore = st
}

// SetPlanner installs the recommendation planner.
func SetPlanner(p *advisor.Planner) {
	planner = p
}

// SetModel swaps the trained model. Safe to call while serving, which is
// how dataset reloads roll out a retrained forest.
func SetModel(f *ml.Forest) {
	model.Store(f)
}

// SetHub installs the websocket status hub.
func SetHub(h *monitoring.Hub) {
	statusHub = h
}

// SetLogger installs the package logger.
func SetLogger(l *zap.SugaredLogger) {
	log.Store(l)
}

func logger() *zap.SugaredLogger {
	if l := log.Load(); l != nil {
		return l
	}
	return zap.NewNop().Sugar()
}

// RegisterHandlers registers the non-session routes.
func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/model/metrics", handleModelMetrics)
	mux.HandleFunc("GET /api/ws/status", handleWSStatus)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func handleModelMetrics(w http.ResponseWriter, r *http.Request) {
	f := model.Load()
	if f == nil {
		respondError(w, "model not trained", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, f.Metrics())
}

func handleWSStatus(w http.ResponseWriter, r *http.Request) {
	if statusHub == nil {
		respondError(w, "status hub not running", http.StatusServiceUnavailable)
		return
	}
	statusHub.HandleWS(w, r)
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger().Warnw("failed to encode json", "err", err)
	}
}

func respondError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
