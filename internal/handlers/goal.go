package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/planfit/planfit/internal/middleware"
	"github.com/planfit/planfit/internal/models"
)

// Goal handles the caller's fitness goal and its weight check-ins.
type Goal struct {
	DB *sql.DB
}

type goalView struct {
	ID                 int64     `json:"id"`
	GoalType           string    `json:"goalType"`
	TargetWeight       float64   `json:"targetWeight"`
	WorkoutFrequency   string    `json:"workoutFrequency"`
	WorkoutDuration    string    `json:"workoutDuration"`
	LocationPreference string    `json:"locationPreference"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func viewGoal(g *models.Goal) goalView {
	return goalView{
		ID:                 g.ID,
		GoalType:           g.GoalType,
		TargetWeight:       g.TargetWeight,
		WorkoutFrequency:   g.WorkoutFrequency,
		WorkoutDuration:    g.WorkoutDuration,
		LocationPreference: g.LocationPreference,
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}

type goalRequest struct {
	GoalType           string  `json:"goalType"`
	TargetWeight       float64 `json:"targetWeight"`
	WorkoutFrequency   string  `json:"workoutFrequency"`
	WorkoutDuration    string  `json:"workoutDuration"`
	LocationPreference string  `json:"locationPreference"`
}

// loadProfile fetches the caller's profile, writing a 412 when none exists
// since every goal operation requires one.
func (h *Goal) loadProfile(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	user := middleware.UserFromContext(r.Context())
	profile, err := models.GetProfileByUserID(h.DB, user.ID)
	if err == models.ErrNotFound {
		writeError(w, http.StatusPreconditionFailed, "complete your profile first")
		return nil, false
	}
	if err != nil {
		writeModelError(w, err)
		return nil, false
	}
	return profile, true
}

// Get returns the caller's goal.
func (h *Goal) Get(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	goal, err := models.GetGoalByProfileID(h.DB, profile.ID)
	if err != nil {
		writeModelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewGoal(goal))
}

// Create sets the caller's goal. Each profile has exactly one.
func (h *Goal) Create(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := models.CreateGoal(h.DB, profile.ID, req.GoalType, req.TargetWeight, req.WorkoutFrequency, req.WorkoutDuration, req.LocationPreference)
	if err == models.ErrGoalExists {
		writeError(w, http.StatusConflict, "goal already exists")
		return
	}
	if err != nil {
		writeModelError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewGoal(goal))
}

// Update modifies the caller's goal.
func (h *Goal) Update(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	goal, err := models.GetGoalByProfileID(h.DB, profile.ID)
	if err != nil {
		writeModelError(w, err)
		return
	}

	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := models.UpdateGoal(h.DB, goal.ID, req.GoalType, req.TargetWeight, req.WorkoutFrequency, req.WorkoutDuration, req.LocationPreference)
	if err != nil {
		writeModelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewGoal(updated))
}

type progressView struct {
	ID             int64     `json:"id"`
	ProgressWeight float64   `json:"progressWeight"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AddProgress records a weight check-in against the caller's goal.
func (h *Goal) AddProgress(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	goal, err := models.GetGoalByProfileID(h.DB, profile.ID)
	if err == models.ErrNotFound {
		writeError(w, http.StatusPreconditionFailed, "set a goal first")
		return
	}
	if err != nil {
		writeModelError(w, err)
		return
	}

	var req struct {
		ProgressWeight float64 `json:"progressWeight"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := models.CreateProgress(h.DB, goal.ID, req.ProgressWeight)
	if err != nil {
		writeModelError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, progressView{ID: entry.ID, ProgressWeight: entry.ProgressWeight, CreatedAt: entry.CreatedAt})
}

// ListProgress returns the caller's check-ins, oldest first.
func (h *Goal) ListProgress(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	goal, err := models.GetGoalByProfileID(h.DB, profile.ID)
	if err != nil {
		writeModelError(w, err)
		return
	}

	entries, err := models.ListProgressByGoal(h.DB, goal.ID)
	if err != nil {
		writeModelError(w, err)
		return
	}

	views := make([]progressView, 0, len(entries))
	for _, e := range entries {
		views = append(views, progressView{ID: e.ID, ProgressWeight: e.ProgressWeight, CreatedAt: e.CreatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"progress": views})
}
