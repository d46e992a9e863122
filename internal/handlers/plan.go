package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/planfit/planfit/internal/llm"
	"github.com/planfit/planfit/internal/middleware"
	"github.com/planfit/planfit/internal/models"
)

// Plan handles workout plan reads and generation.
type Plan struct {
	DB *sql.DB

	// Provider overrides provider construction when set; tests inject a
	// mock here. When nil, the provider is built from app settings per
	// request.
	Provider llm.Provider

	mu       sync.Mutex
	inFlight map[int64]bool // profile IDs with a generation running
}

type exerciseView struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
}

type dayView struct {
	Day         string         `json:"day"`
	WorkoutType string         `json:"workoutType"`
	Notes       string         `json:"notes"`
	Exercises   []exerciseView `json:"exercises"`
}

type planView struct {
	ID        int64     `json:"id"`
	Workouts  []dayView `json:"workouts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func viewPlan(p *models.WorkoutPlan) planView {
	view := planView{ID: p.ID, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt, Workouts: []dayView{}}
	for _, d := range p.Days {
		dv := dayView{Day: d.Day, WorkoutType: d.WorkoutType, Notes: d.Notes, Exercises: []exerciseView{}}
		for _, e := range d.Exercises {
			dv.Exercises = append(dv.Exercises, exerciseView{Name: e.Name, Sets: e.Sets, Reps: e.Reps})
		}
		view.Workouts = append(view.Workouts, dv)
	}
	return view
}

// loadProfile fetches the caller's profile, writing a 412 when none exists.
func (h *Plan) loadProfile(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
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

// Get returns the caller's current workout plan.
func (h *Plan) Get(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	plan, err := models.GetWorkoutPlanByProfileID(h.DB, profile.ID)
	if err != nil {
		writeModelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewPlan(plan))
}

// acquire marks a profile's generation as in flight. Returns false if one
// is already running for that profile.
func (h *Plan) acquire(profileID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inFlight == nil {
		h.inFlight = make(map[int64]bool)
	}
	if h.inFlight[profileID] {
		return false
	}
	h.inFlight[profileID] = true
	return true
}

func (h *Plan) release(profileID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.inFlight, profileID)
}

func (h *Plan) provider() (llm.Provider, error) {
	if h.Provider != nil {
		return h.Provider, nil
	}
	return llm.NewProviderFromSettings(h.DB)
}

// Generate runs the full pipeline: load profile and goal, call the model,
// validate the response, and persist the plan. Regeneration replaces the
// existing plan's days atomically. Only one generation may run per profile
// at a time; a second concurrent request gets 409.
func (h *Plan) Generate(w http.ResponseWriter, r *http.Request) {
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

	if !h.acquire(profile.ID) {
		writeError(w, http.StatusConflict, "a plan generation is already running for this profile")
		return
	}
	defer h.release(profile.ID)

	provider, err := h.provider()
	if err == llm.ErrNotConfigured {
		writeError(w, http.StatusServiceUnavailable, "plan generation is not configured")
		return
	}
	if err != nil {
		log.Printf("handlers: build provider: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	start := time.Now()
	result, err := llm.GeneratePlan(r.Context(), h.DB, provider, profile, goal)
	if err != nil {
		h.writeGenerationError(w, profile.ID, err)
		return
	}
	log.Printf("handlers: generated plan for profile %d: model=%s tokens=%d attempts=%d in %s",
		profile.ID, result.Model, result.TokensUsed, result.Attempts, time.Since(start).Round(time.Millisecond))

	plan, created, err := h.storePlan(profile.ID, result.Days)
	if err != nil {
		log.Printf("handlers: store plan for profile %d: %v", profile.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to save the generated plan")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, viewPlan(plan))
}

// storePlan creates the profile's plan, or replaces its days when one
// already exists. Returns whether a new plan row was created.
func (h *Plan) storePlan(profileID int64, days []models.DayInput) (*models.WorkoutPlan, bool, error) {
	existing, err := models.GetWorkoutPlanByProfileID(h.DB, profileID)
	if err == nil {
		plan, err := models.ReplaceWorkoutPlanDays(h.DB, existing.ID, days)
		return plan, false, err
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, err
	}

	plan, err := models.CreateWorkoutPlan(h.DB, profileID, days)
	if err == models.ErrPlanExists {
		// Lost a race with another writer; fall back to replace.
		existing, gerr := models.GetWorkoutPlanByProfileID(h.DB, profileID)
		if gerr != nil {
			return nil, false, gerr
		}
		plan, err = models.ReplaceWorkoutPlanDays(h.DB, existing.ID, days)
		return plan, false, err
	}
	return plan, true, err
}

func (h *Plan) writeGenerationError(w http.ResponseWriter, profileID int64, err error) {
	log.Printf("handlers: generate plan for profile %d: %v", profileID, err)

	var apiErr *llm.APIError
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr):
		writeError(w, http.StatusBadGateway, apiErr.UserMessage())
	case errors.Is(err, llm.ErrMalformedOutput):
		writeError(w, http.StatusBadGateway, "The AI returned an unusable plan. Please try again.")
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		writeError(w, http.StatusGatewayTimeout, "Plan generation timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		// Client went away; the status code is moot but 499-style
		// semantics aren't available in net/http.
		writeError(w, http.StatusBadGateway, "generation cancelled")
	default:
		writeError(w, http.StatusInternalServerError, "Plan generation failed. Please try again.")
	}
}
