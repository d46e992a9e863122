package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/planfit/planfit/internal/middleware"
	"github.com/planfit/planfit/internal/models"
)

// Profile handles the authenticated user's biometric profile.
type Profile struct {
	DB *sql.DB
}

type profileView struct {
	ID                 int64     `json:"id"`
	Age                int       `json:"age"`
	Gender             string    `json:"gender"`
	Height             float64   `json:"height"`
	Weight             float64   `json:"weight"`
	ActivityLevel      string    `json:"activityLevel"`
	ExerciseExperience string    `json:"exerciseExperience"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func viewProfile(p *models.Profile) profileView {
	return profileView{
		ID:                 p.ID,
		Age:                p.Age,
		Gender:             p.Gender,
		Height:             p.Height,
		Weight:             p.Weight,
		ActivityLevel:      p.ActivityLevel,
		ExerciseExperience: p.ExerciseExperience,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

type profileRequest struct {
	Age                int     `json:"age"`
	Gender             string  `json:"gender"`
	Height             float64 `json:"height"`
	Weight             float64 `json:"weight"`
	ActivityLevel      string  `json:"activityLevel"`
	ExerciseExperience string  `json:"exerciseExperience"`
}

// Get returns the caller's profile.
func (h *Profile) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	profile, err := models.GetProfileByUserID(h.DB, user.ID)
	if err != nil {
		writeModelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewProfile(profile))
}

// Create sets up the caller's profile. Each user has exactly one.
func (h *Profile) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := models.CreateProfile(h.DB, user.ID, req.Age, req.Gender, req.Height, req.Weight, req.ActivityLevel, req.ExerciseExperience)
	if err == models.ErrProfileExists {
		writeError(w, http.StatusConflict, "profile already exists")
		return
	}
	if err != nil {
		writeModelError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewProfile(profile))
}

// Update modifies the caller's profile.
func (h *Profile) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	profile, err := models.GetProfileByUserID(h.DB, user.ID)
	if err != nil {
		writeModelError(w, err)
		return
	}

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := models.UpdateProfile(h.DB, profile.ID, req.Age, req.Gender, req.Height, req.Weight, req.ActivityLevel, req.ExerciseExperience)
	if err != nil {
		writeModelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewProfile(updated))
}

// Delete removes the caller's profile along with its goal and plan.
func (h *Profile) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	profile, err := models.GetProfileByUserID(h.DB, user.ID)
	if err != nil {
		writeModelError(w, err)
		return
	}
	if err := models.DeleteProfile(h.DB, profile.ID); err != nil {
		writeModelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
