package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoal_Create(t *testing.T) {
	db := testDB(t)
	h := &Goal{DB: db}
	user := seedUser(t, db)

	t.Run("requires profile", func(t *testing.T) {
		body := map[string]any{
			"goalType": "MUSCLE_GAIN", "targetWeight": 85.0,
			"workoutFrequency": "FOUR_DAYS", "workoutDuration": "SIXTY_MINUTES",
			"locationPreference": "GYM",
		}
		r := requestWithUser("POST", "/profile/goal", body, user)
		w := httptest.NewRecorder()
		h.Create(w, r)

		if w.Code != http.StatusPreconditionFailed {
			t.Errorf("status = %d, want 412", w.Code)
		}
	})

	t.Run("creates goal", func(t *testing.T) {
		seedProfile(t, db, user.ID)
		body := map[string]any{
			"goalType": "MUSCLE_GAIN", "targetWeight": 85.0,
			"workoutFrequency": "FOUR_DAYS", "workoutDuration": "SIXTY_MINUTES",
			"locationPreference": "GYM",
		}
		r := requestWithUser("POST", "/profile/goal", body, user)
		w := httptest.NewRecorder()
		h.Create(w, r)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
		}
		var resp goalView
		decodeBody(t, w, &resp)
		if resp.WorkoutFrequency != "FOUR_DAYS" {
			t.Errorf("frequency = %q", resp.WorkoutFrequency)
		}
	})

	t.Run("second goal conflicts", func(t *testing.T) {
		body := map[string]any{
			"goalType": "WEIGHT_LOSS", "targetWeight": 75.0,
			"workoutFrequency": "THREE_DAYS", "workoutDuration": "THIRTY_MINUTES",
			"locationPreference": "HOME",
		}
		r := requestWithUser("POST", "/profile/goal", body, user)
		w := httptest.NewRecorder()
		h.Create(w, r)

		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
	})
}

func TestGoal_Update(t *testing.T) {
	db := testDB(t)
	h := &Goal{DB: db}
	user := seedUser(t, db)
	p := seedProfile(t, db, user.ID)
	seedGoal(t, db, p.ID)

	body := map[string]any{
		"goalType": "IMPROVE_ENDURANCE", "targetWeight": 82.0,
		"workoutFrequency": "FIVE_DAYS", "workoutDuration": "FORTY_FIVE_MINUTES",
		"locationPreference": "HOME",
	}
	r := requestWithUser("PUT", "/profile/goal", body, user)
	w := httptest.NewRecorder()
	h.Update(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp goalView
	decodeBody(t, w, &resp)
	if resp.GoalType != "IMPROVE_ENDURANCE" {
		t.Errorf("goal type = %q", resp.GoalType)
	}
}

func TestGoal_Progress(t *testing.T) {
	db := testDB(t)
	h := &Goal{DB: db}
	user := seedUser(t, db)
	p := seedProfile(t, db, user.ID)

	t.Run("requires goal", func(t *testing.T) {
		r := requestWithUser("POST", "/profile/goal/progress", map[string]any{"progressWeight": 79.0}, user)
		w := httptest.NewRecorder()
		h.AddProgress(w, r)

		if w.Code != http.StatusPreconditionFailed {
			t.Errorf("status = %d, want 412", w.Code)
		}
	})

	seedGoal(t, db, p.ID)

	t.Run("records and lists check-ins", func(t *testing.T) {
		for _, weight := range []float64{82, 81.3} {
			r := requestWithUser("POST", "/profile/goal/progress", map[string]any{"progressWeight": weight}, user)
			w := httptest.NewRecorder()
			h.AddProgress(w, r)
			if w.Code != http.StatusCreated {
				t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
			}
		}

		r := requestWithUser("GET", "/profile/goal/progress", nil, user)
		w := httptest.NewRecorder()
		h.ListProgress(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var resp struct {
			Progress []progressView `json:"progress"`
		}
		decodeBody(t, w, &resp)
		if len(resp.Progress) != 2 {
			t.Fatalf("entries = %d, want 2", len(resp.Progress))
		}
		if resp.Progress[0].ProgressWeight != 82 {
			t.Errorf("first entry = %v, want 82", resp.Progress[0].ProgressWeight)
		}
	})

	t.Run("rejects non-positive weight", func(t *testing.T) {
		r := requestWithUser("POST", "/profile/goal/progress", map[string]any{"progressWeight": -1.0}, user)
		w := httptest.NewRecorder()
		h.AddProgress(w, r)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", w.Code)
		}
	})
}
