package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/planfit/planfit/internal/database"
	"github.com/planfit/planfit/internal/middleware"
	"github.com/planfit/planfit/internal/models"
)

// testDB creates a fresh in-memory SQLite database with migrations applied.
func testDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testSessionManager creates a cookie-based in-memory session manager.
func testSessionManager() *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = 30 * 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return sm
}

// seedUser creates an account and returns it.
func seedUser(t testing.TB, db *sql.DB) *models.User {
	t.Helper()
	user, err := models.CreateUser(db, "member@test.com", "Member", "One", "password123")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// seedOtherUser creates an additional account with the given email.
func seedOtherUser(t testing.TB, db *sql.DB, email string) *models.User {
	t.Helper()
	user, err := models.CreateUser(db, email, "Other", "User", "password123")
	if err != nil {
		t.Fatalf("seed user %q: %v", email, err)
	}
	return user
}

// seedProfile attaches a profile to a user.
func seedProfile(t testing.TB, db *sql.DB, userID int64) *models.Profile {
	t.Helper()
	p, err := models.CreateProfile(db, userID, 30, models.GenderMale, 180, 80, models.ActivityModeratelyActive, models.ExperienceIntermediate)
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

// seedGoal attaches a goal to a profile.
func seedGoal(t testing.TB, db *sql.DB, profileID int64) *models.Goal {
	t.Helper()
	g, err := models.CreateGoal(db, profileID, models.GoalMuscleGain, 85, models.FrequencyFourDays, models.DurationSixtyMinutes, models.LocationGym)
	if err != nil {
		t.Fatalf("seed goal: %v", err)
	}
	return g
}

// requestWithUser creates a JSON request with the given user set in context
// (simulating the RequireAuth middleware).
func requestWithUser(method, target string, body any, user *models.User) *http.Request {
	var r *http.Request
	if body != nil {
		raw, _ := json.Marshal(body)
		r = httptest.NewRequest(method, target, bytes.NewReader(raw))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, user)
	return r.WithContext(ctx)
}

// decodeBody unmarshals a recorder's JSON body into dst.
func decodeBody(t testing.TB, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}
