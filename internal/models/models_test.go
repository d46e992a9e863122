package models

import (
	"database/sql"
	"testing"

	"github.com/planfit/planfit/internal/database"
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

// testProfile creates a user with a profile and returns the profile.
func testProfile(t testing.TB, db *sql.DB) *Profile {
	t.Helper()

	u, err := CreateUser(db, "fixture@test.com", "Fix", "Ture", "password123")
	if err != nil {
		t.Fatalf("create fixture user: %v", err)
	}
	p, err := CreateProfile(db, u.ID, 30, GenderMale, 180, 82, ActivityModeratelyActive, ExperienceIntermediate)
	if err != nil {
		t.Fatalf("create fixture profile: %v", err)
	}
	return p
}

// testGoal attaches a goal to a profile and returns it.
func testGoal(t testing.TB, db *sql.DB, profileID int64) *Goal {
	t.Helper()

	g, err := CreateGoal(db, profileID, GoalMuscleGain, 85, FrequencyFourDays, DurationSixtyMinutes, LocationGym)
	if err != nil {
		t.Fatalf("create fixture goal: %v", err)
	}
	return g
}
