package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// WorkoutPlan is a profile's weekly plan: seven days, each with zero or more
// exercises. Each profile has at most one plan.
type WorkoutPlan struct {
	ID        int64
	ProfileID int64
	Days      []*WorkoutDay
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkoutDay is one day of a plan. WorkoutType is either a training focus
// (e.g. "Cardio", "Strength") or the literal "Rest Day".
type WorkoutDay struct {
	ID            int64
	WorkoutPlanID int64
	Day           string
	WorkoutType   string
	Notes         string
	Exercises     []*Exercise
}

// Exercise is one prescribed movement. Reps is free text so the plan can
// express time-based work ("15 minutes") as well as counts ("10 reps").
type Exercise struct {
	ID           int64
	WorkoutDayID int64
	Name         string
	Sets         int
	Reps         string
}

// DayInput is the write shape for one plan day.
type DayInput struct {
	Day         string
	WorkoutType string
	Notes       string
	Exercises   []ExerciseInput
}

// ExerciseInput is the write shape for one exercise.
type ExerciseInput struct {
	Name string
	Sets int
	Reps string
}

// ErrPlanExists is returned when a profile already has a workout plan.
var ErrPlanExists = errors.New("workout plan already exists for this profile")

func insertPlanDays(tx *sql.Tx, planID int64, days []DayInput) error {
	for _, d := range days {
		var dayID int64
		err := tx.QueryRow(
			`INSERT INTO workout_days (workout_plan_id, day, workout_type, notes)
			 VALUES (?, ?, ?, ?) RETURNING id`,
			planID, d.Day, d.WorkoutType, d.Notes,
		).Scan(&dayID)
		if err != nil {
			return fmt.Errorf("insert day %q: %w", d.Day, err)
		}
		for _, e := range d.Exercises {
			_, err := tx.Exec(
				`INSERT INTO exercises (workout_day_id, name, sets, reps) VALUES (?, ?, ?, ?)`,
				dayID, e.Name, e.Sets, e.Reps,
			)
			if err != nil {
				return fmt.Errorf("insert exercise %q: %w", e.Name, err)
			}
		}
	}
	return nil
}

// CreateWorkoutPlan inserts a plan and all of its days and exercises in a
// single transaction. Returns ErrPlanExists if the profile already has one.
func CreateWorkoutPlan(db *sql.DB, profileID int64, days []DayInput) (*WorkoutPlan, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("models: create workout plan: %w", err)
	}
	defer tx.Rollback()

	var planID int64
	err = tx.QueryRow(
		`INSERT INTO workout_plans (profile_id) VALUES (?) RETURNING id`, profileID,
	).Scan(&planID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPlanExists
		}
		return nil, fmt.Errorf("models: create workout plan for profile %d: %w", profileID, err)
	}

	if err := insertPlanDays(tx, planID, days); err != nil {
		return nil, fmt.Errorf("models: create workout plan for profile %d: %w", profileID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("models: create workout plan for profile %d: %w", profileID, err)
	}

	return GetWorkoutPlanByID(db, planID)
}

// ReplaceWorkoutPlanDays atomically swaps a plan's contents: existing days
// and exercises are deleted and the new set inserted in one transaction, so
// a reader never observes a mix of old and new days.
func ReplaceWorkoutPlanDays(db *sql.DB, planID int64, days []DayInput) (*WorkoutPlan, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("models: replace workout plan %d: %w", planID, err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT COUNT(*) FROM workout_plans WHERE id = ?`, planID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("models: replace workout plan %d: %w", planID, err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	// Cascade removes the exercises under each day.
	if _, err := tx.Exec(`DELETE FROM workout_days WHERE workout_plan_id = ?`, planID); err != nil {
		return nil, fmt.Errorf("models: replace workout plan %d: %w", planID, err)
	}

	if err := insertPlanDays(tx, planID, days); err != nil {
		return nil, fmt.Errorf("models: replace workout plan %d: %w", planID, err)
	}

	if _, err := tx.Exec(
		`UPDATE workout_plans SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, planID,
	); err != nil {
		return nil, fmt.Errorf("models: replace workout plan %d: %w", planID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("models: replace workout plan %d: %w", planID, err)
	}

	return GetWorkoutPlanByID(db, planID)
}

func loadPlanDays(db *sql.DB, plan *WorkoutPlan) error {
	// Insertion order is the generated order, so reading back by id keeps
	// the week in sequence.
	rows, err := db.Query(
		`SELECT id, workout_plan_id, day, workout_type, notes
		 FROM workout_days WHERE workout_plan_id = ? ORDER BY id`, plan.ID,
	)
	if err != nil {
		return fmt.Errorf("load days for plan %d: %w", plan.ID, err)
	}
	defer rows.Close()

	dayByID := map[int64]*WorkoutDay{}
	for rows.Next() {
		d := &WorkoutDay{}
		if err := rows.Scan(&d.ID, &d.WorkoutPlanID, &d.Day, &d.WorkoutType, &d.Notes); err != nil {
			return fmt.Errorf("scan day for plan %d: %w", plan.ID, err)
		}
		plan.Days = append(plan.Days, d)
		dayByID[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load days for plan %d: %w", plan.ID, err)
	}

	exRows, err := db.Query(
		`SELECT e.id, e.workout_day_id, e.name, e.sets, e.reps
		 FROM exercises e
		 JOIN workout_days d ON d.id = e.workout_day_id
		 WHERE d.workout_plan_id = ? ORDER BY e.id`, plan.ID,
	)
	if err != nil {
		return fmt.Errorf("load exercises for plan %d: %w", plan.ID, err)
	}
	defer exRows.Close()

	for exRows.Next() {
		e := &Exercise{}
		if err := exRows.Scan(&e.ID, &e.WorkoutDayID, &e.Name, &e.Sets, &e.Reps); err != nil {
			return fmt.Errorf("scan exercise for plan %d: %w", plan.ID, err)
		}
		if d, ok := dayByID[e.WorkoutDayID]; ok {
			d.Exercises = append(d.Exercises, e)
		}
	}
	if err := exRows.Err(); err != nil {
		return fmt.Errorf("load exercises for plan %d: %w", plan.ID, err)
	}
	return nil
}

// GetWorkoutPlanByID retrieves a plan with its days and exercises.
func GetWorkoutPlanByID(db *sql.DB, id int64) (*WorkoutPlan, error) {
	plan := &WorkoutPlan{}
	err := db.QueryRow(
		`SELECT id, profile_id, created_at, updated_at FROM workout_plans WHERE id = ?`, id,
	).Scan(&plan.ID, &plan.ProfileID, &plan.CreatedAt, &plan.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get workout plan %d: %w", id, err)
	}
	if err := loadPlanDays(db, plan); err != nil {
		return nil, fmt.Errorf("models: get workout plan %d: %w", id, err)
	}
	return plan, nil
}

// GetWorkoutPlanByProfileID retrieves the plan owned by a profile, with its
// days and exercises.
func GetWorkoutPlanByProfileID(db *sql.DB, profileID int64) (*WorkoutPlan, error) {
	plan := &WorkoutPlan{}
	err := db.QueryRow(
		`SELECT id, profile_id, created_at, updated_at FROM workout_plans WHERE profile_id = ?`, profileID,
	).Scan(&plan.ID, &plan.ProfileID, &plan.CreatedAt, &plan.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get workout plan for profile %d: %w", profileID, err)
	}
	if err := loadPlanDays(db, plan); err != nil {
		return nil, fmt.Errorf("models: get workout plan for profile %d: %w", profileID, err)
	}
	return plan, nil
}

// DeleteWorkoutPlan removes a plan by ID. CASCADE deletes its days and
// exercises.
func DeleteWorkoutPlan(db *sql.DB, id int64) error {
	result, err := db.Exec(`DELETE FROM workout_plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("models: delete workout plan %d: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
