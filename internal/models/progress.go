package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Progress is a single weight check-in against a goal.
type Progress struct {
	ID             int64
	GoalID         int64
	ProgressWeight float64
	CreatedAt      time.Time
}

// CreateProgress records a weight check-in for a goal.
func CreateProgress(db *sql.DB, goalID int64, weight float64) (*Progress, error) {
	if weight <= 0 {
		return nil, fmt.Errorf("models: create progress: weight must be positive: %w", ErrInvalidInput)
	}

	var id int64
	err := db.QueryRow(
		`INSERT INTO progress (goal_id, progress_weight) VALUES (?, ?) RETURNING id`,
		goalID, weight,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("models: create progress for goal %d: %w", goalID, err)
	}

	return GetProgressByID(db, id)
}

// GetProgressByID retrieves a check-in by primary key.
func GetProgressByID(db *sql.DB, id int64) (*Progress, error) {
	p := &Progress{}
	err := db.QueryRow(
		`SELECT id, goal_id, progress_weight, created_at FROM progress WHERE id = ?`, id,
	).Scan(&p.ID, &p.GoalID, &p.ProgressWeight, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get progress %d: %w", id, err)
	}
	return p, nil
}

// ListProgressByGoal returns all check-ins for a goal, oldest first.
func ListProgressByGoal(db *sql.DB, goalID int64) ([]*Progress, error) {
	rows, err := db.Query(
		`SELECT id, goal_id, progress_weight, created_at FROM progress
		 WHERE goal_id = ? ORDER BY id`, goalID,
	)
	if err != nil {
		return nil, fmt.Errorf("models: list progress for goal %d: %w", goalID, err)
	}
	defer rows.Close()

	var entries []*Progress
	for rows.Next() {
		p := &Progress{}
		if err := rows.Scan(&p.ID, &p.GoalID, &p.ProgressWeight, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("models: scan progress: %w", err)
		}
		entries = append(entries, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("models: list progress for goal %d: %w", goalID, err)
	}
	return entries, nil
}

// DeleteProgress removes a check-in by ID.
func DeleteProgress(db *sql.DB, id int64) error {
	result, err := db.Exec(`DELETE FROM progress WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("models: delete progress %d: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
