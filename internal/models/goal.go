package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Goal type values.
const (
	GoalWeightLoss          = "WEIGHT_LOSS"
	GoalWeightGain          = "WEIGHT_GAIN"
	GoalMuscleGain          = "MUSCLE_GAIN"
	GoalImproveEndurance    = "IMPROVE_ENDURANCE"
	GoalIncreaseFlexibility = "INCREASE_FLEXIBILITY"
)

// Workout frequency tiers: how many active training days per week.
const (
	FrequencyOneDay    = "ONE_DAY"
	FrequencyTwoDays   = "TWO_DAYS"
	FrequencyThreeDays = "THREE_DAYS"
	FrequencyFourDays  = "FOUR_DAYS"
	FrequencyFiveDays  = "FIVE_DAYS"
	FrequencySixDays   = "SIX_DAYS"
	FrequencySevenDays = "SEVEN_DAYS"
)

// Workout duration tiers: target length of one session.
const (
	DurationThirtyMinutes    = "THIRTY_MINUTES"
	DurationFortyFiveMinutes = "FORTY_FIVE_MINUTES"
	DurationSixtyMinutes     = "SIXTY_MINUTES"
	DurationNinetyMinutes    = "NINETY_MINUTES"
)

// Location preference values.
const (
	LocationHome = "HOME"
	LocationGym  = "GYM"
)

var goalTypeLabels = map[string]string{
	GoalWeightLoss:          "Weight Loss",
	GoalWeightGain:          "Weight Gain",
	GoalMuscleGain:          "Muscle Gain",
	GoalImproveEndurance:    "Improve Endurance",
	GoalIncreaseFlexibility: "Increase Flexibility",
}

// frequencyDays maps each frequency tier to its active-day count.
var frequencyDays = map[string]int{
	FrequencyOneDay:    1,
	FrequencyTwoDays:   2,
	FrequencyThreeDays: 3,
	FrequencyFourDays:  4,
	FrequencyFiveDays:  5,
	FrequencySixDays:   6,
	FrequencySevenDays: 7,
}

var durationMinutes = map[string]int{
	DurationThirtyMinutes:    30,
	DurationFortyFiveMinutes: 45,
	DurationSixtyMinutes:     60,
	DurationNinetyMinutes:    90,
}

var durationLabels = map[string]string{
	DurationThirtyMinutes:    "Thirty Minutes",
	DurationFortyFiveMinutes: "Forty Five Minutes",
	DurationSixtyMinutes:     "Sixty Minutes",
	DurationNinetyMinutes:    "Ninety Minutes",
}

// FrequencyDays returns the active-day count (1..7) for a frequency tier,
// or 0 for an unknown tier.
func FrequencyDays(frequency string) int {
	return frequencyDays[frequency]
}

// RestDays returns the rest-day complement out of a 7-day week for a
// frequency tier (ONE_DAY → 6 … SEVEN_DAYS → 0).
func RestDays(frequency string) int {
	days, ok := frequencyDays[frequency]
	if !ok {
		return 0
	}
	return 7 - days
}

// DurationMinutes returns the session length in minutes for a duration tier,
// or 0 for an unknown tier.
func DurationMinutes(duration string) int {
	return durationMinutes[duration]
}

// Goal is a profile's fitness objective: the second read-only input to plan
// generation. Target weight is in kg.
type Goal struct {
	ID                 int64
	ProfileID          int64
	GoalType           string
	TargetWeight       float64
	WorkoutFrequency   string
	WorkoutDuration    string
	LocationPreference string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// GoalTypeLabel returns the display form of the goal type (e.g. "Muscle Gain").
func (g *Goal) GoalTypeLabel() string {
	if l, ok := goalTypeLabels[g.GoalType]; ok {
		return l
	}
	return g.GoalType
}

// DurationLabel returns the display form of the workout duration.
func (g *Goal) DurationLabel() string {
	if l, ok := durationLabels[g.WorkoutDuration]; ok {
		return l
	}
	return g.WorkoutDuration
}

func validateGoal(goalType string, targetWeight float64, frequency, duration, location string) error {
	if _, ok := goalTypeLabels[goalType]; !ok {
		return fmt.Errorf("goal type %q: %w", goalType, ErrInvalidInput)
	}
	if targetWeight <= 0 {
		return fmt.Errorf("target weight must be positive: %w", ErrInvalidInput)
	}
	if _, ok := frequencyDays[frequency]; !ok {
		return fmt.Errorf("workout frequency %q: %w", frequency, ErrInvalidInput)
	}
	if _, ok := durationMinutes[duration]; !ok {
		return fmt.Errorf("workout duration %q: %w", duration, ErrInvalidInput)
	}
	if location != LocationHome && location != LocationGym {
		return fmt.Errorf("location preference %q: %w", location, ErrInvalidInput)
	}
	return nil
}

// ErrGoalExists is returned when a profile already has a goal.
var ErrGoalExists = errors.New("goal already exists for this profile")

// CreateGoal inserts a fitness goal for a profile. Each profile has at most
// one goal (unique constraint on profile_id).
func CreateGoal(db *sql.DB, profileID int64, goalType string, targetWeight float64, frequency, duration, location string) (*Goal, error) {
	if err := validateGoal(goalType, targetWeight, frequency, duration, location); err != nil {
		return nil, fmt.Errorf("models: create goal: %w", err)
	}

	var id int64
	err := db.QueryRow(
		`INSERT INTO goals (profile_id, goal_type, target_weight, workout_frequency, workout_duration, location_preference)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		profileID, goalType, targetWeight, frequency, duration, location,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrGoalExists
		}
		return nil, fmt.Errorf("models: create goal for profile %d: %w", profileID, err)
	}

	return GetGoalByID(db, id)
}

// GetGoalByID retrieves a goal by primary key.
func GetGoalByID(db *sql.DB, id int64) (*Goal, error) {
	g := &Goal{}
	err := db.QueryRow(
		`SELECT id, profile_id, goal_type, target_weight, workout_frequency, workout_duration, location_preference, created_at, updated_at
		 FROM goals WHERE id = ?`, id,
	).Scan(&g.ID, &g.ProfileID, &g.GoalType, &g.TargetWeight, &g.WorkoutFrequency, &g.WorkoutDuration, &g.LocationPreference, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get goal %d: %w", id, err)
	}
	return g, nil
}

// GetGoalByProfileID retrieves the goal owned by a profile.
func GetGoalByProfileID(db *sql.DB, profileID int64) (*Goal, error) {
	g := &Goal{}
	err := db.QueryRow(
		`SELECT id, profile_id, goal_type, target_weight, workout_frequency, workout_duration, location_preference, created_at, updated_at
		 FROM goals WHERE profile_id = ?`, profileID,
	).Scan(&g.ID, &g.ProfileID, &g.GoalType, &g.TargetWeight, &g.WorkoutFrequency, &g.WorkoutDuration, &g.LocationPreference, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get goal for profile %d: %w", profileID, err)
	}
	return g, nil
}

// UpdateGoal modifies an existing goal's fields.
func UpdateGoal(db *sql.DB, id int64, goalType string, targetWeight float64, frequency, duration, location string) (*Goal, error) {
	if err := validateGoal(goalType, targetWeight, frequency, duration, location); err != nil {
		return nil, fmt.Errorf("models: update goal %d: %w", id, err)
	}

	result, err := db.Exec(
		`UPDATE goals SET goal_type = ?, target_weight = ?, workout_frequency = ?,
		        workout_duration = ?, location_preference = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		goalType, targetWeight, frequency, duration, location, id,
	)
	if err != nil {
		return nil, fmt.Errorf("models: update goal %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrNotFound
	}

	return GetGoalByID(db, id)
}
