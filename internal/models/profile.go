package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Gender values accepted on a profile.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

// Activity level values accepted on a profile.
const (
	ActivitySedentary        = "SEDENTARY"
	ActivityLightlyActive    = "LIGHTLY_ACTIVE"
	ActivityModeratelyActive = "MODERATELY_ACTIVE"
	ActivityVeryActive       = "VERY_ACTIVE"
)

// Exercise experience values accepted on a profile.
const (
	ExperienceBeginner     = "BEGINNER"
	ExperienceIntermediate = "INTERMEDIATE"
	ExperienceAdvanced     = "ADVANCED"
)

// activityLevelLabels maps stored values to their display form.
var activityLevelLabels = map[string]string{
	ActivitySedentary:        "Sedentary",
	ActivityLightlyActive:    "Lightly Active",
	ActivityModeratelyActive: "Moderately Active",
	ActivityVeryActive:       "Very Active",
}

var experienceLabels = map[string]string{
	ExperienceBeginner:     "Beginner",
	ExperienceIntermediate: "Intermediate",
	ExperienceAdvanced:     "Advanced",
}

// Profile is a user's biometric snapshot: the read-only input to plan
// generation. Height is in cm, weight in kg.
type Profile struct {
	ID                 int64
	UserID             int64
	Age                int
	Gender             string
	Height             float64
	Weight             float64
	ActivityLevel      string
	ExerciseExperience string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ActivityLevelLabel returns the display form of the activity level
// (e.g. "Moderately Active").
func (p *Profile) ActivityLevelLabel() string {
	if l, ok := activityLevelLabels[p.ActivityLevel]; ok {
		return l
	}
	return p.ActivityLevel
}

// ExperienceLabel returns the display form of the exercise experience.
func (p *Profile) ExperienceLabel() string {
	if l, ok := experienceLabels[p.ExerciseExperience]; ok {
		return l
	}
	return p.ExerciseExperience
}

func validateProfile(age int, gender string, height, weight float64, activityLevel, experience string) error {
	if age < 13 || age > 120 {
		return fmt.Errorf("age %d out of range: %w", age, ErrInvalidInput)
	}
	if gender != GenderMale && gender != GenderFemale {
		return fmt.Errorf("gender %q: %w", gender, ErrInvalidInput)
	}
	if height <= 0 || weight <= 0 {
		return fmt.Errorf("height/weight must be positive: %w", ErrInvalidInput)
	}
	if _, ok := activityLevelLabels[activityLevel]; !ok {
		return fmt.Errorf("activity level %q: %w", activityLevel, ErrInvalidInput)
	}
	if _, ok := experienceLabels[experience]; !ok {
		return fmt.Errorf("exercise experience %q: %w", experience, ErrInvalidInput)
	}
	return nil
}

// ErrProfileExists is returned when a user already has a profile.
var ErrProfileExists = errors.New("profile already exists for this user")

// CreateProfile inserts a biometric profile for a user. Each user has at
// most one profile (unique constraint on user_id).
func CreateProfile(db *sql.DB, userID int64, age int, gender string, height, weight float64, activityLevel, experience string) (*Profile, error) {
	if err := validateProfile(age, gender, height, weight, activityLevel, experience); err != nil {
		return nil, fmt.Errorf("models: create profile: %w", err)
	}

	var id int64
	err := db.QueryRow(
		`INSERT INTO profiles (user_id, age, gender, height, weight, activity_level, exercise_experience)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		userID, age, gender, height, weight, activityLevel, experience,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("models: create profile for user %d: %w", userID, err)
	}

	return GetProfileByID(db, id)
}

// GetProfileByID retrieves a profile by primary key.
func GetProfileByID(db *sql.DB, id int64) (*Profile, error) {
	p := &Profile{}
	err := db.QueryRow(
		`SELECT id, user_id, age, gender, height, weight, activity_level, exercise_experience, created_at, updated_at
		 FROM profiles WHERE id = ?`, id,
	).Scan(&p.ID, &p.UserID, &p.Age, &p.Gender, &p.Height, &p.Weight, &p.ActivityLevel, &p.ExerciseExperience, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get profile %d: %w", id, err)
	}
	return p, nil
}

// GetProfileByUserID retrieves the profile owned by a user.
func GetProfileByUserID(db *sql.DB, userID int64) (*Profile, error) {
	p := &Profile{}
	err := db.QueryRow(
		`SELECT id, user_id, age, gender, height, weight, activity_level, exercise_experience, created_at, updated_at
		 FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.ID, &p.UserID, &p.Age, &p.Gender, &p.Height, &p.Weight, &p.ActivityLevel, &p.ExerciseExperience, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get profile for user %d: %w", userID, err)
	}
	return p, nil
}

// UpdateProfile modifies an existing profile's biometric fields.
func UpdateProfile(db *sql.DB, id int64, age int, gender string, height, weight float64, activityLevel, experience string) (*Profile, error) {
	if err := validateProfile(age, gender, height, weight, activityLevel, experience); err != nil {
		return nil, fmt.Errorf("models: update profile %d: %w", id, err)
	}

	result, err := db.Exec(
		`UPDATE profiles SET age = ?, gender = ?, height = ?, weight = ?,
		        activity_level = ?, exercise_experience = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		age, gender, height, weight, activityLevel, experience, id,
	)
	if err != nil {
		return nil, fmt.Errorf("models: update profile %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrNotFound
	}

	return GetProfileByID(db, id)
}

// DeleteProfile removes a profile by ID. CASCADE deletes its goal and
// workout plan.
func DeleteProfile(db *sql.DB, id int64) error {
	result, err := db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("models: delete profile %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
