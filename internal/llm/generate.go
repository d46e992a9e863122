package llm

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/planfit/planfit/internal/models"
)

// RestDaySentinel is the exact workoutType string marking a rest day.
const RestDaySentinel = "Rest Day"

// PlanResponse is the wire shape the model is instructed to return.
type PlanResponse struct {
	Workouts []WorkoutEntry `json:"workouts"`
}

// WorkoutEntry is one day of the generated plan.
type WorkoutEntry struct {
	Day         string          `json:"day"`
	WorkoutType string          `json:"workoutType"`
	Exercises   []ExerciseEntry `json:"exercises"`
	Notes       string          `json:"notes"`
}

// ExerciseEntry is one prescribed exercise.
type ExerciseEntry struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
}

// IsRestDay reports whether this entry is a rest day.
func (w *WorkoutEntry) IsRestDay() bool {
	return w.WorkoutType == RestDaySentinel
}

// Result holds the complete output from a plan generation.
type Result struct {
	Days        []models.DayInput
	RawResponse string
	Model       string
	TokensUsed  int
	Duration    time.Duration
	Attempts    int
}

// ParsePlan extracts and decodes the plan JSON from a raw model response.
// Returns an error wrapping ErrMalformedOutput when no valid plan can be
// recovered from the text.
func ParsePlan(content string) (*PlanResponse, error) {
	raw := extractJSON(content)
	if raw == nil {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrMalformedOutput)
	}

	var plan PlanResponse
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if len(plan.Workouts) == 0 {
		return nil, fmt.Errorf("%w: empty workouts list", ErrMalformedOutput)
	}
	return &plan, nil
}

// ValidatePlan checks a decoded plan against the domain rules the prompt
// asks for: a full 7-day week, active-day count matching the goal's
// frequency tier, and complete exercise entries on active days.
func ValidatePlan(plan *PlanResponse, frequency string) error {
	if len(plan.Workouts) != 7 {
		return fmt.Errorf("%w: plan has %d days, want 7", ErrMalformedOutput, len(plan.Workouts))
	}

	wantActive := models.FrequencyDays(frequency)
	active := 0
	for i, w := range plan.Workouts {
		if w.Day == "" || w.WorkoutType == "" {
			return fmt.Errorf("%w: day %d missing day or workoutType", ErrMalformedOutput, i+1)
		}
		if w.IsRestDay() {
			continue
		}
		active++
		if len(w.Exercises) == 0 {
			return fmt.Errorf("%w: active day %q has no exercises", ErrMalformedOutput, w.Day)
		}
		for _, e := range w.Exercises {
			if e.Name == "" || e.Sets <= 0 || e.Reps == "" {
				return fmt.Errorf("%w: day %q has an incomplete exercise", ErrMalformedOutput, w.Day)
			}
		}
	}

	if active != wantActive {
		return fmt.Errorf("%w: plan has %d active days, want %d for %s",
			ErrMalformedOutput, active, wantActive, frequency)
	}
	return nil
}

// DayInputs converts a validated plan into the persistence write shape.
func (p *PlanResponse) DayInputs() []models.DayInput {
	days := make([]models.DayInput, 0, len(p.Workouts))
	for _, w := range p.Workouts {
		d := models.DayInput{
			Day:         w.Day,
			WorkoutType: w.WorkoutType,
			Notes:       w.Notes,
		}
		for _, e := range w.Exercises {
			d.Exercises = append(d.Exercises, models.ExerciseInput{
				Name: e.Name,
				Sets: e.Sets,
				Reps: e.Reps,
			})
		}
		days = append(days, d)
	}
	return days
}

// GeneratePlan runs the full generation pipeline: build prompts, call the
// provider, parse and validate the response. A malformed or rule-violating
// response triggers one bounded repair attempt with a corrective instruction
// appended to the user prompt; transport and API errors are never retried.
func GeneratePlan(ctx context.Context, db *sql.DB, provider Provider, profile *models.Profile, goal *models.Goal) (*Result, error) {
	systemPrompt, userPrompt := BuildPrompts(profile, goal)
	opts := OptionsFromSettings(db)

	result := &Result{}
	var repairNote string

	backoff := retry.WithMaxRetries(1, retry.NewConstant(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		result.Attempts++

		prompt := userPrompt
		if repairNote != "" {
			prompt = userPrompt + "\n\nYour previous response was invalid: " + repairNote +
				"\nReturn a corrected JSON object that follows every rule above."
		}

		resp, err := provider.Generate(ctx, systemPrompt, prompt, opts)
		if err != nil {
			// Transport and API failures propagate as-is.
			return err
		}

		result.RawResponse = resp.Content
		result.Model = resp.Model
		result.TokensUsed += resp.TokensUsed
		result.Duration += resp.Duration

		plan, err := ParsePlan(resp.Content)
		if err != nil {
			repairNote = trimReason(err)
			return retry.RetryableError(err)
		}
		if err := ValidatePlan(plan, goal.WorkoutFrequency); err != nil {
			repairNote = trimReason(err)
			return retry.RetryableError(err)
		}

		result.Days = plan.DayInputs()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// trimReason strips the sentinel prefix so the repair instruction reads as
// a plain sentence to the model.
func trimReason(err error) string {
	return strings.TrimPrefix(err.Error(), ErrMalformedOutput.Error()+": ")
}

// extractJSON finds the first complete JSON object in the text. It checks
// code fences first, then falls back to a brace-balanced scan.
func extractJSON(s string) []byte {
	if idx := strings.Index(s, "```json"); idx != -1 {
		start := idx + len("```json")
		if end := strings.Index(s[start:], "```"); end != -1 {
			candidate := strings.TrimSpace(s[start : start+end])
			if json.Valid([]byte(candidate)) {
				return []byte(candidate)
			}
		}
	}

	depth := 0
	start := -1
	for i, ch := range s {
		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start >= 0 {
				candidate := s[start : i+1]
				if json.Valid([]byte(candidate)) {
					return []byte(candidate)
				}
				start = -1
			}
		}
	}
	return nil
}
