package llm

import (
	"fmt"
	"strings"

	"github.com/planfit/planfit/internal/models"
)

// planExampleJSON is the worked example embedded in the system prompt. The
// model is told to mirror this shape exactly: every field is a string except
// sets, and time-based work is expressed through the free-text reps field.
const planExampleJSON = `{"workouts":[{"day":"day of the week","workoutType":"workout type","exercises":[{"name":"Burpees","sets":1,"reps":"10 reps"},{"name":"Elliptical Machine","sets":1,"reps":"15 minutes"}],"notes":"Start with a 5-minute warm-up walk."}]}`

// BuildPrompts renders the system and user instruction blocks for plan
// generation. Pure function of its inputs — no I/O, no defaults filled in.
func BuildPrompts(profile *models.Profile, goal *models.Goal) (systemPrompt, userPrompt string) {
	systemPrompt = "You are a gym trainer. You are going to give a workout plan based on the user's details. " +
		"Give the response in valid JSON format. The data schema should always look like this. " +
		"Ensure the types of the response match the types of the example, everything must be a string type, " +
		"only the sets must be a number: " + planExampleJSON

	var b strings.Builder

	b.WriteString("Generate a workout recommendation for a user based on their profile and goal. The response should be structured in a JSON format. Here are the details:\n\n")

	b.WriteString("**User Profile:**\n")
	fmt.Fprintf(&b, "- Age: %d\n", profile.Age)
	fmt.Fprintf(&b, "- Gender: %s\n", profile.Gender)
	fmt.Fprintf(&b, "- Height: %g (in cm)\n", profile.Height)
	fmt.Fprintf(&b, "- Weight: %g (in kg)\n", profile.Weight)
	fmt.Fprintf(&b, "- Activity Level: %s\n", profile.ActivityLevel)
	fmt.Fprintf(&b, "- Exercise Experience: %s\n\n", profile.ExerciseExperience)

	b.WriteString("**User Goal:**\n")
	fmt.Fprintf(&b, "- Goal Type: %s\n", goal.GoalType)
	fmt.Fprintf(&b, "- Target Weight: %g (in kg)\n", goal.TargetWeight)
	fmt.Fprintf(&b, "- Workout Frequency: %s a week\n", goal.WorkoutFrequency)
	fmt.Fprintf(&b, "- Workout Duration: %s per session\n", goal.WorkoutDuration)
	fmt.Fprintf(&b, "- Location Preference: %s\n\n", goal.LocationPreference)

	b.WriteString(`Provide a detailed workout plan that includes the following information:
1. Day of the week
2. Type of workout (e.g., Cardio, Strength Training, Flexibility)
3. Specific exercises (with exact gym exercise names)
4. Number of sets and reps
5. Any additional tips or notes

`)

	b.WriteString("Make sure to cover all the muscle areas split in the week (Back, Chest, Biceps, Triceps ...). ")
	b.WriteString("Make sure that the total duration of those exercises is approximately the workout duration. ")
	b.WriteString("Make sure you only split it into how many days are mentioned in the Workout Frequency by the user during the week. ")
	b.WriteString("Do not give more days than the user mentioned in the Workout Frequency.\n\n")

	b.WriteString("If there are empty days, you can fill them with rest days and nothing else. ")
	b.WriteString(`The workoutType of rest days should exactly say "Rest Day". `)
	b.WriteString("If possible based on the schedule, put the rest days in between and not one after the other. ")
	b.WriteString("DO NOT put the rest days one after the other. ")
	b.WriteString("Make sure to include a warm-up and cool-down routine in each workout session. ")
	b.WriteString("Make sure to include a variety of exercises to target different muscle groups. ")
	b.WriteString("Make sure to include the number of sets and reps for each exercise. ")
	b.WriteString("Make sure to include the exact gym exercise names for each exercise.\n\n")

	fmt.Fprintf(&b, "The plan must cover all 7 days of the week. Since the Workout frequency is %s, there must be %s in the plan.\n",
		goal.WorkoutFrequency, restDayPhrase(models.RestDays(goal.WorkoutFrequency)))

	return systemPrompt, b.String()
}

func restDayPhrase(n int) string {
	if n == 1 {
		return "1 Rest Day"
	}
	return fmt.Sprintf("%d Rest Days", n)
}
