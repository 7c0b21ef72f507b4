package workout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avyure/go_workout_backend/internal/domain"
	"github.com/avyure/go_workout_backend/internal/domain/exercise"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrWorkoutExists   = errors.New("workout already exists")
)

const (
	EventCreated = "workout.created"
)

// MissingExercisesError is returned when a submission references exercise ids
// that do not exist in the catalog. ExerciseIDs keeps the order of first
// appearance in the submission, deduplicated.
type MissingExercisesError struct {
	ExerciseIDs []string
}

func (e *MissingExercisesError) Error() string {
	return fmt.Sprintf("exercises with ids %s not found", strings.Join(e.ExerciseIDs, ", "))
}

func (e *MissingExercisesError) Unwrap() error {
	return exercise.ErrExerciseNotFound
}

// Set is a single performed set. No identity; two sets with equal reps and
// weight are the same value.
type Set struct {
	Repetitions int
	WeightKg    float64
}

// Activity is one exercise performed within a workout, with every set of that
// exercise. A workout holds at most one activity per exercise id.
type Activity struct {
	Exercise *exercise.Exercise
	Sets     []Set
}

// Entry is the flat form an activity set takes both in submissions and in
// storage rows. The write path flattens activities to entries and the read
// path groups entries back; both directions go through GroupEntries so the
// two transforms cannot drift apart.
type Entry struct {
	ExerciseID  string
	Repetitions int
	WeightKg    float64
}

type Workout struct {
	domain.Aggregate
	WorkoutID            string
	UserID               string
	Notes                string
	TotalDurationMinutes int
	WorkoutDate          time.Time
	Activities           []*Activity
}

func New(
	workoutID string,
	userID string,
	notes string,
	totalDurationMinutes int,
	workoutDate time.Time,
	activities []*Activity,
) *Workout {
	w := &Workout{
		WorkoutID:            workoutID,
		UserID:               userID,
		Notes:                notes,
		TotalDurationMinutes: totalDurationMinutes,
		WorkoutDate:          workoutDate.UTC(),
		Activities:           activities,
	}
	w.PushEvent(CreatedEvent{
		At:        time.Now().UTC(),
		WorkoutID: w.WorkoutID,
		UserID:    w.UserID,
	})
	return w
}

// DistinctExerciseIDs returns the referenced exercise ids in order of first
// appearance, without duplicates.
func DistinctExerciseIDs(entries []Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ExerciseID]; ok {
			continue
		}
		seen[e.ExerciseID] = struct{}{}
		ids = append(ids, e.ExerciseID)
	}
	return ids
}

// GroupEntries builds one activity per distinct exercise id, concatenating
// sets in the relative order the entries arrived. Activities come out in
// first-appearance order of their exercise. Every entry's exercise id must
// resolve through catalog; callers check for missing ids beforehand.
func GroupEntries(entries []Entry, catalog map[string]*exercise.Exercise) []*Activity {
	byExercise := make(map[string]*Activity, len(catalog))
	activities := make([]*Activity, 0, len(catalog))

	for _, e := range entries {
		act, ok := byExercise[e.ExerciseID]
		if !ok {
			act = &Activity{Exercise: catalog[e.ExerciseID]}
			byExercise[e.ExerciseID] = act
			activities = append(activities, act)
		}
		act.Sets = append(act.Sets, Set{
			Repetitions: e.Repetitions,
			WeightKg:    e.WeightKg,
		})
	}
	return activities
}

// Entries flattens the workout back to one entry per set, the shape the
// storage layer persists.
func (w *Workout) Entries() []Entry {
	var entries []Entry
	for _, act := range w.Activities {
		for _, set := range act.Sets {
			entries = append(entries, Entry{
				ExerciseID:  act.Exercise.ExerciseID,
				Repetitions: set.Repetitions,
				WeightKg:    set.WeightKg,
			})
		}
	}
	return entries
}

type CreatedEvent struct {
	At        time.Time
	WorkoutID string
	UserID    string
}

func (e CreatedEvent) Type() string {
	return EventCreated
}

func (e CreatedEvent) PublishedAt() time.Time {
	return e.At
}
