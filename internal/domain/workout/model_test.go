package workout_test

import (
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avyure/go_workout_backend/internal/domain/exercise"
	"github.com/avyure/go_workout_backend/internal/domain/workout"
)

func catalogOf(ids ...string) map[string]*exercise.Exercise {
	catalog := make(map[string]*exercise.Exercise, len(ids))
	for _, id := range ids {
		catalog[id] = &exercise.Exercise{ExerciseID: id, Name: gofakeit.Word()}
	}
	return catalog
}

func TestDistinctExerciseIDs(t *testing.T) {
	a, b, c := uuid.NewString(), uuid.NewString(), uuid.NewString()

	entries := []workout.Entry{
		{ExerciseID: b, Repetitions: 10, WeightKg: 20},
		{ExerciseID: a, Repetitions: 8, WeightKg: 50},
		{ExerciseID: b, Repetitions: 8, WeightKg: 25},
		{ExerciseID: c, Repetitions: 12, WeightKg: 0},
		{ExerciseID: a, Repetitions: 5, WeightKg: 60},
	}

	assert.Equal(t, []string{b, a, c}, workout.DistinctExerciseIDs(entries))
}

func TestGroupEntries(t *testing.T) {
	a, b := uuid.NewString(), uuid.NewString()
	catalog := catalogOf(a, b)

	entries := []workout.Entry{
		{ExerciseID: a, Repetitions: 10, WeightKg: 5.0},
		{ExerciseID: b, Repetitions: 12, WeightKg: 20.0},
		{ExerciseID: a, Repetitions: 8, WeightKg: 7.5},
	}

	activities := workout.GroupEntries(entries, catalog)

	require.Len(t, activities, 2)
	assert.Equal(t, a, activities[0].Exercise.ExerciseID)
	assert.Equal(t, []workout.Set{
		{Repetitions: 10, WeightKg: 5.0},
		{Repetitions: 8, WeightKg: 7.5},
	}, activities[0].Sets)
	assert.Equal(t, b, activities[1].Exercise.ExerciseID)
	assert.Equal(t, []workout.Set{{Repetitions: 12, WeightKg: 20.0}}, activities[1].Sets)
}

func TestGroupEntriesKeepsEverySet(t *testing.T) {
	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	catalog := catalogOf(ids...)

	var entries []workout.Entry
	for i := 0; i < 40; i++ {
		entries = append(entries, workout.Entry{
			ExerciseID:  ids[gofakeit.Number(0, len(ids)-1)],
			Repetitions: gofakeit.Number(1, 20),
			WeightKg:    float64(gofakeit.Number(0, 200)),
		})
	}

	activities := workout.GroupEntries(entries, catalog)

	distinct := workout.DistinctExerciseIDs(entries)
	require.Len(t, activities, len(distinct))

	total := 0
	for _, act := range activities {
		total += len(act.Sets)
	}
	assert.Equal(t, len(entries), total)
}

func TestGroupEntriesRoundTripsThroughFlatForm(t *testing.T) {
	a, b := uuid.NewString(), uuid.NewString()
	catalog := catalogOf(a, b)

	entries := []workout.Entry{
		{ExerciseID: a, Repetitions: 10, WeightKg: 5.0},
		{ExerciseID: a, Repetitions: 8, WeightKg: 7.5},
		{ExerciseID: b, Repetitions: 12, WeightKg: 20.0},
	}

	w := workout.New(uuid.NewString(), uuid.NewString(), "", 60, time.Now(), workout.GroupEntries(entries, catalog))

	assert.Equal(t, entries, w.Entries())
}

func TestNewNormalizesDateToUTC(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	date := time.Date(2026, time.March, 14, 18, 30, 0, 0, loc)
	w := workout.New(uuid.NewString(), uuid.NewString(), "", 45, date, nil)

	assert.Equal(t, time.UTC, w.WorkoutDate.Location())
	assert.True(t, w.WorkoutDate.Equal(date))
}

func TestNewPushesCreatedEvent(t *testing.T) {
	w := workout.New(uuid.NewString(), uuid.NewString(), "leg day", 45, time.Now(), nil)

	events := w.PopEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(workout.CreatedEvent)
	require.True(t, ok)
	assert.Equal(t, workout.EventCreated, created.Type())
	assert.Equal(t, w.WorkoutID, created.WorkoutID)
	assert.Equal(t, w.UserID, created.UserID)
	assert.Empty(t, w.PopEvents())
}

func TestMissingExercisesError(t *testing.T) {
	a, b := uuid.NewString(), uuid.NewString()
	err := &MissingWrap{&workout.MissingExercisesError{ExerciseIDs: []string{a, b}}}

	assert.ErrorIs(t, err, exercise.ErrExerciseNotFound)
	assert.Contains(t, err.Error(), a)
	assert.Contains(t, err.Error(), b)

	var missing *workout.MissingExercisesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{a, b}, missing.ExerciseIDs)
}

// MissingWrap mimics a caller wrapping the storage error one more level.
type MissingWrap struct {
	err error
}

func (w *MissingWrap) Error() string { return "create workout: " + w.err.Error() }
func (w *MissingWrap) Unwrap() error { return w.err }
