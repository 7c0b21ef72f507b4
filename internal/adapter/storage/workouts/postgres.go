package workoutstorage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/leporo/sqlf"

	"github.com/avyure/go_workout_backend/internal/adapter/storage"
	"github.com/avyure/go_workout_backend/internal/adapter/storage/pgutil"
	"github.com/avyure/go_workout_backend/internal/domain"
	"github.com/avyure/go_workout_backend/internal/domain/exercise"
	"github.com/avyure/go_workout_backend/internal/domain/workout"
)

// PostgresStorage persists workouts as one header row plus one flat row per
// set. The nested activity shape is never stored; reads rebuild it by
// grouping the flat rows with the same transform the write path flattened
// them with.
type PostgresStorage struct {
	base *pgutil.BasePostgresStorage
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

func (s *PostgresStorage) Add(ctx context.Context, w *workout.Workout) error {
	q := sqlf.InsertInto("workouts").
		Set("workout_id", w.WorkoutID).
		Set("user_id", w.UserID).
		Set("notes", nullIfEmpty(w.Notes)).
		Set("total_duration_minutes", w.TotalDurationMinutes).
		Set("workout_date", w.WorkoutDate)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "workouts_pkey") {
			return workout.ErrWorkoutExists
		}
		return storage.InternalError(err)
	}

	for _, entry := range w.Entries() {
		if err := s.addSet(ctx, w, entry); err != nil {
			return err
		}
	}

	s.base.MarkSeen(w)

	return nil
}

func (s *PostgresStorage) addSet(ctx context.Context, w *workout.Workout, entry workout.Entry) error {
	// Set row ids are v7 as well, so scanning them back in id order
	// approximates insertion order without a separate sequence column.
	q := sqlf.InsertInto("workout_sets").
		Set("workout_set_id", uuid.Must(uuid.NewV7()).String()).
		Set("workout_id", w.WorkoutID).
		Set("user_id", w.UserID).
		Set("exercise_id", entry.ExerciseID).
		Set("repetitions", entry.Repetitions).
		Set("weight_kg", entry.WeightKg)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "workout_sets_exercise_id_fkey") {
			return exercise.ErrExerciseNotFound
		}
		return storage.InternalError(err)
	}
	return nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, workoutID, userID string) (*workout.Workout, error) {
	// Owner mismatch and absence both come back as not found; the filter
	// keeps the two indistinguishable to the caller.
	result, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("w.workout_id = ? AND w.user_id = ?", workoutID, userID)
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, workout.ErrWorkoutNotFound
	}
	return result[0], nil
}

func (s *PostgresStorage) ListByOwner(ctx context.Context, userID string, limit, offset int) ([]*workout.Workout, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("w.user_id = ?", userID).
			OrderBy("w.workout_date DESC, w.workout_id DESC").
			Limit(limit).
			Offset(offset)
	})
}

func (s *PostgresStorage) CountByOwner(ctx context.Context, userID string) (int, error) {
	var count int
	q := sqlf.From("workouts").
		Select("count(*)").To(&count).
		Where("user_id = ?", userID)

	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		return 0, storage.InternalError(err)
	}
	return count, nil
}

// get loads header rows shaped by modify, then rebuilds activities from the
// flat set rows of those workouts. Set order within a rebuilt activity is the
// row scan order, not necessarily the original submission order.
func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt),
) ([]*workout.Workout, error) {
	var tmp workoutRow

	q := sqlf.From("workouts w").
		Select("w.workout_id").To(&tmp.WorkoutID).
		Select("w.user_id").To(&tmp.UserID).
		Select("w.notes").To(&tmp.Notes).
		Select("w.total_duration_minutes").To(&tmp.TotalDurationMinutes).
		Select("w.workout_date").To(&tmp.WorkoutDate)

	modify(q)

	var result []*workout.Workout
	byID := make(map[string]*workout.Workout)

	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		w := &workout.Workout{
			WorkoutID:            tmp.WorkoutID,
			UserID:               tmp.UserID,
			TotalDurationMinutes: tmp.TotalDurationMinutes,
			WorkoutDate:          tmp.WorkoutDate.UTC(),
		}
		if tmp.Notes != nil {
			w.Notes = *tmp.Notes
		}
		result = append(result, w)
		byID[w.WorkoutID] = w
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storage.InternalError(err)
	}

	if len(result) == 0 {
		return result, nil
	}

	if err := s.loadActivities(ctx, byID); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStorage) loadActivities(ctx context.Context, workouts map[string]*workout.Workout) error {
	ids := make([]string, 0, len(workouts))
	for id := range workouts {
		ids = append(ids, id)
	}

	var tmp setRow

	q := sqlf.From("workout_sets ws").
		Join("exercises e", "ws.exercise_id = e.exercise_id").
		Select("ws.workout_id").To(&tmp.WorkoutID).
		Select("ws.exercise_id").To(&tmp.ExerciseID).
		Select("ws.repetitions").To(&tmp.Repetitions).
		Select("ws.weight_kg").To(&tmp.WeightKg).
		Select("e.name").To(&tmp.ExerciseName).
		Where("ws.workout_id = ANY(?)", ids).
		OrderBy("ws.workout_set_id")

	entries := make(map[string][]workout.Entry, len(workouts))
	catalog := make(map[string]*exercise.Exercise)

	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		entries[tmp.WorkoutID] = append(entries[tmp.WorkoutID], workout.Entry{
			ExerciseID:  tmp.ExerciseID,
			Repetitions: tmp.Repetitions,
			WeightKg:    tmp.WeightKg,
		})
		if _, ok := catalog[tmp.ExerciseID]; !ok {
			catalog[tmp.ExerciseID] = &exercise.Exercise{
				ExerciseID: tmp.ExerciseID,
				Name:       tmp.ExerciseName,
			}
		}
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return storage.InternalError(err)
	}

	for id, w := range workouts {
		w.Activities = workout.GroupEntries(entries[id], catalog)
	}
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	s.base.Close()
	return nil
}

func nullIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

type workoutRow struct {
	WorkoutID            string
	UserID               string
	Notes                *string
	TotalDurationMinutes int
	WorkoutDate          time.Time
}

type setRow struct {
	WorkoutID    string
	ExerciseID   string
	Repetitions  int
	WeightKg     float64
	ExerciseName string
}
