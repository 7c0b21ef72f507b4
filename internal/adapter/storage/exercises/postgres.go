package exercisestorage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/leporo/sqlf"

	"github.com/avyure/go_workout_backend/internal/adapter/storage"
	"github.com/avyure/go_workout_backend/internal/adapter/storage/pgutil"
	"github.com/avyure/go_workout_backend/internal/domain/exercise"
)

// PostgresStorage reads the exercise catalog. The catalog is written only by
// the seeding process and emits no domain events; everything else resolves
// entries by id.
type PostgresStorage struct {
	db storage.DBContext
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (s *PostgresStorage) Add(ctx context.Context, e *exercise.Exercise) error {
	primary, err := json.Marshal(e.PrimaryMuscles)
	if err != nil {
		return storage.InternalError(err)
	}
	secondary, err := json.Marshal(e.SecondaryMuscles)
	if err != nil {
		return storage.InternalError(err)
	}
	instructions, err := json.Marshal(e.Instructions)
	if err != nil {
		return storage.InternalError(err)
	}

	q := sqlf.InsertInto("exercises").
		Set("exercise_id", e.ExerciseID).
		Set("name", e.Name).
		Set("force", e.Force).
		Set("level", e.Level).
		Set("mechanic", e.Mechanic).
		Set("equipment", e.Equipment).
		Set("primary_muscles", primary).
		Set("secondary_muscles", secondary).
		Set("instructions", instructions).
		Set("category", e.Category)

	if _, err := q.ExecAndClose(ctx, s.db); err != nil {
		if pgutil.ViolatesConstraint(err, "exercises_pkey") {
			return exercise.ErrExerciseExists
		}
		return storage.InternalError(err)
	}

	return nil
}

// GetByIDs resolves the given ids to catalog entries, keyed by id. Ids with
// no entry are simply absent from the result; diffing against the input is
// the caller's job.
func (s *PostgresStorage) GetByIDs(ctx context.Context, exerciseIDs []string) (map[string]*exercise.Exercise, error) {
	if len(exerciseIDs) == 0 {
		return map[string]*exercise.Exercise{}, nil
	}
	return s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.exercise_id = ANY(?)", exerciseIDs)
	})
}

func (s *PostgresStorage) GetByID(ctx context.Context, exerciseID string) (*exercise.Exercise, error) {
	result, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.exercise_id = ?", exerciseID)
	})
	return pgutil.PeekOrErr(result, err, exercise.ErrExerciseNotFound)
}

func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt),
) (map[string]*exercise.Exercise, error) {
	var tmp exerciseRow

	q := sqlf.From("exercises e").
		Select("e.exercise_id").To(&tmp.ExerciseID).
		Select("e.name").To(&tmp.Name).
		Select("e.force").To(&tmp.Force).
		Select("e.level").To(&tmp.Level).
		Select("e.mechanic").To(&tmp.Mechanic).
		Select("e.equipment").To(&tmp.Equipment).
		Select("e.primary_muscles").To(&tmp.PrimaryMuscles).
		Select("e.secondary_muscles").To(&tmp.SecondaryMuscles).
		Select("e.instructions").To(&tmp.Instructions).
		Select("e.category").To(&tmp.Category)

	modify(q)

	result := make(map[string]*exercise.Exercise)
	var convErr error

	err := q.QueryAndClose(ctx, s.db, func(rows *sql.Rows) {
		e, err := tmp.toDomain()
		if err != nil {
			convErr = err
			return
		}
		result[e.ExerciseID] = e
	})

	if convErr != nil {
		return nil, storage.InternalError(convErr)
	}
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return result, nil
	}

	return nil, storage.InternalError(err)
}

func (s *PostgresStorage) Close() error {
	return nil
}

type exerciseRow struct {
	ExerciseID       string
	Name             string
	Force            string
	Level            string
	Mechanic         string
	Equipment        string
	PrimaryMuscles   []byte
	SecondaryMuscles []byte
	Instructions     []byte
	Category         string
}

func (r *exerciseRow) toDomain() (*exercise.Exercise, error) {
	e := &exercise.Exercise{
		ExerciseID: r.ExerciseID,
		Name:       r.Name,
		Force:      r.Force,
		Level:      r.Level,
		Mechanic:   r.Mechanic,
		Equipment:  r.Equipment,
		Category:   r.Category,
	}
	if err := json.Unmarshal(r.PrimaryMuscles, &e.PrimaryMuscles); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(r.SecondaryMuscles, &e.SecondaryMuscles); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(r.Instructions, &e.Instructions); err != nil {
		return nil, err
	}
	return e, nil
}
