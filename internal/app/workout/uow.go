package workoutservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/avyure/go_workout_backend/internal/adapter/storage"
	exercisestorage "github.com/avyure/go_workout_backend/internal/adapter/storage/exercises"
	workoutstorage "github.com/avyure/go_workout_backend/internal/adapter/storage/workouts"
	"github.com/avyure/go_workout_backend/internal/domain"
	"github.com/avyure/go_workout_backend/internal/domain/exercise"
	"github.com/avyure/go_workout_backend/internal/domain/workout"
)

type WorkoutStorage interface {
	Add(ctx context.Context, w *workout.Workout) error
	GetByID(ctx context.Context, workoutID, userID string) (*workout.Workout, error)
	ListByOwner(ctx context.Context, userID string, limit, offset int) ([]*workout.Workout, error)
	CountByOwner(ctx context.Context, userID string) (int, error)
	CollectEvents() []domain.Event
	Close() error
}

// ExerciseLookup resolves exercise ids to catalog entries. Missing ids are
// omitted from the result rather than reported as an error.
type ExerciseLookup interface {
	GetByIDs(ctx context.Context, exerciseIDs []string) (map[string]*exercise.Exercise, error)
}

type AtomicContext struct {
	ctx            context.Context
	db             storage.DBContext
	WorkoutStorage WorkoutStorage
	Exercises      ExerciseLookup
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.db.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.WorkoutStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}

	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.WorkoutStorage.CollectEvents()
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:            ctx,
		db:             dbContext,
		WorkoutStorage: workoutstorage.NewPostgresStorage(dbContext),
		Exercises:      exercisestorage.NewPostgresStorage(dbContext),
	}, nil
}
