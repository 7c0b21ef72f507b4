package exerciseservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/avyure/go_workout_backend/internal/adapter/storage"
	exercisestorage "github.com/avyure/go_workout_backend/internal/adapter/storage/exercises"
	"github.com/avyure/go_workout_backend/internal/domain"
	"github.com/avyure/go_workout_backend/internal/domain/exercise"
)

type ExerciseStorage interface {
	Add(ctx context.Context, e *exercise.Exercise) error
	GetByID(ctx context.Context, exerciseID string) (*exercise.Exercise, error)
	GetByIDs(ctx context.Context, exerciseIDs []string) (map[string]*exercise.Exercise, error)
	Close() error
}

type AtomicContext struct {
	ctx             context.Context
	db              storage.DBContext
	ExerciseStorage ExerciseStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.db.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.ExerciseStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}

	return err
}

// CollectEvents is part of the atomic context contract; catalog entries are
// externally owned and never emit events of their own.
func (a *AtomicContext) CollectEvents() []domain.Event {
	return nil
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:             ctx,
		db:              dbContext,
		ExerciseStorage: exercisestorage.NewPostgresStorage(dbContext),
	}, nil
}
