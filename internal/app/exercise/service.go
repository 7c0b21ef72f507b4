package exerciseservice

import (
	"context"
	"log/slog"

	"github.com/avyure/go_workout_backend/internal/app/unitofwork"
	"github.com/avyure/go_workout_backend/internal/domain/exercise"
)

type Service struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

func (s *Service) GetExerciseByID(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	exerciseID string,
) (e *exercise.Exercise, outErr error) {
	outErr = uow.Atomic(ctx, func(a *AtomicContext) error {
		var err error
		if e, err = a.ExerciseStorage.GetByID(a.Context(), exerciseID); err != nil {
			return err
		}

		return a.Commit()
	})
	if outErr != nil {
		return nil, outErr
	}
	return e, nil
}

// ImportCatalog loads catalog entries in one transaction, skipping entries
// that already exist so the seeder can be re-run against a populated
// database. Returns the number of entries actually inserted.
func (s *Service) ImportCatalog(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	entries []*exercise.Exercise,
) (imported int, outErr error) {
	outErr = uow.Atomic(ctx, func(a *AtomicContext) error {
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ExerciseID)
		}

		existing, err := a.ExerciseStorage.GetByIDs(a.Context(), ids)
		if err != nil {
			return err
		}

		for _, e := range entries {
			if _, ok := existing[e.ExerciseID]; ok {
				s.logger.Debug("exercise already seeded", "exercise_id", e.ExerciseID)
				continue
			}
			if err := a.ExerciseStorage.Add(a.Context(), e); err != nil {
				return err
			}
			imported++
		}

		return a.Commit()
	})
	if outErr != nil {
		return 0, outErr
	}
	return imported, nil
}
