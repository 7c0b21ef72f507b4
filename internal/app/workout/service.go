package workoutservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avyure/go_workout_backend/internal/app/pagination"
	"github.com/avyure/go_workout_backend/internal/app/unitofwork"
	"github.com/avyure/go_workout_backend/internal/domain/workout"
)

// SubmittedSet and SubmittedExercise mirror the shape a client submits: one
// block per exercise entry, each with at least one set. Entries referencing
// the same exercise id are legal and get merged into a single activity.
type SubmittedSet struct {
	Repetitions int
	WeightKg    float64
}

type SubmittedExercise struct {
	ExerciseID string
	Sets       []SubmittedSet
}

type Service struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// CreateWorkout validates every referenced exercise against the catalog,
// groups the submission into per-exercise activities and persists the
// aggregate in one transaction. Structural constraints on the input
// (duration >= 1, reps >= 1, weight >= 0, date not in the future) are the
// request layer's job and are trusted here. Calling twice with the same
// input creates two workouts; resubmission is a caller decision.
func (s *Service) CreateWorkout(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	notes string,
	totalDurationMinutes int,
	workoutDate time.Time,
	exercises []SubmittedExercise,
) (w *workout.Workout, outErr error) {
	entries := flatten(exercises)

	outErr = uow.Atomic(ctx, func(a *AtomicContext) error {
		distinct := workout.DistinctExerciseIDs(entries)

		catalog, err := a.Exercises.GetByIDs(a.Context(), distinct)
		if err != nil {
			return err
		}

		var missing []string
		for _, id := range distinct {
			if _, ok := catalog[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return &workout.MissingExercisesError{ExerciseIDs: missing}
		}

		w = workout.New(
			uuid.Must(uuid.NewV7()).String(),
			userID,
			notes,
			totalDurationMinutes,
			workoutDate,
			workout.GroupEntries(entries, catalog),
		)

		if err := a.WorkoutStorage.Add(a.Context(), w); err != nil {
			return err
		}

		return a.Commit()
	})
	if outErr != nil {
		return nil, outErr
	}
	return w, nil
}

func (s *Service) GetWorkoutByID(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	workoutID string,
	userID string,
) (w *workout.Workout, outErr error) {
	outErr = uow.Atomic(ctx, func(a *AtomicContext) error {
		var err error
		if w, err = a.WorkoutStorage.GetByID(a.Context(), workoutID, userID); err != nil {
			return err
		}

		return a.Commit()
	})
	if outErr != nil {
		return nil, outErr
	}
	return w, nil
}

// ListWorkouts returns one page of the owner's workouts, newest workout date
// first, with the owner's total for page-count computation. Pages beyond the
// range come back empty with the correct total, not as an error.
func (s *Service) ListWorkouts(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	pageSize, pageNumber int,
) (page pagination.Page[*workout.Workout], outErr error) {
	outErr = uow.Atomic(ctx, func(a *AtomicContext) error {
		total, err := a.WorkoutStorage.CountByOwner(a.Context(), userID)
		if err != nil {
			return err
		}

		items, err := a.WorkoutStorage.ListByOwner(
			a.Context(),
			userID,
			pageSize,
			pagination.Offset(pageNumber, pageSize),
		)
		if err != nil {
			return err
		}

		page = pagination.NewPage(items, pageSize, pageNumber, total)
		return a.Commit()
	})
	return page, outErr
}

func flatten(exercises []SubmittedExercise) []workout.Entry {
	var entries []workout.Entry
	for _, ex := range exercises {
		for _, set := range ex.Sets {
			entries = append(entries, workout.Entry{
				ExerciseID:  ex.ExerciseID,
				Repetitions: set.Repetitions,
				WeightKg:    set.WeightKg,
			})
		}
	}
	return entries
}
