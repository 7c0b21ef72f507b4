package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/avyure/go_workout_backend/internal/app/auth"
	"github.com/avyure/go_workout_backend/internal/app/unitofwork"
	workoutservice "github.com/avyure/go_workout_backend/internal/app/workout"
	"github.com/avyure/go_workout_backend/internal/domain/exercise"
	"github.com/avyure/go_workout_backend/internal/domain/workout"
)

const (
	defaultPageSize   = 100
	defaultPageNumber = 1
)

func (s *Server) MountWorkouts() {
	loginRequired := LoginRequired(s.authService.Authorizer)
	s.handler.POST("/workouts", s.CreateWorkout, loginRequired)
	s.handler.GET("/workouts", s.ListWorkouts, loginRequired)
	s.handler.GET("/workouts/:workout_id", s.GetWorkout, loginRequired)
}

func (s *Server) getWorkoutsUoW() *unitofwork.UnitOfWork[*workoutservice.AtomicContext] {
	return unitofwork.New[*workoutservice.AtomicContext](
		s.db,
		workoutservice.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

type SubmittedSet struct {
	Repetitions int     `json:"repetitions" validate:"min=1"`
	WeightKg    float64 `json:"weight_kg" validate:"min=0"`
}

type SubmittedExercise struct {
	ExerciseID string         `json:"exercise_id" validate:"required"`
	Sets       []SubmittedSet `json:"sets" validate:"required,min=1,dive"`
}

type CreateWorkoutRequest struct {
	Notes                string              `json:"notes"`
	TotalDurationMinutes int                 `json:"total_duration_minutes" validate:"min=1"`
	WorkoutDate          time.Time           `json:"workout_date" validate:"required"`
	Exercises            []SubmittedExercise `json:"exercises" validate:"required,min=1,dive"`
}

func (s *Server) CreateWorkout(c echo.Context) error {
	var req CreateWorkoutRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	if req.WorkoutDate.After(time.Now()) {
		return JsonError(c, http.StatusBadRequest, "workout_date: must not be in the future")
	}

	uow := s.getWorkoutsUoW()
	ctx := c.Request().Context()
	u := c.Get(KeyCurrentUser).(*auth.AccessTokenData)

	w, err := s.workoutService.CreateWorkout(
		ctx,
		uow,
		u.UserID,
		req.Notes,
		req.TotalDurationMinutes,
		req.WorkoutDate,
		lo.Map(req.Exercises, func(ex SubmittedExercise, _ int) workoutservice.SubmittedExercise {
			return workoutservice.SubmittedExercise{
				ExerciseID: ex.ExerciseID,
				Sets: lo.Map(ex.Sets, func(set SubmittedSet, _ int) workoutservice.SubmittedSet {
					return workoutservice.SubmittedSet{
						Repetitions: set.Repetitions,
						WeightKg:    set.WeightKg,
					}
				}),
			}
		}),
	)
	if err != nil {
		if errors.Is(err, exercise.ErrExerciseNotFound) {
			return JsonError(c, http.StatusBadRequest, err)
		}

		return JsonError(c, http.StatusInternalServerError, err)
	}

	c.Response().Header().Set(echo.HeaderLocation, "/workouts/"+w.WorkoutID)
	return c.JSON(http.StatusCreated, workoutModel(w))
}

type Set struct {
	Repetitions int     `json:"repetitions"`
	WeightKg    float64 `json:"weight_kg"`
}

type Activity struct {
	ExerciseID   string `json:"exercise_id"`
	ExerciseName string `json:"exercise_name"`
	Sets         []Set  `json:"sets"`
}

type Workout struct {
	WorkoutID            string     `json:"workout_id"`
	Notes                string     `json:"notes,omitempty"`
	TotalDurationMinutes int        `json:"total_duration_minutes"`
	WorkoutDate          time.Time  `json:"workout_date"`
	Exercises            []Activity `json:"exercises"`
}

func workoutModel(w *workout.Workout) Workout {
	return Workout{
		WorkoutID:            w.WorkoutID,
		Notes:                w.Notes,
		TotalDurationMinutes: w.TotalDurationMinutes,
		WorkoutDate:          w.WorkoutDate,
		Exercises: lo.Map(w.Activities, func(a *workout.Activity, _ int) Activity {
			return Activity{
				ExerciseID:   a.Exercise.ExerciseID,
				ExerciseName: a.Exercise.Name,
				Sets: lo.Map(a.Sets, func(set workout.Set, _ int) Set {
					return Set{
						Repetitions: set.Repetitions,
						WeightKg:    set.WeightKg,
					}
				}),
			}
		}),
	}
}

type GetWorkoutRequest struct {
	WorkoutID string `param:"workout_id" validate:"required"`
}

func (s *Server) GetWorkout(c echo.Context) error {
	var req GetWorkoutRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	uow := s.getWorkoutsUoW()
	ctx := c.Request().Context()
	u := c.Get(KeyCurrentUser).(*auth.AccessTokenData)

	w, err := s.workoutService.GetWorkoutByID(ctx, uow, req.WorkoutID, u.UserID)
	if err != nil {
		if errors.Is(err, workout.ErrWorkoutNotFound) {
			return JsonError(c, http.StatusNotFound, "workout not found")
		}

		return JsonError(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, workoutModel(w))
}

type ListWorkoutsRequest struct {
	PageSize   int `query:"page_size" validate:"omitempty,min=1,max=100"`
	PageNumber int `query:"page_number" validate:"omitempty,min=1"`
}

type ListWorkoutsResponse struct {
	Items        []Workout `json:"items"`
	PageSize     int       `json:"page_size"`
	PageNumber   int       `json:"page_number"`
	TotalRecords int       `json:"total_records"`
	TotalPages   int       `json:"total_pages"`
}

func (s *Server) ListWorkouts(c echo.Context) error {
	var req ListWorkoutsRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	if req.PageSize == 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageNumber == 0 {
		req.PageNumber = defaultPageNumber
	}

	uow := s.getWorkoutsUoW()
	ctx := c.Request().Context()
	u := c.Get(KeyCurrentUser).(*auth.AccessTokenData)

	page, err := s.workoutService.ListWorkouts(ctx, uow, u.UserID, req.PageSize, req.PageNumber)
	if err != nil {
		return JsonError(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, ListWorkoutsResponse{
		Items:        lo.Map(page.Items, func(w *workout.Workout, _ int) Workout { return workoutModel(w) }),
		PageSize:     page.PageSize,
		PageNumber:   page.PageNumber,
		TotalRecords: page.TotalRecords,
		TotalPages:   page.TotalPages,
	})
}
