package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	exerciseservice "github.com/avyure/go_workout_backend/internal/app/exercise"
	"github.com/avyure/go_workout_backend/internal/app/unitofwork"
	"github.com/avyure/go_workout_backend/internal/domain/exercise"
)

func (s *Server) MountExercises() {
	loginRequired := LoginRequired(s.authService.Authorizer)
	s.handler.GET("/exercises/:exercise_id", s.GetExercise, loginRequired)
}

func (s *Server) getExercisesUoW() *unitofwork.UnitOfWork[*exerciseservice.AtomicContext] {
	return unitofwork.New[*exerciseservice.AtomicContext](
		s.db,
		exerciseservice.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

type GetExerciseRequest struct {
	ExerciseID string `param:"exercise_id" validate:"required"`
}

type GetExerciseResponse struct {
	ExerciseID       string   `json:"exercise_id"`
	Name             string   `json:"name"`
	Force            string   `json:"force,omitempty"`
	Level            string   `json:"level,omitempty"`
	Mechanic         string   `json:"mechanic,omitempty"`
	Equipment        string   `json:"equipment,omitempty"`
	PrimaryMuscles   []string `json:"primary_muscles"`
	SecondaryMuscles []string `json:"secondary_muscles"`
	Instructions     []string `json:"instructions"`
	Category         string   `json:"category"`
}

func (s *Server) GetExercise(c echo.Context) error {
	var req GetExerciseRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	uow := s.getExercisesUoW()
	ctx := c.Request().Context()

	e, err := s.exerciseService.GetExerciseByID(ctx, uow, req.ExerciseID)
	if err != nil {
		if errors.Is(err, exercise.ErrExerciseNotFound) {
			return JsonError(c, http.StatusNotFound, "exercise not found")
		}

		return JsonError(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, GetExerciseResponse{
		ExerciseID:       e.ExerciseID,
		Name:             e.Name,
		Force:            e.Force,
		Level:            e.Level,
		Mechanic:         e.Mechanic,
		Equipment:        e.Equipment,
		PrimaryMuscles:   e.PrimaryMuscles,
		SecondaryMuscles: e.SecondaryMuscles,
		Instructions:     e.Instructions,
		Category:         e.Category,
	})
}
