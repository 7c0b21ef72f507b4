package api

import (
	"log/slog"
	"net"
	"strconv"

	"github.com/avyure/go_workout_backend/internal/adapter/storage"
	"github.com/avyure/go_workout_backend/internal/app/auth"
	exerciseservice "github.com/avyure/go_workout_backend/internal/app/exercise"
	"github.com/avyure/go_workout_backend/internal/app/unitofwork"
	workoutservice "github.com/avyure/go_workout_backend/internal/app/workout"
)

type Option func(*Server)

func Addr(host string, port int) Option {
	return func(s *Server) {
		s.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func Logger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func DBContext(db storage.DBContext) Option {
	return func(s *Server) {
		s.db = db
	}
}

func AuthService(service *auth.Service) Option {
	return func(s *Server) {
		s.authService = service
	}
}

func WorkoutService(service *workoutservice.Service) Option {
	return func(s *Server) {
		s.workoutService = service
	}
}

func ExerciseService(service *exerciseservice.Service) Option {
	return func(s *Server) {
		s.exerciseService = service
	}
}

func MessageBus(bus unitofwork.MessageBus) Option {
	return func(s *Server) {
		s.msgBus = bus
	}
}
