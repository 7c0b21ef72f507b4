package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/leporo/sqlf"
	"github.com/samber/lo"

	"github.com/avyure/go_workout_backend/internal/adapter/storage"
	exerciseservice "github.com/avyure/go_workout_backend/internal/app/exercise"
	"github.com/avyure/go_workout_backend/internal/app/messagebus"
	"github.com/avyure/go_workout_backend/internal/app/unitofwork"
	"github.com/avyure/go_workout_backend/internal/config"
	"github.com/avyure/go_workout_backend/internal/domain/exercise"
)

type catalogEntry struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Force            string   `json:"force"`
	Level            string   `json:"level"`
	Mechanic         string   `json:"mechanic"`
	Equipment        string   `json:"equipment"`
	PrimaryMuscles   []string `json:"primaryMuscles"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Instructions     []string `json:"instructions"`
	Category         string   `json:"category"`
}

func main() {
	var configPath, catalogPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.StringVar(&catalogPath, "file", "data/exercises.json", "path to exercise catalog file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	raw, err := os.ReadFile(catalogPath)
	if err != nil {
		logger.Error("failed to read catalog file", "path", catalogPath, "error", err)
		os.Exit(1)
	}

	var entries []catalogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Error("failed to parse catalog file", "path", catalogPath, "error", err)
		os.Exit(1)
	}

	sqlf.SetDialect(sqlf.PostgreSQL)

	db, err := sql.Open("pgx", cfg.DB.DSN)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	uow := unitofwork.New[*exerciseservice.AtomicContext](
		&storage.DB{DB: db},
		exerciseservice.NewAtomicContext,
		messagebus.New(logger),
		logger,
	)

	service := exerciseservice.New(logger)
	imported, err := service.ImportCatalog(
		context.Background(),
		uow,
		lo.Map(entries, func(e catalogEntry, _ int) *exercise.Exercise {
			return exercise.New(
				e.ID,
				e.Name,
				e.Force, e.Level, e.Mechanic, e.Equipment,
				e.PrimaryMuscles, e.SecondaryMuscles,
				e.Instructions,
				e.Category,
			)
		}),
	)
	if err != nil {
		logger.Error("catalog import failed", "error", err)
		os.Exit(1)
	}

	logger.Info("catalog imported", "total", len(entries), "imported", imported)
}
