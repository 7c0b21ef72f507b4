package exercise

import (
	"errors"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("exercise already exists")
)

const (
	ForceStatic = "static"
	ForcePull   = "pull"
	ForcePush   = "push"

	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelExpert       = "expert"

	MechanicCompound  = "compound"
	MechanicIsolation = "isolation"
)

// Exercise is a catalog entry. The catalog is populated by the seeding
// process and is read-only for everything else; workouts reference entries
// but never own them.
type Exercise struct {
	ExerciseID       string
	Name             string
	Force            string
	Level            string
	Mechanic         string
	Equipment        string
	PrimaryMuscles   []string
	SecondaryMuscles []string
	Instructions     []string
	Category         string
}

func New(
	exerciseID string,
	name string,
	force, level, mechanic, equipment string,
	primaryMuscles, secondaryMuscles []string,
	instructions []string,
	category string,
) *Exercise {
	return &Exercise{
		ExerciseID:       exerciseID,
		Name:             name,
		Force:            force,
		Level:            level,
		Mechanic:         mechanic,
		Equipment:        equipment,
		PrimaryMuscles:   primaryMuscles,
		SecondaryMuscles: secondaryMuscles,
		Instructions:     instructions,
		Category:         category,
	}
}
