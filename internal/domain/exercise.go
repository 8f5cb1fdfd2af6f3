package domain

import "strings"

// Difficulty levels for catalog exercises.
const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

// Catalog defaults applied when an exercise omits them.
const (
	DefaultSets         = 3
	DefaultReps         = 15
	DefaultRestInterval = 30
)

// Exercise is a catalog entry. It is not owned by any user.
type Exercise struct {
	ID           string `json:"exercise_id" bson:"exercise_id"`
	Name         string `json:"name" bson:"name"`
	Description  string `json:"description" bson:"description"`
	FocusArea    string `json:"focus_area" bson:"focus_area"`
	VideoURL     string `json:"video_url,omitempty" bson:"video_url,omitempty"`
	DefaultSets  int    `json:"default_sets" bson:"default_sets"`
	DefaultReps  int    `json:"default_reps" bson:"default_reps"`
	RestInterval int    `json:"rest_interval" bson:"rest_interval"`
	Difficulty   string `json:"difficulty" bson:"difficulty"`
}

// Validate ensures catalog entry integrity. Call ApplyDefaults first.
func (e Exercise) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(e.Description) == "" {
		return invalid("description is required")
	}
	if strings.TrimSpace(e.FocusArea) == "" {
		return invalid("focus_area is required")
	}
	switch e.Difficulty {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
	default:
		return invalid("difficulty must be one of Beginner, Intermediate, Advanced")
	}
	if e.DefaultSets < 0 || e.DefaultReps < 0 || e.RestInterval < 0 {
		return invalid("sets, reps and rest_interval must be >= 0")
	}
	return nil
}

// ApplyDefaults fills zero-valued catalog fields.
func (e *Exercise) ApplyDefaults() {
	if e.DefaultSets == 0 {
		e.DefaultSets = DefaultSets
	}
	if e.DefaultReps == 0 {
		e.DefaultReps = DefaultReps
	}
	if e.RestInterval == 0 {
		e.RestInterval = DefaultRestInterval
	}
	if e.Difficulty == "" {
		e.Difficulty = DifficultyBeginner
	}
}
