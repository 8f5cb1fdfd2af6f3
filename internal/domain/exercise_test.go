package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExerciseValidate(t *testing.T) {
	ex := Exercise{Name: "Plank", Description: "Hold a straight line on the forearms", FocusArea: "Core"}
	ex.ApplyDefaults()
	require.NoError(t, ex.Validate())
	require.Equal(t, DifficultyBeginner, ex.Difficulty)
	require.Equal(t, DefaultSets, ex.DefaultSets)

	missing := ex
	missing.Description = ""
	require.True(t, IsValidation(missing.Validate()))

	missing = ex
	missing.FocusArea = ""
	require.True(t, IsValidation(missing.Validate()))

	missing = ex
	missing.Difficulty = "Expert"
	require.True(t, IsValidation(missing.Validate()))
}
