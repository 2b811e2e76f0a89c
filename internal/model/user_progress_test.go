package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaterialUpdateProgressAutoCompletes(t *testing.T) {
	p := &UserMaterialProgress{Status: ProgressNotStarted}

	p.UpdateProgress(40, nil, nil)
	assert.Equal(t, ProgressInProgress, p.Status)
	assert.Equal(t, 40.0, p.ProgressPercentage)

	p.UpdateProgress(120, nil, nil)
	assert.Equal(t, ProgressCompleted, p.Status)
	assert.Equal(t, 100.0, p.ProgressPercentage)
	assert.NotNil(t, p.CompletedAt)
}

func TestMaterialResetClearsEverything(t *testing.T) {
	p := &UserMaterialProgress{Status: ProgressNotStarted}
	pos := 10
	spent := 90
	p.UpdateProgress(100, &pos, &spent)
	p.Reset()

	assert.Equal(t, ProgressNotStarted, p.Status)
	assert.Equal(t, 0.0, p.ProgressPercentage)
	assert.Equal(t, 0, p.TimeSpentSeconds)
	assert.Equal(t, 0, p.LastPosition)
	assert.Nil(t, p.StartedAt)
	assert.Nil(t, p.CompletedAt)
}

func TestModuleCalculateProgress(t *testing.T) {
	p := &UserModuleProgress{MaterialsCompleted: 1, TotalMaterials: 4}
	p.CalculateProgress()
	assert.Equal(t, 25.0, p.ProgressPercentage)
	assert.Equal(t, ProgressInProgress, p.Status)

	p.MaterialsCompleted = 4
	p.CalculateProgress()
	assert.Equal(t, 100.0, p.ProgressPercentage)
	assert.Equal(t, ProgressCompleted, p.Status)
	assert.NotNil(t, p.CompletedAt)

	empty := &UserModuleProgress{TotalMaterials: 0}
	empty.CalculateProgress()
	assert.Equal(t, 0.0, empty.ProgressPercentage)
}

func TestSlideQuizAttemptCycle(t *testing.T) {
	p := &UserSlideProgress{}

	p.RecordQuizAttempt(`{"answerId":2}`, false, 2, 3)
	assert.False(t, p.QuizAnswered)
	assert.Equal(t, 1, p.QuizAttempts)

	p.RecordQuizAttempt(`{"answerId":2}`, false, 2, 3)
	p.RecordQuizAttempt(`{"answerId":2}`, false, 2, 3)
	// Third miss is terminal with zero points.
	assert.True(t, p.QuizAnswered)
	assert.False(t, p.QuizCorrect)
	assert.Equal(t, 0.0, p.PointsEarned)

	p.ResetQuizCycle()
	assert.False(t, p.QuizAnswered)
	assert.Equal(t, 0, p.QuizAttempts)

	p.RecordQuizAttempt(`{"answerId":1}`, true, 2, 3)
	assert.True(t, p.QuizAnswered)
	assert.True(t, p.QuizCorrect)
	assert.Equal(t, 2.0, p.PointsEarned)
}
