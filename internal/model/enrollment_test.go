package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentStartOnlyFromPending(t *testing.T) {
	e := &Enrollment{Status: EnrollmentPending}
	e.Start()
	assert.Equal(t, EnrollmentActive, e.Status)
	assert.NotNil(t, e.StartedAt)

	first := e.StartedAt
	e.Start()
	assert.Equal(t, first, e.StartedAt)

	cancelled := &Enrollment{Status: EnrollmentCancelled}
	cancelled.Start()
	assert.Equal(t, EnrollmentCancelled, cancelled.Status)
}

func TestEnrollmentCompleteKeepsFirstTimestamp(t *testing.T) {
	grade := 87.5
	e := &Enrollment{Status: EnrollmentActive, Progress: 99}
	e.Complete(&grade)

	assert.Equal(t, EnrollmentCompleted, e.Status)
	assert.Equal(t, 100.0, e.Progress)
	assert.Equal(t, &grade, e.Grade)

	first := e.CompletedAt
	e.Complete(nil)
	assert.Equal(t, first, e.CompletedAt)
	assert.Equal(t, &grade, e.Grade)
}

func TestEnrollmentUpdateProgressClampsWithoutCompleting(t *testing.T) {
	e := &Enrollment{Status: EnrollmentActive}

	e.UpdateProgress(-5)
	assert.Equal(t, 0.0, e.Progress)

	e.UpdateProgress(130)
	assert.Equal(t, 100.0, e.Progress)
	assert.Equal(t, EnrollmentActive, e.Status)
}

func TestEnrollmentNotesAccumulate(t *testing.T) {
	e := &Enrollment{Status: EnrollmentActive}
	e.Suspend("audit hold")
	e.Resume()
	e.Cancel("left the company")

	assert.Contains(t, e.Notes, "Suspended: audit hold")
	assert.Contains(t, e.Notes, "Cancelled: left the company")
}

func TestEnrollmentResumeOnlyFromSuspended(t *testing.T) {
	e := &Enrollment{Status: EnrollmentCancelled}
	e.Resume()
	assert.Equal(t, EnrollmentCancelled, e.Status)
}
