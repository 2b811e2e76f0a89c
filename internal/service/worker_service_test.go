package service

import (
	"testing"
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkerService(env *testEnv) *WorkerService {
	return NewWorkerService(
		repository.NewWorkerRepository(env.db),
		repository.NewUserRepository(env.db),
		repository.NewReinductionRepository(env.db),
		env.db,
	)
}

func TestCreateWorkerRejectsDuplicateDocument(t *testing.T) {
	env := newTestEnv(t)
	workers := newWorkerService(env)

	first := &model.Worker{DocumentNumber: "DOC-1", FirstName: "Alice", LastName: "Ng"}
	require.NoError(t, workers.Create(first))

	dup := &model.Worker{DocumentNumber: "DOC-1", FirstName: "Bob", LastName: "Ng"}
	assert.True(t, util.IsInvalidState(workers.Create(dup)))
}

func TestLinkUserEnforcesBothSides(t *testing.T) {
	env := newTestEnv(t)
	workers := newWorkerService(env)
	user := env.createUser(t, "alice")

	w1 := &model.Worker{DocumentNumber: "DOC-1", FirstName: "Alice", LastName: "Ng"}
	w2 := &model.Worker{DocumentNumber: "DOC-2", FirstName: "Bob", LastName: "Ng"}
	require.NoError(t, workers.Create(w1))
	require.NoError(t, workers.Create(w2))

	linked, err := workers.LinkUser(w1.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.UserID)
	assert.Equal(t, user.ID, *linked.UserID)

	// Same worker again.
	_, err = workers.LinkUser(w1.ID, user.ID)
	assert.True(t, util.IsInvalidState(err))

	// Same user on a different worker.
	_, err = workers.LinkUser(w2.ID, user.ID)
	assert.True(t, util.IsInvalidState(err))

	// Unknown user.
	_, err = workers.LinkUser(w2.ID, 9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	unlinked, err := workers.UnlinkUser(w1.ID)
	require.NoError(t, err)
	assert.Nil(t, unlinked.UserID)

	_, err = workers.UnlinkUser(w1.ID)
	assert.True(t, util.IsInvalidState(err))
}

func TestScheduleReinductionOncePerYear(t *testing.T) {
	env := newTestEnv(t)
	workers := newWorkerService(env)

	worker := &model.Worker{DocumentNumber: "DOC-1", FirstName: "Alice", LastName: "Ng"}
	require.NoError(t, workers.Create(worker))

	year := time.Now().UTC().Year()
	due := time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC)

	record, err := workers.ScheduleReinduction(worker.ID, year, due)
	require.NoError(t, err)
	assert.Equal(t, model.ReinductionScheduled, record.Status)

	_, err = workers.ScheduleReinduction(worker.ID, year, due)
	assert.True(t, util.IsInvalidState(err))
}

func TestMarkOverdueReinductions(t *testing.T) {
	env := newTestEnv(t)
	workers := newWorkerService(env)

	worker := &model.Worker{DocumentNumber: "DOC-1", FirstName: "Alice", LastName: "Ng"}
	require.NoError(t, workers.Create(worker))

	now := time.Now().UTC()
	year := now.Year()

	overdue := &model.ReinductionRecord{
		WorkerID: worker.ID,
		Year:     year,
		Status:   model.ReinductionScheduled,
		DueDate:  now.Add(-24 * time.Hour),
	}
	require.NoError(t, env.db.Create(overdue).Error)

	flipped, err := workers.MarkOverdueReinductions(now)
	require.NoError(t, err)
	assert.Equal(t, 1, flipped)

	var reloaded model.ReinductionRecord
	require.NoError(t, env.db.First(&reloaded, overdue.ID).Error)
	assert.Equal(t, model.ReinductionOverdue, reloaded.Status)

	// Second sweep finds nothing to flip.
	flipped, err = workers.MarkOverdueReinductions(now)
	require.NoError(t, err)
	assert.Zero(t, flipped)
}
