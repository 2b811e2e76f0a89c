package service

import (
	"strings"
	"testing"
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) issueCertificate(t *testing.T, userID, courseID uint) *model.Certificate {
	t.Helper()
	now := time.Now().UTC()
	certificate := &model.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		CertificateNumber: newCertificateNumber(now),
		Title:             "Working at Heights",
		ScoreAchieved:     92.5,
		Status:            model.CertificateIssued,
		VerificationCode:  "verify-code-1",
		CompletionDate:    now,
		IssueDate:         now,
	}
	require.NoError(t, e.db.Create(certificate).Error)
	return certificate
}

func TestVerifyCertificateByCode(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	certificate := env.issueCertificate(t, user.ID, course.ID)

	found, err := env.certs.Verify("verify-code-1")
	require.NoError(t, err)
	assert.Equal(t, certificate.ID, found.ID)

	_, err = env.certs.Verify("no-such-code")
	assert.True(t, util.IsNotFound(err))
}

func TestRevokedCertificateFailsVerification(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	course := env.createCourse(t, model.CoursePublished)
	certificate := env.issueCertificate(t, user.ID, course.ID)

	require.NoError(t, env.certs.Revoke(certificate.ID))

	_, err := env.certs.Verify("verify-code-1")
	assert.True(t, util.IsInvalidState(err))
}

func TestGetCertificateChecksOwnership(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	other := env.createUser(t, "bob")
	course := env.createCourse(t, model.CoursePublished)
	certificate := env.issueCertificate(t, user.ID, course.ID)

	_, err := env.certs.GetByID(user.ID, certificate.ID)
	require.NoError(t, err)

	_, err = env.certs.GetByID(other.ID, certificate.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestCertificateNumberFormat(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	number := newCertificateNumber(now)

	assert.True(t, strings.HasPrefix(number, "SST-2026-"))
	suffix := strings.TrimPrefix(number, "SST-2026-")
	assert.Len(t, suffix, 8)
	assert.Equal(t, strings.ToUpper(suffix), suffix)

	// Two numbers never collide.
	assert.NotEqual(t, number, newCertificateNumber(now))
}
