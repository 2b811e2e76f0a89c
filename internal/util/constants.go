package util

import "time"

const (
	// Content progress required before surveys/evaluations are even checked.
	CompletionEligibilityThreshold = 95.0

	// Progress at which content is fully done and completion may fire.
	FullContentProgress = 100.0

	// Stored enrollment progress is capped here while requirements are pending.
	CappedProgressWithPending = 99.0

	// Enrollment progress writes below this delta are skipped.
	ProgressEpsilon = 0.01

	// Inline quiz retry policy.
	MaxQuizAttempts     = 3
	QuizRetryCooldown   = 60 * time.Second
	DefaultPassingScore = 70.0
	DefaultMaxAttempts  = 3
)
