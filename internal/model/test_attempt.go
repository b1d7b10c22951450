package model

import "github.com/google/uuid"

// AttemptKey identifies one attempt counter. Counters are scoped per user,
// per chapter within a course, per test type.
type AttemptKey struct {
	UserID    int
	CourseID  uuid.UUID
	ChapterID uuid.UUID
	TestType  TestType
}

// Reservation is the outcome of a conditional attempt reservation.
// AttemptCount is the post-increment value when Granted, and the current
// (unchanged) value when denied.
type Reservation struct {
	Granted      bool
	AttemptCount int
}
