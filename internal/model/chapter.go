package model

import "github.com/google/uuid"

// ChapterPolicy is the resolved per-chapter submission policy: which course
// and subject the chapter belongs to, and how many graded attempts a user may
// make. A nil AttemptLimit means unlimited.
type ChapterPolicy struct {
	ChapterID    uuid.UUID `json:"chapter_id"`
	CourseID     uuid.UUID `json:"course_id"`
	SubjectID    uuid.UUID `json:"subject_id"`
	AttemptLimit *int      `json:"attempt_limit"`
}

// Unlimited reports whether the chapter has no attempt cap.
func (p *ChapterPolicy) Unlimited() bool {
	return p.AttemptLimit == nil
}
