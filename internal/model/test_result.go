package model

import (
	"time"

	"github.com/google/uuid"
)

// TestType enumerates the four kinds of graded submissions.
type TestType string

const (
	TestTypeChapter TestType = "chapter"
	TestTypeFree    TestType = "free"
	TestTypeMaster  TestType = "master"
	TestTypeManual  TestType = "manual"
)

// Valid reports whether t is one of the known test types.
func (t TestType) Valid() bool {
	switch t {
	case TestTypeChapter, TestTypeFree, TestTypeMaster, TestTypeManual:
		return true
	}
	return false
}

// AnswerDetail is an immutable per-question snapshot captured at grading
// time. It carries owned copies of the question text and options so the
// record stays stable even if the question bank later changes or the
// question is deleted. A nil UserAnswer means the question was unanswered
// (or the raw answer was malformed) and is always incorrect.
type AnswerDetail struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	UserAnswer    *int     `json:"user_answer"`
	IsCorrect     bool     `json:"is_correct"`
}

// TestResult is one graded (or manually entered) attempt. Machine-graded
// results are immutable once created; manual results may be edited by their
// owner. CourseID and ChapterID are unset for the test types that do not
// carry them (free has neither, master has no chapter).
type TestResult struct {
	ID        uuid.UUID      `json:"id"`
	UserID    int            `json:"user_id"`
	CourseID  *uuid.UUID     `json:"course_id,omitempty"`
	SubjectID uuid.UUID      `json:"subject_id"`
	ChapterID *uuid.UUID     `json:"chapter_id,omitempty"`
	TestType  TestType       `json:"test_type"`
	Score     int            `json:"score"`
	Total     int            `json:"total"`
	Details   []AnswerDetail `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ResultFilter narrows a user's result listing. Nil fields are not applied.
type ResultFilter struct {
	TestType  *TestType
	SubjectID *uuid.UUID
}
