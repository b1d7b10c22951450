package model

import "github.com/google/uuid"

// Submission is the sealed input to the submission pipeline. Exactly one
// variant exists per test type, each carrying only the fields that type
// requires, so the pipeline dispatches with an exhaustive type switch
// instead of probing optional fields.
type Submission interface {
	TestType() TestType
}

// ChapterSubmission is a chapter-scoped test: the full chapter pool is
// graded and one unit of the chapter's attempt quota is consumed.
type ChapterSubmission struct {
	CourseID  uuid.UUID
	SubjectID uuid.UUID
	ChapterID uuid.UUID
	Answers   []any
}

// FreeSubmission is a subject-wide practice test capped at a small random
// sample. Free tests are unlimited and carry no course or chapter.
type FreeSubmission struct {
	SubjectID uuid.UUID
	Answers   []any
}

// MasterSubmission is a course-wide test capped at a larger random sample.
// Master tests are unlimited and carry no chapter.
type MasterSubmission struct {
	CourseID  uuid.UUID
	SubjectID uuid.UUID
	Answers   []any
}

// ManualSubmission is a user-entered result: the caller supplies the score,
// total and optional details, and no selection, grading or quota applies.
type ManualSubmission struct {
	CourseID  uuid.UUID
	SubjectID uuid.UUID
	ChapterID *uuid.UUID
	Score     int
	Total     int
	Details   []AnswerDetail
}

func (ChapterSubmission) TestType() TestType { return TestTypeChapter }
func (FreeSubmission) TestType() TestType    { return TestTypeFree }
func (MasterSubmission) TestType() TestType  { return TestTypeMaster }
func (ManualSubmission) TestType() TestType  { return TestTypeManual }

// SubmitTestRequest is the wire payload for POST /tests/submit. Which fields
// are required depends on test_type; the handler narrows it into one of the
// Submission variants and rejects anything that does not fit.
type SubmitTestRequest struct {
	TestType  string         `json:"test_type" binding:"required,oneof=chapter free master manual"`
	CourseID  *uuid.UUID     `json:"course_id"`
	SubjectID *uuid.UUID     `json:"subject_id" binding:"required"`
	ChapterID *uuid.UUID     `json:"chapter_id"`
	Answers   []any          `json:"answers"`
	Score     *int           `json:"score"`
	Total     *int           `json:"total"`
	Details   []AnswerDetail `json:"details"`
}

// SubmitTestResponse is the graded outcome returned to the caller.
// AttemptCount is present only for chapter tests.
type SubmitTestResponse struct {
	Score           int            `json:"score"`
	Total           int            `json:"total"`
	DetailedResults []AnswerDetail `json:"detailed_results"`
	AttemptCount    *int           `json:"attempt_count,omitempty"`
}

// UpdateResultRequest is the payload for editing a manual result.
type UpdateResultRequest struct {
	Score *int `json:"score" binding:"required,min=0"`
	Total *int `json:"total" binding:"required,min=1"`
}

// AdminManualResultRequest is the admin payload for recording a manual
// result on behalf of a user.
type AdminManualResultRequest struct {
	UserID    int        `json:"user_id" binding:"required"`
	CourseID  uuid.UUID  `json:"course_id" binding:"required"`
	SubjectID uuid.UUID  `json:"subject_id" binding:"required"`
	ChapterID *uuid.UUID `json:"chapter_id"`
	Score     int        `json:"score" binding:"min=0"`
	Total     int        `json:"total" binding:"required,min=1"`
}
