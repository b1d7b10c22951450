package model

import "github.com/google/uuid"

// OptionCount is the fixed number of answer options on every question.
// CorrectAnswer and sanitized user answers are indices into [0, OptionCount).
const OptionCount = 4

// Question is a read-only view of a question owned by the content
// administration service. The submission core never mutates questions.
type Question struct {
	ID            uuid.UUID `json:"id"`
	CourseID      uuid.UUID `json:"course_id"`
	SubjectID     uuid.UUID `json:"subject_id"`
	ChapterID     uuid.UUID `json:"chapter_id"`
	QuestionText  string    `json:"question_text"`
	Options       []string  `json:"options"`
	CorrectAnswer int       `json:"correct_answer"`
}

// QuestionFilter narrows the question pool. Nil fields are not applied.
type QuestionFilter struct {
	CourseID  *uuid.UUID
	SubjectID *uuid.UUID
	ChapterID *uuid.UUID
}
