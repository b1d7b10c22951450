package service

import (
	"encoding/json"

	"github.com/prepstack/prepcore-backend/internal/model"
)

// GradeAnswers grades raw answers positionally against the ordered question
// list. Each detail record carries owned copies of the question text, options
// and correct index, so results stay stable even if the question bank later
// changes. Returns the correct count and one detail per question.
func GradeAnswers(questions []model.Question, answers []any) (int, []model.AnswerDetail) {
	score := 0
	details := make([]model.AnswerDetail, 0, len(questions))

	for i, q := range questions {
		var raw any
		if i < len(answers) {
			raw = answers[i]
		}
		answer := SanitizeAnswer(raw)
		isCorrect := answer != nil && *answer == q.CorrectAnswer
		if isCorrect {
			score++
		}

		options := make([]string, len(q.Options))
		copy(options, q.Options)

		details = append(details, model.AnswerDetail{
			Question:      q.QuestionText,
			Options:       options,
			CorrectAnswer: q.CorrectAnswer,
			UserAnswer:    answer,
			IsCorrect:     isCorrect,
		})
	}

	return score, details
}

// SanitizeAnswer narrows an arbitrary decoded JSON value to a valid option
// index. Anything that is not an integral number in [0, OptionCount) comes
// back nil and is graded as unanswered.
func SanitizeAnswer(raw any) *int {
	var n int
	switch v := raw.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		n = int(v)
		if float64(n) != v {
			return nil
		}
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil
		}
		n = int(i)
	default:
		return nil
	}

	if n < 0 || n >= model.OptionCount {
		return nil
	}
	return &n
}
