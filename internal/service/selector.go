package service

import (
	"errors"
	"math/rand"

	"github.com/prepstack/prepcore-backend/internal/model"
)

// Selection caps per test mode.
const (
	FreeModeLimit   = 10
	MasterModeLimit = 50
)

// ErrNoQuestions is returned when the requested scope has an empty question
// pool. An empty pool is always a failure, never an empty selection.
var ErrNoQuestions = errors.New("no questions found")

// SelectQuestions draws up to limit questions from pool by uniform sampling
// without replacement (Fisher–Yates shuffle, then truncation). A nil limit,
// or a pool no larger than the limit, returns the whole pool in its original
// order. The returned slice is an owned copy; the input is never reordered.
func SelectQuestions(pool []model.Question, limit *int) ([]model.Question, error) {
	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}

	selected := make([]model.Question, len(pool))
	copy(selected, pool)

	if limit == nil || len(selected) <= *limit {
		return selected, nil
	}

	rand.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	return selected[:*limit], nil
}
