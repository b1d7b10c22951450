package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prepstack/prepcore-backend/internal/model"
)

func questionPool(n int) []model.Question {
	pool := make([]model.Question, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, model.Question{
			ID:            uuid.New(),
			QuestionText:  "q",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i % model.OptionCount,
		})
	}
	return pool
}

func TestSelectQuestions_EmptyPoolFails(t *testing.T) {
	if _, err := SelectQuestions(nil, nil); err != ErrNoQuestions {
		t.Fatalf("err = %v, want ErrNoQuestions", err)
	}
}

func TestSelectQuestions_NilLimitReturnsFullPool(t *testing.T) {
	pool := questionPool(7)
	selected, err := SelectQuestions(pool, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(selected) != 7 {
		t.Fatalf("selected %d questions, want 7", len(selected))
	}
	// Uncapped selection preserves the pool order.
	for i := range pool {
		if selected[i].ID != pool[i].ID {
			t.Fatalf("selected[%d] reordered", i)
		}
	}
}

func TestSelectQuestions_PoolSmallerThanLimit(t *testing.T) {
	pool := questionPool(6)
	limit := FreeModeLimit
	selected, err := SelectQuestions(pool, &limit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(selected) != 6 {
		t.Fatalf("selected %d questions, want all 6", len(selected))
	}
}

func TestSelectQuestions_CapDrawsDistinctItems(t *testing.T) {
	pool := questionPool(80)
	limit := MasterModeLimit

	selected, err := SelectQuestions(pool, &limit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(selected) != 50 {
		t.Fatalf("selected %d questions, want 50", len(selected))
	}

	seen := make(map[uuid.UUID]bool, len(selected))
	for _, q := range selected {
		if seen[q.ID] {
			t.Fatalf("question %s selected twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSelectQuestions_EveryItemSelectable(t *testing.T) {
	pool := questionPool(20)
	limit := 10

	// Over repeated draws every question should show up at least once.
	seen := make(map[uuid.UUID]bool, len(pool))
	for trial := 0; trial < 200; trial++ {
		selected, err := SelectQuestions(pool, &limit)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, q := range selected {
			seen[q.ID] = true
		}
	}

	for _, q := range pool {
		if !seen[q.ID] {
			t.Errorf("question %s never selected across 200 trials", q.ID)
		}
	}
}

func TestSelectQuestions_InputNotReordered(t *testing.T) {
	pool := questionPool(30)
	original := make([]uuid.UUID, len(pool))
	for i, q := range pool {
		original[i] = q.ID
	}

	limit := 5
	if _, err := SelectQuestions(pool, &limit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, q := range pool {
		if q.ID != original[i] {
			t.Fatalf("input pool mutated at index %d", i)
		}
	}
}
