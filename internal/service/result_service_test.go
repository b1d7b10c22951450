package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prepstack/prepcore-backend/internal/model"
	"github.com/rs/zerolog"
)

// memResultStore backs ResultService tests with a map keyed by result id.
type memResultStore struct {
	byID map[uuid.UUID]*model.TestResult
}

func newMemResultStore() *memResultStore {
	return &memResultStore{byID: make(map[uuid.UUID]*model.TestResult)}
}

func (m *memResultStore) Create(ctx context.Context, res *model.TestResult) error {
	res.ID = uuid.New()
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	stored := *res
	m.byID[res.ID] = &stored
	return nil
}

func (m *memResultStore) GetByID(ctx context.Context, id uuid.UUID) (*model.TestResult, error) {
	res, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *res
	return &out, nil
}

func (m *memResultStore) ListByUser(ctx context.Context, userID int, filter model.ResultFilter, limit, offset int) ([]model.TestResult, int, error) {
	var matched []model.TestResult
	for _, res := range m.byID {
		if res.UserID != userID {
			continue
		}
		if filter.TestType != nil && res.TestType != *filter.TestType {
			continue
		}
		if filter.SubjectID != nil && res.SubjectID != *filter.SubjectID {
			continue
		}
		matched = append(matched, *res)
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *memResultStore) UpdateScore(ctx context.Context, id uuid.UUID, score, total int) error {
	res, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	res.Score = score
	res.Total = total
	res.UpdatedAt = time.Now()
	return nil
}

func (m *memResultStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

func (m *memResultStore) seed(t *testing.T, res model.TestResult) uuid.UUID {
	t.Helper()
	stored := res
	if err := m.Create(context.Background(), &stored); err != nil {
		t.Fatalf("seed result: %v", err)
	}
	return stored.ID
}

func newResultService(store ResultStore, ledger AttemptLedger) *ResultService {
	return NewResultService(store, ledger, zerolog.Nop())
}

func TestResultUpdate_ManualOnly(t *testing.T) {
	store := newMemResultStore()
	svc := newResultService(store, newMemLedger())
	scope := newTestScope()

	manualID := store.seed(t, model.TestResult{
		UserID:    7,
		SubjectID: scope.subjectID,
		TestType:  model.TestTypeManual,
		Score:     4,
		Total:     10,
	})
	chapterID := store.seed(t, model.TestResult{
		UserID:    7,
		CourseID:  &scope.courseID,
		SubjectID: scope.subjectID,
		ChapterID: &scope.chapterID,
		TestType:  model.TestTypeChapter,
		Score:     4,
		Total:     10,
	})

	updated, err := svc.Update(context.Background(), manualID, 7, 9, 10)
	if err != nil {
		t.Fatalf("manual update failed: %v", err)
	}
	if updated.Score != 9 || updated.Total != 10 {
		t.Fatalf("updated = %d/%d, want 9/10", updated.Score, updated.Total)
	}

	_, err = svc.Update(context.Background(), chapterID, 7, 9, 10)
	if !errors.Is(err, ErrResultNotEditable) {
		t.Fatalf("chapter edit err = %v, want ErrResultNotEditable", err)
	}

	persisted, _ := store.GetByID(context.Background(), chapterID)
	if persisted.Score != 4 {
		t.Fatal("machine-graded result was modified")
	}
}

func TestResultUpdate_Ownership(t *testing.T) {
	store := newMemResultStore()
	svc := newResultService(store, newMemLedger())
	scope := newTestScope()

	id := store.seed(t, model.TestResult{
		UserID:    7,
		SubjectID: scope.subjectID,
		TestType:  model.TestTypeManual,
		Score:     4,
		Total:     10,
	})

	_, err := svc.Update(context.Background(), id, 8, 9, 10)
	if !errors.Is(err, ErrNotResultOwner) {
		t.Fatalf("err = %v, want ErrNotResultOwner", err)
	}

	_, err = svc.Update(context.Background(), uuid.New(), 7, 9, 10)
	if !errors.Is(err, ErrResultNotFound) {
		t.Fatalf("err = %v, want ErrResultNotFound", err)
	}
}

func TestResultUpdate_ScoreExceedsTotal(t *testing.T) {
	store := newMemResultStore()
	svc := newResultService(store, newMemLedger())
	scope := newTestScope()

	id := store.seed(t, model.TestResult{
		UserID:    7,
		SubjectID: scope.subjectID,
		TestType:  model.TestTypeManual,
		Score:     4,
		Total:     10,
	})

	_, err := svc.Update(context.Background(), id, 7, 11, 10)
	if !errors.Is(err, ErrScoreExceedsTotal) {
		t.Fatalf("err = %v, want ErrScoreExceedsTotal", err)
	}
}

func TestResultDelete_ChapterReleasesAttempt(t *testing.T) {
	store := newMemResultStore()
	ledger := newMemLedger()
	svc := newResultService(store, ledger)
	scope := newTestScope()

	key := scope.key(7)
	limit := 5
	for i := 0; i < 2; i++ {
		if _, err := ledger.TryReserve(context.Background(), key, &limit); err != nil {
			t.Fatalf("reserve: %v", err)
		}
	}

	id := store.seed(t, model.TestResult{
		UserID:    7,
		CourseID:  &scope.courseID,
		SubjectID: scope.subjectID,
		ChapterID: &scope.chapterID,
		TestType:  model.TestTypeChapter,
		Score:     4,
		Total:     10,
	})

	if err := svc.Delete(context.Background(), id, 7); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got := ledger.count(key); got != 1 {
		t.Fatalf("ledger count after delete = %d, want 1", got)
	}
	if _, err := store.GetByID(context.Background(), id); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatal("result still present after delete")
	}
}

func TestResultDelete_ManualLeavesLedgerAlone(t *testing.T) {
	store := newMemResultStore()
	ledger := newMemLedger()
	svc := newResultService(store, ledger)
	scope := newTestScope()

	key := scope.key(7)
	limit := 5
	if _, err := ledger.TryReserve(context.Background(), key, &limit); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	id := store.seed(t, model.TestResult{
		UserID:    7,
		CourseID:  &scope.courseID,
		SubjectID: scope.subjectID,
		ChapterID: &scope.chapterID,
		TestType:  model.TestTypeManual,
		Score:     4,
		Total:     10,
	})

	if err := svc.Delete(context.Background(), id, 7); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got := ledger.count(key); got != 1 {
		t.Fatalf("ledger count = %d, want 1 (untouched)", got)
	}
}

func TestResultDelete_Ownership(t *testing.T) {
	store := newMemResultStore()
	svc := newResultService(store, newMemLedger())
	scope := newTestScope()

	id := store.seed(t, model.TestResult{
		UserID:    7,
		SubjectID: scope.subjectID,
		TestType:  model.TestTypeFree,
		Score:     4,
		Total:     10,
	})

	if err := svc.Delete(context.Background(), id, 8); !errors.Is(err, ErrNotResultOwner) {
		t.Fatalf("err = %v, want ErrNotResultOwner", err)
	}
	if _, err := store.GetByID(context.Background(), id); err != nil {
		t.Fatal("result deleted despite ownership violation")
	}
}

func TestResultList_Pagination(t *testing.T) {
	store := newMemResultStore()
	svc := newResultService(store, newMemLedger())
	scope := newTestScope()

	for i := 0; i < 5; i++ {
		store.seed(t, model.TestResult{
			UserID:    7,
			SubjectID: scope.subjectID,
			TestType:  model.TestTypeFree,
			Score:     i,
			Total:     10,
		})
	}
	store.seed(t, model.TestResult{
		UserID:    8,
		SubjectID: scope.subjectID,
		TestType:  model.TestTypeFree,
		Score:     1,
		Total:     10,
	})

	results, pagination, err := svc.List(context.Background(), 7, model.ResultFilter{}, 1, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("page holds %d results, want 2", len(results))
	}
	if pagination.TotalItems != 5 || pagination.TotalPages != 3 {
		t.Fatalf("pagination = %+v, want 5 items over 3 pages", pagination)
	}

	// Out-of-range page is clamped to valid defaults, not an error.
	results, pagination, err = svc.List(context.Background(), 7, model.ResultFilter{}, 0, -1)
	if err != nil {
		t.Fatalf("list with bad paging failed: %v", err)
	}
	if pagination.Page != 1 || pagination.PerPage != 20 {
		t.Fatalf("pagination = %+v, want clamped page=1 perPage=20", pagination)
	}
	if len(results) != 5 {
		t.Fatalf("listed %d results, want 5", len(results))
	}
}

func TestResultList_FilterByType(t *testing.T) {
	store := newMemResultStore()
	svc := newResultService(store, newMemLedger())
	scope := newTestScope()

	store.seed(t, model.TestResult{UserID: 7, SubjectID: scope.subjectID, TestType: model.TestTypeFree, Total: 10})
	store.seed(t, model.TestResult{UserID: 7, SubjectID: scope.subjectID, TestType: model.TestTypeManual, Total: 10})

	manual := model.TestTypeManual
	results, _, err := svc.List(context.Background(), 7, model.ResultFilter{TestType: &manual}, 1, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(results) != 1 || results[0].TestType != model.TestTypeManual {
		t.Fatalf("filtered results = %+v", results)
	}
}

func TestAddManualByAdmin(t *testing.T) {
	store := newMemResultStore()
	svc := newResultService(store, newMemLedger())
	scope := newTestScope()

	result, err := svc.AddManualByAdmin(context.Background(), model.AdminManualResultRequest{
		UserID:    42,
		CourseID:  scope.courseID,
		SubjectID: scope.subjectID,
		Score:     7,
		Total:     10,
	})
	if err != nil {
		t.Fatalf("admin manual entry failed: %v", err)
	}
	if result.UserID != 42 || result.TestType != model.TestTypeManual {
		t.Fatalf("stored result = %+v", result)
	}

	_, err = svc.AddManualByAdmin(context.Background(), model.AdminManualResultRequest{
		UserID:    42,
		CourseID:  scope.courseID,
		SubjectID: scope.subjectID,
		Score:     11,
		Total:     10,
	})
	if !errors.Is(err, ErrScoreExceedsTotal) {
		t.Fatalf("err = %v, want ErrScoreExceedsTotal", err)
	}
}
