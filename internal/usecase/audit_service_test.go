package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/certwatch/backend/internal/domain"
)

// routingClassifier answers per device name, failing the ones it is told to
type routingClassifier struct {
	mu        sync.Mutex
	related   map[string]bool
	failNames map[string]bool
	calls     []string
}

func (c *routingClassifier) Classify(ctx context.Context, req domain.ClassifyRequest) (*domain.ClassifyResponse, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req.DeviceName)
	c.mu.Unlock()

	if c.failNames[req.DeviceName] {
		return nil, errors.New("classifier unavailable")
	}
	return &domain.ClassifyResponse{
		IsRelated:  c.related[req.DeviceName],
		Confidence: 0.9,
		Reason:     "test verdict for " + req.DeviceName,
	}, nil
}

// memPendingRepo is the minimal in-memory pending store for audit tests
type memPendingRepo struct {
	mu   sync.Mutex
	rows []*domain.PendingJudgment
}

func (m *memPendingRepo) Create(ctx context.Context, judgment *domain.PendingJudgment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	judgment.ID = uint(len(m.rows) + 1)
	copied := *judgment
	m.rows = append(m.rows, &copied)
	return nil
}

func (m *memPendingRepo) GetByID(ctx context.Context, id uint) (*domain.PendingJudgment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, domain.ErrJudgmentNotFound
}

func (m *memPendingRepo) ListByModuleAndStatus(ctx context.Context, moduleType, status string) ([]domain.PendingJudgment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PendingJudgment
	for _, row := range m.rows {
		if row.ModuleType == moduleType && row.Status == status {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memPendingRepo) CountPendingByEntityType(ctx context.Context, moduleType string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	now := time.Now()
	for _, row := range m.rows {
		if row.ModuleType == moduleType && row.IsPendingAt(now) {
			counts[row.EntityType]++
		}
	}
	return counts, nil
}

func (m *memPendingRepo) TransitionFromPending(ctx context.Context, id uint, newStatus, actor string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ID == id {
			if row.Status != domain.StatusPending {
				return domain.ErrJudgmentNotPending
			}
			row.Status = newStatus
			return nil
		}
	}
	return domain.ErrJudgmentNotFound
}

func (m *memPendingRepo) ListExpiredPending(ctx context.Context, now time.Time) ([]domain.PendingJudgment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PendingJudgment
	for _, row := range m.rows {
		if row.Status == domain.StatusPending && !row.ExpireTime.After(now) {
			out = append(out, *row)
		}
	}
	return out, nil
}

// memBlacklist is a fixed-term blacklist for audit tests
type memBlacklist struct {
	terms []string
	err   error
}

func (m *memBlacklist) Terms(ctx context.Context) ([]string, error) { return m.terms, m.err }
func (m *memBlacklist) Add(ctx context.Context, term, source string) error {
	m.terms = append(m.terms, term)
	return nil
}

func auditFixture(classifier domain.Classifier, blacklist domain.BlacklistRepository) (*AuditService, *memPendingRepo) {
	repo := &memPendingRepo{}
	pending := NewPendingJudgmentService(repo, 0)
	judge := NewJudgeService(classifier)
	audit := NewAuditService(judge, pending, blacklist, AuditConfig{Workers: 3})
	return audit, repo
}

func recallRecords(names ...string) []domain.Record {
	out := make([]domain.Record, len(names))
	for i, name := range names {
		out[i] = &domain.DeviceRecall{ID: int64(i + 1), DeviceName: name, RecallingFirm: name + " Labs"}
	}
	return out
}

func TestRunAudit(t *testing.T) {
	t.Run("counter invariants hold over a mixed batch", func(t *testing.T) {
		classifier := &routingClassifier{
			related:   map[string]bool{"Skin Analyzer": true, "Derm Scanner": true},
			failNames: map[string]bool{"Broken Device": true},
		}
		audit, repo := auditFixture(classifier, &memBlacklist{})

		records := recallRecords("Skin Analyzer", "Derm Scanner", "BP Monitor", "Broken Device")
		result := audit.RunAudit(context.Background(), records)

		if result.Total != 4 {
			t.Errorf("Total = %d, want 4", result.Total)
		}
		if result.Total != result.KeptCount+result.DowngradedCount+result.FailedCount {
			t.Errorf("invariant broken: total=%d kept=%d downgraded=%d failed=%d",
				result.Total, result.KeptCount, result.DowngradedCount, result.FailedCount)
		}
		if result.AiJudged != result.AiKept+result.AiDowngraded {
			t.Errorf("invariant broken: aiJudged=%d aiKept=%d aiDowngraded=%d",
				result.AiJudged, result.AiKept, result.AiDowngraded)
		}
		if result.KeptCount != 2 || result.DowngradedCount != 1 || result.FailedCount != 1 {
			t.Errorf("kept=%d downgraded=%d failed=%d, want 2/1/1",
				result.KeptCount, result.DowngradedCount, result.FailedCount)
		}
		if !result.Success {
			t.Error("Success = false, want true even with failures in the batch")
		}

		// failed records leave no pending judgment behind
		if len(repo.rows) != 3 {
			t.Errorf("pending judgments = %d, want 3", len(repo.rows))
		}
	})

	t.Run("blacklisted manufacturer skips the classifier", func(t *testing.T) {
		classifier := &routingClassifier{related: map[string]bool{"Skin Analyzer": true}}
		blacklist := &memBlacklist{terms: []string{"BP Monitor Labs"}}
		audit, repo := auditFixture(classifier, blacklist)

		records := recallRecords("Skin Analyzer", "BP Monitor")
		result := audit.RunAudit(context.Background(), records)

		if result.BlacklistFiltered != 1 {
			t.Errorf("BlacklistFiltered = %d, want 1", result.BlacklistFiltered)
		}
		if result.AiJudged != 1 {
			t.Errorf("AiJudged = %d, want 1 (blacklist hit must not count as AI judged)", result.AiJudged)
		}
		if result.DowngradedCount != 1 {
			t.Errorf("DowngradedCount = %d, want 1", result.DowngradedCount)
		}

		for _, name := range classifier.calls {
			if name == "BP Monitor" {
				t.Error("classifier was called for a blacklisted manufacturer")
			}
		}

		// the short-circuit still produces a reviewable judgment
		var filtered *domain.PendingJudgment
		for _, row := range repo.rows {
			if row.FilteredByBlacklist {
				filtered = row
			}
		}
		if filtered == nil {
			t.Fatal("expected a pending judgment flagged FilteredByBlacklist")
		}
		if !strings.Contains(filtered.SuggestedRemark, "Blacklist filter") {
			t.Errorf("SuggestedRemark = %q, want blacklist block", filtered.SuggestedRemark)
		}
	})

	t.Run("audit items come back in input order", func(t *testing.T) {
		classifier := &routingClassifier{related: map[string]bool{}}
		audit, _ := auditFixture(classifier, &memBlacklist{})

		names := []string{"A", "B1", "C22", "D333", "E4444", "F55555"}
		result := audit.RunAudit(context.Background(), recallRecords(names...))

		if len(result.AuditItems) != len(names) {
			t.Fatalf("AuditItems = %d, want %d", len(result.AuditItems), len(names))
		}
		for i, item := range result.AuditItems {
			if item.EntityID != int64(i+1) {
				t.Errorf("item %d has EntityID %d, want %d", i, item.EntityID, i+1)
			}
		}
	})

	t.Run("blacklist outage degrades to judging everything", func(t *testing.T) {
		classifier := &routingClassifier{related: map[string]bool{"Skin Analyzer": true}}
		blacklist := &memBlacklist{err: errors.New("db down")}
		audit, _ := auditFixture(classifier, blacklist)

		result := audit.RunAudit(context.Background(), recallRecords("Skin Analyzer"))
		if result.AiJudged != 1 || result.BlacklistFiltered != 0 {
			t.Errorf("aiJudged=%d blacklistFiltered=%d, want 1/0", result.AiJudged, result.BlacklistFiltered)
		}
		if !result.Success {
			t.Error("Success = false, want true despite blacklist outage")
		}
	})

	t.Run("every classification failing still completes the run", func(t *testing.T) {
		classifier := &routingClassifier{failNames: map[string]bool{"X": true, "Y": true}}
		audit, repo := auditFixture(classifier, &memBlacklist{})

		result := audit.RunAudit(context.Background(), recallRecords("X", "Y"))
		if result.FailedCount != 2 || result.Total != 2 {
			t.Errorf("failed=%d total=%d, want 2/2", result.FailedCount, result.Total)
		}
		if !result.Success {
			t.Error("Success = false, want true: the run completed")
		}
		if len(repo.rows) != 0 {
			t.Errorf("pending judgments = %d, want 0 for an all-failed run", len(repo.rows))
		}
	})

	t.Run("empty batch yields an empty successful report", func(t *testing.T) {
		audit, _ := auditFixture(&routingClassifier{}, &memBlacklist{})
		result := audit.RunAudit(context.Background(), nil)
		if result.Total != 0 || !result.Success {
			t.Errorf("total=%d success=%v, want 0/true", result.Total, result.Success)
		}
	})
}
