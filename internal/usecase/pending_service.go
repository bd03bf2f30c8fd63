package usecase

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/certwatch/backend/internal/domain"
)

// PendingJudgmentService manages the reviewable, expiring judgment queue
type PendingJudgmentService struct {
	repo domain.PendingJudgmentRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewPendingJudgmentService creates the service. A non-positive ttl falls
// back to the 30-day default.
func NewPendingJudgmentService(repo domain.PendingJudgmentRepository, ttl time.Duration) *PendingJudgmentService {
	if ttl <= 0 {
		ttl = domain.DefaultJudgmentTTL
	}
	return &PendingJudgmentService{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

// CreateParams carries everything needed to persist one pending judgment
type CreateParams struct {
	ModuleType          string
	EntityType          string
	EntityID            int64
	JudgeResult         domain.JudgeResult
	SuggestedRisk       domain.RiskLevel
	SuggestedRemark     string
	BlacklistKeywords   []string
	FilteredByBlacklist bool
}

// Create persists a new PENDING judgment. ExpireTime is set to
// creation + TTL when not supplied.
func (s *PendingJudgmentService) Create(ctx context.Context, params CreateParams) (*domain.PendingJudgment, error) {
	resultJSON, err := json.Marshal(params.JudgeResult)
	if err != nil {
		return nil, err
	}
	keywordsJSON, err := json.Marshal(params.BlacklistKeywords)
	if err != nil {
		return nil, err
	}

	now := s.now()
	judgment := &domain.PendingJudgment{
		ModuleType:          params.ModuleType,
		EntityType:          params.EntityType,
		EntityID:            params.EntityID,
		JudgeResult:         string(resultJSON),
		SuggestedRiskLevel:  params.SuggestedRisk,
		SuggestedRemark:     params.SuggestedRemark,
		BlacklistKeywords:   string(keywordsJSON),
		FilteredByBlacklist: params.FilteredByBlacklist,
		Status:              domain.StatusPending,
		CreatedTime:         now,
		ExpireTime:          now.Add(s.ttl),
	}

	if err := s.repo.Create(ctx, judgment); err != nil {
		return nil, err
	}
	return judgment, nil
}

// Confirm accepts a pending judgment. Fails with ErrJudgmentNotPending when
// the record already left PENDING; the loser of a concurrent race sees the
// conflict, not a partial write.
func (s *PendingJudgmentService) Confirm(ctx context.Context, id uint, confirmedBy string) error {
	if confirmedBy == "" {
		confirmedBy = "SYSTEM"
	}
	if err := s.repo.TransitionFromPending(ctx, id, domain.StatusConfirmed, confirmedBy, s.now()); err != nil {
		return err
	}
	log.Printf("[PENDING] judgment confirmed: id=%d by=%s", id, confirmedBy)
	return nil
}

// Reject declines a pending judgment under the same conflict rules as Confirm
func (s *PendingJudgmentService) Reject(ctx context.Context, id uint, rejectedBy string) error {
	if rejectedBy == "" {
		rejectedBy = "SYSTEM"
	}
	if err := s.repo.TransitionFromPending(ctx, id, domain.StatusRejected, rejectedBy, s.now()); err != nil {
		return err
	}
	log.Printf("[PENDING] judgment rejected: id=%d by=%s", id, rejectedBy)
	return nil
}

// BatchConfirmResult summarizes a batch confirm call
type BatchConfirmResult struct {
	Total        int      `json:"total"`
	SuccessCount int      `json:"successCount"`
	FailedCount  int      `json:"failedCount"`
	Errors       []string `json:"errors,omitempty"`
}

// BatchConfirm confirms many judgments; one conflict does not stop the rest
func (s *PendingJudgmentService) BatchConfirm(ctx context.Context, ids []uint, confirmedBy string) BatchConfirmResult {
	result := BatchConfirmResult{Total: len(ids)}
	for _, id := range ids {
		if err := s.Confirm(ctx, id, confirmedBy); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.SuccessCount++
	}
	return result
}

// Get returns one judgment by id
func (s *PendingJudgmentService) Get(ctx context.Context, id uint) (*domain.PendingJudgment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPending returns judgments that are still genuinely pending. Rows that
// are chronologically expired but not yet swept by the cleanup job are
// filtered out here.
func (s *PendingJudgmentService) ListPending(ctx context.Context, moduleType string) ([]domain.PendingJudgment, error) {
	rows, err := s.repo.ListByModuleAndStatus(ctx, moduleType, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	now := s.now()
	pending := rows[:0]
	for _, row := range rows {
		if row.IsPendingAt(now) {
			pending = append(pending, row)
		}
	}
	return pending, nil
}

// PendingCountByEntityType returns pending counts keyed by entity-type tag
func (s *PendingJudgmentService) PendingCountByEntityType(ctx context.Context, moduleType string) (map[string]int64, error) {
	return s.repo.CountPendingByEntityType(ctx, moduleType)
}

// SuggestedBlacklistTerms aggregates the distinct blacklist keywords proposed
// by pending judgments of one module
func (s *PendingJudgmentService) SuggestedBlacklistTerms(ctx context.Context, moduleType string) ([]string, error) {
	rows, err := s.ListPending(ctx, moduleType)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var terms []string
	for _, row := range rows {
		if row.BlacklistKeywords == "" {
			continue
		}
		var keywords []string
		if err := json.Unmarshal([]byte(row.BlacklistKeywords), &keywords); err != nil {
			log.Printf("[PENDING] bad blacklist keywords on judgment %d: %v", row.ID, err)
			continue
		}
		for _, kw := range keywords {
			if !seen[kw] {
				seen[kw] = true
				terms = append(terms, kw)
			}
		}
	}
	return terms, nil
}

// CleanupExpired sweeps PENDING rows whose expire time has passed into
// EXPIRED and returns how many it transitioned. Idempotent: a second run
// over the same set finds nothing.
func (s *PendingJudgmentService) CleanupExpired(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.repo.ListExpiredPending(ctx, now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, row := range expired {
		if err := s.repo.TransitionFromPending(ctx, row.ID, domain.StatusExpired, "", now); err != nil {
			// raced with a confirm/reject; the record found its own way out
			log.Printf("[PENDING] skip expiring judgment %d: %v", row.ID, err)
			continue
		}
		count++
	}
	if count > 0 {
		log.Printf("[PENDING] cleanup expired %d judgments", count)
	}
	return count, nil
}
