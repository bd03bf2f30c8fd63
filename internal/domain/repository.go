package domain

import (
	"context"
	"time"
)

// Classifier defines the interface for the external AI classification service
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error)
}

// PendingJudgmentRepository defines persistence for the pending-judgment
// state machine. TransitionFromPending must be atomic per record: when the
// row is not PENDING it returns ErrJudgmentNotPending without mutating it,
// so of two concurrent confirm/reject calls only the first wins.
type PendingJudgmentRepository interface {
	Create(ctx context.Context, judgment *PendingJudgment) error
	GetByID(ctx context.Context, id uint) (*PendingJudgment, error)
	ListByModuleAndStatus(ctx context.Context, moduleType, status string) ([]PendingJudgment, error)
	CountPendingByEntityType(ctx context.Context, moduleType string) (map[string]int64, error)
	TransitionFromPending(ctx context.Context, id uint, newStatus, actor string, at time.Time) error
	ListExpiredPending(ctx context.Context, now time.Time) ([]PendingJudgment, error)
}

// BlacklistRepository stores known non-domain manufacturer terms
type BlacklistRepository interface {
	Terms(ctx context.Context) ([]string, error)
	Add(ctx context.Context, term, source string) error
}
