package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/certwatch/backend/internal/domain"
)

// PendingJudgmentRepo is the gorm-backed pending-judgment store
type PendingJudgmentRepo struct {
	db *gorm.DB
}

// NewPendingJudgmentRepo creates the repository
func NewPendingJudgmentRepo(db *gorm.DB) *PendingJudgmentRepo {
	return &PendingJudgmentRepo{db: db}
}

// Create inserts a new judgment row
func (r *PendingJudgmentRepo) Create(ctx context.Context, judgment *domain.PendingJudgment) error {
	return r.db.WithContext(ctx).Create(judgment).Error
}

// GetByID loads one judgment
func (r *PendingJudgmentRepo) GetByID(ctx context.Context, id uint) (*domain.PendingJudgment, error) {
	var judgment domain.PendingJudgment
	err := r.db.WithContext(ctx).First(&judgment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrJudgmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &judgment, nil
}

// ListByModuleAndStatus lists judgments newest-first
func (r *PendingJudgmentRepo) ListByModuleAndStatus(ctx context.Context, moduleType, status string) ([]domain.PendingJudgment, error) {
	var rows []domain.PendingJudgment
	err := r.db.WithContext(ctx).
		Where("module_type = ? AND status = ?", moduleType, status).
		Order("created_time DESC").
		Find(&rows).Error
	return rows, err
}

// CountPendingByEntityType returns live pending counts per entity type.
// Chronologically expired rows are excluded even before cleanup marks them.
func (r *PendingJudgmentRepo) CountPendingByEntityType(ctx context.Context, moduleType string) (map[string]int64, error) {
	type row struct {
		EntityType string
		N          int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&domain.PendingJudgment{}).
		Select("entity_type, COUNT(*) AS n").
		Where("module_type = ? AND status = ? AND expire_time > ?", moduleType, domain.StatusPending, time.Now()).
		Group("entity_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.EntityType] = r.N
	}
	return counts, nil
}

// TransitionFromPending moves one row out of PENDING with a guarded update,
// so concurrent confirm/reject on the same record serialize and only the
// first wins. Expiry transitions record no actor.
func (r *PendingJudgmentRepo) TransitionFromPending(ctx context.Context, id uint, newStatus, actor string, at time.Time) error {
	updates := map[string]interface{}{"status": newStatus}
	if newStatus != domain.StatusExpired {
		updates["confirmed_time"] = at
		updates["confirmed_by"] = actor
	}

	res := r.db.WithContext(ctx).
		Model(&domain.PendingJudgment{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// distinguish a missing row from a lost race
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.PendingJudgment{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrJudgmentNotFound
		}
		return domain.ErrJudgmentNotPending
	}
	return nil
}

// ListExpiredPending finds PENDING rows whose review window closed before now
func (r *PendingJudgmentRepo) ListExpiredPending(ctx context.Context, now time.Time) ([]domain.PendingJudgment, error) {
	var rows []domain.PendingJudgment
	err := r.db.WithContext(ctx).
		Where("status = ? AND expire_time <= ?", domain.StatusPending, now).
		Find(&rows).Error
	return rows, err
}
