package storage

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/certwatch/backend/internal/domain"
)

// BlacklistRepo stores known non-domain manufacturer terms
type BlacklistRepo struct {
	db *gorm.DB
}

// NewBlacklistRepo creates the repository
func NewBlacklistRepo(db *gorm.DB) *BlacklistRepo {
	return &BlacklistRepo{db: db}
}

// Terms returns every blacklist term
func (r *BlacklistRepo) Terms(ctx context.Context) ([]string, error) {
	var terms []string
	err := r.db.WithContext(ctx).
		Model(&domain.BlacklistTerm{}).
		Order("term").
		Pluck("term", &terms).Error
	return terms, err
}

// Add inserts a term, ignoring duplicates
func (r *BlacklistRepo) Add(ctx context.Context, term, source string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return domain.ErrInvalidRequest
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.BlacklistTerm{Term: term, Source: source}).Error
}
