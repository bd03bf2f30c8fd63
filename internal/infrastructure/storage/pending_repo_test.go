package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/certwatch/backend/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	return db
}

func seedJudgment(t *testing.T, repo *PendingJudgmentRepo, entityID int64, expire time.Time) *domain.PendingJudgment {
	t.Helper()
	judgment := &domain.PendingJudgment{
		ModuleType:  domain.ModuleDeviceData,
		EntityType:  domain.EntityRecall,
		EntityID:    entityID,
		Status:      domain.StatusPending,
		CreatedTime: time.Now(),
		ExpireTime:  expire,
	}
	require.NoError(t, repo.Create(context.Background(), judgment))
	return judgment
}

func TestPendingJudgmentRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get round-trip", func(t *testing.T) {
		repo := NewPendingJudgmentRepo(testDB(t))
		created := seedJudgment(t, repo, 1, time.Now().Add(24*time.Hour))

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.EntityID, got.EntityID)
		assert.Equal(t, domain.StatusPending, got.Status)
	})

	t.Run("missing id yields not found", func(t *testing.T) {
		repo := NewPendingJudgmentRepo(testDB(t))
		_, err := repo.GetByID(ctx, 12345)
		assert.ErrorIs(t, err, domain.ErrJudgmentNotFound)
	})

	t.Run("list filters by module and status", func(t *testing.T) {
		repo := NewPendingJudgmentRepo(testDB(t))
		seedJudgment(t, repo, 1, time.Now().Add(24*time.Hour))
		second := seedJudgment(t, repo, 2, time.Now().Add(24*time.Hour))
		require.NoError(t, repo.TransitionFromPending(ctx, second.ID, domain.StatusConfirmed, "a", time.Now()))

		rows, err := repo.ListByModuleAndStatus(ctx, domain.ModuleDeviceData, domain.StatusPending)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, int64(1), rows[0].EntityID)
	})

	t.Run("pending counts exclude chronologically expired rows", func(t *testing.T) {
		repo := NewPendingJudgmentRepo(testDB(t))
		seedJudgment(t, repo, 1, time.Now().Add(24*time.Hour))
		seedJudgment(t, repo, 2, time.Now().Add(-time.Hour)) // past its window, not yet swept

		counts, err := repo.CountPendingByEntityType(ctx, domain.ModuleDeviceData)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[domain.EntityRecall])
	})
}

func TestTransitionFromPending(t *testing.T) {
	ctx := context.Background()

	t.Run("confirm records actor and time", func(t *testing.T) {
		repo := NewPendingJudgmentRepo(testDB(t))
		judgment := seedJudgment(t, repo, 1, time.Now().Add(24*time.Hour))

		at := time.Now()
		require.NoError(t, repo.TransitionFromPending(ctx, judgment.ID, domain.StatusConfirmed, "reviewer1", at))

		got, err := repo.GetByID(ctx, judgment.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, got.Status)
		assert.Equal(t, "reviewer1", got.ConfirmedBy)
		require.NotNil(t, got.ConfirmedTime)
	})

	t.Run("second transition loses with a conflict", func(t *testing.T) {
		repo := NewPendingJudgmentRepo(testDB(t))
		judgment := seedJudgment(t, repo, 1, time.Now().Add(24*time.Hour))

		require.NoError(t, repo.TransitionFromPending(ctx, judgment.ID, domain.StatusConfirmed, "a", time.Now()))
		err := repo.TransitionFromPending(ctx, judgment.ID, domain.StatusRejected, "b", time.Now())
		assert.ErrorIs(t, err, domain.ErrJudgmentNotPending)

		// the winner's state survives
		got, _ := repo.GetByID(ctx, judgment.ID)
		assert.Equal(t, domain.StatusConfirmed, got.Status)
		assert.Equal(t, "a", got.ConfirmedBy)
	})

	t.Run("missing row yields not found", func(t *testing.T) {
		repo := NewPendingJudgmentRepo(testDB(t))
		err := repo.TransitionFromPending(ctx, 999, domain.StatusConfirmed, "a", time.Now())
		assert.ErrorIs(t, err, domain.ErrJudgmentNotFound)
	})

	t.Run("expiry transition records no actor", func(t *testing.T) {
		repo := NewPendingJudgmentRepo(testDB(t))
		judgment := seedJudgment(t, repo, 1, time.Now().Add(-time.Hour))

		require.NoError(t, repo.TransitionFromPending(ctx, judgment.ID, domain.StatusExpired, "", time.Now()))
		got, err := repo.GetByID(ctx, judgment.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusExpired, got.Status)
		assert.Empty(t, got.ConfirmedBy)
		assert.Nil(t, got.ConfirmedTime)
	})
}

func TestListExpiredPending(t *testing.T) {
	ctx := context.Background()
	repo := NewPendingJudgmentRepo(testDB(t))

	seedJudgment(t, repo, 1, time.Now().Add(-time.Hour))
	seedJudgment(t, repo, 2, time.Now().Add(24*time.Hour))
	confirmed := seedJudgment(t, repo, 3, time.Now().Add(-time.Hour))
	require.NoError(t, repo.TransitionFromPending(ctx, confirmed.ID, domain.StatusConfirmed, "a", time.Now()))

	rows, err := repo.ListExpiredPending(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].EntityID)
}

func TestBlacklistRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("add and list terms", func(t *testing.T) {
		repo := NewBlacklistRepo(testDB(t))
		require.NoError(t, repo.Add(ctx, "CardioCorp", "audit"))
		require.NoError(t, repo.Add(ctx, "OrthoMed", "manual"))

		terms, err := repo.Terms(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"CardioCorp", "OrthoMed"}, terms)
	})

	t.Run("duplicate terms are ignored", func(t *testing.T) {
		repo := NewBlacklistRepo(testDB(t))
		require.NoError(t, repo.Add(ctx, "CardioCorp", "audit"))
		require.NoError(t, repo.Add(ctx, "CardioCorp", "manual"))

		terms, err := repo.Terms(ctx)
		require.NoError(t, err)
		assert.Len(t, terms, 1)
	})

	t.Run("blank term is rejected", func(t *testing.T) {
		repo := NewBlacklistRepo(testDB(t))
		err := repo.Add(ctx, "   ", "manual")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}
