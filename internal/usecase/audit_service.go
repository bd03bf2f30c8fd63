package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/certwatch/backend/internal/domain"
)

// DefaultAuditWorkers bounds concurrent classifier calls within one run
const DefaultAuditWorkers = 6

// AuditConfig holds configuration for the audit orchestrator
type AuditConfig struct {
	Workers    int
	ModuleType string
}

// AuditService runs the AI judgment pipeline over a batch of records and
// produces one SmartAuditResult per run
type AuditService struct {
	judge      *JudgeService
	pending    *PendingJudgmentService
	blacklist  domain.BlacklistRepository
	workers    int
	moduleType string
}

// NewAuditService creates the orchestrator
func NewAuditService(judge *JudgeService, pending *PendingJudgmentService, blacklist domain.BlacklistRepository, config AuditConfig) *AuditService {
	workers := config.Workers
	if workers <= 0 {
		workers = DefaultAuditWorkers
	}
	moduleType := config.ModuleType
	if moduleType == "" {
		moduleType = domain.ModuleDeviceData
	}
	return &AuditService{
		judge:      judge,
		pending:    pending,
		blacklist:  blacklist,
		workers:    workers,
		moduleType: moduleType,
	}
}

// auditOutcome is the per-record result gathered by the worker pool before
// sequential aggregation restores input order
type auditOutcome struct {
	rec              domain.Record
	desc             DeviceDescription
	result           domain.JudgeResult
	blacklistMatched bool
	matchedTerm      string
}

// RunAudit judges every record and aggregates the outcome. Blacklisted
// manufacturers are downgraded without an AI call; classifier failures are
// counted and skipped; everything else becomes an audit item plus a pending
// judgment. The run always completes and returns a report, even when every
// classification fails.
func (s *AuditService) RunAudit(ctx context.Context, records []domain.Record) *domain.SmartAuditResult {
	result := &domain.SmartAuditResult{StartTime: time.Now()}

	terms, err := s.blacklist.Terms(ctx)
	if err != nil {
		log.Printf("[AUDIT] blacklist unavailable, judging everything: %v", err)
		terms = nil
	}

	outcomes := make([]auditOutcome, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, rec := range records {
		g.Go(func() error {
			outcomes[i] = s.judgeOne(gctx, rec, terms)
			return nil
		})
	}
	// workers never return errors; failures live in the outcomes
	_ = g.Wait()

	// aggregate sequentially in input order for reproducible reports
	for _, outcome := range outcomes {
		s.aggregate(ctx, outcome, result)
	}

	result.EndTime = time.Now()
	result.Success = true
	result.Message = fmt.Sprintf("audited %d records: kept %d, downgraded %d, failed %d (blacklist %d, AI %d)",
		result.Total, result.KeptCount, result.DowngradedCount, result.FailedCount,
		result.BlacklistFiltered, result.AiJudged)

	log.Printf("[AUDIT] %s in %s", result.Message, result.Duration())
	return result
}

func (s *AuditService) judgeOne(ctx context.Context, rec domain.Record, blacklistTerms []string) auditOutcome {
	outcome := auditOutcome{rec: rec}

	strategy, err := s.judge.Strategy(rec.RecordType())
	if err != nil {
		outcome.result = domain.FailedJudgeResult(err.Error())
		return outcome
	}
	outcome.desc = strategy.BuildDescription(rec)

	// blacklist short-circuit: a known non-domain manufacturer settles the
	// verdict without spending a classifier call
	if term, ok := matchBlacklist(outcome.desc.Manufacturer, blacklistTerms); ok {
		outcome.blacklistMatched = true
		outcome.matchedTerm = term
		outcome.result = domain.JudgeResult{
			IsRelated:  false,
			Confidence: 1.0,
			Reason:     fmt.Sprintf("manufacturer matches blacklist term %q", term),
			DeviceName: outcome.desc.DeviceName,
		}
		return outcome
	}

	outcome.result = s.judge.Judge(ctx, rec)
	return outcome
}

func (s *AuditService) aggregate(ctx context.Context, outcome auditOutcome, result *domain.SmartAuditResult) {
	if outcome.result.Failed {
		// no verdict: leave the record untouched, create nothing
		result.IncrementFailed()
		return
	}

	item := domain.AuditItem{
		EntityID:                outcome.rec.RecordID(),
		EntityType:              outcome.rec.RecordType(),
		DeviceName:              outcome.desc.DeviceName,
		Manufacturer:            outcome.desc.Manufacturer,
		RelatedToSkinDevice:     outcome.result.IsRelated,
		Confidence:              outcome.result.Confidence,
		Reason:                  outcome.result.Reason,
		Category:                outcome.result.Category,
		BlacklistMatched:        outcome.blacklistMatched,
		MatchedBlacklistKeyword: outcome.matchedTerm,
		SuggestedBlacklist:      outcome.result.BlacklistKeywords,
	}

	var remark string
	if outcome.blacklistMatched {
		remark = fmt.Sprintf("[Blacklist filter]\nManufacturer %q matches blacklist term %q; downgraded to LOW risk without AI judgment.",
			outcome.desc.Manufacturer, outcome.matchedTerm)
	} else {
		remark = FormatRemark(outcome.result, outcome.rec.RecordType())
	}
	item.Remark = remark
	result.AddAuditItem(item)

	if outcome.blacklistMatched {
		result.IncrementBlacklistFiltered()
	} else if outcome.result.IsRelated {
		result.IncrementAiKept()
	} else {
		result.IncrementAiDowngraded()
	}

	_, err := s.pending.Create(ctx, CreateParams{
		ModuleType:          s.moduleType,
		EntityType:          outcome.rec.RecordType(),
		EntityID:            outcome.rec.RecordID(),
		JudgeResult:         outcome.result,
		SuggestedRisk:       SuggestedRisk(outcome.result),
		SuggestedRemark:     remark,
		BlacklistKeywords:   outcome.result.BlacklistKeywords,
		FilteredByBlacklist: outcome.blacklistMatched,
	})
	if err != nil {
		log.Printf("[AUDIT] failed to persist pending judgment for %s %d: %v",
			outcome.rec.RecordType(), outcome.rec.RecordID(), err)
	}
}

// matchBlacklist does a case-insensitive substring check of the manufacturer
// against every blacklist term
func matchBlacklist(manufacturer string, terms []string) (string, bool) {
	if manufacturer == "" {
		return "", false
	}
	lower := strings.ToLower(manufacturer)
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			return term, true
		}
	}
	return "", false
}
