package usecase

import (
	"log"

	"github.com/certwatch/backend/internal/domain"
)

// IngestService is the intake side of the pipeline: it tags raw crawl
// batches with the cheap keyword first pass and keeps the per-run duplicate
// heuristic. Fetching and parsing happen upstream; batches arrive here
// already materialized.
type IngestService struct {
	matcher            *KeywordMatcher
	catalog            *KeywordCatalog
	duplicateThreshold int
}

// NewIngestService creates the intake service
func NewIngestService(matcher *KeywordMatcher, catalog *KeywordCatalog, duplicateThreshold int) *IngestService {
	return &IngestService{
		matcher:            matcher,
		catalog:            catalog,
		duplicateThreshold: duplicateThreshold,
	}
}

// NewRun starts tracking one crawl run. The returned tracker must stay with
// that run only.
func (s *IngestService) NewRun() *DuplicateBatchTracker {
	return NewDuplicateBatchTracker(s.duplicateThreshold)
}

// BatchOutcome reports one ingested batch back to the crawl loop
type BatchOutcome struct {
	Tagged        []domain.TaggedRecord `json:"tagged"`
	RelevantCount int                   `json:"relevantCount"`
	ShouldStop    bool                  `json:"shouldStop"`
}

// ProcessBatch tags every record in a batch and records the batch against
// the run's duplicate tracker. savedCount is how many records the caller
// newly persisted from this batch. ShouldStop=true advises the caller to
// stop issuing pages for this run; in-flight batches may still be recorded.
func (s *IngestService) ProcessBatch(run *DuplicateBatchTracker, records []domain.CrawlRecord, savedCount int) BatchOutcome {
	outcome := BatchOutcome{Tagged: make([]domain.TaggedRecord, 0, len(records))}

	for _, rec := range records {
		tagged := s.Tag(rec)
		if tagged.Relevant {
			outcome.RelevantCount++
		}
		outcome.Tagged = append(outcome.Tagged, tagged)
	}

	outcome.ShouldStop = run.RecordBatch(len(records), savedCount)
	if outcome.ShouldStop {
		log.Printf("[INGEST] run caught up with stored data: %s", run.Summary())
	}
	return outcome
}

// Tag runs the keyword first pass over one record: matched categories in
// catalog order, overall relevance, and a high-risk flag for triage
func (s *IngestService) Tag(rec domain.CrawlRecord) domain.TaggedRecord {
	text := rec.Title + " " + rec.Content
	categories := s.matcher.MatchedCategories(text)
	matched := s.matcher.MatchedKeywords(text, s.catalog.Keywords(CategoryAll), domain.MatchModeContains)

	return domain.TaggedRecord{
		CrawlRecord:       rec,
		Relevant:          len(categories) > 0,
		MatchedCategories: categories,
		HighRisk:          s.catalog.ContainsHighRiskKeywords(matched),
	}
}
