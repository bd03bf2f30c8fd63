package usecase

import (
	"fmt"
	"log"
)

// DefaultDuplicateThreshold is how many consecutive all-duplicate batches
// a crawl run tolerates before being told to stop
const DefaultDuplicateThreshold = 3

// DuplicateBatchTracker tells a crawl loop when it has caught up with
// previously stored data. One instance per crawl run; it is sequential,
// stateful, and must not be shared across concurrent runs.
//
// The stop signal is advisory: a transient empty page can trip it and
// duplicates interleaved with new items can defeat it. It bounds wasted
// work, nothing more.
type DuplicateBatchTracker struct {
	threshold               int
	consecutiveEmptyBatches int

	totalFetched int
	totalSaved   int
	totalSkipped int
}

// NewDuplicateBatchTracker creates a tracker for one crawl run. A
// non-positive threshold falls back to the default of 3.
func NewDuplicateBatchTracker(threshold int) *DuplicateBatchTracker {
	if threshold <= 0 {
		threshold = DefaultDuplicateThreshold
	}
	return &DuplicateBatchTracker{threshold: threshold}
}

// RecordBatch observes one completed batch and reports whether the run
// should stop issuing further pages. savedCount==0 with a non-empty batch
// bumps the consecutive-empty counter; any saved record resets it; an empty
// batch is a probe and changes nothing. Cumulative totals always accumulate.
func (t *DuplicateBatchTracker) RecordBatch(batchSize, savedCount int) bool {
	if batchSize < 0 || savedCount < 0 || savedCount > batchSize {
		panic(fmt.Sprintf("invalid batch stat: batchSize=%d savedCount=%d", batchSize, savedCount))
	}

	t.totalFetched += batchSize
	t.totalSaved += savedCount
	t.totalSkipped += batchSize - savedCount

	if savedCount == 0 && batchSize > 0 {
		t.consecutiveEmptyBatches++
		log.Printf("[CRAWL] batch: fetched=%d saved=0 skipped=%d | consecutive empty %d/%d",
			batchSize, batchSize, t.consecutiveEmptyBatches, t.threshold)
		if t.consecutiveEmptyBatches >= t.threshold {
			log.Printf("[CRAWL] %d consecutive duplicate batches, advising stop", t.consecutiveEmptyBatches)
			return true
		}
	} else if savedCount > 0 {
		t.consecutiveEmptyBatches = 0
		log.Printf("[CRAWL] batch: fetched=%d saved=%d skipped=%d | counter reset",
			batchSize, savedCount, batchSize-savedCount)
	}

	return false
}

// RecordBatchSimple is a convenience form for callers that only know whether
// a batch contributed anything new. The exact saved count is unknown, so
// totals only accumulate for all-duplicate batches.
func (t *DuplicateBatchTracker) RecordBatchSimple(hasNewData bool, dataCount int) bool {
	if hasNewData {
		t.consecutiveEmptyBatches = 0
		log.Printf("[CRAWL] batch has new data | counter reset")
		return false
	}
	return t.RecordBatch(dataCount, 0)
}

// ShouldStop reports the current advisory verdict without recording a batch
func (t *DuplicateBatchTracker) ShouldStop() bool {
	return t.consecutiveEmptyBatches >= t.threshold
}

// Reset clears the consecutive-empty counter, keeping cumulative totals
func (t *DuplicateBatchTracker) Reset() {
	t.consecutiveEmptyBatches = 0
}

// Totals returns the cumulative fetched/saved/skipped counts for the run
func (t *DuplicateBatchTracker) Totals() (fetched, saved, skipped int) {
	return t.totalFetched, t.totalSaved, t.totalSkipped
}

// Summary renders a one-line run summary for logs
func (t *DuplicateBatchTracker) Summary() string {
	return fmt.Sprintf("fetched %d, saved %d, skipped %d, consecutive empty %d",
		t.totalFetched, t.totalSaved, t.totalSkipped, t.consecutiveEmptyBatches)
}
