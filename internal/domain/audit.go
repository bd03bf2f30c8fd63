package domain

import "time"

// AuditItem is one judged record inside a smart audit run
type AuditItem struct {
	EntityID     int64  `json:"entityId"`
	EntityType   string `json:"entityType"`
	DeviceName   string `json:"deviceName"`
	Manufacturer string `json:"manufacturer"`

	RelatedToSkinDevice bool    `json:"relatedToSkinDevice"`
	Confidence          float64 `json:"confidence"`
	Reason              string  `json:"reason"`
	Category            string  `json:"category,omitempty"`

	BlacklistMatched        bool     `json:"blacklistMatched"`
	MatchedBlacklistKeyword string   `json:"matchedBlacklistKeyword,omitempty"`
	SuggestedBlacklist      []string `json:"suggestedBlacklist,omitempty"`

	Remark string `json:"remark"`
}

// SmartAuditResult aggregates one audit run. Counter invariants:
//
//	Total == KeptCount + DowngradedCount + FailedCount
//	AiKept + AiDowngraded == AiJudged <= Total
type SmartAuditResult struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`

	Total           int `json:"total"`
	KeptCount       int `json:"keptCount"`
	DowngradedCount int `json:"downgradedCount"`
	FailedCount     int `json:"failedCount"`

	BlacklistFiltered int `json:"blacklistFiltered"`
	AiJudged          int `json:"aiJudged"`
	AiKept            int `json:"aiKept"`
	AiDowngraded      int `json:"aiDowngraded"`

	AuditItems []AuditItem `json:"auditItems"`
}

// AddAuditItem records one processed entity and bumps the run total
func (r *SmartAuditResult) AddAuditItem(item AuditItem) {
	r.AuditItems = append(r.AuditItems, item)
	r.Total++
}

// IncrementFailed counts a record whose classification failed. Failed records
// produce no audit item and no pending judgment, but still count toward Total.
func (r *SmartAuditResult) IncrementFailed() {
	r.FailedCount++
	r.Total++
}

// IncrementBlacklistFiltered counts a record short-circuited by the blacklist.
// Blacklist-filtered records are downgraded without an AI call.
func (r *SmartAuditResult) IncrementBlacklistFiltered() {
	r.BlacklistFiltered++
	r.DowngradedCount++
}

// IncrementAiKept counts an AI verdict that keeps the record high risk
func (r *SmartAuditResult) IncrementAiKept() {
	r.AiKept++
	r.KeptCount++
	r.AiJudged++
}

// IncrementAiDowngraded counts an AI verdict that downgrades the record
func (r *SmartAuditResult) IncrementAiDowngraded() {
	r.AiDowngraded++
	r.DowngradedCount++
	r.AiJudged++
}

// Duration is the wall time of the run
func (r *SmartAuditResult) Duration() time.Duration {
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
