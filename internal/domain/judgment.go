package domain

import "time"

// RiskLevel is the risk label attached to a harvested record
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// Module types partition pending judgments by the ingest pipeline that produced them
const (
	ModuleDeviceData = "DEVICE_DATA"
	ModuleCertNews   = "CERT_NEWS"
)

// JudgeResult is the verdict produced by the AI classifier for one record.
// A failed call is represented by the sentinel form (IsRelated=false,
// Confidence=0, Reason carries the cause) rather than an error: callers must
// treat it as "no verdict, leave the record unchanged".
type JudgeResult struct {
	IsRelated         bool     `json:"isRelated"`
	Confidence        float64  `json:"confidence"`
	Reason            string   `json:"reason"`
	Category          string   `json:"category,omitempty"`
	BlacklistKeywords []string `json:"blacklistKeywords,omitempty"`
	DeviceName        string   `json:"deviceName,omitempty"`
	Failed            bool     `json:"failed,omitempty"`
}

// FailedJudgeResult builds the degraded-but-valid sentinel for a classifier failure
func FailedJudgeResult(reason string) JudgeResult {
	return JudgeResult{
		IsRelated:  false,
		Confidence: 0.0,
		Reason:     reason,
		Failed:     true,
	}
}

// Pending judgment lifecycle states. Transitions only leave PENDING.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusRejected  = "REJECTED"
	StatusExpired   = "EXPIRED"
)

// DefaultJudgmentTTL is how long a pending judgment waits for human review
const DefaultJudgmentTTL = 30 * 24 * time.Hour

// PendingJudgment holds a machine classification awaiting human confirmation.
// Identity within a module is (ModuleType, EntityType, EntityID).
type PendingJudgment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ModuleType string `gorm:"size:50;index;not null" json:"moduleType"`
	EntityType string `gorm:"size:50;index;not null" json:"entityType"`
	EntityID   int64  `gorm:"index;not null" json:"entityId"`

	// Serialized JudgeResult, kept as JSON so the review UI can render it verbatim
	JudgeResult string `gorm:"type:text" json:"judgeResult"`

	SuggestedRiskLevel RiskLevel `gorm:"size:20" json:"suggestedRiskLevel"`
	SuggestedRemark    string    `gorm:"type:text" json:"suggestedRemark"`

	// JSON array of manufacturer-like terms proposed for the blacklist
	BlacklistKeywords   string `gorm:"type:text" json:"blacklistKeywords"`
	FilteredByBlacklist bool   `json:"filteredByBlacklist"`

	Status        string     `gorm:"size:20;index;default:PENDING" json:"status"`
	CreatedTime   time.Time  `gorm:"index" json:"createdTime"`
	ExpireTime    time.Time  `json:"expireTime"`
	ConfirmedTime *time.Time `json:"confirmedTime,omitempty"`
	ConfirmedBy   string     `gorm:"size:100" json:"confirmedBy,omitempty"`
}

// TableName pins the table name used by the review UI schema
func (PendingJudgment) TableName() string {
	return "pending_judgments"
}

// IsExpiredAt reports whether the judgment's review window has closed at t
func (p *PendingJudgment) IsExpiredAt(t time.Time) bool {
	if p.ExpireTime.IsZero() {
		return false
	}
	return t.After(p.ExpireTime)
}

// IsExpired reports whether the review window has closed now
func (p *PendingJudgment) IsExpired() bool {
	return p.IsExpiredAt(time.Now())
}

// IsPendingAt reports whether the judgment is still awaiting review at t.
// A chronologically expired row still flagged PENDING is not pending, even
// before the cleanup job marks it EXPIRED.
func (p *PendingJudgment) IsPendingAt(t time.Time) bool {
	return p.Status == StatusPending && !p.IsExpiredAt(t)
}

// IsPending reports whether the judgment is still awaiting review now
func (p *PendingJudgment) IsPending() bool {
	return p.IsPendingAt(time.Now())
}

// ClassifyRequest is the wire request sent to the external classifier
type ClassifyRequest struct {
	DeviceName   string `json:"deviceName"`
	Manufacturer string `json:"manufacturer"`
	Description  string `json:"description"`
	EntityType   string `json:"entityType"`
}

// ClassifyResponse is the classifier's verdict for one record
type ClassifyResponse struct {
	IsRelated  bool    `json:"isRelated"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	Category   string  `json:"category,omitempty"`
}

// BlacklistTerm is a known non-domain manufacturer name. Records whose
// manufacturer matches a term skip the AI call entirely.
type BlacklistTerm struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Term      string    `gorm:"size:200;uniqueIndex;not null" json:"term"`
	Source    string    `gorm:"size:50" json:"source"` // "manual" or "audit"
	CreatedAt time.Time `json:"createdAt"`
}

// TableName pins the table name
func (BlacklistTerm) TableName() string {
	return "blacklist_terms"
}
