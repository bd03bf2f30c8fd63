package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/certwatch/backend/internal/domain"
)

// descriptionCap bounds the free-form description sent to the classifier
const descriptionCap = 500

// DeviceDescription is the uniform, lossy projection of an entity that the
// classifier sees
type DeviceDescription struct {
	DeviceName   string
	Manufacturer string
	Text         string
	EntityType   string
}

// JudgeStrategy is the per-entity-type extension point. Implementations read
// and write their concrete record's named fields directly; there is no
// reflection anywhere in the dispatch.
type JudgeStrategy interface {
	EntityType() string

	// BuildDescription projects entity-specific fields into the uniform shape
	BuildDescription(rec domain.Record) DeviceDescription

	// BlacklistCandidates extracts manufacturer-like terms that could be
	// blacklisted if the record turns out to be unrelated
	BlacklistCandidates(rec domain.Record) []string

	// ApplyVerdict maps the verdict onto the record's risk level and appends
	// a remark block. It must never be called with a failed result.
	ApplyVerdict(rec domain.Record, result domain.JudgeResult)
}

// JudgeService runs the shared judging routine over the strategy registry
type JudgeService struct {
	classifier domain.Classifier
	strategies map[string]JudgeStrategy
	order      []string
}

// NewJudgeService creates the service with the full default strategy set
func NewJudgeService(classifier domain.Classifier) *JudgeService {
	s := &JudgeService{
		classifier: classifier,
		strategies: make(map[string]JudgeStrategy),
	}
	s.Register(&filingStrategy{})
	s.Register(&registrationStrategy{})
	s.Register(&recallStrategy{})
	s.Register(&eventStrategy{})
	s.Register(&customsStrategy{})
	s.Register(&guidanceStrategy{})
	return s
}

// Register adds or replaces the strategy for its entity type
func (s *JudgeService) Register(strategy JudgeStrategy) {
	tag := strategy.EntityType()
	if _, exists := s.strategies[tag]; !exists {
		s.order = append(s.order, tag)
	}
	s.strategies[tag] = strategy
}

// Strategy resolves the strategy for an entity-type tag
func (s *JudgeService) Strategy(entityType string) (JudgeStrategy, error) {
	strategy, ok := s.strategies[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEntityType, entityType)
	}
	return strategy, nil
}

// SupportedEntityTypes lists registered entity-type tags in registration order
func (s *JudgeService) SupportedEntityTypes() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Judge classifies one record. Any failure (unknown type, network error,
// malformed response) yields the failed sentinel, never an error: one
// record's failure must not abort a batch.
func (s *JudgeService) Judge(ctx context.Context, rec domain.Record) domain.JudgeResult {
	if rec == nil {
		return domain.FailedJudgeResult("record is nil")
	}

	strategy, err := s.Strategy(rec.RecordType())
	if err != nil {
		return domain.FailedJudgeResult(err.Error())
	}

	desc := strategy.BuildDescription(rec)
	resp, err := s.classifier.Classify(ctx, domain.ClassifyRequest{
		DeviceName:   desc.DeviceName,
		Manufacturer: desc.Manufacturer,
		Description:  capDescription(desc.Text),
		EntityType:   desc.EntityType,
	})
	if err != nil {
		log.Printf("[JUDGE] classification failed: entityType=%s id=%d err=%v",
			rec.RecordType(), rec.RecordID(), err)
		return domain.FailedJudgeResult("classification failed: " + err.Error())
	}

	result := domain.JudgeResult{
		IsRelated:  resp.IsRelated,
		Confidence: resp.Confidence,
		Reason:     resp.Reason,
		Category:   resp.Category,
		DeviceName: desc.DeviceName,
	}
	if !resp.IsRelated {
		result.BlacklistKeywords = strategy.BlacklistCandidates(rec)
	}
	return result
}

// ApplyVerdict writes the verdict back onto the record via its strategy.
// Failed results are ignored: no verdict means the record stays untouched.
func (s *JudgeService) ApplyVerdict(rec domain.Record, result domain.JudgeResult) {
	if rec == nil || result.Failed {
		return
	}
	strategy, err := s.Strategy(rec.RecordType())
	if err != nil {
		log.Printf("[JUDGE] cannot apply verdict: %v", err)
		return
	}
	strategy.ApplyVerdict(rec, result)
}

// capDescription truncates over-long descriptions with an ellipsis marker.
// The cap counts characters, not bytes, so multibyte text survives intact.
func capDescription(text string) string {
	runes := []rune(text)
	if len(runes) <= descriptionCap {
		return text
	}
	return string(runes[:descriptionCap]) + "..."
}

// SuggestedRisk maps a verdict to the risk level it implies
func SuggestedRisk(result domain.JudgeResult) domain.RiskLevel {
	if result.IsRelated {
		return domain.RiskHigh
	}
	return domain.RiskLow
}

// FormatRemark renders the structured remark block appended to a judged
// record: verdict, reason, confidence, optional category, timestamp, action.
func FormatRemark(result domain.JudgeResult, entityLabel string) string {
	var b strings.Builder

	b.WriteString("[AI Judgment")
	if entityLabel != "" {
		b.WriteString(" - ")
		b.WriteString(entityLabel)
	}
	b.WriteString("]\n")

	if result.IsRelated {
		b.WriteString("Verdict: related to skin analysis devices\n")
	} else {
		b.WriteString("Verdict: not related to skin analysis devices\n")
	}
	b.WriteString("Reason: ")
	b.WriteString(result.Reason)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Confidence: %.1f%%\n", result.Confidence*100)
	if result.Category != "" {
		b.WriteString("Category: ")
		b.WriteString(result.Category)
		b.WriteString("\n")
	}
	b.WriteString("Judged at: ")
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("\n")
	if result.IsRelated {
		b.WriteString("Action: keep HIGH risk")
	} else {
		b.WriteString("Action: downgrade to LOW risk")
	}

	return b.String()
}

// appendRemark adds a block to an existing remark without overwriting it
func appendRemark(existing, block string) string {
	if existing == "" {
		return block
	}
	return existing + "\n\n" + block
}

// corporateSuffixes stripped from manufacturer names before blacklisting
var corporateSuffixes = []string{
	" Inc.", " Inc", " LLC", " Ltd.", " Ltd", " Co.", " Co",
	" Corporation", " Corp.", " Corp", " Limited", " L.L.C.", " L.L.C",
	"有限公司", "股份有限公司", "集团", "公司",
}

// knownSkinDeviceBrands must never be blacklisted, whatever the verdict says
var knownSkinDeviceBrands = []string{
	"visia", "canfield", "observ", "dermaflash", "neutrogena",
	"dermalogica", "janus", "callegari", "aimyskin", "skin",
}

// CleanManufacturerName strips common corporate suffixes. Returns "" when the
// remainder is too short to be a useful blacklist term.
func CleanManufacturerName(name string) string {
	cleaned := strings.TrimSpace(name)
	if cleaned == "" {
		return ""
	}
	for _, suffix := range corporateSuffixes {
		if strings.HasSuffix(cleaned, suffix) {
			cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, suffix))
		}
	}
	if len(cleaned) < 3 {
		return ""
	}
	return cleaned
}

// IsKnownSkinDeviceBrand reports whether the name belongs to an in-domain
// vendor that must not be blacklisted
func IsKnownSkinDeviceBrand(name string) bool {
	lower := strings.ToLower(name)
	for _, brand := range knownSkinDeviceBrands {
		if strings.Contains(lower, brand) {
			return true
		}
	}
	return false
}

// manufacturerBlacklistCandidates is the shared extraction used by every
// strategy: clean the name, drop short remainders and known brands
func manufacturerBlacklistCandidates(name string) []string {
	cleaned := CleanManufacturerName(name)
	if cleaned == "" || IsKnownSkinDeviceBrand(cleaned) {
		return nil
	}
	return []string{cleaned}
}
