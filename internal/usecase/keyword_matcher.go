package usecase

import (
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/certwatch/backend/internal/domain"
)

// Package-level compiled regex pattern for performance
var whitespaceRegex = regexp.MustCompile(`\s+`)

// DefaultFuzzyThreshold is the similarity cutoff for FUZZY mode
const DefaultFuzzyThreshold = 0.70

// MatcherConfig holds configuration for the keyword matcher
type MatcherConfig struct {
	FuzzyThreshold float64
}

// KeywordMatcher decides whether harvested text is relevant to the monitored
// product domain. It is stateless and shares the immutable catalog, so one
// instance is safe for concurrent use.
type KeywordMatcher struct {
	catalog        *KeywordCatalog
	fuzzyThreshold float64
}

// NewKeywordMatcher creates a matcher over the given catalog
func NewKeywordMatcher(catalog *KeywordCatalog, config MatcherConfig) *KeywordMatcher {
	threshold := config.FuzzyThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}
	return &KeywordMatcher{
		catalog:        catalog,
		fuzzyThreshold: threshold,
	}
}

// IsRelevant checks text against a keyword set under the given mode and
// strategy. Empty text or an empty keyword set is never relevant and never
// an error.
func (m *KeywordMatcher) IsRelevant(text string, keywords []string, mode domain.MatchMode, strategy domain.MatchStrategy) bool {
	processedText := preprocessText(text)
	processedKeywords := preprocessKeywords(keywords)

	if processedText == "" || len(processedKeywords) == 0 {
		return false
	}

	switch strategy {
	case domain.MatchStrategyAny:
		for _, kw := range processedKeywords {
			if m.matches(processedText, kw, mode) {
				return true
			}
		}
		return false
	case domain.MatchStrategyAll:
		for _, kw := range processedKeywords {
			if !m.matches(processedText, kw, mode) {
				return false
			}
		}
		return true
	case domain.MatchStrategyMajority:
		matched := 0
		for _, kw := range processedKeywords {
			if m.matches(processedText, kw, mode) {
				matched++
			}
		}
		// strict majority: a tie is not a majority
		return matched > len(processedKeywords)/2
	default:
		return false
	}
}

// MatchedKeywords returns every keyword that matches the text under the mode,
// in keyword-list order
func (m *KeywordMatcher) MatchedKeywords(text string, keywords []string, mode domain.MatchMode) []string {
	processedText := preprocessText(text)
	processedKeywords := preprocessKeywords(keywords)

	var matched []string
	if processedText == "" {
		return matched
	}
	for _, kw := range processedKeywords {
		if m.matches(processedText, kw, mode) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// RelevanceScore is matchedCount / keywordsConsidered in [0,1]
func (m *KeywordMatcher) RelevanceScore(text string, keywords []string, mode domain.MatchMode) float64 {
	processedText := preprocessText(text)
	processedKeywords := preprocessKeywords(keywords)

	if processedText == "" || len(processedKeywords) == 0 {
		return 0.0
	}
	matched := 0
	for _, kw := range processedKeywords {
		if m.matches(processedText, kw, mode) {
			matched++
		}
	}
	return float64(matched) / float64(len(processedKeywords))
}

// Match bundles the boolean verdict, matched keywords and score in one pass
func (m *KeywordMatcher) Match(text string, keywords []string, mode domain.MatchMode, strategy domain.MatchStrategy) domain.MatchResult {
	return domain.MatchResult{
		IsRelevant:      m.IsRelevant(text, keywords, mode, strategy),
		MatchedKeywords: m.MatchedKeywords(text, keywords, mode),
		Score:           m.RelevanceScore(text, keywords, mode),
	}
}

func (m *KeywordMatcher) matches(text, keyword string, mode domain.MatchMode) bool {
	switch mode {
	case domain.MatchModeExact:
		return text == keyword
	case domain.MatchModeContains:
		return strings.Contains(text, keyword)
	case domain.MatchModeRegex:
		pattern, err := regexp.Compile("(?i)" + keyword)
		if err != nil {
			log.Printf("[MATCH] invalid regex keyword %q: %v", keyword, err)
			return false
		}
		return pattern.MatchString(text)
	case domain.MatchModeFuzzy:
		return m.fuzzyMatch(text, keyword)
	default:
		return false
	}
}

// fuzzyMatch compares whole strings by normalized Levenshtein similarity.
// Keywords longer than the text never match.
func (m *KeywordMatcher) fuzzyMatch(text, keyword string) bool {
	if utf8.RuneCountInString(keyword) > utf8.RuneCountInString(text) {
		return false
	}
	return FuzzySimilarity(text, keyword) >= m.fuzzyThreshold
}

// FuzzySimilarity is 1 - distance/max(len) over lowercased runes, in [0,1]
func FuzzySimilarity(text, keyword string) float64 {
	a := []rune(strings.ToLower(text))
	b := []rune(strings.ToLower(keyword))
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0.0
	}
	return 1.0 - float64(levenshteinDistance(a, b))/float64(longest)
}

func levenshteinDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j-1]+cost, prev[j]+1, curr[j-1]+1)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Category convenience predicates: ANY/CONTAINS over one fixed category each.

// IsCertificationRelated reports whether text matches certification keywords
func (m *KeywordMatcher) IsCertificationRelated(text string) bool {
	return m.isCategoryRelated(text, CategoryCertification)
}

// IsRecallRelated reports whether text matches recall keywords
func (m *KeywordMatcher) IsRecallRelated(text string) bool {
	return m.isCategoryRelated(text, CategoryRecall)
}

// IsRegulationRelated reports whether text matches regulation keywords
func (m *KeywordMatcher) IsRegulationRelated(text string) bool {
	return m.isCategoryRelated(text, CategoryRegulation)
}

// IsSafetyRelated reports whether text matches safety keywords
func (m *KeywordMatcher) IsSafetyRelated(text string) bool {
	return m.isCategoryRelated(text, CategorySafety)
}

// IsProductFunctionRelated reports whether text matches product-function keywords
func (m *KeywordMatcher) IsProductFunctionRelated(text string) bool {
	return m.isCategoryRelated(text, CategoryProductFunction)
}

// IsRelevantByCategory checks text against one named category
func (m *KeywordMatcher) IsRelevantByCategory(text, category string) bool {
	return m.isCategoryRelated(text, category)
}

func (m *KeywordMatcher) isCategoryRelated(text, category string) bool {
	return m.IsRelevant(text, m.catalog.Keywords(category), domain.MatchModeContains, domain.MatchStrategyAny)
}

// MatchedCategories returns every category (excluding "all") whose ANY/CONTAINS
// predicate holds for the text, in catalog-declaration order
func (m *KeywordMatcher) MatchedCategories(text string) []string {
	var matched []string
	for _, category := range m.catalog.Categories() {
		if m.isCategoryRelated(text, category) {
			matched = append(matched, category)
		}
	}
	return matched
}

// preprocessText collapses internal whitespace runs to single spaces and trims
func preprocessText(text string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// preprocessKeywords trims keywords and drops empty ones
func preprocessKeywords(keywords []string) []string {
	processed := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			processed = append(processed, kw)
		}
	}
	return processed
}
