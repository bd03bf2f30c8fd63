package domain

// MatchMode selects the comparison algorithm applied between text and one keyword
type MatchMode string

const (
	MatchModeExact    MatchMode = "EXACT"    // whole-string equality
	MatchModeContains MatchMode = "CONTAINS" // substring test
	MatchModeRegex    MatchMode = "REGEX"    // keyword compiled as a case-insensitive pattern
	MatchModeFuzzy    MatchMode = "FUZZY"    // normalized Levenshtein similarity
)

// MatchStrategy selects the aggregation rule combining per-keyword match outcomes
type MatchStrategy string

const (
	MatchStrategyAny      MatchStrategy = "ANY"      // at least one keyword matches
	MatchStrategyAll      MatchStrategy = "ALL"      // every keyword matches
	MatchStrategyMajority MatchStrategy = "MAJORITY" // strictly more than half match
)

// MatchResult is the outcome of checking one text against a keyword set.
// Score is matchedCount / totalKeywordsConsidered regardless of the strategy
// used for the boolean verdict.
type MatchResult struct {
	IsRelevant      bool     `json:"isRelevant"`
	MatchedKeywords []string `json:"matchedKeywords"`
	Score           float64  `json:"score"`
}
