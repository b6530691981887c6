package generator

import "math"

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Budget is the token accounting reported in a generated skill. The idle,
// active and executing costs are fixed by the progressive disclosure model;
// only the preload baseline and the savings percentage vary with the size
// of the tool catalog.
type Budget struct {
	ToolCount       int `json:"tool_count"`
	IdleTokens      int `json:"idle_tokens"`
	ActiveTokens    int `json:"active_tokens"`
	ExecutingTokens int `json:"executing_tokens"`
	BaselineTokens  int `json:"baseline_tokens"`
	SavingsPercent  int `json:"savings_percent"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	idleTokens      = 100
	activeTokens    = 5000
	executingTokens = 0

	// Estimated cost of preloading one tool's full definition
	tokensPerTool = 500
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewBudget computes the token budget for a catalog of the given size. The
// savings percentage is rounded and may be negative for small catalogs,
// where preloading is genuinely cheaper; it is reported as computed, never
// clamped.
func NewBudget(toolCount int) Budget {
	budget := Budget{
		ToolCount:       toolCount,
		IdleTokens:      idleTokens,
		ActiveTokens:    activeTokens,
		ExecutingTokens: executingTokens,
		BaselineTokens:  toolCount * tokensPerTool,
	}
	// No baseline to compare against when the catalog is empty
	if budget.BaselineTokens > 0 {
		budget.SavingsPercent = int(math.Round((1 - float64(activeTokens)/float64(budget.BaselineTokens)) * 100))
	}
	return budget
}
