package generator

import (
	"testing"

	// Packages
	assert "github.com/stretchr/testify/assert"
)

func Test_budget_001(t *testing.T) {
	assert := assert.New(t)

	// Fixed costs are independent of catalog size
	for _, n := range []int{0, 1, 5, 12, 100} {
		budget := NewBudget(n)
		assert.Equal(100, budget.IdleTokens)
		assert.Equal(5000, budget.ActiveTokens)
		assert.Equal(0, budget.ExecutingTokens)
		assert.Equal(n*500, budget.BaselineTokens)
	}
}

func Test_budget_002(t *testing.T) {
	assert := assert.New(t)

	// 12 tools: preloading costs 6000 tokens, lazy loading saves 17%
	budget := NewBudget(12)
	assert.Equal(6000, budget.BaselineTokens)
	assert.Equal(5000, budget.ActiveTokens)
	assert.Equal(17, budget.SavingsPercent)
}

func Test_budget_003(t *testing.T) {
	assert := assert.New(t)

	// Small catalogs perform worse under this scheme and the negative
	// savings are reported as computed
	budget := NewBudget(5)
	assert.Equal(2500, budget.BaselineTokens)
	assert.Equal(-100, budget.SavingsPercent)

	budget = NewBudget(1)
	assert.Equal(500, budget.BaselineTokens)
	assert.Equal(-900, budget.SavingsPercent)
}

func Test_budget_004(t *testing.T) {
	assert := assert.New(t)

	// Break-even at 10 tools, and an empty catalog has no baseline
	assert.Equal(0, NewBudget(10).SavingsPercent)
	assert.Equal(0, NewBudget(0).SavingsPercent)
	assert.Equal(50, NewBudget(20).SavingsPercent)
}
