package xirr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(days int) time.Time { return day0.AddDate(0, 0, days) }

func TestComputeReturnRate_TooFewFlows(t *testing.T) {
	_, ok := ComputeReturnRate(nil)
	assert.False(t, ok)

	_, ok = ComputeReturnRate([]CashFlow{{Amount: -1000, Date: day0}})
	assert.False(t, ok)
}

func TestComputeReturnRate_SameSign(t *testing.T) {
	out := Solve([]CashFlow{{Amount: 100, Date: at(0)}, {Amount: 0, Date: at(30)}, {Amount: 50, Date: at(60)}})
	assert.Equal(t, ReasonSameSign, out.Reason)

	out = Solve([]CashFlow{{Amount: -100, Date: at(0)}, {Amount: -50, Date: at(60)}})
	assert.Equal(t, ReasonSameSign, out.Reason)
}

func TestComputeReturnRate_TenPercent(t *testing.T) {
	rate, ok := ComputeReturnRate([]CashFlow{
		{Amount: -1000, Date: at(0)},
		{Amount: 1100, Date: at(365)},
	})
	assert.True(t, ok)
	assert.InDelta(t, 0.10, rate, 1e-4)
}

func TestComputeReturnRate_ZeroReturn(t *testing.T) {
	rate, ok := ComputeReturnRate([]CashFlow{
		{Amount: -1000, Date: at(0)},
		{Amount: 1000, Date: at(365)},
	})
	assert.True(t, ok)
	assert.InDelta(t, 0.0, rate, 1e-4)
}

func TestComputeReturnRate_UnsortedInput(t *testing.T) {
	flows := []CashFlow{
		{Amount: 1100, Date: at(365)},
		{Amount: -1000, Date: at(0)},
	}
	rate, ok := ComputeReturnRate(flows)
	assert.True(t, ok)
	assert.InDelta(t, 0.10, rate, 1e-4)
	// input left untouched
	assert.Equal(t, 1100.0, flows[0].Amount)
}

func TestComputeReturnRate_MonthlyContributions(t *testing.T) {
	flows := []CashFlow{
		{Amount: -1000, Date: at(0)},
		{Amount: -1000, Date: at(31)},
		{Amount: -1000, Date: at(60)},
		{Amount: 3000, Date: at(91)},
	}
	rate, ok := ComputeReturnRate(flows)
	assert.True(t, ok)
	assert.InDelta(t, 0.0, rate, 1e-4)
}

func TestComputeReturnRate_SingleDate(t *testing.T) {
	out := Solve([]CashFlow{
		{Amount: -1000, Date: day0},
		{Amount: 1000, Date: day0.Add(5 * time.Hour)},
	})
	assert.False(t, out.Computable())
	assert.Equal(t, ReasonSingleDate, out.Reason)
}

func TestComputeReturnRate_Divergence(t *testing.T) {
	// total loss within a day drives the rate through the floor
	out := Solve([]CashFlow{
		{Amount: -1000, Date: at(0)},
		{Amount: 0.0001, Date: at(1)},
	})
	assert.False(t, out.Computable())
	assert.LessOrEqual(t, out.Iterations, maxIterations)
}
