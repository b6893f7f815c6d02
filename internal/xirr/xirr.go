// Package xirr solves for the money-weighted rate of return of irregular
// dated cash flows using Newton-Raphson.
package xirr

import (
	"math"
	"time"

	"github.com/Dan9191/gold-savings/internal/calendar"
)

const (
	initialGuess   = 0.10
	maxIterations  = 50
	tolerance      = 1e-6
	flatDerivative = 1e-10
	rateFloor      = -0.9999
	daysPerYear    = 365.0
)

// Reason explains why a rate could not be computed
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonTooFewFlows    Reason = "too_few_flows"
	ReasonSameSign       Reason = "same_sign"
	ReasonSingleDate     Reason = "single_date"
	ReasonFlatDerivative Reason = "flat_derivative"
	ReasonDiverged       Reason = "diverged"
	ReasonNoConvergence  Reason = "no_convergence"
)

// CashFlow is a signed dated amount. Money paid in is negative, money
// received or value realized is positive.
type CashFlow struct {
	Amount float64
	Date   time.Time
}

// Outcome is the full result of a solve
type Outcome struct {
	Rate       float64
	Iterations int
	Reason     Reason
}

// Computable reports whether Rate holds a solution
func (o Outcome) Computable() bool {
	return o.Reason == ReasonNone
}

// ComputeReturnRate returns the annualised rate and true, or false when no
// rate can be determined for the flows.
func ComputeReturnRate(flows []CashFlow) (float64, bool) {
	out := Solve(flows)
	return out.Rate, out.Computable()
}

// Solve runs the solver. It never panics and never mutates flows.
func Solve(flows []CashFlow) Outcome {
	if len(flows) < 2 {
		return Outcome{Reason: ReasonTooFewFlows}
	}

	var hasNeg, hasPos bool
	origin := flows[0].Date
	for _, f := range flows {
		if f.Amount < 0 {
			hasNeg = true
		} else if f.Amount > 0 {
			hasPos = true
		}
		if f.Date.Before(origin) {
			origin = f.Date
		}
	}
	if !hasNeg || !hasPos {
		return Outcome{Reason: ReasonSameSign}
	}

	years := make([]float64, len(flows))
	distinct := false
	for i, f := range flows {
		days := calendar.DaysBetween(origin, f.Date)
		if days != 0 {
			distinct = true
		}
		years[i] = float64(days) / daysPerYear
	}
	if !distinct {
		return Outcome{Reason: ReasonSingleDate}
	}

	r := initialGuess
	for i := 1; i <= maxIterations; i++ {
		var f, df float64
		for j, cf := range flows {
			base := math.Pow(1+r, years[j])
			f += cf.Amount / base
			df -= years[j] * cf.Amount / (base * (1 + r))
		}

		if math.Abs(f) < tolerance {
			return Outcome{Rate: r, Iterations: i}
		}
		if math.Abs(df) < flatDerivative {
			return Outcome{Iterations: i, Reason: ReasonFlatDerivative}
		}

		r -= f / df
		if r <= rateFloor || math.IsNaN(r) || math.IsInf(r, 0) {
			return Outcome{Iterations: i, Reason: ReasonDiverged}
		}
	}
	return Outcome{Iterations: maxIterations, Reason: ReasonNoConvergence}
}
