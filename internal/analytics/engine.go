// Package analytics turns a retailer's raw ledger and rate history into
// period-bucketed performance metrics.
//
// The engine is a pure function of its inputs: it performs no I/O, reads no
// clock and never mutates the records it is given. Identical inputs produce
// identical results, so callers may cache them freely.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/Dan9191/gold-savings/internal/calendar"
	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Diagnostic codes
const (
	DiagMissingRate       = "missing_rate"
	DiagUnknownEnrollment = "unknown_enrollment"
	DiagXIRRUnavailable   = "xirr_unavailable"
	DiagInvalidPeriod     = "invalid_period"
)

// Engine computes analytics results. The zero value is ready to use.
type Engine struct{}

// NewEngine creates a new analytics engine
func NewEngine() *Engine {
	return &Engine{}
}

// computation carries the per-call derived state
type computation struct {
	period   models.Period
	rates    rateBook
	karats   map[uuid.UUID]models.Karat
	settled  []models.Transaction // every SUCCESS entry, input order
	contribs []models.Transaction // sorted by PaidAt
	grams    []gramEvent          // sorted by at
	diags    []models.Diagnostic
	reported map[string]bool
}

type gramEvent struct {
	at    time.Time
	karat models.Karat
	grams decimal.Decimal
}

// Compute builds the analytics result for retailerID over period, using g
// for the portfolio series. The period is assumed normalized; an empty or
// inverted period yields empty series.
func (e *Engine) Compute(
	retailerID uuid.UUID,
	period models.Period,
	g calendar.Granularity,
	raw models.RawRecords,
) (*models.AnalyticsResult, []models.Diagnostic) {
	c := &computation{
		period:   period,
		rates:    newRateBook(raw.Rates),
		karats:   make(map[uuid.UUID]models.Karat, len(raw.Enrollments)),
		reported: map[string]bool{},
	}
	if !period.Start.Before(period.End) {
		c.report(DiagInvalidPeriod, DiagInvalidPeriod, "period end is not after period start")
		return &models.AnalyticsResult{
			RetailerID:       retailerID,
			Period:           period,
			Granularity:      string(g),
			TotalRevenue:     decimal.Zero,
			RevenueByMetal:   map[models.Karat]decimal.Decimal{},
			SchemeHealth:     c.schemeHealth(nil),
			PortfolioSeries:  []models.PortfolioPoint{},
			EfficiencySeries: []models.EfficiencyPoint{},
		}, c.diags
	}
	for _, en := range raw.Enrollments {
		c.karats[en.ID] = en.Karat
	}
	c.prepareLedger(raw)

	revenue, total := c.revenueByMetal()
	result := &models.AnalyticsResult{
		RetailerID:       retailerID,
		Period:           period,
		Granularity:      string(g),
		TotalRevenue:     total,
		RevenueByMetal:   revenue,
		CustomerMetrics:  c.customerMetrics(raw),
		SchemeHealth:     c.schemeHealth(raw.Enrollments),
		PortfolioSeries:  c.portfolioSeries(g),
		EfficiencySeries: c.efficiencySeries(),
		XIRR:             c.returnRate(raw.Redemptions),
	}
	return result, c.diags
}

func (c *computation) prepareLedger(raw models.RawRecords) {
	for _, tx := range raw.Transactions {
		if !tx.IsSettled() {
			continue
		}
		c.settled = append(c.settled, tx)
		if tx.Type == models.TransactionRedemption {
			continue
		}
		k := c.karatOf(tx.EnrollmentID)
		if tx.IsContribution() {
			c.contribs = append(c.contribs, tx)
		}
		if g := tx.Grams(); !g.IsZero() {
			c.grams = append(c.grams, gramEvent{at: tx.PaidAt, karat: k, grams: g})
		}
	}
	for _, r := range raw.Redemptions {
		if r.Status != models.RedemptionCompleted {
			continue
		}
		c.grams = append(c.grams, gramEvent{at: r.RedeemedAt, karat: c.karatOf(r.EnrollmentID), grams: r.Grams.Neg()})
	}

	sort.SliceStable(c.contribs, func(i, j int) bool {
		if c.contribs[i].PaidAt.Equal(c.contribs[j].PaidAt) {
			return c.contribs[i].ID.String() < c.contribs[j].ID.String()
		}
		return c.contribs[i].PaidAt.Before(c.contribs[j].PaidAt)
	})
	sort.SliceStable(c.grams, func(i, j int) bool { return c.grams[i].at.Before(c.grams[j].at) })
}

func (c *computation) karatOf(enrollmentID uuid.UUID) models.Karat {
	k, ok := c.karats[enrollmentID]
	if !ok {
		c.report(DiagUnknownEnrollment+":"+enrollmentID.String(), DiagUnknownEnrollment,
			fmt.Sprintf("enrollment %s not found, grouped as %s", enrollmentID, models.KaratUnspec))
		return models.KaratUnspec
	}
	if !k.Valid() {
		return models.KaratUnspec
	}
	return k
}

// report appends a diagnostic once per key
func (c *computation) report(key, code, msg string) {
	if c.reported[key] {
		return
	}
	c.reported[key] = true
	c.diags = append(c.diags, models.Diagnostic{Code: code, Message: msg})
}

func (c *computation) inPeriod(t time.Time) bool {
	return !t.Before(c.period.Start) && t.Before(c.period.End)
}

// revenueByMetal sums every settled amount in the period, whatever its type
func (c *computation) revenueByMetal() (map[models.Karat]decimal.Decimal, decimal.Decimal) {
	out := map[models.Karat]decimal.Decimal{}
	total := decimal.Zero
	for _, tx := range c.settled {
		if !c.inPeriod(tx.PaidAt) {
			continue
		}
		k := c.karatOf(tx.EnrollmentID)
		out[k] = out[k].Add(tx.Amount)
		total = total.Add(tx.Amount)
	}
	return out, total
}

func (c *computation) customerMetrics(raw models.RawRecords) models.CustomerMetrics {
	first := map[uuid.UUID]time.Time{}
	active := map[uuid.UUID]bool{}
	touch := func(id uuid.UUID, at time.Time) {
		if !at.Before(c.period.End) {
			return
		}
		if f, ok := first[id]; !ok || at.Before(f) {
			first[id] = at
		}
		if c.inPeriod(at) {
			active[id] = true
		}
	}
	for _, tx := range raw.Transactions {
		if tx.IsSettled() {
			touch(tx.CustomerID, tx.PaidAt)
		}
	}
	for _, en := range raw.Enrollments {
		touch(en.CustomerID, en.EnrolledAt)
	}

	var m models.CustomerMetrics
	seen := map[uuid.UUID]bool{}
	for _, cu := range raw.Customers {
		if seen[cu.ID] || !cu.CreatedAt.Before(c.period.End) {
			continue
		}
		seen[cu.ID] = true
		m.Total++
		if active[cu.ID] {
			m.ActiveInPeriod++
		}

		f, hasActivity := first[cu.ID]
		switch {
		case hasActivity && !f.Before(c.period.Start):
			m.New++
		case hasActivity && active[cu.ID]:
			m.Returning++
		case !hasActivity && c.inPeriod(cu.CreatedAt):
			m.New++
		default:
			m.Dormant++
		}
	}
	return m
}

var enrollmentStatuses = []models.EnrollmentStatus{
	models.EnrollmentActive,
	models.EnrollmentPaused,
	models.EnrollmentCompleted,
	models.EnrollmentCancelled,
}

func (c *computation) schemeHealth(enrollments []models.Enrollment) models.SchemeHealth {
	h := models.SchemeHealth{
		Counts: make(map[models.EnrollmentStatus]int, len(enrollmentStatuses)),
		Ratios: make(map[models.EnrollmentStatus]float64, len(enrollmentStatuses)),
	}
	for _, s := range enrollmentStatuses {
		h.Counts[s] = 0
		h.Ratios[s] = 0
	}
	for _, en := range enrollments {
		if !en.EnrolledAt.Before(c.period.End) {
			continue
		}
		if _, known := h.Counts[en.Status]; !known {
			continue
		}
		h.Counts[en.Status]++
		h.Total++
	}
	if h.Total == 0 {
		return h
	}
	for _, s := range enrollmentStatuses {
		h.Ratios[s] = float64(h.Counts[s]) / float64(h.Total)
	}
	return h
}
