package analytics

import (
	"fmt"
	"time"

	"github.com/Dan9191/gold-savings/internal/calendar"
	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/Dan9191/gold-savings/internal/xirr"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func (c *computation) periodRange() calendar.Range {
	return calendar.Range{Start: c.period.Start, End: c.period.End}
}

func (c *computation) portfolioSeries(g calendar.Granularity) []models.PortfolioPoint {
	buckets := calendar.Buckets(c.periodRange(), g)
	out := make([]models.PortfolioPoint, 0, len(buckets))

	contributed := decimal.Zero
	holdings := map[models.Karat]decimal.Decimal{}
	ci, gi := 0, 0
	for _, b := range buckets {
		for ; ci < len(c.contribs) && c.contribs[ci].PaidAt.Before(b.End); ci++ {
			contributed = contributed.Add(c.contribs[ci].Amount)
		}
		for ; gi < len(c.grams) && c.grams[gi].at.Before(b.End); gi++ {
			ev := c.grams[gi]
			holdings[ev.karat] = holdings[ev.karat].Add(ev.grams)
		}

		point := models.PortfolioPoint{
			BucketStart:   b.Start,
			BucketEnd:     b.End,
			Contributions: contributed,
			Grams:         make(map[models.Karat]decimal.Decimal, len(holdings)),
		}
		for k, v := range holdings {
			point.Grams[k] = v
		}
		if value, ok := c.markToMarket(holdings, b.End); ok {
			point.Value = &value
		}
		out = append(out, point)
	}
	return out
}

// markToMarket values holdings with the rates in effect at t, reporting any
// karat that cannot be priced.
func (c *computation) markToMarket(holdings map[models.Karat]decimal.Decimal, t time.Time) (decimal.Decimal, bool) {
	value, missing := c.rates.value(holdings, t)
	for _, k := range missing {
		c.report(DiagMissingRate+":"+string(k), DiagMissingRate,
			fmt.Sprintf("no %s rate effective at or before %s", k, t.Format(time.RFC3339)))
	}
	return value, len(missing) == 0
}

func (c *computation) efficiencySeries() []models.EfficiencyPoint {
	months := calendar.Buckets(c.periodRange(), calendar.Month)
	out := make([]models.EfficiencyPoint, 0, len(months))

	i := 0
	for _, m := range months {
		point := models.EfficiencyPoint{Month: m.Start, Invested: decimal.Zero, Grams: decimal.Zero}
		realized := decimal.Zero
		priced := true
		for ; i < len(c.contribs) && c.contribs[i].PaidAt.Before(m.End); i++ {
			tx := c.contribs[i]
			if !m.Contains(tx.PaidAt) || !c.inPeriod(tx.PaidAt) {
				continue
			}
			point.Invested = point.Invested.Add(tx.Amount)
			grams := tx.Grams()
			point.Grams = point.Grams.Add(grams)
			if grams.IsZero() {
				continue
			}
			k := c.karatOf(tx.EnrollmentID)
			rate, ok := c.rates.at(k, tx.PaidAt)
			if !ok {
				priced = false
				c.report(DiagMissingRate+":"+string(k), DiagMissingRate,
					fmt.Sprintf("no %s rate effective at or before %s", k, tx.PaidAt.Format(time.RFC3339)))
				continue
			}
			realized = realized.Add(grams.Mul(rate))
		}

		if priced && point.Invested.IsPositive() {
			pct := realized.Div(point.Invested).Mul(hundred).Round(4).InexactFloat64()
			point.Efficiency = &pct
		}
		out = append(out, point)
	}
	return out
}

// returnRate builds the investor-side cash flows: contributions negative,
// completed redemptions and the terminal holding value at period end positive.
func (c *computation) returnRate(redemptions []models.Redemption) *float64 {
	end := c.period.End
	var flows []xirr.CashFlow
	for _, tx := range c.contribs {
		if tx.PaidAt.Before(end) {
			flows = append(flows, xirr.CashFlow{Amount: -tx.Amount.InexactFloat64(), Date: tx.PaidAt})
		}
	}
	for _, r := range redemptions {
		if r.Status == models.RedemptionCompleted && r.RedeemedAt.Before(end) && r.Value.IsPositive() {
			flows = append(flows, xirr.CashFlow{Amount: r.Value.InexactFloat64(), Date: r.RedeemedAt})
		}
	}

	holdings := map[models.Karat]decimal.Decimal{}
	for _, ev := range c.grams {
		if ev.at.Before(end) {
			holdings[ev.karat] = holdings[ev.karat].Add(ev.grams)
		}
	}
	terminal, ok := c.markToMarket(holdings, end)
	if !ok {
		c.report(DiagXIRRUnavailable, DiagXIRRUnavailable, "terminal value cannot be priced")
		return nil
	}
	if terminal.IsPositive() {
		flows = append(flows, xirr.CashFlow{Amount: terminal.InexactFloat64(), Date: end})
	}

	out := xirr.Solve(flows)
	if !out.Computable() {
		c.report(DiagXIRRUnavailable, DiagXIRRUnavailable,
			fmt.Sprintf("return rate not computable: %s", out.Reason))
		return nil
	}
	rate := out.Rate
	return &rate
}
