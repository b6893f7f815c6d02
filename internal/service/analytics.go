package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/gold-savings/internal/auth"
	"github.com/Dan9191/gold-savings/internal/calendar"
	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

// AnalyticsQuery is the raw caller input for an analytics request
type AnalyticsQuery struct {
	Start       string
	End         string
	Granularity string
}

// AnalyticsReport is the engine output returned to callers
type AnalyticsReport struct {
	Result      *models.AnalyticsResult `json:"result"`
	Diagnostics []models.Diagnostic     `json:"diagnostics"`
}

// Analytics computes the retailer dashboard for the requested period
func (s *Service) Analytics(ctx context.Context, caller auth.Identity, retailerID uuid.UUID, q AnalyticsQuery) (*AnalyticsReport, error) {
	if err := authorize(caller, retailerID); err != nil {
		return nil, err
	}
	if !caller.Role.CanViewAnalytics() {
		return nil, fmt.Errorf("%w: role %s cannot view analytics", ErrForbidden, caller.Role)
	}

	period, err := s.resolvePeriod(q.Start, q.End)
	if err != nil {
		return nil, err
	}

	gran := q.Granularity
	if gran == "" {
		gran = s.config.DefaultGranularity
	}
	g, err := calendar.ParseGranularity(gran)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGranularity, err)
	}

	raw, err := s.store.LoadRecords(ctx, retailerID, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	started := time.Now()
	result, diags := s.engine.Compute(retailerID, period, g, raw)
	if diags == nil {
		diags = []models.Diagnostic{}
	}

	s.log.WithFields(logrus.Fields{
		"retailer_id":  retailerID,
		"start":        period.Start.Format(dateLayout),
		"end":          period.End.Format(dateLayout),
		"granularity":  g,
		"transactions": len(raw.Transactions),
		"diagnostics":  len(diags),
		"elapsed":      time.Since(started).String(),
	}).Info("Analytics computed")

	return &AnalyticsReport{Result: result, Diagnostics: diags}, nil
}

// resolvePeriod turns inclusive YYYY-MM-DD dates into a half-open UTC
// period. A missing bound falls back to the current calendar month.
func (s *Service) resolvePeriod(start, end string) (models.Period, error) {
	month := calendar.MonthBounds(s.now())
	period := models.Period{Start: month.Start, End: month.End}

	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return models.Period{}, fmt.Errorf("%w: bad start date %q", ErrInvalidPeriod, start)
		}
		period.Start = calendar.StartOfDay(t)
	}
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return models.Period{}, fmt.Errorf("%w: bad end date %q", ErrInvalidPeriod, end)
		}
		period.End = calendar.EndOfDay(t)
	}

	if !period.Start.Before(period.End) {
		return models.Period{}, fmt.Errorf("%w: end before start", ErrInvalidPeriod)
	}
	return period, nil
}
