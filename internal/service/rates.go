package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Dan9191/gold-savings/internal/auth"
	"github.com/Dan9191/gold-savings/internal/integrations/ratefeed"
	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var notifyRoles = []models.Role{models.RoleAdmin, models.RoleStaff}

// CurrentRates returns the latest snapshot per karat for the retailer
func (s *Service) CurrentRates(ctx context.Context, caller auth.Identity, retailerID uuid.UUID) ([]models.CurrentRate, error) {
	if err := authorize(caller, retailerID); err != nil {
		return nil, err
	}

	latest, err := s.store.LatestRates(ctx, retailerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}

	out := make([]models.CurrentRate, 0, len(latest))
	for _, snap := range latest {
		out = append(out, models.CurrentRate{
			RateSnapshot: snap,
			Display:      s.format.Currency(snap.RatePerGram) + "/g",
		})
	}
	return out, nil
}

// SyncRetailerRates runs an immediate feed sync for one retailer
func (s *Service) SyncRetailerRates(ctx context.Context, caller auth.Identity, retailerID uuid.UUID) ([]models.RateSnapshot, error) {
	if err := authorize(caller, retailerID, models.RoleAdmin); err != nil {
		return nil, err
	}

	quotes, err := s.rates.FetchRates(ctx)
	if err != nil {
		return nil, err
	}
	return s.syncRetailer(ctx, retailerID, quotes)
}

// SyncRates fetches the feed once and applies it to every retailer dealing
// in the quoted karats. Failures for one retailer do not stop the others.
func (s *Service) SyncRates(ctx context.Context) error {
	quotes, err := s.rates.FetchRates(ctx)
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		s.log.Warn("Rate feed returned no quotes")
		return nil
	}

	karats := make([]models.Karat, 0, len(quotes))
	for _, q := range quotes {
		karats = append(karats, q.Karat)
	}
	retailers, err := s.store.ListRetailers(ctx, karats)
	if err != nil {
		return fmt.Errorf("failed to list retailers: %w", err)
	}

	var errs []error
	for _, id := range retailers {
		if _, err := s.syncRetailer(ctx, id, quotes); err != nil {
			s.log.WithField("retailer_id", id).Errorf("Rate sync failed: %v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// syncRetailer appends a snapshot for every quote newer than and different
// from the retailer's latest rate, then notifies the retailer's staff.
func (s *Service) syncRetailer(ctx context.Context, retailerID uuid.UUID, quotes []ratefeed.Quote) ([]models.RateSnapshot, error) {
	latest, err := s.store.LatestRates(ctx, retailerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest rates: %w", err)
	}
	byKarat := make(map[models.Karat]models.RateSnapshot, len(latest))
	for _, snap := range latest {
		byKarat[snap.Karat] = snap
	}

	var inserted []models.RateSnapshot
	for _, q := range quotes {
		effective := q.EffectiveFrom
		if effective.IsZero() {
			effective = s.now().UTC()
		}
		if prev, ok := byKarat[q.Karat]; ok {
			if prev.RatePerGram.Equal(q.RatePerGram) || !effective.After(prev.EffectiveFrom) {
				continue
			}
		}

		snap := &models.RateSnapshot{
			RetailerID:    retailerID,
			Karat:         q.Karat,
			RatePerGram:   q.RatePerGram,
			EffectiveFrom: effective,
		}
		if err := s.store.InsertRateSnapshot(ctx, snap); err != nil {
			return inserted, fmt.Errorf("failed to insert %s rate: %w", q.Karat, err)
		}
		inserted = append(inserted, *snap)
	}

	if len(inserted) == 0 {
		return inserted, nil
	}
	s.log.WithFields(logrus.Fields{
		"retailer_id": retailerID,
		"snapshots":   len(inserted),
	}).Info("Rates updated")

	s.notifyRates(ctx, retailerID, inserted)
	return inserted, nil
}

// notifyRates is best effort: delivery failures are logged, never returned
func (s *Service) notifyRates(ctx context.Context, retailerID uuid.UUID, snaps []models.RateSnapshot) {
	n := s.rateNotification(retailerID, snaps)

	recipients, err := s.store.ListStaffEmails(ctx, retailerID, notifyRoles)
	if err != nil {
		s.log.WithField("retailer_id", retailerID).Warnf("Failed to list staff emails: %v", err)
	}
	if len(recipients) == 0 {
		recipients = []string{""}
	}

	for _, to := range recipients {
		msg := n
		msg.Recipient = to
		via, err := s.notifier.Send(ctx, msg)
		if err != nil {
			s.log.WithField("retailer_id", retailerID).Errorf("Rate notification not delivered: %v", err)
			continue
		}
		s.log.WithFields(logrus.Fields{"retailer_id": retailerID, "via": via}).Debug("Rate notification delivered")
	}
}

func (s *Service) rateNotification(retailerID uuid.UUID, snaps []models.RateSnapshot) models.Notification {
	sorted := append([]models.RateSnapshot(nil), snaps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Karat < sorted[j].Karat })

	lines := make([]string, 0, len(sorted))
	meta := make(map[string]string, len(sorted))
	for _, snap := range sorted {
		lines = append(lines, fmt.Sprintf("%s: %s/g", snap.Karat, s.format.Currency(snap.RatePerGram)))
		meta[string(snap.Karat)] = snap.RatePerGram.String()
	}
	return models.Notification{
		RetailerID: retailerID,
		Title:      "Metal rates updated",
		Body:       strings.Join(lines, "\n"),
		Kind:       "rate_update",
		Metadata:   meta,
	}
}
