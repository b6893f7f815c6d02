package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ListRates returns the retailer's rate snapshots effective at or before until
func (r *Repository) ListRates(ctx context.Context, retailerID uuid.UUID, until time.Time) ([]models.RateSnapshot, error) {
	query := `
		SELECT id, retailer_id, karat, rate_per_gram, effective_from
		FROM savings.rate_snapshots
		WHERE retailer_id = $1 AND effective_from <= $2
		ORDER BY effective_from, id`
	rows, err := r.db.QueryContext(ctx, query, retailerID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	return scanRates(rows)
}

// LatestRates returns the newest snapshot per karat
func (r *Repository) LatestRates(ctx context.Context, retailerID uuid.UUID) ([]models.RateSnapshot, error) {
	query := `
		SELECT DISTINCT ON (karat) id, retailer_id, karat, rate_per_gram, effective_from
		FROM savings.rate_snapshots
		WHERE retailer_id = $1 AND effective_from <= CURRENT_TIMESTAMP
		ORDER BY karat, effective_from DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, retailerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest rates: %w", err)
	}
	return scanRates(rows)
}

// InsertRateSnapshot appends a snapshot. Snapshots are never updated.
func (r *Repository) InsertRateSnapshot(ctx context.Context, s *models.RateSnapshot) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	query := `
		INSERT INTO savings.rate_snapshots (id, retailer_id, karat, rate_per_gram, effective_from)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.RetailerID, s.Karat, s.RatePerGram, s.EffectiveFrom)
	if err != nil {
		return fmt.Errorf("failed to insert rate snapshot: %w", err)
	}
	return nil
}

// ListRetailers returns the IDs of retailers subscribed to the given karats
func (r *Repository) ListRetailers(ctx context.Context, karats []models.Karat) ([]uuid.UUID, error) {
	names := make([]string, len(karats))
	for i, k := range karats {
		names[i] = string(k)
	}
	query := `
		SELECT DISTINCT r.id
		FROM savings.retailers r
		JOIN savings.schemes s ON s.retailer_id = r.id
		WHERE s.karat = ANY($1)
		ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("failed to list retailers: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan retailer: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanRates(rows *sql.Rows) ([]models.RateSnapshot, error) {
	defer rows.Close()
	var out []models.RateSnapshot
	for rows.Next() {
		var s models.RateSnapshot
		if err := rows.Scan(&s.ID, &s.RetailerID, &s.Karat, &s.RatePerGram, &s.EffectiveFrom); err != nil {
			return nil, fmt.Errorf("failed to scan rate snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
