package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoadRecords fetches every record of the retailer created before until.
// History before the reporting period is included because cumulative
// metrics and customer classification depend on it.
func (r *Repository) LoadRecords(ctx context.Context, retailerID uuid.UUID, until time.Time) (models.RawRecords, error) {
	var (
		raw models.RawRecords
		err error
	)
	if raw.Customers, err = r.listCustomers(ctx, retailerID, until); err != nil {
		return raw, err
	}
	if raw.Enrollments, err = r.listEnrollments(ctx, retailerID, until); err != nil {
		return raw, err
	}
	if raw.Transactions, err = r.listTransactions(ctx, retailerID, until); err != nil {
		return raw, err
	}
	if raw.Redemptions, err = r.listRedemptions(ctx, retailerID, until); err != nil {
		return raw, err
	}
	if raw.Rates, err = r.ListRates(ctx, retailerID, until); err != nil {
		return raw, err
	}
	return raw, nil
}

func (r *Repository) listCustomers(ctx context.Context, retailerID uuid.UUID, until time.Time) ([]models.Customer, error) {
	query := `
		SELECT id, created_at
		FROM savings.customers
		WHERE retailer_id = $1 AND created_at < $2`
	rows, err := r.db.QueryContext(ctx, query, retailerID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var out []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) listEnrollments(ctx context.Context, retailerID uuid.UUID, until time.Time) ([]models.Enrollment, error) {
	query := `
		SELECT e.id, e.customer_id, e.scheme_id, s.karat, e.status, e.enrolled_at
		FROM savings.enrollments e
		JOIN savings.schemes s ON s.id = e.scheme_id
		WHERE s.retailer_id = $1 AND e.enrolled_at < $2`
	rows, err := r.db.QueryContext(ctx, query, retailerID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	var out []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.SchemeID, &e.Karat, &e.Status, &e.EnrolledAt); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) listTransactions(ctx context.Context, retailerID uuid.UUID, until time.Time) ([]models.Transaction, error) {
	query := `
		SELECT id, customer_id, enrollment_id, store_id, amount, paid_at, type, status, grams_allocated
		FROM savings.transactions
		WHERE retailer_id = $1 AND paid_at < $2`
	rows, err := r.db.QueryContext(ctx, query, retailerID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var (
			t     models.Transaction
			grams decimal.NullDecimal
		)
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.EnrollmentID, &t.StoreID, &t.Amount,
			&t.PaidAt, &t.Type, &t.Status, &grams); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if grams.Valid {
			t.GramsAllocated = &grams.Decimal
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) listRedemptions(ctx context.Context, retailerID uuid.UUID, until time.Time) ([]models.Redemption, error) {
	query := `
		SELECT id, customer_id, enrollment_id, grams, value, redeemed_at, status
		FROM savings.redemptions
		WHERE retailer_id = $1 AND redeemed_at < $2`
	rows, err := r.db.QueryContext(ctx, query, retailerID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	defer rows.Close()

	var out []models.Redemption
	for rows.Next() {
		var rd models.Redemption
		if err := rows.Scan(&rd.ID, &rd.CustomerID, &rd.EnrollmentID, &rd.Grams, &rd.Value,
			&rd.RedeemedAt, &rd.Status); err != nil {
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}
