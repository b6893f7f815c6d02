package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ListStaffEmails returns addresses of the retailer's users holding any of roles
func (r *Repository) ListStaffEmails(ctx context.Context, retailerID uuid.UUID, roles []models.Role) ([]string, error) {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	query := `
		SELECT email
		FROM savings.users
		WHERE retailer_id = $1 AND role = ANY($2)
		ORDER BY email`
	rows, err := r.db.QueryContext(ctx, query, retailerID, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("failed to list staff emails: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		out = append(out, email)
	}
	return out, rows.Err()
}

// CallNotifyRPC delivers through the database-side notification function
func (r *Repository) CallNotifyRPC(ctx context.Context, n models.Notification) error {
	query := `SELECT savings.send_notification($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.RetailerID, n.CustomerID, n.Title, n.Body)
	if err != nil {
		return fmt.Errorf("notification rpc failed: %w", err)
	}
	return nil
}

// EnqueueNotification inserts the full notification into the delivery queue
func (r *Repository) EnqueueNotification(ctx context.Context, n models.Notification) error {
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode notification metadata: %w", err)
	}
	query := `
		INSERT INTO savings.notification_queue (id, retailer_id, customer_id, recipient, kind, title, body, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.db.ExecContext(ctx, query, n.ID, n.RetailerID, n.CustomerID, n.Recipient, n.Kind, n.Title, n.Body, string(meta))
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

// EnqueueNotificationReduced inserts only the columns every queue schema
// version carries.
func (r *Repository) EnqueueNotificationReduced(ctx context.Context, n models.Notification) error {
	query := `
		INSERT INTO savings.notification_queue (id, retailer_id, title, body)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.RetailerID, n.Title, n.Body)
	if err != nil {
		return fmt.Errorf("failed to enqueue reduced notification: %w", err)
	}
	return nil
}
