package models

import "github.com/google/uuid"

// Notification is a message addressed to a retailer or one of its customers
type Notification struct {
	ID         uuid.UUID         `json:"id"`
	RetailerID uuid.UUID         `json:"retailer_id"`
	CustomerID uuid.NullUUID     `json:"customer_id"`
	Recipient  string            `json:"recipient"` // email address, optional
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Kind       string            `json:"kind"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
