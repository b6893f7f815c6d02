package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateSnapshot is an immutable per-gram price effective from a point in time
type RateSnapshot struct {
	ID            uuid.UUID       `json:"id"`
	RetailerID    uuid.UUID       `json:"retailer_id"`
	Karat         Karat           `json:"karat"`
	RatePerGram   decimal.Decimal `json:"rate_per_gram"`
	EffectiveFrom time.Time       `json:"effective_from"`
}

// CurrentRate is a snapshot plus its display form
type CurrentRate struct {
	RateSnapshot
	Display string `json:"display"`
}
