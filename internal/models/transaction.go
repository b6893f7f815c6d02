package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionInstallment TransactionType = "INSTALLMENT"
	TransactionBonus       TransactionType = "BONUS"
	TransactionAdjustment  TransactionType = "ADJUSTMENT"
	TransactionRedemption  TransactionType = "REDEMPTION"
)

// TransactionStatus is the payment state of a ledger entry
type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
)

// Transaction is a payment made against an enrollment
type Transaction struct {
	ID             uuid.UUID         `json:"id"`
	CustomerID     uuid.UUID         `json:"customer_id"`
	EnrollmentID   uuid.UUID         `json:"enrollment_id"`
	StoreID        uuid.NullUUID     `json:"store_id"`
	Amount         decimal.Decimal   `json:"amount"`
	PaidAt         time.Time         `json:"paid_at"`
	Type           TransactionType   `json:"type"`
	Status         TransactionStatus `json:"status"`
	GramsAllocated *decimal.Decimal  `json:"grams_allocated,omitempty"` // nil when not yet allocated
}

// IsSettled reports whether the payment succeeded
func (t Transaction) IsSettled() bool {
	return t.Status == TransactionSuccess
}

// IsContribution reports whether the entry is money paid in by the customer.
// Negative adjustments are ledger corrections, not money paid in.
func (t Transaction) IsContribution() bool {
	if !t.IsSettled() {
		return false
	}
	switch t.Type {
	case TransactionInstallment:
		return true
	case TransactionAdjustment:
		return t.Amount.IsPositive()
	default:
		return false
	}
}

// Grams returns allocated grams, zero when missing
func (t Transaction) Grams() decimal.Decimal {
	if t.GramsAllocated == nil {
		return decimal.Zero
	}
	return *t.GramsAllocated
}
