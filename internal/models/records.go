package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Karat is the purity grade that selects a metal rate
type Karat string

const (
	Karat22     Karat = "22K"
	Karat24     Karat = "24K"
	Karat18     Karat = "18K"
	KaratUnspec Karat = "UNSPECIFIED"
)

// Valid reports whether k is a priced purity grade
func (k Karat) Valid() bool {
	return k == Karat22 || k == Karat24 || k == Karat18
}

// EnrollmentStatus is the lifecycle state of a customer's scheme
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentPaused    EnrollmentStatus = "PAUSED"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentCancelled EnrollmentStatus = "CANCELLED"
)

// Enrollment links a customer to a scheme. Karat is denormalized from the scheme.
type Enrollment struct {
	ID         uuid.UUID        `json:"id"`
	CustomerID uuid.UUID        `json:"customer_id"`
	SchemeID   uuid.UUID        `json:"scheme_id"`
	Karat      Karat            `json:"karat"`
	Status     EnrollmentStatus `json:"status"`
	EnrolledAt time.Time        `json:"enrolled_at"`
}

// Customer represents a retailer's customer
type Customer struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// RedemptionStatus is the state of a redemption request
type RedemptionStatus string

const (
	RedemptionRequested RedemptionStatus = "REQUESTED"
	RedemptionCompleted RedemptionStatus = "COMPLETED"
	RedemptionRejected  RedemptionStatus = "REJECTED"
)

// Redemption is a payout of accumulated grams
type Redemption struct {
	ID           uuid.UUID        `json:"id"`
	CustomerID   uuid.UUID        `json:"customer_id"`
	EnrollmentID uuid.UUID        `json:"enrollment_id"`
	Grams        decimal.Decimal  `json:"grams"`
	Value        decimal.Decimal  `json:"value"`
	RedeemedAt   time.Time        `json:"redeemed_at"`
	Status       RedemptionStatus `json:"status"`
}

// RawRecords bundles everything fetched for one retailer
type RawRecords struct {
	Transactions []Transaction
	Enrollments  []Enrollment
	Customers    []Customer
	Redemptions  []Redemption
	Rates        []RateSnapshot
}
