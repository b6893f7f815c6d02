package service

import (
	"context"
	"errors"
	"time"

	"github.com/Dan9191/gold-savings/internal/analytics"
	"github.com/Dan9191/gold-savings/internal/config"
	"github.com/Dan9191/gold-savings/internal/format"
	"github.com/Dan9191/gold-savings/internal/integrations/ratefeed"
	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrInvalidGranularity = errors.New("invalid granularity")
)

// Store is the persistence the service depends on
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	LoadRecords(ctx context.Context, retailerID uuid.UUID, until time.Time) (models.RawRecords, error)
	LatestRates(ctx context.Context, retailerID uuid.UUID) ([]models.RateSnapshot, error)
	InsertRateSnapshot(ctx context.Context, s *models.RateSnapshot) error
	ListRetailers(ctx context.Context, karats []models.Karat) ([]uuid.UUID, error)
	ListStaffEmails(ctx context.Context, retailerID uuid.UUID, roles []models.Role) ([]string, error)
}

// RateSource supplies published metal rates
type RateSource interface {
	FetchRates(ctx context.Context) ([]ratefeed.Quote, error)
}

// Notifier delivers a notification and returns the strategy that accepted it
type Notifier interface {
	Send(ctx context.Context, n models.Notification) (string, error)
}

// Service handles business logic
type Service struct {
	store    Store
	rates    RateSource
	notifier Notifier
	engine   *analytics.Engine
	format   format.Formatter
	log      *logrus.Logger
	config   *config.Config
	now      func() time.Time
}

// NewService initializes a new service
func NewService(store Store, rates RateSource, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		rates:    rates,
		notifier: notifier,
		engine:   analytics.NewEngine(),
		format:   format.INR{},
		log:      log,
		config:   cfg,
		now:      time.Now,
	}
}
