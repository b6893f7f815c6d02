// Package notify delivers notifications through an ordered list of
// strategies. The first strategy that succeeds wins; later ones are not
// attempted.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Strategy is one way of delivering a notification
type Strategy interface {
	Name() string
	Deliver(ctx context.Context, n models.Notification) error
}

// Chain tries strategies in order
type Chain struct {
	strategies []Strategy
	log        *logrus.Logger
}

// NewChain builds a chain from strategies, tried in the given order
func NewChain(log *logrus.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, log: log}
}

// Send delivers n with the first strategy that succeeds. It returns the
// name of that strategy, or an error joining every failure.
func (c *Chain) Send(ctx context.Context, n models.Notification) (string, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	var errs []error
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		err := s.Deliver(ctx, n)
		if err == nil {
			c.log.WithFields(logrus.Fields{
				"notification_id": n.ID,
				"strategy":        s.Name(),
				"fallbacks":       len(errs),
			}).Debug("Notification delivered")
			return s.Name(), nil
		}
		c.log.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"strategy":        s.Name(),
		}).Warnf("Notification strategy failed: %v", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	if len(errs) == 0 {
		return "", errors.New("no notification strategies configured")
	}
	return "", fmt.Errorf("all notification strategies failed: %w", errors.Join(errs...))
}
