package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Dan9191/gold-savings/internal/auth"
	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/Dan9191/gold-savings/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := auth.IssueToken(user, s.config.JWTSecret, s.config.TokenTTL, s.now())
	if err != nil {
		return "", err
	}

	s.log.WithField("retailer_id", user.RetailerID).Infof("User logged in: %s", user.Email)
	return token, nil
}

// HashPassword produces the bcrypt hash stored for a user
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// authorize checks that caller belongs to retailerID and holds one of roles.
// No roles means any role of the retailer.
func authorize(caller auth.Identity, retailerID uuid.UUID, roles ...models.Role) error {
	if caller.RetailerID != retailerID {
		return fmt.Errorf("%w: retailer mismatch", ErrForbidden)
	}
	if len(roles) > 0 && !slices.Contains(roles, caller.Role) {
		return fmt.Errorf("%w: role %s not allowed", ErrForbidden, caller.Role)
	}
	return nil
}
