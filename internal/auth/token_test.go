package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{ID: uuid.New(), RetailerID: uuid.New(), Role: models.RoleStaff}
}

func TestIssueAndParseToken(t *testing.T) {
	user := testUser()
	token, err := IssueToken(user, "secret", time.Hour, time.Now())
	require.NoError(t, err)

	id, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, user.RetailerID, id.RetailerID)
	assert.Equal(t, models.RoleStaff, id.Role)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := IssueToken(testUser(), "secret", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = ParseToken(token, "other")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParseToken_Expired(t *testing.T) {
	token, err := IssueToken(testUser(), "secret", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
