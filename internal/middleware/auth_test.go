package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/gold-savings/internal/auth"
	"github.com/Dan9191/gold-savings/internal/config"
	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup() (http.Handler, *config.Config, *auth.Identity) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "secret"}
	seen := &auth.Identity{}
	h := AuthMiddleware(cfg, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if ok {
			*seen = id
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, cfg, seen
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	h, cfg, seen := setup()
	user := &models.User{ID: uuid.New(), RetailerID: uuid.New(), Role: models.RoleAdmin}
	token, err := auth.IssueToken(user, cfg.JWTSecret, time.Hour, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, user.RetailerID, seen.RetailerID)
	assert.Equal(t, models.RoleAdmin, seen.Role)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	h, _, _ := setup()
	for name, header := range map[string]string{
		"missing": "",
		"scheme":  "Basic abc",
		"garbage": "Bearer not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
