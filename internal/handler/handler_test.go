package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/gold-savings/internal/auth"
	"github.com/Dan9191/gold-savings/internal/config"
	"github.com/Dan9191/gold-savings/internal/middleware"
	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/Dan9191/gold-savings/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var retailerID = uuid.MustParse("7f9c2a10-8d4e-4b7a-9a51-3c2d1e0f0a01")

type fakeService struct {
	analyticsErr error
	lastQuery    service.AnalyticsQuery
}

func (f *fakeService) Login(_ context.Context, email, password string) (string, error) {
	if password != "s3cret" {
		return "", service.ErrInvalidCredentials
	}
	return "token-for-" + email, nil
}

func (f *fakeService) Analytics(_ context.Context, caller auth.Identity, id uuid.UUID, q service.AnalyticsQuery) (*service.AnalyticsReport, error) {
	f.lastQuery = q
	if f.analyticsErr != nil {
		return nil, f.analyticsErr
	}
	if caller.RetailerID != id {
		return nil, fmt.Errorf("%w: retailer mismatch", service.ErrForbidden)
	}
	return &service.AnalyticsReport{
		Result:      &models.AnalyticsResult{RetailerID: id, TotalRevenue: decimal.NewFromInt(1500)},
		Diagnostics: []models.Diagnostic{},
	}, nil
}

func (f *fakeService) CurrentRates(context.Context, auth.Identity, uuid.UUID) ([]models.CurrentRate, error) {
	return []models.CurrentRate{{RateSnapshot: models.RateSnapshot{Karat: models.Karat22}, Display: "₹6,000.00/g"}}, nil
}

func (f *fakeService) SyncRetailerRates(context.Context, auth.Identity, uuid.UUID) ([]models.RateSnapshot, error) {
	return nil, nil
}

func newRouter(svc Service) (*mux.Router, string) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return newRouterWithLogger(svc, log)
}

func newRouterWithLogger(svc Service, log *logrus.Logger) (*mux.Router, string) {
	cfg := &config.Config{JWTSecret: "secret"}
	h := NewHandler(svc, log, "hmac")

	r := mux.NewRouter()
	r.HandleFunc("/login", h.Login).Methods("POST")
	api := r.PathPrefix("/retailers/{retailerID}").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg, log))
	api.HandleFunc("/analytics", h.GetAnalytics).Methods("GET")
	api.HandleFunc("/rates/current", h.CurrentRates).Methods("GET")
	api.HandleFunc("/rates/sync", h.SyncRates).Methods("POST")

	user := &models.User{ID: uuid.New(), RetailerID: retailerID, Role: models.RoleStaff}
	token, _ := auth.IssueToken(user, cfg.JWTSecret, time.Hour, time.Now())
	return r, token
}

func do(r http.Handler, method, path, token string, body io.Reader, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	r, _ := newRouter(&fakeService{})

	rec := do(r, "POST", "/login", "", strings.NewReader(`{"email":"a@b.in","password":"s3cret"}`), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "token-for-a@b.in", resp["token"])

	rec = do(r, "POST", "/login", "", strings.NewReader(`{"email":"a@b.in","password":"nope"}`), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(r, "POST", "/login", "", strings.NewReader(`{`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAnalytics_ETag(t *testing.T) {
	svc := &fakeService{}
	r, token := newRouter(svc)
	path := "/retailers/" + retailerID.String() + "/analytics?start=2025-03-01&end=2025-03-31&granularity=day"

	rec := do(r, "GET", path, token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.AnalyticsQuery{Start: "2025-03-01", End: "2025-03-31", Granularity: "day"}, svc.lastQuery)
	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "result")
	assert.JSONEq(t, `[]`, string(body["diagnostics"]))

	rec = do(r, "GET", path, token, nil, map[string]string{"If-None-Match": tag})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestGetAnalytics_Errors(t *testing.T) {
	r, token := newRouter(&fakeService{})

	rec := do(r, "GET", "/retailers/"+retailerID.String()+"/analytics", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(r, "GET", "/retailers/"+uuid.NewString()+"/analytics", token, nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(r, "GET", "/retailers/not-a-uuid/analytics", token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	r, token = newRouter(&fakeService{analyticsErr: fmt.Errorf("%w: end before start", service.ErrInvalidPeriod)})
	rec = do(r, "GET", "/retailers/"+retailerID.String()+"/analytics", token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	r, token = newRouter(&fakeService{analyticsErr: errors.New("db down")})
	rec = do(r, "GET", "/retailers/"+retailerID.String()+"/analytics", token, nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestRates(t *testing.T) {
	r, token := newRouter(&fakeService{})

	rec := do(r, "GET", "/retailers/"+retailerID.String()+"/rates/current", token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "₹6,000.00/g")

	rec = do(r, "POST", "/retailers/"+retailerID.String()+"/rates/sync", token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"inserted":[]}`, rec.Body.String())
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (b brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestGetAnalytics_LogsWriteFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	r, token := newRouterWithLogger(&fakeService{}, log)

	req := httptest.NewRequest("GET", "/retailers/"+retailerID.String()+"/analytics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := brokenWriter{httptest.NewRecorder()}
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "Failed to write response")
	assert.Contains(t, buf.String(), "connection reset by peer")
}
