package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/gold-savings/internal/auth"
	"github.com/Dan9191/gold-savings/internal/middleware"
	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/Dan9191/gold-savings/internal/service"
	"github.com/Dan9191/gold-savings/internal/utils"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Service is the business layer behind the HTTP handlers
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	Analytics(ctx context.Context, caller auth.Identity, retailerID uuid.UUID, q service.AnalyticsQuery) (*service.AnalyticsReport, error)
	CurrentRates(ctx context.Context, caller auth.Identity, retailerID uuid.UUID) ([]models.CurrentRate, error)
	SyncRetailerRates(ctx context.Context, caller auth.Identity, retailerID uuid.UUID) ([]models.RateSnapshot, error)
}

type Handler struct {
	svc        Service
	log        *logrus.Logger
	hmacSecret string
}

func NewHandler(svc Service, log *logrus.Logger, hmacSecret string) *Handler {
	return &Handler{svc: svc, log: log, hmacSecret: hmacSecret}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetAnalytics returns the retailer dashboard, honouring If-None-Match
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	caller, retailerID, ok := h.scope(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	report, err := h.svc.Analytics(r.Context(), caller, retailerID, service.AnalyticsQuery{
		Start:       q.Get("start"),
		End:         q.Get("end"),
		Granularity: q.Get("granularity"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	body, err := json.Marshal(report)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tag := utils.ETag(body, h.hmacSecret)
	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", "private, no-cache")
	if utils.MatchesETag(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.log.Errorf("Failed to write response: %v", err)
	}
}

// CurrentRates returns the latest rate per karat
func (h *Handler) CurrentRates(w http.ResponseWriter, r *http.Request) {
	caller, retailerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	rates, err := h.svc.CurrentRates(r.Context(), caller, retailerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"rates": rates})
}

// SyncRates triggers an immediate feed sync for the retailer
func (h *Handler) SyncRates(w http.ResponseWriter, r *http.Request) {
	caller, retailerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	snaps, err := h.svc.SyncRetailerRates(r.Context(), caller, retailerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []models.RateSnapshot{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"inserted": snaps})
}

// scope resolves the caller and the retailer named in the path
func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (auth.Identity, uuid.UUID, bool) {
	caller, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Identity{}, uuid.Nil, false
	}
	retailerID, err := uuid.Parse(mux.Vars(r)["retailerID"])
	if err != nil {
		http.Error(w, "invalid retailer id", http.StatusBadRequest)
		return auth.Identity{}, uuid.Nil, false
	}
	return caller, retailerID, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, service.ErrInvalidPeriod), errors.Is(err, service.ErrInvalidGranularity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		h.log.WithField("path", r.URL.Path).Errorf("Request failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
