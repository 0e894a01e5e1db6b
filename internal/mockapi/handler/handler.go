// Package handler serves the HTTP surface of the bundled consent platform:
// consent status reads, per-purpose checks, and the purpose catalog.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"assent/internal/mockapi/models"
	"assent/internal/mockapi/store"
	"assent/internal/platform/device"
	"assent/internal/platform/metrics"
	"assent/internal/platform/privacy"
	dErrors "assent/pkg/domain-errors"
	"assent/pkg/platform/httputil"
	"assent/pkg/requestcontext"
)

// Store is the persistence surface the handlers read from.
type Store interface {
	ListPurposes(ctx context.Context) ([]models.Purpose, error)
	FindPurpose(ctx context.Context, uuid string) (models.Purpose, error)
	GrantsByEmail(ctx context.Context, email string) ([]models.Grant, error)
}

// Handler handles consent read endpoints.
type Handler struct {
	logger   *slog.Logger
	store    Store
	metrics  *metrics.Metrics
	pageSize int
}

// New creates a new consent platform Handler. pageSize controls catalog
// pagination; zero serves the full catalog in one response.
func New(store Store, logger *slog.Logger, metrics *metrics.Metrics, pageSize int) *Handler {
	return &Handler{
		logger:   logger,
		store:    store,
		metrics:  metrics,
		pageSize: pageSize,
	}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/consent/status", h.handleConsentStatus)
	r.Get("/consent/check", h.handleConsentCheck)
	r.Get("/purposes", h.handlePurposes)
}

func (h *Handler) handleConsentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer h.observeLatency("consent_status", start)

	req, err := parseStatusRequest(r.URL.Query().Get("email"))
	if err != nil {
		h.logWarn(ctx, "invalid consent status request", err)
		httputil.WriteError(w, err)
		return
	}

	grants, err := h.store.GrantsByEmail(ctx, req.Email)
	if err != nil {
		h.logError(ctx, "failed to load grants", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consent records"))
		return
	}

	now := requestcontext.Now(ctx)
	consents := activeConsents(grants, now)

	if h.metrics != nil {
		h.metrics.IncrementStatusLookups()
	}
	h.logServed(ctx, "consent status served", req.Email, "consents", len(consents))

	httputil.WriteJSON(w, http.StatusOK, statusResponse{
		HasConsent: len(consents) > 0,
		Consents:   consents,
	})
}

func (h *Handler) handleConsentCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer h.observeLatency("consent_check", start)

	query := r.URL.Query()
	req, err := parseCheckRequest(query.Get("email"), query.Get("purpose"))
	if err != nil {
		h.logWarn(ctx, "invalid consent check request", err)
		httputil.WriteError(w, err)
		return
	}

	purpose, err := h.store.FindPurpose(ctx, req.Purpose)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "purpose not found"))
			return
		}
		h.logError(ctx, "failed to load purpose", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load purpose"))
		return
	}

	grants, err := h.store.GrantsByEmail(ctx, req.Email)
	if err != nil {
		h.logError(ctx, "failed to load grants", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consent records"))
		return
	}

	now := requestcontext.Now(ctx)
	hasConsent := false
	for _, grant := range grants {
		if grant.Purpose.UUID == purpose.UUID && grant.ActiveAt(now) {
			hasConsent = true
			break
		}
	}

	if h.metrics != nil {
		if hasConsent {
			h.metrics.IncrementConsentCheckPassed(purpose.Name)
		} else {
			h.metrics.IncrementConsentCheckFailed(purpose.Name)
		}
	}
	h.logServed(ctx, "consent check served", req.Email,
		"purpose", purpose.Name,
		"has_consent", hasConsent,
	)

	httputil.WriteJSON(w, http.StatusOK, checkResponse{HasConsent: hasConsent})
}

func (h *Handler) handlePurposes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer h.observeLatency("purposes", start)

	limit, offset, err := parsePageWindow(r.URL.Query(), h.pageSize)
	if err != nil {
		h.logWarn(ctx, "invalid purposes request", err)
		httputil.WriteError(w, err)
		return
	}

	purposes, err := h.store.ListPurposes(ctx)
	if err != nil {
		h.logError(ctx, "failed to load purpose catalog", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load purposes"))
		return
	}

	if h.metrics != nil {
		h.metrics.IncrementPurposeCatalogReads()
	}

	if limit <= 0 {
		httputil.WriteJSON(w, http.StatusOK, purposes)
		return
	}

	if offset > len(purposes) {
		offset = len(purposes)
	}
	end := offset + limit
	if end > len(purposes) {
		end = len(purposes)
	}
	if end < len(purposes) {
		w.Header().Set("Link", nextPageLink(limit, end))
	}
	httputil.WriteJSON(w, http.StatusOK, purposes[offset:end])
}

// parsePageWindow resolves the catalog page window from the query, with the
// configured page size as the default limit. Zero means no pagination.
func parsePageWindow(query url.Values, defaultLimit int) (limit, offset int, err error) {
	limit = defaultLimit
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return 0, 0, dErrors.New(dErrors.CodeValidation, "limit must be a non-negative integer")
		}
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, dErrors.New(dErrors.CodeValidation, "offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

// nextPageLink builds the RFC 8288 continuation header for the next window.
func nextPageLink(limit, offset int) string {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	return fmt.Sprintf("</purposes?%s>; rel=\"next\"", params.Encode())
}

func (h *Handler) observeLatency(endpoint string, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveEndpointLatency(endpoint, time.Since(start).Seconds())
	}
}

// logServed records a served request without exposing raw PII: the email is
// masked and the client IP anonymized before they reach the log stream.
func (h *Handler) logServed(ctx context.Context, msg, email string, extra ...any) {
	if h.logger == nil {
		return
	}
	attrs := append([]any{
		"request_id", requestcontext.RequestID(ctx),
		"email", privacy.MaskEmail(email),
		"client_ip", privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
		"device", device.Describe(requestcontext.UserAgent(ctx)),
	}, extra...)
	h.logger.InfoContext(ctx, msg, attrs...)
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
