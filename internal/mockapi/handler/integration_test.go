package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assent/internal/mockapi/store"
	"assent/pkg/consent"
)

// TestClientAgainstMockAPI drives the real consent client through the full
// bundled platform: router, API key middleware, seeded store.
func TestClientAgainstMockAPI(t *testing.T) {
	st := store.New()
	require.NoError(t, store.Seed(context.Background(), st, time.Now()))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(st, logger, nil, 2)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(RequireAPIKey(testAPIKey, logger, nil))
		h.Register(r)
	})

	server := httptest.NewServer(router)
	defer server.Close()

	client, err := consent.New(server.URL, testAPIKey)
	require.NoError(t, err)
	ctx := context.Background()

	// 1. Status for a user with everything granted
	status, err := client.ConsentStatus(ctx, store.UserEverything)
	require.NoError(t, err)
	assert.True(t, status.HasConsent)
	assert.Len(t, status.Consents, 4)

	// 2. Status for expired and revoked users comes back clean, not failed
	for _, email := range []string{store.UserExpired, store.UserRevoked, store.UserNoConsent} {
		status, err = client.ConsentStatus(ctx, email)
		require.NoError(t, err, "email %s", email)
		assert.False(t, status.HasConsent, "email %s", email)
		assert.Empty(t, status.Consents, "email %s", email)
	}

	// 3. Per-purpose checks
	granted, err := client.HasConsent(ctx, store.UserPartial, store.PurposeMarketing)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = client.HasConsent(ctx, store.UserPartial, store.PurposeAnalytics)
	require.NoError(t, err)
	assert.False(t, granted)

	// 4. Purposes walks the paginated catalog transparently
	purposes, err := client.Purposes(ctx)
	require.NoError(t, err)
	require.Len(t, purposes, 4)
	assert.Equal(t, store.PurposeMarketing, purposes[0].UUID)
	assert.Equal(t, store.PurposeServiceOperation, purposes[3].UUID)

	// 5. Batch keeps input order and isolates per-item outcomes
	results, err := client.CheckBatch(ctx, []string{
		store.UserEverything,
		store.UserNoConsent,
		store.UserExpired,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].HasConsent)
	assert.False(t, results[1].HasConsent)
	assert.False(t, results[2].HasConsent)
	for _, result := range results {
		assert.Empty(t, result.Err)
	}
}

// TestClientAuthClassificationAgainstMockAPI pins the client's error kinds
// to the platform's real authentication responses.
func TestClientAuthClassificationAgainstMockAPI(t *testing.T) {
	st := store.New()
	require.NoError(t, store.Seed(context.Background(), st, time.Now()))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(st, logger, nil, 0)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(RequireAPIKey(testAPIKey, logger, nil))
		h.Register(r)
	})

	server := httptest.NewServer(router)
	defer server.Close()

	client, err := consent.New(server.URL, "not-the-right-key")
	require.NoError(t, err)

	_, err = client.ConsentStatus(context.Background(), store.UserEverything)
	require.Error(t, err)
	assert.True(t, consent.IsAuth(err))
	assert.Contains(t, err.Error(), "API key is not valid")

	// A purpose missing from the user's records is no consent, not a failure
	client, err = consent.New(server.URL, testAPIKey)
	require.NoError(t, err)
	granted, err := client.HasConsent(context.Background(), store.UserEverything, "99999999-9999-9999-9999-999999999999")
	require.NoError(t, err)
	assert.False(t, granted)

	// A missing route classifies as not found
	client, err = consent.New(server.URL+"/nowhere", testAPIKey)
	require.NoError(t, err)
	_, err = client.ConsentStatus(context.Background(), store.UserEverything)
	require.Error(t, err)
	assert.True(t, consent.IsNotFound(err))
}
