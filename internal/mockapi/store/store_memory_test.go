package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assent/internal/mockapi/models"
)

func testPurpose(uuid, name string) models.Purpose {
	return models.Purpose{
		UUID:                uuid,
		Name:                name,
		Description:         name + " processing",
		LegalBasis:          models.BasisConsent,
		RetentionPeriodDays: 30,
	}
}

func TestInMemoryStoreOperations(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now()
	expiry := now.Add(time.Hour)

	marketing := testPurpose("aaaa0000-0000-0000-0000-000000000001", "marketing")
	analytics := testPurpose("aaaa0000-0000-0000-0000-000000000002", "analytics")

	// Catalog preserves insertion order
	require.NoError(t, store.AddPurpose(ctx, marketing))
	require.NoError(t, store.AddPurpose(ctx, analytics))
	purposes, err := store.ListPurposes(ctx)
	require.NoError(t, err)
	require.Len(t, purposes, 2)
	assert.Equal(t, "marketing", purposes[0].Name)
	assert.Equal(t, "analytics", purposes[1].Name)

	// Re-adding a UUID replaces in place without reordering
	marketing.Description = "updated"
	require.NoError(t, store.AddPurpose(ctx, marketing))
	purposes, err = store.ListPurposes(ctx)
	require.NoError(t, err)
	require.Len(t, purposes, 2)
	assert.Equal(t, "updated", purposes[0].Description)

	// Find
	found, err := store.FindPurpose(ctx, marketing.UUID)
	require.NoError(t, err)
	assert.Equal(t, "marketing", found.Name)
	_, err = store.FindPurpose(ctx, "ffff0000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrNotFound)

	// Save and list grants
	grant, err := models.NewGrant("alice@example.com", marketing, now, &expiry)
	require.NoError(t, err)
	require.NoError(t, store.SaveGrant(ctx, grant))

	grants, err := store.GrantsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, marketing.UUID, grants[0].Purpose.UUID)

	// Upsert replaces the grant for the same purpose
	laterExpiry := now.Add(2 * time.Hour)
	grant.ExpiresAt = &laterExpiry
	require.NoError(t, store.SaveGrant(ctx, grant))
	grants, err = store.GrantsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, laterExpiry, *grants[0].ExpiresAt)

	// List copy integrity
	grants[0].UserEmail = "mallory@example.com"
	grants, err = store.GrantsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "alice@example.com", grants[0].UserEmail)

	// Unknown email yields empty, not an error
	grants, err = store.GrantsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, grants)

	// Revoke
	revokeTime := now.Add(30 * time.Minute)
	revoked, err := store.RevokeGrant(ctx, "alice@example.com", marketing.UUID, revokeTime)
	require.NoError(t, err)
	require.NotNil(t, revoked.RevokedAt)
	assert.Equal(t, revokeTime, *revoked.RevokedAt)

	// Revoking twice finds nothing
	_, err = store.RevokeGrant(ctx, "alice@example.com", marketing.UUID, revokeTime)
	require.ErrorIs(t, err, ErrNotFound)

	// Delete
	require.NoError(t, store.DeleteGrantsByEmail(ctx, "alice@example.com"))
	grants, err = store.GrantsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestSeed(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, Seed(ctx, store, now))

	purposes, err := store.ListPurposes(ctx)
	require.NoError(t, err)
	require.Len(t, purposes, 4)
	assert.Equal(t, PurposeMarketing, purposes[0].UUID)
	assert.True(t, purposes[3].IsMandatory, "service operation purpose is mandatory")

	// alice holds an active grant for every purpose
	grants, err := store.GrantsByEmail(ctx, UserEverything)
	require.NoError(t, err)
	require.Len(t, grants, 4)
	for _, grant := range grants {
		assert.True(t, grant.ActiveAt(now), "purpose %s", grant.Purpose.Name)
	}

	// carol's grants are all expired
	grants, err = store.GrantsByEmail(ctx, UserExpired)
	require.NoError(t, err)
	require.NotEmpty(t, grants)
	for _, grant := range grants {
		assert.False(t, grant.ActiveAt(now))
		assert.Nil(t, grant.RevokedAt)
	}

	// dan's grants are revoked, not expired
	grants, err = store.GrantsByEmail(ctx, UserRevoked)
	require.NoError(t, err)
	require.NotEmpty(t, grants)
	for _, grant := range grants {
		assert.False(t, grant.ActiveAt(now))
		assert.NotNil(t, grant.RevokedAt)
	}

	// erin has nothing
	grants, err = store.GrantsByEmail(ctx, UserNoConsent)
	require.NoError(t, err)
	assert.Empty(t, grants)

	// Seeding twice is idempotent for the catalog
	require.NoError(t, Seed(ctx, store, now))
	purposes, err = store.ListPurposes(ctx)
	require.NoError(t, err)
	assert.Len(t, purposes, 4)
}
