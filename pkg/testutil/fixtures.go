// Package testutil provides deterministic fixtures and a raw HTTP client
// for tests that exercise the consent platform.
package testutil

import (
	"time"

	"assent/internal/mockapi/models"
	"assent/internal/mockapi/store"
	"assent/pkg/consent"
)

// Purpose UUIDs and demo identities from the seeded catalog, re-exported so
// tests outside the server packages can reference them without reaching into
// internal paths themselves.
const (
	PurposeMarketing        = store.PurposeMarketing
	PurposeAnalytics        = store.PurposeAnalytics
	PurposeDataSharing      = store.PurposeDataSharing
	PurposeServiceOperation = store.PurposeServiceOperation

	UserEverything = store.UserEverything
	UserPartial    = store.UserPartial
	UserExpired    = store.UserExpired
	UserRevoked    = store.UserRevoked
	UserNoConsent  = store.UserNoConsent
)

// Catalog returns the seeded purpose catalog as the client-side type, in
// serving order. Derived from the seed itself so the fixture cannot drift
// from what the server serves.
func Catalog() []consent.Purpose {
	seeded := store.SeedCatalog()
	catalog := make([]consent.Purpose, 0, len(seeded))
	for _, p := range seeded {
		catalog = append(catalog, consent.Purpose{
			UUID:                p.UUID,
			Name:                p.Name,
			Description:         p.Description,
			LegalBasis:          consent.LegalBasis(p.LegalBasis),
			RetentionPeriodDays: p.RetentionPeriodDays,
			DataCategories:      p.DataCategories,
			IsMandatory:         p.IsMandatory,
		})
	}
	return catalog
}

// SeededPurpose returns the seeded purpose with the given UUID. Panics on an
// unknown UUID so a typo fails the test immediately.
func SeededPurpose(uuid string) models.Purpose {
	for _, p := range store.SeedCatalog() {
		if p.UUID == uuid {
			return p
		}
	}
	panic("testutil: unknown seeded purpose " + uuid)
}

// GrantBuilder provides a fluent interface for building test grants.
type GrantBuilder struct {
	grant models.Grant
}

// NewGrantBuilder creates a GrantBuilder with sensible defaults: an active,
// open-ended marketing grant issued an hour ago.
func NewGrantBuilder(email string) *GrantBuilder {
	return &GrantBuilder{
		grant: models.Grant{
			UserEmail: email,
			Purpose:   SeededPurpose(PurposeMarketing),
			GrantedAt: time.Now().Add(-time.Hour),
		},
	}
}

func (b *GrantBuilder) WithPurpose(purpose models.Purpose) *GrantBuilder {
	b.grant.Purpose = purpose
	return b
}

func (b *GrantBuilder) WithGrantedAt(grantedAt time.Time) *GrantBuilder {
	b.grant.GrantedAt = grantedAt
	return b
}

func (b *GrantBuilder) WithExpiry(expiresAt time.Time) *GrantBuilder {
	b.grant.ExpiresAt = &expiresAt
	return b
}

func (b *GrantBuilder) Revoked(revokedAt time.Time) *GrantBuilder {
	b.grant.RevokedAt = &revokedAt
	return b
}

func (b *GrantBuilder) Build() *models.Grant {
	grant := b.grant
	return &grant
}
