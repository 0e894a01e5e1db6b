package store

import (
	"context"
	"fmt"
	"time"

	"assent/internal/mockapi/models"
)

// Fixed purpose UUIDs for the seeded catalog. Tests and demos rely on these
// staying stable.
const (
	PurposeMarketing        = "11111111-1111-1111-1111-111111111111"
	PurposeAnalytics        = "22222222-2222-2222-2222-222222222222"
	PurposeDataSharing      = "33333333-3333-3333-3333-333333333333"
	PurposeServiceOperation = "44444444-4444-4444-4444-444444444444"
)

// Demo identities with known consent states.
const (
	UserEverything = "alice@example.com"
	UserPartial    = "bob@example.com"
	UserExpired    = "carol@example.com"
	UserRevoked    = "dan@example.com"
	UserNoConsent  = "erin@example.com"
)

// SeedCatalog returns the fixed purpose catalog.
func SeedCatalog() []models.Purpose {
	return []models.Purpose{
		{
			UUID:                PurposeMarketing,
			Name:                "marketing",
			Description:         "Marketing communications and newsletters",
			LegalBasis:          models.BasisConsent,
			RetentionPeriodDays: 365,
			DataCategories:      []string{"email", "name", "preferences"},
		},
		{
			UUID:                PurposeAnalytics,
			Name:                "analytics",
			Description:         "Product usage analytics",
			LegalBasis:          models.BasisLegitimateInterest,
			RetentionPeriodDays: 90,
			DataCategories:      []string{"usage_data", "device_info"},
		},
		{
			UUID:                PurposeDataSharing,
			Name:                "data_sharing",
			Description:         "Sharing data with integration partners",
			LegalBasis:          models.BasisConsent,
			RetentionPeriodDays: 180,
			DataCategories:      []string{"email", "profile"},
		},
		{
			UUID:                PurposeServiceOperation,
			Name:                "service_operation",
			Description:         "Processing required to operate the service",
			LegalBasis:          models.BasisContract,
			RetentionPeriodDays: 730,
			DataCategories:      []string{"email", "account_data"},
			IsMandatory:         true,
		},
	}
}

// Seed populates the store with the fixed catalog and a set of demo users
// whose consent states cover the interesting cases: everything granted, a
// partial set, expired grants, revoked grants, and no grants at all. Grant
// timestamps are placed relative to now.
func Seed(ctx context.Context, s *InMemoryStore, now time.Time) error {
	catalog := SeedCatalog()
	byUUID := make(map[string]models.Purpose, len(catalog))
	for _, purpose := range catalog {
		if err := s.AddPurpose(ctx, purpose); err != nil {
			return fmt.Errorf("failed to seed purpose %s: %w", purpose.Name, err)
		}
		byUUID[purpose.UUID] = purpose
	}

	inAYear := now.Add(365 * 24 * time.Hour)

	demoGrants := []struct {
		email       string
		purposeUUID string
		grantedAt   time.Time
		expiresAt   *time.Time
		revokedAt   *time.Time
	}{
		// alice holds active consent for everything
		{UserEverything, PurposeMarketing, now.Add(-30 * 24 * time.Hour), &inAYear, nil},
		{UserEverything, PurposeAnalytics, now.Add(-30 * 24 * time.Hour), nil, nil},
		{UserEverything, PurposeDataSharing, now.Add(-30 * 24 * time.Hour), &inAYear, nil},
		{UserEverything, PurposeServiceOperation, now.Add(-30 * 24 * time.Hour), nil, nil},

		// bob granted only the essentials plus marketing
		{UserPartial, PurposeMarketing, now.Add(-7 * 24 * time.Hour), &inAYear, nil},
		{UserPartial, PurposeServiceOperation, now.Add(-7 * 24 * time.Hour), nil, nil},

		// carol's grants ran out
		{UserExpired, PurposeMarketing, now.Add(-2 * 365 * 24 * time.Hour), timePtr(now.Add(-365 * 24 * time.Hour)), nil},
		{UserExpired, PurposeAnalytics, now.Add(-2 * 365 * 24 * time.Hour), timePtr(now.Add(-365 * 24 * time.Hour)), nil},

		// dan granted and then revoked
		{UserRevoked, PurposeMarketing, now.Add(-60 * 24 * time.Hour), &inAYear, timePtr(now.Add(-10 * 24 * time.Hour))},
		{UserRevoked, PurposeDataSharing, now.Add(-60 * 24 * time.Hour), nil, timePtr(now.Add(-10 * 24 * time.Hour))},

		// erin never granted anything
	}

	for _, row := range demoGrants {
		purpose, ok := byUUID[row.purposeUUID]
		if !ok {
			return fmt.Errorf("seed references unknown purpose %s", row.purposeUUID)
		}
		grant, err := models.NewGrant(row.email, purpose, row.grantedAt, row.expiresAt)
		if err != nil {
			return fmt.Errorf("failed to build seed grant for %s: %w", row.email, err)
		}
		grant.RevokedAt = row.revokedAt
		if err := s.SaveGrant(ctx, grant); err != nil {
			return fmt.Errorf("failed to seed grant for %s: %w", row.email, err)
		}
	}

	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
