// Package models defines the server-side consent records served by the
// bundled consent platform.
package models

import (
	"time"

	dErrors "assent/pkg/domain-errors"
)

// LegalBasis values accepted for a purpose.
const (
	BasisConsent            = "consent"
	BasisContract           = "contract"
	BasisLegalObligation    = "legal_obligation"
	BasisVitalInterests     = "vital_interests"
	BasisPublicTask         = "public_task"
	BasisLegitimateInterest = "legitimate_interest"
)

// Purpose describes one processing purpose in the catalog.
type Purpose struct {
	UUID                string   `json:"uuid"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	LegalBasis          string   `json:"legal_basis"`
	RetentionPeriodDays int      `json:"retention_period_days"`
	DataCategories      []string `json:"data_categories"`
	IsMandatory         bool     `json:"is_mandatory"`
}

// validBases is the closed set of legal bases a purpose may declare.
var validBases = map[string]bool{
	BasisConsent:            true,
	BasisContract:           true,
	BasisLegalObligation:    true,
	BasisVitalInterests:     true,
	BasisPublicTask:         true,
	BasisLegitimateInterest: true,
}

// Validate checks purpose invariants before the catalog accepts it.
func (p Purpose) Validate() error {
	if p.UUID == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "purpose UUID required")
	}
	if p.Name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "purpose name required")
	}
	if !validBases[p.LegalBasis] {
		return dErrors.New(dErrors.CodeInvariantViolation, "invalid legal basis")
	}
	if p.RetentionPeriodDays < 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "retention period must not be negative")
	}
	return nil
}

// Grant records one user's consent decision for one purpose. The purpose is
// snapshotted so catalog edits never rewrite consent history.
type Grant struct {
	UserEmail string
	Purpose   Purpose
	GrantedAt time.Time
	ExpiresAt *time.Time
	RevokedAt *time.Time
}

// NewGrant creates a Grant with domain invariant checks.
func NewGrant(email string, purpose Purpose, grantedAt time.Time, expiresAt *time.Time) (*Grant, error) {
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user email required")
	}
	if err := purpose.Validate(); err != nil {
		return nil, err
	}
	if grantedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "grant time required")
	}
	if expiresAt != nil && expiresAt.Before(grantedAt) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expiry must be after grant time")
	}
	return &Grant{
		UserEmail: email,
		Purpose:   purpose,
		GrantedAt: grantedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// ActiveAt reports whether the grant confers consent at the given instant.
// Revoked grants never do. A grant expiring exactly at now is already
// expired: consent holds only while now is strictly before the expiry.
func (g Grant) ActiveAt(now time.Time) bool {
	if g.RevokedAt != nil {
		return false
	}
	if g.ExpiresAt != nil && !g.ExpiresAt.After(now) {
		return false
	}
	return true
}
