package handler

import (
	"time"

	"assent/internal/mockapi/models"
)

// statusResponse is the wire shape of GET /consent/status.
type statusResponse struct {
	HasConsent bool           `json:"has_consent"`
	Consents   []consentEntry `json:"consents"`
}

// consentEntry is one active consent record on the wire. ExpiresAt
// serializes as null for open-ended grants, so no omitempty.
type consentEntry struct {
	PurposeUUID string     `json:"purpose_uuid"`
	PurposeName string     `json:"purpose_name"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// checkResponse is the wire shape of GET /consent/check.
type checkResponse struct {
	HasConsent bool `json:"has_consent"`
}

// activeConsents serializes the grants that confer consent at now.
// Revoked and expired grants never reach the wire.
func activeConsents(grants []models.Grant, now time.Time) []consentEntry {
	consents := make([]consentEntry, 0, len(grants))
	for _, grant := range grants {
		if !grant.ActiveAt(now) {
			continue
		}
		consents = append(consents, consentEntry{
			PurposeUUID: grant.Purpose.UUID,
			PurposeName: grant.Purpose.Name,
			ExpiresAt:   grant.ExpiresAt,
		})
	}
	return consents
}
