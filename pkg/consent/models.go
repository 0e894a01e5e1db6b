package consent

import "time"

// LegalBasis is the declared lawful ground under which a purpose processes
// personal data. The vocabulary is owned by the consent platform; the client
// passes unknown values through as opaque strings.
type LegalBasis string

const (
	LegalBasisConsent            LegalBasis = "consent"
	LegalBasisContract           LegalBasis = "contract"
	LegalBasisLegalObligation    LegalBasis = "legal_obligation"
	LegalBasisVitalInterests     LegalBasis = "vital_interests"
	LegalBasisPublicTask         LegalBasis = "public_task"
	LegalBasisLegitimateInterest LegalBasis = "legitimate_interest"
)

// IsValid checks if the legal basis is one of the known values.
func (b LegalBasis) IsValid() bool {
	switch b {
	case LegalBasisConsent, LegalBasisContract, LegalBasisLegalObligation,
		LegalBasisVitalInterests, LegalBasisPublicTask, LegalBasisLegitimateInterest:
		return true
	default:
		return false
	}
}

// Purpose describes one processing purpose from the platform catalog.
// Purposes are owned and mutated only by the remote service; the client
// treats them as immutable.
type Purpose struct {
	UUID                string     `json:"uuid"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	LegalBasis          LegalBasis `json:"legal_basis"`
	RetentionPeriodDays int        `json:"retention_period_days"`
	DataCategories      []string   `json:"data_categories"`
	IsMandatory         bool       `json:"is_mandatory"`
}

// Record is one active consent grant for a user/purpose pair.
// A nil ExpiresAt means the grant never expires.
type Record struct {
	PurposeUUID string     `json:"purpose_uuid"`
	PurposeName string     `json:"purpose_name"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// ActiveAt reports whether the record still grants consent at the given
// instant. A record expiring exactly at now is already expired.
func (r Record) ActiveAt(now time.Time) bool {
	return r.ExpiresAt == nil || r.ExpiresAt.After(now)
}

// Status is the aggregate consent view for one user across all purposes.
// Consents keeps the server-returned order and is never re-sorted.
type Status struct {
	HasConsent bool     `json:"has_consent"`
	Consents   []Record `json:"consents"`
}

// Grants reports whether the status holds a consent for the purpose that
// is active at the given instant.
func (s *Status) Grants(purposeUUID string, now time.Time) bool {
	for _, record := range s.Consents {
		if record.PurposeUUID == purposeUUID && record.ActiveAt(now) {
			return true
		}
	}
	return false
}

// BatchResult pairs one batch input email with its lookup outcome.
//
// Consents is populated only on success and Err only on failure, never
// both. HasConsent is always present and is false whenever Err is set.
type BatchResult struct {
	Email      string   `json:"email"`
	HasConsent bool     `json:"has_consent"`
	Consents   []Record `json:"consents,omitempty"`
	Err        string   `json:"error,omitempty"`
}
