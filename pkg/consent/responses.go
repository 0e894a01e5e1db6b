package consent

import "time"

// statusResponse mirrors the body of GET /consent/status.
type statusResponse struct {
	HasConsent bool           `json:"has_consent"`
	Consents   []consentEntry `json:"consents"`
}

type consentEntry struct {
	PurposeUUID string     `json:"purpose_uuid"`
	PurposeName string     `json:"purpose_name"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

func (r statusResponse) toStatus() *Status {
	consents := make([]Record, 0, len(r.Consents))
	for _, entry := range r.Consents {
		consents = append(consents, Record{
			PurposeUUID: entry.PurposeUUID,
			PurposeName: entry.PurposeName,
			ExpiresAt:   entry.ExpiresAt,
		})
	}
	return &Status{
		HasConsent: r.HasConsent,
		Consents:   consents,
	}
}

// purposeResponse mirrors one element of the GET /purposes array.
type purposeResponse struct {
	UUID                string   `json:"uuid"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	LegalBasis          string   `json:"legal_basis"`
	RetentionPeriodDays int      `json:"retention_period_days"`
	DataCategories      []string `json:"data_categories"`
	IsMandatory         bool     `json:"is_mandatory"`
}

func (r purposeResponse) toPurpose() Purpose {
	return Purpose{
		UUID:                r.UUID,
		Name:                r.Name,
		Description:         r.Description,
		LegalBasis:          LegalBasis(r.LegalBasis),
		RetentionPeriodDays: r.RetentionPeriodDays,
		DataCategories:      r.DataCategories,
		IsMandatory:         r.IsMandatory,
	}
}

// errorResponse is the platform error envelope.
type errorResponse struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}
