package model

// DefaultInitialCredits is the generation allotment granted to a new client.
const DefaultInitialCredits = 4

// CreditRecord is the persisted per-client quota state. The server copy is
// authoritative; clients only cache it for display. OverrideCredential is
// sealed at rest (see internal/secret) and UsingOverride must always mirror
// its presence; the two fields are only ever written together.
type CreditRecord struct {
	CreditsRemaining   int    `json:"credits_remaining"`
	OverrideCredential string `json:"override_credential,omitempty"`
	UsingOverride      bool   `json:"using_override"`
}
