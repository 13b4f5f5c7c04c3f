package models

// SessionType classifies a council session document.
type SessionType string

const (
	SessionOrdinary      SessionType = "ordinary"
	SessionExtraordinary SessionType = "extraordinary"
	SessionBudget        SessionType = "budget"
	SessionConstituent   SessionType = "constituent"
)

// NormalizedMetadata is the rule-extracted bibliographic record attached to
// a saved document. Zero values mean the field could not be extracted.
type NormalizedMetadata struct {
	SessionNumber   int         `json:"session_number,omitempty"` // bounded 1-200
	NormalizedTitle string      `json:"normalized_title,omitempty"`
	PublishDate     string      `json:"publish_date,omitempty"` // ISO date YYYY-MM-DD
	DocumentNumber  string      `json:"document_number,omitempty"`
	SessionType     SessionType `json:"session_type,omitempty"`
}
