package analysis

import "time"

// ID identifier type
type ID string

// Source tells what the analysis was produced from.
type Source string

const (
	SourceText  Source = "text"
	SourceImage Source = "image"
)

// MealAnalysis is a normalized analysis stored for history and retrieval.
type MealAnalysis struct {
	ID         ID         `json:"id"`
	TenantID   string     `json:"tenant_id"`
	Source     Source     `json:"source"`
	Input      string     `json:"input"`
	Result     Normalized `json:"result"`
	ArchiveURL string     `json:"archive_url,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
