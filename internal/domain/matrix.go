package domain

import (
	"strings"
	"time"
)

// AnyVersion is the matrix wildcard that matches every version of a family.
const AnyVersion = "any"

// MatrixEntry records the compatibility tier of a set of versions of one OS family.
type MatrixEntry struct {
	ID        int64     `json:"id"`
	Vendor    string    `json:"vendor"`
	Family    string    `json:"os_family"`
	Versions  string    `json:"versions"`
	Tier      Tier      `json:"tier"`
	Notes     string    `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VersionTokens splits Versions on commas, trimming and lower-casing each token.
// Empty tokens are dropped.
func (e MatrixEntry) VersionTokens() []string {
	parts := strings.Split(e.Versions, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		tok := strings.ToLower(strings.TrimSpace(p))
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// GuidanceEntry is migration advice for a tier, optionally narrowed to one family.
// An empty Family marks the tier default.
type GuidanceEntry struct {
	ID        int64     `json:"id"`
	Tier      Tier      `json:"tier"`
	Family    string    `json:"os_family,omitempty"`
	Text      string    `json:"guidance_text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDefault reports whether the entry is the tier-wide default.
func (g GuidanceEntry) IsDefault() bool { return g.Family == "" }
