package domain

import "fmt"

// Tier is a compatibility classification for a VM's guest OS on HPE VME.
type Tier string

const (
	TierOfficiallySupported   Tier = "officially_supported"
	TierUnofficiallySupported Tier = "unofficially_supported"
	TierSupportedVDI          Tier = "supported_vdi"
	TierNeedsReview           Tier = "needs_review"
	TierNeedsInfo             Tier = "needs_info"
	TierNotSupported          Tier = "not_supported"
)

// AllTiers lists every tier in report order.
var AllTiers = []Tier{
	TierOfficiallySupported,
	TierUnofficiallySupported,
	TierSupportedVDI,
	TierNeedsReview,
	TierNeedsInfo,
	TierNotSupported,
}

var tierColors = map[Tier]string{
	TierOfficiallySupported:   "#10B981",
	TierUnofficiallySupported: "#8B5CF6",
	TierSupportedVDI:          "#14B8A6",
	TierNeedsReview:           "#F59E0B",
	TierNeedsInfo:             "#0028FA",
	TierNotSupported:          "#F43F5E",
}

var tierDisplayNames = map[Tier]string{
	TierOfficiallySupported:   "Officially Supported",
	TierUnofficiallySupported: "Unofficially Supported",
	TierSupportedVDI:          "Supported VDI",
	TierNeedsReview:           "Needs Review",
	TierNeedsInfo:             "Needs Info",
	TierNotSupported:          "Not Supported",
}

// Color returns the hex color used to render the tier, or "" for an unknown tier.
func (t Tier) Color() string { return tierColors[t] }

// DisplayName returns the human readable tier label.
func (t Tier) DisplayName() string {
	if name, ok := tierDisplayNames[t]; ok {
		return name
	}
	return string(t)
}

// Valid reports whether t is one of the six known tiers.
func (t Tier) Valid() bool {
	_, ok := tierColors[t]
	return ok
}

func (t Tier) String() string { return string(t) }

// ParseTier converts a raw value into a Tier.
func ParseTier(raw string) (Tier, error) {
	t := Tier(raw)
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier %q", raw)
	}
	return t, nil
}

// TierInfo is the presentation view of a tier.
type TierInfo struct {
	Key         Tier   `json:"key"`
	DisplayName string `json:"display_name"`
	Color       string `json:"color"`
}

// TierTable returns presentation info for every tier in report order.
func TierTable() []TierInfo {
	out := make([]TierInfo, 0, len(AllTiers))
	for _, t := range AllTiers {
		out = append(out, TierInfo{Key: t, DisplayName: t.DisplayName(), Color: t.Color()})
	}
	return out
}
