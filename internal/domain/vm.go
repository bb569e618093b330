// Package domain provides the data model shared by the normalizer, the
// classification engine, the matrix store and the HTTP layer.
//
// Import Path: vme-analyzer.io/analyzer/internal/domain
package domain

// SourceFormat identifies the inventory export a row was read from.
type SourceFormat string

const (
	SourceRVTools      SourceFormat = "rvtools"
	SourceCloudPhysics SourceFormat = "cloudphysics"
)

// VMInputRow is one VM read from an inventory export.
//
// PrimaryOS is the guest-tools reported OS (RVTools "OS according to the VMware
// Tools"); FallbackOS is the configuration-file OS, used only when PrimaryOS is empty.
// CloudPhysics exports carry no fallback column.
type VMInputRow struct {
	Name         string       `json:"name"`
	HostCluster  string       `json:"host_cluster,omitempty"`
	PrimaryOS    string       `json:"os_primary"`
	FallbackOS   string       `json:"os_fallback,omitempty"`
	SourceFormat SourceFormat `json:"source_format,omitempty"`
	RowIndex     int          `json:"row_index"`
}

// ClassifiedVM is the classification result for one VMInputRow.
type ClassifiedVM struct {
	Name              string  `json:"name"`
	HostCluster       string  `json:"host_cluster,omitempty"`
	OSRaw             string  `json:"os_raw"`
	OSInterpreted     string  `json:"os_interpreted"`
	Tier              Tier    `json:"tier"`
	TierColor         string  `json:"tier_color"`
	Reason            string  `json:"reason"`
	MigrationGuidance string  `json:"migration_guidance"`
	Notes             *string `json:"notes"`
}
