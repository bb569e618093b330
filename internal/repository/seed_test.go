package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vme-analyzer.io/analyzer/internal/domain"
)

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)
	require.Len(t, seed.Matrix, 22)
	require.Len(t, seed.Guidance, 6)

	first := seed.Matrix[0]
	assert.Equal(t, "Windows Server", first.Family)
	assert.Equal(t, "2016,2019,2022,2025", first.Versions)
	assert.Equal(t, domain.TierOfficiallySupported, first.Tier)

	// One default per tier.
	tiers := map[domain.Tier]bool{}
	for _, g := range seed.GuidanceEntries() {
		assert.True(t, g.IsDefault())
		assert.NotEmpty(t, g.Text)
		tiers[g.Tier] = true
	}
	for _, tier := range domain.AllTiers {
		assert.True(t, tiers[tier], "missing guidance for %s", tier)
	}
}

func TestDefaultSeed_GuidanceFolded(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)
	for _, g := range seed.Guidance {
		if g.Tier == domain.TierOfficiallySupported {
			assert.Equal(t, "VM is HPE-validated and ready for migration to HPE VME with no OS changes required. "+
				"Proceed with standard P2V migration tooling.", g.Text)
		}
	}
}

func TestParseSeed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "matrix: [unclosed"},
		{"unknown tier", "matrix:\n  - {vendor: X, os_family: Y, versions: any, tier: maybe}\n"},
		{"missing versions", "matrix:\n  - {vendor: X, os_family: Y, versions: ' , ', tier: needs_info}\n"},
		{"duplicate guidance", "guidance:\n  - {tier: needs_info, text: a}\n  - {tier: needs_info, text: b}\n"},
		{"bad guidance tier", "guidance:\n  - {tier: nope, text: a}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
matrix:
  - vendor: Acme
    os_family: AcmeOS
    versions: "1,2"
    tier: needs_review
guidance:
  - tier: needs_review
    os_family: AcmeOS
    text: Ask Acme.
`), 0o600))

	seed, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, seed.Matrix, 1)
	assert.Equal(t, "AcmeOS", seed.GuidanceEntries()[0].Family)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
