package repository

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vme-analyzer.io/analyzer/internal/domain"
)

//go:embed seed.yaml
var defaultSeedYAML []byte

// Seed is the initial content of the matrix and guidance tables.
type Seed struct {
	Matrix   []SeedMatrixRow   `yaml:"matrix"`
	Guidance []SeedGuidanceRow `yaml:"guidance"`
}

// SeedMatrixRow is one matrix row in a seed file.
type SeedMatrixRow struct {
	Vendor   string      `yaml:"vendor"`
	Family   string      `yaml:"os_family"`
	Versions string      `yaml:"versions"`
	Tier     domain.Tier `yaml:"tier"`
	Notes    string      `yaml:"notes"`
}

// SeedGuidanceRow is one guidance row in a seed file. An empty family marks
// the tier default.
type SeedGuidanceRow struct {
	Tier   domain.Tier `yaml:"tier"`
	Family string      `yaml:"os_family,omitempty"`
	Text   string      `yaml:"text"`
}

// DefaultSeed returns the built-in seed.
func DefaultSeed() (Seed, error) {
	return ParseSeed(defaultSeedYAML)
}

// LoadSeedFile reads a seed from a YAML file.
func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates seed YAML.
func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	for i, e := range s.MatrixEntries() {
		if err := ValidateMatrixEntry(e); err != nil {
			return Seed{}, fmt.Errorf("seed matrix row %d: %w", i, err)
		}
	}
	type key struct {
		tier   domain.Tier
		family string
	}
	seen := make(map[key]bool, len(s.Guidance))
	for i, g := range s.Guidance {
		if !g.Tier.Valid() {
			return Seed{}, fmt.Errorf("seed guidance row %d: %w", i, invalid("unknown tier "+g.Tier.String()))
		}
		k := key{g.Tier, g.Family}
		if seen[k] {
			return Seed{}, fmt.Errorf("seed guidance row %d: duplicate (%s, %q)", i, g.Tier, g.Family)
		}
		seen[k] = true
	}
	return s, nil
}

// MatrixEntries converts the seed matrix rows to domain entries without ids.
func (s Seed) MatrixEntries() []domain.MatrixEntry {
	out := make([]domain.MatrixEntry, 0, len(s.Matrix))
	for _, r := range s.Matrix {
		out = append(out, domain.MatrixEntry{
			Vendor:   r.Vendor,
			Family:   r.Family,
			Versions: r.Versions,
			Tier:     r.Tier,
			Notes:    r.Notes,
		})
	}
	return out
}

// GuidanceEntries converts the seed guidance rows to domain entries without ids.
func (s Seed) GuidanceEntries() []domain.GuidanceEntry {
	out := make([]domain.GuidanceEntry, 0, len(s.Guidance))
	for _, r := range s.Guidance {
		out = append(out, domain.GuidanceEntry{Tier: r.Tier, Family: r.Family, Text: r.Text})
	}
	return out
}
