// Package normalizer maps free-text guest OS strings from VM inventory exports
// to a known OS family, vendor and version with a confidence score.
//
// Normalize never fails: unrecognizable input yields a low-confidence result
// which the classification engine routes to a tier that asks for more data.
//
// Import Path: vme-analyzer.io/analyzer/internal/normalizer
package normalizer

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"vme-analyzer.io/analyzer/internal/pkg/logger"
)

// DefaultThreshold is the minimum fuzzy score (percent) for a confident match.
const DefaultThreshold = 70.0

// Unknown is the interpreted name of input that could not be read at all.
const Unknown = "Unknown"

var (
	// (32-bit), (64-bit), (32 bit), (x86), (x86-64) and friends.
	noiseRE = regexp.MustCompile(`(?i)\s*\(\s*(?:32|64)\s*[- ]?\s*bit\s*\)\s*|\s*\(x86(?:-64)?\)\s*`)

	// Most specific first: "2012 R2", "2022", "22.04 LTS", "15 SP4", "8".
	versionRE = regexp.MustCompile(`\b(\d{4}\s+R\d|\d{4}|\d+\.\d+(?:\.\d+)?(?:\s+LTS)?|\d+(?:\s+SP\d)?)\b`)

	spaceRE = regexp.MustCompile(`\s+`)
)

// NormalizedOS is the structured reading of a raw OS string.
// Vendor, Family and Version are empty when unknown.
type NormalizedOS struct {
	Interpreted   string  `json:"os_interpreted"`
	Vendor        string  `json:"os_vendor,omitempty"`
	Family        string  `json:"os_family,omitempty"`
	Version       string  `json:"os_version,omitempty"`
	Confidence    float64 `json:"confidence"`
	LowConfidence bool    `json:"low_confidence"`
}

func unknownOS() NormalizedOS {
	return NormalizedOS{Interpreted: Unknown, LowConfidence: true}
}

type indexEntry struct {
	variant string
	pattern *Pattern
}

// index is the flattened, preprocessed variant list of Library, built once.
var index = buildIndex(Library)

func buildIndex(patterns []Pattern) []indexEntry {
	var out []indexEntry
	for i := range patterns {
		p := &patterns[i]
		for _, v := range p.Variants {
			out = append(out, indexEntry{variant: preprocess(v), pattern: p})
		}
	}
	return out
}

// Normalizer matches raw OS strings against the pattern library.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	threshold float64
	index     []indexEntry
	log       *zap.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithThreshold sets the confidence threshold as a percentage (0–100).
func WithThreshold(percent float64) Option {
	return func(n *Normalizer) { n.threshold = percent / 100 }
}

// WithLibrary replaces the built-in pattern library.
func WithLibrary(patterns []Pattern) Option {
	return func(n *Normalizer) { n.index = buildIndex(patterns) }
}

// WithLogger sets the logger used for low-confidence and fault reports.
func WithLogger(l *zap.Logger) Option {
	return func(n *Normalizer) { n.log = l }
}

// New creates a Normalizer using the built-in library and DefaultThreshold.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		threshold: DefaultThreshold / 100,
		index:     index,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.log == nil {
		n.log = logger.Named("normalizer")
	}
	return n
}

// Threshold returns the confidence threshold on a 0–1 scale.
func (n *Normalizer) Threshold() float64 { return n.threshold }

// Normalize reads a raw OS string. It never panics; internal faults yield the
// Unknown result.
func (n *Normalizer) Normalize(raw string) (out NormalizedOS) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error("normalize OS string failed, returning Unknown",
				zap.String("raw", raw),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			out = unknownOS()
		}
	}()
	return n.normalize(raw)
}

func (n *Normalizer) normalize(raw string) NormalizedOS {
	if strings.TrimSpace(raw) == "" {
		return unknownOS()
	}

	folded := norm.NFKC.String(raw)
	version := ExtractVersion(folded)
	cleaned := preprocess(folded)

	if len(n.index) == 0 {
		n.log.Warn("no OS patterns loaded, returning raw string", zap.String("raw", raw))
		return NormalizedOS{
			Interpreted:   strings.TrimSpace(raw),
			Version:       version,
			LowConfidence: true,
		}
	}

	best, bestScore := -1, -1.0
	for i, e := range n.index {
		// Strictly greater keeps the first of equal scores.
		if s := TokenSortRatio(cleaned, e.variant); s > bestScore {
			best, bestScore = i, s
		}
	}

	matched := n.index[best].pattern
	confidence := bestScore / 100
	low := confidence < n.threshold

	interpreted := matched.CanonicalName
	if version != "" {
		interpreted = matched.CanonicalName + " " + version
	}

	if low {
		n.log.Warn("low confidence OS match",
			zap.String("raw", raw),
			zap.Float64("confidence", confidence),
			zap.String("matched", matched.CanonicalName),
		)
	} else {
		n.log.Debug("normalized OS",
			zap.String("raw", raw),
			zap.String("interpreted", interpreted),
			zap.Float64("confidence", confidence),
		)
	}

	return NormalizedOS{
		Interpreted:   interpreted,
		Vendor:        matched.Vendor,
		Family:        matched.Family,
		Version:       version,
		Confidence:    confidence,
		LowConfidence: low,
	}
}

// StripNoise removes bit-width and architecture qualifiers.
func StripNoise(s string) string {
	return strings.TrimSpace(noiseRE.ReplaceAllString(s, " "))
}

// ExtractVersion returns the first version token of the noise-stripped
// string, or "" when there is none.
func ExtractVersion(raw string) string {
	m := versionRE.FindStringSubmatch(StripNoise(raw))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func preprocess(s string) string {
	s = strings.ToLower(StripNoise(s))
	return spaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}
