package classifier

import (
	"context"
	"fmt"

	"vme-analyzer.io/analyzer/internal/domain"
	"vme-analyzer.io/analyzer/internal/normalizer"
)

// Families handled without consulting the matrix, or when it has no rows.
var (
	vdiFamilies = map[string]struct{}{
		"Citrix Virtual Apps": {},
		"Omnissa Horizon":     {},
		"HP Anyware":          {},
	}
	notSupportedFamilies = map[string]struct{}{
		"DOS":     {},
		"OS/2":    {},
		"NetWare": {},
		"Solaris": {},
	}
	unofficialFamilies = map[string]struct{}{
		"Ubuntu":  {},
		"Debian":  {},
		"Fedora":  {},
		"CentOS":  {},
		"FreeBSD": {},
	}
)

func inSet(set map[string]struct{}, family string) bool {
	_, ok := set[family]
	return ok
}

// facts is everything a rule may look at for one row.
type facts struct {
	raw string
	os  normalizer.NormalizedOS
}

// decision is the tier and reason a rule settles on.
type decision struct {
	tier   domain.Tier
	reason string
}

// reasonFor renders the reason sentence for tier. Matrix hits and the
// family-set fallbacks share these templates.
func reasonFor(tier domain.Tier, f facts) string {
	switch tier {
	case domain.TierOfficiallySupported:
		return fmt.Sprintf("Matched %s — HPE validated in VME matrix", f.os.Interpreted)
	case domain.TierUnofficiallySupported:
		return fmt.Sprintf("%s is KVM-compatible but not HPE-validated", f.os.Interpreted)
	case domain.TierNeedsReview:
		return fmt.Sprintf("OS version ambiguous for %s — verify exact version with customer", f.os.Interpreted)
	case domain.TierNotSupported:
		return fmt.Sprintf("%s is not compatible with the KVM hypervisor underlying HPE VME", f.os.Interpreted)
	case domain.TierSupportedVDI:
		return fmt.Sprintf("%s is a validated VDI workload on HPE VME", f.os.Interpreted)
	default:
		return fmt.Sprintf("OS string '%s' lacks sufficient detail for classification", f.raw)
	}
}

// rule is one step of the tier decision list. A rule that does not apply
// returns ok=false and the next rule is tried.
type rule struct {
	name string
	eval func(ctx context.Context, e *Engine, f facts) (d decision, ok bool, err error)
}

// tierRules is evaluated top to bottom; the first applicable rule wins.
var tierRules = []rule{
	{name: "empty_os", eval: func(_ context.Context, _ *Engine, f facts) (decision, bool, error) {
		if isBlank(f.raw) {
			return decision{domain.TierNeedsInfo, "OS string is empty — insufficient data to classify"}, true, nil
		}
		return decision{}, false, nil
	}},
	{name: "low_confidence", eval: func(_ context.Context, _ *Engine, f facts) (decision, bool, error) {
		if f.os.LowConfidence {
			return decision{domain.TierNeedsInfo, fmt.Sprintf(
				"Low confidence OS match (score: %.2f) — insufficient data to classify '%s'",
				f.os.Confidence, f.raw)}, true, nil
		}
		return decision{}, false, nil
	}},
	{name: "vdi_family", eval: func(_ context.Context, _ *Engine, f facts) (decision, bool, error) {
		if inSet(vdiFamilies, f.os.Family) {
			return decision{domain.TierSupportedVDI, reasonFor(domain.TierSupportedVDI, f)}, true, nil
		}
		return decision{}, false, nil
	}},
	{name: "matrix", eval: func(ctx context.Context, e *Engine, f facts) (decision, bool, error) {
		entry, err := e.lookupMatrix(ctx, f)
		if err != nil || entry == nil || !entry.Tier.Valid() {
			return decision{}, false, err
		}
		return decision{entry.Tier, reasonFor(entry.Tier, f)}, true, nil
	}},
	{name: "not_supported_family", eval: func(_ context.Context, _ *Engine, f facts) (decision, bool, error) {
		if inSet(notSupportedFamilies, f.os.Family) {
			return decision{domain.TierNotSupported, reasonFor(domain.TierNotSupported, f)}, true, nil
		}
		return decision{}, false, nil
	}},
	{name: "unofficial_family", eval: func(_ context.Context, _ *Engine, f facts) (decision, bool, error) {
		if inSet(unofficialFamilies, f.os.Family) {
			return decision{domain.TierUnofficiallySupported, reasonFor(domain.TierUnofficiallySupported, f)}, true, nil
		}
		return decision{}, false, nil
	}},
	{name: "version_missing", eval: func(_ context.Context, _ *Engine, f facts) (decision, bool, error) {
		if f.os.Family != "" && f.os.Version == "" {
			return decision{domain.TierNeedsReview, fmt.Sprintf(
				"OS family '%s' identified but version is missing — review with customer to confirm",
				f.os.Family)}, true, nil
		}
		return decision{}, false, nil
	}},
	{name: "version_unmatched", eval: func(_ context.Context, _ *Engine, f facts) (decision, bool, error) {
		if f.os.Family != "" && f.os.Version != "" {
			return decision{domain.TierNeedsReview, reasonFor(domain.TierNeedsReview, f)}, true, nil
		}
		return decision{}, false, nil
	}},
	{name: "catch_all", eval: func(_ context.Context, _ *Engine, f facts) (decision, bool, error) {
		return decision{domain.TierNeedsInfo, reasonFor(domain.TierNeedsInfo, f)}, true, nil
	}},
}

// assignTier runs the rule list and reports which rule decided.
func (e *Engine) assignTier(ctx context.Context, f facts) (decision, string, error) {
	for _, r := range tierRules {
		d, ok, err := r.eval(ctx, e, f)
		if err != nil {
			return decision{}, r.name, fmt.Errorf("rule %s: %w", r.name, err)
		}
		if ok {
			return d, r.name, nil
		}
	}
	// catch_all always applies.
	panic("classifier: no tier rule applied")
}
