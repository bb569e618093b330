package classifier

import (
	"context"

	"go.uber.org/zap"

	"vme-analyzer.io/analyzer/internal/domain"
)

// NoGuidance is returned when neither a family-specific nor a tier default
// guidance entry exists.
const NoGuidance = "No migration guidance available for this classification."

// resolveGuidance returns the family-specific text, then the tier default,
// then NoGuidance. Lookup failures are logged and treated as missing data.
func (e *Engine) resolveGuidance(ctx context.Context, tier domain.Tier, family string) string {
	if family != "" {
		g, err := e.store.FindGuidance(ctx, tier, family)
		if err != nil {
			e.log.Warn("guidance lookup failed",
				zap.String("tier", tier.String()),
				zap.String("family", family),
				zap.Error(err),
			)
		} else if g != nil {
			return g.Text
		}
	}

	g, err := e.store.FindDefaultGuidance(ctx, tier)
	if err != nil {
		e.log.Warn("default guidance lookup failed", zap.String("tier", tier.String()), zap.Error(err))
		return NoGuidance
	}
	if g == nil {
		return NoGuidance
	}
	return g.Text
}
