package classifier

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"vme-analyzer.io/analyzer/internal/domain"
)

// lookupMatrix picks the matrix entry for the row's family, or nil when the
// family is unknown or has no entries.
func (e *Engine) lookupMatrix(ctx context.Context, f facts) (*domain.MatrixEntry, error) {
	if f.os.Family == "" {
		return nil, nil
	}
	entries, err := e.store.FindMatrixEntries(ctx, f.os.Family)
	if err != nil {
		return nil, fmt.Errorf("query matrix for family %q: %w", f.os.Family, err)
	}
	return selectEntry(entries, f.os.Version, f.raw), nil
}

// selectEntry chooses among a family's entries in three passes:
//  1. the extracted version is one of the entry's tokens, or the entry is "any";
//  2. the entry is "any", or one of its tokens occurs in the raw string
//     (non-numeric versions such as "XP" or "Vista");
//  3. the first entry.
func selectEntry(entries []domain.MatrixEntry, version, raw string) *domain.MatrixEntry {
	if len(entries) == 0 {
		return nil
	}

	if version != "" {
		// VersionTokens are lower-cased, so "2012 r2" matches "2012 R2".
		v := strings.ToLower(version)
		for i := range entries {
			tokens := entries[i].VersionTokens()
			if slices.Contains(tokens, v) || slices.Contains(tokens, domain.AnyVersion) {
				return &entries[i]
			}
		}
	}

	rawLower := strings.ToLower(raw)
	for i := range entries {
		tokens := entries[i].VersionTokens()
		if slices.Contains(tokens, domain.AnyVersion) {
			return &entries[i]
		}
		if rawLower == "" {
			continue
		}
		for _, tok := range tokens {
			if strings.Contains(rawLower, tok) {
				return &entries[i]
			}
		}
	}

	return &entries[0]
}
