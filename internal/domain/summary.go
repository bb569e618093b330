package domain

import "math"

// Summary aggregates a classified batch by tier.
type Summary struct {
	Total   int              `json:"total"`
	Counts  map[Tier]int     `json:"counts"`
	Percent map[Tier]float64 `json:"percent"`
}

// Summarize counts results per tier. Every tier is present in the maps, including
// tiers with no rows. Percentages are rounded to one decimal place.
func Summarize(results []ClassifiedVM) Summary {
	s := Summary{
		Total:   len(results),
		Counts:  make(map[Tier]int, len(AllTiers)),
		Percent: make(map[Tier]float64, len(AllTiers)),
	}
	for _, t := range AllTiers {
		s.Counts[t] = 0
	}
	for _, r := range results {
		s.Counts[r.Tier]++
	}
	for t, n := range s.Counts {
		if s.Total == 0 {
			s.Percent[t] = 0
			continue
		}
		s.Percent[t] = math.Round(float64(n)*1000/float64(s.Total)) / 10
	}
	return s
}
