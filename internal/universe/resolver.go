// Package universe decides which instruments are worth scanning: anything
// quoted on at least two of the configured venues.
package universe

import (
	"sort"

	"github.com/orgr/arbitrage-bot/internal/types"
)

// Listings maps each venue to the set of instruments it quotes.
type Listings map[types.VenueID]map[types.InstrumentID]struct{}

// Resolve returns every instrument listed on two or more venues, sorted so
// the result does not depend on map iteration order. An empty result just
// means there is nothing to arbitrage.
func Resolve(listings Listings) []types.InstrumentID {
	counts := make(map[types.InstrumentID]int, 64)
	for _, set := range listings {
		for inst := range set {
			counts[inst]++
		}
	}
	out := make([]types.InstrumentID, 0, len(counts))
	for inst, n := range counts {
		if n >= 2 {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// VenuesFor returns the venues listing the given instrument, sorted.
func VenuesFor(listings Listings, inst types.InstrumentID) []types.VenueID {
	out := make([]types.VenueID, 0, len(listings))
	for vid, set := range listings {
		if _, ok := set[inst]; ok {
			out = append(out, vid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
