package detector

import (
	"sort"
	"time"

	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/shopspring/decimal"
)

// Evaluate classifies every venue pair in the snapshot. For a pair (A, B)
// in lexical venue order:
//
//	A.bid - threshold > B.ask  ->  buy on B, sell on A
//	A.ask + threshold < B.bid  ->  buy on A, sell on B
//
// Strict inequalities; ties are not opportunities. ImpliedSpread is the raw
// gap |buyAsk - sellBid|, without the threshold subtracted. A snapshot with
// fewer than two quotes yields nothing.
func Evaluate(snap types.Snapshot, threshold decimal.Decimal) []types.Opportunity {
	if len(snap.Quotes) < 2 {
		return nil
	}

	venues := make([]types.VenueID, 0, len(snap.Quotes))
	for vid := range snap.Quotes {
		venues = append(venues, vid)
	}
	sort.Slice(venues, func(i, j int) bool { return venues[i] < venues[j] })

	now := time.Now()
	var out []types.Opportunity
	for i := 0; i < len(venues); i++ {
		for j := i + 1; j < len(venues); j++ {
			a, b := snap.Quotes[venues[i]], snap.Quotes[venues[j]]

			switch {
			case a.Bid.Sub(threshold).GreaterThan(b.Ask):
				out = append(out, types.Opportunity{
					Instrument:    snap.Instrument,
					BuyVenue:      b.Venue,
					SellVenue:     a.Venue,
					Side:          types.BuyOnBSellOnA,
					ImpliedSpread: b.Ask.Sub(a.Bid).Abs(),
					Ts:            now,
				})
			case a.Ask.Add(threshold).LessThan(b.Bid):
				out = append(out, types.Opportunity{
					Instrument:    snap.Instrument,
					BuyVenue:      a.Venue,
					SellVenue:     b.Venue,
					Side:          types.BuyOnASellOnB,
					ImpliedSpread: a.Ask.Sub(b.Bid).Abs(),
					Ts:            now,
				})
			}
		}
	}
	return out
}
