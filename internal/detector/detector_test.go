package detector

import (
	"testing"
	"time"

	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const btc = types.InstrumentID("BTC/USDT")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quote(v types.VenueID, bid, ask string) types.Quote {
	return types.Quote{
		Venue:      v,
		Instrument: btc,
		Bid:        dec(bid),
		Ask:        dec(ask),
		ObservedAt: time.Now(),
	}
}

func snapOf(quotes ...types.Quote) types.Snapshot {
	s := types.Snapshot{Instrument: btc, Quotes: make(map[types.VenueID]types.Quote), Ts: time.Now()}
	for _, q := range quotes {
		s.Quotes[q.Venue] = q
	}
	return s
}

// Scenario A: X 100/101, Y 103/104, threshold 0 -> buy on X, sell on Y,
// implied spread 2.
func TestEvaluate_CrossedBooks(t *testing.T) {
	snap := snapOf(quote("x", "100", "101"), quote("y", "103", "104"))

	opps := Evaluate(snap, decimal.Zero)

	require.Len(t, opps, 1)
	opp := opps[0]
	assert.Equal(t, types.VenueID("x"), opp.BuyVenue)
	assert.Equal(t, types.VenueID("y"), opp.SellVenue)
	assert.Equal(t, types.BuyOnASellOnB, opp.Side)
	assert.True(t, opp.ImpliedSpread.Equal(dec("2")), "spread = %s", opp.ImpliedSpread)
}

// Scenario B: same books, threshold 3 -> the 2-unit gap no longer clears.
func TestEvaluate_ThresholdSuppresses(t *testing.T) {
	snap := snapOf(quote("x", "100", "101"), quote("y", "103", "104"))

	assert.Empty(t, Evaluate(snap, dec("3")))
}

func TestEvaluate_OppositeDirection(t *testing.T) {
	// First venue's bid clears the second venue's ask.
	snap := snapOf(quote("x", "110", "111"), quote("y", "103", "104"))

	opps := Evaluate(snap, decimal.Zero)

	require.Len(t, opps, 1)
	opp := opps[0]
	assert.Equal(t, types.VenueID("y"), opp.BuyVenue)
	assert.Equal(t, types.VenueID("x"), opp.SellVenue)
	assert.Equal(t, types.BuyOnBSellOnA, opp.Side)
	assert.True(t, opp.ImpliedSpread.Equal(dec("6"))) // |104 - 110|
}

func TestEvaluate_BoundaryEqualityIsNotAnOpportunity(t *testing.T) {
	// y.bid == x.ask exactly, threshold 0: strict inequality required.
	snap := snapOf(quote("x", "100", "101"), quote("y", "101", "102"))
	assert.Empty(t, Evaluate(snap, decimal.Zero))

	// x.bid == y.ask exactly in the other direction.
	snap = snapOf(quote("x", "104", "105"), quote("y", "103", "104"))
	assert.Empty(t, Evaluate(snap, decimal.Zero))

	// One tick past the boundary fires.
	snap = snapOf(quote("x", "100", "101"), quote("y", "101.01", "102"))
	assert.Len(t, Evaluate(snap, decimal.Zero), 1)
}

func TestEvaluate_FewerThanTwoQuotes(t *testing.T) {
	assert.Empty(t, Evaluate(snapOf(), decimal.Zero))
	assert.Empty(t, Evaluate(snapOf(quote("x", "100", "101")), decimal.Zero))
}

func TestEvaluate_AtMostOneDirectionPerPair(t *testing.T) {
	cases := []types.Snapshot{
		snapOf(quote("x", "100", "101"), quote("y", "103", "104")),
		snapOf(quote("x", "110", "111"), quote("y", "103", "104")),
		snapOf(quote("x", "100", "101"), quote("y", "100", "101")),
	}
	for _, snap := range cases {
		opps := Evaluate(snap, decimal.Zero)
		assert.LessOrEqual(t, len(opps), 1)
	}
}

func TestEvaluate_ThresholdMonotonicity(t *testing.T) {
	snap := snapOf(
		quote("x", "100", "101"),
		quote("y", "103", "104"),
		quote("z", "108", "109"),
	)

	prev := len(Evaluate(snap, decimal.Zero))
	for _, th := range []string{"1", "2.5", "5", "8", "20"} {
		n := len(Evaluate(snap, dec(th)))
		assert.LessOrEqual(t, n, prev, "threshold %s added opportunities", th)
		prev = n
	}
	assert.Zero(t, prev)
}

// Scenario D: three venues with pairwise-crossing prices are evaluated
// combinatorially, not just adjacent pairs.
func TestEvaluate_ThreeVenuesCombinatorial(t *testing.T) {
	snap := snapOf(
		quote("x", "100", "101"),
		quote("y", "103", "104"),
		quote("z", "106", "107"),
	)

	opps := Evaluate(snap, decimal.Zero)

	require.Len(t, opps, 3)
	type key struct{ buy, sell types.VenueID }
	got := map[key]decimal.Decimal{}
	for _, o := range opps {
		got[key{o.BuyVenue, o.SellVenue}] = o.ImpliedSpread
		assert.False(t, o.ImpliedSpread.IsNegative())
	}
	assert.True(t, got[key{"x", "y"}].Equal(dec("2")))
	assert.True(t, got[key{"x", "z"}].Equal(dec("5")))
	assert.True(t, got[key{"y", "z"}].Equal(dec("2")))
}

func TestEvaluate_SpreadNeverNegative(t *testing.T) {
	snaps := []types.Snapshot{
		snapOf(quote("x", "100", "101"), quote("y", "103", "104")),
		snapOf(quote("x", "110", "111"), quote("y", "103", "104")),
		snapOf(quote("x", "0.00001", "0.00002"), quote("y", "0.00005", "0.00006")),
	}
	for _, snap := range snaps {
		for _, opp := range Evaluate(snap, decimal.Zero) {
			assert.False(t, opp.ImpliedSpread.IsNegative())
			buy := snap.Quotes[opp.BuyVenue]
			sell := snap.Quotes[opp.SellVenue]
			assert.True(t, opp.ImpliedSpread.Equal(buy.Ask.Sub(sell.Bid).Abs()))
		}
	}
}
