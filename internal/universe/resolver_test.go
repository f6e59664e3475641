package universe

import (
	"testing"

	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/stretchr/testify/assert"
)

func set(insts ...types.InstrumentID) map[types.InstrumentID]struct{} {
	out := make(map[types.InstrumentID]struct{}, len(insts))
	for _, i := range insts {
		out[i] = struct{}{}
	}
	return out
}

func TestResolve_TwoOfThreeQualifies(t *testing.T) {
	l := Listings{
		"mexc":    set("BTC/USDT", "ETH/USDT", "SOL/USDT"),
		"binance": set("BTC/USDT", "ETH/USDT"),
		"gate":    set("ETH/USDT", "DOGE/USDT"),
	}

	got := Resolve(l)

	// Present on exactly 2 of 3 venues still qualifies; singletons do not.
	assert.Equal(t, []types.InstrumentID{"BTC/USDT", "ETH/USDT"}, got)
}

func TestResolve_Empty(t *testing.T) {
	assert.Empty(t, Resolve(Listings{"mexc": set()}))
	assert.Empty(t, Resolve(Listings{
		"mexc":    set("BTC/USDT"),
		"binance": set("ETH/USDT"),
	}))
}

func TestResolve_DeterministicUnderReordering(t *testing.T) {
	a := Listings{
		"v1": set("A/U", "B/U", "C/U"),
		"v2": set("B/U", "C/U"),
		"v3": set("C/U", "A/U"),
	}
	b := Listings{
		"v3": set("A/U", "C/U"),
		"v1": set("C/U", "B/U", "A/U"),
		"v2": set("C/U", "B/U"),
	}

	want := Resolve(a)
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, Resolve(b))
	}
}

func TestVenuesFor(t *testing.T) {
	l := Listings{
		"mexc":    set("BTC/USDT"),
		"binance": set("BTC/USDT", "ETH/USDT"),
		"gate":    set("ETH/USDT"),
	}

	assert.Equal(t, []types.VenueID{"binance", "mexc"}, VenuesFor(l, "BTC/USDT"))
	assert.Equal(t, []types.VenueID{"binance", "gate"}, VenuesFor(l, "ETH/USDT"))
	assert.Empty(t, VenuesFor(l, "SOL/USDT"))
}
