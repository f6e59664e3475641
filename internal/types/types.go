package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// VenueID identifies a market venue. Stable for the lifetime of a run.
type VenueID string

// InstrumentID is a venue-neutral instrument identifier in BASE/QUOTE form,
// e.g. "BTC/USDT". Mapping to venue-local symbols is each adapter's job.
type InstrumentID string

// Quote is one venue's top of book for one instrument. Bid and Ask are
// strictly positive; an empty order book yields no Quote at all.
type Quote struct {
	Venue      VenueID
	Instrument InstrumentID
	Bid        decimal.Decimal
	Ask        decimal.Decimal
	ObservedAt time.Time
}

// Valid reports whether both sides are present and strictly positive.
func (q Quote) Valid() bool {
	return q.Bid.IsPositive() && q.Ask.IsPositive()
}

// Snapshot holds the quotes collected for one instrument within one round.
// Venues that failed, timed out or had an empty book are simply absent.
type Snapshot struct {
	Instrument InstrumentID
	Quotes     map[VenueID]Quote
	Ts         time.Time
}

type Side string

const (
	BuyOnASellOnB Side = "BUY_ON_A_SELL_ON_B"
	BuyOnBSellOnA Side = "BUY_ON_B_SELL_ON_A"
	SideNone      Side = "NONE"
)

// Opportunity is a classified cross-venue price discrepancy. Values are
// produced fresh each round and never mutated.
type Opportunity struct {
	Instrument    InstrumentID
	BuyVenue      VenueID
	SellVenue     VenueID
	Side          Side
	ImpliedSpread decimal.Decimal
	Ts            time.Time
}
