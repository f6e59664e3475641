// Package venue defines the capability boundary the scanner depends on.
// Concrete venues live in subpackages and register themselves by kind.
package venue

import (
	"context"
	"errors"

	"github.com/orgr/arbitrage-bot/internal/types"
)

// Adapter is one market venue. Implementations own their transport,
// authentication and request pacing, and may be called concurrently.
type Adapter interface {
	ID() types.VenueID

	// ListInstruments returns every instrument the venue quotes, keyed by
	// the canonical BASE/QUOTE identifier.
	ListInstruments(ctx context.Context) (map[types.InstrumentID]struct{}, error)

	// FetchTopOfBook returns the current best bid/ask. A book with no bids
	// or no asks yields (nil, nil): absence, not an error.
	FetchTopOfBook(ctx context.Context, instrument types.InstrumentID) (*types.Quote, error)
}

var (
	ErrUnsupported = errors.New("venue: unsupported")
	ErrUnavailable = errors.New("venue: unavailable")
	ErrRateLimited = errors.New("venue: rate limited")
	ErrTimeout     = errors.New("venue: timeout")
	ErrTransport   = errors.New("venue: transport error")
)
