package venue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/orgr/arbitrage-bot/internal/config"
	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func init() {
	RegisterKind("static", func(vc config.VenueCfg, _ *zap.Logger) (Adapter, error) {
		s := NewStatic(vc.ID)
		for _, q := range vc.Quotes {
			bid, err := decimal.NewFromString(q.Bid)
			if err != nil {
				return nil, fmt.Errorf("static quote %s bid: %w", q.Instrument, err)
			}
			ask, err := decimal.NewFromString(q.Ask)
			if err != nil {
				return nil, fmt.Errorf("static quote %s ask: %w", q.Instrument, err)
			}
			s.SetQuote(q.Instrument, bid, ask)
		}
		return s, nil
	})
}

// Static serves fixture quotes from memory. Used for dry runs and as the
// test double for the Adapter boundary.
type Static struct {
	id types.VenueID

	mu     sync.RWMutex
	quotes map[types.InstrumentID]types.Quote
	empty  map[types.InstrumentID]struct{} // listed, but book is empty

	// Err, when set, fails every call; Delay stalls fetches. Both are for
	// exercising the failure paths in tests.
	Err   error
	Delay time.Duration
}

func NewStatic(id types.VenueID) *Static {
	return &Static{
		id:     id,
		quotes: make(map[types.InstrumentID]types.Quote, 8),
		empty:  make(map[types.InstrumentID]struct{}),
	}
}

func (s *Static) ID() types.VenueID { return s.id }

func (s *Static) SetQuote(inst types.InstrumentID, bid, ask decimal.Decimal) {
	s.mu.Lock()
	s.quotes[inst] = types.Quote{
		Venue:      s.id,
		Instrument: inst,
		Bid:        bid,
		Ask:        ask,
		ObservedAt: time.Now(),
	}
	s.mu.Unlock()
}

// SetEmptyBook lists the instrument but makes its book empty.
func (s *Static) SetEmptyBook(inst types.InstrumentID) {
	s.mu.Lock()
	s.empty[inst] = struct{}{}
	s.mu.Unlock()
}

func (s *Static) ListInstruments(ctx context.Context) (map[types.InstrumentID]struct{}, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[types.InstrumentID]struct{}, len(s.quotes)+len(s.empty))
	for inst := range s.quotes {
		out[inst] = struct{}{}
	}
	for inst := range s.empty {
		out[inst] = struct{}{}
	}
	return out, nil
}

func (s *Static) FetchTopOfBook(ctx context.Context, inst types.InstrumentID) (*types.Quote, error) {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		case <-t.C:
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.empty[inst]; ok {
		return nil, nil
	}
	q, ok := s.quotes[inst]
	if !ok {
		return nil, nil
	}
	return &q, nil
}
