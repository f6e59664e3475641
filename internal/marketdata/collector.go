// Package marketdata collects per-instrument top-of-book snapshots across
// venues. One collection round fans out to every venue concurrently, waits
// for all of them, and tolerates individual failures.
package marketdata

import (
	"context"
	"sync"
	"time"

	imetrics "github.com/orgr/arbitrage-bot/internal/metrics"
	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/orgr/arbitrage-bot/internal/venue"
	"go.uber.org/zap"
)

type Collector struct {
	venues   map[types.VenueID]venue.Adapter
	deadline time.Duration
	log      *zap.Logger
}

func NewCollector(venues map[types.VenueID]venue.Adapter, deadline time.Duration, log *zap.Logger) *Collector {
	return &Collector{venues: venues, deadline: deadline, log: log}
}

// Collect fetches the instrument's top of book from every given venue
// concurrently, each fetch under its own deadline. Failures, timeouts,
// empty books and malformed quotes become absences; nothing a single venue
// does can abort the others. Collect returns once every venue has resolved.
func (c *Collector) Collect(ctx context.Context, inst types.InstrumentID, venueIDs []types.VenueID) types.Snapshot {
	snap := types.Snapshot{
		Instrument: inst,
		Quotes:     make(map[types.VenueID]types.Quote, len(venueIDs)),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, vid := range venueIDs {
		ad, ok := c.venues[vid]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(vid types.VenueID, ad venue.Adapter) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, c.deadline)
			defer cancel()

			start := time.Now()
			q, err := ad.FetchTopOfBook(fetchCtx, inst)
			imetrics.FetchLatency.Observe(time.Since(start).Seconds())

			if err != nil {
				imetrics.FetchErrors.WithLabelValues(string(vid)).Inc()
				c.log.Warn("fetch failed",
					zap.String("venue", string(vid)),
					zap.String("instrument", string(inst)),
					zap.Error(err),
				)
				return
			}
			if q == nil {
				// Empty book: absence, not an error.
				return
			}
			if !q.Valid() {
				imetrics.FetchErrors.WithLabelValues(string(vid)).Inc()
				c.log.Warn("rejecting malformed quote",
					zap.String("venue", string(vid)),
					zap.String("instrument", string(inst)),
					zap.String("bid", q.Bid.String()),
					zap.String("ask", q.Ask.String()),
				)
				return
			}

			imetrics.QuotesCollected.WithLabelValues(string(vid)).Inc()
			mu.Lock()
			snap.Quotes[vid] = *q
			mu.Unlock()
		}(vid, ad)
	}
	wg.Wait()

	snap.Ts = time.Now()
	return snap
}
