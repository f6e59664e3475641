// Package scanner wires the whole detector together: venue construction,
// universe resolution and the standing polling loop.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orgr/arbitrage-bot/internal/config"
	"github.com/orgr/arbitrage-bot/internal/detector"
	"github.com/orgr/arbitrage-bot/internal/marketdata"
	imetrics "github.com/orgr/arbitrage-bot/internal/metrics"
	"github.com/orgr/arbitrage-bot/internal/sink"
	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/orgr/arbitrage-bot/internal/universe"
	"github.com/orgr/arbitrage-bot/internal/venue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Scanner struct {
	cfg    *config.Config
	log    *zap.Logger
	sink   sink.Sink
	venues map[types.VenueID]venue.Adapter
}

func New(cfg *config.Config, out sink.Sink, log *zap.Logger) *Scanner {
	return &Scanner{cfg: cfg, log: log, sink: out}
}

// Run builds the venue set, resolves the instrument universe and scans it
// every poll interval until ctx ends. It returns an error only for startup
// failures; a running scan ends with nil on shutdown.
func (s *Scanner) Run(ctx context.Context) error {
	listings, err := s.startup(ctx)
	if err != nil {
		return err
	}

	insts := universe.Resolve(listings)
	if max := s.cfg.Scan.MaxInstruments; max > 0 && len(insts) > max {
		insts = insts[:max]
	}
	imetrics.UniverseSize.Set(float64(len(insts)))
	s.log.Info("instrument universe resolved",
		zap.Int("instruments", len(insts)),
		zap.Int("venues", len(s.venues)),
	)
	if len(insts) == 0 {
		s.log.Warn("no instrument is listed on two or more venues; nothing to scan")
	}

	collector := marketdata.NewCollector(s.venues, s.cfg.FetchDeadline(), s.log)

	t := time.NewTicker(s.cfg.PollInterval())
	defer t.Stop()

	s.scanRound(ctx, collector, listings, insts)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scanner stopped")
			return nil
		case <-t.C:
			s.scanRound(ctx, collector, listings, insts)
		}
	}
}

// startup constructs adapters and lists instruments per venue. Unsupported
// or unavailable venues are dropped with a warning; fewer than two
// surviving venues aborts the run.
func (s *Scanner) startup(ctx context.Context) (universe.Listings, error) {
	s.venues = make(map[types.VenueID]venue.Adapter, len(s.cfg.Venues))
	listings := make(universe.Listings, len(s.cfg.Venues))

	for _, vc := range s.cfg.Venues {
		ad, err := venue.New(vc, s.log)
		if err != nil {
			if errors.Is(err, venue.ErrUnsupported) {
				s.log.Warn("skipping unsupported venue", zap.String("venue", string(vc.ID)), zap.Error(err))
				continue
			}
			return nil, err
		}

		listCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchDeadline())
		set, err := ad.ListInstruments(listCtx)
		cancel()
		if err != nil {
			s.log.Warn("venue dropped: listing instruments failed",
				zap.String("venue", string(vc.ID)),
				zap.Error(err),
			)
			continue
		}

		s.venues[vc.ID] = ad
		listings[vc.ID] = set
		s.log.Info("venue ready",
			zap.String("venue", string(vc.ID)),
			zap.String("kind", vc.Kind),
			zap.Int("instruments", len(set)),
		)
	}

	if len(s.venues) < 2 {
		return nil, fmt.Errorf("need at least 2 usable venues, have %d", len(s.venues))
	}
	return listings, nil
}

// scanRound collects and evaluates every instrument in the universe, at
// most MaxConcurrency instruments in flight. Per-venue pacing is the
// adapters' own job; the bound keeps the aggregate fan-out in check.
func (s *Scanner) scanRound(ctx context.Context, collector *marketdata.Collector, listings universe.Listings, insts []types.InstrumentID) {
	if ctx.Err() != nil || len(insts) == 0 {
		return
	}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Scan.MaxConcurrency)
	for _, inst := range insts {
		inst := inst
		g.Go(func() error {
			snap := collector.Collect(gctx, inst, universe.VenuesFor(listings, inst))
			for _, opp := range detector.Evaluate(snap, s.cfg.Scan.ThresholdValue) {
				imetrics.Opportunities.Inc()
				if err := s.sink.Report(gctx, opp); err != nil {
					imetrics.SinkErrors.Inc()
					s.log.Warn("sink report failed",
						zap.String("instrument", string(inst)),
						zap.Error(err),
					)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	imetrics.Rounds.Inc()
	s.log.Debug("round complete",
		zap.Int("instruments", len(insts)),
		zap.Duration("took", time.Since(start)),
	)
}
