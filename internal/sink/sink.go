// Package sink delivers classified opportunities to their consumers. A
// failing sink is logged and skipped; it never aborts a scan round or the
// remaining sinks.
package sink

import (
	"context"

	imetrics "github.com/orgr/arbitrage-bot/internal/metrics"
	"github.com/orgr/arbitrage-bot/internal/types"
	"go.uber.org/zap"
)

type Sink interface {
	Report(ctx context.Context, opp types.Opportunity) error
	Name() string
}

// LogSink writes one structured record per opportunity.
type LogSink struct {
	Log *zap.Logger
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Report(_ context.Context, opp types.Opportunity) error {
	s.Log.Info("opportunity",
		zap.String("instrument", string(opp.Instrument)),
		zap.String("buy_venue", string(opp.BuyVenue)),
		zap.String("sell_venue", string(opp.SellVenue)),
		zap.String("side", string(opp.Side)),
		zap.String("implied_spread", opp.ImpliedSpread.String()),
		zap.Time("ts", opp.Ts),
	)
	return nil
}

// Multi fans out to every sink, isolating failures per sink.
type Multi struct {
	sinks []Sink
	log   *zap.Logger
}

func NewMulti(log *zap.Logger, sinks ...Sink) *Multi {
	return &Multi{sinks: sinks, log: log}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Report(ctx context.Context, opp types.Opportunity) error {
	for _, s := range m.sinks {
		if err := s.Report(ctx, opp); err != nil {
			imetrics.SinkErrors.Inc()
			m.log.Warn("sink report failed",
				zap.String("sink", s.Name()),
				zap.String("instrument", string(opp.Instrument)),
				zap.Error(err),
			)
		}
	}
	return nil
}
