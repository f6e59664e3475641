package sink

import (
	"context"

	"github.com/orgr/arbitrage-bot/internal/dash"
	"github.com/orgr/arbitrage-bot/internal/types"
)

// DashSink feeds the HTTP dashboard store.
type DashSink struct {
	Store *dash.Store
}

func (s *DashSink) Name() string { return "dash" }

func (s *DashSink) Report(_ context.Context, opp types.Opportunity) error {
	s.Store.Update(opp)
	return nil
}
