package sink

import (
	"context"

	"github.com/orgr/arbitrage-bot/internal/connectors/redisfeed"
	"github.com/orgr/arbitrage-bot/internal/types"
)

// RedisSink publishes opportunities to the redis feed so external
// consumers (alerting, oppwatch) can pick them up.
type RedisSink struct {
	Pub *redisfeed.Publisher
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Report(ctx context.Context, opp types.Opportunity) error {
	return s.Pub.PublishOpportunity(ctx, opp)
}
