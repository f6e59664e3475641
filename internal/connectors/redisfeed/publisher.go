package redisfeed

import (
	"context"

	"github.com/orgr/arbitrage-bot/internal/config"
	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/redis/go-redis/v9"
)

type Publisher struct {
	rdb      *redis.Client
	stream   string
	active   string
	latestNS string
}

func NewPublisher(cfg *config.Config) *Publisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	})
	return &Publisher{
		rdb:      rdb,
		stream:   cfg.Redis.Stream,
		active:   cfg.Redis.ActiveKey,
		latestNS: cfg.Redis.LatestNS,
	}
}

// PublishOpportunity appends the opportunity to the stream, keeps the
// latest record per instrument/pair in a HASH and refreshes the active
// ZSET so consumers can find live instruments.
func (p *Publisher) PublishOpportunity(ctx context.Context, opp types.Opportunity) error {
	tsMs := opp.Ts.UnixMilli()
	fields := map[string]interface{}{
		"instrument":     string(opp.Instrument),
		"buy_venue":      string(opp.BuyVenue),
		"sell_venue":     string(opp.SellVenue),
		"side":           string(opp.Side),
		"implied_spread": opp.ImpliedSpread.String(),
		"ts_ms":          tsMs,
	}

	if err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 10000,
		Approx: true,
		Values: fields,
	}).Err(); err != nil {
		return err
	}

	latestKey := p.latestNS + string(opp.Instrument) + ":" + string(opp.BuyVenue) + ":" + string(opp.SellVenue)
	if err := p.rdb.HSet(ctx, latestKey, fields).Err(); err != nil {
		return err
	}

	return p.rdb.ZAdd(ctx, p.active, redis.Z{
		Score: float64(tsMs), Member: string(opp.Instrument),
	}).Err()
}

func (p *Publisher) Close() error { return p.rdb.Close() }
