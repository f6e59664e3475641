package redisfeed

import (
	"context"
	"strconv"
	"time"

	"github.com/orgr/arbitrage-bot/internal/config"
	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type Consumer struct {
	rdb       *redis.Client
	stream    string
	activeKey string
}

func NewConsumer(cfg *config.Config) *Consumer {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	})
	return &Consumer{
		rdb:       rdb,
		stream:    cfg.Redis.Stream,
		activeKey: cfg.Redis.ActiveKey,
	}
}

// ActiveInstruments returns instruments with opportunities newer than
// sinceMs from the active ZSET.
func (c *Consumer) ActiveInstruments(ctx context.Context, sinceMs int64) ([]string, error) {
	return c.rdb.ZRangeByScore(ctx, c.activeKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(sinceMs, 10),
		Max: "+inf",
	}).Result()
}

// Tail blocks on the opportunity stream and forwards decoded records until
// ctx ends. Malformed records are skipped.
func (c *Consumer) Tail(ctx context.Context, out chan<- types.Opportunity) error {
	lastID := "$"
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := c.rdb.XRead(ctx, &redis.XReadArgs{
			Streams: []string{c.stream, lastID},
			Count:   200,
			Block:   time.Second,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			time.Sleep(200 * time.Millisecond)
			continue
		}
		for _, s := range streams {
			for _, m := range s.Messages {
				lastID = m.ID
				opp, ok := decode(m.Values)
				if !ok {
					continue
				}
				select {
				case out <- opp:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

func decode(values map[string]interface{}) (types.Opportunity, bool) {
	str := func(k string) string {
		v, _ := values[k].(string)
		return v
	}
	opp := types.Opportunity{
		Instrument: types.InstrumentID(str("instrument")),
		BuyVenue:   types.VenueID(str("buy_venue")),
		SellVenue:  types.VenueID(str("sell_venue")),
		Side:       types.Side(str("side")),
	}
	if opp.Instrument == "" || opp.BuyVenue == "" || opp.SellVenue == "" {
		return types.Opportunity{}, false
	}
	if spread, err := decimal.NewFromString(str("implied_spread")); err == nil {
		opp.ImpliedSpread = spread
	}
	if ms, err := strconv.ParseInt(str("ts_ms"), 10, 64); err == nil {
		opp.Ts = time.UnixMilli(ms)
	}
	return opp, true
}

func (c *Consumer) Close() error { return c.rdb.Close() }
