package redisfeed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/orgr/arbitrage-bot/internal/config"
	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(addr string) *config.Config {
	cfg := &config.Config{}
	cfg.Redis = config.RedisCfg{
		Addr:      addr,
		Stream:    "opp:stream",
		ActiveKey: "opp:active",
		LatestNS:  "opp:latest:",
	}
	return cfg
}

func sampleOpp() types.Opportunity {
	return types.Opportunity{
		Instrument:    "BTC/USDT",
		BuyVenue:      "mexc",
		SellVenue:     "binance",
		Side:          types.BuyOnASellOnB,
		ImpliedSpread: decimal.RequireFromString("2"),
		Ts:            time.Now(),
	}
}

func TestPublishOpportunity(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	pub := NewPublisher(testConfig(mr.Addr()))
	defer pub.Close()

	ctx := context.Background()
	require.NoError(t, pub.PublishOpportunity(ctx, sampleOpp()))

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	n, err := rdb.XLen(ctx, "opp:stream").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	latest, err := rdb.HGetAll(ctx, "opp:latest:BTC/USDT:mexc:binance").Result()
	require.NoError(t, err)
	assert.Equal(t, "2", latest["implied_spread"])
	assert.Equal(t, "BUY_ON_A_SELL_ON_B", latest["side"])

	active, err := rdb.ZRange(ctx, "opp:active", 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC/USDT"}, active)
}

func TestConsumerActiveInstruments(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := testConfig(mr.Addr())
	pub := NewPublisher(cfg)
	defer pub.Close()

	ctx := context.Background()
	require.NoError(t, pub.PublishOpportunity(ctx, sampleOpp()))

	cons := NewConsumer(cfg)
	defer cons.Close()

	insts, err := cons.ActiveInstruments(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC/USDT"}, insts)
}

func TestDecode(t *testing.T) {
	opp, ok := decode(map[string]interface{}{
		"instrument":     "ETH/USDT",
		"buy_venue":      "binance",
		"sell_venue":     "mexc",
		"side":           "BUY_ON_B_SELL_ON_A",
		"implied_spread": "1.25",
		"ts_ms":          "1700000000000",
	})
	require.True(t, ok)
	assert.Equal(t, types.InstrumentID("ETH/USDT"), opp.Instrument)
	assert.True(t, opp.ImpliedSpread.Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, time.UnixMilli(1700000000000), opp.Ts)

	_, ok = decode(map[string]interface{}{"side": "NONE"})
	assert.False(t, ok)
}
