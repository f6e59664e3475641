package mexc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orgr/arbitrage-bot/internal/config"
	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/orgr/arbitrage-bot/internal/venue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(url string) *Client {
	return NewClient(config.VenueCfg{ID: "mexc", RestURL: url, MinRequestGapMs: 1}, zap.NewNop())
}

func mockAPI(t *testing.T, bid, ask string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/exchangeInfo":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"symbols": []map[string]string{
					{"symbol": "BTCUSDT", "status": "1", "baseAsset": "BTC", "quoteAsset": "USDT"},
					{"symbol": "ETHUSDT", "status": "1", "baseAsset": "ETH", "quoteAsset": "USDT"},
					{"symbol": "OLDUSDT", "status": "3", "baseAsset": "OLD", "quoteAsset": "USDT"},
				},
			})
		case "/api/v3/ticker/bookTicker":
			assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
			json.NewEncoder(w).Encode(bookTickerResp{Symbol: "BTCUSDT", BidPrice: bid, AskPrice: ask})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestListInstruments(t *testing.T) {
	srv := mockAPI(t, "100", "101")
	defer srv.Close()

	c := newTestClient(srv.URL)
	insts, err := c.ListInstruments(context.Background())
	require.NoError(t, err)

	assert.Len(t, insts, 2)
	_, ok := insts["BTC/USDT"]
	assert.True(t, ok)
	_, ok = insts["OLD/USDT"]
	assert.False(t, ok, "disabled symbols must be excluded")
}

func TestFetchTopOfBook(t *testing.T) {
	srv := mockAPI(t, "64000.5", "64001.2")
	defer srv.Close()

	c := newTestClient(srv.URL)
	q, err := c.FetchTopOfBook(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	require.NotNil(t, q)

	assert.Equal(t, types.VenueID("mexc"), q.Venue)
	assert.Equal(t, "64000.5", q.Bid.String())
	assert.Equal(t, "64001.2", q.Ask.String())
	assert.True(t, q.Valid())
}

func TestFetchTopOfBook_EmptyBook(t *testing.T) {
	srv := mockAPI(t, "", "64001.2")
	defer srv.Close()

	c := newTestClient(srv.URL)
	q, err := c.FetchTopOfBook(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.Nil(t, q, "empty book must be absence, not a quote or error")
}

func TestFetchTopOfBook_ZeroPricedBookIsAbsence(t *testing.T) {
	// A zero side in full decimal spelling is still an empty book.
	srv := mockAPI(t, "0.00000000", "64001.2")
	defer srv.Close()

	c := newTestClient(srv.URL)
	q, err := c.FetchTopOfBook(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestFetchTopOfBook_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchTopOfBook(context.Background(), "BTC/USDT")
	assert.True(t, errors.Is(err, venue.ErrRateLimited))
}

func TestListInstruments_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.ListInstruments(context.Background())
	assert.True(t, errors.Is(err, venue.ErrUnavailable))
}
