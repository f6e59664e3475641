// Package mexc is the MEXC spot venue adapter, built on the public REST
// market-data endpoints.
package mexc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/orgr/arbitrage-bot/internal/config"
	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/orgr/arbitrage-bot/internal/venue"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultRestURL = "https://api.mexc.com"

func init() {
	venue.RegisterKind("mexc", func(vc config.VenueCfg, log *zap.Logger) (venue.Adapter, error) {
		return NewClient(vc, log), nil
	})
}

type Client struct {
	id      types.VenueID
	restURL string
	http    *http.Client
	limiter *venue.Limiter
	log     *zap.Logger
}

func NewClient(vc config.VenueCfg, log *zap.Logger) *Client {
	restURL := strings.TrimRight(vc.RestURL, "/")
	if restURL == "" {
		restURL = defaultRestURL
	}
	gap := time.Duration(vc.MinRequestGapMs) * time.Millisecond
	if gap == 0 {
		gap = 100 * time.Millisecond
	}
	return &Client{
		id:      vc.ID,
		restURL: restURL,
		http:    &http.Client{Timeout: 6 * time.Second},
		limiter: venue.NewLimiter(gap),
		log:     log,
	}
}

func (c *Client) ID() types.VenueID { return c.id }

type exchangeInfoResp struct {
	Symbols []struct {
		Symbol     string `json:"symbol"`
		Status     string `json:"status"`
		BaseAsset  string `json:"baseAsset"`
		QuoteAsset string `json:"quoteAsset"`
	} `json:"symbols"`
}

func (c *Client) ListInstruments(ctx context.Context) (map[types.InstrumentID]struct{}, error) {
	var info exchangeInfoResp
	if err := c.getJSON(ctx, "/api/v3/exchangeInfo", &info); err != nil {
		return nil, fmt.Errorf("%w: exchangeInfo: %v", venue.ErrUnavailable, err)
	}

	out := make(map[types.InstrumentID]struct{}, len(info.Symbols))
	for _, s := range info.Symbols {
		// "1" is MEXC's enabled-trading status; older payloads say "ENABLED".
		if s.Status != "1" && s.Status != "ENABLED" {
			continue
		}
		if s.BaseAsset == "" || s.QuoteAsset == "" {
			continue
		}
		out[types.InstrumentID(s.BaseAsset+"/"+s.QuoteAsset)] = struct{}{}
	}
	return out, nil
}

type bookTickerResp struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

func (c *Client) FetchTopOfBook(ctx context.Context, inst types.InstrumentID) (*types.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", venue.ErrTimeout, err)
	}

	var br bookTickerResp
	path := "/api/v3/ticker/bookTicker?symbol=" + url.QueryEscape(symbolFor(inst))
	if err := c.getJSON(ctx, path, &br); err != nil {
		return nil, err
	}

	if br.BidPrice == "" || br.AskPrice == "" {
		return nil, nil
	}
	bid, err := decimal.NewFromString(br.BidPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: bad bid %q", venue.ErrTransport, br.BidPrice)
	}
	ask, err := decimal.NewFromString(br.AskPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ask %q", venue.ErrTransport, br.AskPrice)
	}
	// A non-positive side, in whatever zero spelling the API uses, means an
	// empty book: absence, not an error.
	if !bid.IsPositive() || !ask.IsPositive() {
		return nil, nil
	}

	return &types.Quote{
		Venue:      c.id,
		Instrument: inst,
		Bid:        bid,
		Ask:        ask,
		ObservedAt: time.Now(),
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.restURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", venue.ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", venue.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", venue.ErrRateLimited, path)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s %d: %s", venue.ErrTransport, path, resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", venue.ErrTransport, path, err)
	}
	return nil
}

// symbolFor flattens BASE/QUOTE into MEXC's symbol form (BTCUSDT).
func symbolFor(inst types.InstrumentID) string {
	return strings.ReplaceAll(string(inst), "/", "")
}
