// Package binance is the Binance spot venue adapter. Instruments come from
// the REST exchangeInfo endpoint; top of book is served from a cache fed by
// the combined bookTicker websocket streams. The first fetch for an
// instrument subscribes its stream and waits for the first tick under the
// caller's deadline.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/orgr/arbitrage-bot/internal/config"
	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/orgr/arbitrage-bot/internal/venue"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultWsURL   = "wss://stream.binance.com:9443/stream"
	defaultRestURL = "https://api.binance.com"

	readDeadline = 90 * time.Second

	// maxQuoteAge bounds how old a cached tick may be before a fetch stops
	// trusting it. bookTicker is a real-time stream, so a book this old
	// means the connection has stalled.
	maxQuoteAge = 5 * time.Second
)

func init() {
	venue.RegisterKind("binance", func(vc config.VenueCfg, log *zap.Logger) (venue.Adapter, error) {
		return NewWS(vc, log), nil
	})
}

type WS struct {
	id      types.VenueID
	wsURL   string
	restURL string
	dialer  *websocket.Dialer
	http    *http.Client
	log     *zap.Logger

	mu         sync.Mutex
	conn       *websocket.Conn
	nextSubID  int
	subscribed map[types.InstrumentID]struct{}
	bySymbol   map[string]types.InstrumentID

	book *bookCache
}

func NewWS(vc config.VenueCfg, log *zap.Logger) *WS {
	wsURL := strings.TrimRight(vc.WsURL, "/")
	if wsURL == "" {
		wsURL = defaultWsURL
	}
	restURL := strings.TrimRight(vc.RestURL, "/")
	if restURL == "" {
		restURL = defaultRestURL
	}
	return &WS{
		id:      vc.ID,
		wsURL:   wsURL,
		restURL: restURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout:  15 * time.Second,
			EnableCompression: true,
		},
		http:       &http.Client{Timeout: 6 * time.Second},
		log:        log,
		nextSubID:  1,
		subscribed: make(map[types.InstrumentID]struct{}, 32),
		bySymbol:   make(map[string]types.InstrumentID, 32),
		book:       newBookCache(),
	}
}

func (w *WS) ID() types.VenueID { return w.id }

type exchangeInfoResp struct {
	Symbols []struct {
		Symbol     string `json:"symbol"`
		Status     string `json:"status"`
		BaseAsset  string `json:"baseAsset"`
		QuoteAsset string `json:"quoteAsset"`
	} `json:"symbols"`
}

func (w *WS) ListInstruments(ctx context.Context) (map[types.InstrumentID]struct{}, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", w.restURL+"/api/v3/exchangeInfo", nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: exchangeInfo: %v", venue.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: exchangeInfo %d: %s", venue.ErrUnavailable, resp.StatusCode, string(b))
	}

	var info exchangeInfoResp
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode exchangeInfo: %v", venue.ErrTransport, err)
	}

	out := make(map[types.InstrumentID]struct{}, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" || s.BaseAsset == "" || s.QuoteAsset == "" {
			continue
		}
		out[types.InstrumentID(s.BaseAsset+"/"+s.QuoteAsset)] = struct{}{}
	}
	return out, nil
}

func (w *WS) FetchTopOfBook(ctx context.Context, inst types.InstrumentID) (*types.Quote, error) {
	if err := w.ensureSubscribed(ctx, inst); err != nil {
		return nil, err
	}

	// bookTicker streams in real time; wait at most the caller's deadline
	// for the first tick of a freshly subscribed instrument. A cached tick
	// past maxQuoteAge is ignored the same way: keep waiting for a fresh
	// one rather than price against a stalled book.
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		if q, ok := w.book.get(inst); ok && time.Since(q.ObservedAt) <= maxQuoteAge {
			if !q.Valid() {
				return nil, nil // one side empty
			}
			q.Venue = w.id
			return &q, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: no tick for %s: %v", venue.ErrTimeout, inst, ctx.Err())
		case <-tick.C:
		}
	}
}

func (w *WS) ensureSubscribed(ctx context.Context, inst types.InstrumentID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		c, _, err := w.dialer.DialContext(ctx, w.wsURL, nil)
		if err != nil {
			return fmt.Errorf("%w: dial: %v", venue.ErrUnavailable, err)
		}
		w.conn = c
		_ = c.SetReadDeadline(time.Now().Add(readDeadline))
		c.SetPongHandler(func(string) error {
			return c.SetReadDeadline(time.Now().Add(readDeadline))
		})
		go w.readLoop(c)

		// A fresh connection has no live subscriptions.
		resub := w.subscribed
		w.subscribed = make(map[types.InstrumentID]struct{}, len(resub)+1)
		for prev := range resub {
			if err := w.subscribeLocked(prev); err != nil {
				return err
			}
		}
	}

	if _, ok := w.subscribed[inst]; ok {
		return nil
	}
	return w.subscribeLocked(inst)
}

func (w *WS) subscribeLocked(inst types.InstrumentID) error {
	symbol := strings.ToUpper(strings.ReplaceAll(string(inst), "/", ""))
	sub := struct {
		Method string   `json:"method"`
		Params []string `json:"params"`
		ID     int      `json:"id"`
	}{
		Method: "SUBSCRIBE",
		Params: []string{strings.ToLower(symbol) + "@bookTicker"},
		ID:     w.nextSubID,
	}
	w.nextSubID++

	if err := w.conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("%w: subscribe %s: %v", venue.ErrTransport, inst, err)
	}
	w.subscribed[inst] = struct{}{}
	w.bySymbol[symbol] = inst
	return nil
}

type streamMsg struct {
	Stream string `json:"stream"`
	Data   struct {
		Symbol string `json:"s"`
		Bid    string `json:"b"`
		BidQty string `json:"B"`
		Ask    string `json:"a"`
		AskQty string `json:"A"`
	} `json:"data"`
}

func (w *WS) readLoop(c *websocket.Conn) {
	defer func() {
		_ = c.Close()
		w.mu.Lock()
		if w.conn == c {
			w.conn = nil // next fetch redials and resubscribes
		}
		w.mu.Unlock()
		// Quotes from the dead connection must not outlive it; the next
		// fetch waits for a post-reconnect tick instead.
		w.book.clear()
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			w.log.Warn("binance ws read failed", zap.Error(err))
			return
		}
		_ = c.SetReadDeadline(time.Now().Add(readDeadline))

		var msg streamMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.Data.Symbol == "" {
			continue // subscribe ack or unrelated frame
		}

		w.mu.Lock()
		inst, ok := w.bySymbol[msg.Data.Symbol]
		w.mu.Unlock()
		if !ok {
			continue
		}

		bid, berr := decimal.NewFromString(msg.Data.Bid)
		ask, aerr := decimal.NewFromString(msg.Data.Ask)
		if berr != nil || aerr != nil {
			continue
		}
		w.book.set(inst, types.Quote{
			Instrument: inst,
			Bid:        bid,
			Ask:        ask,
			ObservedAt: time.Now(),
		})
	}
}

func (w *WS) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}

type bookCache struct {
	mu     sync.RWMutex
	quotes map[types.InstrumentID]types.Quote
}

func newBookCache() *bookCache {
	return &bookCache{quotes: make(map[types.InstrumentID]types.Quote, 64)}
}

func (b *bookCache) set(inst types.InstrumentID, q types.Quote) {
	b.mu.Lock()
	b.quotes[inst] = q
	b.mu.Unlock()
}

func (b *bookCache) clear() {
	b.mu.Lock()
	b.quotes = make(map[types.InstrumentID]types.Quote, len(b.quotes))
	b.mu.Unlock()
}

func (b *bookCache) get(inst types.InstrumentID) (types.Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.quotes[inst]
	return q, ok
}
