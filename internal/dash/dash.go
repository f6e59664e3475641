// Package dash serves a small live view of the latest spreads the scanner
// has reported, one row per instrument/venue pair.
package dash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/orgr/arbitrage-bot/internal/types"
	"go.uber.org/zap"
)

type Row struct {
	Instrument string `json:"instrument"`
	BuyVenue   string `json:"buyVenue"`
	SellVenue  string `json:"sellVenue"`
	Side       string `json:"side"`
	Spread     string `json:"spread"`
	TS         int64  `json:"ts"`
}

type Store struct {
	mu   sync.RWMutex
	rows map[string]Row // key: instrument|buy|sell
}

func NewStore() *Store { return &Store{rows: make(map[string]Row, 64)} }

func (s *Store) Update(opp types.Opportunity) {
	key := string(opp.Instrument) + "|" + string(opp.BuyVenue) + "|" + string(opp.SellVenue)
	s.mu.Lock()
	s.rows[key] = Row{
		Instrument: string(opp.Instrument),
		BuyVenue:   string(opp.BuyVenue),
		SellVenue:  string(opp.SellVenue),
		Side:       string(opp.Side),
		Spread:     opp.ImpliedSpread.String(),
		TS:         opp.Ts.UnixMilli(),
	}
	s.mu.Unlock()
}

func (s *Store) List() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Row, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Instrument != out[j].Instrument {
			return out[i].Instrument < out[j].Instrument
		}
		if out[i].BuyVenue != out[j].BuyVenue {
			return out[i].BuyVenue < out[j].BuyVenue
		}
		return out[i].SellVenue < out[j].SellVenue
	})
	return out
}

func StartHTTP(ctx context.Context, s *Store, addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dash", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.List())
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, indexHTML)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() { <-ctx.Done(); _ = srv.Close() }()

	log.Info("dash listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !strings.Contains(err.Error(), "Server closed") {
		log.Error("dash http server error", zap.Error(err))
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>Cross-Venue Spread Monitor</title>
  <style>
    :root { --bg:#f8fafc; --card:#fff; --muted:#6b7280; --chip:#e5e7eb; }
    body{margin:0;background:var(--bg);font:14px/1.4 ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Ubuntu; color:#111827;}
    .wrap{max-width:880px;margin:24px auto;padding:0 16px;}
    .hdr{display:flex;align-items:flex-end;justify-content:space-between;margin-bottom:12px;}
    .state{font-size:12px;padding:2px 8px;border-radius:999px;background:#d1fae5;color:#065f46;}
    table{width:100%;border-collapse:collapse;background:var(--card);border-radius:16px;overflow:hidden;box-shadow:0 10px 30px rgba(0,0,0,.06);}
    thead{background:#f3f4f6;} th,td{padding:12px 14px;text-align:left;} tbody tr{border-top:1px solid #f3f4f6;}
    .chip{display:inline-block;font-size:12px;padding:2px 8px;background:var(--chip);border-radius:999px;color:#374151;}
    .sub{color:var(--muted);font-size:12px;margin:0;}
  </style>
</head>
<body>
<div class="wrap">
  <div class="hdr">
    <div>
      <h1 style="margin:0;font-size:22px;font-weight:600">Cross-Venue Spread Monitor</h1>
      <p class="sub">Latest reported opportunities per instrument and venue pair</p>
    </div>
    <div id="state" class="state">live</div>
  </div>
  <table>
    <thead>
      <tr>
        <th>Instrument</th><th>Buy on</th><th>Sell on</th><th>Side</th>
        <th>Implied spread</th><th style="text-align:right">Updated</th>
      </tr>
    </thead>
    <tbody id="rows"></tbody>
  </table>
</div>
<script>
  function rowHTML(r){
    return '<tr>'
      + '<td><strong>' + (r.instrument||'') + '</strong></td>'
      + '<td><span class="chip">' + (r.buyVenue||'') + '</span></td>'
      + '<td><span class="chip">' + (r.sellVenue||'') + '</span></td>'
      + '<td>' + (r.side||'') + '</td>'
      + '<td>' + (r.spread||'') + '</td>'
      + '<td style="text-align:right;color:#6B7280;font-size:12px">' + new Date(r.ts||Date.now()).toLocaleTimeString() + '</td>'
      + '</tr>';
  }
  async function tick(){
    try{
      var res = await fetch('/api/dash', {cache:'no-store'});
      if(!res.ok) throw new Error('status '+res.status);
      var data = await res.json();
      document.getElementById('state').textContent = 'live';
      document.getElementById('rows').innerHTML = data.map(rowHTML).join('');
    }catch(e){
      document.getElementById('state').textContent = 'offline';
    }
  }
  tick(); setInterval(tick, 1000);
</script>
</body>
</html>`
