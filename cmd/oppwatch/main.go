// oppwatch tails the opportunity feed a running scanner publishes to redis
// and prints each record. Handy for watching a deployment without scraping
// its logs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgr/arbitrage-bot/internal/config"
	"github.com/orgr/arbitrage-bot/internal/connectors/redisfeed"
	"github.com/orgr/arbitrage-bot/internal/types"
)

func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config file")
	since := flag.Duration("since", 0, "also list instruments active within this window before tailing")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Redis.Addr == "" {
		fmt.Fprintln(os.Stderr, "redis.addr is empty; the scanner is not publishing anywhere")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		fmt.Println("[sys] shutting down...")
		cancel()
	}()

	cons := redisfeed.NewConsumer(cfg)
	defer cons.Close()

	if *since > 0 {
		sinceMs := time.Now().Add(-*since).UnixMilli()
		insts, err := cons.ActiveInstruments(ctx, sinceMs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "active instruments: %v\n", err)
		} else {
			fmt.Printf("[active] %d instruments in the last %s\n", len(insts), *since)
			for _, inst := range insts {
				fmt.Printf("  %s\n", inst)
			}
		}
	}

	fmt.Printf("[tail] following %s on %s\n", cfg.Redis.Stream, cfg.Redis.Addr)
	opps := make(chan types.Opportunity, 64)
	go func() {
		for opp := range opps {
			fmt.Printf("[opp] %-12s buy=%-10s sell=%-10s side=%-20s spread=%s %s\n",
				opp.Instrument, opp.BuyVenue, opp.SellVenue, opp.Side,
				opp.ImpliedSpread.String(), opp.Ts.Format(time.RFC3339))
		}
	}()

	if err := cons.Tail(ctx, opps); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "tail: %v\n", err)
		os.Exit(1)
	}
}
