package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/quartz"

	"github.com/zbennett/bbo-extension/internal/dd"
	"github.com/zbennett/bbo-extension/internal/mcpserver"
	"github.com/zbennett/bbo-extension/internal/notation"
	"github.com/zbennett/bbo-extension/internal/store"
)

type SolveCmd struct {
	LIN       string `name:"lin" required:"" help:"LIN hands S,W,N,E separated by ',' or dot hands separated by ':'; three are enough"`
	Board     int    `default:"1" help:"Board number for dealer and vulnerability"`
	CacheOnly bool   `name:"cache-only" help:"Only read the analysis cache"`
	Store     string `help:"Store URL, overrides STORE_URL"`
}

func (c *SolveCmd) Run() error {
	app, err := loadConfig(true)
	if err != nil {
		return err
	}
	if c.Board < 1 {
		return fmt.Errorf("board %d: must be positive", c.Board)
	}
	hands, err := notation.ParseHands(c.LIN)
	if err != nil {
		return fmt.Errorf("hands: %w", err)
	}
	cfg := app.Tracker
	if c.Store != "" {
		cfg.StoreURL = c.Store
	}

	ctx := context.Background()
	kv, err := store.Open(ctx, cfg.StoreURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()

	svc := dd.NewService(kv, dd.NewClient(cfg.SolverURL, cfg.SolverClub, cfg.SolverTimeout()), quartz.NewReal())
	mode := dd.FetchIfMissing
	if c.CacheOnly {
		mode = dd.CacheOnly
	}
	d := notation.NewBoardDeal(c.Board, hands)
	a, err := svc.Solve(ctx, dd.Request{Deal: d, Mode: mode}).Wait(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(mcpserver.SolveResult(d, a))
}
