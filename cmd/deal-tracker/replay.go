package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/zbennett/bbo-extension/internal/config"
	"github.com/zbennett/bbo-extension/internal/dd"
	"github.com/zbennett/bbo-extension/internal/deal"
	"github.com/zbennett/bbo-extension/internal/dispatch"
	"github.com/zbennett/bbo-extension/internal/events"
	"github.com/zbennett/bbo-extension/internal/protocol"
	"github.com/zbennett/bbo-extension/internal/store"
	"github.com/zbennett/bbo-extension/internal/timing"
)

var errNoDeal = errors.New("no deal in traffic log")

type ReplayCmd struct {
	File   string `arg:"" type:"existingfile" help:"Traffic log, one '<millis>\\t<message>' per line"`
	DDMode string `name:"dd-mode" default:"off" help:"Double dummy mode (always, ondemand, off)"`
	Store  string `default:"memory://" help:"Store URL for timing records and the analysis cache"`
	Events bool   `help:"Print the events raised during the replay instead of the final deal"`
}

func (c *ReplayCmd) Run() error {
	app, err := loadConfig(true)
	if err != nil {
		return err
	}
	if err := checkDDMode(c.DDMode); err != nil {
		return err
	}
	ctx := context.Background()
	kv, err := store.Open(ctx, c.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()

	clock := quartz.NewReal()
	cfg := app.Tracker
	svc := dd.NewService(kv, dd.NewClient(cfg.SolverURL, cfg.SolverClub, cfg.SolverTimeout()), clock)
	buf := events.NewBuffer(cfg.EventBuffer, clock)
	defer buf.Close()
	machine := deal.NewMachine(deal.Options{
		Solver: svc,
		Timing: timing.NewRecorder(kv, clock),
		Events: buf,
		Clock:  clock,
		DDMode: c.DDMode,
	})

	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	msgs := make(chan *protocol.Message, 64)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(msgs)
		return protocol.ReadLog(gctx, f, msgs)
	})
	g.Go(func() error {
		return dispatch.New(machine).Run(gctx, msgs)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("replay %s: %w", c.File, err)
	}
	machine.WaitDD()
	svc.Wait()

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if c.Events {
		return enc.Encode(buf.ReplayAfter(""))
	}
	snap, ok := machine.Snapshot()
	if !ok {
		return errNoDeal
	}
	return enc.Encode(snap)
}

func checkDDMode(v string) error {
	switch v {
	case config.DDModeAlways, config.DDModeOnDemand, config.DDModeOff:
		return nil
	}
	return fmt.Errorf("dd mode %q: want always, ondemand or off", v)
}
