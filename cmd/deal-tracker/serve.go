package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/zbennett/bbo-extension/internal/dd"
	"github.com/zbennett/bbo-extension/internal/deal"
	"github.com/zbennett/bbo-extension/internal/dispatch"
	"github.com/zbennett/bbo-extension/internal/events"
	"github.com/zbennett/bbo-extension/internal/mcpserver"
	"github.com/zbennett/bbo-extension/internal/protocol"
	"github.com/zbennett/bbo-extension/internal/store"
	"github.com/zbennett/bbo-extension/internal/timing"
	httptransport "github.com/zbennett/bbo-extension/internal/transport/http"
	"github.com/zbennett/bbo-extension/internal/ws"
)

type ServeCmd struct {
	Addr      string `help:"HTTP listen address, overrides HTTP_ADDR"`
	DDMode    string `name:"dd-mode" help:"Double dummy mode (always, ondemand, off), overrides DD_MODE"`
	Store     string `help:"Store URL, overrides STORE_URL"`
	Record    string `type:"path" help:"Append every feed message to this traffic log"`
	LogRoutes bool   `help:"Print the registered routes on start"`
}

func (c *ServeCmd) Run() error {
	app, err := loadConfig(false)
	if err != nil {
		return err
	}
	cfg := app.Tracker
	if c.Addr != "" {
		cfg.HTTPAddr = c.Addr
	}
	if c.DDMode != "" {
		if err := checkDDMode(c.DDMode); err != nil {
			return err
		}
		cfg.DDMode = c.DDMode
	}
	if c.Store != "" {
		cfg.StoreURL = c.Store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := store.Open(ctx, cfg.StoreURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()

	clock := quartz.NewReal()
	svc := dd.NewService(kv, dd.NewClient(cfg.SolverURL, cfg.SolverClub, cfg.SolverTimeout()), clock)
	rec := timing.NewRecorder(kv, clock)
	buf := events.NewBuffer(cfg.EventBuffer, clock)
	defer buf.Close()
	machine := deal.NewMachine(deal.Options{Solver: svc, Timing: rec, Events: buf, Clock: clock, DDMode: cfg.DDMode})

	feed := make(chan *protocol.Message, cfg.FeedBuffer)
	var in <-chan *protocol.Message = feed
	if c.Record != "" {
		f, err := os.OpenFile(c.Record, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open traffic log: %w", err)
		}
		defer f.Close()
		in = recordFeed(ctx, feed, f)
	}

	feedSrv := ws.NewServer(ctx, feed, clock)
	router := httptransport.NewRouter(httptransport.Deps{
		Deals:  machine,
		Solver: svc,
		Timing: rec,
		Events: buf,
		Feed:   feedSrv,
		MCP:    mcpserver.New(machine, svc),
	})
	if c.LogRoutes {
		httptransport.LogRoutes(router)
	}
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatch.New(machine).Run(gctx, in)
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("dd_mode", cfg.DDMode).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	machine.WaitDD()
	svc.Wait()
	log.Info().Msg("deal tracker stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// recordFeed copies every message to w as a traffic log line on its way to
// the dispatcher.
func recordFeed(ctx context.Context, in <-chan *protocol.Message, w io.Writer) <-chan *protocol.Message {
	out := make(chan *protocol.Message, cap(in))
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				if _, err := fmt.Fprintln(w, protocol.FormatLogLine(m)); err != nil {
					log.Warn().Err(err).Msg("traffic log write failed")
				}
				select {
				case out <- m:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
