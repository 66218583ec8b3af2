package deal

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"

	"github.com/zbennett/bbo-extension/internal/config"
	"github.com/zbennett/bbo-extension/internal/dd"
	"github.com/zbennett/bbo-extension/internal/events"
	"github.com/zbennett/bbo-extension/internal/notation"
	"github.com/zbennett/bbo-extension/internal/store"
	"github.com/zbennett/bbo-extension/internal/timing"
)

type Solver interface {
	Solve(ctx context.Context, req dd.Request) *dd.Call
}

type TimingStore interface {
	Save(ctx context.Context, key string, calls, plays []int64) error
}

type Publisher interface {
	Publish(event, dealID string, data any) events.Event
}

type Options struct {
	Solver Solver
	Timing TimingStore
	Events Publisher
	Clock  quartz.Clock
	DDMode string
}

// Machine rebuilds the live deal from the message stream. Handlers are
// called one message at a time; the lock only guards against readers and
// solver results arriving from other goroutines.
type Machine struct {
	solver Solver
	timing TimingStore
	events Publisher
	clock  quartz.Clock
	ddMode string

	mu        sync.Mutex
	user      string
	contextID string
	table     Table
	deal      *State
	tourneys  map[string]*Tourney
	plays     map[string]PlayRecord
	ddWait    sync.WaitGroup
}

func NewMachine(opts Options) *Machine {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.DDMode == "" {
		opts.DDMode = config.DDModeAlways
	}
	return &Machine{
		solver:   opts.Solver,
		timing:   opts.Timing,
		events:   opts.Events,
		clock:    opts.Clock,
		ddMode:   opts.DDMode,
		tourneys: map[string]*Tourney{},
		plays:    map[string]PlayRecord{},
	}
}

// WaitDD blocks until every solver result requested so far has been applied.
func (m *Machine) WaitDD() {
	m.ddWait.Wait()
}

func (m *Machine) publish(kind string, data any) {
	if m.events == nil {
		return
	}
	id := ""
	if m.deal != nil {
		id = m.deal.ID
	}
	m.events.Publish(kind, id, data)
}

func (m *Machine) startDeal(attrs map[string]string, at int64) {
	d := newState(attrs, at)
	d.ID = store.NewIDAt(m.clock.Now())
	m.deal = d
	metricDealsStarted.Add(1)
	log.Info().Str("board", d.Board).Str("table_id", d.TableID).Str("deal_id", d.ID).Msg("board dealt")
	m.publish(events.KindDealStarted, map[string]any{
		"board":    d.Board,
		"table_id": d.TableID,
		"dealer":   d.Dealer,
		"vul":      d.Vul,
		"hands":    d.dotHands(),
	})
}

// dropDeal ends the live deal, saving its timing first if that has not
// happened yet.
func (m *Machine) dropDeal(ctx context.Context, reason string) {
	if m.deal == nil {
		return
	}
	if !m.deal.timingSaved {
		log.Warn().Str("board", m.deal.Board).Str("table_id", m.deal.TableID).
			Str("style", m.table.Style).Str("type", m.table.Type).Str("tkey", m.table.TKey).
			Msg("saving board timing for " + reason)
		m.saveTiming(ctx, reason)
	}
	m.deal = nil
}

// saveTiming persists the thinking times of the live deal at most once.
func (m *Machine) saveTiming(ctx context.Context, reason string) {
	d := m.deal
	if d == nil || d.timingSaved {
		return
	}
	d.timingSaved = true
	if m.timing == nil {
		return
	}
	key, err := timing.KeyFor(d.dotHands(), m.table.Players)
	if err != nil {
		log.Error().Err(err).Str("board", d.Board).Msg("timing not saved")
		return
	}
	_, calls := d.auction.snapshot()
	_, plays := d.play.snapshot()
	if err := m.timing.Save(ctx, key, calls, plays); err != nil {
		metricTimingErrors.Add(1)
		log.Error().Err(err).Str("board", d.Board).Str("key", key).Msg("timing not saved")
		return
	}
	metricTimingSaved.Add(1)
	log.Info().Str("board", d.Board).Str("key", key).Str("reason", reason).Msg("board timing saved")
}

// savePlay keeps the card play of a finished deal. Only used where no other
// record of the play arrives.
func (m *Machine) savePlay(claimed *int) {
	d := m.deal
	if d == nil {
		return
	}
	hands := d.dotHands()
	key := strings.Join(hands[:], "+") + "-" + strings.ToLower(m.table.Players[notation.South])
	rec := PlayRecord{Cards: make([]string, 0, d.play.len())}
	for _, c := range d.play.items {
		rec.Cards = append(rec.Cards, c.String())
	}
	if claimed != nil {
		n := *claimed
		rec.Claimed = &n
	}
	m.plays[key] = rec
}

func (m *Machine) ddRequestMode() (dd.Mode, bool) {
	switch m.ddMode {
	case config.DDModeOff:
		return 0, false
	case config.DDModeOnDemand:
		return dd.CacheOnly, true
	}
	return dd.FetchIfMissing, true
}

// prefetch warms the analysis cache as soon as the whole deal is known.
func (m *Machine) prefetch(ctx context.Context) {
	if m.solver == nil || m.ddMode != config.DDModeAlways || m.deal == nil || !m.deal.allHandsKnown() {
		return
	}
	nd := m.deal.notationDeal(m.table.Players)
	if _, ok := m.deal.boardNumber(); !ok || !nd.Complete() {
		return
	}
	m.solver.Solve(ctx, dd.Request{Deal: nd, Mode: dd.FetchIfMissing, Prefetch: true})
}

// requestAnalysis asks for the analysis of the live deal and attaches it
// when it arrives, provided the deal is still the same one.
func (m *Machine) requestAnalysis(ctx context.Context) {
	if m.solver == nil || m.deal == nil || !m.deal.allHandsKnown() {
		return
	}
	mode, ok := m.ddRequestMode()
	if !ok {
		return
	}
	if _, ok := m.deal.boardNumber(); !ok {
		log.Debug().Str("board", m.deal.Board).Msg("no analysis for non numeric board")
		return
	}
	nd := m.deal.notationDeal(m.table.Players)
	if !nd.Complete() {
		return
	}
	call := m.solver.Solve(ctx, dd.Request{Deal: nd, Mode: mode})
	if res, err, done := call.Result(); done {
		m.applyAnalysis(nd, res, err)
		return
	}
	m.ddWait.Add(1)
	go func() {
		defer m.ddWait.Done()
		<-call.Done()
		res, err, _ := call.Result()
		m.mu.Lock()
		defer m.mu.Unlock()
		m.applyAnalysis(nd, res, err)
	}()
}

func (m *Machine) applyAnalysis(nd notation.Deal, a *notation.Analysis, err error) {
	if err != nil {
		if !errors.Is(err, dd.ErrNotCached) && !errors.Is(err, dd.ErrDuplicate) {
			log.Warn().Err(err).Int("board", nd.Board).Msg("no double dummy result")
		}
		return
	}
	d := m.deal
	if d == nil || d.Board != strconv.Itoa(nd.Board) || d.dotHands() != nd.Hands {
		metricDDStale.Add(1)
		log.Debug().Int("board", nd.Board).Msg("double dummy result for a deal no longer live")
		return
	}
	d.analysis = a
	metricDDApplied.Add(1)
	data := map[string]any{
		"board":   nd.Board,
		"tricks":  a.Tricks,
		"par_ns":  a.ParScoreNS,
		"par_cns": a.ParContractsNS,
		"cached":  a.WasCached,
		"hot":     a.Hot(),
	}
	if a.Hot() {
		data["par_ew"] = *a.ParScoreEW
		data["par_cew"] = *a.ParContractsEW
	}
	m.publish(events.KindDDResult, data)
}
