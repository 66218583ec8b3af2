package dd

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"

	"github.com/zbennett/bbo-extension/internal/notation"
	"github.com/zbennett/bbo-extension/internal/store"
)

var (
	ErrNotCached      = errors.New("not_cached")
	ErrDuplicate      = errors.New("duplicate_request")
	ErrIncompleteDeal = errors.New("incomplete_deal")
)

type Mode int

const (
	CacheOnly Mode = iota
	FetchIfMissing
)

func (m Mode) String() string {
	if m == CacheOnly {
		return "cache"
	}
	return "fetch"
}

// Solver computes the double dummy analysis of a complete deal.
type Solver interface {
	Solve(ctx context.Context, deal notation.Deal) (*notation.Analysis, error)
}

type Request struct {
	Deal notation.Deal
	Mode Mode
	// Prefetch requests bypass the in-flight check and are never recorded in it.
	Prefetch bool
	// Callback runs once with the result on success. It is never called for a
	// request that ends without a result.
	Callback func(notation.Deal, *notation.Analysis)
}

// Service answers analysis requests from the store and falls back to the
// solver, allowing one outstanding fetch per deal.
type Service struct {
	kv     store.KV
	solver Solver
	clock  quartz.Clock

	mu      sync.Mutex
	pending map[string]struct{}
	wg      sync.WaitGroup
}

func NewService(kv store.KV, solver Solver, clock quartz.Clock) *Service {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Service{kv: kv, solver: solver, clock: clock, pending: make(map[string]struct{})}
}

// CacheKey uses the first three hands; the fourth follows from them.
func CacheKey(d notation.Deal) string {
	return "dd" + d.Hands[0] + ":" + d.Hands[1] + ":" + d.Hands[2]
}

// Solve looks the deal up in the store and, in FetchIfMissing mode, starts a
// solver fetch on a miss. Store lookups settle before Solve returns.
func (s *Service) Solve(ctx context.Context, req Request) *Call {
	d := req.Deal
	if !d.Complete() {
		return settled(nil, ErrIncompleteDeal)
	}
	key := CacheKey(d)
	if a, ok := s.lookup(ctx, key); ok {
		metricCacheHits.Add(1)
		if req.Callback != nil {
			req.Callback(d, a)
		}
		return settled(a, nil)
	}
	metricCacheMisses.Add(1)
	if req.Mode == CacheOnly || s.solver == nil {
		return settled(nil, ErrNotCached)
	}

	full := d.FullDeal()
	if !req.Prefetch {
		s.mu.Lock()
		if _, busy := s.pending[full]; busy {
			s.mu.Unlock()
			metricSquelched.Add(1)
			log.Debug().Int("board", d.Board).Str("key", key).Msg("dd request squelched, already in flight")
			return settled(nil, ErrDuplicate)
		}
		s.pending[full] = struct{}{}
		metricPending.Add(1)
		s.mu.Unlock()
	}

	call := newCall()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		a, err := s.fetch(context.WithoutCancel(ctx), key, d)
		if !req.Prefetch {
			s.mu.Lock()
			delete(s.pending, full)
			metricPending.Add(-1)
			s.mu.Unlock()
		}
		if err == nil && req.Callback != nil {
			req.Callback(d, a)
		}
		call.settle(a, err)
	}()
	return call
}

// InFlight reports whether a non-prefetch fetch for the deal is outstanding.
func (s *Service) InFlight(d notation.Deal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[d.FullDeal()]
	return ok
}

// Wait blocks until every started fetch has settled.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) lookup(ctx context.Context, key string) (*notation.Analysis, bool) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("dd cache read failed")
		}
		return nil, false
	}
	var a notation.Analysis
	if err := json.Unmarshal(raw, &a); err != nil || !notation.ValidTricks(a.Tricks) {
		log.Warn().Err(err).Str("key", key).Msg("dd cache entry unreadable, ignoring")
		return nil, false
	}
	a.WasCached = true
	return &a, true
}

func (s *Service) fetch(ctx context.Context, key string, d notation.Deal) (*notation.Analysis, error) {
	metricFetches.Add(1)
	a, err := s.solver.Solve(ctx, d)
	if err != nil {
		metricFetchErrors.Add(1)
		log.Error().Err(err).Int("board", d.Board).Str("key", key).Msg("dd fetch failed")
		if !errors.Is(err, ErrSolverResponse) {
			err = errors.Join(ErrSolverResponse, err)
		}
		return nil, err
	}
	a.CachedAt = s.clock.Now().UnixMilli()
	a.WasCached = false
	raw, err := json.Marshal(a)
	if err == nil {
		err = s.kv.Set(ctx, key, raw)
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dd result not persisted")
	}
	log.Info().Int("board", d.Board).Str("key", key).Str("tricks", a.Tricks).Int("par_ns", a.ParScoreNS).Bool("hot", a.Hot()).Msg("dd result")
	return a, nil
}
