package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/zbennett/bbo-extension/internal/dd"
	"github.com/zbennett/bbo-extension/internal/mcpserver"
	"github.com/zbennett/bbo-extension/internal/notation"
	"github.com/zbennett/bbo-extension/internal/store"
)

type DealHandlers struct {
	deals  mcpserver.DealSource
	solver mcpserver.Solver
	timing TimingLoader
}

func NewDealHandlers(deals mcpserver.DealSource, solver mcpserver.Solver, timing TimingLoader) *DealHandlers {
	return &DealHandlers{deals: deals, solver: solver, timing: timing}
}

func (h *DealHandlers) Deal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := h.deals.Snapshot()
		if !ok {
			WriteHTTPError(w, http.StatusNotFound, "no_deal")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}
}

// DD answers a double dummy query. hands takes LIN hands separated by ','
// and dot takes dot hands separated by ':'; three hands are enough.
func (h *DealHandlers) DD() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricDDRequests.Add(1)
		q := r.URL.Query()
		mode, ok := mcpserver.ParseSolveMode(q.Get("mode"))
		if !ok {
			metricDDErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		board := 1
		if v := q.Get("board"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				metricDDErrors.Add(1)
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			board = n
		}
		raw := q.Get("hands")
		if raw == "" {
			raw = q.Get("dot")
		}
		hands, err := notation.ParseHands(raw)
		if err != nil {
			metricDDErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		d := notation.NewBoardDeal(board, hands)
		a, err := h.solver.Solve(r.Context(), dd.Request{Deal: d, Mode: mode}).Wait(r.Context())
		if err != nil {
			metricDDErrors.Add(1)
			code := mcpserver.ErrorCode(err)
			WriteHTTPError(w, statusFor(code), code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(mcpserver.SolveResult(d, a))
	}
}

// Timing returns saved thinking times. hands holds four dot hands separated
// by ':' (blank when unknown) and players the four handles separated by ','.
func (h *DealHandlers) Timing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricTimingRequests.Add(1)
		q := r.URL.Query()
		hands, ok := splitFour(q.Get("hands"), ":")
		players, ok2 := splitFour(q.Get("players"), ",")
		if !ok || !ok2 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		for i, hand := range hands {
			if hand == "" {
				continue
			}
			canon, err := notation.CanonicalDot(hand)
			if err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			hands[i] = canon
		}
		got, err := h.timing.Load(r.Context(), hands, players)
		if errors.Is(err, store.ErrNotFound) {
			WriteHTTPError(w, http.StatusNotFound, "not_found")
			return
		}
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"key":           got.Key,
			"saved_at":      got.SavedAt.UnixMilli(),
			"call_times_ms": got.Calls,
			"play_times_ms": got.Plays,
		})
	}
}

func splitFour(v, sep string) ([4]string, bool) {
	var out [4]string
	parts := strings.Split(v, sep)
	if len(parts) != 4 {
		return out, false
	}
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out, true
}

func statusFor(code string) int {
	switch code {
	case "invalid_request":
		return http.StatusBadRequest
	case "no_deal", "not_cached":
		return http.StatusNotFound
	case "in_flight":
		return http.StatusConflict
	case "solver_error":
		return http.StatusBadGateway
	case "timeout":
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
