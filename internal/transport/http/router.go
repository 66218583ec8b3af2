package httptransport

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/zbennett/bbo-extension/internal/events"
	"github.com/zbennett/bbo-extension/internal/mcpserver"
	"github.com/zbennett/bbo-extension/internal/timing"
	"github.com/zbennett/bbo-extension/internal/ws"
)

type TimingLoader interface {
	Load(ctx context.Context, hands, players [4]string) (timing.Timing, error)
}

// Deps are the services the router exposes. Feed and MCP may be nil.
type Deps struct {
	Deals  mcpserver.DealSource
	Solver mcpserver.Solver
	Timing TimingLoader
	Events *events.Buffer
	Feed   *ws.Server
	MCP    *mcpserver.Server
}

func NewRouter(deps Deps) *chi.Mux {
	dealHandlers := NewDealHandlers(deps.Deals, deps.Solver, deps.Timing)
	adminHandlers := NewAdminHandlers(deps.Deals, deps.Feed)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())
	r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	if deps.Feed != nil {
		r.With(APILogMiddleware()).Get("/ws/feed", deps.Feed.HandleWS)
	}
	if deps.MCP != nil {
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", deps.MCP.Handler())
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", deps.MCP.Handler())
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", deps.MCP.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Use(ErrorCaptureMiddleware(4096))
		r.Get("/deal", dealHandlers.Deal())
		r.Get("/dd", dealHandlers.DD())
		r.Get("/timing", dealHandlers.Timing())
		r.Get("/events", events.SSEHandler(deps.Events))
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
