package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/zbennett/bbo-extension/internal/dd"
	"github.com/zbennett/bbo-extension/internal/deal"
)

type DealSource interface {
	Snapshot() (deal.Snapshot, bool)
}

type Solver interface {
	Solve(ctx context.Context, req dd.Request) *dd.Call
}

type Server struct {
	deals  DealSource
	solver Solver

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(deals DealSource, solver Solver) *Server {
	mcpSrv := server.NewMCPServer(
		"bbo-deal-tracker",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		deals:      deals,
		solver:     solver,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerDealTools()
	s.registerNotationTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"deal://{deal_id}/lin",
			"deal_lin",
			mcp.WithTemplateDescription("LIN record of the live deal once it is complete"),
			mcp.WithTemplateMIMEType("text/plain"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := request.Params.URI
			if !strings.HasPrefix(raw, "deal://") || !strings.HasSuffix(raw, "/lin") {
				return nil, nil
			}
			id := strings.TrimSuffix(strings.TrimPrefix(raw, "deal://"), "/lin")
			snap, ok := s.deals.Snapshot()
			if !ok || snap.ID != id || snap.LIN == "" {
				return nil, nil
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      raw,
					MIMEType: "text/plain",
					Text:     snap.LIN,
				},
			}, nil
		},
	)
	s.mcpServer.AddResource(
		mcp.NewResource(
			"deal://current",
			"current_deal",
			mcp.WithResourceDescription("Snapshot of the live deal"),
			mcp.WithMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			snap, ok := s.deals.Snapshot()
			if !ok {
				return nil, nil
			}
			payload, err := json.Marshal(snap)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      request.Params.URI,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}
