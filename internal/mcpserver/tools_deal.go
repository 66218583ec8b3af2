package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/zbennett/bbo-extension/internal/dd"
	"github.com/zbennett/bbo-extension/internal/notation"
)

func (s *Server) registerDealTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"current_deal",
			mcp.WithDescription("Snapshot of the deal being tracked: auction, play, thinking times and double dummy result"),
		),
		s.handleCurrentDeal,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"solve_deal",
			mcp.WithDescription("Double dummy tricks and par for a deal"),
			mcp.WithString("hands", mcp.Required(), mcp.Description("Dot hands S:W:N:E separated by ':' or LIN hands separated by ','; three hands are enough")),
			mcp.WithNumber("board", mcp.Description("Board number for dealer and vulnerability, default 1")),
			mcp.WithString("mode", mcp.Description("cache|fetch, default fetch")),
		),
		s.handleSolveDeal,
	)
}

func (s *Server) handleCurrentDeal(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, ok := s.deals.Snapshot()
	if !ok {
		return mapDomainError(errNoDeal), nil
	}
	return toolResult(snap), nil
}

func (s *Server) handleSolveDeal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, ok := ParseSolveMode(request.GetString("mode", ""))
	if !ok {
		return toolError("invalid_request", "mode must be cache|fetch"), nil
	}
	board := request.GetInt("board", 1)
	if board < 1 {
		return toolError("invalid_request", "board must be positive"), nil
	}
	hands, err := notation.ParseHands(request.GetString("hands", ""))
	if err != nil {
		return mapDomainError(err), nil
	}
	d := notation.NewBoardDeal(board, hands)
	a, err := s.solver.Solve(ctx, dd.Request{Deal: d, Mode: mode}).Wait(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(SolveResult(d, a)), nil
}

// SolveResult is the JSON shape of a solved deal.
func SolveResult(d notation.Deal, a *notation.Analysis) map[string]any {
	out := map[string]any{
		"board":         d.Board,
		"dealer":        d.Dealer.Name(),
		"vulnerability": d.Vul.String(),
		"hands":         d.Hands,
		"tricks":        a.Tricks,
		"par_ns":        a.ParScoreNS,
		"par_contracts": a.ParContractsNS,
		"cached":        a.WasCached,
	}
	if a.Hot() {
		out["par_ew"] = *a.ParScoreEW
		out["par_contracts_ew"] = *a.ParContractsEW
	}
	if tbl, err := dd.NewTrickTable(a); err == nil {
		out["table"] = tbl
	}
	return out
}
