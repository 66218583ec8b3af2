package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/zbennett/bbo-extension/internal/notation"
)

func (s *Server) registerNotationTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"convert_hand",
			mcp.WithDescription("Convert one hand between dot notation (AKQ.JT9.876.5432) and LIN (SAKQHJT9D876C5432)"),
			mcp.WithString("hand", mcp.Required(), mcp.Description("Hand to convert")),
			mcp.WithString("to", mcp.Required(), mcp.Description("lin|dot")),
		),
		s.handleConvertHand,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"board_info",
			mcp.WithDescription("Dealer and vulnerability of a board number"),
			mcp.WithNumber("board", mcp.Required(), mcp.Description("Board number, 1 or more")),
		),
		s.handleBoardInfo,
	)
}

func (s *Server) handleConvertHand(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hand := request.GetString("hand", "")
	to := request.GetString("to", "")
	if !isAllowedConversion(to) {
		return toolError("invalid_request", "to must be lin|dot"), nil
	}
	var (
		out, dot string
		err      error
	)
	if to == "lin" {
		dot = hand
		out, err = notation.DotToLIN(hand)
	} else {
		out, err = notation.LINToDot(hand)
		dot = out
	}
	if err != nil {
		return mapDomainError(err), nil
	}
	hcp, err := notation.HandHCP(dot)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{"hand": out, "hcp": hcp}), nil
}

func (s *Server) handleBoardInfo(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	board := request.GetInt("board", 0)
	if board < 1 {
		return toolError("invalid_request", "board must be positive"), nil
	}
	return toolResult(BoardInfo(board)), nil
}

func BoardInfo(board int) map[string]any {
	dealer, vul := notation.BoardDealerVul(board)
	return map[string]any{
		"board":         board,
		"dealer":        dealer.Name(),
		"vulnerability": vul.String(),
		"lin_vul":       vul.LINCode(),
	}
}
