package mcpserver

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/zbennett/bbo-extension/internal/dd"
	"github.com/zbennett/bbo-extension/internal/deal"
	"github.com/zbennett/bbo-extension/internal/notation"
	"github.com/zbennett/bbo-extension/internal/store"
)

const solverReply = `{"sess":{"ddtricks":"1205012050cbd8dcbd8d"},"contractsNS":"NS:EW 7H","contractsEW":"EW:EW 7H","scoreNS":"NS -1510","scoreEW":"EW 1510","vul":"2"}`

type staticDeals struct {
	snap *deal.Snapshot
}

func (s staticDeals) Snapshot() (deal.Snapshot, bool) {
	if s.snap == nil {
		return deal.Snapshot{}, false
	}
	return *s.snap, true
}

type replySolver struct{}

func (replySolver) Solve(context.Context, notation.Deal) (*notation.Analysis, error) {
	return dd.ParseResponse([]byte(solverReply))
}

func testHands(t *testing.T) string {
	t.Helper()
	deck := notation.NewDeck()
	deck.Shuffle(rand.New(rand.NewPCG(5, 6)))
	hands := deck.DealHands()
	return strings.Join(hands[:3], ":")
}

func TestMCPServerTools(t *testing.T) {
	svc := dd.NewService(store.NewMemory(), replySolver{}, nil)
	srv := New(staticDeals{}, svc)
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	mcpClient, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	assertToolNames(t, mustListTools(t, mcpClient), "current_deal", "solve_deal", "convert_hand", "board_info")

	assertToolErrorCode(t, mustCallTool(t, mcpClient, "current_deal", nil), "no_deal")

	hands := testHands(t)
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "solve_deal", map[string]any{"hands": hands, "mode": "cache"}), "not_cached")

	res := mustCallTool(t, mcpClient, "solve_deal", map[string]any{"hands": hands, "board": 16})
	if res.IsError {
		t.Fatalf("solve_deal error: %v", res.StructuredContent)
	}
	payload := mapFromStructured(t, res)
	if asString(payload["tricks"]) != "1205012050cbd8dcbd8d" || asString(payload["dealer"]) != "west" {
		t.Fatalf("unexpected solve payload: %v", payload)
	}
	if cached, _ := payload["cached"].(bool); cached {
		t.Fatalf("first solve should come from the solver: %v", payload)
	}
	table, _ := payload["table"].(map[string]any)
	north, _ := table["N"].(map[string]any)
	if asFloat64(north["D"]) != 5 {
		t.Fatalf("unexpected trick table: %v", table)
	}

	res = mustCallTool(t, mcpClient, "solve_deal", map[string]any{"hands": hands, "mode": "cache"})
	if res.IsError {
		t.Fatalf("cached solve error: %v", res.StructuredContent)
	}
	if cached, _ := mapFromStructured(t, res)["cached"].(bool); !cached {
		t.Fatal("second solve should hit the cache")
	}

	res = mustCallTool(t, mcpClient, "convert_hand", map[string]any{"hand": "AT.QJ2.AKQT9.A75", "to": "lin"})
	payload = mapFromStructured(t, res)
	if asString(payload["hand"]) != "STAH2JQD9TQKAC57A" || asFloat64(payload["hcp"]) != 20 {
		t.Fatalf("unexpected convert payload: %v", payload)
	}
	res = mustCallTool(t, mcpClient, "convert_hand", map[string]any{"hand": "STAH2JQD9TQKAC57A", "to": "dot"})
	if got := asString(mapFromStructured(t, res)["hand"]); got != "AT.QJ2.AKQT9.A75" {
		t.Fatalf("lin to dot = %q", got)
	}

	payload = mapFromStructured(t, mustCallTool(t, mcpClient, "board_info", map[string]any{"board": 16}))
	if asString(payload["dealer"]) != "west" || asString(payload["vulnerability"]) != "EW" {
		t.Fatalf("unexpected board info: %v", payload)
	}
}

func TestMCPServerToolErrors(t *testing.T) {
	svc := dd.NewService(store.NewMemory(), replySolver{}, nil)
	srv := New(staticDeals{snap: &deal.Snapshot{ID: "01J", Board: "3"}}, svc)
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	mcpClient, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	res := mustCallTool(t, mcpClient, "current_deal", nil)
	if res.IsError || asString(mapFromStructured(t, res)["board"]) != "3" {
		t.Fatalf("unexpected current_deal: %v", res.StructuredContent)
	}

	assertToolErrorCode(t, mustCallTool(t, mcpClient, "solve_deal", map[string]any{"hands": "AKQ.JT9.876.5432"}), "invalid_request")
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "solve_deal", map[string]any{"hands": testHands(t), "mode": "later"}), "invalid_request")
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "solve_deal", map[string]any{"hands": testHands(t), "board": 0}), "invalid_request")
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "convert_hand", map[string]any{"hand": "SAKX", "to": "dot"}), "invalid_request")
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "convert_hand", map[string]any{"hand": "AKQ...", "to": "pbn"}), "invalid_request")
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "board_info", map[string]any{"board": -2}), "invalid_request")
}

func TestParseSolveMode(t *testing.T) {
	tests := []struct {
		v    string
		want dd.Mode
		ok   bool
	}{
		{"", dd.FetchIfMissing, true},
		{"fetch", dd.FetchIfMissing, true},
		{" Cache ", dd.CacheOnly, true},
		{"later", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseSolveMode(tt.v)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("ParseSolveMode(%q) = %v, %v", tt.v, got, ok)
		}
	}
}

func newMCPClient(t *testing.T, endpoint string) (*client.Client, func()) {
	t.Helper()
	ctx := context.Background()
	trans, err := transport.NewStreamableHTTP(endpoint)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if err := trans.Start(ctx); err != nil {
		t.Fatalf("transport start: %v", err)
	}
	c := client.NewClient(trans)
	_, err = c.Initialize(ctx, mcp.InitializeRequest{Params: mcp.InitializeParams{ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION}})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c, func() { _ = trans.Close() }
}

func mustListTools(t *testing.T, c *client.Client) []mcp.Tool {
	t.Helper()
	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	return res.Tools
}

func assertToolNames(t *testing.T, tools []mcp.Tool, expected ...string) {
	t.Helper()
	got := make([]string, 0, len(tools))
	for _, tool := range tools {
		got = append(got, tool.Name)
	}
	sort.Strings(got)
	sort.Strings(expected)
	if len(got) != len(expected) {
		t.Fatalf("tool count mismatch got=%v expected=%v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("tool list mismatch got=%v expected=%v", got, expected)
		}
	}
}

func mustCallTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}})
	if err != nil {
		t.Fatalf("call tool %s: %v", name, err)
	}
	return res
}

func assertToolErrorCode(t *testing.T, res *mcp.CallToolResult, want string) {
	t.Helper()
	if !res.IsError {
		t.Fatalf("expected tool error %q, got success: %v", want, res.StructuredContent)
	}
	payload := mapFromStructured(t, res)
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("error payload missing 'error': %v", payload)
	}
	got := asString(errObj["code"])
	if got != want {
		t.Fatalf("error code=%q want=%q payload=%v", got, want, payload)
	}
}

func mapFromStructured(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	b, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat64(v any) float64 {
	f, _ := v.(float64)
	return f
}
