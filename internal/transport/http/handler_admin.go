package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/zbennett/bbo-extension/internal/mcpserver"
	"github.com/zbennett/bbo-extension/internal/ws"
)

type AdminHandlers struct {
	deals mcpserver.DealSource
	feed  *ws.Server
}

func NewAdminHandlers(deals mcpserver.DealSource, feed *ws.Server) *AdminHandlers {
	return &AdminHandlers{deals: deals, feed: feed}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clients := 0
		if h.feed != nil {
			clients = h.feed.Clients()
		}
		_, live := h.deals.Snapshot()
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "feed_clients": clients, "live_deal": live})
	}
}
