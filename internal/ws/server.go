package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/zbennett/bbo-extension/internal/protocol"
)

type Client struct {
	conn *websocket.Conn
	send chan []byte
	addr string
}

// Server accepts capture connections on the feed websocket and pushes every
// message it receives into one channel, in arrival order. Timestamps never go
// backwards across connections.
type Server struct {
	feed     chan<- *protocol.Message
	clock    quartz.Clock
	upgrader websocket.Upgrader
	done     <-chan struct{}
	mu       sync.Mutex
	lastAt   int64
	clients  map[*Client]bool
}

// NewServer feeds messages into feed until ctx ends.
func NewServer(ctx context.Context, feed chan<- *protocol.Message, clock quartz.Clock) *Server {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Server{
		feed:     feed,
		clock:    clock,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		done:     ctx.Done(),
		clients:  map[*Client]bool{},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, 8), addr: r.RemoteAddr}
	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()
	metricConnections.Add(1)
	log.Info().Str("remote", client.addr).Msg("feed connected")

	go s.writeLoop(client)
	s.readLoop(client)
}

// Clients reports the number of open capture connections.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		metricFrames.Add(1)
		f, ok := decodeFrame(frame)
		if !ok {
			metricFramesRejected.Add(1)
			s.sendError(c, 0, ErrCodeInvalidFrame)
			continue
		}
		if f.Msg == "" {
			metricFramesRejected.Add(1)
			s.sendError(c, f.Seq, ErrCodeEmptyMessage)
			continue
		}
		msg := protocol.NewMessage(f.Msg, s.stamp(f.TS))
		select {
		case s.feed <- msg:
		case <-s.done:
			s.sendError(c, f.Seq, ErrCodeFeedClosed)
			continue
		}
		if f.Seq > 0 {
			s.sendAck(c, f.Seq, msg.Tag)
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

// decodeFrame accepts a JSON MessageFrame or, for simple capture scripts, the
// raw message text itself.
func decodeFrame(frame []byte) (MessageFrame, bool) {
	text := strings.TrimSpace(string(frame))
	if !strings.HasPrefix(text, "{") {
		return MessageFrame{Type: FrameMessage, Msg: text}, true
	}
	var f MessageFrame
	if err := json.Unmarshal(frame, &f); err != nil || f.Type != FrameMessage {
		return MessageFrame{}, false
	}
	return f, true
}

// stamp keeps message times monotonic.
func (s *Server) stamp(ts int64) int64 {
	if ts <= 0 {
		ts = s.clock.Now().UnixMilli()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts < s.lastAt {
		ts = s.lastAt
	}
	s.lastAt = ts
	return ts
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	metricConnections.Add(-1)
	log.Info().Str("remote", c.addr).Msg("feed disconnected")
	safeClose(c.send)
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	ch <- msg
}

func (s *Server) sendAck(c *Client, seq int64, tag protocol.Tag) {
	msg, _ := json.Marshal(AckFrame{Type: FrameAck, ProtocolVersion: ProtocolVersion, Seq: seq, Tag: string(tag)})
	safeSend(c.send, msg)
}

func (s *Server) sendError(c *Client, seq int64, code string) {
	msg, _ := json.Marshal(ErrorFrame{Type: FrameError, ProtocolVersion: ProtocolVersion, Seq: seq, Error: code})
	safeSend(c.send, msg)
}
