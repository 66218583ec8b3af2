package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/zbennett/bbo-extension/internal/protocol"
)

func dialFeed(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	hs := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(hs.Close)
	url := "ws" + strings.TrimPrefix(hs.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func nextMessage(t *testing.T, feed <-chan *protocol.Message) *protocol.Message {
	t.Helper()
	select {
	case m := <-feed:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("no message on feed")
		return nil
	}
}

func TestFeedFramesReachChannelWithAcks(t *testing.T) {
	clock := quartz.NewMock(t)
	clock.Set(time.UnixMilli(5000))
	feed := make(chan *protocol.Message, 4)
	srv := NewServer(context.Background(), feed, clock)
	conn := dialFeed(t, srv)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","seq":1,"ts":9000,"msg":"<sc_deal_blast_complete/>"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	m := nextMessage(t, feed)
	if m.Tag != protocol.TagDealBlastComplete || m.At != 9000 {
		t.Fatalf("got tag %q at %d", m.Tag, m.At)
	}
	var ack AckFrame
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != FrameAck || ack.Seq != 1 || ack.Tag != string(protocol.TagDealBlastComplete) {
		t.Fatalf("unexpected ack %+v", ack)
	}

	// Raw frames are stamped on arrival, never earlier than the last message.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("cs_make_bid\x01bid=1C\x01")); err != nil {
		t.Fatalf("write: %v", err)
	}
	m = nextMessage(t, feed)
	if m.Tag != protocol.TagMakeBid || m.At != 9000 {
		t.Fatalf("got tag %q at %d", m.Tag, m.At)
	}
}

func TestFeedRejectsBadFrames(t *testing.T) {
	feed := make(chan *protocol.Message, 1)
	srv := NewServer(context.Background(), feed, quartz.NewMock(t))
	conn := dialFeed(t, srv)

	cases := []struct {
		frame string
		code  string
	}{
		{`{"type":"message",`, ErrCodeInvalidFrame},
		{`{"type":"hello","msg":"x"}`, ErrCodeInvalidFrame},
		{`{"type":"message","seq":4,"msg":""}`, ErrCodeEmptyMessage},
	}
	for _, tc := range cases {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(tc.frame)); err != nil {
			t.Fatalf("write: %v", err)
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var got ErrorFrame
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Type != FrameError || got.Error != tc.code {
			t.Fatalf("frame %s: got %+v, want %s", tc.frame, got, tc.code)
		}
	}
	if len(feed) != 0 {
		t.Fatalf("bad frames reached the feed")
	}
}

func TestFeedClosedWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv := NewServer(ctx, make(chan *protocol.Message), quartz.NewMock(t))
	conn := dialFeed(t, srv)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","seq":2,"msg":"<sc_undo count=\"1\"/>"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got ErrorFrame
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Error != ErrCodeFeedClosed || got.Seq != 2 {
		t.Fatalf("unexpected frame %+v", got)
	}
}
