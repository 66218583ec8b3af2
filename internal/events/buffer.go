package events

import (
	"strconv"
	"sync"

	"github.com/coder/quartz"
)

const (
	KindDealStarted     = "deal_started"
	KindAuctionComplete = "auction_complete"
	KindTrickComplete   = "trick_complete"
	KindDealComplete    = "deal_complete"
	KindUndo            = "undo"
	KindDDResult        = "dd_result"
)

type Event struct {
	EventID  string `json:"event_id"`
	Event    string `json:"event"`
	DealID   string `json:"deal_id,omitempty"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data"`
}

// Buffer keeps the most recent events for replay and fans new ones out to
// subscribers. Slow subscribers miss events rather than block publishers.
type Buffer struct {
	mu       sync.Mutex
	clock    quartz.Clock
	nextID   int64
	max      int
	events   []Event
	watchers map[chan Event]struct{}
	closed   bool
}

func NewBuffer(max int, clock quartz.Clock) *Buffer {
	if max <= 0 {
		max = 500
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Buffer{
		max:      max,
		clock:    clock,
		watchers: map[chan Event]struct{}{},
	}
}

func (b *Buffer) Publish(event, dealID string, data any) Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return Event{}
	}
	b.nextID++
	ev := Event{
		EventID:  strconv.FormatInt(b.nextID, 10),
		Event:    event,
		DealID:   dealID,
		ServerTS: b.clock.Now().UnixMilli(),
		Data:     data,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	metricPublished.Add(1)
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
			metricDropped.Add(1)
		}
	}
	return ev
}

// ReplayAfter returns buffered events newer than lastEventID, or all of them
// when the id is empty or unparseable.
func (b *Buffer) ReplayAfter(lastEventID string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if lastEventID == "" || err != nil {
		last = 0
	}
	out := make([]Event, 0, len(b.events))
	for _, ev := range b.events {
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (b *Buffer) Subscribe() chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	return ch
}

func (b *Buffer) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}
