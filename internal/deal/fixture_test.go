package deal_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/zbennett/bbo-extension/internal/config"
	"github.com/zbennett/bbo-extension/internal/dd"
	"github.com/zbennett/bbo-extension/internal/deal"
	"github.com/zbennett/bbo-extension/internal/dispatch"
	"github.com/zbennett/bbo-extension/internal/events"
	"github.com/zbennett/bbo-extension/internal/notation"
	"github.com/zbennett/bbo-extension/internal/protocol"
	"github.com/zbennett/bbo-extension/internal/store"
	"github.com/zbennett/bbo-extension/internal/timing"
)

const solverReply = `{"sess":{"ddtricks":"1205012050cbd8dcbd8d"},"contractsNS":"NS:EW 7H","contractsEW":"EW:EW 7H","scoreNS":"NS -1510","scoreEW":"EW 1510","vul":"0"}`

type networkSolver struct {
	gate  chan struct{}
	calls atomic.Int32
}

func (n *networkSolver) Solve(ctx context.Context, _ notation.Deal) (*notation.Analysis, error) {
	n.calls.Add(1)
	if n.gate != nil {
		<-n.gate
	}
	return dd.ParseResponse([]byte(solverReply))
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	m      *deal.Machine
	disp   *dispatch.Dispatcher
	kv     *store.Memory
	svc    *dd.Service
	net    *networkSolver
	rec    *timing.Recorder
	events *events.Buffer
	clock  *quartz.Mock
	at     int64
	lin    [4]string
	dot    [4]string
}

func newFixture(t *testing.T, ddMode string, net *networkSolver) *fixture {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC))
	if net == nil {
		net = &networkSolver{}
	}
	kv := store.NewMemory()
	svc := dd.NewService(kv, net, clock)
	rec := timing.NewRecorder(kv, clock)
	buf := events.NewBuffer(100, clock)
	m := deal.NewMachine(deal.Options{Solver: svc, Timing: rec, Events: buf, Clock: clock, DDMode: ddMode})
	f := &fixture{
		t: t, ctx: context.Background(), m: m, disp: dispatch.New(m),
		kv: kv, svc: svc, net: net, rec: rec, events: buf, clock: clock, at: 100000,
	}
	f.shuffle(1)
	return f
}

func newQuietFixture(t *testing.T) *fixture {
	return newFixture(t, config.DDModeOff, nil)
}

func (f *fixture) shuffle(seed uint64) {
	deck := notation.NewDeck()
	deck.Shuffle(rand.New(rand.NewPCG(seed, 99)))
	f.dot = deck.DealHands()
	for i, h := range f.dot {
		lin, err := notation.DotToLIN(h)
		require.NoError(f.t, err)
		f.lin[i] = lin
	}
}

// send delivers a message one second after the previous one.
func (f *fixture) send(raw string) {
	f.t.Helper()
	f.at += 1000
	f.disp.Dispatch(f.ctx, protocol.NewMessage(raw, f.at))
}

func (f *fixture) login(user string) {
	f.send(fmt.Sprintf(`<sc_loginok user="%s" sp="x"/>`, user))
}

func (f *fixture) table(style, typ, tkey, contextID string) {
	f.send(fmt.Sprintf(`<sc_table_node><sc_table_open table_id="42" style="%s" type="%s" tkey="%s" context_id="%s" title="t"/></sc_table_node>`,
		style, typ, tkey, contextID))
}

// deal sends sc_deal; hidden seats get the unknown placeholder.
func (f *fixture) deal(board int, visible ...notation.Seat) {
	hands := [4]string{notation.UnknownLIN, notation.UnknownLIN, notation.UnknownLIN, notation.UnknownLIN}
	if len(visible) == 0 {
		hands = f.lin
	}
	for _, s := range visible {
		hands[s] = f.lin[s]
	}
	dealer, vul := notation.BoardDealerVul(board)
	f.send(fmt.Sprintf(`<sc_deal table_id="42" board="%d" dealer="%s" vul="%s" south="%s" west="%s" north="%s" east="%s"/>`,
		board, dealer.Letter(), vul.LINCode(), hands[0], hands[1], hands[2], hands[3]))
}

func (f *fixture) blast() {
	f.send(`<sc_deal_blast_complete/>`)
}

func (f *fixture) calls(tokens ...string) {
	for _, c := range tokens {
		f.send(fmt.Sprintf(`<sc_call_made table_id="42" call="%s" alert="N"/>`, c))
	}
}

func (f *fixture) cards(tokens ...string) {
	for _, c := range tokens {
		f.send(fmt.Sprintf(`<sc_card_played table_id="42" card="%s"/>`, c))
	}
}

func (f *fixture) sit(seat, user string) {
	f.send(fmt.Sprintf(`<sc_player_sit table_id="42" seat="%s" username="%s"/>`, seat, user))
}

func (f *fixture) undo(count int, position string) {
	f.send(fmt.Sprintf(`<sc_undo table_id="42" position="%s" count="%d"/>`, position, count))
}

func (f *fixture) snapshot() deal.Snapshot {
	f.t.Helper()
	s, ok := f.m.Snapshot()
	require.True(f.t, ok, "expected a live deal")
	return s
}

func (f *fixture) kinds() []string {
	var out []string
	for _, ev := range f.events.ReplayAfter("") {
		out = append(out, ev.Event)
	}
	return out
}

// allCards lists the deck in a fixed order, for play that only needs to be
// well formed.
func allCards() []string {
	out := make([]string, 0, 52)
	for _, s := range "SHDC" {
		for _, r := range "23456789TJQKA" {
			out = append(out, string(s)+string(r))
		}
	}
	return out
}
