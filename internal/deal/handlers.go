package deal

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zbennett/bbo-extension/internal/notation"
	"github.com/zbennett/bbo-extension/internal/protocol"
)

// CallMade handles a call announced by the server. Calls repeated to a
// player who became dummy or is being reseated are ignored. Calls that
// arrive before the catch-up burst ends carry no timing.
func (m *Machine) CallMade(ctx context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deal
	if d == nil || d.amDummy || d.reseating {
		return
	}
	raw, ok := msg.Scan("call")
	if !ok {
		log.Warn().Str("tag", string(msg.Tag)).Msg("call missing")
		return
	}
	call, err := notation.ParseCall(raw)
	if err != nil {
		log.Warn().Err(err).Str("tag", string(msg.Tag)).Msg("call unreadable")
		return
	}
	var elapsed int64
	if d.blast1 {
		elapsed = msg.At - d.lastActionTime
	}
	m.recordCall(ctx, call, msg.At, elapsed)
}

// MakeBid handles a call made by the user.
func (m *Machine) MakeBid(ctx context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deal
	if d == nil {
		return
	}
	raw, ok := msg.Scan("bid")
	if !ok {
		log.Warn().Str("tag", string(msg.Tag)).Msg("bid missing")
		return
	}
	call, err := notation.ParseCall(raw)
	if err != nil {
		log.Warn().Err(err).Str("tag", string(msg.Tag)).Msg("bid unreadable")
		return
	}
	m.recordCall(ctx, call, msg.At, msg.At-d.lastActionTime)
}

// CardPlayed handles a card announced by the server. While the user is
// dummy the play is recapped until the second catch-up burst ends.
func (m *Machine) CardPlayed(ctx context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deal
	if d == nil || (d.amDummy && !d.blast2) {
		return
	}
	m.playCard(ctx, msg)
}

// PlayCard handles a card played by the user.
func (m *Machine) PlayCard(ctx context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deal == nil {
		return
	}
	m.playCard(ctx, msg)
}

func (m *Machine) playCard(ctx context.Context, msg *protocol.Message) {
	d := m.deal
	raw, ok := msg.Scan("card")
	if !ok || len(raw) < 2 {
		log.Warn().Str("tag", string(msg.Tag)).Msg("card missing")
		return
	}
	card, err := notation.ParseCard(raw[:2])
	if err != nil {
		log.Warn().Err(err).Str("tag", string(msg.Tag)).Msg("card unreadable")
		return
	}
	var elapsed int64
	if d.blast1 {
		elapsed = msg.At - d.lastActionTime
	}
	m.recordCard(ctx, card, msg.At, elapsed)
}

// Deal handles sc_deal. It starts a new deal, or reveals all four hands when
// the user becomes dummy on the current one.
func (m *Machine) Deal(ctx context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deal
	if d != nil && d.reseating {
		log.Debug().Msg("deal recap during reseating ignored")
		return
	}
	attrs := msg.Attrs()
	if attrs == nil {
		log.Warn().Err(msg.Err()).Str("tag", string(msg.Tag)).Msg("deal unreadable")
		return
	}
	board, tableID := attrs["board"], attrs["table_id"]

	// Robot races send the same deal twice with the other hands hidden.
	if d != nil && d.blast1 && d.Board == board && m.table.Style == StyleRobotRace &&
		handAttr(attrs, "west") == notation.UnknownLIN &&
		handAttr(attrs, "north") == notation.UnknownLIN &&
		handAttr(attrs, "east") == notation.UnknownLIN {
		d.type1Repeat = true
		return
	}

	// Bidding and teaching tables sometimes label the first two boards 1.
	doubleBoard1 := d != nil && board == "1" &&
		(m.table.Type == TypeBidding || m.table.Style == StyleTeaching) &&
		handAttr(attrs, "south") != d.Hands[notation.South]

	if d == nil || d.Board != board || d.TableID != tableID || doubleBoard1 {
		m.dropDeal(ctx, "new deal")
		m.startDeal(attrs, msg.At)
		m.prefetch(ctx)
		return
	}

	for i, name := range seatAttrs {
		d.Hands[i] = handAttr(attrs, name)
	}
	d.amDummy = true
	log.Info().Str("board", d.Board).Msg("player is dummy, full deal known")
}

// DealBlastComplete marks the end of the catch-up burst after sc_deal. The
// first one starts the clock, the second ends the dummy recap.
func (m *Machine) DealBlastComplete(_ context.Context, _ *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deal
	if d == nil || d.reseating {
		return
	}
	if d.type1Repeat {
		d.type1Repeat = false
		return
	}
	if !d.blast1 {
		d.blast1 = true
	} else {
		d.blast2 = true
	}
}

// ClaimAccepted ends play early.
func (m *Machine) ClaimAccepted(ctx context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deal
	if d == nil {
		return
	}
	raw, _ := msg.Scan("tricks")
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("tricks", raw).Msg("claim without trick count")
		return
	}
	d.claimed = &n
	log.Info().Str("board", d.Board).Int("tricks", n).Msg("claim accepted")
	m.saveTiming(ctx, "claim accepted")
	if m.table.Style == StyleTeaching {
		m.savePlay(&n)
	}
	m.finishDeal(ctx)
}

// TableOpen handles sc_table_node and sc_table_open. A new context id means
// the previous deal is over.
func (m *Machine) TableOpen(ctx context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := msg.Element(string(protocol.TagTableOpen))
	if !ok {
		log.Warn().Err(msg.Err()).Str("tag", string(msg.Tag)).Msg("table open without sc_table_open")
		return
	}
	if m.deal != nil && m.deal.reseating && el.Attrs["style"] == StyleIndy {
		return
	}
	t := tableFromAttrs(el.Attrs)
	if t.ID == "" {
		t.ID = msg.AttrOr("table_id", "")
	}
	m.table = t
	if m.contextID != t.ContextID {
		m.contextID = t.ContextID
		m.dropDeal(ctx, "new table context")
	}
	if tr := m.tourneys[t.TKey]; tr != nil && !tr.Started {
		tr.Started = true
		log.Info().Str("tkey", t.TKey).Msg("tournament starting")
	}
	log.Info().Str("table_id", t.ID).Str("type", t.Type).Str("style", t.Style).Str("host", t.Host).Str("title", t.Title).Msg("table")
}

// TableOpenComplete ends a reseating.
func (m *Machine) TableOpenComplete(_ context.Context, _ *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deal != nil {
		m.deal.reseating = false
	}
}

func (m *Machine) PlayerSit(_ context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seat, err := notation.ParseSeat(msg.AttrOr("seat", ""))
	if err != nil {
		log.Warn().Err(err).Str("tag", string(msg.Tag)).Msg("sit without seat")
		return
	}
	username := msg.AttrOr("username", "")

	switch {
	case reseatedDeclarerSits(m.deal, m.table, seat, username, m.user):
		// Keep the user in South for keying; the robot goes back to North.
		log.Info().Str("board", m.deal.Board).Msg("undoing declarer reseat")
		m.table.Players[notation.South] = username
		m.table.Players[notation.North] = m.deal.robotNorth
	case m.table.Style == StyleVugraph:
		m.table.Players[seat] = msg.AttrOr("label", username)
	default:
		m.table.Players[seat] = username
		if username != "" && username == m.user {
			m.table.MySeat, m.table.Seated = seat, true
		}
	}

	if m.deal != nil && m.deal.Board != "" && allSeated(m.table.Players) {
		m.deal.key = m.deal.Board + "+" + strings.Join(m.table.Players[:], "+")
	}
}

func (m *Machine) PlayerStand(_ context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seat, err := notation.ParseSeat(msg.AttrOr("seat", ""))
	if err != nil {
		log.Warn().Err(err).Str("tag", string(msg.Tag)).Msg("stand without seat")
		return
	}
	if seat == notation.North && m.table.Style == StyleIndy && m.deal != nil &&
		strings.HasPrefix(m.table.Players[notation.North], robotPrefix) {
		m.deal.robotNorth = m.table.Players[notation.North]
	}
	if m.table.Seated && m.table.MySeat == seat {
		m.table.Seated = false
	}
	m.table.Players[seat] = ""
}

func (m *Machine) VoteAccepted(_ context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.AttrOr("type", "") == "claim" && m.deal != nil {
		log.Debug().Str("board", m.deal.Board).Msg("claim vote accepted")
	}
}

// VoteRejected restarts the clock: time spent on a refused claim or undo is
// not thinking time.
func (m *Machine) VoteRejected(_ context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch msg.AttrOr("type", "") {
	case "claim", "undo":
		if m.deal != nil {
			m.deal.lastActionTime = msg.At
		}
	}
}

// TableClose ends the deal unless the close is part of a declarer reseat.
func (m *Machine) TableClose(ctx context.Context, _ *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if declarerReseating(m.deal, m.table) {
		log.Info().Str("board", m.deal.Board).Msg("player is being reseated to declare")
		m.deal.reseating = true
		return
	}
	m.dropDeal(ctx, "table closed")
}

func (m *Machine) NotifyUser(_ context.Context, _ *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deal != nil {
		m.deal.notified = true
	}
}

func (m *Machine) Undo(ctx context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deal == nil {
		return
	}
	count, err := strconv.Atoi(msg.AttrOr("count", ""))
	if err != nil {
		log.Error().Str("raw", msg.Raw).Msg("undo count unreadable")
		return
	}
	m.undo(ctx, count, msg.AttrOr("position", ""), msg.At)
}

func (m *Machine) LoginOK(ctx context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = msg.AttrOr("user", "")
	m.dropDeal(ctx, "login")
	log.Info().Str("user", m.user).Msg("logged in")
}

// SessionEnd handles logout and boot.
func (m *Machine) SessionEnd(ctx context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropDeal(ctx, "session end")
	log.Info().Str("user", m.user).Str("tag", string(msg.Tag)).Msg("session ended")
	m.user = ""
	m.table = Table{}
	m.contextID = ""
}

func (m *Machine) TourneySubscribe(_ context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tkey, ok := msg.Attr("tkey")
	if !ok || tkey == "" {
		return
	}
	m.tourneys[tkey] = &Tourney{Key: tkey, Teams: map[string]string{}}
}

func (m *Machine) TourneyRegister(_ context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr := m.tourneys[msg.AttrOr("tkey", "")]
	if tr == nil {
		return
	}
	tr.Teams[msg.AttrOr("teamid", "")] = msg.AttrOr("teamname", "")
}

func (m *Machine) TourneyDetails(_ context.Context, msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tkey, _ := msg.Scan("tkey")
	tr := m.tourneys[tkey]
	if tr == nil {
		return
	}
	tr.Details = msg.Attrs()
}

func allSeated(players [4]string) bool {
	for _, p := range players {
		if p == "" {
			return false
		}
	}
	return true
}
