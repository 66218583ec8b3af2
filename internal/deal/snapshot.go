package deal

import (
	"github.com/zbennett/bbo-extension/internal/notation"
)

type TrickView struct {
	Leader string   `json:"leader"`
	Cards  []string `json:"cards"`
	Winner string   `json:"winner,omitempty"`
}

type TableView struct {
	ID      string    `json:"table_id"`
	Style   string    `json:"style"`
	Type    string    `json:"type"`
	TKey    string    `json:"tkey,omitempty"`
	Title   string    `json:"title,omitempty"`
	Players [4]string `json:"players"`
	MySeat  string    `json:"my_seat,omitempty"`
}

// Snapshot is a read-only copy of the live deal.
type Snapshot struct {
	ID              string             `json:"deal_id"`
	Board           string             `json:"board"`
	TableID         string             `json:"table_id"`
	Dealer          string             `json:"dealer"`
	Vul             string             `json:"vul"`
	Hands           [4]string          `json:"hands"`
	User            string             `json:"user,omitempty"`
	Table           TableView          `json:"table"`
	Auction         []string           `json:"auction"`
	CallTimes       []int64            `json:"call_times_ms"`
	AuctionComplete bool               `json:"auction_complete"`
	Contract        string             `json:"contract"`
	Declarer        string             `json:"declarer,omitempty"`
	Play            []string           `json:"play"`
	PlayTimes       []int64            `json:"play_times_ms"`
	Tricks          []TrickView        `json:"tricks"`
	CurrentTrick    *TrickView         `json:"current_trick,omitempty"`
	Claimed         *int               `json:"claimed,omitempty"`
	Complete        bool               `json:"complete"`
	AmDummy         bool               `json:"am_dummy"`
	Reseating       bool               `json:"reseating"`
	TimingSaved     bool               `json:"timing_saved"`
	DealKey         string             `json:"deal_key,omitempty"`
	Analysis        *notation.Analysis `json:"analysis,omitempty"`
	LIN             string             `json:"lin,omitempty"`
}

// Snapshot returns the live deal; ok is false when there is none.
func (m *Machine) Snapshot() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deal
	if d == nil {
		return Snapshot{}, false
	}
	nd := d.notationDeal(m.table.Players)
	s := Snapshot{
		ID:          d.ID,
		Board:       d.Board,
		TableID:     d.TableID,
		Dealer:      nd.Dealer.Name(),
		Vul:         nd.Vul.String(),
		Hands:       nd.Hands,
		User:        m.user,
		Table:       m.tableView(),
		AmDummy:     d.amDummy,
		Reseating:   d.reseating,
		TimingSaved: d.timingSaved,
		DealKey:     d.key,
		Analysis:    d.analysis,
	}
	calls, callTimes := d.auction.snapshot()
	s.Auction, s.CallTimes = callStrings(calls), callTimes
	cards, playTimes := d.play.snapshot()
	s.Play, s.PlayTimes = cardStrings(cards), playTimes
	s.AuctionComplete = d.auctionComplete()

	c := d.contract
	if !d.seenOpeningLead {
		c = notation.DeriveContract(calls, nd.Dealer)
	}
	s.Contract = c.String()
	if c.HasDeclarer() {
		s.Declarer = c.Declarer.Name()
	}

	s.Tricks = make([]TrickView, 0, len(d.tricks))
	for _, t := range d.tricks {
		tv := TrickView{Leader: t.Leader.Name(), Cards: cardStrings(t.Cards)}
		if w, err := notation.TrickWinner(t.Leader, t.Cards, trump(c)); err == nil {
			tv.Winner = w.Name()
		}
		s.Tricks = append(s.Tricks, tv)
	}
	if d.seenOpeningLead {
		s.CurrentTrick = &TrickView{Leader: d.current.Leader.Name(), Cards: cardStrings(d.current.Cards)}
	}
	if d.claimed != nil {
		n := *d.claimed
		s.Claimed = &n
	}
	s.Complete = len(cards) == deckSize || d.claimed != nil || (s.AuctionComplete && c.PassedOut())
	if nd.Complete() {
		if lin, err := notation.FormatLIN(nd); err == nil {
			s.LIN = lin
		}
	}
	return s, true
}

func (m *Machine) tableView() TableView {
	tv := TableView{
		ID:      m.table.ID,
		Style:   m.table.Style,
		Type:    m.table.Type,
		TKey:    m.table.TKey,
		Title:   m.table.Title,
		Players: m.table.Players,
	}
	if m.table.Seated {
		tv.MySeat = m.table.MySeat.Name()
	}
	return tv
}

// CurrentDeal returns the live deal in analysable form.
func (m *Machine) CurrentDeal() (notation.Deal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deal == nil {
		return notation.Deal{}, false
	}
	return m.deal.notationDeal(m.table.Players), true
}

// PlayRecord returns a saved card play by "hands-player" key.
func (m *Machine) PlayRecord(key string) (PlayRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.plays[key]
	return rec, ok
}

// Tourney returns a copy of a subscribed tournament.
func (m *Machine) Tourney(tkey string) (Tourney, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr := m.tourneys[tkey]
	if tr == nil {
		return Tourney{}, false
	}
	out := Tourney{Key: tr.Key, Started: tr.Started, Teams: map[string]string{}, Details: map[string]string{}}
	for k, v := range tr.Teams {
		out.Teams[k] = v
	}
	for k, v := range tr.Details {
		out.Details[k] = v
	}
	return out, true
}
