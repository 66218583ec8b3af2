package deal

import (
	"strconv"
	"strings"

	"github.com/zbennett/bbo-extension/internal/notation"
)

// Table styles and types reported by sc_table_open.
const (
	StyleTeaching  = "teaching"
	StyleIndy      = "t-indy"
	StyleRobotRace = "t-mbt"
	StyleVugraph   = "vugraph"

	TypeBidding = "100"
)

const robotPrefix = "~~"

type Trick struct {
	Leader notation.Seat
	Cards  []notation.Card
}

func (t Trick) clone() Trick {
	t.Cards = append([]notation.Card(nil), t.Cards...)
	return t
}

// Table is the table the user is seated at or watching.
type Table struct {
	ID        string
	Style     string
	Type      string
	TKey      string
	ContextID string
	Title     string
	Host      string
	Players   [4]string
	MySeat    notation.Seat
	Seated    bool
}

func tableFromAttrs(attrs map[string]string) Table {
	return Table{
		ID:        attrs["table_id"],
		Style:     attrs["style"],
		Type:      attrs["type"],
		TKey:      attrs["tkey"],
		ContextID: attrs["context_id"],
		Title:     attrs["title"],
		Host:      attrs["h"],
	}
}

// Tourney tracks an event the user subscribed to.
type Tourney struct {
	Key     string
	Started bool
	Teams   map[string]string
	Details map[string]string
}

// PlayRecord is the card play of a finished deal kept in memory.
type PlayRecord struct {
	Cards   []string `json:"cardplay"`
	Claimed *int     `json:"nclaimed,omitempty"`
}

// State is the one live deal. Hands hold the wire (LIN) strings with
// notation.UnknownLIN for hands not yet seen.
type State struct {
	ID      string
	Board   string
	TableID string
	Dealer  string
	Vul     string
	Hands   [4]string
	Started int64

	auction history[notation.Call]
	play    history[notation.Card]
	tricks  []Trick
	current Trick

	contract        notation.Contract
	blast1          bool
	blast2          bool
	seenOpeningLead bool
	amDummy         bool
	reseating       bool
	timingSaved     bool
	notified        bool
	type1Repeat     bool
	lastActionTime  int64
	claimed         *int
	robotNorth      string
	key             string
	analysis        *notation.Analysis
}

func newState(attrs map[string]string, at int64) *State {
	s := &State{
		Board:          attrs["board"],
		TableID:        attrs["table_id"],
		Dealer:         attrs["dealer"],
		Vul:            attrs["vul"],
		Started:        at,
		lastActionTime: at,
	}
	for i, name := range seatAttrs {
		s.Hands[i] = handAttr(attrs, name)
	}
	return s
}

var seatAttrs = [4]string{"south", "west", "north", "east"}

func handAttr(attrs map[string]string, name string) string {
	h := strings.TrimSpace(attrs[name])
	if h == "" {
		return notation.UnknownLIN
	}
	return h
}

func (s *State) allHandsKnown() bool {
	for _, h := range s.Hands {
		if strings.EqualFold(h, notation.UnknownLIN) {
			return false
		}
	}
	return true
}

func (s *State) auctionComplete() bool {
	return notation.AuctionComplete(s.auction.items)
}

// lastCallsPass reports whether the final n calls are all passes.
func (s *State) lastCallsPass(n int) bool {
	for k := 0; k < n; k++ {
		c, ok := s.auction.last(k)
		if !ok || c != notation.Pass {
			return false
		}
	}
	return true
}

func (s *State) boardNumber() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s.Board))
	return n, err == nil && n > 0
}

// dotHands converts the wire hands, "" for unknown or unreadable ones.
func (s *State) dotHands() [4]string {
	var out [4]string
	for i, h := range s.Hands {
		d, err := notation.LINToDot(h)
		if err == nil {
			out[i] = d
		}
	}
	return out
}

// notationDeal builds the analysable view of the deal. Dealer and
// vulnerability come from the wire attributes when readable and from the
// board number otherwise.
func (s *State) notationDeal(players [4]string) notation.Deal {
	board, _ := s.boardNumber()
	d := notation.NewBoardDeal(board, s.dotHands())
	if seat, err := notation.ParseSeat(s.Dealer); err == nil && s.Dealer != "" {
		d.Dealer = seat
	}
	if vul, err := notation.ParseVulnerability(s.Vul); err == nil && s.Vul != "" {
		d.Vul = vul
	}
	d.Names = players
	d.Auction = append([]notation.Call(nil), s.auction.items...)
	d.Play = append([]notation.Card(nil), s.play.items...)
	if s.claimed != nil {
		n := *s.claimed
		d.Claimed = &n
	}
	if c := s.contract; c.HasDeclarer() {
		d.Declarer, d.HasDeclarer = c.Declarer, true
	} else if c := notation.DeriveContract(d.Auction, d.Dealer); c.HasDeclarer() {
		d.Declarer, d.HasDeclarer = c.Declarer, true
	}
	d.Analysis = s.analysis
	return d
}
