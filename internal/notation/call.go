package notation

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadCall = errors.New("bad_call")

// Denomination is ordered by bidding rank.
type Denomination int

const (
	DenomClubs Denomination = iota
	DenomDiamonds
	DenomHearts
	DenomSpades
	NoTrump
)

const denomLetters = "CDHSN"

func (d Denomination) Letter() string {
	if d < DenomClubs || d > NoTrump {
		return "?"
	}
	return denomLetters[d : d+1]
}

func (d Denomination) String() string {
	if d == NoTrump {
		return "NT"
	}
	return d.Letter()
}

// Trump returns the trump suit, false for notrump.
func (d Denomination) Trump() (Suit, bool) {
	switch d {
	case DenomSpades:
		return Spades, true
	case DenomHearts:
		return Hearts, true
	case DenomDiamonds:
		return Diamonds, true
	case DenomClubs:
		return Clubs, true
	}
	return 0, false
}

func ParseDenomination(v string) (Denomination, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "C":
		return DenomClubs, nil
	case "D":
		return DenomDiamonds, nil
	case "H":
		return DenomHearts, nil
	case "S":
		return DenomSpades, nil
	case "N", "NT":
		return NoTrump, nil
	}
	return 0, ErrBadCall
}

type CallKind int

const (
	CallPass CallKind = iota
	CallDouble
	CallRedouble
	CallBid
)

type Call struct {
	Kind  CallKind
	Level int
	Denom Denomination
}

var (
	Pass     = Call{Kind: CallPass}
	Double   = Call{Kind: CallDouble}
	Redouble = Call{Kind: CallRedouble}
)

func Bid(level int, denom Denomination) Call {
	return Call{Kind: CallBid, Level: level, Denom: denom}
}

// ParseCall accepts LIN tokens (p, d, r, 1N), display tokens (P, X, XX, 1NT)
// and "pass", in any case. A trailing alert marker '!' is ignored.
func ParseCall(v string) (Call, error) {
	v = strings.ToUpper(strings.TrimSuffix(strings.TrimSpace(v), "!"))
	switch v {
	case "P", "PASS":
		return Pass, nil
	case "D", "X", "DBL":
		return Double, nil
	case "R", "XX", "RDBL":
		return Redouble, nil
	}
	if len(v) < 2 || v[0] < '1' || v[0] > '7' {
		return Call{}, fmt.Errorf("%w: %q", ErrBadCall, v)
	}
	denom, err := ParseDenomination(v[1:])
	if err != nil {
		return Call{}, fmt.Errorf("%w: %q", ErrBadCall, v)
	}
	return Bid(int(v[0]-'0'), denom), nil
}

func (c Call) IsBid() bool { return c.Kind == CallBid }

// String renders the LIN token: p, d, r or level+denomination letter.
func (c Call) String() string {
	switch c.Kind {
	case CallPass:
		return "p"
	case CallDouble:
		return "d"
	case CallRedouble:
		return "r"
	}
	return fmt.Sprintf("%d%s", c.Level, c.Denom.Letter())
}

func ParseAuction(tokens []string) ([]Call, error) {
	out := make([]Call, 0, len(tokens))
	for _, t := range tokens {
		c, err := ParseCall(t)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

type DoubleState int

const (
	Undoubled DoubleState = iota
	Doubled
	Redoubled
)

func (d DoubleState) String() string {
	switch d {
	case Doubled:
		return "x"
	case Redoubled:
		return "xx"
	}
	return ""
}

const (
	LevelIncomplete = -1
	LevelPassedOut  = 0
)

type Contract struct {
	Level    int
	Denom    Denomination
	Doubled  DoubleState
	Declarer Seat
}

func (c Contract) Incomplete() bool { return c.Level == LevelIncomplete }

func (c Contract) PassedOut() bool { return c.Level == LevelPassedOut }

// HasDeclarer is true when the auction ended with a contract.
func (c Contract) HasDeclarer() bool { return c.Level > 0 }

// Leader is the seat on lead to the first trick.
func (c Contract) Leader() Seat { return c.Declarer.Next() }

func (c Contract) String() string {
	switch {
	case c.Incomplete():
		return "incomplete"
	case c.PassedOut():
		return "Pass"
	}
	return fmt.Sprintf("%d%s%s by %s", c.Level, c.Denom, strings.ToUpper(c.Doubled.String()), c.Declarer.Letter())
}

// AuctionComplete reports whether the auction is over: four passes, or three
// passes following at least one other call.
func AuctionComplete(auction []Call) bool {
	n := len(auction)
	if n < 4 {
		return false
	}
	for _, c := range auction[n-3:] {
		if c.Kind != CallPass {
			return false
		}
	}
	return true
}

// DeriveContract finds the final contract and declarer. The dealer is the
// seat that made auction[0].
func DeriveContract(auction []Call, dealer Seat) Contract {
	n := len(auction)
	if n == 4 && auction[0].Kind == CallPass && AuctionComplete(auction) {
		return Contract{Level: LevelPassedOut}
	}
	if !AuctionComplete(auction) {
		return Contract{Level: LevelIncomplete}
	}

	last := -1
	doubled := Undoubled
	for i := n - 4; i >= 0; i-- {
		c := auction[i]
		if c.IsBid() {
			last = i
			break
		}
		if c.Kind == CallRedouble {
			doubled = Redoubled
		} else if c.Kind == CallDouble && doubled == Undoubled {
			doubled = Doubled
		}
	}
	if last < 0 {
		// Only reachable with more than four passes, which cannot happen on a
		// legal auction.
		return Contract{Level: LevelPassedOut}
	}

	final := auction[last]
	contract := Contract{Level: final.Level, Denom: final.Denom, Doubled: doubled}
	for i := last % 2; i < n-3; i += 2 {
		if c := auction[i]; c.IsBid() && c.Denom == final.Denom {
			contract.Declarer = dealer.Rotate(i)
			break
		}
	}
	return contract
}
