package notation

import (
	"errors"
	"regexp"
	"strconv"
)

var ErrBadTricks = errors.New("bad_tricks_table")

// Analysis is a double dummy result. The short JSON names are the persisted
// cache format.
type Analysis struct {
	// Tricks holds 20 hex digits: rows N, S, E, W; columns NT, S, H, D, C.
	Tricks string `json:"tr"`
	Vul    int    `json:"v"`
	// CachedAt is unix millis when the solver answered.
	CachedAt       int64   `json:"d"`
	ParContractsNS string  `json:"cNS"`
	ParScoreNS     int     `json:"sNS"`
	ParScoreEW     *int    `json:"sEW,omitempty"`
	ParContractsEW *string `json:"cEW,omitempty"`

	WasCached bool `json:"-"`
}

// Hot reports whether par depends on which side bids first.
func (a *Analysis) Hot() bool { return a.ParScoreEW != nil }

var tricksRows = [4]Seat{North, South, East, West}

var tricksCols = [5]Denomination{NoTrump, DenomSpades, DenomHearts, DenomDiamonds, DenomClubs}

// TricksFor returns the double dummy trick count for a declarer and strain.
func (a *Analysis) TricksFor(declarer Seat, denom Denomination) (int, error) {
	if len(a.Tricks) != 20 {
		return 0, ErrBadTricks
	}
	row, col := -1, -1
	for i, s := range tricksRows {
		if s == declarer {
			row = i
		}
	}
	for i, d := range tricksCols {
		if d == denom {
			col = i
		}
	}
	if row < 0 || col < 0 {
		return 0, ErrBadTricks
	}
	n, err := strconv.ParseUint(a.Tricks[row*5+col:row*5+col+1], 16, 8)
	if err != nil || n > 13 {
		return 0, ErrBadTricks
	}
	return int(n), nil
}

func ValidTricks(tr string) bool {
	if len(tr) != 20 {
		return false
	}
	for i := 0; i < len(tr); i++ {
		c := tr[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'd') && !(c >= 'A' && c <= 'D') {
			return false
		}
	}
	return true
}

var singleSeatContract = regexp.MustCompile(`(^|,)([SWNE]) `)

// Rotate returns a copy relabelled by n seats clockwise.
func (a Analysis) Rotate(n int) Analysis {
	n = ((n % 4) + 4) % 4
	if n == 0 {
		return a
	}
	if len(a.Tricks) == 20 {
		nr, sr, er, wr := a.Tricks[0:5], a.Tricks[5:10], a.Tricks[10:15], a.Tricks[15:20]
		switch n {
		case 1:
			a.Tricks = wr + er + nr + sr
		case 2:
			a.Tricks = sr + nr + wr + er
		case 3:
			a.Tricks = er + wr + sr + nr
		}
	}
	if n%2 == 1 {
		a.ParScoreNS = -a.ParScoreNS
		if a.ParScoreEW != nil {
			v := -*a.ParScoreEW
			a.ParScoreEW = &v
		}
	}
	a.ParContractsNS = rotateContracts(a.ParContractsNS, n)
	if a.ParContractsEW != nil {
		v := rotateContracts(*a.ParContractsEW, n)
		a.ParContractsEW = &v
	}
	return a
}

func rotateContracts(s string, n int) string {
	b := []byte(s)
	if n != 2 {
		for i := 0; i+1 < len(b); i++ {
			switch string(b[i : i+2]) {
			case "NS":
				b[i], b[i+1] = 'E', 'W'
				i++
			case "EW":
				b[i], b[i+1] = 'N', 'S'
				i++
			}
		}
	}
	out := string(b)
	return singleSeatContract.ReplaceAllStringFunc(out, func(m string) string {
		prefix := ""
		if m[0] == ',' {
			prefix, m = ",", m[1:]
		}
		seat, err := ParseSeat(m[:1])
		if err != nil {
			return prefix + m
		}
		return prefix + seat.Rotate(n).Letter() + " "
	})
}
