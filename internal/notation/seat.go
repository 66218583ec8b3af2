package notation

import (
	"errors"
	"strings"
)

var (
	ErrBadSeat          = errors.New("bad_seat")
	ErrBadVulnerability = errors.New("bad_vulnerability")
)

// Seat indexes follow the wire order: South, West, North, East.
type Seat int

const (
	South Seat = iota
	West
	North
	East
)

const seatLetters = "SWNE"

var seatNames = [4]string{"south", "west", "north", "east"}

func (s Seat) Valid() bool { return s >= South && s <= East }

func (s Seat) Letter() string {
	if !s.Valid() {
		return "?"
	}
	return seatLetters[s : s+1]
}

// Name is the lowercase attribute name used on the wire ("south", "west", ...).
func (s Seat) Name() string {
	if !s.Valid() {
		return ""
	}
	return seatNames[s]
}

func (s Seat) String() string {
	n := s.Name()
	if n == "" {
		return "?"
	}
	return strings.ToUpper(n[:1]) + n[1:]
}

// Next returns the seat to the left, the next one to act.
func (s Seat) Next() Seat { return s.Rotate(1) }

func (s Seat) Partner() Seat { return s.Rotate(2) }

func (s Seat) Rotate(n int) Seat {
	return Seat(((int(s)+n)%4 + 4) % 4)
}

func (s Seat) Side() Side {
	if s == South || s == North {
		return SideNS
	}
	return SideEW
}

// ParseSeat accepts a seat letter or name in any case.
func ParseSeat(v string) (Seat, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for i, name := range seatNames {
		if v == name || (len(v) == 1 && v[0] == name[0]) {
			return Seat(i), nil
		}
	}
	return 0, ErrBadSeat
}

type Side int

const (
	SideNS Side = iota
	SideEW
)

func (s Side) String() string {
	if s == SideEW {
		return "EW"
	}
	return "NS"
}

type Vulnerability int

const (
	VulNone Vulnerability = iota
	VulNS
	VulEW
	VulBoth
)

func (v Vulnerability) String() string {
	switch v {
	case VulNS:
		return "NS"
	case VulEW:
		return "EW"
	case VulBoth:
		return "Both"
	default:
		return "None"
	}
}

// SolverCode is the vulnerability spelling the double dummy solver expects.
func (v Vulnerability) SolverCode() string {
	if v == VulBoth {
		return "All"
	}
	return v.String()
}

// LINCode is the single letter used by the LIN sv field and sc_deal vul attribute.
func (v Vulnerability) LINCode() string {
	switch v {
	case VulNS:
		return "n"
	case VulEW:
		return "e"
	case VulBoth:
		return "b"
	default:
		return "o"
	}
}

func (v Vulnerability) Vulnerable(side Side) bool {
	switch v {
	case VulBoth:
		return true
	case VulNS:
		return side == SideNS
	case VulEW:
		return side == SideEW
	default:
		return false
	}
}

// Swap exchanges the sides, used when a deal is rotated by an odd seat count.
func (v Vulnerability) Swap() Vulnerability {
	switch v {
	case VulNS:
		return VulEW
	case VulEW:
		return VulNS
	default:
		return v
	}
}

func ParseVulnerability(v string) (Vulnerability, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "o", "none", "-", "love":
		return VulNone, nil
	case "n", "ns":
		return VulNS, nil
	case "e", "ew":
		return VulEW, nil
	case "b", "both", "all":
		return VulBoth, nil
	}
	return VulNone, ErrBadVulnerability
}
