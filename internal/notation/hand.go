package notation

import (
	"errors"
	"strings"
)

// UnknownLIN is the wire placeholder for a hand that has not been revealed.
// The dot notation equivalent is the empty string.
const UnknownLIN = "SHDC"

var (
	ErrBadHand       = errors.New("bad_hand")
	ErrDuplicateCard = errors.New("duplicate_card")
	ErrHandSize      = errors.New("hand_not_13_cards")
	ErrIncomplete    = errors.New("deal_incomplete")
)

type cardSet [52]bool

func (s *cardSet) add(c Card) bool {
	i := c.Index()
	if s[i] {
		return false
	}
	s[i] = true
	return true
}

func (s *cardSet) has(c Card) bool { return s[c.Index()] }

func (s *cardSet) count() int {
	n := 0
	for _, v := range s {
		if v {
			n++
		}
	}
	return n
}

func (s *cardSet) merge(o cardSet) error {
	for i, v := range o {
		if !v {
			continue
		}
		if s[i] {
			return ErrDuplicateCard
		}
		s[i] = true
	}
	return nil
}

func (s *cardSet) complement() cardSet {
	var out cardSet
	for i, v := range s {
		out[i] = !v
	}
	return out
}

func (s *cardSet) cards() []Card {
	out := make([]Card, 0, 13)
	for i, v := range s {
		if v {
			out = append(out, cardFromIndex(i))
		}
	}
	return out
}

// dot renders high-to-low ranks per suit, suits joined by '.'.
func (s *cardSet) dot() string {
	var b strings.Builder
	for suit := Spades; suit <= Clubs; suit++ {
		if suit > Spades {
			b.WriteByte('.')
		}
		for r := Ace; r >= Two; r-- {
			if s.has(Card{Rank: r, Suit: suit}) {
				b.WriteByte(r.Letter())
			}
		}
	}
	return b.String()
}

// lin renders each suit letter followed by its ranks low-to-high.
func (s *cardSet) lin() string {
	var b strings.Builder
	for suit := Spades; suit <= Clubs; suit++ {
		b.WriteByte(suit.Letter())
		for r := Two; r <= Ace; r++ {
			if s.has(Card{Rank: r, Suit: suit}) {
				b.WriteByte(r.Letter())
			}
		}
	}
	return b.String()
}

func parseDot(hand string) (cardSet, error) {
	var set cardSet
	suits := strings.Split(strings.TrimSpace(hand), ".")
	if len(suits) != 4 {
		return set, ErrBadHand
	}
	for i, ranks := range suits {
		for j := 0; j < len(ranks); j++ {
			r, err := RankFromLetter(ranks[j])
			if err != nil {
				return set, ErrBadHand
			}
			if !set.add(Card{Rank: r, Suit: Suit(i)}) {
				return set, ErrDuplicateCard
			}
		}
	}
	return set, nil
}

// parseLINHand reads a LIN style hand. Input seen in the wild varies: suits in
// any order, ranks in either direction, lowercase letters, "10" for ten and
// trailing void suits left off entirely.
func parseLINHand(hand string) (cardSet, error) {
	var set cardSet
	hand = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(hand), "10", "T"))
	suit := Suit(-1)
	for i := 0; i < len(hand); i++ {
		if s, err := SuitFromLetter(hand[i]); err == nil {
			suit = s
			continue
		}
		r, err := RankFromLetter(hand[i])
		if err != nil || suit < 0 {
			return set, ErrBadHand
		}
		if !set.add(Card{Rank: r, Suit: suit}) {
			return set, ErrDuplicateCard
		}
	}
	return set, nil
}

// DotToLIN converts "AT.QJ2.AKQT9.A75" into "STAH2JQD9TQKAC57A".
// An unknown hand (empty string) maps to the wire placeholder.
func DotToLIN(hand string) (string, error) {
	if hand == "" {
		return UnknownLIN, nil
	}
	set, err := parseDot(hand)
	if err != nil {
		return "", err
	}
	return set.lin(), nil
}

// LINToDot converts a LIN hand into canonical dot notation. The placeholder
// "SHDC" yields the empty string.
func LINToDot(hand string) (string, error) {
	if strings.EqualFold(strings.TrimSpace(hand), UnknownLIN) {
		return "", nil
	}
	set, err := parseLINHand(hand)
	if err != nil {
		return "", err
	}
	return set.dot(), nil
}

// CanonicalDot re-sorts a dot hand. Empty stays empty.
func CanonicalDot(hand string) (string, error) {
	if hand == "" {
		return "", nil
	}
	set, err := parseDot(hand)
	if err != nil {
		return "", err
	}
	return set.dot(), nil
}

// HandSize counts cards in a dot hand, 0 for unknown or malformed hands.
func HandSize(hand string) int {
	if hand == "" {
		return 0
	}
	set, err := parseDot(hand)
	if err != nil {
		return 0
	}
	return set.count()
}

// LINHandsToDot converts a comma separated LIN deal. With three hands (or
// four where the last is blank) the missing East hand is rebuilt from the
// cards left over.
func LINHandsToDot(md string) ([4]string, error) {
	var out [4]string
	parts := strings.Split(strings.TrimSpace(md), ",")
	if len(parts) == 4 && strings.TrimSpace(parts[3]) == "" {
		parts = parts[:3]
	}
	switch len(parts) {
	case 4:
		for i, p := range parts {
			h, err := LINToDot(p)
			if err != nil {
				return out, err
			}
			out[i] = h
		}
		return out, nil
	case 3:
		for i, p := range parts {
			h, err := LINToDot(p)
			if err != nil {
				return out, err
			}
			out[i] = h
		}
		return FillMissingHand(out)
	default:
		return out, ErrBadHand
	}
}

// FillMissingHand completes a deal where exactly one seat is unknown and the
// other three hold 13 cards each. Deals that are already complete are
// validated and returned unchanged.
func FillMissingHand(hands [4]string) ([4]string, error) {
	missing := -1
	var union cardSet
	for i, h := range hands {
		if h == "" {
			if missing >= 0 {
				return hands, ErrIncomplete
			}
			missing = i
			continue
		}
		set, err := parseDot(h)
		if err != nil {
			return hands, err
		}
		if set.count() != 13 {
			return hands, ErrHandSize
		}
		if err := union.merge(set); err != nil {
			return hands, err
		}
	}
	if missing < 0 {
		return hands, nil
	}
	rest := union.complement()
	hands[missing] = rest.dot()
	return hands, nil
}

// ValidateDeal checks that four hands of 13 cards cover the whole deck.
func ValidateDeal(hands [4]string) error {
	var union cardSet
	for _, h := range hands {
		if h == "" {
			return ErrIncomplete
		}
		set, err := parseDot(h)
		if err != nil {
			return err
		}
		if set.count() != 13 {
			return ErrHandSize
		}
		if err := union.merge(set); err != nil {
			return err
		}
	}
	return nil
}

// HandHCP counts 4-3-2-1 high card points.
func HandHCP(hand string) (int, error) {
	if hand == "" {
		return 0, nil
	}
	set, err := parseDot(hand)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range set.cards() {
		total += c.HCP()
	}
	return total, nil
}

// WhoHas maps every known card to the seat holding it.
func WhoHas(hands [4]string) (map[Card]Seat, error) {
	out := make(map[Card]Seat, 52)
	for i, h := range hands {
		if h == "" {
			continue
		}
		set, err := parseDot(h)
		if err != nil {
			return nil, err
		}
		for _, c := range set.cards() {
			out[c] = Seat(i)
		}
	}
	return out, nil
}

// ParseHands reads a deal typed by a person: dot hands separated by ':' or
// LIN hands separated by ','. Three hands are enough; the fourth is rebuilt.
func ParseHands(s string) ([4]string, error) {
	s = strings.TrimSpace(s)
	var hands [4]string
	var err error
	if strings.Contains(s, ".") {
		parts := strings.Split(s, ":")
		if len(parts) < 3 || len(parts) > 4 {
			return hands, ErrBadHand
		}
		for i, p := range parts {
			if strings.TrimSpace(p) == "" {
				continue
			}
			if hands[i], err = CanonicalDot(p); err != nil {
				return hands, err
			}
		}
		if hands, err = FillMissingHand(hands); err != nil {
			return hands, err
		}
	} else if hands, err = LINHandsToDot(s); err != nil {
		return hands, err
	}
	return hands, ValidateDeal(hands)
}
