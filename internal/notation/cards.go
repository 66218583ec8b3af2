package notation

import (
	"errors"
	"math/rand/v2"
	"strings"
)

var (
	ErrBadCard = errors.New("bad_card")
	ErrBadRank = errors.New("bad_rank")
	ErrBadSuit = errors.New("bad_suit")
)

type Suit int

type Rank int

// Suit order follows the wire convention: spades first, clubs last.
const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

const (
	suitLetters = "SHDC"
	rankLetters = "23456789TJQKA"
)

func (s Suit) Letter() byte {
	if s < Spades || s > Clubs {
		return '?'
	}
	return suitLetters[s]
}

func (s Suit) String() string { return string(s.Letter()) }

func SuitFromLetter(b byte) (Suit, error) {
	i := strings.IndexByte(suitLetters, upper(b))
	if i < 0 {
		return 0, ErrBadSuit
	}
	return Suit(i), nil
}

func (r Rank) Letter() byte {
	if r < Two || r > Ace {
		return '?'
	}
	return rankLetters[r-Two]
}

func RankFromLetter(b byte) (Rank, error) {
	i := strings.IndexByte(rankLetters, upper(b))
	if i < 0 {
		return 0, ErrBadRank
	}
	return Two + Rank(i), nil
}

type Card struct {
	Rank Rank
	Suit Suit
}

// ParseCard reads a suit-first card token such as "SA", "hT" or "D10".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Card{}, ErrBadCard
	}
	suit, err := SuitFromLetter(s[0])
	if err != nil {
		return Card{}, ErrBadCard
	}
	rest := s[1:]
	if rest == "10" {
		rest = "T"
	}
	if len(rest) != 1 {
		return Card{}, ErrBadCard
	}
	rank, err := RankFromLetter(rest[0])
	if err != nil {
		return Card{}, ErrBadCard
	}
	return Card{Rank: rank, Suit: suit}, nil
}

func (c Card) String() string {
	return string([]byte{c.Suit.Letter(), c.Rank.Letter()})
}

// Index maps a card onto 0..51, suits in S H D C order, ranks low to high.
func (c Card) Index() int {
	return int(c.Suit)*13 + int(c.Rank-Two)
}

func cardFromIndex(i int) Card {
	return Card{Suit: Suit(i / 13), Rank: Two + Rank(i%13)}
}

func (c Card) HCP() int {
	if c.Rank > Ten {
		return int(c.Rank - Ten)
	}
	return 0
}

type Deck struct {
	cards []Card
}

func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for s := Spades; s <= Clubs; s++ {
		for r := Two; r <= Ace; r++ {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return &Deck{cards: cards}
}

func (d *Deck) Shuffle(rnd *rand.Rand) {
	rnd.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// DealHands splits the deck into four 13-card hands in dot notation,
// seat order South, West, North, East.
func (d *Deck) DealHands() [4]string {
	var hands [4]string
	for seat := 0; seat < 4; seat++ {
		var set cardSet
		for _, c := range d.cards[seat*13 : seat*13+13] {
			set.add(c)
		}
		hands[seat] = set.dot()
	}
	return hands
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
