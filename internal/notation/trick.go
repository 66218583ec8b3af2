package notation

import "errors"

var ErrTrickSize = errors.New("trick_needs_4_cards")

// TrickWinner returns the seat that won a four card trick. Cards are in play
// order starting with the leader. A card beats the best so far when it follows
// the winning suit with a higher rank, or when it is a trump and the best so far
// is not.
func TrickWinner(leader Seat, cards []Card, denom Denomination) (Seat, error) {
	if len(cards) != 4 {
		return leader, ErrTrickSize
	}
	trump, hasTrump := denom.Trump()
	best := 0
	for i := 1; i < 4; i++ {
		c, b := cards[i], cards[best]
		switch {
		case c.Suit == b.Suit:
			if c.Rank > b.Rank {
				best = i
			}
		case hasTrump && c.Suit == trump:
			best = i
		}
	}
	return leader.Rotate(best), nil
}
