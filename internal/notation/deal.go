package notation

import "strings"

// Deal is a board's hands and the facts needed to analyse or export it.
// Hands and Names are indexed by Seat; an unknown hand is "".
type Deal struct {
	Board       int
	Dealer      Seat
	Vul         Vulnerability
	Hands       [4]string
	Names       [4]string
	Auction     []Call
	Alerts      []string
	Play        []Card
	Claimed     *int
	Declarer    Seat
	HasDeclarer bool
	Analysis    *Analysis
}

// NewBoardDeal builds a deal whose dealer and vulnerability follow the board number.
func NewBoardDeal(board int, hands [4]string) Deal {
	dealer, vul := BoardDealerVul(board)
	return Deal{Board: board, Dealer: dealer, Vul: vul, Hands: hands}
}

// Complete is true when all four hands hold 13 cards.
func (d *Deal) Complete() bool {
	for _, h := range d.Hands {
		if HandSize(h) != 13 {
			return false
		}
	}
	return true
}

// FullDeal joins the four dot hands with 'x', South first, the layout the
// solver's dealstr parameter expects after the "S:" prefix.
func (d *Deal) FullDeal() string {
	return strings.Join(d.Hands[:], "x")
}

// Contract derives the contract from the auction when one is present.
func (d *Deal) Contract() Contract {
	return DeriveContract(d.Auction, d.Dealer)
}

// Rotate relabels every seat based field by n seats: a hand at seat i moves to
// seat i+n. Vulnerability sides swap and par scores flip sign on odd offsets.
func (d Deal) Rotate(n int) Deal {
	n = ((n % 4) + 4) % 4
	if n == 0 {
		return d
	}
	var hands, names [4]string
	for i := 0; i < 4; i++ {
		to := Seat(i).Rotate(n)
		hands[to] = d.Hands[i]
		names[to] = d.Names[i]
	}
	d.Hands, d.Names = hands, names
	d.Dealer = d.Dealer.Rotate(n)
	d.Declarer = d.Declarer.Rotate(n)
	if n%2 == 1 {
		d.Vul = d.Vul.Swap()
	}
	if d.Analysis != nil {
		a := d.Analysis.Rotate(n)
		d.Analysis = &a
	}
	return d
}
