package deal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/zbennett/bbo-extension/internal/events"
	"github.com/zbennett/bbo-extension/internal/notation"
)

const deckSize = 52

// recordCall appends a call. A finished auction accepts no more calls until
// an undo reopens it.
func (m *Machine) recordCall(ctx context.Context, call notation.Call, at, elapsed int64) {
	d := m.deal
	if d.auctionComplete() {
		metricRejected.Add(1)
		log.Warn().Str("board", d.Board).Str("call", call.String()).Msg("call after the auction ended ignored")
		return
	}
	d.auction.push(call, elapsed)
	d.lastActionTime = at
	metricCalls.Add(1)
	log.Debug().Str("board", d.Board).Str("call", call.String()).Int64("elapsed_ms", elapsed).Msg("call")

	if !d.auctionComplete() {
		return
	}
	d.contract = notation.DeriveContract(d.auction.items, m.dealer())
	log.Info().Str("board", d.Board).Str("contract", d.contract.String()).Msg("auction complete")
	m.publish(events.KindAuctionComplete, map[string]any{
		"board":    d.Board,
		"contract": d.contract.String(),
		"auction":  callStrings(d.auction.items),
	})

	// Bidding tables end with the auction. A passed out teaching board ends
	// there as well.
	if m.table.Type == TypeBidding || (m.table.Style == StyleTeaching && d.contract.PassedOut()) {
		m.saveTiming(ctx, "auction complete at bidding table")
		m.finishDeal(ctx)
		return
	}
	m.requestAnalysis(ctx)
}

// recordCard appends a card and resolves tricks as they fill up.
func (m *Machine) recordCard(ctx context.Context, card notation.Card, at, elapsed int64) {
	d := m.deal
	if d.play.len() >= deckSize {
		metricRejected.Add(1)
		log.Warn().Str("board", d.Board).Str("card", card.String()).Msg("card after the last trick ignored")
		return
	}
	d.play.push(card, elapsed)
	d.lastActionTime = at
	metricCards.Add(1)

	if !d.seenOpeningLead {
		d.contract = notation.DeriveContract(d.auction.items, m.dealer())
		d.seenOpeningLead = true
		d.tricks = nil
		leader := d.contract.Leader()
		if !d.contract.HasDeclarer() {
			log.Warn().Str("board", d.Board).Msg("opening lead without a contract, assuming South declares")
			leader = notation.South.Next()
		}
		d.current = Trick{Leader: leader}
		log.Info().Str("board", d.Board).Str("contract", d.contract.String()).Msg("opening lead")
	}

	seat := d.current.Leader.Rotate(len(d.current.Cards))
	d.current.Cards = append(d.current.Cards, card)
	log.Debug().Str("board", d.Board).Str("card", card.String()).Str("seat", seat.Name()).Int64("elapsed_ms", elapsed).Msg("card")

	if len(d.current.Cards) == 4 {
		winner, err := notation.TrickWinner(d.current.Leader, d.current.Cards, trump(d.contract))
		if err != nil {
			log.Error().Err(err).Str("board", d.Board).Msg("trick not resolved")
			winner = d.current.Leader
		}
		d.tricks = append(d.tricks, d.current)
		m.publish(events.KindTrickComplete, map[string]any{
			"board":  d.Board,
			"trick":  len(d.tricks),
			"leader": d.current.Leader.Name(),
			"winner": winner.Name(),
			"cards":  cardStrings(d.current.Cards),
		})
		d.current = Trick{Leader: winner}
	}

	if d.play.len() == deckSize {
		m.saveTiming(ctx, "all 52 cards played")
		if m.table.Style == StyleTeaching {
			m.savePlay(nil)
		}
		m.finishDeal(ctx)
	}
}

// finishDeal announces the end of play and asks for the analysis if the
// deal does not have one yet.
func (m *Machine) finishDeal(ctx context.Context) {
	d := m.deal
	data := map[string]any{
		"board":    d.Board,
		"contract": d.contract.String(),
		"cards":    d.play.len(),
	}
	if d.claimed != nil {
		data["claimed"] = *d.claimed
	}
	m.publish(events.KindDealComplete, data)
	if d.analysis == nil {
		m.requestAnalysis(ctx)
	}
}

func (m *Machine) dealer() notation.Seat {
	if m.deal != nil {
		if s, err := notation.ParseSeat(m.deal.Dealer); err == nil && m.deal.Dealer != "" {
			return s
		}
		if n, ok := m.deal.boardNumber(); ok {
			s, _ := notation.BoardDealerVul(n)
			return s
		}
	}
	return notation.South
}

// trump is the contract denomination, notrump when there is no contract.
func trump(c notation.Contract) notation.Denomination {
	if !c.HasDeclarer() {
		return notation.NoTrump
	}
	return c.Denom
}

func callStrings(calls []notation.Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

func cardStrings(cards []notation.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
