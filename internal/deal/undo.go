package deal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/zbennett/bbo-extension/internal/events"
	"github.com/zbennett/bbo-extension/internal/notation"
)

// undoPresenter marks an undo issued by a presenter rather than a seat.
const undoPresenter = "*"

// undo rolls back count actions, play first and then the auction. A request
// for more actions than the deal holds is ignored as a whole.
func (m *Machine) undo(ctx context.Context, count int, position string, at int64) {
	d := m.deal
	if count == 0 && position == undoPresenter {
		count = 1
	}
	total := d.auction.len() + d.play.len()
	if count < 0 || count > total {
		metricUndosRejected.Add(1)
		log.Error().Str("board", d.Board).Int("count", count).Int("actions", total).Msg("undo past the start of the deal ignored")
		return
	}
	d.lastActionTime = at
	metricUndos.Add(1)

	if nplay := d.play.len(); count <= nplay {
		d.play.rewindTo(nplay - count)
		if d.seenOpeningLead {
			d.rewindTricks(count)
		}
		if d.play.len() == 0 {
			d.resetPlay()
		}
	} else {
		d.auction.rewindTo(d.auction.len() - (count - nplay))
		d.play.rewindTo(0)
		d.resetPlay()
		d.amDummy = false
		d.contract = notation.Contract{}
	}
	log.Info().Str("board", d.Board).Int("count", count).Str("position", position).
		Int("calls", d.auction.len()).Int("cards", d.play.len()).Msg("undo")
	m.publish(events.KindUndo, map[string]any{
		"board":    d.Board,
		"count":    count,
		"position": position,
		"calls":    d.auction.len(),
		"cards":    d.play.len(),
	})
}

// rewindTricks removes the last n cards from the trick records, reopening
// completed tricks as needed. It stops at the opening lead.
func (d *State) rewindTricks(n int) {
	for n > 0 {
		k := len(d.current.Cards)
		if k >= n {
			d.current.Cards = d.current.Cards[:k-n]
			return
		}
		n -= k
		if len(d.tricks) == 0 {
			d.current.Cards = d.current.Cards[:0]
			return
		}
		d.current = d.tricks[len(d.tricks)-1]
		d.tricks = d.tricks[:len(d.tricks)-1]
	}
}

// resetPlay returns the deal to the state before the opening lead so the
// lead is taken again from the auction when play resumes.
func (d *State) resetPlay() {
	d.seenOpeningLead = false
	d.tricks = nil
	d.current = Trick{}
}
