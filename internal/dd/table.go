package dd

import "github.com/zbennett/bbo-extension/internal/notation"

// TrickTable spells an analysis out as tricks by declarer letter and strain.
type TrickTable map[string]map[string]int

var tableSeats = []notation.Seat{notation.North, notation.South, notation.East, notation.West}

func NewTrickTable(a *notation.Analysis) (TrickTable, error) {
	out := make(TrickTable, len(tableSeats))
	for _, seat := range tableSeats {
		row := make(map[string]int, 5)
		for d := notation.DenomClubs; d <= notation.NoTrump; d++ {
			n, err := a.TricksFor(seat, d)
			if err != nil {
				return nil, err
			}
			row[d.String()] = n
		}
		out[seat.Letter()] = row
	}
	return out, nil
}
