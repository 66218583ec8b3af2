package deal

import (
	"strings"

	"github.com/zbennett/bbo-extension/internal/notation"
)

const robotEventSuffix = "bbombadmin"

// declarerReseating guesses that the server is moving the user to the North
// seat so they can declare in a robot event. The signals are circumstantial:
// a notification during the deal, an individual robot tournament and two
// passes at the end of the auction (the final pass arrives after the move).
func declarerReseating(d *State, t Table) bool {
	return d != nil &&
		d.notified &&
		t.Style == StyleIndy &&
		strings.HasSuffix(t.TKey, robotEventSuffix) &&
		d.lastCallsPass(2)
}

// reseatedDeclarerSits matches the sit message that puts the user in North
// during such a move.
func reseatedDeclarerSits(d *State, t Table, seat notation.Seat, username, user string) bool {
	return user != "" &&
		seat == notation.North &&
		username == user &&
		declarerReseating(d, t)
}
