package notation

var (
	boardDealers = [4]Seat{North, East, South, West}
	boardVuls    = [4]Vulnerability{VulNone, VulNS, VulEW, VulBoth}
)

// BoardDealerVul derives dealer and vulnerability from a board number using the
// standard 16-board duplicate cycle. Boards below 1 wrap the same way.
func BoardDealerVul(board int) (Seat, Vulnerability) {
	b0 := (board - 1) % 16
	if b0 < 0 {
		b0 += 16
	}
	d4 := b0 % 4
	return boardDealers[d4], boardVuls[(b0/4+d4)%4]
}
