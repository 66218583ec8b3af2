package deal

// history is an append-only sequence of actions with the thinking time of
// each one. Items and times always have the same length.
type history[T any] struct {
	items []T
	times []int64
}

func (h *history[T]) push(v T, elapsed int64) {
	h.items = append(h.items, v)
	h.times = append(h.times, elapsed)
}

func (h *history[T]) len() int { return len(h.items) }

// rewindTo keeps the first n entries.
func (h *history[T]) rewindTo(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(h.items) {
		return
	}
	clear(h.items[n:])
	h.items = h.items[:n]
	h.times = h.times[:n]
}

func (h *history[T]) at(i int) T { return h.items[i] }

func (h *history[T]) last(k int) (T, bool) {
	var zero T
	i := len(h.items) - 1 - k
	if i < 0 {
		return zero, false
	}
	return h.items[i], true
}

func (h *history[T]) snapshot() ([]T, []int64) {
	items := make([]T, len(h.items))
	copy(items, h.items)
	times := make([]int64, len(h.times))
	copy(times, h.times)
	return items, times
}
