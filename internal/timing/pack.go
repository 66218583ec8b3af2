package timing

import (
	"errors"
	"fmt"
)

// Packed layout: element 0 is FormatVersion + ncalls<<8, followed by one entry
// per call and then one per card, each in 1/100 s. Zero means no timing was
// observed (catch-up data after joining late).
const (
	FormatVersion = 1

	tooLong uint16 = 0xFFFF

	// Values from here on are shifted past the UTF-16 surrogate range so the
	// packed form survives being stored as a string.
	surrogateStartMS = 552955
	surrogateShiftMS = 20480
	maxStoredMS      = 634865
	surrogateFloor   = 0xD800
	surrogateShift   = 0x800
)

var (
	ErrTooManyCalls = errors.New("too_many_calls")
	ErrBadPacked    = errors.New("bad_packed_timing")
)

// Pack encodes per-action elapsed milliseconds.
func Pack(calls, plays []int64) ([]uint16, error) {
	if len(calls) > 255 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyCalls, len(calls))
	}
	out := make([]uint16, 0, 1+len(calls)+len(plays))
	out = append(out, uint16(FormatVersion+len(calls)<<8))
	for _, ms := range calls {
		out = append(out, packOne(ms))
	}
	for _, ms := range plays {
		out = append(out, packOne(ms))
	}
	return out, nil
}

func packOne(ms int64) uint16 {
	switch {
	case ms <= 0:
		return 0
	case ms < 5:
		ms = 10
	case ms >= maxStoredMS:
		return tooLong
	case ms >= surrogateStartMS:
		ms += surrogateShiftMS
	}
	return uint16((ms + 5) / 10)
}

// Unpack reverses Pack. Durations too long to store come back as -1.
func Unpack(v []uint16) (calls, plays []int64, err error) {
	if len(v) == 0 {
		return nil, nil, ErrBadPacked
	}
	if int(v[0]&0xFF) != FormatVersion {
		return nil, nil, fmt.Errorf("%w: version %d", ErrBadPacked, v[0]&0xFF)
	}
	ncalls := int(v[0] >> 8)
	if ncalls > len(v)-1 {
		return nil, nil, fmt.Errorf("%w: %d calls in %d entries", ErrBadPacked, ncalls, len(v)-1)
	}
	all := make([]int64, len(v)-1)
	for i, u := range v[1:] {
		all[i] = unpackOne(u)
	}
	return all[:ncalls:ncalls], all[ncalls:], nil
}

func unpackOne(u uint16) int64 {
	if u == tooLong {
		return -1
	}
	if u > surrogateFloor {
		u -= surrogateShift
	}
	return int64(u) * 10
}
