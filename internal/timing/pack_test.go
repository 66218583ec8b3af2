package timing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackHeaderAndUnits(t *testing.T) {
	packed, err := Pack([]int64{0, 1234, 3}, []int64{15, 999})
	require.NoError(t, err)
	require.Equal(t, []uint16{1 + 3<<8, 0, 123, 1, 2, 100}, packed)
}

func TestPackSurrogateRange(t *testing.T) {
	packed, err := Pack(nil, []int64{552954, 552955, 634864, 634865, 10_000_000})
	require.NoError(t, err)
	require.Equal(t, uint16(55295), packed[1])
	require.Equal(t, uint16(57344), packed[2])
	require.Equal(t, uint16(65534), packed[3])
	require.Equal(t, uint16(0xFFFF), packed[4])
	require.Equal(t, uint16(0xFFFF), packed[5])
	for _, u := range packed[1:] {
		require.False(t, u >= 0xD800 && u <= 0xDFFF, "packed value %#x is a surrogate", u)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	calls := []int64{0, 0, 4120, 1000, 60_000}
	plays := []int64{5000, 70, 600_000, 700_000}
	packed, err := Pack(calls, plays)
	require.NoError(t, err)

	gotCalls, gotPlays, err := Unpack(packed)
	require.NoError(t, err)
	require.Equal(t, []int64{0, 0, 4120, 1000, 60_000}, gotCalls)
	require.Equal(t, []int64{5000, 70, 600_000, -1}, gotPlays)
}

func TestUnpackRejectsBadInput(t *testing.T) {
	_, _, err := Unpack(nil)
	require.ErrorIs(t, err, ErrBadPacked)
	_, _, err = Unpack([]uint16{2})
	require.ErrorIs(t, err, ErrBadPacked)
	_, _, err = Unpack([]uint16{1 + 5<<8, 1, 2})
	require.ErrorIs(t, err, ErrBadPacked)
}

func TestPackTooManyCalls(t *testing.T) {
	_, err := Pack(make([]int64, 256), nil)
	require.ErrorIs(t, err, ErrTooManyCalls)
}
