package notation

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func shuffledHands(t *testing.T, seed uint64) [4]string {
	t.Helper()
	deck := NewDeck()
	deck.Shuffle(rand.New(rand.NewPCG(seed, seed*31+7)))
	hands := deck.DealHands()
	require.NoError(t, ValidateDeal(hands))
	return hands
}

func TestDotToLIN(t *testing.T) {
	lin, err := DotToLIN("AT.QJ2.AKQT9.A75")
	require.NoError(t, err)
	require.Equal(t, "STAH2JQD9TQKAC57A", lin)

	lin, err = DotToLIN("")
	require.NoError(t, err)
	require.Equal(t, UnknownLIN, lin)

	_, err = DotToLIN("AT.QJ2.AKQT9")
	require.ErrorIs(t, err, ErrBadHand)
}

func TestLINToDotTolerant(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "canonical", in: "STAH2JQD9TQKAC57A", want: "AT.QJ2.AKQT9.A75"},
		{name: "high to low", in: "SATHQJ2DAKQT9CA75", want: "AT.QJ2.AKQT9.A75"},
		{name: "mixed order tens lowercase", in: "c75as10ahq2jdkaqt9", want: "AT.QJ2.AKQT9.A75"},
		{name: "trailing voids dropped", in: "SAKQJT98765432H", want: "AKQJT98765432..."},
		{name: "placeholder", in: "SHDC", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LINToDot(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestLINToDotRejectsGarbage(t *testing.T) {
	_, err := LINToDot("SAKX")
	require.ErrorIs(t, err, ErrBadHand)
	_, err = LINToDot("AK")
	require.ErrorIs(t, err, ErrBadHand)
	_, err = LINToDot("SAAK")
	require.ErrorIs(t, err, ErrDuplicateCard)
}

func TestLINHandsRoundTrip(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		hands := shuffledHands(t, seed)
		lin := make([]string, 4)
		for i, h := range hands {
			l, err := DotToLIN(h)
			require.NoError(t, err)
			lin[i] = l
		}

		four, err := LINHandsToDot(strings.Join(lin, ","))
		require.NoError(t, err)
		require.Equal(t, hands, four)

		three, err := LINHandsToDot(strings.Join(lin[:3], ","))
		require.NoError(t, err)
		require.Equal(t, hands, three, "seed %d", seed)

		trailing, err := LINHandsToDot(strings.Join(lin[:3], ",") + ",")
		require.NoError(t, err)
		require.Equal(t, hands, trailing)
	}
}

func TestLINHandsToDotRejectsBadCounts(t *testing.T) {
	_, err := LINHandsToDot("STAH2JQD9TQKAC57A,STAH2JQD9TQKAC57A")
	require.ErrorIs(t, err, ErrBadHand)

	hands := shuffledHands(t, 99)
	a, _ := DotToLIN(hands[0])
	_, err = LINHandsToDot(strings.Join([]string{a, a, a}, ","))
	require.ErrorIs(t, err, ErrDuplicateCard)
}

func TestFillMissingHandAnySeat(t *testing.T) {
	hands := shuffledHands(t, 7)
	for seat := 0; seat < 4; seat++ {
		partial := hands
		partial[seat] = ""
		got, err := FillMissingHand(partial)
		require.NoError(t, err)
		require.Equal(t, hands, got)
	}

	partial := hands
	partial[0], partial[1] = "", ""
	_, err := FillMissingHand(partial)
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestValidateDeal(t *testing.T) {
	require.NoError(t, ValidateDeal(NewDeck().DealHands()))

	hands := shuffledHands(t, 3)
	hands[3] = hands[2]
	require.ErrorIs(t, ValidateDeal(hands), ErrDuplicateCard)

	hands = shuffledHands(t, 3)
	hands[1] = ""
	require.ErrorIs(t, ValidateDeal(hands), ErrIncomplete)

	hands = shuffledHands(t, 3)
	hands[2] = "AKQ..."
	require.ErrorIs(t, ValidateDeal(hands), ErrHandSize)
}

func TestHandHCPAndWhoHas(t *testing.T) {
	hcp, err := HandHCP("AKQJ.AKQJ.AKQJ.A")
	require.NoError(t, err)
	require.Equal(t, 34, hcp)

	hands := NewDeck().DealHands()
	require.Equal(t, "AKQJT98765432...", hands[South])
	owners, err := WhoHas(hands)
	require.NoError(t, err)
	require.Len(t, owners, 52)
	require.Equal(t, South, owners[Card{Rank: Ace, Suit: Spades}])
	require.Equal(t, East, owners[Card{Rank: Two, Suit: Clubs}])
}

func TestParseCard(t *testing.T) {
	c, err := ParseCard("hT")
	require.NoError(t, err)
	require.Equal(t, Card{Rank: Ten, Suit: Hearts}, c)
	c, err = ParseCard("D10")
	require.NoError(t, err)
	require.Equal(t, "DT", c.String())
	_, err = ParseCard("Z2")
	require.ErrorIs(t, err, ErrBadCard)
	_, err = ParseCard("S")
	require.ErrorIs(t, err, ErrBadCard)
}

func TestParseHands(t *testing.T) {
	hands := shuffledHands(t, 11)
	lin := make([]string, 4)
	for i, h := range hands {
		l, err := DotToLIN(h)
		require.NoError(t, err)
		lin[i] = l
	}

	got, err := ParseHands(strings.Join(hands[:], ":"))
	require.NoError(t, err)
	require.Equal(t, hands, got)

	got, err = ParseHands(strings.Join(hands[:3], ":"))
	require.NoError(t, err)
	require.Equal(t, hands, got)

	got, err = ParseHands(strings.Join(lin[:3], ","))
	require.NoError(t, err)
	require.Equal(t, hands, got)

	_, err = ParseHands(hands[0])
	require.ErrorIs(t, err, ErrBadHand)

	dup := hands
	dup[3] = hands[2]
	_, err = ParseHands(strings.Join(dup[:], ":"))
	require.Error(t, err)
}
