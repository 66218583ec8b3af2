package protocol

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTagOf(t *testing.T) {
	tests := map[string]Tag{
		`<sc_call_made table_id="1" call="1N" />`: TagCallMade,
		`<sc_deal_blast_complete/>`:               TagDealBlastComplete,
		`<sc_boot>`:                               TagBoot,
		"cs_make_bid\x01bid=1N\x01alert=n":        TagMakeBid,
		"cs_logout":                               TagLogout,
		"":                                        "",
	}
	for raw, want := range tests {
		require.Equal(t, want, TagOf(raw), raw)
	}
	require.True(t, TagCallMade.IsServer())
	require.False(t, TagMakeBid.IsServer())
}

func TestMessageXMLAttrs(t *testing.T) {
	m := NewMessage(`<sc_table_node table_id="77"><sc_table_open style="t-indy" type="8" tkey="123~bbombadmin" context_id="c9"/></sc_table_node>`, 5)
	require.Equal(t, TagTableNode, m.Tag)
	id, ok := m.Attr("table_id")
	require.True(t, ok)
	require.Equal(t, "77", id)

	open, ok := m.Element("sc_table_open")
	require.True(t, ok)
	require.Equal(t, "t-indy", open.Attrs["style"])
	require.Equal(t, "c9", open.Attrs["context_id"])
	_, ok = m.Element("sc_missing")
	require.False(t, ok)
	require.Equal(t, "x", m.AttrOr("nope", "x"))
	require.NoError(t, m.Err())
}

func TestMessageEntitiesDecoded(t *testing.T) {
	m := NewMessage(`<sc_call_made call="1N" explain="15&amp;17 &quot;strong&quot;" />`, 0)
	require.Equal(t, `15&17 "strong"`, m.AttrOr("explain", ""))
}

func TestMessageClientFields(t *testing.T) {
	m := NewMessage("cs_make_bid\x01bid=1N\x01alert=y\x01explain=card=SA\x01table_id=9", 10)
	require.Equal(t, "1N", m.AttrOr("bid", ""))
	require.Equal(t, "card=SA", m.AttrOr("explain", ""))
	_, ok := m.Attr("card")
	require.False(t, ok)
}

func TestScanAvoidsFullParse(t *testing.T) {
	m := NewMessage(`<sc_card_played table_id="3" card="HQ" />`, 0)
	card, ok := m.Scan("card")
	require.True(t, ok)
	require.Equal(t, "HQ", card)
	require.False(t, m.parsed)

	c := NewMessage("cs_play_card\x01table_id=3\x01card=D7\x01m=1", 0)
	card, ok = c.Scan("card")
	require.True(t, ok)
	require.Equal(t, "D7", card)

	_, ok = m.Scan("bid")
	require.False(t, ok)
}

func TestMalformedXML(t *testing.T) {
	m := NewMessage(`<`, 0)
	require.ErrorIs(t, m.Err(), ErrMalformed)
	_, ok := m.Attr("x")
	require.False(t, ok)
}

func TestTrafficLogRoundTrip(t *testing.T) {
	m := NewMessage("cs_make_bid\x01bid=P\x01table_id=1", 1234)
	line := FormatLogLine(m)
	require.Equal(t, `1234	cs_make_bid\x01bid=P\x01table_id=1`, line)

	back, err := ParseLogLine(line)
	require.NoError(t, err)
	require.Equal(t, m.Raw, back.Raw)
	require.Equal(t, int64(1234), back.At)
	require.Equal(t, TagMakeBid, back.Tag)

	_, err = ParseLogLine("no tab here")
	require.ErrorIs(t, err, ErrMalformed)
	_, err = ParseLogLine("abc\t<sc_boot/>")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestReadLog(t *testing.T) {
	log := strings.Join([]string{
		"# captured session",
		`100	<sc_loginok user="me" />`,
		"",
		`250	cs_make_bid\x01bid=1C`,
	}, "\n")
	out := make(chan *Message, 4)
	require.NoError(t, ReadLog(context.Background(), strings.NewReader(log), out))
	close(out)

	var got []*Message
	for m := range out {
		got = append(got, m)
	}
	require.Len(t, got, 2)
	require.Equal(t, TagLoginOK, got[0].Tag)
	require.Equal(t, "1C", got[1].AttrOr("bid", ""))

	err := ReadLog(context.Background(), strings.NewReader("1\t<a/>\nbroken"), make(chan *Message, 2))
	require.ErrorContains(t, err, "line 2")
}
