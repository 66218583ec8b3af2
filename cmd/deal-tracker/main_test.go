package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zbennett/bbo-extension/internal/protocol"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestConvertCommands(t *testing.T) {
	out := captureStdout(t)

	require.NoError(t, Dot2LINCmd{Hand: "AT.QJ2.AKQT9.A75"}.Run())
	require.Equal(t, "STAH2JQD9TQKAC57A\n", out.String())

	out.Reset()
	require.NoError(t, LIN2DotCmd{Hand: "STAH2JQD9TQKAC57A"}.Run())
	require.Equal(t, "AT.QJ2.AKQT9.A75\t20 hcp\n", out.String())

	out.Reset()
	require.NoError(t, BoardCmd{Number: 5}.Run())
	require.Equal(t, "board 5: north deals, NS vulnerable\n", out.String())

	require.Error(t, BoardCmd{Number: 0}.Run())
	require.Error(t, Dot2LINCmd{Hand: "AT.QJ2"}.Run())
}

func TestReplayPrintsFinalDeal(t *testing.T) {
	t.Setenv("DD_MODE", "off")
	out := captureStdout(t)

	cmd := ReplayCmd{File: "testdata/session.log", DDMode: "off", Store: "memory://"}
	require.NoError(t, cmd.Run())

	var snap map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	require.Equal(t, "7S by S", snap["contract"])
	require.Equal(t, []any{"p", "p", "7S", "p", "p", "p"}, snap["auction"])
	require.Equal(t, []any{"H2", "D2", "C2", "SA"}, snap["play"])
}

func TestReplayRejectsBadMode(t *testing.T) {
	captureStdout(t)
	cmd := ReplayCmd{File: "testdata/session.log", DDMode: "sometimes", Store: "memory://"}
	require.Error(t, cmd.Run())
}

func TestRecordFeedWritesTrafficLog(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan *protocol.Message, 2)
	var trafficLog bytes.Buffer
	out := recordFeed(ctx, in, &trafficLog)

	first := protocol.NewMessage("sc_loginok\x01user=me\x01", 1000)
	second := protocol.NewMessage("sc_call_made\x01call=p\x01", 2500)
	in <- first
	in <- second
	close(in)

	var got []*protocol.Message
	for m := range out {
		got = append(got, m)
	}
	require.Equal(t, []*protocol.Message{first, second}, got)

	lines := strings.Split(strings.TrimSpace(trafficLog.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, protocol.FormatLogLine(first), lines[0])

	parsed, err := protocol.ParseLogLine(lines[1])
	require.NoError(t, err)
	require.Equal(t, second.Raw, parsed.Raw)
	require.Equal(t, int64(2500), parsed.At)
}
