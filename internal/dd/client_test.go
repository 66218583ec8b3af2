package dd

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zbennett/bbo-extension/internal/notation"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func newTestClient(fn roundTripFunc) *Client {
	return &Client{inner: &http.Client{Transport: fn}, baseURL: DefaultSolverURL, club: "bbohelper"}
}

func respond(status int, body string) roundTripFunc {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	}
}

func testDeal(t *testing.T, board int, seed uint64) notation.Deal {
	t.Helper()
	deck := notation.NewDeck()
	deck.Shuffle(rand.New(rand.NewPCG(seed, seed+1)))
	return notation.NewBoardDeal(board, deck.DealHands())
}

const coldResponse = `{"sess":{"ddtricks":"1205012050cbd8dcbd8d"},"contractsNS":"NS:EW 7H","contractsEW":"EW:EW 7H","scoreNS":"NS -1510","scoreEW":"EW 1510","vul":"2"}`

func TestClientRequestShape(t *testing.T) {
	d := testDeal(t, 3, 1)
	var seen *http.Request
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		seen = req
		return respond(http.StatusOK, coldResponse)(req)
	})

	a, err := c.Solve(context.Background(), d)
	require.NoError(t, err)
	require.NotNil(t, a)

	require.Equal(t, http.MethodGet, seen.Method)
	q := seen.URL.Query()
	require.Equal(t, "m", q.Get("request"))
	require.Equal(t, "S:"+d.FullDeal(), q.Get("dealstr"))
	require.Equal(t, "EW", q.Get("vul"))
	require.Equal(t, "bbohelper", q.Get("club"))
}

func TestParseResponseCold(t *testing.T) {
	a, err := ParseResponse([]byte(coldResponse))
	require.NoError(t, err)
	require.Equal(t, "1205012050cbd8dcbd8d", a.Tricks)
	require.Equal(t, 2, a.Vul)
	require.Equal(t, "EW 7H", a.ParContractsNS)
	require.Equal(t, -1510, a.ParScoreNS)
	require.False(t, a.Hot())
	require.Nil(t, a.ParScoreEW)
}

func TestParseResponseHot(t *testing.T) {
	body := `{"sess":{"ddtricks":"7777766666777776666a"},"contractsNS":"NS:NS 2S","contractsEW":"EW:EW 3D","scoreNS":"NS 110","scoreEW":"EW 110","vul":0}`
	a, err := ParseResponse([]byte(body))
	require.NoError(t, err)
	require.True(t, a.Hot())
	require.Equal(t, 110, a.ParScoreNS)
	require.Equal(t, 110, *a.ParScoreEW)
	require.Equal(t, "EW 3D", *a.ParContractsEW)
}

func TestParseResponseFailures(t *testing.T) {
	tests := map[string]string{
		"invalid json":     `{"sess":`,
		"missing sess":     `{"contractsNS":"NS:EW 7H","contractsEW":"EW:EW 7H","scoreNS":"NS -1510","scoreEW":"EW 1510"}`,
		"error field":      `{"errno":3,"errmsg":"bad deal"}`,
		"short tricks":     `{"sess":{"ddtricks":"12"},"contractsNS":"NS:EW 7H","contractsEW":"EW:EW 7H","scoreNS":"NS -1510","scoreEW":"EW 1510"}`,
		"not an object":    `[1,2,3]`,
		"malformed scores": `{"sess":{"ddtricks":"1205012050cbd8dcbd8d"},"contractsNS":"NS:EW 7H","contractsEW":"EW:EW 7H","scoreNS":"lots","scoreEW":"EW 1510"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResponse([]byte(body))
			require.ErrorIs(t, err, ErrSolverResponse)
		})
	}
}

func TestClientNon200(t *testing.T) {
	c := newTestClient(respond(http.StatusBadGateway, coldResponse))
	_, err := c.Solve(context.Background(), testDeal(t, 1, 2))
	require.ErrorIs(t, err, ErrSolverResponse)
	require.Contains(t, err.Error(), "502")
}

func TestClientTransportError(t *testing.T) {
	boom := errors.New("dial refused")
	c := newTestClient(func(*http.Request) (*http.Response, error) { return nil, boom })
	_, err := c.Solve(context.Background(), testDeal(t, 1, 3))
	require.ErrorIs(t, err, boom)
}

func TestRequestURLKeepsExistingQuery(t *testing.T) {
	c := NewClient("http://solver.local/dd?key=1", "", 0)
	u := c.RequestURL(testDeal(t, 4, 4))
	require.True(t, strings.HasPrefix(u, "http://solver.local/dd?key=1&"))
	require.NotContains(t, u, "club=")
	require.Contains(t, u, "vul=All")
}

func TestTrickTable(t *testing.T) {
	a, err := ParseResponse([]byte(coldResponse))
	require.NoError(t, err)
	tbl, err := NewTrickTable(a)
	require.NoError(t, err)
	require.Len(t, tbl, 4)
	require.Equal(t, 1, tbl["N"]["NT"])
	require.Equal(t, 5, tbl["N"]["D"])
	require.Equal(t, 12, tbl["E"]["NT"])
	require.Equal(t, 13, tbl["E"]["H"])

	_, err = NewTrickTable(&notation.Analysis{Tricks: "xyz"})
	require.Error(t, err)
}
