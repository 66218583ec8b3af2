package dd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zbennett/bbo-extension/internal/notation"
)

const DefaultSolverURL = "https://dds.bridgewebs.com/cgi-bin/bsol2/ddummy"

var ErrSolverResponse = errors.New("solver_response")

// Client queries the remote double dummy solver over HTTP.
type Client struct {
	inner   *http.Client
	baseURL string
	club    string
}

func NewClient(baseURL, club string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if baseURL == "" {
		baseURL = DefaultSolverURL
	}
	return &Client{inner: &http.Client{Timeout: timeout}, baseURL: baseURL, club: club}
}

// RequestURL builds the solver query. The deal string starts with South.
func (c *Client) RequestURL(deal notation.Deal) string {
	q := url.Values{}
	q.Set("request", "m")
	q.Set("dealstr", "S:"+deal.FullDeal())
	q.Set("vul", deal.Vul.SolverCode())
	if c.club != "" {
		q.Set("club", c.club)
	}
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + q.Encode()
}

type solverResponse struct {
	Sess struct {
		DDTricks string `json:"ddtricks"`
	} `json:"sess"`
	ContractsNS string          `json:"contractsNS"`
	ContractsEW string          `json:"contractsEW"`
	ScoreNS     string          `json:"scoreNS"`
	ScoreEW     string          `json:"scoreEW"`
	Vul         json.RawMessage `json:"vul"`
}

func (c *Client) Solve(ctx context.Context, deal notation.Deal) (*notation.Analysis, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(deal), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSolverResponse, resp.StatusCode)
	}
	return ParseResponse(body)
}

// ParseResponse turns a solver payload into an Analysis. Only the NS side is
// kept unless the two par scores do not cancel out.
func ParseResponse(body []byte) (*notation.Analysis, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrSolverResponse, err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: not an object", ErrSolverResponse)
	}
	if msg, ok := obj["errmsg"]; ok && msg != nil && msg != "" {
		return nil, fmt.Errorf("%w: solver error %v (errno %v)", ErrSolverResponse, msg, obj["errno"])
	}
	if err := responseSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverResponse, err)
	}

	var r solverResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverResponse, err)
	}
	sNS, err := strconv.Atoi(strings.TrimSpace(r.ScoreNS[3:]))
	if err != nil {
		return nil, fmt.Errorf("%w: scoreNS %q", ErrSolverResponse, r.ScoreNS)
	}
	sEW, err := strconv.Atoi(strings.TrimSpace(r.ScoreEW[3:]))
	if err != nil {
		return nil, fmt.Errorf("%w: scoreEW %q", ErrSolverResponse, r.ScoreEW)
	}
	vul, _ := strconv.Atoi(strings.Trim(string(r.Vul), `" `))

	a := &notation.Analysis{
		Tricks:         strings.ToLower(r.Sess.DDTricks),
		Vul:            vul,
		ParContractsNS: r.ContractsNS[3:],
		ParScoreNS:     sNS,
	}
	if sNS+sEW != 0 {
		cEW := r.ContractsEW[3:]
		a.ParScoreEW = &sEW
		a.ParContractsEW = &cEW
	}
	return a, nil
}
