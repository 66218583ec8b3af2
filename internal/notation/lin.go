package notation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadLIN = errors.New("bad_lin")

// ParseLIN reads the fields of a LIN movie string that describe a deal:
// pn, md, sv, ah, mb (with an explanations), pc and mc. Unknown tags are skipped.
func ParseLIN(lin string) (Deal, error) {
	var d Deal
	fields := strings.Split(strings.TrimSuffix(strings.TrimSpace(lin), "|"), "|")
	if len(fields) < 2 {
		return d, ErrBadLIN
	}
	haveMD, haveVul, haveDealer := false, false, false
	for i := 0; i+1 < len(fields); i += 2 {
		tag, val := strings.ToLower(strings.TrimSpace(fields[i])), fields[i+1]
		switch tag {
		case "pn":
			for j, name := range strings.SplitN(val, ",", 4) {
				d.Names[j] = strings.TrimSpace(name)
			}
		case "md":
			if val != "" && val[0] >= '1' && val[0] <= '4' {
				d.Dealer = Seat(val[0] - '1')
				haveDealer = true
				val = val[1:]
			}
			hands, err := LINHandsToDot(val)
			if err != nil {
				return d, fmt.Errorf("md: %w", err)
			}
			d.Hands = hands
			haveMD = true
		case "sv":
			v, err := ParseVulnerability(val)
			if err != nil {
				return d, fmt.Errorf("sv: %w", err)
			}
			d.Vul = v
			haveVul = true
		case "ah":
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(val), "Board")))
			if err == nil {
				d.Board = n
			}
		case "mb":
			call, err := ParseCall(val)
			if err != nil {
				return d, fmt.Errorf("mb: %w", err)
			}
			alert := ""
			if strings.HasSuffix(val, "!") {
				alert = "!"
			}
			if i+3 < len(fields) && strings.EqualFold(fields[i+2], "an") {
				alert = fields[i+3]
				i += 2
			}
			d.Auction = append(d.Auction, call)
			d.Alerts = append(d.Alerts, alert)
		case "pc":
			card, err := ParseCard(val)
			if err != nil {
				return d, fmt.Errorf("pc: %w", err)
			}
			d.Play = append(d.Play, card)
		case "mc":
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return d, fmt.Errorf("mc: %w", err)
			}
			d.Claimed = &n
		}
	}
	if !haveMD {
		return d, fmt.Errorf("%w: missing md", ErrBadLIN)
	}
	if d.Board > 0 {
		dealer, vul := BoardDealerVul(d.Board)
		if !haveDealer {
			d.Dealer = dealer
		}
		if !haveVul {
			d.Vul = vul
		}
	}
	if c := d.Contract(); c.HasDeclarer() {
		d.Declarer, d.HasDeclarer = c.Declarer, true
	}
	return d, nil
}

// FormatLIN renders a deal as a LIN movie string. Names are included only when
// at least one is known. Pipes and commas inside names are dropped.
func FormatLIN(d Deal) (string, error) {
	var b strings.Builder
	b.WriteString("st||")
	if d.Names != [4]string{} {
		clean := make([]string, 4)
		for i, n := range d.Names {
			clean[i] = strings.NewReplacer(",", "", "|", "").Replace(n)
		}
		b.WriteString("pn|" + strings.Join(clean, ",") + "|")
	}
	hands := make([]string, 4)
	for i, h := range d.Hands {
		lin, err := DotToLIN(h)
		if err != nil {
			return "", fmt.Errorf("hand %s: %w", Seat(i), err)
		}
		hands[i] = lin
	}
	fmt.Fprintf(&b, "md|%d%s|sv|%s|rh||ah|Board %d|", int(d.Dealer)+1, strings.Join(hands, ","), d.Vul.LINCode(), d.Board)
	for i, c := range d.Auction {
		b.WriteString("mb|" + c.String() + "|")
		if i < len(d.Alerts) && d.Alerts[i] != "" && d.Alerts[i] != "!" {
			b.WriteString("an|" + d.Alerts[i] + "|")
		}
	}
	for _, c := range d.Play {
		b.WriteString("pc|" + c.String() + "|")
	}
	if d.Claimed != nil {
		fmt.Fprintf(&b, "mc|%d|", *d.Claimed)
	}
	return b.String(), nil
}
