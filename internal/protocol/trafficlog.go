package protocol

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const escapedSep = `\x01`

// ParseLogLine reads one traffic log line, "<millis>\t<raw message>". The
// two character sequence \x01 stands for the client field separator.
func ParseLogLine(line string) (*Message, error) {
	ts, raw, ok := strings.Cut(line, "\t")
	if !ok {
		return nil, fmt.Errorf("%w: missing tab", ErrMalformed)
	}
	at, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp %q", ErrMalformed, ts)
	}
	raw = strings.ReplaceAll(raw, escapedSep, string(clientSep))
	if raw == "" {
		return nil, fmt.Errorf("%w: empty message", ErrMalformed)
	}
	return NewMessage(raw, at), nil
}

// FormatLogLine is the inverse of ParseLogLine.
func FormatLogLine(m *Message) string {
	return strconv.FormatInt(m.At, 10) + "\t" + strings.ReplaceAll(m.Raw, string(clientSep), escapedSep)
}

// ReadLog sends every message of a traffic log to out in order. Blank lines
// and lines starting with '#' are skipped; a malformed line stops the read
// with its line number.
func ReadLog(ctx context.Context, r io.Reader, out chan<- *Message) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m, err := ParseLogLine(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		select {
		case out <- m:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return sc.Err()
}
