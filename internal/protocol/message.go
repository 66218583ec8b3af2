package protocol

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const clientSep = '\x01'

var ErrMalformed = errors.New("malformed_message")

// Element is one XML element of a server message with its attributes.
type Element struct {
	Name  string
	Attrs map[string]string
}

// Message is one observed protocol message. The body is only parsed on the
// first attribute lookup.
type Message struct {
	Raw string
	// At is the observation time in milliseconds. Differences between
	// consecutive messages give the thinking time of each action.
	At  int64
	Tag Tag

	parsed   bool
	parseErr error
	elements []Element
	attrs    map[string]string
}

func NewMessage(raw string, at int64) *Message {
	return &Message{Raw: raw, At: at, Tag: TagOf(raw)}
}

func (m *Message) parse() {
	if m.parsed {
		return
	}
	m.parsed = true
	if strings.HasPrefix(m.Raw, "<") {
		m.elements, m.parseErr = parseXML(m.Raw)
		if len(m.elements) > 0 {
			m.attrs = m.elements[0].Attrs
		}
		return
	}
	m.attrs = parseClient(m.Raw)
}

// Attr returns an attribute of the root element, or a key=value field of a
// client message.
func (m *Message) Attr(name string) (string, bool) {
	m.parse()
	v, ok := m.attrs[name]
	return v, ok
}

// AttrOr returns the attribute or def when it is absent.
func (m *Message) AttrOr(name, def string) string {
	if v, ok := m.Attr(name); ok {
		return v
	}
	return def
}

// Attrs returns all root attributes.
func (m *Message) Attrs() map[string]string {
	m.parse()
	return m.attrs
}

// Element returns the first element with the given name, the root included.
func (m *Message) Element(name string) (Element, bool) {
	m.parse()
	for _, el := range m.elements {
		if el.Name == name {
			return el, true
		}
	}
	return Element{}, false
}

// Err reports a parse failure of the message body.
func (m *Message) Err() error {
	m.parse()
	return m.parseErr
}

// Scan finds a root attribute value by substring search without parsing. It
// is meant for the frequent single-attribute messages (calls and cards).
func (m *Message) Scan(name string) (string, bool) {
	if strings.HasPrefix(m.Raw, "<") {
		needle := " " + name + `="`
		i := strings.Index(m.Raw, needle)
		if i < 0 {
			return "", false
		}
		rest := m.Raw[i+len(needle):]
		j := strings.IndexByte(rest, '"')
		if j < 0 {
			return "", false
		}
		return rest[:j], true
	}
	needle := string(clientSep) + name + "="
	i := strings.Index(m.Raw, needle)
	if i < 0 {
		return "", false
	}
	rest := m.Raw[i+len(needle):]
	if j := strings.IndexByte(rest, clientSep); j >= 0 {
		rest = rest[:j]
	}
	return rest, true
}

func parseXML(raw string) ([]Element, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	var out []Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if len(out) > 0 {
				return out, nil
			}
			return nil, errors.Join(ErrMalformed, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		el := Element{Name: start.Name.Local, Attrs: make(map[string]string, len(start.Attr))}
		for _, a := range start.Attr {
			el.Attrs[a.Name.Local] = a.Value
		}
		out = append(out, el)
	}
	if len(out) == 0 {
		return nil, ErrMalformed
	}
	return out, nil
}

func parseClient(raw string) map[string]string {
	fields := strings.Split(raw, string(clientSep))
	attrs := make(map[string]string, len(fields))
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			continue
		}
		if _, seen := attrs[k]; !seen {
			attrs[k] = v
		}
	}
	return attrs
}
