package ws

const ProtocolVersion = "1.0"

// Frame types.
const (
	FrameMessage = "message"
	FrameAck     = "ack"
	FrameError   = "error"
)

// Error codes sent back in error frames.
const (
	ErrCodeInvalidFrame = "invalid_frame"
	ErrCodeEmptyMessage = "empty_message"
	ErrCodeFeedClosed   = "feed_closed"
)

// MessageFrame carries one decoded protocol message from the capture side.
// TS is the capture time in unix milliseconds; zero means "now".
type MessageFrame struct {
	Type string `json:"type"`
	Seq  int64  `json:"seq,omitempty"`
	TS   int64  `json:"ts,omitempty"`
	Msg  string `json:"msg"`
}

// AckFrame acknowledges a MessageFrame that carried a seq.
type AckFrame struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             int64  `json:"seq"`
	Tag             string `json:"tag,omitempty"`
}

type ErrorFrame struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             int64  `json:"seq,omitempty"`
	Error           string `json:"error"`
}
