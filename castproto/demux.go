package castproto

import (
	"encoding/binary"
)

// Endpoint classifies which side of the global/session id pair an envelope's
// sender or receiver id matched.
type Endpoint int

const (
	// EndpointUnknown means neither the global nor the session id matched.
	EndpointUnknown Endpoint = iota
	// EndpointGlobal means the id matched the connection-wide sender-0/receiver-0.
	EndpointGlobal
	// EndpointSession means the id matched the session-scoped controller id.
	EndpointSession
)

// classifyID compares id byte-for-byte against the global and session
// candidate strings, returning which one (if either) matched.
//
// A prior C version of this check used `fragLen = 999` as a branch
// condition — an assignment where a comparison was intended, which made
// every non-"receiver-0" id look like a session match. Here both
// candidates are compared explicitly and a match against neither is
// EndpointUnknown.
func classifyID(id, global, session string) Endpoint {
	switch {
	case id == global:
		return EndpointGlobal
	case session != "" && id == session:
		return EndpointSession
	default:
		return EndpointUnknown
	}
}

// IdentifiedEnvelope pairs a decoded Envelope with the endpoint
// classification of its sender and receiver ids.
type IdentifiedEnvelope struct {
	Envelope
	Sender   Endpoint
	Receiver Endpoint
}

// Demultiplexer extracts complete length-prefixed Cast frames from a rolling
// byte buffer fed by the TLS transport, decodes each, and classifies its
// endpoints against the session's assigned sender/receiver ids.
type Demultiplexer struct {
	buf             []byte
	sessionSenderID string
	sessionReceiverID string
	maxFrameSize    int
}

// NewDemultiplexer returns a Demultiplexer that classifies ids against the
// given session-scoped sender/receiver pair (in addition to the fixed
// global sender-0/receiver-0 pair).
func NewDemultiplexer(sessionSenderID, sessionReceiverID string) *Demultiplexer {
	return &Demultiplexer{
		sessionSenderID:   sessionSenderID,
		sessionReceiverID: sessionReceiverID,
		maxFrameSize:      DefaultMaxFrameSize,
	}
}

// SetMaxFrameSize overrides the default frame size ceiling.
func (d *Demultiplexer) SetMaxFrameSize(n int) {
	d.maxFrameSize = n
}

// Feed appends newly-read bytes to the rolling buffer.
func (d *Demultiplexer) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Pending reports how many bytes are currently buffered (for tests/metrics).
func (d *Demultiplexer) Pending() int {
	return len(d.buf)
}

// Next extracts and decodes the next complete frame from the buffer. It
// returns (envelope, true, nil) on a decoded frame, (zero, false, nil) when
// the buffer holds no complete frame yet, and (zero, false, err) on a
// malformed frame — whose bytes have already been consumed, so the caller
// may call Next again for the next frame.
func (d *Demultiplexer) Next() (IdentifiedEnvelope, bool, error) {
	if len(d.buf) < 4 {
		return IdentifiedEnvelope{}, false, nil
	}
	length := binary.BigEndian.Uint32(d.buf[:4])
	total := int(length) + 4
	if length > uint32(d.maxFrameSize) {
		if len(d.buf) < total {
			return IdentifiedEnvelope{}, false, nil
		}
		d.consume(total)
		return IdentifiedEnvelope{}, false, &FrameError{Reason: "frame exceeds maximum size"}
	}
	if len(d.buf) < total {
		return IdentifiedEnvelope{}, false, nil
	}

	body := d.buf[4:total]
	env, err := Decode(body)
	d.consume(total)
	if err != nil {
		return IdentifiedEnvelope{}, false, err
	}

	// An inbound frame comes from the device, so its source id is matched
	// against the receiver ids and its destination id against the sender ids.
	sender := classifyID(env.SourceID, GlobalReceiverID, d.sessionReceiverID)
	receiver := classifyID(env.DestinationID, GlobalSenderID, d.sessionSenderID)
	return IdentifiedEnvelope{Envelope: env, Sender: sender, Receiver: receiver}, true, nil
}

// consume removes the first n bytes from the rolling buffer. The buffer
// never retains a half-parsed frame across calls: n always equals exactly
// one frame's total length (header + body).
func (d *Demultiplexer) consume(n int) {
	copy(d.buf, d.buf[n:])
	d.buf = d.buf[:len(d.buf)-n]
}
