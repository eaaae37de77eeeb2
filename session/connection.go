// Package session implements the Cast v2 application session on top of a
// transport.Conn: the CONNECT/CLOSE handshake, PING/PONG heartbeats, and
// GET_APP_AVAILABILITY receiver queries, correlated by request id the way a
// single message-exchange helper would for every one of its callers.
package session

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/zmap/castgrab2/castproto"
)

// state tracks where a Connection sits in its lifecycle, the same
// progression the original connect/ping/close sequence assumed implicitly
// (open socket, negotiate TLS, send CONNECT, exchange messages, send CLOSE).
type state int32

const (
	stateInit state = iota
	stateTCPOpen
	stateTLSUp
	stateConnected
	stateClosed
)

// Endpoint ids a Connection uses for itself and the device, per message.
// Control-channel traffic (CONNECT/CLOSE, PING/PONG) always uses the fixed
// global sender-0/receiver-0 pair; a session-scoped controller would use
// sessionSenderID/sessionReceiverID instead, mirroring the
// fromSenderSession/toPortalReceiver flags on the original's message send
// helper.
const (
	sessionSenderID   = "castptl-nnn"
	sessionReceiverID = "castptl-000"
)

// wireConn is the minimal surface Connection needs from its transport, so
// tests can substitute a canned byte source without a real TLS handshake.
type wireConn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadDeadline(t time.Time) error
}

// Connection is one open Cast v2 application session to a device.
type Connection struct {
	conn      wireConn
	dmx       *castproto.Demultiplexer
	state     state
	requestID int32
}

// nextRequestID returns a monotonically increasing id for request/response
// correlation, starting at 1 (the original's ++(conn->requestId) pattern).
func (c *Connection) nextRequestID() int32 {
	return atomic.AddInt32(&c.requestID, 1)
}

// errState reports the connection not being in the state an operation
// requires.
type errState struct {
	op       string
	got      state
	expected state
}

func (e *errState) Error() string {
	return fmt.Sprintf("session: %s: connection in state %d, expected %d", e.op, e.got, e.expected)
}

func (c *Connection) requireState(op string, want state) error {
	if state(atomic.LoadInt32((*int32)(&c.state))) != want {
		return &errState{op: op, got: c.state, expected: want}
	}
	return nil
}
