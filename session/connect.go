package session

import (
	"context"
	"fmt"
	"time"

	"github.com/zmap/castgrab2/castproto"
	"github.com/zmap/castgrab2/transport"
)

// ConnectOptions configures how Connect reaches a device.
type ConnectOptions struct {
	// DialTimeout bounds the TCP connect phase. Zero uses transport's
	// default.
	DialTimeout time.Duration
	// HandshakeTimeout bounds the TLS negotiation phase.
	HandshakeTimeout time.Duration
	// ServerName is sent as the TLS SNI hint; Cast devices ignore it but
	// zcrypto/tls requires a non-empty value to validate against when
	// InsecureSkipVerify is false, so this is kept for API completeness
	// even though the handshake never checks it.
	ServerName string
	// TestMode substitutes a canned response queue for a real socket and
	// TLS handshake entirely.
	TestMode bool
}

// Connect opens a TCP+TLS channel to addr (host:port) and sends the
// baseline CONNECT handshake message, exactly as the original
// castDeviceConnect did before returning a usable connection. No response
// is expected to CONNECT.
func Connect(ctx context.Context, addr string, opts ConnectOptions) (*Connection, error) {
	c := &Connection{
		dmx:   castproto.NewDemultiplexer(sessionSenderID, sessionReceiverID),
		state: stateInit,
	}

	if opts.TestMode {
		c.conn = newTestConn(pongResp, appAvailResp)
		c.state = stateTLSUp
	} else {
		tc, err := transport.Dial(ctx, "tcp", addr, opts.DialTimeout)
		if err != nil {
			return nil, err
		}
		c.state = stateTCPOpen
		if err := tc.Handshake(opts.ServerName, opts.HandshakeTimeout); err != nil {
			tc.Close()
			return nil, err
		}
		c.conn = tc
		c.state = stateTLSUp
	}

	if err := c.sendConnect(); err != nil {
		c.conn.Close()
		c.state = stateClosed
		return nil, err
	}
	c.state = stateConnected

	return c, nil
}

func (c *Connection) sendConnect() error {
	frame, err := castproto.Encode(castproto.Envelope{
		Version:       castproto.ProtocolVersion,
		SourceID:      castproto.GlobalSenderID,
		DestinationID: castproto.GlobalReceiverID,
		Namespace:     castproto.NamespaceConnection,
		PayloadType:   castproto.PayloadString,
		Payload:       []byte(`{"type": "CONNECT"}`),
	})
	if err != nil {
		return fmt.Errorf("session: encoding CONNECT: %w", err)
	}
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("session: sending CONNECT: %w", err)
	}
	return nil
}
