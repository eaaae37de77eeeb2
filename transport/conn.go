// Package transport provides the TLS-wrapped TCP channel a Cast session
// rides on. A custom OpenSSL BIO (a hand-rolled read/write adapter binding
// SSL directly to a raw socket descriptor) is the C equivalent of this;
// here zcrypto/tls operates directly on a net.Conn, since Go's net.Conn
// already is the abstraction a BIO exists to approximate.
package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/zmap/zcrypto/tls"
)

// DefaultDialTimeout bounds the initial TCP connect when the caller
// supplies no timeout.
const DefaultDialTimeout = 5 * time.Second

// Conn is a TLS channel to a Cast device. It implements net.Conn so it can
// be handed directly to anything expecting one (the session layer reads
// and writes castproto frames through it without knowing about TLS).
type Conn struct {
	raw     net.Conn
	tlsConn *tls.Conn
}

// Dial opens the underlying TCP connection without negotiating TLS; call
// Handshake to complete the channel. Splitting the two matches the original
// connect sequence (socket connect, then SSL_connect as a distinct step)
// and lets a caller apply separate timeouts to each phase.
func Dial(ctx context.Context, network, addr string, timeout time.Duration) (*Conn, error) {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	d := net.Dialer{Timeout: timeout}
	raw, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return &Conn{raw: raw}, nil
}

// Handshake negotiates TLS over the already-open TCP connection. Cast
// devices present ephemeral, device-generated certificates with no shared
// CA, so verification is skipped here exactly as the original client
// never validated the peer certificate chain — device identity is
// established later, at the application layer, via GET_APP_AVAILABILITY
// and the device's advertised mDNS id, not the TLS handshake.
func (c *Conn) Handshake(serverName string, timeout time.Duration) error {
	cfg := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         serverName,
	}
	tlsConn := tls.Client(c.raw, cfg)
	if timeout > 0 {
		deadline := time.Now().Add(timeout)
		if err := tlsConn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("transport: setting handshake deadline: %w", err)
		}
		defer tlsConn.SetDeadline(time.Time{})
	}
	if err := tlsConn.Handshake(); err != nil {
		return fmt.Errorf("transport: TLS handshake: %w", err)
	}
	c.tlsConn = tlsConn
	return nil
}

// Read fills p from the TLS channel. A read that returns (0, nil) — which
// the underlying record layer can produce on an empty fragment — is
// retried rather than surfaced as io.EOF: the original BIO adapter forced
// exactly this distinction with BIO_set_retry_read, since its socket read
// returned 0 both on "nothing available yet" and "peer closed", and only
// the former should make the TLS stack try again.
func (c *Conn) Read(p []byte) (int, error) {
	for {
		n, err := c.tlsConn.Read(p)
		if n == 0 && err == nil {
			continue
		}
		return n, err
	}
}

// Write sends p over the TLS channel. Outbound writes are always a
// complete blocking send, matching the original adapter's castSslWrite.
func (c *Conn) Write(p []byte) (int, error) {
	return c.tlsConn.Write(p)
}

// Close tears down the TLS session (sending close_notify) and the
// underlying TCP connection.
func (c *Conn) Close() error {
	if c.tlsConn != nil {
		return c.tlsConn.Close()
	}
	return c.raw.Close()
}

func (c *Conn) LocalAddr() net.Addr  { return c.raw.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

func (c *Conn) SetDeadline(t time.Time) error {
	if c.tlsConn != nil {
		return c.tlsConn.SetDeadline(t)
	}
	return c.raw.SetDeadline(t)
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	if c.tlsConn != nil {
		return c.tlsConn.SetReadDeadline(t)
	}
	return c.raw.SetReadDeadline(t)
}

func (c *Conn) SetWriteDeadline(t time.Time) error {
	if c.tlsConn != nil {
		return c.tlsConn.SetWriteDeadline(t)
	}
	return c.raw.SetWriteDeadline(t)
}
