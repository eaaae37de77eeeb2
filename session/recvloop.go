package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/zmap/castgrab2"
	"github.com/zmap/castgrab2/castproto"
)

// filter describes which inbound envelope receiveUntil is waiting for.
// PayloadType -1 (castproto.PayloadAny) matches either payload kind.
type filter struct {
	Namespace   castproto.Namespace
	PayloadType castproto.PayloadType
}

func (f filter) matches(env castproto.IdentifiedEnvelope) bool {
	if env.Sender != castproto.EndpointGlobal && env.Sender != castproto.EndpointSession {
		return false
	}
	if env.Namespace != f.Namespace {
		return false
	}
	if f.PayloadType != castproto.PayloadAny && env.PayloadType != f.PayloadType {
		return false
	}
	return true
}

const readChunkSize = 4096

// receiveUntil reads frames off conn until one matches want, skipping over
// any well-formed frame addressed elsewhere and any malformed frame (the
// latter counted in castgrab2.FrameErrors) — the same resilience the demultiplexer's frame-error
// path provides at the unit level, applied here at the session's
// request/response granularity so one stray or corrupt frame never aborts
// an otherwise healthy exchange.
func receiveUntil(c *Connection, want filter, timeout time.Duration) (castproto.IdentifiedEnvelope, error) {
	deadline := time.Now().Add(timeout)
	buf := make([]byte, readChunkSize)

	for {
		for {
			env, ok, err := c.dmx.Next()
			if err != nil {
				var frameErr *castproto.FrameError
				if errors.As(err, &frameErr) {
					castgrab2.FrameErrors.Inc()
					continue
				}
				return castproto.IdentifiedEnvelope{}, err
			}
			if !ok {
				break
			}
			if want.matches(env) {
				return env, nil
			}
		}

		if time.Now().After(deadline) {
			return castproto.IdentifiedEnvelope{}, fmt.Errorf("session: timed out waiting for %s response", want.Namespace)
		}
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return castproto.IdentifiedEnvelope{}, err
		}
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.dmx.Feed(buf[:n])
		}
		if err != nil {
			return castproto.IdentifiedEnvelope{}, fmt.Errorf("session: reading response: %w", err)
		}
	}
}
