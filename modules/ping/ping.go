// Package ping provides a castgrab2 Module that connects to a Cast device
// and exchanges a single PING/PONG heartbeat, reporting round-trip latency.
// It plays the same role as a banner-grab module does for other protocols
// (ssh, redis): the one baseline liveness probe every Cast device answers.
package ping

import (
	"context"
	"time"

	"github.com/zmap/castgrab2"
	"github.com/zmap/castgrab2/session"
)

// Flags are ping's command-line options.
type Flags struct {
	castgrab2.BaseFlags
}

func (f *Flags) Validate(args []string) error { return nil }
func (f *Flags) Help() string                 { return "" }

// Module implements castgrab2.Module.
type Module struct{}

func (m *Module) NewFlags() castgrab2.ScanFlags { return new(Flags) }
func (m *Module) NewScanner() castgrab2.Scanner { return new(Scanner) }

func init() {
	var m Module
	if _, err := castgrab2.AddCommand("ping", "Cast Heartbeat", "Exchange a PING/PONG heartbeat with a Cast device", &m); err != nil {
		panic(err)
	}
}

// Result is the scan result recorded for one target.
type Result struct {
	LatencyMillis float64 `json:"latency_ms"`
}

// Scanner implements castgrab2.Scanner.
type Scanner struct {
	config *Flags
}

func (s *Scanner) Init(flags castgrab2.ScanFlags) error {
	f, _ := flags.(*Flags)
	s.config = f
	return nil
}

func (s *Scanner) InitPerSender(senderID int) error { return nil }

func (s *Scanner) GetName() string { return s.config.Name }

// Scan connects to t, sends PING, and waits for PONG.
func (s *Scanner) Scan(ctx context.Context, rt *castgrab2.RuntimeContext, t castgrab2.ScanTarget) (castgrab2.ScanStatus, interface{}, error) {
	timeout := time.Duration(s.config.Timeout) * time.Second

	conn, err := session.Connect(ctx, t.Address(s.config.Port), session.ConnectOptions{
		DialTimeout:      timeout,
		HandshakeTimeout: timeout,
		ServerName:       t.Domain,
		TestMode:         rt.TestMode,
	})
	castgrab2.ConnectAttempts.WithLabelValues(string(castgrab2.TryGetScanStatus(err))).Inc()
	if err != nil {
		return castgrab2.TryGetScanStatus(err), nil, err
	}
	defer conn.Close()

	latency, err := conn.Ping(rt.MessageTimeout)
	if err != nil {
		return castgrab2.TryGetScanStatus(err), nil, err
	}
	castgrab2.PingLatency.Observe(latency.Seconds())

	return castgrab2.StatusSuccess, &Result{LatencyMillis: float64(latency.Microseconds()) / 1000.0}, nil
}
