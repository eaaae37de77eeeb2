package castgrab2

import (
	"context"
	"fmt"
	"net"
	"time"
)

// ScanTarget identifies one Cast device to scan, as produced by mdns
// discovery or supplied directly on the command line.
type ScanTarget struct {
	IP     net.IP
	Domain string
	Port   uint
}

// Address formats the target's host:port, falling back to defaultPort when
// the target carries none (e.g. a bare IP from a batch file).
func (t ScanTarget) Address(defaultPort uint) string {
	port := t.Port
	if port == 0 {
		port = defaultPort
	}
	host := t.Domain
	if host == "" {
		host = t.IP.String()
	}
	return net.JoinHostPort(host, fmt.Sprintf("%d", port))
}

// Scanner is implemented by every Cast module (ping, appavailability, ...).
type Scanner interface {
	Init(flags ScanFlags) error
	InitPerSender(senderID int) error
	GetName() string
	Scan(ctx context.Context, rt *RuntimeContext, t ScanTarget) (ScanStatus, interface{}, error)
}

// ScanResponse is the per-target, per-module result record, mirroring the
// framework's existing Result/Error/Time envelope with an added Status
// field.
type ScanResponse struct {
	Status ScanStatus  `json:"status"`
	Result interface{} `json:"result,omitempty"`
	Error  *string     `json:"error,omitempty"`
	Time   string      `json:"timestamp"`
}

type moduleStatus struct {
	name string
	st   ScanStatus
}

// Monitor tallies scan outcomes by module name and status, fed by
// RunScanner over statusesChan.
type Monitor struct {
	statusesChan chan moduleStatus
	statuses     map[string]map[ScanStatus]int
	done         chan struct{}
}

// MakeMonitor starts the tallying goroutine and returns the Monitor.
func MakeMonitor() *Monitor {
	m := &Monitor{
		statusesChan: make(chan moduleStatus, 64),
		statuses:     make(map[string]map[ScanStatus]int),
		done:         make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *Monitor) run() {
	for st := range m.statusesChan {
		counts, ok := m.statuses[st.name]
		if !ok {
			counts = make(map[ScanStatus]int)
			m.statuses[st.name] = counts
		}
		counts[st.st]++
	}
	close(m.done)
}

// Stop closes the status channel and waits for the tallying goroutine to
// drain it. GetStatuses is only safe to call after Stop returns.
func (m *Monitor) Stop() {
	close(m.statusesChan)
	<-m.done
}

// GetStatuses returns the final per-module status tally.
func (m *Monitor) GetStatuses() map[string]map[ScanStatus]int {
	return m.statuses
}

// RunScanner runs a single scan on a target and records its outcome with
// mon, returning the module name and the result envelope for that target.
func RunScanner(ctx context.Context, s Scanner, rt *RuntimeContext, mon *Monitor, target ScanTarget) (string, ScanResponse) {
	t := time.Now()
	status, res, err := s.Scan(ctx, rt, target)
	resp := ScanResponse{Status: status, Result: res, Time: t.Format(time.RFC3339)}
	if err != nil {
		msg := err.Error()
		resp.Error = &msg
	}
	mon.statusesChan <- moduleStatus{name: s.GetName(), st: status}
	return s.GetName(), resp
}
