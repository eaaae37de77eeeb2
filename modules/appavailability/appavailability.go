// Package appavailability provides a castgrab2 Module that connects to a
// Cast device and asks whether a given receiver application is available,
// the Go scan-module analogue of the original extension's
// castAppCheckAvailability call.
package appavailability

import (
	"context"
	"time"

	"github.com/zmap/castgrab2"
	"github.com/zmap/castgrab2/session"
)

// Flags are appavailability's command-line options.
type Flags struct {
	castgrab2.BaseFlags

	AppID string `long:"app-id" description:"Receiver application id to query (defaults to the runtime configuration's application id)"`
}

func (f *Flags) Validate(args []string) error { return nil }
func (f *Flags) Help() string                 { return "" }

// Module implements castgrab2.Module.
type Module struct{}

func (m *Module) NewFlags() castgrab2.ScanFlags { return new(Flags) }
func (m *Module) NewScanner() castgrab2.Scanner { return new(Scanner) }

func init() {
	var m Module
	if _, err := castgrab2.AddCommand("app-availability", "Cast App Availability", "Query whether a receiver application is available on a Cast device", &m); err != nil {
		panic(err)
	}
}

// Result is the scan result recorded for one target.
type Result struct {
	AppID     string `json:"app_id"`
	Available bool   `json:"available"`
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

// Scan connects to t and checks availability of the configured application,
// falling back to rt.ApplicationID when the module's own flag is unset.
func (s *Scanner) Scan(ctx context.Context, rt *castgrab2.RuntimeContext, t castgrab2.ScanTarget) (castgrab2.ScanStatus, interface{}, error) {
	timeout := time.Duration(s.config.Timeout) * time.Second

	appID := s.config.AppID
	if appID == "" {
		appID = rt.ApplicationID
	}

	conn, err := session.Connect(ctx, t.Address(s.config.Port), session.ConnectOptions{
		DialTimeout:      timeout,
		HandshakeTimeout: timeout,
		ServerName:       t.Domain,
		TestMode:         rt.TestMode,
	})
	if err != nil {
		return castgrab2.TryGetScanStatus(err), nil, err
	}
	defer conn.Close()

	available, err := conn.AppAvailable(appID, rt.MessageTimeout)
	if err != nil {
		return castgrab2.TryGetScanStatus(err), nil, err
	}
	if !available {
		return castgrab2.StatusApplicationError, &Result{AppID: appID, Available: false}, nil
	}

	return castgrab2.StatusSuccess, &Result{AppID: appID, Available: true}, nil
}
