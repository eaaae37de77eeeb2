package castgrab2

import (
	"context"
	"errors"
	"net"

	"github.com/zmap/castgrab2/castproto"
)

// ScanStatus buckets a scan outcome for reporting and metrics, the same
// coarse taxonomy the scanning framework this package is adapted from uses
// to decide what counts as a success versus the several flavors of failure.
type ScanStatus string

const (
	StatusSuccess           ScanStatus = "success"
	StatusConnectionTimeout ScanStatus = "connection-timeout"
	StatusConnectionRefused ScanStatus = "connection-refused"
	StatusIOTimeout         ScanStatus = "io-timeout"
	StatusProtocolError     ScanStatus = "protocol-error"
	StatusApplicationError  ScanStatus = "application-error"
	StatusUnknownError      ScanStatus = "unknown-error"
)

// TryGetScanStatus classifies err, checking for protocol-level (malformed
// frame) errors first, then timeouts, then connection-level errors.
func TryGetScanStatus(err error) ScanStatus {
	if err == nil {
		return StatusSuccess
	}

	var frameErr *castproto.FrameError
	if errors.As(err, &frameErr) {
		return StatusProtocolError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return StatusIOTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return StatusIOTimeout
		}
		if opErr.Op == "dial" {
			return StatusConnectionRefused
		}
		return StatusConnectionTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return StatusIOTimeout
	}

	return StatusUnknownError
}
