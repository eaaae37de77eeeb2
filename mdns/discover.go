package mdns

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
	"golang.org/x/sys/unix"

	"github.com/zmap/castgrab2/wire"
)

// IPMode selects which multicast address families a Discover call queries.
type IPMode int

const (
	IPv4 IPMode = 1 << iota
	IPv6
)

// IPBoth queries both address families, matching the original tool's default.
const IPBoth = IPv4 | IPv6

const (
	mdnsPort       = 5353
	mdnsGroupV4    = "224.0.0.251"
	mdnsGroupV6    = "ff02::fb"
	mdnsBufferSize = 9000 // RFC 6762 §17 UDP multicast message size ceiling
)

// Options configures a Discover call.
type Options struct {
	// Modes selects which address families to query; zero means IPBoth.
	Modes IPMode
	// Timeout is the wall-clock budget to wait for responses, per address
	// family; zero means 5 seconds.
	Timeout time.Duration
	// TestMode substitutes the canned fixture responses for a live socket
	// read, so discovery can be exercised without a network.
	TestMode bool
	Logger   logrus.FieldLogger
}

// Discover sends a Cast service PTR query over multicast DNS and collects
// the devices that answer, querying IPv4 and/or IPv6 per opts.Modes. A
// failure to use one address family (e.g. no IPv6 route) is logged and
// skipped rather than failing the whole call, matching the original two-pass
// scan loop.
func Discover(ctx context.Context, opts Options) ([]DeviceRecord, error) {
	if opts.Modes == 0 {
		opts.Modes = IPBoth
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	var records []DeviceRecord
	var firstErr error

	if opts.Modes&IPv4 != 0 {
		recs, err := discoverFamily(ctx, true, opts, log)
		if err != nil {
			log.WithError(err).Warn("mdns: IPv4 discovery pass failed")
			if firstErr == nil {
				firstErr = err
			}
		}
		records = append(records, recs...)
	}
	if opts.Modes&IPv6 != 0 {
		recs, err := discoverFamily(ctx, false, opts, log)
		if err != nil {
			log.WithError(err).Warn("mdns: IPv6 discovery pass failed")
			if firstErr == nil {
				firstErr = err
			}
		}
		records = append(records, recs...)
	}

	if len(records) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return records, nil
}

func discoverFamily(ctx context.Context, v4 bool, opts Options, log logrus.FieldLogger) ([]DeviceRecord, error) {
	if opts.TestMode {
		return testModeRecords(v4), nil
	}

	network := "udp4"
	group := mdnsGroupV4
	if !v4 {
		network = "udp6"
		group = mdnsGroupV6
	}

	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
				if sockErr == nil {
					// Best-effort: not every kernel exposes SO_REUSEPORT.
					_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
				}
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	conn, err := lc.ListenPacket(ctx, network, fmt.Sprintf(":%d", mdnsPort))
	if err != nil {
		return nil, fmt.Errorf("mdns: opening discovery socket: %w", err)
	}
	defer conn.Close()

	udpConn, ok := conn.(*net.UDPConn)
	if !ok {
		return nil, fmt.Errorf("mdns: unexpected listener type %T", conn)
	}

	groupAddr := &net.UDPAddr{IP: net.ParseIP(group), Port: mdnsPort}
	iface := &net.Interface{} // unspecified: join on the default multicast-capable interface

	if v4 {
		p := ipv4.NewPacketConn(udpConn)
		if err := p.JoinGroup(iface, &net.UDPAddr{IP: groupAddr.IP}); err != nil {
			return nil, fmt.Errorf("mdns: joining IPv4 multicast group: %w", err)
		}
		_ = p.SetMulticastLoopback(true)
		_ = p.SetMulticastTTL(1)
	} else {
		p := ipv6.NewPacketConn(udpConn)
		if err := p.JoinGroup(iface, &net.UDPAddr{IP: groupAddr.IP}); err != nil {
			return nil, fmt.Errorf("mdns: joining IPv6 multicast group: %w", err)
		}
		_ = p.SetMulticastLoopback(true)
		_ = p.SetMulticastHopLimit(1)
	}

	query := buildQuery()
	if _, err := udpConn.WriteTo(query, groupAddr); err != nil {
		return nil, fmt.Errorf("mdns: sending discovery query: %w", err)
	}

	return readResponses(udpConn, opts.Timeout, log)
}

// readResponses loops reading datagrams until opts.Timeout has elapsed,
// using a per-iteration read deadline rather than an OS-level non-blocking
// socket mode to cap each wait — the same effect, a different primitive.
func readResponses(conn *net.UDPConn, budget time.Duration, log logrus.FieldLogger) ([]DeviceRecord, error) {
	deadline := time.Now().Add(budget)
	buf := make([]byte, mdnsBufferSize)
	var records []DeviceRecord

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := conn.SetReadDeadline(time.Now().Add(remaining)); err != nil {
			return records, err
		}
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				break
			}
			return records, err
		}

		rec, err := parseResponse(buf[:n])
		if err == errNotCastResponse {
			continue
		}
		if err != nil {
			log.WithError(err).Debug("mdns: discarding malformed response")
			continue
		}
		if rec.IPAddr == nil {
			rec.IPAddr = addr.IP
		}
		records = append(records, rec)
	}

	return records, nil
}

// buildQuery constructs the DNS header plus the single PTR question for
// "_googlecast._tcp.local", QU/IN class.
func buildQuery() []byte {
	b := wire.NewBuffer()
	b.PutUint16(dnsTransactionID)
	b.PutUint16(0x0000) // flags: standard query
	b.PutUint16(0x0001) // qdcount
	b.PutUint16(0x0000) // ancount
	b.PutUint16(0x0000) // nscount
	b.PutUint16(0x0000) // arcount

	for _, label := range serviceLabels {
		b.PutBytes([]byte{byte(len(label))})
		b.PutBytes([]byte(label))
	}
	b.PutBytes([]byte{0x00}) // root label

	b.PutUint16(dnsTypePTR)
	b.PutUint16(0x8001) // QU bit set, IN class

	return b.Bytes()
}

func testModeRecords(v4 bool) []DeviceRecord {
	msg, addr := testResponseIPv4, testResponseIPv4Addr
	if !v4 {
		msg, addr = testResponseIPv6, testResponseIPv6Addr
	}
	rec, err := parseResponse(msg)
	if err != nil {
		return nil
	}
	if rec.IPAddr == nil {
		rec.IPAddr = net.ParseIP(addr)
	}
	return []DeviceRecord{rec}
}
