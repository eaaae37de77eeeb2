// Command castgrab2 discovers Cast (Chromecast) devices on the local
// network and runs a scan module (ping, app-availability) against them,
// mirroring the parse-flags/monitor/process/summary sequence the scanning
// framework this tool is adapted from uses for every protocol it grabs
// banners from.
package main

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"strconv"
	"time"

	flags "github.com/ajholland/zflags"
	log "github.com/sirupsen/logrus"

	"github.com/zmap/castgrab2"
	"github.com/zmap/castgrab2/mdns"

	_ "github.com/zmap/castgrab2/modules/appavailability"
	_ "github.com/zmap/castgrab2/modules/ping"
)

// summary mirrors the original tool's end-of-run report: per-module status
// tallies plus wall-clock timing.
type summary struct {
	StatusesPerModule map[string]map[castgrab2.ScanStatus]int `json:"statuses"`
	StartTime         string                                  `json:"start_time"`
	EndTime           string                                  `json:"end_time"`
	Duration          string                                  `json:"duration"`
}

func main() {
	if _, err := castgrab2.ParseFlags(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.Fatal(err.Error())
	}

	name, scanner, _, ok := castgrab2.ActiveModule()
	if !ok {
		log.Fatal("no module selected, run with --help for usage")
	}

	rt := castgrab2.NewDefaultRuntimeContext()
	var err error
	if castgrab2.Root.Config != "" {
		rt, err = castgrab2.LoadRuntimeContext(castgrab2.Root.Config)
		if err != nil {
			log.Fatalf("loading config: %s", err.Error())
		}
	}
	if castgrab2.Root.TestMode {
		rt.TestMode = true
	}

	if castgrab2.Root.MetricsAddr != "" {
		go func() {
			if err := castgrab2.ServeMetrics(castgrab2.Root.MetricsAddr); err != nil {
				log.Errorf("metrics server: %s", err.Error())
			}
		}()
	}

	ctx := context.Background()

	var targets []castgrab2.ScanTarget
	switch {
	case castgrab2.Root.Discover:
		records, err := mdns.Discover(ctx, mdns.Options{
			Modes:    mdns.IPBoth,
			Timeout:  rt.DiscoveryTimeout,
			TestMode: rt.TestMode,
		})
		if err != nil {
			log.Fatalf("discovery: %s", err.Error())
		}
		for _, r := range records {
			castgrab2.DiscoveryResponses.WithLabelValues(familyOf(r)).Inc()
			log.Debugf("discovered %q (%s) at %s:%d", r.Name, r.Model, r.IPAddr, r.Port)
			targets = append(targets, castgrab2.ScanTarget{IP: r.IPAddr, Port: uint(r.Port)})
		}
	case castgrab2.Root.Targets != "":
		targets = parseTargets(castgrab2.Root.Targets)
	default:
		log.Fatal("one of --discover or --targets is required")
	}

	mon := castgrab2.MakeMonitor()
	start := time.Now()
	if err := castgrab2.Process(ctx, []castgrab2.Scanner{scanner}, rt, mon, targets, castgrab2.Root.Senders, os.Stdout); err != nil {
		log.Errorf("processing targets: %s", err.Error())
	}
	mon.Stop()
	end := time.Now()

	log.Infof("%s: scanned %d target(s)", name, len(targets))

	s := summary{
		StatusesPerModule: mon.GetStatuses(),
		StartTime:         start.Format(time.RFC3339),
		EndTime:           end.Format(time.RFC3339),
		Duration:          end.Sub(start).String(),
	}
	enc := json.NewEncoder(os.Stderr)
	if err := enc.Encode(&s); err != nil {
		log.Fatalf("unable to write summary: %s", err.Error())
	}
}

func familyOf(r mdns.DeviceRecord) string {
	if r.IPAddr.To4() != nil {
		return "ipv4"
	}
	return "ipv6"
}

func parseTargets(csv string) []castgrab2.ScanTarget {
	var targets []castgrab2.ScanTarget
	for _, part := range splitComma(csv) {
		if part == "" {
			continue
		}
		host, portStr, err := net.SplitHostPort(part)
		if err != nil {
			targets = append(targets, castgrab2.ScanTarget{Domain: part})
			continue
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			targets = append(targets, castgrab2.ScanTarget{Domain: host})
			continue
		}
		targets = append(targets, castgrab2.ScanTarget{Domain: host, Port: uint(port)})
	}
	return targets
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
