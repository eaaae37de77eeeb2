package castgrab2

import (
	"context"
	"encoding/json"
	"io"
	"sync"
)

// record is one target's scan result, serialized as a single JSON line to
// the output stream, the same line-delimited-JSON convention the scanning
// framework this package is adapted from uses for its result stream.
type record struct {
	IP     string       `json:"ip,omitempty"`
	Domain string       `json:"domain,omitempty"`
	Module string       `json:"module"`
	ScanResponse
}

// Process runs every scanner in scanners against every target, fanning out
// across workers workers and writing one JSON line per (target, scanner)
// result to out. It blocks until every scan completes.
func Process(ctx context.Context, scanners []Scanner, rt *RuntimeContext, mon *Monitor, targets []ScanTarget, workers int, out io.Writer) error {
	if workers <= 0 {
		workers = 1
	}

	type job struct {
		target  ScanTarget
		scanner Scanner
	}

	jobs := make(chan job)
	results := make(chan record)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				name, resp := RunScanner(ctx, j.scanner, rt, mon, j.target)
				results <- record{
					IP:           ipString(j.target),
					Domain:       j.target.Domain,
					Module:       name,
					ScanResponse: resp,
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, t := range targets {
			for _, s := range scanners {
				jobs <- job{target: t, scanner: s}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	enc := json.NewEncoder(out)
	var encErr error
	for r := range results {
		if encErr == nil {
			encErr = enc.Encode(&r)
		}
	}
	return encErr
}

func ipString(t ScanTarget) string {
	if t.IP == nil {
		return ""
	}
	return t.IP.String()
}
