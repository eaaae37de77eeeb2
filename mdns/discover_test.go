package mdns

import (
	"context"
	"testing"
)

func TestDiscoverTestModeIPv4(t *testing.T) {
	recs, err := Discover(context.Background(), Options{Modes: IPv4, TestMode: true})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Name != "Den TV" {
		t.Errorf("Name = %q, want %q", rec.Name, "Den TV")
	}
	if rec.Model != "Chromecast" {
		t.Errorf("Model = %q, want %q", rec.Model, "Chromecast")
	}
	if rec.ID != "63970hbc22h26b6b2a0492825db8d2f4" {
		t.Errorf("ID = %q", rec.ID)
	}
	if rec.IPAddr.String() != "10.12.1.141" {
		t.Errorf("IPAddr = %v", rec.IPAddr)
	}
	if rec.Port != 8009 {
		t.Errorf("Port = %d, want %d", rec.Port, 8009)
	}
}

func TestDiscoverTestModeIPv6(t *testing.T) {
	recs, err := Discover(context.Background(), Options{Modes: IPv6, TestMode: true})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Name != "TST Chrome Panel" {
		t.Errorf("Name = %q, want %q", rec.Name, "TST Chrome Panel")
	}
	if rec.Model != "Chromecast Ultra" {
		t.Errorf("Model = %q, want %q", rec.Model, "Chromecast Ultra")
	}
	if rec.IPAddr.String() != "2016:cd8:4567:2cd0::12" {
		t.Errorf("IPAddr = %v", rec.IPAddr)
	}
}

func TestDiscoverTestModeBoth(t *testing.T) {
	recs, err := Discover(context.Background(), Options{TestMode: true})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
}

func TestParseResponseRejectsWrongTransactionID(t *testing.T) {
	msg := append([]byte(nil), testResponseIPv4...)
	msg[0] = 0x00 // corrupt the transaction id
	if _, err := parseResponse(msg); err != errNotCastResponse {
		t.Fatalf("got %v, want errNotCastResponse", err)
	}
}
