package logparse

import (
	"testing"

	"github.com/pkg/errors"
)

func TestResolveCachesLookups(t *testing.T) {
	calls := 0
	hr := &HostnameResolver{
		lookup: func(addr string) ([]string, error) {
			calls++
			return []string{"host-" + addr}, nil
		},
		cache: make(map[string]string),
	}
	if got := hr.Resolve("1.2.3.4"); got != "host-1.2.3.4" {
		t.Errorf("wrong hostname: %q", got)
	}
	hr.Resolve("1.2.3.4")
	hr.Resolve("1.2.3.4")
	if calls != 1 {
		t.Errorf("expected 1 lookup, got %d", calls)
	}
}

func TestResolveFallback(t *testing.T) {
	hr := &HostnameResolver{
		lookup: func(addr string) ([]string, error) {
			return nil, errors.New("no PTR record")
		},
		cache: make(map[string]string),
	}
	if got := hr.Resolve("10.0.0.1"); got != "offline" {
		t.Errorf("expected fallback, got %q", got)
	}
	// Failures are cached too; the resolver never hammers a dead address.
	hr.lookup = func(addr string) ([]string, error) {
		t.Fatal("lookup called again for cached address")
		return nil, nil
	}
	hr.Resolve("10.0.0.1")
}

func TestEnrichSkipsResolved(t *testing.T) {
	hr := &HostnameResolver{
		lookup: func(addr string) ([]string, error) {
			return []string{"resolved.example.edu"}, nil
		},
		cache: make(map[string]string),
	}
	records := []TransactionRecord{
		{ClientAddr: "1.1.1.1"},
		{ClientAddr: "2.2.2.2", Hostname: "already.example.edu"},
	}
	hr.Enrich(records)
	if records[0].Hostname != "resolved.example.edu" {
		t.Errorf("record not enriched: %+v", records[0])
	}
	if records[1].Hostname != "already.example.edu" {
		t.Errorf("existing hostname overwritten: %+v", records[1])
	}
}
