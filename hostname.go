package logparse

import "net"

// hostnameFallback is recorded when reverse resolution fails; it mirrors the
// address being unreachable rather than erroring the enrichment pass.
const hostnameFallback = "offline"

// HostnameResolver resolves client addresses to hostnames lazily, caching
// results per engine run. It is an optional enrichment collaborator; core
// ingestion never waits on it.
type HostnameResolver struct {
	lookup func(addr string) ([]string, error)
	cache  map[string]string
}

// NewHostnameResolver returns a resolver backed by the system resolver.
func NewHostnameResolver() *HostnameResolver {
	return &HostnameResolver{
		lookup: net.LookupAddr,
		cache:  make(map[string]string),
	}
}

// Resolve returns the hostname for addr, or "offline" when resolution fails.
// Each distinct address is looked up at most once per resolver.
func (hr *HostnameResolver) Resolve(addr string) string {
	if name, ok := hr.cache[addr]; ok {
		return name
	}
	name := hostnameFallback
	if names, err := hr.lookup(addr); err == nil && len(names) > 0 {
		name = names[0]
	}
	hr.cache[addr] = name
	return name
}

// Enrich fills in the Hostname field of every record missing one.
func (hr *HostnameResolver) Enrich(records []TransactionRecord) {
	for i := range records {
		if records[i].Hostname == "" {
			records[i].Hostname = hr.Resolve(records[i].ClientAddr)
		}
	}
}
