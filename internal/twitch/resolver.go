package twitch

import (
	"context"
	"fmt"
	"net"
	"sort"

	"github.com/ManuGH/ttvgate/internal/log"
)

// LookupFunc resolves a bare hostname to a list of IP addresses.
type LookupFunc func(ctx context.Context, host string) ([]string, error)

// Resolver substitutes fixed addresses for a small set of upstream endpoints
// whose DNS answers are tampered with on hostile networks. It is an exception
// list, not a cache: the table is wired at build time and never learned from
// traffic. Every other endpoint goes through the fallback lookup unchanged.
type Resolver struct {
	overrides map[string][]string
	fallback  LookupFunc
}

// defaultOverrides maps exact host:port endpoints to dial addresses. The
// fastly entry fronts the GQL edge; the usher entries are its anycast
// addresses reachable where the hostname itself is blocked.
var defaultOverrides = map[string][]string{
	"twitch.map.fastly.net:443": {"151.101.110.167:443"},
	"usher.ttvnw.net:443":       {"192.108.239.254:443", "23.160.0.254:443"},
}

// NewResolver returns a resolver with the built-in override table and the
// system resolver as fallback.
func NewResolver() *Resolver {
	return &Resolver{
		overrides: defaultOverrides,
		fallback:  systemLookup,
	}
}

// newResolverWithTable builds a resolver from an explicit table and fallback.
func newResolverWithTable(table map[string][]string, fallback LookupFunc) *Resolver {
	return &Resolver{overrides: table, fallback: fallback}
}

// Resolve maps a host:port to the addresses to dial. Overridden endpoints
// return their fixed list; everything else resolves through the fallback,
// with failures surfaced unchanged.
func (r *Resolver) Resolve(ctx context.Context, hostport string) ([]string, error) {
	if addrs, ok := r.overrides[hostport]; ok {
		logger := log.WithComponentFromContext(ctx, "resolver")
		logger.Debug().
			Str(log.FieldEvent, "resolve.override").
			Str(log.FieldHost, hostport).
			Strs(log.FieldAddrs, addrs).
			Msg("using fixed addresses")
		out := make([]string, len(addrs))
		copy(out, addrs)
		return out, nil
	}

	return r.SystemResolve(ctx, hostport)
}

// SystemResolve resolves through the fallback only, ignoring the override
// table. The resolve diagnostic uses it to show both answers side by side.
func (r *Resolver) SystemResolve(ctx context.Context, hostport string) ([]string, error) {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return nil, fmt.Errorf("split host port %q: %w", hostport, err)
	}
	ips, err := r.fallback(ctx, host)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ips))
	for _, ip := range ips {
		out = append(out, net.JoinHostPort(ip, port))
	}
	return out, nil
}

// Overridden reports whether the endpoint has a fixed address entry.
func (r *Resolver) Overridden(hostport string) bool {
	_, ok := r.overrides[hostport]
	return ok
}

// Endpoints returns the overridden endpoints in sorted order.
func (r *Resolver) Endpoints() []string {
	out := make([]string, 0, len(r.overrides))
	for hostport := range r.overrides {
		out = append(out, hostport)
	}
	sort.Strings(out)
	return out
}

// Dial opens one TCP connection to an endpoint through the override table.
// Health probes use it to observe reachability without spending a request.
func (r *Resolver) Dial(ctx context.Context, hostport string) (net.Conn, error) {
	d := &net.Dialer{Timeout: defaultDialTimeout}
	return dialThrough(r, d)(ctx, "tcp", hostport)
}

func systemLookup(ctx context.Context, host string) ([]string, error) {
	return net.DefaultResolver.LookupHost(ctx, host)
}
