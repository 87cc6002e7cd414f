package discovery

import (
	"context"
	"log/slog"
	"maps"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Browse defaults.
const (
	ServiceTypeHTTP = "_http._tcp"
	Domain          = "local."
	BrowseTimeout   = 5 * time.Second
)

// BrowseFunc runs an mDNS browse. zeroconf.Browse is used when nil.
type BrowseFunc func(ctx context.Context, service, domain string,
	entries, removed chan *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error

func zeroconfBrowse(ctx context.Context, service, domain string,
	entries, removed chan *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error {
	return zeroconf.Browse(ctx, service, domain, entries, removed, opts...)
}

// Server is an HTTP service found on the network.
type Server struct {
	// Instance is the advertised instance name.
	Instance string

	// Host is the advertised host name.
	Host string

	// Port is the HTTP port.
	Port int

	// Addresses are the resolved IP addresses, IPv4 first.
	Addresses []string

	// TXT holds the TXT record as key/value pairs.
	TXT map[string]string
}

func (s *Server) clone() *Server {
	c := *s
	c.Addresses = slices.Clone(s.Addresses)
	c.TXT = maps.Clone(s.TXT)
	return &c
}

// Address returns the preferred "host:port" to connect to.
func (s *Server) Address() string {
	host := strings.TrimSuffix(s.Host, ".")
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// BrowserConfig configures a Browser.
type BrowserConfig struct {
	// Service is the mDNS service type. Default: ServiceTypeHTTP.
	Service string

	// Domain is the mDNS domain. Default: Domain.
	Domain string

	// Interface restricts browsing to one network interface.
	// Empty string means all interfaces.
	Interface string

	// Browse replaces the mDNS browse. Set this in tests.
	Browse BrowseFunc

	Logger *slog.Logger
}

// Browser lists HTTP services advertised via mDNS.
type Browser struct {
	config BrowserConfig
	logger *slog.Logger
}

// NewBrowser creates a Browser.
func NewBrowser(config BrowserConfig) *Browser {
	if config.Service == "" {
		config.Service = ServiceTypeHTTP
	}
	if config.Domain == "" {
		config.Domain = Domain
	}
	if config.Browse == nil {
		config.Browse = zeroconfBrowse
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Browser{config: config, logger: logger}
}

// Browse emits services until ctx is done. Services are aggregated by
// instance name. A service is emitted when first seen and again whenever
// another interface reports new addresses for it. Every emitted Server is a
// copy owned by the receiver.
func (b *Browser) Browse(ctx context.Context) <-chan *Server {
	out := make(chan *Server)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)

		seen := make(map[string]*Server)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				srv := entryToServer(entry)
				if srv == nil {
					continue
				}
				if existing, found := seen[srv.Instance]; found {
					merged := mergeAddresses(existing.Addresses, srv.Addresses)
					if len(merged) == len(existing.Addresses) {
						continue
					}
					existing.Addresses = merged
					srv = existing
				} else {
					seen[srv.Instance] = srv
				}
				select {
				case out <- srv.clone():
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					removed = nil
					continue
				}
				delete(seen, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		if err := b.config.Browse(ctx, b.config.Service, b.config.Domain, entries, removed, b.options()...); err != nil {
			b.logger.Warn("mDNS browse failed", "service", b.config.Service, "error", err)
		}
	}()

	return out
}

// Find browses for timeout and returns the latest view of each service, in
// the order they were first seen.
func (b *Browser) Find(ctx context.Context, timeout time.Duration) []*Server {
	if timeout <= 0 {
		timeout = BrowseTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var found []*Server
	index := make(map[string]int)
	for srv := range b.Browse(ctx) {
		if i, ok := index[srv.Instance]; ok {
			found[i] = srv
			continue
		}
		index[srv.Instance] = len(found)
		found = append(found, srv)
	}
	return found
}

func (b *Browser) options() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		} else {
			b.logger.Warn("unknown interface, browsing all", "interface", b.config.Interface)
		}
	}
	return opts
}

// entryToServer converts a zeroconf entry. Entries without a port are
// dropped.
func entryToServer(entry *zeroconf.ServiceEntry) *Server {
	if entry == nil || entry.Port == 0 {
		return nil
	}
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return &Server{
		Instance:  entry.Instance,
		Host:      entry.HostName,
		Port:      entry.Port,
		Addresses: addrs,
		TXT:       parseTXT(entry.Text),
	}
}

// parseTXT splits "key=value" strings. Keys without a value map to "".
func parseTXT(records []string) map[string]string {
	if len(records) == 0 {
		return nil
	}
	txt := make(map[string]string, len(records))
	for _, r := range records {
		k, v, _ := strings.Cut(r, "=")
		if k == "" {
			continue
		}
		txt[strings.ToLower(k)] = v
	}
	return txt
}

func mergeAddresses(existing, more []string) []string {
	for _, a := range more {
		dup := false
		for _, e := range existing {
			if e == a {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, a)
		}
	}
	return existing
}
