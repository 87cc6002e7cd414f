package discovery

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(instance, host string, port int, ips ...string) *zeroconf.ServiceEntry {
	e := &zeroconf.ServiceEntry{}
	e.Instance = instance
	e.HostName = host
	e.Port = port
	for _, ip := range ips {
		parsed := net.ParseIP(ip)
		if parsed.To4() != nil {
			e.AddrIPv4 = append(e.AddrIPv4, parsed)
		} else {
			e.AddrIPv6 = append(e.AddrIPv6, parsed)
		}
	}
	return e
}

// fakeBrowse emits entries, then waits for the browse to end.
func fakeBrowse(found ...*zeroconf.ServiceEntry) BrowseFunc {
	return func(ctx context.Context, service, domain string,
		entries, removed chan *zeroconf.ServiceEntry, _ ...zeroconf.ClientOption) error {
		for _, e := range found {
			select {
			case entries <- e:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		<-ctx.Done()
		return nil
	}
}

func TestServerAddress(t *testing.T) {
	tests := []struct {
		name string
		srv  Server
		want string
	}{
		{"ipv4", Server{Host: "bi.local.", Port: 81, Addresses: []string{"192.168.1.5"}}, "192.168.1.5:81"},
		{"ipv6", Server{Host: "bi.local.", Port: 81, Addresses: []string{"fe80::1"}}, "[fe80::1]:81"},
		{"host only", Server{Host: "bi.local.", Port: 8080}, "bi.local:8080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.srv.Address())
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"path=/json", "Version=5", "flag", "=skip"})
	assert.Equal(t, map[string]string{"path": "/json", "version": "5", "flag": ""}, got)
	assert.Nil(t, parseTXT(nil))
}

func TestBrowseAggregatesByInstance(t *testing.T) {
	var gotService, gotDomain string
	browse := fakeBrowse(
		newEntry("Blue Iris", "bi.local.", 81, "192.168.1.5"),
		newEntry("Blue Iris", "bi.local.", 81, "fe80::5"),
		newEntry("Printer", "printer.local.", 80, "192.168.1.9"),
		newEntry("No port", "x.local.", 0, "192.168.1.10"),
	)
	b := NewBrowser(BrowserConfig{Browse: func(ctx context.Context, service, domain string,
		entries, removed chan *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error {
		gotService, gotDomain = service, domain
		return browse(ctx, service, domain, entries, removed, opts...)
	}})

	found := b.Find(context.Background(), 100*time.Millisecond)
	require.Len(t, found, 2)
	assert.Equal(t, ServiceTypeHTTP, gotService)
	assert.Equal(t, Domain, gotDomain)

	byName := map[string]*Server{}
	for _, s := range found {
		byName[s.Instance] = s
	}
	require.Contains(t, byName, "Blue Iris")
	assert.Equal(t, []string{"192.168.1.5", "fe80::5"}, byName["Blue Iris"].Addresses)
	assert.Equal(t, 81, byName["Blue Iris"].Port)
}

func TestBrowseEmitsCopiesOnAddressUpdates(t *testing.T) {
	b := NewBrowser(BrowserConfig{Browse: fakeBrowse(
		newEntry("Blue Iris", "bi.local.", 81, "192.168.1.5"),
		newEntry("Blue Iris", "bi.local.", 81, "fe80::5"),
		newEntry("Blue Iris", "bi.local.", 81, "192.168.1.5"),
		newEntry("Printer", "printer.local.", 80, "192.168.1.9"),
	)})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := b.Browse(ctx)

	receive := func() *Server {
		t.Helper()
		select {
		case srv := <-out:
			require.NotNil(t, srv)
			return srv
		case <-time.After(time.Second):
			t.Fatal("no service emitted")
			return nil
		}
	}

	first := receive()
	second := receive()
	third := receive()

	assert.Equal(t, []string{"192.168.1.5"}, first.Addresses, "earlier copies are not modified")
	assert.Equal(t, "Blue Iris", second.Instance)
	assert.Equal(t, []string{"192.168.1.5", "fe80::5"}, second.Addresses)
	assert.NotSame(t, first, second)
	assert.Equal(t, "Printer", third.Instance, "a repeated address is not re-emitted")

	// Receivers own their copies while the browse keeps running.
	second.Addresses[0] = "changed"
	cancel()
	for range out {
	}
}

func TestBrowseStopsOnCancel(t *testing.T) {
	b := NewBrowser(BrowserConfig{Browse: fakeBrowse()})
	ctx, cancel := context.WithCancel(context.Background())
	out := b.Browse(ctx)
	cancel()

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("browse did not stop")
	}
}

func blueIrisHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":"fail","session":"abc"}`)
	})
}

func otherJSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	})
}

func htmlHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html></html>`)
	})
}

func entryFor(t *testing.T, instance string, srv *httptest.Server) *zeroconf.ServiceEntry {
	t.Helper()
	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return newEntry(instance, "test.local.", p, host)
}

func TestProbe(t *testing.T) {
	bi := httptest.NewServer(blueIrisHandler())
	defer bi.Close()
	other := httptest.NewServer(otherJSONHandler())
	defer other.Close()
	html := httptest.NewServer(htmlHandler())
	defer html.Close()

	ctx := context.Background()

	ok, err := Probe(ctx, entryToServer(entryFor(t, "bi", bi)), "", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Probe(ctx, entryToServer(entryFor(t, "other", other)), "", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Probe(ctx, entryToServer(entryFor(t, "html", html)), "", nil)
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	bi := httptest.NewServer(blueIrisHandler())
	defer bi.Close()
	bi2 := httptest.NewServer(blueIrisHandler())
	defer bi2.Close()
	html := httptest.NewServer(htmlHandler())
	defer html.Close()

	found, err := Discover(context.Background(), Config{
		Browser: BrowserConfig{Browse: fakeBrowse(
			entryFor(t, "Upstairs", bi2),
			entryFor(t, "Web UI", html),
			entryFor(t, "Garage", bi),
		)},
		BrowseTimeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Garage", found[0].Instance)
	assert.Equal(t, "Upstairs", found[1].Instance)
}
