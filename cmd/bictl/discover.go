package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/nwesterhausen/pyblueiris/pkg/discovery"
)

func runDiscover(ctx context.Context, args []string, w io.Writer) error {
	fs := newFlagSet("discover", "Find Blue Iris servers on the local network", "")
	timeout := fs.Duration("timeout", discovery.BrowseTimeout, "How long to listen for mDNS answers")
	iface := fs.String("interface", "", "Network interface to browse on (default: all)")
	protocol := fs.String("protocol", "http", "Protocol used to probe candidates")
	verbose := fs.Bool("v", false, "Log probe failures")
	_ = fs.Parse(args)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	servers, err := discovery.Discover(ctx, discovery.Config{
		Browser: discovery.BrowserConfig{
			Interface: *iface,
		},
		BrowseTimeout: *timeout,
		Protocol:      *protocol,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	return printServers(w, servers)
}

func printServers(w io.Writer, servers []*discovery.Server) error {
	if len(servers) == 0 {
		_, err := fmt.Fprintln(w, "No Blue Iris servers found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INSTANCE\tHOST\tADDRESS")
	for _, srv := range servers {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", srv.Instance, srv.Host, srv.Address())
	}
	return tw.Flush()
}
