// Command bictl queries and controls a Blue Iris server from the command line.
//
// Usage:
//
//	bictl <command> [flags] [args]
//
// Commands:
//
//	status    Log in and print server information and status
//	cameras   List cameras
//	refresh   Run a full refresh and print the outcome of each step
//	exec      Execute a single command with key=value parameters
//	watch     Refresh periodically and serve Prometheus metrics
//	discover  Find Blue Iris servers on the local network
//	shell     Interactive command shell
//
// Connection settings come from a YAML file (-config) and BLUEIRIS_*
// environment variables. Flags override both. When no password is
// configured and stdin is a terminal, bictl prompts for it.
//
// Examples:
//
//	# Print the camera list
//	bictl cameras -host 192.168.1.10 -port 81 -user admin
//
//	# Pause a camera for five minutes
//	bictl exec -config bi.yaml camconfig camera=drive pause=2
//
//	# Record every exchange for later analysis with bilog
//	bictl refresh -config bi.yaml -capture session.bilog
//
//	# Refresh every minute and expose metrics
//	bictl watch -config bi.yaml -interval 1m -metrics-addr :9108
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nwesterhausen/pyblueiris/pkg/blueiris"
	"github.com/nwesterhausen/pyblueiris/pkg/config"
	bilog "github.com/nwesterhausen/pyblueiris/pkg/log"
	"golang.org/x/term"
)

const usage = `bictl - Blue Iris command line client

Usage:
  bictl <command> [flags] [args]

Commands:
  status    Log in and print server information and status
  cameras   List cameras
  refresh   Run a full refresh and print the outcome of each step
  exec      Execute a single command with key=value parameters
  watch     Refresh periodically and serve Prometheus metrics
  discover  Find Blue Iris servers on the local network
  shell     Interactive command shell

Use "bictl <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd {
	case "status":
		err = runStatus(ctx, args, os.Stdout)
	case "cameras":
		err = runCameras(ctx, args, os.Stdout)
	case "refresh":
		err = runRefresh(ctx, args, os.Stdout)
	case "exec":
		err = runExec(ctx, args, os.Stdout)
	case "watch":
		err = runWatch(ctx, args)
	case "discover":
		err = runDiscover(ctx, args, os.Stdout)
	case "shell":
		err = runShell(ctx, args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// connFlags are the connection flags shared by the commands that talk to
// a server.
type connFlags struct {
	configPath string
	protocol   string
	host       string
	port       int
	user       string
	logLevel   string
	debug      bool
	capture    string
}

func newFlagSet(name, summary, argsUsage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `bictl %s - %s

Usage:
  bictl %s [flags] %s

Flags:
`, name, summary, name, argsUsage)
		fs.PrintDefaults()
	}
	return fs
}

func registerConnFlags(fs *flag.FlagSet) *connFlags {
	f := &connFlags{}
	fs.StringVar(&f.configPath, "config", "", "Configuration file path")
	fs.StringVar(&f.protocol, "protocol", "", "Protocol: http or https")
	fs.StringVar(&f.host, "host", "", "Server host name or address")
	fs.IntVar(&f.port, "port", 0, "Server port")
	fs.StringVar(&f.user, "user", "", "User name")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.BoolVar(&f.debug, "debug", false, "Log every request and response")
	fs.StringVar(&f.capture, "capture", "", "Write a capture file ("+bilog.FileExt+") for bilog")
	return f
}

// loadConfig reads the configuration file, if any, and applies the
// environment and flag overrides.
func (f *connFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	if f.protocol != "" {
		cfg.Server.Protocol = f.protocol
	}
	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if f.user != "" {
		cfg.Server.Username = f.user
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.debug {
		cfg.Log.Debug = true
	}
	if f.capture != "" {
		cfg.Log.CaptureFile = f.capture
	}
	return cfg, cfg.Validate()
}

// app bundles a connected client with the resources it owns.
type app struct {
	cfg     *config.Config
	client  *blueiris.Client
	logger  *slog.Logger
	capture *bilog.FileLogger
}

// newApp builds a client from the flags. observer may be nil.
func newApp(f *connFlags, stderr io.Writer, observer blueiris.Observer) (*app, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Server.Password == "" {
		pw, err := promptPassword(cfg.Server.Username)
		if err != nil {
			return nil, err
		}
		cfg.Server.Password = pw
	}

	logger := cfg.NewLogger(stderr)
	clientCfg, err := cfg.ClientConfig(logger)
	if err != nil {
		return nil, err
	}
	clientCfg.Observer = observer

	a := &app{cfg: cfg, logger: logger}
	if cfg.Log.CaptureFile != "" {
		a.capture, err = bilog.NewFileLogger(cfg.Log.CaptureFile)
		if err != nil {
			return nil, fmt.Errorf("open capture file: %w", err)
		}
		clientCfg.ProtocolLogger = a.capture
	}

	a.client, err = blueiris.New(clientCfg)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}
	return a, nil
}

// close ends the session and flushes the capture file.
func (a *app) close(ctx context.Context) {
	if a.client != nil && a.client.Authenticated() {
		if err := a.client.Logout(ctx); err != nil {
			a.logger.Debug("logout failed", "error", err)
		}
	}
	if a.capture != nil {
		if err := a.capture.Close(); err != nil {
			a.logger.Warn("close capture file", "error", err)
		}
	}
}

// promptPassword reads the password from the terminal without echo.
// It returns an empty password when stdin is not a terminal.
func promptPassword(user string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprintf(os.Stderr, "Password for %s: ", user)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(string(pw), "\r\n"), nil
}
