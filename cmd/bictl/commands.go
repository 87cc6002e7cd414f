package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nwesterhausen/pyblueiris/pkg/blueiris"
	"github.com/nwesterhausen/pyblueiris/pkg/model"
	"github.com/nwesterhausen/pyblueiris/pkg/refresh"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

func runStatus(ctx context.Context, args []string, w io.Writer) error {
	fs := newFlagSet("status", "Log in and print server information and status", "")
	cf := registerConnFlags(fs)
	_ = fs.Parse(args)

	a, err := newApp(cf, os.Stderr, nil)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	return printStatus(ctx, a.client, w)
}

func printStatus(ctx context.Context, c *blueiris.Client, w io.Writer) error {
	if err := c.Login(ctx); err != nil {
		return err
	}
	res, err := c.Execute(ctx, wire.NewQuery(model.FamilyStatus))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if info, ok := c.ServerInfo(); ok {
		fmt.Fprintf(tw, "System:\t%s\n", info.SystemName)
		fmt.Fprintf(tw, "Version:\t%s\n", info.Version)
		fmt.Fprintf(tw, "User:\t%s (admin: %t)\n", info.User, info.Admin.Bool())
		if len(info.Profiles) > 0 {
			fmt.Fprintf(tw, "Profiles:\t%s\n", strings.Join(info.Profiles, ", "))
		}
	}

	var status model.Status
	if err := model.FromAttributes(res.Attributes, &status); err == nil {
		fmt.Fprintf(tw, "Signal:\t%s\n", status.SignalValue())
		profile := strconv.Itoa(status.Profile.Int())
		if info, ok := c.ServerInfo(); ok {
			if name := info.ProfileName(status.Profile.Int()); name != "" {
				profile += " (" + name + ")"
			}
		}
		fmt.Fprintf(tw, "Profile:\t%s\n", profile)
		fmt.Fprintf(tw, "Warnings:\t%d\n", status.Warnings.Int())
		fmt.Fprintf(tw, "Alerts:\t%d\n", status.Alerts.Int())
	}
	return tw.Flush()
}

func runCameras(ctx context.Context, args []string, w io.Writer) error {
	fs := newFlagSet("cameras", "List cameras", "")
	cf := registerConnFlags(fs)
	urls := fs.Bool("urls", false, "Print the MJPEG stream URL of each camera")
	_ = fs.Parse(args)

	a, err := newApp(cf, os.Stderr, nil)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	return printCameras(ctx, a.client, w, *urls)
}

func printCameras(ctx context.Context, c *blueiris.Client, w io.Writer, urls bool) error {
	cams, err := c.Cameras(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := "CAMERA\tNAME\tONLINE\tENABLED\tPAUSED\tRECORDING\tSIZE"
	if urls {
		header += "\tURL"
	}
	fmt.Fprintln(tw, header)
	for _, cam := range cams {
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%dx%d",
			cam.ShortName, cam.DisplayName,
			yesNo(cam.IsOnline.Bool()), yesNo(cam.IsEnabled.Bool()),
			yesNo(cam.IsPaused.Bool()), yesNo(cam.IsRecording.Bool()),
			cam.Width.Int(), cam.Height.Int())
		if urls {
			line += "\t" + c.MJPEGURL(cam.ShortName)
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func runRefresh(ctx context.Context, args []string, w io.Writer) error {
	fs := newFlagSet("refresh", "Run a full refresh and print the outcome of each step", "")
	cf := registerConnFlags(fs)
	dump := fs.Bool("dump", false, "Print the attribute store as JSON afterwards")
	_ = fs.Parse(args)

	a, err := newApp(cf, os.Stderr, nil)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	report := a.client.UpdateAllInformation(ctx)
	printReport(w, report)
	if *dump {
		if err := dumpJSON(w, a.client.Attributes()); err != nil {
			return err
		}
	}
	if report.AllFailed() {
		return report.Err()
	}
	return nil
}

// printReport writes one line per refresh step.
func printReport(w io.Writer, r *refresh.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, o := range r.Outcomes {
		switch {
		case o.Skipped:
			fmt.Fprintf(tw, "%s\tskipped\t%s\n", o.Step.Name(), o.Reason)
		case o.Err != nil:
			fmt.Fprintf(tw, "%s\tfailed\t%v\n", o.Step.Name(), o.Err)
		default:
			fmt.Fprintf(tw, "%s\tok\t%s\n", o.Step.Name(), o.Duration.Round(time.Millisecond))
		}
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d ok, %d failed, %d skipped in %s\n",
		r.Succeeded(), len(r.Failed()), len(r.Skipped()), r.Duration().Round(time.Millisecond))
}

func runExec(ctx context.Context, args []string, w io.Writer) error {
	fs := newFlagSet("exec", "Execute a single command with key=value parameters", "<cmd> [key=value ...]")
	cf := registerConnFlags(fs)
	mutating := fs.Bool("mutating", false, "Mark the command as state-changing")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("command name required")
	}
	cmd, err := buildCommand(fs.Arg(0), fs.Args()[1:], *mutating)
	if err != nil {
		return err
	}

	a, err := newApp(cf, os.Stderr, nil)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	res, err := a.client.Execute(ctx, cmd)
	if err != nil {
		return err
	}
	return printResult(w, res.Attributes)
}

// buildCommand creates a command from its name and key=value arguments.
func buildCommand(name string, args []string, mutating bool) (wire.Command, error) {
	params, err := parseParams(args)
	if err != nil {
		return wire.Command{}, err
	}
	cmd := wire.NewQuery(name, params...)
	if mutating {
		cmd = wire.NewMutation(name, params...)
	}
	return cmd, cmd.Validate()
}

// parseParams converts key=value arguments into command parameters.
// Values that parse as booleans or integers are sent as such.
func parseParams(args []string) ([]wire.Param, error) {
	params := make([]wire.Param, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (want key=value)", arg)
		}
		params = append(params, wire.P(key, parseValue(value)))
	}
	return params, nil
}

func parseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

// printResult writes normalized attributes sorted by key.
func printResult(w io.Writer, attrs map[string]any) error {
	if len(attrs) == 0 {
		_, err := fmt.Fprintln(w, "ok")
		return err
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, formatValue(attrs[k]))
	}
	return tw.Flush()
}

// formatValue renders scalars directly and everything else as JSON.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool, int, int64, float64:
		return fmt.Sprint(val)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func dumpJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
