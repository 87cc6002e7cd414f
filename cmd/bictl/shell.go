package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/nwesterhausen/pyblueiris/pkg/blueiris"
	"github.com/nwesterhausen/pyblueiris/pkg/model"
)

func runShell(ctx context.Context, args []string) error {
	fs := newFlagSet("shell", "Interactive command shell", "")
	cf := registerConnFlags(fs)
	_ = fs.Parse(args)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bi> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	// Log through readline so output does not garble the prompt.
	a, err := newApp(cf, rl.Stderr(), nil)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	sh := &shell{client: a.client, out: rl.Stdout()}
	sh.printHelp()

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return nil
		}
		if sh.handle(ctx, line) {
			return nil
		}
	}
}

// shell executes interactive commands against a client.
type shell struct {
	client *blueiris.Client
	out    io.Writer
}

// handle runs one input line. It returns true when the user asked to quit.
func (s *shell) handle(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		s.printHelp()
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true
	case "login":
		err = s.client.Login(ctx)
	case "logout":
		err = s.client.Logout(ctx)
	case "status":
		err = printStatus(ctx, s.client, s.out)
	case "cameras", "ls":
		err = printCameras(ctx, s.client, s.out, false)
	case "camera", "cam":
		err = s.cmdCamera(ctx, args)
	case "refresh":
		printReport(s.out, s.client.UpdateAllInformation(ctx))
	case "families":
		s.cmdFamilies()
	case "get":
		err = s.cmdGet(args)
	case "exec", "mutate":
		err = s.cmdExec(ctx, args, cmd == "mutate")
	case "pause":
		err = s.cmdPause(ctx, args)
	case "unpause":
		err = s.withCamera(args, func(cam string) error { return s.client.UnpauseCamera(ctx, cam) })
	case "enable", "disable":
		err = s.withCamera(args, func(cam string) error { return s.client.EnableCamera(ctx, cam, cmd == "enable") })
	case "reset":
		err = s.withCamera(args, func(cam string) error { return s.client.ResetCamera(ctx, cam) })
	case "trigger":
		err = s.withCamera(args, func(cam string) error { return s.client.TriggerCamera(ctx, cam) })
	case "motion", "schedule", "ptzcycle", "ptzevents":
		err = s.cmdToggle(ctx, cmd, args)
	case "ptz":
		err = s.cmdPTZ(ctx, args)
	case "signal":
		err = s.cmdSignal(ctx, args)
	case "profile":
		err = s.cmdProfile(ctx, args)
	case "archive":
		err = s.cmdArchive(ctx, args)
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
		return false
	}

	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	return false
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, `
Blue Iris Shell Commands:
  Session:
    login / logout                 - Open or end the session
    status                         - Show server information and status

  Data:
    refresh                        - Refresh every attribute family
    families                       - List stored families
    get <family>[.<field>]         - Show stored attributes
    exec <cmd> [key=value ...]     - Run a query command
    mutate <cmd> [key=value ...]   - Run a state-changing command

  Cameras:
    cameras                        - List cameras
    camera <cam>                   - Show camera details
    pause <cam> <seconds>|forever  - Pause a camera
    unpause <cam>                  - Resume a paused camera
    enable|disable <cam>           - Enable or disable a camera
    reset <cam>                    - Reset a camera
    motion|schedule|ptzcycle|ptzevents <cam> on|off
    ptz <cam> <button>             - Send a PTZ button (e.g. zoom_in, preset_2)
    trigger <cam>                  - Trigger a camera (admin)

  System:
    signal red|green|yellow        - Set the traffic signal
    profile <name|index>           - Switch the active profile
    archive on|off                 - Toggle archiving (admin)

  General:
    help                           - Show this help
    quit                           - Exit`)
}

func (s *shell) withCamera(args []string, fn func(cam string) error) error {
	if len(args) < 1 {
		return fmt.Errorf("camera name required")
	}
	if err := fn(args[0]); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "ok")
	return nil
}

func (s *shell) cmdCamera(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: camera <cam>")
	}
	cam, err := s.client.CameraDetails(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s (%s)\n", cam.DisplayName, cam.ShortName)
	fmt.Fprintf(s.out, "  online=%t enabled=%t paused=%t recording=%t motion=%t\n",
		cam.IsOnline.Bool(), cam.IsEnabled.Bool(), cam.IsPaused.Bool(), cam.IsRecording.Bool(), cam.IsMotion.Bool())
	fmt.Fprintf(s.out, "  size=%dx%d fps=%.1f ptz=%t\n", cam.Width.Int(), cam.Height.Int(), cam.FPS, cam.PTZ.Bool())
	fmt.Fprintf(s.out, "  stream=%s\n", s.client.MJPEGURL(cam.ShortName))
	return nil
}

func (s *shell) cmdFamilies() {
	store := s.client.Store()
	for _, name := range store.Families() {
		values, _ := store.Family(name)
		at, _ := store.UpdatedAt(name)
		fmt.Fprintf(s.out, "%-12s %4d fields  updated %s\n", name, len(values), at.Format("15:04:05"))
	}
}

func (s *shell) cmdGet(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: get <family>[.<field>]")
	}
	v, ok := s.client.Store().Get(args[0])
	if !ok {
		return fmt.Errorf("no attribute %q", args[0])
	}
	if values, ok := v.(map[string]any); ok {
		return printResult(s.out, values)
	}
	fmt.Fprintln(s.out, formatValue(v))
	return nil
}

func (s *shell) cmdExec(ctx context.Context, args []string, mutating bool) error {
	if len(args) < 1 {
		return fmt.Errorf("command name required")
	}
	cmd, err := buildCommand(args[0], args[1:], mutating)
	if err != nil {
		return err
	}
	res, err := s.client.Execute(ctx, cmd)
	if err != nil {
		return err
	}
	return printResult(s.out, res.Attributes)
}

func (s *shell) cmdPause(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: pause <cam> <seconds>|forever")
	}
	if args[1] == "forever" {
		return s.withCamera(args, func(cam string) error { return s.client.PauseIndefinitely(ctx, cam) })
	}
	seconds, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid seconds %q", args[1])
	}
	return s.withCamera(args, func(cam string) error { return s.client.PauseCamera(ctx, cam, seconds) })
}

func (s *shell) cmdToggle(ctx context.Context, what string, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s <cam> on|off", what)
	}
	on, err := parseOnOff(args[1])
	if err != nil {
		return err
	}
	setters := map[string]func(context.Context, string, bool) error{
		"motion":    s.client.SetCameraMotion,
		"schedule":  s.client.SetCameraSchedule,
		"ptzcycle":  s.client.SetCameraPTZCycle,
		"ptzevents": s.client.SetCameraPTZEvents,
	}
	set := setters[what]
	return s.withCamera(args, func(cam string) error { return set(ctx, cam, on) })
}

func (s *shell) cmdPTZ(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: ptz <cam> <button>")
	}
	button, err := model.ParsePTZCommand(args[1])
	if err != nil {
		return err
	}
	return s.withCamera(args, func(cam string) error { return s.client.SendPTZ(ctx, cam, button) })
}

func (s *shell) cmdSignal(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: signal red|green|yellow")
	}
	sig, err := model.ParseSignal(args[0])
	if err != nil {
		return err
	}
	if err := s.client.SetSignal(ctx, sig); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "ok")
	return nil
}

func (s *shell) cmdProfile(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: profile <name|index>")
	}
	arg := strings.Join(args, " ")
	var err error
	if n, convErr := strconv.Atoi(arg); convErr == nil {
		err = s.client.SetProfile(ctx, n)
	} else {
		err = s.client.SetProfileByName(ctx, arg)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "ok")
	return nil
}

func (s *shell) cmdArchive(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: archive on|off")
	}
	on, err := parseOnOff(args[0])
	if err != nil {
		return err
	}
	if err := s.client.SetArchive(ctx, on); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "ok")
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
