package blueiris

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwesterhausen/pyblueiris/pkg/auth"
	"github.com/nwesterhausen/pyblueiris/pkg/interaction"
	"github.com/nwesterhausen/pyblueiris/pkg/model"
	"github.com/nwesterhausen/pyblueiris/pkg/refresh"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

const (
	testUser     = "pyserv"
	testPassword = "secret-password"
)

var defaultData = map[string]string{
	"status": `{"signal":"1","profile":1,"lock":0,"warnings":2}`,
	"camlist": `[
		{"optionValue":"Index","optionDisplay":"All cameras","group":["drive","porch"]},
		{"optionValue":"porch","optionDisplay":"Porch","isOnline":true},
		{"optionValue":"drive","optionDisplay":"Driveway","isOnline":true,"ptz":true}]`,
	"cliplist":  `[{"camera":"drive","path":"@1.bvr","date":1700000000}]`,
	"alertlist": `[{"camera":"porch","path":"@2.jpg","date":1700000100}]`,
	"log":       `[{"date":1700000000,"level":0,"obj":"drive","msg":"Signal restored"}]`,
	"sysconfig": `{"archive":true,"schedule":false}`,
}

// fakeBlueIris is an in-memory Blue Iris JSON API.
type fakeBlueIris struct {
	t *testing.T

	mu       sync.Mutex
	admin    bool
	sessions int
	valid    map[string]bool
	data     map[string]string
	fail     map[string]string
	requests []map[string]any

	// onCommand sees every request's cmd before it is answered.
	onCommand func(cmd string)
}

func newFakeBlueIris(t *testing.T, admin bool) *fakeBlueIris {
	data := make(map[string]string, len(defaultData))
	for k, v := range defaultData {
		data[k] = v
	}
	return &fakeBlueIris{
		t:     t,
		admin: admin,
		valid: make(map[string]bool),
		data:  data,
		fail:  make(map[string]string),
	}
}

func responseHash(session string) string {
	sum := md5.Sum([]byte(testUser + ":" + session + ":" + testPassword))
	return hex.EncodeToString(sum[:])
}

func (f *fakeBlueIris) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/json" {
		http.NotFound(w, r)
		return
	}
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.t.Errorf("request decode failed: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	cmd, _ := req["cmd"].(string)
	session, _ := req["session"].(string)
	response, _ := req["response"].(string)
	if f.onCommand != nil {
		f.onCommand(cmd)
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case cmd == "login" && session == "":
		f.sessions++
		fmt.Fprintf(w, `{"result":"fail","session":"sess%d"}`, f.sessions)
	case cmd == "login":
		if response != responseHash(session) {
			fmt.Fprint(w, `{"result":"fail","data":{"reason":"Authorization failed"}}`)
			return
		}
		f.valid[session] = true
		fmt.Fprintf(w, `{"result":"success","session":%q,"data":{"system name":"home","version":"5.3.9",`+
			`"admin":%t,"profiles":["Inactive","Home","Away"],"user":%q}}`, session, f.admin, testUser)
	case !f.valid[session] || response != responseHash(session):
		fmt.Fprint(w, `{"result":"fail","data":{"reason":"Invalid session"}}`)
	case f.fail[cmd] != "":
		fmt.Fprintf(w, `{"result":"fail","data":{"reason":%q}}`, f.fail[cmd])
	case f.data[cmd] != "":
		fmt.Fprintf(w, `{"result":"success","session":%q,"data":%s}`, session, f.data[cmd])
	default:
		fmt.Fprintf(w, `{"result":"success","session":%q}`, session)
	}
}

// expireSessions invalidates every session the server has issued.
func (f *fakeBlueIris) expireSessions() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.valid = make(map[string]bool)
}

// commands returns the cmd member of every request received.
func (f *fakeBlueIris) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i], _ = r["cmd"].(string)
	}
	return out
}

// requestsFor returns the requests for cmd.
func (f *fakeBlueIris) requestsFor(cmd string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]any
	for _, r := range f.requests {
		if r["cmd"] == cmd {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeBlueIris) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func newTestClient(t *testing.T, fake *fakeBlueIris, mutate ...func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := Config{
		Protocol:   "http",
		Host:       strings.TrimPrefix(srv.URL, "http://"),
		Username:   testUser,
		Password:   testPassword,
		HTTPClient: srv.Client(),
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Host: "192.168.1.5", Username: "u"}, false},
		{"valid with port", Config{Host: "cams.local", Port: 8081, Username: "u"}, false},
		{"no host", Config{Username: "u"}, true},
		{"no user", Config{Host: "h"}, true},
		{"negative port", Config{Host: "h", Username: "u", Port: -1}, true},
		{"port too large", Config{Host: "h", Username: "u", Port: 70000}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigURLs(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantBase string
	}{
		{"http", Config{Protocol: "http", Host: "192.168.1.5"}, "http://192.168.1.5"},
		{"https with port", Config{Protocol: "https", Host: "cams.example.com", Port: 30125}, "https://cams.example.com:30125"},
		{"invalid protocol falls back", Config{Protocol: "ftp", Host: "blueiris.local"}, "http://blueiris.local"},
		{"empty protocol falls back", Config{Host: "blueiris.local", Port: 81}, "http://blueiris.local:81"},
		{"ipv6", Config{Protocol: "http", Host: "::1", Port: 81}, "http://[::1]:81"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantBase, tt.cfg.BaseURL())
			assert.Equal(t, tt.wantBase+"/json", tt.cfg.Endpoint())
		})
	}
}

func TestNewWarnsOnInvalidProtocol(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	c, err := New(Config{Protocol: "gopher", Host: "h", Username: "u", Logger: logger})
	require.NoError(t, err)
	assert.Equal(t, "http://h/json", c.Endpoint())
	assert.Contains(t, buf.String(), "invalid protocol")
}

func TestFirstCommandLogsIn(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)

	res, err := c.Execute(context.Background(), wire.NewQuery("status"))
	require.NoError(t, err)
	assert.True(t, res.Stored)

	assert.Equal(t, []string{"login", "login", "status"}, fake.commands())

	logins := fake.requestsFor("login")
	assert.Equal(t, map[string]any{"cmd": "login"}, logins[0])
	assert.Equal(t, "sess1", logins[1]["session"])
	assert.Equal(t, responseHash("sess1"), logins[1]["response"])

	status := fake.requestsFor("status")[0]
	assert.Equal(t, "sess1", status["session"])
	assert.Equal(t, responseHash("sess1"), status["response"])

	signal, ok := c.Store().Get("status.signal")
	require.True(t, ok)
	assert.Equal(t, float64(1), signal)

	info, ok := c.ServerInfo()
	require.True(t, ok)
	assert.Equal(t, "home", info.SystemName)
	assert.True(t, c.IsAdmin())
	assert.True(t, c.Authenticated())
}

func TestSessionReusedAcrossCommands(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.Execute(ctx, wire.NewQuery("status"))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"login", "login", "status", "status", "status"}, fake.commands())
}

func TestExpiredSessionRenewedOnce(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx))
	fake.expireSessions()
	fake.reset()

	_, err := c.Execute(ctx, wire.NewQuery("camlist"))
	require.NoError(t, err)
	assert.Equal(t, []string{"camlist", "login", "login", "camlist"}, fake.commands())

	retry := fake.requestsFor("camlist")[1]
	assert.Equal(t, "sess2", retry["session"])
}

func TestCancelledFirstCommandLeavesClientUntouched(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake.onCommand = func(cmd string) {
		if cmd == "status" {
			cancel()
		}
	}

	_, err := c.Execute(ctx, wire.NewQuery("status"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, c.Authenticated())
	assert.Empty(t, c.Attributes())
	_, ok := c.ServerInfo()
	assert.False(t, ok)

	// The next call logs in again and commits both families.
	fake.onCommand = nil
	_, err = c.Execute(context.Background(), wire.NewQuery("status"))
	require.NoError(t, err)
	assert.True(t, c.Authenticated())
	assert.Equal(t, []string{"login", "status"}, c.Store().Families())
	assert.Len(t, fake.requestsFor("login"), 4)
}

func TestRejectedCredentials(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake, func(cfg *Config) { cfg.Password = "wrong" })

	_, err := c.Execute(context.Background(), wire.NewQuery("status"))
	require.Error(t, err)
	assert.True(t, auth.IsRejected(err), "got %v", err)
	assert.NotContains(t, fake.commands(), "status")
	assert.False(t, c.Authenticated())
}

func TestCommandFailureLeavesStore(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)
	ctx := context.Background()

	_, err := c.Execute(ctx, wire.NewQuery("status"))
	require.NoError(t, err)
	before := c.Attributes()

	fake.fail["status"] = "Server busy"
	_, err = c.Execute(ctx, wire.NewQuery("status"))

	var cmdErr *interaction.CommandError
	require.True(t, errors.As(err, &cmdErr), "got %v", err)
	assert.Equal(t, "Server busy", cmdErr.Reason)
	assert.Equal(t, before, c.Attributes())
}

func TestUpdateAllInformation(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)

	report := c.UpdateAllInformation(context.Background())
	require.True(t, report.OK(), "refresh failed: %v", report.Err())

	assert.Equal(t, []string{"login", "login", "status", "camlist", "cliplist", "alertlist", "log", "sysconfig"}, fake.commands())
	for _, family := range []string{"login", "status", "camlist", "cliplist", "alertlist", "log", "sysconfig"} {
		_, ok := c.Store().Family(family)
		assert.True(t, ok, "family %s missing", family)
	}

	clips := fake.requestsFor("cliplist")[0]
	assert.Equal(t, "Index", clips["camera"])
	alerts := fake.requestsFor("alertlist")[0]
	assert.Equal(t, "Index", alerts["camera"])
	assert.Equal(t, false, alerts["reset"])

	archive, ok := c.Store().Get("sysconfig.archive")
	require.True(t, ok)
	assert.Equal(t, true, archive)
}

func TestUpdateAllInformationSkipsSysconfigForUsers(t *testing.T) {
	fake := newFakeBlueIris(t, false)
	c := newTestClient(t, fake)

	report := c.UpdateAllInformation(context.Background())
	assert.True(t, report.OK(), "refresh failed: %v", report.Err())
	require.Len(t, report.Skipped(), 1)
	assert.Equal(t, "sysconfig", report.Skipped()[0].Step.Command.Name)
	assert.NotContains(t, fake.commands(), "sysconfig")
}

func TestUpdateAllInformationReportsPartialFailure(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	fake.fail["log"] = "Log unavailable"
	c := newTestClient(t, fake)

	report := c.UpdateAllInformation(context.Background())
	require.False(t, report.OK())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "log", failed[0].Step.Command.Name)
	assert.Contains(t, report.Err().Error(), "Log unavailable")

	// Later steps still ran.
	_, ok := c.Store().Family("sysconfig")
	assert.True(t, ok)
}

func TestConfiguredRefreshSteps(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake, func(cfg *Config) {
		cfg.RefreshSteps = []refresh.Step{{Command: wire.NewQuery("camlist")}}
	})

	report := c.UpdateAllInformation(context.Background())
	require.True(t, report.OK())
	assert.Equal(t, []string{"login", "login", "camlist"}, fake.commands())
	assert.Len(t, c.RefreshSteps(), 1)
}

func TestCameras(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)
	ctx := context.Background()

	cams, err := c.Cameras(ctx)
	require.NoError(t, err)
	require.Len(t, cams, 2)
	assert.Equal(t, "drive", cams[0].ShortName)
	assert.Equal(t, "Driveway", cams[0].DisplayName)
	assert.True(t, cams[0].PTZ.Bool())
	assert.Equal(t, "porch", cams[1].ShortName)

	// The stored list is reused.
	_, err = c.Cameras(ctx)
	require.NoError(t, err)
	assert.Len(t, fake.requestsFor("camlist"), 1)
}

func TestCameraDetailsRefreshesStaleList(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	cam, err := c.CameraDetails(ctx, "porch")
	require.NoError(t, err)
	assert.Equal(t, "Porch", cam.DisplayName)
	assert.Len(t, fake.requestsFor("camlist"), 1)

	_, err = c.CameraDetails(ctx, "porch")
	require.NoError(t, err)
	assert.Len(t, fake.requestsFor("camlist"), 1)

	now = now.Add(CameraStaleAfter + time.Second)
	_, err = c.CameraDetails(ctx, "drive")
	require.NoError(t, err)
	assert.Len(t, fake.requestsFor("camlist"), 2)

	_, err = c.CameraDetails(ctx, "attic")
	assert.True(t, errors.Is(err, ErrUnknownCamera), "got %v", err)
}

func TestIsValidCamera(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)
	ctx := context.Background()

	ok, err := c.IsValidCamera(ctx, "drive")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsValidCamera(ctx, "attic")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCameraHelpersSendParams(t *testing.T) {
	tests := []struct {
		name    string
		call    func(c *Client, ctx context.Context) error
		wantCmd string
		want    map[string]any
	}{
		{"reset", func(c *Client, ctx context.Context) error { return c.ResetCamera(ctx, "drive") },
			"camconfig", map[string]any{"camera": "drive", "reset": true}},
		{"disable", func(c *Client, ctx context.Context) error { return c.EnableCamera(ctx, "drive", false) },
			"camconfig", map[string]any{"camera": "drive", "enable": false}},
		{"pause indefinitely", func(c *Client, ctx context.Context) error { return c.PauseIndefinitely(ctx, "drive") },
			"camconfig", map[string]any{"camera": "drive", "pause": float64(-1)}},
		{"unpause", func(c *Client, ctx context.Context) error { return c.UnpauseCamera(ctx, "drive") },
			"camconfig", map[string]any{"camera": "drive", "pause": float64(0)}},
		{"motion", func(c *Client, ctx context.Context) error { return c.SetCameraMotion(ctx, "drive", true) },
			"camconfig", map[string]any{"camera": "drive", "motion": true}},
		{"schedule", func(c *Client, ctx context.Context) error { return c.SetCameraSchedule(ctx, "drive", false) },
			"camconfig", map[string]any{"camera": "drive", "schedule": false}},
		{"ptz cycle", func(c *Client, ctx context.Context) error { return c.SetCameraPTZCycle(ctx, "drive", true) },
			"camconfig", map[string]any{"camera": "drive", "ptzcycle": true}},
		{"ptz events", func(c *Client, ctx context.Context) error { return c.SetCameraPTZEvents(ctx, "drive", true) },
			"camconfig", map[string]any{"camera": "drive", "ptzevents": true}},
		{"ptz zoom", func(c *Client, ctx context.Context) error { return c.SendPTZ(ctx, "drive", model.PTZZoomIn) },
			"ptz", map[string]any{"camera": "drive", "button": float64(5), "updown": float64(1)}},
		{"trigger", func(c *Client, ctx context.Context) error { return c.TriggerCamera(ctx, "porch") },
			"trigger", map[string]any{"camera": "porch"}},
		{"signal", func(c *Client, ctx context.Context) error { return c.SetSignal(ctx, model.SignalGreen) },
			"status", map[string]any{"signal": float64(1)}},
		{"profile by name", func(c *Client, ctx context.Context) error { return c.SetProfileByName(ctx, "Away") },
			"status", map[string]any{"profile": float64(2)}},
		{"archive", func(c *Client, ctx context.Context) error { return c.SetArchive(ctx, true) },
			"sysconfig", map[string]any{"archive": true}},
		{"global schedule", func(c *Client, ctx context.Context) error { return c.SetGlobalSchedule(ctx, false) },
			"sysconfig", map[string]any{"schedule": false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeBlueIris(t, true)
			c := newTestClient(t, fake)

			require.NoError(t, tt.call(c, context.Background()))

			reqs := fake.requestsFor(tt.wantCmd)
			require.NotEmpty(t, reqs)
			got := reqs[len(reqs)-1]
			for k, v := range tt.want {
				assert.Equal(t, v, got[k], "param %s", k)
			}
		})
	}
}

func TestPauseCameraSendsIncrements(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)

	// 1 hour, 1 minute and 30 seconds.
	require.NoError(t, c.PauseCamera(context.Background(), "drive", 3690))

	var codes []any
	for _, r := range fake.requestsFor("camconfig") {
		codes = append(codes, r["pause"])
	}
	assert.Equal(t, []any{float64(3), float64(2), float64(1)}, codes)
}

func TestPauseCameraMinimum(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)

	require.NoError(t, c.PauseCamera(context.Background(), "drive", 5))
	reqs := fake.requestsFor("camconfig")
	require.Len(t, reqs, 1)
	assert.Equal(t, float64(model.PauseAdd30Seconds), reqs[0]["pause"])
}

func TestHelpersRejectUnknownCamera(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)

	err := c.ResetCamera(context.Background(), "attic")
	assert.True(t, errors.Is(err, ErrUnknownCamera), "got %v", err)
	assert.Empty(t, fake.requestsFor("camconfig"))
}

func TestAdminHelpersRequireAdmin(t *testing.T) {
	fake := newFakeBlueIris(t, false)
	c := newTestClient(t, fake)
	ctx := context.Background()

	assert.True(t, errors.Is(c.TriggerCamera(ctx, "drive"), ErrNotAdmin))
	assert.True(t, errors.Is(c.SetArchive(ctx, true), ErrNotAdmin))
	assert.True(t, errors.Is(c.SetGlobalSchedule(ctx, true), ErrNotAdmin))
	assert.Empty(t, fake.requestsFor("trigger"))
	assert.Empty(t, fake.requestsFor("sysconfig"))
}

func TestInvalidArguments(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)
	ctx := context.Background()

	assert.Error(t, c.SendPTZ(ctx, "drive", model.PTZCommand(77)))
	assert.Error(t, c.SetSignal(ctx, model.Signal(9)))
	assert.True(t, errors.Is(c.SetProfileByName(ctx, "Vacation"), ErrUnknownProfile))
	assert.Empty(t, fake.requestsFor("ptz"))
	assert.Empty(t, fake.requestsFor("status"))
}

func TestLogout(t *testing.T) {
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx))
	require.NoError(t, c.Logout(ctx))
	assert.False(t, c.Authenticated())
	assert.Len(t, fake.requestsFor("logout"), 1)
}

func TestMJPEGURL(t *testing.T) {
	c, err := New(Config{Protocol: "https", Host: "cams.local", Port: 8081, Username: "u"})
	require.NoError(t, err)
	assert.Equal(t, "https://cams.local:8081/mjpg/drive", c.MJPEGURL("drive"))
	assert.Equal(t, "https://cams.local:8081/mjpg/back%20yard", c.MJPEGURL("back yard"))
}

func TestDebugLogsProtocolEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake, func(cfg *Config) {
		cfg.Debug = true
		cfg.Logger = logger
	})

	_, err := c.Execute(context.Background(), wire.NewQuery("status"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "cmd=status")
	assert.NotContains(t, buf.String(), testPassword)
}

// recordingObserver counts notifications.
type recordingObserver struct {
	mu       sync.Mutex
	commands []string
	logins   int
}

func (r *recordingObserver) CommandCompleted(cmd string, _ error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
}

func (r *recordingObserver) SessionRenewed(string) {}

func (r *recordingObserver) LoginCompleted(error, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins++
}

func TestObserverNotified(t *testing.T) {
	obs := &recordingObserver{}
	fake := newFakeBlueIris(t, true)
	c := newTestClient(t, fake, func(cfg *Config) { cfg.Observer = obs })

	_, err := c.Execute(context.Background(), wire.NewQuery("status"))
	require.NoError(t, err)
	assert.Equal(t, []string{"status"}, obs.commands)
	assert.Equal(t, 1, obs.logins)
}
