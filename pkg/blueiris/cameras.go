package blueiris

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/nwesterhausen/pyblueiris/pkg/attributes"
	"github.com/nwesterhausen/pyblueiris/pkg/model"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// CameraStaleAfter is the age after which CameraDetails refreshes the camera
// list.
const CameraStaleAfter = 5 * time.Second

// Command names used by the helpers.
const (
	CmdCamconfig = "camconfig"
	CmdPTZ       = "ptz"
	CmdTrigger   = "trigger"
)

// Cameras returns the cameras known to the server, sorted by short name.
// Groups and the all-cameras entry are excluded. The camera list is
// fetched if it has not been loaded yet.
func (c *Client) Cameras(ctx context.Context) ([]model.Camera, error) {
	attrs, err := c.camlist(ctx, false)
	if err != nil {
		return nil, err
	}

	cams := make([]model.Camera, 0, len(attrs))
	for name, v := range attrs {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		cam, err := model.CameraFromAttributes(m)
		if err != nil {
			return nil, fmt.Errorf("camera %s: %w", name, err)
		}
		if cam.IsGroup() || cam.IsIndex() {
			continue
		}
		cams = append(cams, cam)
	}
	sort.Slice(cams, func(i, j int) bool { return cams[i].ShortName < cams[j].ShortName })
	return cams, nil
}

// CameraDetails returns one camera, refreshing the camera list first when
// it is older than CameraStaleAfter.
func (c *Client) CameraDetails(ctx context.Context, shortName string) (model.Camera, error) {
	attrs, err := c.camlist(ctx, true)
	if err != nil {
		return model.Camera{}, err
	}
	m, ok := attrs[shortName].(map[string]any)
	if !ok {
		return model.Camera{}, fmt.Errorf("%w: %s", ErrUnknownCamera, shortName)
	}
	return model.CameraFromAttributes(m)
}

// IsValidCamera reports whether shortName is in the camera list. The list
// is fetched if it has not been loaded yet.
func (c *Client) IsValidCamera(ctx context.Context, shortName string) (bool, error) {
	attrs, err := c.camlist(ctx, false)
	if err != nil {
		return false, err
	}
	_, ok := attrs[shortName]
	return ok, nil
}

// MJPEGURL returns the MJPEG stream URL of a camera.
func (c *Client) MJPEGURL(shortName string) string {
	return c.baseURL + "/mjpg/" + url.PathEscape(shortName)
}

// camlist returns the stored camera list, fetching it when absent or, if
// checkAge is set, stale.
func (c *Client) camlist(ctx context.Context, checkAge bool) (attributes.Values, error) {
	at, ok := c.store.UpdatedAt(model.FamilyCamlist)
	if ok && (!checkAge || c.now().Sub(at) <= CameraStaleAfter) {
		if attrs, ok := c.store.Family(model.FamilyCamlist); ok {
			return attrs, nil
		}
	}

	res, err := c.Execute(ctx, wire.NewQuery(model.FamilyCamlist))
	if err != nil {
		return nil, err
	}
	return res.Attributes, nil
}

// requireCamera fails with ErrUnknownCamera unless shortName is valid.
func (c *Client) requireCamera(ctx context.Context, shortName string) error {
	ok, err := c.IsValidCamera(ctx, shortName)
	if err != nil {
		return err
	}
	if !ok {
		c.logger.Error("invalid camera", "camera", shortName)
		return fmt.Errorf("%w: %s", ErrUnknownCamera, shortName)
	}
	return nil
}

// camconfig sends a camconfig command for a validated camera.
func (c *Client) camconfig(ctx context.Context, shortName string, key string, value any) error {
	if err := c.requireCamera(ctx, shortName); err != nil {
		return err
	}
	_, err := c.Execute(ctx, wire.NewMutation(CmdCamconfig, wire.P("camera", shortName), wire.P(key, value)))
	return err
}

// ResetCamera restarts a camera.
func (c *Client) ResetCamera(ctx context.Context, shortName string) error {
	return c.camconfig(ctx, shortName, "reset", true)
}

// EnableCamera enables or disables a camera.
func (c *Client) EnableCamera(ctx context.Context, shortName string, enabled bool) error {
	return c.camconfig(ctx, shortName, "enable", enabled)
}

// PauseCamera pauses a camera for seconds, sent as hour, minute and
// 30-second increments. Pauses shorter than model.MinPauseSeconds are
// rounded up.
func (c *Client) PauseCamera(ctx context.Context, shortName string, seconds int) error {
	if err := c.requireCamera(ctx, shortName); err != nil {
		return err
	}
	plan := model.PlanPause(seconds)
	c.logger.Debug("pausing camera", "camera", shortName,
		"hours", plan.Hours, "minutes", plan.Minutes, "half_minutes", plan.ThirtySeconds)

	for _, code := range plan.Codes() {
		cmd := wire.NewMutation(CmdCamconfig, wire.P("camera", shortName), wire.P("pause", code))
		if _, err := c.Execute(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

// PauseIndefinitely pauses a camera until it is unpaused.
func (c *Client) PauseIndefinitely(ctx context.Context, shortName string) error {
	return c.camconfig(ctx, shortName, "pause", model.PauseIndefinitely)
}

// UnpauseCamera cancels a pause.
func (c *Client) UnpauseCamera(ctx context.Context, shortName string) error {
	return c.camconfig(ctx, shortName, "pause", model.PauseCancel)
}

// SetCameraMotion enables or disables motion detection.
func (c *Client) SetCameraMotion(ctx context.Context, shortName string, enabled bool) error {
	return c.camconfig(ctx, shortName, "motion", enabled)
}

// SetCameraSchedule enables or disables the camera's custom schedule.
func (c *Client) SetCameraSchedule(ctx context.Context, shortName string, enabled bool) error {
	return c.camconfig(ctx, shortName, "schedule", enabled)
}

// SetCameraPTZCycle enables or disables the preset cycle.
func (c *Client) SetCameraPTZCycle(ctx context.Context, shortName string, enabled bool) error {
	return c.camconfig(ctx, shortName, "ptzcycle", enabled)
}

// SetCameraPTZEvents enables or disables the PTZ event schedule.
func (c *Client) SetCameraPTZEvents(ctx context.Context, shortName string, enabled bool) error {
	return c.camconfig(ctx, shortName, "ptzevents", enabled)
}

// SendPTZ presses a PTZ button on a camera.
func (c *Client) SendPTZ(ctx context.Context, shortName string, button model.PTZCommand) error {
	if !button.Valid() {
		return fmt.Errorf("invalid PTZ command %d", int(button))
	}
	if err := c.requireCamera(ctx, shortName); err != nil {
		return err
	}
	cmd := wire.NewMutation(CmdPTZ,
		wire.P("camera", shortName),
		wire.P("button", button),
		wire.P("updown", 1),
	)
	_, err := c.Execute(ctx, cmd)
	return err
}

// TriggerCamera triggers a camera. Administrator only.
func (c *Client) TriggerCamera(ctx context.Context, shortName string) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	if err := c.requireCamera(ctx, shortName); err != nil {
		return err
	}
	_, err := c.Execute(ctx, wire.NewMutation(CmdTrigger, wire.P("camera", shortName)))
	return err
}
