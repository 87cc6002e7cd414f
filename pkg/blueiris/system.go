package blueiris

import (
	"context"
	"fmt"

	"github.com/nwesterhausen/pyblueiris/pkg/model"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// SetSignal sets the traffic signal state.
func (c *Client) SetSignal(ctx context.Context, signal model.Signal) error {
	if !signal.Valid() {
		return fmt.Errorf("invalid signal %d", int(signal))
	}
	_, err := c.Execute(ctx, wire.NewMutation(model.FamilyStatus, wire.P("signal", signal)))
	return err
}

// SetProfile activates the profile at index.
func (c *Client) SetProfile(ctx context.Context, index int) error {
	_, err := c.Execute(ctx, wire.NewMutation(model.FamilyStatus, wire.P("profile", index)))
	return err
}

// SetProfileByName activates the named profile. The profile names come from
// the login, which is performed first if needed.
func (c *Client) SetProfileByName(ctx context.Context, name string) error {
	info, err := c.serverInfo(ctx)
	if err != nil {
		return err
	}
	index, ok := info.ProfileIndex(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return c.SetProfile(ctx, index)
}

// SetArchive enables or disables web archiving. Administrator only.
func (c *Client) SetArchive(ctx context.Context, enabled bool) error {
	return c.sysconfig(ctx, "archive", enabled)
}

// SetGlobalSchedule enables or disables the global schedule. Administrator
// only.
func (c *Client) SetGlobalSchedule(ctx context.Context, enabled bool) error {
	return c.sysconfig(ctx, "schedule", enabled)
}

func (c *Client) sysconfig(ctx context.Context, key string, value any) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	_, err := c.Execute(ctx, wire.NewMutation(model.FamilySysconfig, wire.P(key, value)))
	return err
}

// serverInfo logs in if needed and returns the login information.
func (c *Client) serverInfo(ctx context.Context) (*model.ServerInfo, error) {
	if err := c.Login(ctx); err != nil {
		return nil, err
	}
	info, ok := c.ServerInfo()
	if !ok {
		return nil, ErrNoServerInfo
	}
	return info, nil
}

func (c *Client) requireAdmin(ctx context.Context) error {
	info, err := c.serverInfo(ctx)
	if err != nil {
		return err
	}
	if !info.Admin.Bool() {
		c.logger.Error("command requires administrator", "user", c.auth.Username())
		return ErrNotAdmin
	}
	return nil
}
