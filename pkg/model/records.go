package model

import (
	"encoding/json"
)

// ServerInfo is the data returned by a successful login.
type ServerInfo struct {
	SystemName      string   `json:"system name"`
	Version         string   `json:"version"`
	License         string   `json:"license"`
	Support         string   `json:"support"`
	User            string   `json:"user"`
	Admin           FlexBool `json:"admin"`
	PTZ             FlexBool `json:"ptz"`
	Audio           FlexBool `json:"audio"`
	Clips           FlexBool `json:"clips"`
	DIO             FlexBool `json:"dio"`
	Profiles        []string `json:"profiles"`
	Schedules       []string `json:"schedules"`
	Streams         []any    `json:"streams,omitempty"`
	Sounds          []any    `json:"sounds,omitempty"`
	WWWSounds       []any    `json:"www_sounds,omitempty"`
	StreamTimeLimit any      `json:"streamtimelimit,omitempty"`
	Latitude        any      `json:"latitude,omitempty"`
	Longitude       any      `json:"longitude,omitempty"`
	TimeZone        any      `json:"tzone,omitempty"`

	Extra Extra `json:"-"`
}

// ProfileName returns the name of the profile at index, or "" when the
// index is unknown.
func (s *ServerInfo) ProfileName(index int) string {
	if index < 0 || index >= len(s.Profiles) {
		return ""
	}
	return s.Profiles[index]
}

// ProfileIndex returns the index of the named profile.
func (s *ServerInfo) ProfileIndex(name string) (int, bool) {
	for i, p := range s.Profiles {
		if p == name {
			return i, true
		}
	}
	return 0, false
}

// Status is the data returned by the status command.
type Status struct {
	Signal   FlexInt `json:"signal"`
	Profile  FlexInt `json:"profile"`
	Lock     FlexInt `json:"lock"`
	Schedule any     `json:"schedule,omitempty"`
	Clips    any     `json:"clips,omitempty"`
	Warnings FlexInt `json:"warnings"`
	Alerts   FlexInt `json:"alerts"`

	Extra Extra `json:"-"`
}

// SignalValue returns the signal as a Signal.
func (s *Status) SignalValue() Signal {
	return Signal(s.Signal)
}

// Defaults applied to camera records before decoding.
const (
	DefaultCameraName   = "Camera"
	DefaultCameraColor  = 16777215
	DefaultCameraWidth  = 640
	DefaultCameraHeight = 480
	UndefinedProfile    = -1
)

// Camera is one entry of the camlist command.
type Camera struct {
	ShortName    string   `json:"optionValue"`
	DisplayName  string   `json:"optionDisplay"`
	FPS          float64  `json:"FPS"`
	Color        FlexInt  `json:"color"`
	ClipsCreated FlexInt  `json:"clipsCreated"`
	IsAlerting   FlexBool `json:"isAlerting"`
	IsEnabled    FlexBool `json:"isEnabled"`
	IsOnline     FlexBool `json:"isOnline"`
	IsMotion     FlexBool `json:"isMotion"`
	IsNoSignal   FlexBool `json:"isNoSignal"`
	IsPaused     FlexBool `json:"isPaused"`
	IsTriggered  FlexBool `json:"isTriggered"`
	IsRecording  FlexBool `json:"isRecording"`
	IsYellow     FlexBool `json:"isYellow"`
	Profile      FlexInt  `json:"profile"`
	PTZ          FlexBool `json:"ptz"`
	Audio        FlexBool `json:"audio"`
	Width        FlexInt  `json:"width"`
	Height       FlexInt  `json:"height"`
	NumTriggers  FlexInt  `json:"nTriggers"`
	NumNoSignal  FlexInt  `json:"nNoSignal"`
	NumClips     FlexInt  `json:"nClips"`
	Group        []string `json:"group,omitempty"`

	Extra Extra `json:"-"`
}

// NewCamera returns a camera with the defaults for absent fields.
func NewCamera(shortName string) Camera {
	return Camera{
		ShortName:   shortName,
		DisplayName: DefaultCameraName,
		Color:       DefaultCameraColor,
		Profile:     UndefinedProfile,
		Width:       DefaultCameraWidth,
		Height:      DefaultCameraHeight,
	}
}

// IsGroup reports whether the entry is a camera group rather than a camera.
func (c *Camera) IsGroup() bool {
	return c.Group != nil
}

// IsIndex reports whether the entry is the all-cameras pseudo camera.
func (c *Camera) IsIndex() bool {
	return IsIndexCamera(c.ShortName)
}

// IndexCamera addresses all cameras in list commands.
const IndexCamera = "Index"

// IsIndexCamera reports whether name addresses all cameras.
func IsIndexCamera(name string) bool {
	return name == IndexCamera || name == "@"+IndexCamera
}

// Clip is one entry of the cliplist command.
type Clip struct {
	Camera   string  `json:"camera"`
	Path     string  `json:"path"`
	Date     FlexInt `json:"date"`
	Color    FlexInt `json:"color"`
	Msec     FlexInt `json:"msec"`
	FileSize string  `json:"filesize,omitempty"`
	Flags    FlexInt `json:"flags"`

	Extra Extra `json:"-"`
}

// Alert is one entry of the alertlist command.
type Alert struct {
	Camera string  `json:"camera"`
	Path   string  `json:"path"`
	Clip   string  `json:"clip,omitempty"`
	Date   FlexInt `json:"date"`
	Color  FlexInt `json:"color"`
	Flags  FlexInt `json:"flags"`
	Res    string  `json:"res,omitempty"`

	Extra Extra `json:"-"`
}

// LogEntry is one line of the server log.
type LogEntry struct {
	Date     FlexInt `json:"date"`
	Level    FlexInt `json:"level"`
	Object   string  `json:"obj"`
	Message  string  `json:"msg"`
	Count    FlexInt `json:"count,omitempty"`
	Severity string  `json:"severity"`

	Extra Extra `json:"-"`
}

// SysConfig is the data returned by the sysconfig command.
type SysConfig struct {
	Archive  FlexBool `json:"archive"`
	Schedule FlexBool `json:"schedule"`

	Extra Extra `json:"-"`
}

// ParseServerInfo decodes login data.
func ParseServerInfo(data json.RawMessage) (*ServerInfo, error) {
	var info ServerInfo
	extra, err := decodeRecord(data, &info)
	if err != nil {
		return nil, shapeError(FamilyLogin, err)
	}
	info.Extra = extra
	return &info, nil
}

// ParseStatus decodes status data.
func ParseStatus(data json.RawMessage) (*Status, error) {
	st := Status{Profile: UndefinedProfile}
	extra, err := decodeRecord(data, &st)
	if err != nil {
		return nil, shapeError(FamilyStatus, err)
	}
	st.Extra = extra
	return &st, nil
}

// ParseCameras decodes camlist data.
func ParseCameras(data json.RawMessage) ([]Camera, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, shapeError(FamilyCamlist, err)
	}
	cams := make([]Camera, 0, len(items))
	for _, item := range items {
		cam := NewCamera("")
		extra, err := decodeRecord(item, &cam)
		if err != nil {
			return nil, shapeError(FamilyCamlist, err)
		}
		cam.Extra = extra
		cams = append(cams, cam)
	}
	return cams, nil
}

// ParseClips decodes cliplist data.
func ParseClips(data json.RawMessage) ([]Clip, error) {
	return parseList[Clip](FamilyCliplist, data, func(c *Clip, e Extra) { c.Extra = e })
}

// ParseAlerts decodes alertlist data.
func ParseAlerts(data json.RawMessage) ([]Alert, error) {
	return parseList[Alert](FamilyAlertlist, data, func(a *Alert, e Extra) { a.Extra = e })
}

// ParseLog decodes log data.
func ParseLog(data json.RawMessage) ([]LogEntry, error) {
	entries, err := parseList[LogEntry](FamilyLog, data, func(l *LogEntry, e Extra) { l.Extra = e })
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Severity = LogSeverity(entries[i].Level).String()
	}
	return entries, nil
}

// ParseSysConfig decodes sysconfig data.
func ParseSysConfig(data json.RawMessage) (*SysConfig, error) {
	var sc SysConfig
	extra, err := decodeRecord(data, &sc)
	if err != nil {
		return nil, shapeError(FamilySysconfig, err)
	}
	sc.Extra = extra
	return &sc, nil
}

func parseList[T any](family string, data json.RawMessage, setExtra func(*T, Extra)) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, shapeError(family, err)
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		var rec T
		extra, err := decodeRecord(item, &rec)
		if err != nil {
			return nil, shapeError(family, err)
		}
		setExtra(&rec, extra)
		out = append(out, rec)
	}
	return out, nil
}
