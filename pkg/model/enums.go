package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Signal is the server's traffic-light status.
type Signal int

const (
	SignalRed    Signal = 0
	SignalGreen  Signal = 1
	SignalYellow Signal = 2
)

// String returns the signal name.
func (s Signal) String() string {
	switch s {
	case SignalRed:
		return "RED"
	case SignalGreen:
		return "GREEN"
	case SignalYellow:
		return "YELLOW"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is a known signal.
func (s Signal) Valid() bool {
	return s >= SignalRed && s <= SignalYellow
}

// ParseSignal accepts a name ("green") or a number ("1").
func ParseSignal(v string) (Signal, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		if s := Signal(n); s.Valid() {
			return s, nil
		}
		return 0, fmt.Errorf("unknown signal %d", n)
	}
	switch strings.ToUpper(v) {
	case "RED":
		return SignalRed, nil
	case "GREEN":
		return SignalGreen, nil
	case "YELLOW":
		return SignalYellow, nil
	}
	return 0, fmt.Errorf("unknown signal %q", v)
}

// PTZCommand is a pan/tilt/zoom button code.
type PTZCommand int

const (
	PTZPanLeft  PTZCommand = 0
	PTZPanRight PTZCommand = 1
	PTZTiltUp   PTZCommand = 2
	PTZTiltDown PTZCommand = 3
	PTZHome     PTZCommand = 4
	PTZCenter   PTZCommand = PTZHome
	PTZZoomIn   PTZCommand = 5
	PTZZoomOut  PTZCommand = 6

	PTZPower50      PTZCommand = 8
	PTZPower60      PTZCommand = 9
	PTZPowerOutdoor PTZCommand = 10

	PTZIROn  PTZCommand = 34
	PTZIROff PTZCommand = 35
)

// Ranges of the parameterized PTZ codes.
const (
	ptzBrightnessBase = 11
	ptzBrightnessMax  = 15
	ptzContrastBase   = 27
	ptzContrastMax    = 6
	ptzPresetBase     = 100
	ptzPresetMax      = 20
)

var ptzNames = map[PTZCommand]string{
	PTZPanLeft:      "PAN_LEFT",
	PTZPanRight:     "PAN_RIGHT",
	PTZTiltUp:       "TILT_UP",
	PTZTiltDown:     "TILT_DOWN",
	PTZHome:         "HOME",
	PTZZoomIn:       "ZOOM_IN",
	PTZZoomOut:      "ZOOM_OUT",
	PTZPower50:      "POWER_50",
	PTZPower60:      "POWER_60",
	PTZPowerOutdoor: "POWER_OUTDOOR",
	PTZIROn:         "IR_ON",
	PTZIROff:        "IR_OFF",
}

// PTZBrightness returns the code for brightness level 0-15.
func PTZBrightness(level int) (PTZCommand, error) {
	if level < 0 || level > ptzBrightnessMax {
		return 0, fmt.Errorf("brightness %d out of range 0-%d", level, ptzBrightnessMax)
	}
	return PTZCommand(ptzBrightnessBase + level), nil
}

// PTZContrast returns the code for contrast level 0-6.
func PTZContrast(level int) (PTZCommand, error) {
	if level < 0 || level > ptzContrastMax {
		return 0, fmt.Errorf("contrast %d out of range 0-%d", level, ptzContrastMax)
	}
	return PTZCommand(ptzContrastBase + level), nil
}

// PTZPreset returns the code for preset 1-20.
func PTZPreset(n int) (PTZCommand, error) {
	if n < 1 || n > ptzPresetMax {
		return 0, fmt.Errorf("preset %d out of range 1-%d", n, ptzPresetMax)
	}
	return PTZCommand(ptzPresetBase + n), nil
}

// Valid reports whether c is a known PTZ code.
func (c PTZCommand) Valid() bool {
	_, ok := c.name()
	return ok
}

// String returns the code name, e.g. "ZOOM_IN" or "PRESET_3".
func (c PTZCommand) String() string {
	if n, ok := c.name(); ok {
		return n
	}
	return fmt.Sprintf("PTZ(%d)", int(c))
}

func (c PTZCommand) name() (string, bool) {
	if n, ok := ptzNames[c]; ok {
		return n, true
	}
	switch v := int(c); {
	case v >= ptzBrightnessBase && v <= ptzBrightnessBase+ptzBrightnessMax:
		return fmt.Sprintf("BRIGHTNESS_%d", v-ptzBrightnessBase), true
	case v >= ptzContrastBase && v <= ptzContrastBase+ptzContrastMax:
		return fmt.Sprintf("CONTRAST_%d", v-ptzContrastBase), true
	case v > ptzPresetBase && v <= ptzPresetBase+ptzPresetMax:
		return fmt.Sprintf("PRESET_%d", v-ptzPresetBase), true
	}
	return "", false
}

// ParsePTZCommand accepts a name ("zoom_in", "preset_3", "center") or a
// numeric code.
func ParsePTZCommand(v string) (PTZCommand, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if n, err := strconv.Atoi(v); err == nil {
		if c := PTZCommand(n); c.Valid() {
			return c, nil
		}
		return 0, fmt.Errorf("unknown PTZ code %d", n)
	}
	if v == "CENTER" {
		return PTZCenter, nil
	}
	for c, name := range ptzNames {
		if name == v {
			return c, nil
		}
	}
	for prefix, build := range map[string]func(int) (PTZCommand, error){
		"BRIGHTNESS_": PTZBrightness,
		"CONTRAST_":   PTZContrast,
		"PRESET_":     PTZPreset,
	} {
		if rest, ok := strings.CutPrefix(v, prefix); ok {
			n, err := strconv.Atoi(rest)
			if err != nil {
				return 0, fmt.Errorf("invalid PTZ command %q", v)
			}
			return build(n)
		}
	}
	return 0, fmt.Errorf("unknown PTZ command %q", v)
}

// PauseCode is the camconfig pause parameter.
type PauseCode int

const (
	PauseIndefinitely PauseCode = -1
	PauseCancel       PauseCode = 0
	PauseAdd30Seconds PauseCode = 1
	PauseAdd1Minute   PauseCode = 2
	PauseAdd1Hour     PauseCode = 3
)

// String returns the pause code name.
func (p PauseCode) String() string {
	switch p {
	case PauseIndefinitely:
		return "INDEFINITELY"
	case PauseCancel:
		return "CANCEL"
	case PauseAdd30Seconds:
		return "ADD_30_SEC"
	case PauseAdd1Minute:
		return "ADD_1_MIN"
	case PauseAdd1Hour:
		return "ADD_1_HOUR"
	default:
		return "UNKNOWN"
	}
}

// PausePlan is a pause duration split into the increments the server
// accepts.
type PausePlan struct {
	Hours         int
	Minutes       int
	ThirtySeconds int
}

// MinPauseSeconds is the shortest pause the server supports.
const MinPauseSeconds = 30

// PlanPause splits seconds into hour, minute and 30-second increments.
// Durations shorter than MinPauseSeconds are rounded up to it; the
// remainder below 30 seconds is dropped.
func PlanPause(seconds int) PausePlan {
	if seconds < MinPauseSeconds {
		seconds = MinPauseSeconds
	}
	hours := seconds / 3600
	minutes := seconds/60 - 60*hours
	halves := seconds/30 - 2*minutes - 120*hours
	return PausePlan{Hours: hours, Minutes: minutes, ThirtySeconds: halves}
}

// Codes returns the pause codes to send, largest increments first.
func (p PausePlan) Codes() []PauseCode {
	codes := make([]PauseCode, 0, p.Hours+p.Minutes+p.ThirtySeconds)
	for i := 0; i < p.Hours; i++ {
		codes = append(codes, PauseAdd1Hour)
	}
	for i := 0; i < p.Minutes; i++ {
		codes = append(codes, PauseAdd1Minute)
	}
	for i := 0; i < p.ThirtySeconds; i++ {
		codes = append(codes, PauseAdd30Seconds)
	}
	return codes
}

// LogSeverity is the level of a server log entry.
type LogSeverity int

const (
	SeverityInfo    LogSeverity = 0
	SeverityWarning LogSeverity = 1
	SeverityError   LogSeverity = 2
)

// String returns the severity name.
func (s LogSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
