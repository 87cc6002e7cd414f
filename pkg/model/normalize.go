package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Command families with a dedicated parser.
const (
	FamilyLogin     = "login"
	FamilyStatus    = "status"
	FamilyCamlist   = "camlist"
	FamilyCliplist  = "cliplist"
	FamilyAlertlist = "alertlist"
	FamilyLog       = "log"
	FamilySysconfig = "sysconfig"
)

// Attribute keys used by the generic and list shapes.
const (
	KeyItems   = "items"
	KeyValue   = "value"
	KeyEntries = "entries"
)

// ErrUnexpectedShape is returned when a payload does not have the shape its
// family requires.
var ErrUnexpectedShape = errors.New("unexpected payload shape")

func shapeError(family string, err error) error {
	return fmt.Errorf("%s: %w: %v", family, ErrUnexpectedShape, err)
}

// Parser turns a raw payload into the attribute values of one family.
type Parser func(data json.RawMessage) (map[string]any, error)

// Normalizer maps command families to parsers.
// It is safe for concurrent use.
type Normalizer struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}

// NewNormalizer returns a Normalizer with the built-in parsers registered.
func NewNormalizer() *Normalizer {
	n := &Normalizer{parsers: make(map[string]Parser)}
	n.Register(FamilyLogin, normalizeServerInfo)
	n.Register(FamilyStatus, normalizeStatus)
	n.Register(FamilyCamlist, normalizeCameras)
	n.Register(FamilyCliplist, normalizeClips)
	n.Register(FamilyAlertlist, normalizeAlerts)
	n.Register(FamilyLog, normalizeLog)
	n.Register(FamilySysconfig, normalizeSysConfig)
	return n
}

// Register installs or replaces the parser for family.
func (n *Normalizer) Register(family string, p Parser) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.parsers[family] = p
}

// Normalize converts data into the attribute values of family.
// Absent data normalizes to an empty set.
func (n *Normalizer) Normalize(family string, data json.RawMessage) (map[string]any, error) {
	if isAbsent(data) {
		return map[string]any{}, nil
	}

	n.mu.RLock()
	p, ok := n.parsers[family]
	n.mu.RUnlock()
	if !ok {
		p = Generic
	}
	return p(data)
}

var defaultNormalizer = NewNormalizer()

// Normalize converts data using the built-in parsers.
func Normalize(family string, data json.RawMessage) (map[string]any, error) {
	return defaultNormalizer.Normalize(family, data)
}

// Generic stores an object as is, an array under "items" and a scalar under
// "value".
func Generic(data json.RawMessage) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		return map[string]any{KeyItems: t}, nil
	default:
		return map[string]any{KeyValue: t}, nil
	}
}

func isAbsent(data json.RawMessage) bool {
	d := bytes.TrimSpace(data)
	return len(d) == 0 || bytes.Equal(d, []byte("null"))
}

func normalizeServerInfo(data json.RawMessage) (map[string]any, error) {
	info, err := ParseServerInfo(data)
	if err != nil {
		return nil, err
	}
	return recordAttributes(info, info.Extra)
}

func normalizeStatus(data json.RawMessage) (map[string]any, error) {
	st, err := ParseStatus(data)
	if err != nil {
		return nil, err
	}
	attrs, err := recordAttributes(st, st.Extra)
	if err != nil {
		return nil, err
	}
	attrs["signal_name"] = st.SignalValue().String()
	return attrs, nil
}

// normalizeCameras keys cameras by short name. Entries without a short
// name cannot be addressed and are dropped.
func normalizeCameras(data json.RawMessage) (map[string]any, error) {
	cams, err := ParseCameras(data)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(cams))
	for i := range cams {
		if cams[i].ShortName == "" {
			continue
		}
		attrs, err := recordAttributes(&cams[i], cams[i].Extra)
		if err != nil {
			return nil, err
		}
		out[cams[i].ShortName] = attrs
	}
	return out, nil
}

func normalizeClips(data json.RawMessage) (map[string]any, error) {
	clips, err := ParseClips(data)
	if err != nil {
		return nil, err
	}
	return groupByCamera(len(clips), func(i int) (string, any, Extra) {
		return clips[i].Camera, &clips[i], clips[i].Extra
	})
}

func normalizeAlerts(data json.RawMessage) (map[string]any, error) {
	alerts, err := ParseAlerts(data)
	if err != nil {
		return nil, err
	}
	return groupByCamera(len(alerts), func(i int) (string, any, Extra) {
		return alerts[i].Camera, &alerts[i], alerts[i].Extra
	})
}

func groupByCamera(n int, at func(int) (string, any, Extra)) (map[string]any, error) {
	out := make(map[string]any)
	for i := 0; i < n; i++ {
		cam, rec, extra := at(i)
		attrs, err := recordAttributes(rec, extra)
		if err != nil {
			return nil, err
		}
		list, _ := out[cam].([]any)
		out[cam] = append(list, attrs)
	}
	return out, nil
}

func normalizeLog(data json.RawMessage) (map[string]any, error) {
	entries, err := ParseLog(data)
	if err != nil {
		return nil, err
	}
	list := make([]any, 0, len(entries))
	for i := range entries {
		attrs, err := recordAttributes(&entries[i], entries[i].Extra)
		if err != nil {
			return nil, err
		}
		list = append(list, attrs)
	}
	return map[string]any{KeyEntries: list}, nil
}

func normalizeSysConfig(data json.RawMessage) (map[string]any, error) {
	sc, err := ParseSysConfig(data)
	if err != nil {
		return nil, err
	}
	return recordAttributes(sc, sc.Extra)
}
