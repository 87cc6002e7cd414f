package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Extra holds the fields of a record that have no typed counterpart.
type Extra map[string]json.RawMessage

var knownFieldCache sync.Map // reflect.Type -> map[string]bool

// knownFields returns the JSON member names a struct type decodes.
func knownFields(t reflect.Type) map[string]bool {
	if cached, ok := knownFieldCache.Load(t); ok {
		return cached.(map[string]bool)
	}
	known := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		known[name] = true
	}
	knownFieldCache.Store(t, known)
	return known
}

// decodeRecord decodes data into the struct pointed to by v and returns the
// members v does not declare.
func decodeRecord(data []byte, v any) (Extra, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	known := knownFields(reflect.TypeOf(v).Elem())
	var extra Extra
	for k, raw := range all {
		if known[k] {
			continue
		}
		// encoding/json matches member names case-insensitively.
		if matchesFold(known, k) {
			continue
		}
		if extra == nil {
			extra = make(Extra)
		}
		extra[k] = raw
	}
	return extra, nil
}

func matchesFold(known map[string]bool, key string) bool {
	for name := range known {
		if strings.EqualFold(name, key) {
			return true
		}
	}
	return false
}

// recordAttributes flattens a typed record and its extra members into
// attribute values.
func recordAttributes(v any, extra Extra) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]any)
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		var val any
		if err := json.Unmarshal(raw, &val); err != nil {
			return nil, err
		}
		attrs[k] = val
	}
	return attrs, nil
}

// FromAttributes decodes attribute values produced by a Normalizer into the
// record pointed to by v. Fields absent from attrs keep their current value.
func FromAttributes(attrs map[string]any, v any) error {
	data, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// CameraFromAttributes decodes one normalized camlist entry.
func CameraFromAttributes(attrs map[string]any) (Camera, error) {
	cam := NewCamera("")
	if err := FromAttributes(attrs, &cam); err != nil {
		return Camera{}, shapeError(FamilyCamlist, err)
	}
	return cam, nil
}
