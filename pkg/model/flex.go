package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexInt is an integer the server may send as a number or a numeric string.
type FlexInt int

// UnmarshalJSON accepts 3, 3.0, "3" and null.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("flexint: %w", err)
		}
		s = strings.TrimSpace(unq)
		if s == "" {
			*f = 0
			return nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = FlexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("flexint: invalid value %s", data)
	}
	*f = FlexInt(math.Trunc(v))
	return nil
}

// MarshalJSON encodes the value as a JSON number.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// Int returns the value as an int.
func (f FlexInt) Int() int {
	return int(f)
}

// FlexBool is a boolean the server may send as true/false, 0/1 or a string.
type FlexBool bool

// UnmarshalJSON accepts true, 1, "1", "true", "yes" and null.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch s := strings.ToLower(strings.Trim(string(data), `"`)); s {
	case "null":
		return nil
	case "true", "1", "yes", "on":
		*f = true
	case "false", "0", "no", "off", "":
		*f = false
	default:
		return fmt.Errorf("flexbool: invalid value %s", data)
	}
	return nil
}

// MarshalJSON encodes the value as a JSON boolean.
func (f FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Bool returns the value as a bool.
func (f FlexBool) Bool() bool {
	return bool(f)
}
