package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Reserved request keys. Parameters may not use them.
const (
	KeyCommand  = "cmd"
	KeySession  = "session"
	KeyResponse = "response"
)

// Errors returned by Command.Validate.
var (
	ErrEmptyCommand   = errors.New("command name is empty")
	ErrReservedParam  = errors.New("parameter uses a reserved key")
	ErrDuplicateParam = errors.New("duplicate parameter")
	ErrEmptyParamKey  = errors.New("parameter key is empty")
)

// Kind classifies a command as data-gathering or state-changing.
type Kind uint8

const (
	// KindQuery is an idempotent, data-gathering command.
	KindQuery Kind = iota

	// KindMutating changes server or camera state.
	KindMutating
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "QUERY"
	case KindMutating:
		return "MUTATING"
	default:
		return "UNKNOWN"
	}
}

// Param is a single command parameter.
type Param struct {
	Key   string
	Value any
}

// Command is a single named remote operation.
// Commands are built per call and never persisted.
type Command struct {
	// Name is the wire command name ("status", "camlist", ...).
	Name string

	// Params are encoded in order after the reserved keys.
	Params []Param

	// Kind classifies the command.
	Kind Kind

	// FamilyName overrides the attribute family the result is stored under.
	// Empty means the command name.
	FamilyName string
}

// NewQuery creates a data-gathering command.
func NewQuery(name string, params ...Param) Command {
	return Command{Name: name, Params: params, Kind: KindQuery}
}

// NewMutation creates a state-changing command.
func NewMutation(name string, params ...Param) Command {
	return Command{Name: name, Params: params, Kind: KindMutating}
}

// P is shorthand for building a Param.
func P(key string, value any) Param {
	return Param{Key: key, Value: value}
}

// Family returns the attribute family this command's results belong to.
func (c Command) Family() string {
	if c.FamilyName != "" {
		return c.FamilyName
	}
	return c.Name
}

// Param returns the value of the named parameter.
func (c Command) Param(key string) (any, bool) {
	for _, p := range c.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// With returns a copy of the command with an extra parameter appended.
func (c Command) With(key string, value any) Command {
	params := make([]Param, 0, len(c.Params)+1)
	params = append(params, c.Params...)
	c.Params = append(params, Param{Key: key, Value: value})
	return c
}

// Validate checks the command name and parameters.
func (c Command) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCommand
	}
	seen := make(map[string]bool, len(c.Params))
	for _, p := range c.Params {
		switch {
		case p.Key == "":
			return fmt.Errorf("%s: %w", c.Name, ErrEmptyParamKey)
		case isReserved(p.Key):
			return fmt.Errorf("%s: %w: %q", c.Name, ErrReservedParam, p.Key)
		case seen[p.Key]:
			return fmt.Errorf("%s: %w: %q", c.Name, ErrDuplicateParam, p.Key)
		}
		seen[p.Key] = true
	}
	return nil
}

// String returns a compact representation for logs.
func (c Command) String() string {
	if len(c.Params) == 0 {
		return c.Name
	}
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('(')
	for i, p := range c.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", p.Key, p.Value)
	}
	b.WriteByte(')')
	return b.String()
}

func isReserved(key string) bool {
	return key == KeyCommand || key == KeySession || key == KeyResponse
}
