package models

import (
	"fmt"
	"strings"
)

// Flag is a tri-state boolean parsed from the "true"/"false" strings
// that clients send for alert switches.
type Flag int8

const (
	FlagUnset Flag = iota
	FlagFalse
	FlagTrue
)

// ParseFlag converts an optional wire value into a Flag. A nil or empty
// value is FlagUnset; anything other than "true" or "false" is an error.
func ParseFlag(v *string) (Flag, error) {
	if v == nil {
		return FlagUnset, nil
	}
	switch strings.TrimSpace(*v) {
	case "":
		return FlagUnset, nil
	case "true":
		return FlagTrue, nil
	case "false":
		return FlagFalse, nil
	default:
		return FlagUnset, fmt.Errorf("invalid boolean flag %q", *v)
	}
}

// IsSet reports whether the flag carries a value.
func (f Flag) IsSet() bool { return f != FlagUnset }

// Bool returns the flag value. Callers check IsSet first.
func (f Flag) Bool() bool { return f == FlagTrue }

func (f Flag) String() string {
	switch f {
	case FlagTrue:
		return "true"
	case FlagFalse:
		return "false"
	default:
		return "unset"
	}
}
