package encounter

import "errors"

// Flag is a tri-state boolean used for facts the parser learns gradually,
// such as whether an entity is an enemy. A Flag starts out unknown and,
// once set, is never un-set.
type Flag int8

const (
	// FlagUnknown means the fact has not been established yet.
	FlagUnknown Flag = iota

	// FlagNo means the fact is known to be false.
	FlagNo

	// FlagYes means the fact is known to be true.
	FlagYes
)

// Known reports whether the flag has been resolved either way.
func (f Flag) Known() bool { return f != FlagUnknown }

// True reports whether the flag is known and set.
func (f Flag) True() bool { return f == FlagYes }

// Negate returns the logical negation of a known flag.
// Negating an unknown flag yields unknown.
func (f Flag) Negate() Flag {
	switch f {
	case FlagYes:
		return FlagNo
	case FlagNo:
		return FlagYes
	}
	return FlagUnknown
}

// MarshalJSON encodes the flag as null, false or true.
func (f Flag) MarshalJSON() ([]byte, error) {
	switch f {
	case FlagNo:
		return []byte("false"), nil
	case FlagYes:
		return []byte("true"), nil
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes null, false or true.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*f = FlagUnknown
	case "false":
		*f = FlagNo
	case "true":
		*f = FlagYes
	default:
		return errors.New("flag must be null, false or true")
	}
	return nil
}
