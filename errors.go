package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSetting indicates a key was not found in any source.
	// Returned (wrapped in *MissingSettingError) only when raise-on-missing
	// is in effect; otherwise lookups degrade to a diagnostic plus default.
	ErrMissingSetting = errors.New("setting not found")

	// ErrUnsupportedFormat indicates a location has no registered decoder
	// for its file extension.
	ErrUnsupportedFormat = errors.New("unsupported settings format")
)

// MissingSettingError reports the key that was absent after exhausting
// all sources.
type MissingSettingError struct {
	Key string
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("the %q setting is missing", e.Key)
}

func (e *MissingSettingError) Unwrap() error {
	return ErrMissingSetting
}

// CoercionError reports a value that is present but cannot be converted
// to the requested type. Coercion failures are always surfaced, regardless
// of the missing-key policy.
type CoercionError struct {
	Key    string
	Value  any
	Target string
	Err    error
}

func (e *CoercionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %q setting (%v) to %s: %v", e.Key, e.Value, e.Target, e.Err)
	}
	return fmt.Sprintf("cannot convert %q setting (%v) to %s", e.Key, e.Value, e.Target)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError reports a location extension with no decoder.
// It is fatal and surfaces at construction time for the offending source.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "unknown settings file format: no extension"
	}
	return fmt.Sprintf("unknown settings file format: %s", e.Ext)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}
