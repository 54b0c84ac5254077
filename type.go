package settings

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bool retrieves the setting as a bool. Native booleans pass through.
// Strings are matched case-insensitively after trimming: "true", "t", "1"
// are true; "false", "f", "0", "none", "null" and the empty string are
// false; any other string is a coercion error. Other value types fall back
// to a generic truthiness rule.
func (s *Settings) Bool(key string, opts ...GetOption) (bool, error) {
	raw, err := s.Get(key, opts...)
	if err != nil || raw == nil {
		return false, err
	}

	b, cerr := coerceBool(raw)
	if cerr != nil {
		return false, &CoercionError{Key: key, Value: raw, Target: "bool", Err: cerr}
	}
	return b, nil
}

// Int64 retrieves the setting as an int64, converting from numeric types,
// parsable strings, and booleans.
func (s *Settings) Int64(key string, opts ...GetOption) (int64, error) {
	raw, err := s.Get(key, opts...)
	if err != nil || raw == nil {
		return 0, err
	}

	i, cerr := coerceInt64(raw)
	if cerr != nil {
		return 0, &CoercionError{Key: key, Value: raw, Target: "int64", Err: cerr}
	}
	return i, nil
}

// Float64 retrieves the setting as a float64, converting from numeric
// types, parsable strings, and booleans.
func (s *Settings) Float64(key string, opts ...GetOption) (float64, error) {
	raw, err := s.Get(key, opts...)
	if err != nil || raw == nil {
		return 0.0, err
	}

	f, cerr := coerceFloat64(raw)
	if cerr != nil {
		return 0.0, &CoercionError{Key: key, Value: raw, Target: "float64", Err: cerr}
	}
	return f, nil
}

// String retrieves the setting as a string, converting from common types
// when the stored value isn't already a string. A nil value reads as "".
func (s *Settings) String(key string, opts ...GetOption) (string, error) {
	raw, err := s.Get(key, opts...)
	if err != nil || raw == nil {
		return "", err
	}

	str, cerr := coerceString(raw)
	if cerr != nil {
		return "", &CoercionError{Key: key, Value: raw, Target: "string", Err: cerr}
	}
	return str, nil
}

// List retrieves the setting as a sequence. A value that is already a
// sequence is returned as-is. A bracket-delimited string ("[...]") is
// decoded as structured data (JSON, then YAML); any other string is split
// on the delimiter (see Delimiter, default ",") with surrounding spaces
// trimmed from each element.
func (s *Settings) List(key string, opts ...GetOption) ([]any, error) {
	o := s.getOptions(opts)
	raw, err := s.lookup(key, o)
	if err != nil || raw == nil {
		return nil, err
	}

	if str, ok := raw.(string); ok {
		str = strings.TrimSpace(str)
		if strings.HasPrefix(str, "[") && strings.HasSuffix(str, "]") {
			v, derr := decodeSerialized(str)
			if derr != nil {
				return nil, &CoercionError{Key: key, Value: raw, Target: "list", Err: derr}
			}
			seq, ok := v.([]any)
			if !ok {
				return nil, &CoercionError{Key: key, Value: raw, Target: "list",
					Err: fmt.Errorf("decoded to %T, not a sequence", v)}
			}
			return seq, nil
		}

		parts := strings.Split(str, o.delimiter)
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = strings.Trim(p, " ")
		}
		return out, nil
	}

	if seq, ok := raw.([]any); ok {
		return seq, nil
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}

	return nil, &CoercionError{Key: key, Value: raw, Target: "list",
		Err: fmt.Errorf("value of type %T is not a sequence", raw)}
}

// Serialized retrieves the setting as structured data. Values that are
// already mappings or sequences pass through unchanged. Strings are
// decoded with strict JSON first, then permissive YAML; if both fail the
// coercion error names the key. JSON object keys stay strings while the
// YAML decoder may produce other key types; the discrepancy is preserved.
func (s *Settings) Serialized(key string, opts ...GetOption) (any, error) {
	raw, err := s.Get(key, opts...)
	if err != nil || raw == nil {
		return raw, err
	}

	switch reflect.ValueOf(raw).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return raw, nil
	}

	str, ok := raw.(string)
	if !ok {
		return nil, &CoercionError{Key: key, Value: raw, Target: "serialized",
			Err: fmt.Errorf("value of type %T is not decodable", raw)}
	}

	v, derr := decodeSerialized(str)
	if derr != nil {
		return nil, &CoercionError{Key: key, Value: raw, Target: "serialized",
			Err: fmt.Errorf("unable to parse using JSON or YAML: %w", derr)}
	}
	return v, nil
}

// Dict retrieves the setting as a mapping; it is Serialized under the
// conventional name.
func (s *Settings) Dict(key string, opts ...GetOption) (any, error) {
	return s.Serialized(key, opts...)
}

// URL retrieves the setting as a parsed *url.URL without fetching it.
func (s *Settings) URL(key string, opts ...GetOption) (*url.URL, error) {
	raw, err := s.Get(key, opts...)
	if err != nil || raw == nil {
		return nil, err
	}

	if u, ok := raw.(*url.URL); ok {
		return u, nil
	}

	str, ok := raw.(string)
	if !ok {
		return nil, &CoercionError{Key: key, Value: raw, Target: "url",
			Err: fmt.Errorf("value of type %T is not a URL string", raw)}
	}

	u, perr := url.Parse(str)
	if perr != nil {
		return nil, &CoercionError{Key: key, Value: raw, Target: "url", Err: perr}
	}
	return u, nil
}

// NJobs retrieves the setting as a worker count relative to the available
// CPU cores. See ParseNJobs for the accepted forms. A result of zero or
// below clamps to 1 with an advisory diagnostic; a result above the
// available core count records an advisory diagnostic without changing
// the value.
func (s *Settings) NJobs(key string, opts ...GetOption) (int, error) {
	raw, err := s.Get(key, opts...)
	if err != nil || raw == nil {
		return 0, err
	}

	available := s.opts.CPUCount
	n, clamped, over, perr := parseNJobs(raw, available)
	if perr != nil {
		return 0, &CoercionError{Key: key, Value: raw, Target: "n_jobs", Err: perr}
	}

	if clamped {
		s.warnf(DiagJobsClamped, key, "", "n_jobs value %v is invalid, setting n_jobs=1", raw)
	}
	if over {
		s.warnf(DiagJobsOversubscribed, key, "",
			"n_jobs=%d exceeds the %d available CPUs", n, effectiveCPUCount(available))
	}
	return n, nil
}

func coerceBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "1":
			return true, nil
		case "false", "f", "0", "none", "null", "":
			return false, nil
		}
		return false, fmt.Errorf("unable to get boolean value of %q", t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return false, err
		}
		return f != 0, nil
	}
	return truthy(v), nil
}

// truthy is the generic fallback for non-string, non-boolean values:
// numbers are compared against zero, containers against emptiness.
func truthy(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return false
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func coerceInt64(v any) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		maxInt64 := int64(^uint64(0) >> 1)
		if u > uint64(maxInt64) {
			return 0, fmt.Errorf("unsigned integer %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		// Truncate float to int
		return int64(rv.Float()), nil
	case reflect.String:
		str := rv.String()
		if i, err := strconv.ParseInt(str, 0, 64); err == nil { // Base 0 for auto-detection (e.g. "0xFF")
			return i, nil
		} else {
			if f, ferr := strconv.ParseFloat(str, 64); ferr == nil {
				return int64(f), nil // Truncate
			}
			return 0, err
		}
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("value of type %T is not numeric", v)
}

func coerceFloat64(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.String:
		f, err := strconv.ParseFloat(rv.String(), 64)
		if err != nil {
			return 0.0, err
		}
		return f, nil
	case reflect.Bool:
		if rv.Bool() {
			return 1.0, nil
		}
		return 0.0, nil
	}
	return 0.0, fmt.Errorf("value of type %T is not numeric", v)
}

func coerceString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	case []byte:
		return string(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case error:
		return t.Error(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	}
	return "", fmt.Errorf("value of type %T is not convertible to string", v)
}

// decodeSerialized attempts a strict structured decode first, then a
// permissive one.
func decodeSerialized(str string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(str), &v); err == nil {
		return v, nil
	}
	if err := yaml.Unmarshal([]byte(str), &v); err != nil {
		return nil, err
	}
	return v, nil
}
