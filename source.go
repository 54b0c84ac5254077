package settings

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// maxSourceDepth bounds indirection recursion (a map source pointing at a
// location whose descriptor points at another source, and so on).
const maxSourceDepth = 16

// Source describes one origin of raw settings. Descriptors form a closed
// set of variants; construct them with Env, EnvIndirect, Location, URL,
// Map, and Object.
type Source interface {
	isSource()
}

type envSource struct{}

type envIndirectSource struct{}

type locationSource struct {
	uri string
}

type mapSource struct {
	values map[string]any
}

type objectSource struct {
	value any
}

func (envSource) isSource()         {}
func (envIndirectSource) isSource() {}
func (locationSource) isSource()    {}
func (mapSource) isSource()         {}
func (objectSource) isSource()      {}

// Env yields the environment snapshot as a source named "env".
func Env() Source {
	return envSource{}
}

// EnvIndirect looks up the configured environment variable
// (Options.EnvURIKey, default SETTINGS_URI) and, when present, resolves
// its value as a location. Yields nothing when the variable is unset.
func EnvIndirect() Source {
	return envIndirectSource{}
}

// Location yields the settings decoded from a file path or http(s) URL.
// The decoder is chosen by file extension; a trailing ".gz" suffix is
// stripped after transparent decompression.
func Location(uri string) Source {
	return locationSource{uri: uri}
}

// URL is Location for a pre-parsed URL value.
func URL(u *url.URL) Source {
	return locationSource{uri: u.String()}
}

// Map yields a ready-made mapping. If the mapping contains the configured
// indirection key (Options.MapURIKey, default "settings_uri"), the
// referenced location is loaded first and takes priority over the mapping
// itself.
func Map(values map[string]any) Source {
	return mapSource{values: values}
}

// Object yields the exported fields of a struct (or struct pointer) as a
// mapping. The `settings` tag overrides a field's key; "-" skips the
// field. A field matching the configured indirection key
// (Options.ObjectURIKey) triggers the same location indirection as Map.
func Object(v any) Source {
	return objectSource{value: v}
}

// resolveSource invokes the adapter for one descriptor, possibly
// recursively for indirection. Returned pairs are ordered highest
// priority first.
func (s *Settings) resolveSource(src Source, depth int) ([]namedMapping, error) {
	if depth > maxSourceDepth {
		return nil, fmt.Errorf("settings source nesting exceeds %d levels", maxSourceDepth)
	}

	switch t := src.(type) {
	case envSource:
		values := make(map[string]any, len(s.environ))
		for k, v := range s.environ {
			values[k] = v
		}
		s.log.Debug("loaded settings from the environment", zap.Int("keys", len(values)))
		return []namedMapping{newNamedMapping("env", values)}, nil

	case envIndirectSource:
		uri, ok := searchEnviron(s.environ, s.opts.EnvURIKey)
		if !ok || uri == "" {
			return nil, nil
		}
		s.log.Debug("found settings URI in the environment", zap.String("key", s.opts.EnvURIKey))

		values, err := s.loadLocation(uri)
		if err != nil {
			return nil, err
		}
		return []namedMapping{newNamedMapping(uri, values)}, nil

	case locationSource:
		values, err := s.loadLocation(t.uri)
		if err != nil {
			return nil, err
		}
		return []namedMapping{newNamedMapping(t.uri, values)}, nil

	case mapSource:
		var out []namedMapping

		if key := s.opts.MapURIKey; key != "" {
			if target, ok := t.values[key]; ok {
				s.log.Debug("found settings URI in map source", zap.String("key", key))
				nested, err := s.resolveSource(coerceSource(target), depth+1)
				if err != nil {
					return nil, err
				}
				out = append(out, nested...)
			}
		}

		return append(out, newNamedMapping(s.uniqueName(typeName(t.values)), t.values)), nil

	case objectSource:
		values, err := objectMapping(t.value)
		if err != nil {
			return nil, err
		}

		var out []namedMapping
		if key := s.opts.ObjectURIKey; key != "" {
			if target, ok := lookupFold(values, key); ok {
				s.log.Debug("found settings URI in object source", zap.String("key", key))
				nested, err := s.resolveSource(coerceSource(target), depth+1)
				if err != nil {
					return nil, err
				}
				out = append(out, nested...)
			}
		}

		return append(out, newNamedMapping(s.uniqueName(typeName(t.value)), values)), nil
	}

	return nil, fmt.Errorf("unrecognized settings source descriptor %T", src)
}

// coerceSource maps an indirection target value to a descriptor: strings
// and URLs become locations, mappings stay mappings, anything else is
// treated as an object.
func coerceSource(v any) Source {
	switch t := v.(type) {
	case Source:
		return t
	case string:
		return Location(t)
	case *url.URL:
		return URL(t)
	case map[string]any:
		return Map(t)
	default:
		return Object(t)
	}
}

// objectMapping extracts the exported fields of a struct into a mapping.
func objectMapping(v any) (map[string]any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("object source requires a non-nil struct pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("object source requires a struct or struct pointer, got %T", v)
	}

	t := rv.Type()
	values := make(map[string]any, rv.NumField())

	for i := 0; i < rv.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("settings")
		if tag == "-" {
			continue
		}

		key := field.Name
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				key = parts[0]
			}
		}

		values[key] = rv.Field(i).Interface()
	}

	return values, nil
}

// lookupFold finds a mapping entry whose key matches case-insensitively,
// scanning keys in deterministic order.
func lookupFold(values map[string]any, key string) (any, bool) {
	for _, k := range sortedKeys(values) {
		if strings.EqualFold(k, key) {
			return values[k], true
		}
	}
	return nil, false
}
