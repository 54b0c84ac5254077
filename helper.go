package settings

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// environSnapshot converts an os.Environ-style slice into a map.
func environSnapshot(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			out[kv[:i]] = kv[i+1:]
		}
	}
	return out
}

// searchEnviron performs a case-insensitive lookup in an environment
// snapshot. Keys are compared in sorted order so that the result is
// deterministic when several variables differ only by case.
func searchEnviron(environ map[string]string, key string) (string, bool) {
	key = strings.ToLower(key)

	names := make([]string, 0, len(environ))
	for k := range environ {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		if strings.ToLower(k) == key {
			return environ[k], true
		}
	}
	return "", false
}

// sortedKeys returns the keys of a mapping in sorted order. Go maps have no
// stable iteration order, so the sorted order stands in for a source's
// natural key order when resolving ambiguous case-insensitive matches and
// when enumerating the union of keys.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// uniqueName generates a source name of the form "prefix_N" that is not
// yet registered. Must be called during construction, before any reads.
func (s *Settings) uniqueName(prefix string) string {
	for i := 0; ; i++ {
		name := fmt.Sprintf("%s_%d", prefix, i)
		if _, taken := s.byName[name]; !taken {
			return name
		}
	}
}

// typeName derives a human-readable name prefix for an anonymous source.
func typeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.Kind().String()
}
