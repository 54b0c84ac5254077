package settings

import (
	"fmt"
	"sort"
	"strings"
)

// Must panics if err is non-nil; it wraps construction calls for
// program-level settings that cannot meaningfully proceed on failure.
//
//	s := settings.Must(settings.New(settings.Location("app.toml")))
func Must(s *Settings, err error) *Settings {
	if err != nil {
		panic(fmt.Sprintf("settings initialization failed: %v", err))
	}
	return s
}

// Debug returns a formatted dump of the registered sources, their key
// counts, and the resolved value of every union key. Intended for
// troubleshooting precedence issues, not for machine consumption.
func (s *Settings) Debug() string {
	var b strings.Builder
	b.WriteString("Settings debug info:\n")
	b.WriteString("Sources (highest priority first):\n")
	for _, nm := range s.named {
		b.WriteString(fmt.Sprintf("  %s (%d keys)\n", nm.name, len(nm.values)))
	}

	keys := s.Keys()
	sort.Strings(keys)

	b.WriteString("Resolved values:\n")
	for _, k := range keys {
		v, _ := s.Get(k, WarnMissing(false), RaiseMissing(false))
		b.WriteString(fmt.Sprintf("  %s: %v\n", k, v))
	}

	return b.String()
}
