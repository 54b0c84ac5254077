// Package settings resolves application configuration from an ordered set
// of heterogeneous sources (environment, files, URLs, maps, arbitrary
// objects) into a single logical key-value view with typed accessors.
//
// Features:
//   - Priority-ordered sources: the first source defining a key wins
//   - Case-insensitive lookup with ambiguity detection (configurable)
//   - Per-key caching: sources are scanned at most once per key
//   - Configurable missing-key policy: default value, warning, or error
//   - Typed accessors with coercion: Bool, Int64, Float64, String, List,
//     Serialized/Dict, URL, and CPU-relative NJobs
//   - URI indirection: a settings_uri entry in the environment, a map, or
//     an object loads an additional location
//   - Formats: JSON, YAML, TOML, INI, gob, with transparent gzip
//   - Struct scanning via mapstructure
//   - Structured diagnostics instead of fatal errors for advisory events
//
// Quick start:
//
//	s, err := settings.New(
//	    settings.Location("app.yaml"),
//	    settings.Map(map[string]any{"debug": "true", "workers": "0.5n"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	debug, _ := s.Bool("debug")
//	workers, _ := s.NJobs("workers")
//
// By default the process environment (and a SETTINGS_URI environment
// indirection) is searched before any declared source, so deployments can
// override file values without code changes.
//
// A Settings instance is built once and is then safe for any number of
// concurrent readers; the lookup cache and the memoized key union are the
// only internal mutable state.
package settings
