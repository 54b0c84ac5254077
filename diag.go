package settings

import (
	"fmt"

	"go.uber.org/zap"
)

// DiagKind classifies an advisory diagnostic event.
type DiagKind string

const (
	// DiagMissingSetting is emitted when a key is absent and the
	// warn-on-missing policy is in effect.
	DiagMissingSetting DiagKind = "missing_setting"

	// DiagAmbiguousKey is emitted when a case-insensitive lookup matches
	// more than one key within a single source.
	DiagAmbiguousKey DiagKind = "ambiguous_key"

	// DiagDuplicateSource is emitted when two sources register under the
	// same name; the first registration wins.
	DiagDuplicateSource DiagKind = "duplicate_source"

	// DiagJobsClamped is emitted when an n_jobs expression evaluates to
	// zero or below and the result is clamped to 1.
	DiagJobsClamped DiagKind = "jobs_clamped"

	// DiagJobsOversubscribed is emitted when an n_jobs expression exceeds
	// the available CPU count. Advisory only.
	DiagJobsOversubscribed DiagKind = "jobs_oversubscribed"
)

// Diagnostic is a non-fatal advisory event recorded during construction
// or lookup. Diagnostics never change lookup results.
type Diagnostic struct {
	Kind    DiagKind
	Key     string
	Source  string
	Message string
}

// Diagnostics returns a copy of all advisory events recorded so far.
func (s *Settings) Diagnostics() []Diagnostic {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	return out
}

// warnf records a diagnostic and mirrors it to the configured logger.
func (s *Settings) warnf(kind DiagKind, key, source, format string, args ...any) {
	d := Diagnostic{
		Kind:    kind,
		Key:     key,
		Source:  source,
		Message: fmt.Sprintf(format, args...),
	}

	s.mu.Lock()
	s.diags = append(s.diags, d)
	s.mu.Unlock()

	s.log.Warn(d.Message,
		zap.String("kind", string(kind)),
		zap.String("key", key),
		zap.String("source", source))
}
