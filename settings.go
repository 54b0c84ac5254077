package settings

import (
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// Default indirection keys. When one of these keys is present in the
// environment, a map source, or an object source, its value is resolved
// as an additional location to load settings from.
const (
	DefaultEnvURIKey    = "SETTINGS_URI"
	DefaultMapURIKey    = "settings_uri"
	DefaultObjectURIKey = "settings_uri"
)

// Options configures a Settings instance. All fields are fixed at
// construction and immutable afterwards.
type Options struct {
	// SearchFirst lists sources consulted before any declared sources,
	// so their values always win ties. nil means the default
	// [Env(), EnvIndirect()]; use an empty non-nil slice to disable.
	SearchFirst []Source

	// CaseSensitive controls whether key lookups compare exactly.
	CaseSensitive bool

	// RaiseMissing makes lookups return a *MissingSettingError when a key
	// is absent from every source.
	RaiseMissing bool

	// WarnMissing records a diagnostic when a key is absent. Ignored for
	// a given lookup when RaiseMissing takes effect.
	WarnMissing bool

	// EnvURIKey is the environment variable checked by EnvIndirect().
	EnvURIKey string

	// MapURIKey is the indirection key checked in map sources.
	MapURIKey string

	// ObjectURIKey is the indirection field checked in object sources.
	ObjectURIKey string

	// Environ is the environment snapshot consulted by Env() and
	// EnvIndirect(). nil captures os.Environ at construction.
	Environ map[string]string

	// CPUCount overrides the detected core count used by NJobs.
	// Zero means runtime.NumCPU().
	CPUCount int

	// Logger receives debug output and mirrored diagnostics.
	// nil means a no-op logger.
	Logger *zap.Logger

	// HTTPClient fetches http(s) locations. nil means a default
	// retryable client with logging disabled.
	HTTPClient *retryablehttp.Client
}

// DefaultOptions returns the standard options: environment searched first,
// case-insensitive lookups, missing keys warn but do not fail.
func DefaultOptions() Options {
	return Options{
		SearchFirst:  []Source{Env(), EnvIndirect()},
		WarnMissing:  true,
		EnvURIKey:    DefaultEnvURIKey,
		MapURIKey:    DefaultMapURIKey,
		ObjectURIKey: DefaultObjectURIKey,
	}
}

// namedMapping is one prioritized source: a name, its raw values, and a
// deterministic key order used for ambiguity resolution and enumeration.
type namedMapping struct {
	name   string
	keys   []string
	values map[string]any
}

func newNamedMapping(name string, values map[string]any) namedMapping {
	return namedMapping{
		name:   name,
		keys:   sortedKeys(values),
		values: values,
	}
}

// Settings resolves keys across an ordered list of named sources.
// It is built once, then safe for concurrent readers; the lookup cache and
// the memoized union of keys are the only internal mutable state.
type Settings struct {
	opts    Options
	environ map[string]string
	log     *zap.Logger
	http    *retryablehttp.Client

	sources []Source
	named   []namedMapping
	byName  map[string]struct{}

	mu        sync.RWMutex
	cache     map[string]any
	unionKeys []string
	diags     []Diagnostic
}

// New builds a Settings instance from the given sources using
// DefaultOptions. Sources are resolved exactly once, in order; the
// search-first sources (environment, environment URI indirection) are
// consulted before any of the declared sources.
func New(sources ...Source) (*Settings, error) {
	return NewWithOptions(DefaultOptions(), sources...)
}

// NewWithOptions builds a Settings instance with custom options.
// Errors produced while resolving sources (unreadable locations, decode
// failures, unsupported formats) propagate to the caller.
func NewWithOptions(opts Options, sources ...Source) (*Settings, error) {
	if opts.SearchFirst == nil {
		opts.SearchFirst = []Source{Env(), EnvIndirect()}
	}
	if opts.EnvURIKey == "" {
		opts.EnvURIKey = DefaultEnvURIKey
	}
	if opts.MapURIKey == "" {
		opts.MapURIKey = DefaultMapURIKey
	}
	if opts.ObjectURIKey == "" {
		opts.ObjectURIKey = DefaultObjectURIKey
	}

	environ := opts.Environ
	if environ == nil {
		environ = environSnapshot(os.Environ())
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	client := opts.HTTPClient
	if client == nil {
		client = retryablehttp.NewClient()
		client.Logger = nil
	}

	s := &Settings{
		opts:    opts,
		environ: environ,
		log:     log,
		http:    client,
		byName:  make(map[string]struct{}),
		cache:   make(map[string]any),
	}

	s.sources = make([]Source, 0, len(opts.SearchFirst)+len(sources))
	s.sources = append(s.sources, opts.SearchFirst...)
	s.sources = append(s.sources, sources...)

	for _, src := range s.sources {
		pairs, err := s.resolveSource(src, 0)
		if err != nil {
			return nil, err
		}

		for _, nm := range pairs {
			if len(nm.values) == 0 {
				continue
			}
			if _, dup := s.byName[nm.name]; dup {
				s.warnf(DiagDuplicateSource, "", nm.name,
					"%s appeared more than once in the settings priority list", nm.name)
				continue
			}

			s.byName[nm.name] = struct{}{}
			s.named = append(s.named, nm)
			s.log.Debug("registered settings source",
				zap.String("source", nm.name),
				zap.Int("keys", len(nm.values)))
		}
	}

	return s, nil
}

// GetOption overrides an instance policy flag for a single lookup.
type GetOption func(*getOptions)

type getOptions struct {
	def           any
	caseSensitive bool
	raiseMissing  bool
	warnMissing   bool
	delimiter     string
}

// Default sets the value returned when the key is absent.
func Default(v any) GetOption {
	return func(o *getOptions) { o.def = v }
}

// CaseSensitive overrides the instance case-sensitivity for one lookup.
func CaseSensitive(b bool) GetOption {
	return func(o *getOptions) { o.caseSensitive = b }
}

// RaiseMissing overrides the instance raise-on-missing policy for one lookup.
func RaiseMissing(b bool) GetOption {
	return func(o *getOptions) { o.raiseMissing = b }
}

// WarnMissing overrides the instance warn-on-missing policy for one lookup.
func WarnMissing(b bool) GetOption {
	return func(o *getOptions) { o.warnMissing = b }
}

// Delimiter sets the split delimiter used by List. Default ",".
func Delimiter(d string) GetOption {
	return func(o *getOptions) { o.delimiter = d }
}

func (s *Settings) getOptions(opts []GetOption) getOptions {
	o := getOptions{
		caseSensitive: s.opts.CaseSensitive,
		raiseMissing:  s.opts.RaiseMissing,
		warnMissing:   s.opts.WarnMissing,
		delimiter:     ",",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Get retrieves the raw value for key, searching sources in priority order.
// The first source containing the key wins; lower-priority sources are not
// consulted. Resolved values are cached by normalized key, so repeated
// lookups never rescan the sources. The cache is shared between
// case-sensitive and case-insensitive calls: whichever resolves a logical
// key first pins its value.
//
// A missing key returns the default (see Default) with a nil error, unless
// raise-on-missing is in effect, in which case a *MissingSettingError is
// returned.
func (s *Settings) Get(key string, opts ...GetOption) (any, error) {
	return s.lookup(key, s.getOptions(opts))
}

func (s *Settings) lookup(key string, o getOptions) (any, error) {
	if !o.caseSensitive {
		key = strings.ToLower(key)
	}

	s.mu.RLock()
	v, hit := s.cache[key]
	s.mu.RUnlock()
	if hit {
		return v, nil
	}

	for _, nm := range s.named {
		if o.caseSensitive {
			v, ok := nm.values[key]
			if !ok {
				continue
			}
			s.storeCache(key, v)
			return v, nil
		}

		var matches []string
		for _, k := range nm.keys {
			if strings.ToLower(k) == key {
				matches = append(matches, k)
			}
		}
		if len(matches) == 0 {
			continue
		}
		if len(matches) > 1 {
			s.warnf(DiagAmbiguousKey, key, nm.name,
				"there are more than one possible value for %q in <%s> settings due to case insensitivity", key, nm.name)
		}

		v := nm.values[matches[0]]
		s.storeCache(key, v)
		return v, nil
	}

	if o.raiseMissing {
		return o.def, &MissingSettingError{Key: key}
	}
	if o.warnMissing {
		s.warnf(DiagMissingSetting, key, "", "the %q setting is missing", key)
	}
	return o.def, nil
}

func (s *Settings) storeCache(key string, v any) {
	s.mu.Lock()
	s.cache[key] = v
	s.mu.Unlock()
}

// Keys returns the union of keys across all sources, memoized on first
// call. Keys appear in first-seen order scanning sources by priority, each
// source in its deterministic key order; case-insensitive instances report
// lower-cased keys. Mutating an underlying source mapping after the first
// call does not change the result.
func (s *Settings) Keys() []string {
	s.mu.RLock()
	if s.unionKeys != nil {
		out := append([]string(nil), s.unionKeys...)
		s.mu.RUnlock()
		return out
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unionKeys == nil {
		seen := make(map[string]struct{})
		union := make([]string, 0)
		for _, nm := range s.named {
			for _, k := range nm.keys {
				if !s.opts.CaseSensitive {
					k = strings.ToLower(k)
				}
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
				union = append(union, k)
			}
		}
		s.unionKeys = union
	}

	return append([]string(nil), s.unionKeys...)
}

// Len reports the number of distinct keys across all sources.
func (s *Settings) Len() int {
	return len(s.Keys())
}

// SourceNames returns the names of the registered sources in priority order.
func (s *Settings) SourceNames() []string {
	names := make([]string, len(s.named))
	for i, nm := range s.named {
		names[i] = nm.name
	}
	return names
}
