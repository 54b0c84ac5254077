package settings

import (
	"fmt"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// ValidatorFunc validates a fully constructed Settings instance.
type ValidatorFunc func(s *Settings) error

// Builder provides a fluent interface for building Settings instances.
type Builder struct {
	opts       Options
	sources    []Source
	validators []ValidatorFunc
}

// NewBuilder creates a settings builder with default options.
func NewBuilder() *Builder {
	return &Builder{
		opts: DefaultOptions(),
	}
}

// WithSources appends declared sources, resolved after the search-first list.
func (b *Builder) WithSources(sources ...Source) *Builder {
	b.sources = append(b.sources, sources...)
	return b
}

// WithSearchFirst replaces the search-first source list.
func (b *Builder) WithSearchFirst(sources ...Source) *Builder {
	b.opts.SearchFirst = append([]Source{}, sources...)
	return b
}

// WithCaseSensitive sets the default key comparison mode.
func (b *Builder) WithCaseSensitive(v bool) *Builder {
	b.opts.CaseSensitive = v
	return b
}

// WithRaiseMissing sets the default raise-on-missing policy.
func (b *Builder) WithRaiseMissing(v bool) *Builder {
	b.opts.RaiseMissing = v
	return b
}

// WithWarnMissing sets the default warn-on-missing policy.
func (b *Builder) WithWarnMissing(v bool) *Builder {
	b.opts.WarnMissing = v
	return b
}

// WithEnvURIKey sets the environment variable checked for a settings URI.
func (b *Builder) WithEnvURIKey(key string) *Builder {
	b.opts.EnvURIKey = key
	return b
}

// WithMapURIKey sets the indirection key checked in map sources.
func (b *Builder) WithMapURIKey(key string) *Builder {
	b.opts.MapURIKey = key
	return b
}

// WithObjectURIKey sets the indirection field checked in object sources.
func (b *Builder) WithObjectURIKey(key string) *Builder {
	b.opts.ObjectURIKey = key
	return b
}

// WithEnviron supplies an explicit environment snapshot.
func (b *Builder) WithEnviron(environ map[string]string) *Builder {
	b.opts.Environ = environ
	return b
}

// WithCPUCount overrides the detected core count used by NJobs.
func (b *Builder) WithCPUCount(n int) *Builder {
	b.opts.CPUCount = n
	return b
}

// WithLogger sets the logger receiving debug output and diagnostics.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.opts.Logger = log
	return b
}

// WithHTTPClient sets the client used to fetch http(s) locations.
func (b *Builder) WithHTTPClient(client *retryablehttp.Client) *Builder {
	b.opts.HTTPClient = client
	return b
}

// WithValidator adds a validation function that runs after construction.
// Multiple validators execute in the order they were added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build resolves all sources and runs the validators.
func (b *Builder) Build() (*Settings, error) {
	s, err := NewWithOptions(b.opts, b.sources...)
	if err != nil {
		return nil, err
	}

	for _, validator := range b.validators {
		if err := validator(s); err != nil {
			return nil, fmt.Errorf("settings validation failed: %w", err)
		}
	}

	return s, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Settings {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("settings build failed: %v", err))
	}
	return s
}
