package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBool(t *testing.T) {
	s := newTestSettings(t, Map(map[string]any{
		"native":    true,
		"true_word": "true",
		"true_t":    "T",
		"true_one":  " 1 ",
		"false_f":   "F",
		"false_0":   "0",
		"none":      "none",
		"null":      "NULL",
		"empty":     "",
		"junk":      "yes",
		"zero_int":  0,
		"five":      5,
	}))

	trueKeys := []string{"native", "true_word", "true_t", "true_one", "five"}
	for _, key := range trueKeys {
		v, err := s.Bool(key)
		require.NoError(t, err, key)
		assert.True(t, v, key)
	}

	falseKeys := []string{"false_f", "false_0", "none", "null", "empty", "zero_int"}
	for _, key := range falseKeys {
		v, err := s.Bool(key)
		require.NoError(t, err, key)
		assert.False(t, v, key)
	}

	_, err := s.Bool("junk")
	var cerr *CoercionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "junk", cerr.Key)
}

func TestInt64(t *testing.T) {
	s := newTestSettings(t, Map(map[string]any{
		"str":   "42",
		"int":   42,
		"float": 3.9,
		"fstr":  "3.5",
		"hex":   "0x10",
		"bad":   "abc",
	}))

	tests := []struct {
		key  string
		want int64
	}{
		{"str", 42},
		{"int", 42},
		{"float", 3},
		{"fstr", 3},
		{"hex", 16},
	}
	for _, tt := range tests {
		v, err := s.Int64(tt.key)
		require.NoError(t, err, tt.key)
		assert.Equal(t, tt.want, v, tt.key)
	}

	_, err := s.Int64("bad")
	var cerr *CoercionError
	assert.ErrorAs(t, err, &cerr)
}

func TestFloat64(t *testing.T) {
	s := newTestSettings(t, Map(map[string]any{
		"str": "3.14",
		"int": 2,
		"bad": "abc",
	}))

	v, err := s.Float64("str")
	require.NoError(t, err)
	assert.Equal(t, 3.14, v)

	v, err = s.Float64("int")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	_, err = s.Float64("bad")
	var cerr *CoercionError
	assert.ErrorAs(t, err, &cerr)
}

func TestString(t *testing.T) {
	s := newTestSettings(t, Map(map[string]any{
		"str":   "hello",
		"int":   42,
		"bool":  true,
		"float": 1.5,
	}))

	tests := []struct {
		key  string
		want string
	}{
		{"str", "hello"},
		{"int", "42"},
		{"bool", "true"},
		{"float", "1.5"},
	}
	for _, tt := range tests {
		v, err := s.String(tt.key)
		require.NoError(t, err, tt.key)
		assert.Equal(t, tt.want, v, tt.key)
	}
}

func TestList(t *testing.T) {
	s := newTestSettings(t, Map(map[string]any{
		"csv":       "1, 2, 3",
		"bracketed": "[1,2,3]",
		"yaml_list": "[a, b, c]",
		"piped":     "a|b| c",
		"ready":     []any{"x", "y"},
		"strings":   []string{"p", "q"},
		"scalar":    7,
	}))

	t.Run("DelimiterSplit", func(t *testing.T) {
		v, err := s.List("csv")
		require.NoError(t, err)
		assert.Equal(t, []any{"1", "2", "3"}, v)
	})

	t.Run("BracketedStructuredDecode", func(t *testing.T) {
		v, err := s.List("bracketed")
		require.NoError(t, err)
		assert.Equal(t, []any{float64(1), float64(2), float64(3)}, v)
	})

	t.Run("BracketedYAMLFallback", func(t *testing.T) {
		v, err := s.List("yaml_list")
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b", "c"}, v)
	})

	t.Run("CustomDelimiter", func(t *testing.T) {
		v, err := s.List("piped", Delimiter("|"))
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b", "c"}, v)
	})

	t.Run("SequencePassthrough", func(t *testing.T) {
		v, err := s.List("ready")
		require.NoError(t, err)
		assert.Equal(t, []any{"x", "y"}, v)
	})

	t.Run("TypedSliceConverted", func(t *testing.T) {
		v, err := s.List("strings")
		require.NoError(t, err)
		assert.Equal(t, []any{"p", "q"}, v)
	})

	t.Run("ScalarFails", func(t *testing.T) {
		_, err := s.List("scalar")
		var cerr *CoercionError
		assert.ErrorAs(t, err, &cerr)
	})
}

func TestSerialized(t *testing.T) {
	ready := map[string]any{"k": "v"}
	s := newTestSettings(t, Map(map[string]any{
		"json":  `{"a": 1}`,
		"yaml":  "a: 1\nb: 2",
		"ready": ready,
		"bad":   "{bad: [",
	}))

	t.Run("StrictJSON", func(t *testing.T) {
		v, err := s.Dict("json")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": float64(1)}, v)
	})

	t.Run("PermissiveYAML", func(t *testing.T) {
		v, err := s.Dict("yaml")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1, "b": 2}, v)
	})

	t.Run("MappingPassthrough", func(t *testing.T) {
		v, err := s.Serialized("ready")
		require.NoError(t, err)
		assert.Equal(t, ready, v)
	})

	t.Run("Unparseable", func(t *testing.T) {
		_, err := s.Serialized("bad")
		var cerr *CoercionError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "bad", cerr.Key)
	})
}

func TestURL(t *testing.T) {
	s := newTestSettings(t, Map(map[string]any{
		"uri": "https://user@example.com:8080/path?q=1#frag",
		"bad": "%zz",
	}))

	u, err := s.URL("uri")
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "example.com:8080", u.Host)
	assert.Equal(t, "/path", u.Path)
	assert.Equal(t, "q=1", u.RawQuery)
	assert.Equal(t, "frag", u.Fragment)

	_, err = s.URL("bad")
	var cerr *CoercionError
	assert.ErrorAs(t, err, &cerr)
}

// TestMissingTypedAccessors verifies that typed accessors share the
// resolver's missing-key policy and return zero values for absent keys.
func TestMissingTypedAccessors(t *testing.T) {
	s := newTestSettings(t, Map(map[string]any{"present": 1}))

	b, err := s.Bool("absent", WarnMissing(false))
	require.NoError(t, err)
	assert.False(t, b)

	i, err := s.Int64("absent", WarnMissing(false))
	require.NoError(t, err)
	assert.Zero(t, i)

	_, err = s.Int64("absent", RaiseMissing(true))
	assert.ErrorIs(t, err, ErrMissingSetting)
}
