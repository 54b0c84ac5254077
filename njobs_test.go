package settings

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseNJobsStrings(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"4", 4},
		{"n", 8},
		{"2n", 16},
		{"2*n", 16},
		{"2 * n", 16},
		{"0.5n", 4},
		{"0.5*n", 4},
		{"0.5 * n", 4},
		// A fractional coefficient is CPU-relative even without "n".
		{"0.5", 4},
		{"0.25", 2},
		{"1", 1},
		{"1.5n", 12},
		// int(2.5) truncates before use as an absolute count.
		{"2.5", 2},
		{" 2n ", 16},
		{"", 1},
		{"0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNJobsWith(tt.in, 8)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNJobsNumbers(t *testing.T) {
	got, err := ParseNJobsWith(4, 8)
	require.NoError(t, err)
	assert.Equal(t, 4, got)

	// Large absolute counts are not capped.
	got, err = ParseNJobsWith(100, 8)
	require.NoError(t, err)
	assert.Equal(t, 100, got)

	// Floats truncate toward zero.
	got, err = ParseNJobsWith(2.7, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	// Zero and below clamp to 1.
	got, err = ParseNJobsWith(-1, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = ParseNJobsWith(0.0, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestParseNJobsErrors(t *testing.T) {
	for _, in := range []string{"abc", "1.2.3", ".", "n2", "two*n", "-1"} {
		_, err := ParseNJobsWith(in, 8)
		assert.Error(t, err, "input %q", in)
	}

	_, err := ParseNJobsWith(struct{}{}, 8)
	assert.Error(t, err)
}

func TestNJobsAccessor(t *testing.T) {
	opts := testOptions()
	opts.CPUCount = 8
	s, err := NewWithOptions(opts, Map(map[string]any{
		"jobs":   "2n",
		"half":   "0.5n",
		"zero":   "0",
		"absurd": "bogus",
	}))
	require.NoError(t, err)

	n, err := s.NJobs("jobs")
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	n, err = s.NJobs("half")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = s.NJobs("zero")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.NJobs("absurd")
	var cerr *CoercionError
	assert.ErrorAs(t, err, &cerr)

	var kinds []DiagKind
	for _, d := range s.Diagnostics() {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, DiagJobsOversubscribed)
	assert.Contains(t, kinds, DiagJobsClamped)
}

// Property: an absolute integer expression always parses to itself, and
// every successful parse yields at least one job.
func TestParseNJobsProperties(t *testing.T) {
	t.Run("AbsoluteIntegersRoundTrip", rapid.MakeCheck(func(t *rapid.T) {
		k := rapid.IntRange(1, 1<<20).Draw(t, "k")
		cores := rapid.IntRange(1, 256).Draw(t, "cores")

		got, err := ParseNJobsWith(strconv.Itoa(k), cores)
		if err != nil {
			t.Fatalf("ParseNJobsWith(%d): %v", k, err)
		}
		if got != k {
			t.Fatalf("ParseNJobsWith(%d) = %d", k, got)
		}
	}))

	t.Run("ResultAlwaysPositive", rapid.MakeCheck(func(t *rapid.T) {
		k := rapid.IntRange(-1<<20, 1<<20).Draw(t, "k")
		cores := rapid.IntRange(1, 256).Draw(t, "cores")

		got, err := ParseNJobsWith(k, cores)
		if err != nil {
			t.Fatalf("ParseNJobsWith(%d): %v", k, err)
		}
		if got < 1 {
			t.Fatalf("ParseNJobsWith(%d) = %d, want >= 1", k, got)
		}
	}))

	t.Run("ScaledExpressionsScaleWithCores", rapid.MakeCheck(func(t *rapid.T) {
		mult := rapid.IntRange(1, 8).Draw(t, "mult")
		cores := rapid.IntRange(1, 64).Draw(t, "cores")

		got, err := ParseNJobsWith(strconv.Itoa(mult)+"n", cores)
		if err != nil {
			t.Fatalf("ParseNJobsWith(%dn): %v", mult, err)
		}
		if got != mult*cores {
			t.Fatalf("ParseNJobsWith(%dn) with %d cores = %d, want %d", mult, cores, got, mult*cores)
		}
	}))
}
