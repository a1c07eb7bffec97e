package corpus

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("uses defaults", func(t *testing.T) {
		g := New(Config{})
		assert.Equal(t, DefaultCount, g.Count())
		assert.Equal(t, DefaultNoiseMin, g.noiseMin)
		assert.Equal(t, DefaultNoiseMax, g.noiseMax)
		assert.NotZero(t, g.Seed())
	})

	t.Run("uses custom values", func(t *testing.T) {
		g := New(Config{Count: 7, Seed: 42, NoiseMin: 2, NoiseMax: 3})
		assert.Equal(t, 7, g.Count())
		assert.Equal(t, uint64(42), g.Seed())
		assert.Equal(t, 2, g.noiseMin)
		assert.Equal(t, 3, g.noiseMax)
	})
}

func TestGenerator_Generate(t *testing.T) {
	t.Run("produces configured count", func(t *testing.T) {
		prompts := New(Config{Count: 100, Seed: 1}).Generate()
		require.Len(t, prompts, 100)

		for i, p := range prompts {
			assert.Equal(t, i, p.Index)
			assert.NotEmpty(t, p.Record.Prompt)
			assert.Equal(t, strings.TrimSpace(p.Record.Prompt), p.Record.Prompt)
		}
	})

	t.Run("same seed gives same corpus", func(t *testing.T) {
		a := New(Config{Count: 200, Seed: 1234}).Generate()
		b := New(Config{Count: 200, Seed: 1234}).Generate()

		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("seeded corpora differ (-a +b):\n%s", diff)
		}
	})

	t.Run("different seeds diverge", func(t *testing.T) {
		a := New(Config{Count: 200, Seed: 1}).Generate()
		b := New(Config{Count: 200, Seed: 2}).Generate()

		assert.NotEqual(t, a, b)
	})
}

func TestGenerator_Distribution(t *testing.T) {
	const n = 20000
	tally := Summarize(New(Config{Count: n, Seed: 99}).Generate())
	require.Equal(t, n, tally.Total())

	tests := []struct {
		name  string
		count int
		want  float64
	}{
		{"short", tally.Short, 0.40},
		{"medium", tally.Medium, 0.35},
		{"long", tally.Long, 0.15},
		{"huge", tally.Huge, 0.10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := float64(tt.count) / n
			assert.InDelta(t, tt.want, got, 0.02)
		})
	}
}

func TestGenerator_SizeClasses(t *testing.T) {
	prompts := New(Config{Count: 2000, Seed: 7}).Generate()
	hugeBase := HugeBaseLen()

	t.Run("short and medium come from the pools", func(t *testing.T) {
		for _, p := range prompts {
			switch p.Class {
			case ClassShort:
				assert.Contains(t, shortPrompts, p.Record.Prompt)
			case ClassMedium:
				assert.Contains(t, mediumPrompts, p.Record.Prompt)
			}
		}
	})

	t.Run("long prompts carry their index", func(t *testing.T) {
		seen := map[string]bool{}
		for _, p := range prompts {
			if p.Class != ClassLong {
				continue
			}
			id := LongIdentifier(p.Index)
			assert.Contains(t, p.Record.Prompt, "name: "+id+"\n")
			assert.False(t, seen[p.Record.Prompt], "duplicate long prompt at %d", p.Index)
			seen[p.Record.Prompt] = true
		}
		assert.NotEmpty(t, seen)
	})

	t.Run("huge prompts grow with noise lines", func(t *testing.T) {
		var found int
		overhead := -1
		for _, p := range prompts {
			if p.Class != ClassHuge {
				continue
			}
			found++
			assert.GreaterOrEqual(t, p.NoiseLines, DefaultNoiseMin)
			assert.LessOrEqual(t, p.NoiseLines, DefaultNoiseMax)
			assert.Greater(t, len(p.Record.Prompt), hugeBase)

			// Length is a fixed base plus one noiseLine per drawn line.
			base := len(p.Record.Prompt) - p.NoiseLines*len(noiseLine)
			if overhead < 0 {
				overhead = base
			}
			assert.Equal(t, overhead, base)
			assert.GreaterOrEqual(t, base, hugeBase)
			assert.Equal(t, p.NoiseLines, strings.Count(p.Record.Prompt, "simulated repeating log noise"))
		}
		assert.NotZero(t, found)
	})
}

func TestLongIdentifier(t *testing.T) {
	assert.Equal(t, "deploy-using-helm-000", LongIdentifier(0))
	assert.Equal(t, "deploy-using-helm-007", LongIdentifier(7))
	assert.Equal(t, "deploy-using-helm-099", LongIdentifier(99))
	assert.Equal(t, "deploy-using-helm-1234", LongIdentifier(1234))
}

func TestTally(t *testing.T) {
	var tally Tally
	tally.Add(ClassShort)
	tally.Add(ClassShort)
	tally.Add(ClassMedium)
	tally.Add(ClassLong)
	tally.Add(ClassHuge)
	tally.Add(SizeClass("unknown"))

	assert.Equal(t, Tally{Short: 2, Medium: 1, Long: 1, Huge: 1}, tally)
	assert.Equal(t, 5, tally.Total())
}
