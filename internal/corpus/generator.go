// Package corpus synthesizes "historical prompt" datasets used to seed
// benchmark runs with a realistic mix of prompt sizes.
package corpus

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// SizeClass labels the size bucket a prompt was drawn from.
type SizeClass string

const (
	ClassShort  SizeClass = "short"
	ClassMedium SizeClass = "medium"
	ClassLong   SizeClass = "long"
	ClassHuge   SizeClass = "huge"
)

const (
	DefaultCount    = 100
	DefaultNoiseMin = 5
	DefaultNoiseMax = 50
)

// bucket maps a cumulative probability bound to a size class.
type bucket struct {
	class SizeClass
	upper float64
}

// distribution is 40% short, 35% medium, 15% long, 10% huge.
var distribution = []bucket{
	{ClassShort, 0.40},
	{ClassMedium, 0.75},
	{ClassLong, 0.90},
	{ClassHuge, 1.00},
}

// Record is one line of the output corpus.
type Record struct {
	Prompt string `json:"prompt"`
}

// Prompt is a generated record along with how it was produced.
type Prompt struct {
	Index      int
	Class      SizeClass
	NoiseLines int // only set for ClassHuge
	Record     Record
}

// Config holds generator configuration.
type Config struct {
	Count int
	// Seed makes output reproducible. Zero draws a fresh seed.
	Seed     uint64
	NoiseMin int
	NoiseMax int
}

// Generator draws prompts from the fixed pools.
type Generator struct {
	count    int
	seed     uint64
	rng      *rand.Rand
	noiseMin int
	noiseMax int
}

// New creates a new generator.
func New(cfg Config) *Generator {
	count := cfg.Count
	if count <= 0 {
		count = DefaultCount
	}

	noiseMin, noiseMax := cfg.NoiseMin, cfg.NoiseMax
	if noiseMin <= 0 {
		noiseMin = DefaultNoiseMin
	}
	if noiseMax < noiseMin {
		noiseMax = max(DefaultNoiseMax, noiseMin)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &Generator{
		count:    count,
		seed:     seed,
		rng:      rand.New(rand.NewPCG(seed, seed>>1|1)),
		noiseMin: noiseMin,
		noiseMax: noiseMax,
	}
}

// Seed returns the seed in use, so a run can be replayed.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Count returns the number of prompts Generate produces.
func (g *Generator) Count() int {
	return g.count
}

// Generate produces the full corpus.
func (g *Generator) Generate() []Prompt {
	prompts := make([]Prompt, 0, g.count)
	for i := 0; i < g.count; i++ {
		prompts = append(prompts, g.Next(i))
	}
	return prompts
}

// Next draws a single prompt for record index i.
func (g *Generator) Next(i int) Prompt {
	p := Prompt{Index: i, Class: g.drawClass()}

	var text string
	switch p.Class {
	case ClassShort:
		text = shortPrompts[g.rng.IntN(len(shortPrompts))]
	case ClassMedium:
		text = mediumPrompts[g.rng.IntN(len(mediumPrompts))]
	case ClassLong:
		text = strings.Replace(longTaskTemplate, longTaskIdentifier, LongIdentifier(i), 1)
	case ClassHuge:
		p.NoiseLines = g.noiseMin + g.rng.IntN(g.noiseMax-g.noiseMin+1)
		text = hugeTraceTemplate + strings.Repeat(noiseLine, p.NoiseLines)
	}

	p.Record = Record{Prompt: strings.TrimSpace(text)}
	return p
}

func (g *Generator) drawClass() SizeClass {
	u := g.rng.Float64()
	for _, b := range distribution {
		if u < b.upper {
			return b.class
		}
	}
	return ClassHuge
}

// LongIdentifier returns the rewritten task name for record index i.
func LongIdentifier(i int) string {
	return fmt.Sprintf("%s-%03d", longTaskIdentifier, i)
}

// HugeBaseLen is the length of the trimmed huge template without noise.
func HugeBaseLen() int {
	return len(strings.TrimSpace(hugeTraceTemplate))
}

// Tally counts prompts per size class.
type Tally struct {
	Short  int
	Medium int
	Long   int
	Huge   int
}

// Add counts one prompt of the given class.
func (t *Tally) Add(class SizeClass) {
	switch class {
	case ClassShort:
		t.Short++
	case ClassMedium:
		t.Medium++
	case ClassLong:
		t.Long++
	case ClassHuge:
		t.Huge++
	}
}

// Total returns the number of prompts counted.
func (t Tally) Total() int {
	return t.Short + t.Medium + t.Long + t.Huge
}

// Summarize tallies prompts by size class.
func Summarize(prompts []Prompt) Tally {
	var t Tally
	for _, p := range prompts {
		t.Add(p.Class)
	}
	return t
}
