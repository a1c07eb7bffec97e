package results

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const lmEvalJSON = `{
  "results": {
    "hellaswag": {"alias": "hellaswag", "acc,none": 0.5012, "acc_stderr,none": 0.0049}
  },
  "config": {"model": "vllm", "batch_size": 8},
  "n-shot": {"hellaswag": 0},
  "total_evaluation_time_seconds": "812.41"
}`

const benchmarkYAML = `benchmarks:
  - args:
      strategy_index: 0
      strategy:
        type_: synchronous
    duration: 30.25
    request_totals:
      successful: 120
      errored: 0
    metrics:
      time_to_first_token_ms:
        total:
          mean: 41.2
          median: 39.9
          percentiles:
            p99: 88.1
`

func TestClassify(t *testing.T) {
	t.Run("lm-eval json", func(t *testing.T) {
		env, err := Classify("lm-eval.json", []byte(lmEvalJSON))
		require.NoError(t, err)

		assert.Equal(t, FileTypeLMEval, env.FileType)
		assert.Equal(t, "lm-eval.json", env.FileName)

		var want any
		require.NoError(t, json.Unmarshal([]byte(lmEvalJSON), &want))
		if diff := cmp.Diff(want, roundTrip(t, env.Data)); diff != "" {
			t.Errorf("data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("benchmark yaml", func(t *testing.T) {
		env, err := Classify("run.yaml", []byte(benchmarkYAML))
		require.NoError(t, err)

		assert.Equal(t, FileTypeBenchmark, env.FileType)
		assert.Equal(t, "run.yaml", env.FileName)

		doc, ok := env.Data.(map[string]any)
		require.True(t, ok)
		benchmarks, ok := doc["benchmarks"].([]any)
		require.True(t, ok)
		require.Len(t, benchmarks, 1)
	})

	t.Run("benchmark json falls through to yaml", func(t *testing.T) {
		content := `{"benchmarks": [{"duration": 1.5}], "metadata": {"version": 1}}`
		env, err := Classify("run.json", []byte(content))
		require.NoError(t, err)

		assert.Equal(t, FileTypeBenchmark, env.FileType)

		var want any
		require.NoError(t, json.Unmarshal([]byte(content), &want))
		if diff := cmp.Diff(want, roundTrip(t, env.Data)); diff != "" {
			t.Errorf("data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("lm-eval wins when both shapes present", func(t *testing.T) {
		content := `{"results": {}, "config": {}, "benchmarks": []}`
		env, err := Classify("both.json", []byte(content))
		require.NoError(t, err)
		assert.Equal(t, FileTypeLMEval, env.FileType)
	})

	t.Run("lm-eval keys in yaml are not lm-eval", func(t *testing.T) {
		content := "results: {}\nconfig: {}\n"
		_, err := Classify("lm.yaml", []byte(content))
		assert.ErrorIs(t, err, ErrUnknownStructure)
	})

	t.Run("unknown structure", func(t *testing.T) {
		_, err := Classify("foo.json", []byte(`{"foo": 1}`))
		require.ErrorIs(t, err, ErrUnknownStructure)
		assert.Contains(t, err.Error(), "benchmarks")
		assert.Contains(t, err.Error(), "'results' and 'config'")
	})

	t.Run("results without config", func(t *testing.T) {
		_, err := Classify("partial.json", []byte(`{"results": {}}`))
		assert.ErrorIs(t, err, ErrUnknownStructure)
	})

	t.Run("json with duplicate keys falls through to benchmark", func(t *testing.T) {
		env, err := Classify("dup.json", []byte(`{"benchmarks": [], "x": 1, "x": 2}`))
		require.NoError(t, err)
		assert.Equal(t, FileTypeBenchmark, env.FileType)
	})

	t.Run("json with duplicate keys and no known shape", func(t *testing.T) {
		_, err := Classify("dup.json", []byte(`{"foo": 1, "foo": 2}`))
		assert.ErrorIs(t, err, ErrUnknownStructure)
	})

	t.Run("bare NaN is not json", func(t *testing.T) {
		content := `{"results": {"arc": {"acc_stderr,none": NaN}}, "config": {}}`
		_, err := Classify("nan.json", []byte(content))
		assert.ErrorIs(t, err, ErrUnknownStructure)
	})

	t.Run("top-level list", func(t *testing.T) {
		_, err := Classify("list.json", []byte(`[{"benchmarks": []}]`))
		assert.ErrorIs(t, err, ErrUnknownStructure)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := Classify("empty.yaml", []byte(""))
		assert.ErrorIs(t, err, ErrUnknownStructure)
	})

	t.Run("plain scalar", func(t *testing.T) {
		_, err := Classify("scalar.txt", []byte("just some text"))
		assert.ErrorIs(t, err, ErrUnknownStructure)
	})

	t.Run("invalid json and yaml", func(t *testing.T) {
		_, err := Classify("broken.yaml", []byte("benchmarks: a: b\n"))
		require.Error(t, err)

		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "YAML", perr.Format)
		assert.Contains(t, err.Error(), "parse YAML")
		assert.False(t, errors.Is(err, ErrUnknownStructure))
	})
}

func TestClassifier_CustomRules(t *testing.T) {
	t.Run("stops at first match", func(t *testing.T) {
		var calls []string
		rule := func(name string, match bool) Rule {
			return Rule{
				Format: name,
				Parse: func(b []byte) (any, error) {
					calls = append(calls, name)
					return string(b), nil
				},
				Match: func(any) bool { return match },
				Type:  FileType(name),
			}
		}

		c := NewClassifier(rule("a", false), rule("b", true), rule("c", true))
		env, err := c.Classify("x", []byte("x"))
		require.NoError(t, err)

		assert.Equal(t, FileType("b"), env.FileType)
		assert.Equal(t, []string{"a", "b"}, calls)
	})

	t.Run("lenient parse errors fall through", func(t *testing.T) {
		failing := Rule{
			Format: "never",
			Parse:  func([]byte) (any, error) { return nil, errors.New("boom") },
			Match:  func(any) bool { return true },
			Type:   "never",
		}
		c := NewClassifier(failing)

		_, err := c.Classify("x", []byte("x"))
		assert.ErrorIs(t, err, ErrUnknownStructure)
	})
}

func TestHasKeys(t *testing.T) {
	tests := []struct {
		name string
		doc  any
		keys []string
		want bool
	}{
		{"all present", map[string]any{"a": 1, "b": nil}, []string{"a", "b"}, true},
		{"one missing", map[string]any{"a": 1}, []string{"a", "b"}, false},
		{"not a map", []any{"a", "b"}, []string{"a"}, false},
		{"nil", nil, []string{"a"}, false},
		{"no keys", map[string]any{}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasKeys(tt.keys...)(tt.doc))
		})
	}
}

func TestParseJSON(t *testing.T) {
	t.Run("keeps number text", func(t *testing.T) {
		doc, err := ParseJSON([]byte(`{"n": 12345678901234567890, "f": 0.10}`))
		require.NoError(t, err)

		out, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.JSONEq(t, `{"n": 12345678901234567890, "f": 0.10}`, string(out))
		assert.Contains(t, string(out), "12345678901234567890")
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		_, err := ParseJSON([]byte(`{"a": 1} {"b": 2}`))
		assert.Error(t, err)
	})

	t.Run("allows trailing whitespace", func(t *testing.T) {
		_, err := ParseJSON([]byte("{\"a\": 1}\n\n"))
		assert.NoError(t, err)
	})

	t.Run("rejects yaml", func(t *testing.T) {
		_, err := ParseJSON([]byte("a: 1\n"))
		assert.Error(t, err)
	})
}

func TestParseYAML(t *testing.T) {
	t.Run("normalizes non-string keys", func(t *testing.T) {
		doc, err := ParseYAML([]byte("benchmarks:\n  - 1: one\n    true: yes\n"))
		require.NoError(t, err)

		out, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.JSONEq(t, `{"benchmarks": [{"1": "one", "true": "yes"}]}`, string(out))
	})

	t.Run("accepts json text", func(t *testing.T) {
		doc, err := ParseYAML([]byte(`{"benchmarks": [1, 2]}`))
		require.NoError(t, err)
		assert.True(t, HasKeys("benchmarks")(doc))
	})

	t.Run("json with duplicate keys keeps the last", func(t *testing.T) {
		doc, err := ParseYAML([]byte(`{"benchmarks": [], "x": 1, "x": 2}`))
		require.NoError(t, err)

		m, ok := doc.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, json.Number("2"), m["x"])
	})

	t.Run("duplicate keys in yaml text", func(t *testing.T) {
		_, err := ParseYAML([]byte("benchmarks: []\nx: 1\nx: 2\n"))
		assert.Error(t, err)
	})
}

// roundTrip re-encodes v the way the relay does and decodes it generically.
func roundTrip(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}
