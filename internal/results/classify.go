// Package results recognizes benchmark result documents and wraps them in
// a tagged envelope for the charting page.
package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// FileType tags which document shape matched.
type FileType string

const (
	// FileTypeLMEval is an lm-evaluation-harness report: top-level
	// "results" and "config" keys.
	FileTypeLMEval FileType = "lm-eval"
	// FileTypeBenchmark is a load-test report: top-level "benchmarks" key.
	FileTypeBenchmark FileType = "benchmark"
)

// ErrUnknownStructure is returned when no rule matches the document.
var ErrUnknownStructure = errors.New("unknown file structure: expected 'benchmarks' key (for YAML) or 'results' and 'config' keys (for JSON)")

// ParseError reports a syntax error from a rule whose parse failures are
// not allowed to fall through.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Envelope is a classified document.
type Envelope struct {
	FileType FileType `json:"fileType"`
	Data     any      `json:"data"`
	FileName string   `json:"fileName"`
}

// Rule pairs a parser with a shape predicate.
type Rule struct {
	Format string
	Parse  func([]byte) (any, error)
	Match  func(any) bool
	Type   FileType
	// Strict rules surface parse errors instead of moving to the next rule.
	Strict bool
}

// DefaultRules tries JSON for lm-eval first, then YAML for benchmark.
// A document that parses as JSON but lacks the lm-eval keys still reaches
// the YAML rule, which accepts JSON text as well.
var DefaultRules = []Rule{
	{
		Format: "JSON",
		Parse:  ParseJSON,
		Match:  HasKeys("results", "config"),
		Type:   FileTypeLMEval,
	},
	{
		Format: "YAML",
		Parse:  ParseYAML,
		Match:  HasKeys("benchmarks"),
		Type:   FileTypeBenchmark,
		Strict: true,
	},
}

// Classifier evaluates rules in order and stops at the first match.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier. With no rules, DefaultRules are used.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify parses content and returns the envelope of the first matching
// rule. It returns a *ParseError when a strict rule cannot parse content
// and ErrUnknownStructure when nothing matches.
func (c *Classifier) Classify(fileName string, content []byte) (*Envelope, error) {
	for _, rule := range c.rules {
		doc, err := rule.Parse(content)
		if err != nil {
			if rule.Strict {
				return nil, &ParseError{Format: rule.Format, Err: err}
			}
			continue
		}
		if rule.Match(doc) {
			return &Envelope{
				FileType: rule.Type,
				Data:     doc,
				FileName: fileName,
			}, nil
		}
	}
	return nil, ErrUnknownStructure
}

// Classify runs DefaultRules against content.
func Classify(fileName string, content []byte) (*Envelope, error) {
	return NewClassifier().Classify(fileName, content)
}

// HasKeys returns a predicate that holds for mappings containing every key.
func HasKeys(keys ...string) func(any) bool {
	return func(doc any) bool {
		m, ok := doc.(map[string]any)
		if !ok {
			return false
		}
		for _, k := range keys {
			if _, ok := m[k]; !ok {
				return false
			}
		}
		return true
	}
}

// ParseJSON decodes a single JSON value. Numbers are kept as json.Number so
// they re-encode exactly as written.
func ParseJSON(content []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return doc, nil
}

// ParseYAML decodes the first YAML document. Mappings are converted to
// map[string]any so the result can be encoded as JSON.
//
// Text that is already valid JSON is decoded as JSON: yaml.v3 rejects
// duplicate mapping keys, which JSON allows with the last one winning.
func ParseYAML(content []byte) (any, error) {
	if doc, err := ParseJSON(content); err == nil {
		return doc, nil
	}

	var doc any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	return normalize(doc), nil
}

func normalize(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		for k, val := range vv {
			vv[k] = normalize(val)
		}
		return vv
	case map[any]any:
		m := make(map[string]any, len(vv))
		for k, val := range vv {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []any:
		for i, val := range vv {
			vv[i] = normalize(val)
		}
		return vv
	default:
		return v
	}
}
