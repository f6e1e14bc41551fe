package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// RuleConfig is a rule set loaded from a YAML file.
//
//	sheet_label: Mapping Sheet
//	columns:
//	  col0:
//	    - kind: required
//	  col1:
//	    - kind: format
//	      format: enum
//	      values: [Active, Inactive]
//	    - kind: custom
//	      reject_contains: ERROR
type RuleConfig struct {
	SheetLabel string
	Rules      RuleSet
}

// Validator builds a validator from the config.
func (c *RuleConfig) Validator() *Validator {
	return NewValidator(c.Rules, c.SheetLabel)
}

// ruleFileYAML is the on-disk shape; unknown fields are rejected.
type ruleFileYAML struct {
	SheetLabel string                    `yaml:"sheet_label"`
	Columns    map[string][]ruleSpecYAML `yaml:"columns"`
}

type ruleSpecYAML struct {
	Kind           RuleKind `yaml:"kind"`
	Message        string   `yaml:"message"`
	Fix            string   `yaml:"fix"`
	Example        string   `yaml:"example"`
	Format         Format   `yaml:"format"`
	Pattern        string   `yaml:"pattern"`
	Values         []string `yaml:"values"`
	Min            *float64 `yaml:"min"`
	Max            *float64 `yaml:"max"`
	RejectContains string   `yaml:"reject_contains"`
}

// RuleFileError reports an invalid rule definition.
type RuleFileError struct {
	Column string
	Index  int
	Msg    string
}

func (e *RuleFileError) Error() string {
	return fmt.Sprintf("rules: column %s rule %d: %s", e.Column, e.Index+1, e.Msg)
}

// LoadRuleSet reads a YAML rule file from disk.
func LoadRuleSet(path string) (*RuleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	cfg, err := ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseRuleSet decodes a YAML rule file. An empty document yields an
// empty rule set.
func ParseRuleSet(data []byte) (*RuleConfig, error) {
	var raw ruleFileYAML
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("rules: invalid YAML: %w", err)
	}

	rules := RuleSet{}
	for key, specs := range raw.Columns {
		for i, spec := range specs {
			rule, err := spec.build()
			if err != nil {
				return nil, &RuleFileError{Column: key, Index: i, Msg: err.Error()}
			}
			rules.Add(key, rule)
		}
	}

	return &RuleConfig{SheetLabel: raw.SheetLabel, Rules: rules}, nil
}

// build turns a spec into a Rule, starting from the matching constructor so
// unset messages and suggestions get sensible defaults.
func (s ruleSpecYAML) build() (Rule, error) {
	var rule Rule

	switch s.Kind {
	case RuleRequired:
		rule = Required()

	case RuleFormat:
		switch s.Format {
		case FormatNumber:
			rule = Number()
		case FormatDate:
			rule = Date()
		case FormatEmail:
			rule = Email()
		case FormatBool:
			rule = Bool()
		case FormatEnum:
			if len(s.Values) == 0 {
				return Rule{}, errors.New("enum format needs values")
			}
			rule = OneOf(s.Values...)
		case FormatPattern:
			re, err := regexp.Compile(s.Pattern)
			if err != nil {
				return Rule{}, fmt.Errorf("bad pattern: %w", err)
			}
			msg := s.Message
			if msg == "" {
				msg = "Value does not match the expected format"
			}
			rule = Pattern(re, msg)
		default:
			return Rule{}, fmt.Errorf("unknown format %q", s.Format)
		}

	case RuleRange:
		if s.Min == nil && s.Max == nil {
			return Rule{}, errors.New("range needs min or max")
		}
		rule = rangeRule(s.Min, s.Max)

	case RuleCustom:
		if s.RejectContains == "" {
			return Rule{}, errors.New("custom rules in files need reject_contains")
		}
		rule = Rejects(s.RejectContains)

	case "":
		return Rule{}, errors.New("missing kind")
	default:
		return Rule{}, fmt.Errorf("unknown kind %q", s.Kind)
	}

	if s.Message != "" {
		rule.Message = s.Message
	}
	if s.Fix != "" {
		rule.Fix = s.Fix
	}
	if s.Example != "" {
		rule.Example = s.Example
	}
	return rule, nil
}

// rangeRule builds a range rule with optional bounds.
func rangeRule(lo, hi *float64) Rule {
	if lo != nil && hi != nil {
		return Between(*lo, *hi)
	}
	r := Rule{Kind: RuleRange, Min: lo, Max: hi}
	if lo != nil {
		r.Message = fmt.Sprintf("Must be a number of at least %g", *lo)
		r.Fix = fmt.Sprintf("Enter a number no smaller than %g", *lo)
		r.Example = fmt.Sprintf("%g", *lo)
	} else {
		r.Message = fmt.Sprintf("Must be a number of at most %g", *hi)
		r.Fix = fmt.Sprintf("Enter a number no larger than %g", *hi)
		r.Example = fmt.Sprintf("%g", *hi)
	}
	return r
}
