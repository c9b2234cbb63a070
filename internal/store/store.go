// Package store loads and filters the user-maintained watch list.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Symbol is one tracked security from the symbol store. The store is
// maintained by the user out of band; this tool only reads it.
type Symbol struct {
	Code      string  `yaml:"code"`
	Name      string  `yaml:"name"`
	Target    float64 `yaml:"target"`
	Cheap     float64 `yaml:"cheap"`
	Expensive float64 `yaml:"expensive"`
	Star      float64 `yaml:"star"`
	Watch     bool    `yaml:"watch"`
	Hold      bool    `yaml:"hold"`
	Comment   string  `yaml:"comment"`
}

type document struct {
	Symbols []Symbol `yaml:"symbols"`
}

// DuplicateCodeError reports a symbol code that occurs more than once.
type DuplicateCodeError struct {
	Code  string
	Count int
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("symbol %s is duplicate, %d stocks share the same code", e.Code, e.Count)
}

// Load reads the symbol store document and validates code uniqueness.
func Load(path string) ([]Symbol, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse symbol file %s: %w", path, err)
	}

	if err := CheckDuplicates(doc.Symbols); err != nil {
		return nil, err
	}
	return doc.Symbols, nil
}

// CheckDuplicates returns a DuplicateCodeError for the first code that
// occurs more than once in the store.
func CheckDuplicates(syms []Symbol) error {
	counter := make(map[string]int, len(syms))
	for _, s := range syms {
		counter[s.Code]++
	}
	for _, s := range syms {
		if n := counter[s.Code]; n > 1 {
			return &DuplicateCodeError{Code: s.Code, Count: n}
		}
	}
	return nil
}

// LoadMarginSet reads the margin-eligibility document, a JSON object keyed
// by security code. Any code present in the object is eligible.
func LoadMarginSet(path string) (map[string]bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read margin file: %w", err)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse margin file %s: %w", path, err)
	}

	set := make(map[string]bool, len(entries))
	for code := range entries {
		set[code] = true
	}
	return set, nil
}
