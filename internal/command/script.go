package command

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Script is a timed command sequence for unattended runs.
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`

	next int
}

// Step fires Command once control time reaches At seconds.
type Step struct {
	At      float64 `yaml:"at"`
	Command Token   `yaml:"command"`
}

// LoadScript reads a yaml script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range s.Steps {
		if st.At < 0 {
			return nil, fmt.Errorf("step %d: negative time %v", i+1, st.At)
		}
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	return &s, nil
}

// Poll returns, once and in order, every step due at or before t.
func (s *Script) Poll(t float64) []Token {
	var out []Token
	for s.next < len(s.Steps) && s.Steps[s.next].At <= t {
		out = append(out, s.Steps[s.next].Command)
		s.next++
	}
	return out
}

// Done reports whether every step has fired.
func (s *Script) Done() bool { return s.next >= len(s.Steps) }

// Reset rewinds the script to its first step.
func (s *Script) Reset() { s.next = 0 }
