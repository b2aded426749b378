package config

import (
	"github.com/hashicorp/hcl/v2"
)

// Model is the format-agnostic representation of a complete pipeline
// definition: the candidate storage roots plus the ordered step catalog.
type Model struct {
	Name  string
	Roots []string
	Steps []*Step

	byKey map[string]*Step
}

// Step is the format-agnostic representation of a `step` block. The path,
// command and instruction attributes stay unevaluated until a run supplies
// the period and storage root through an eval context.
type Step struct {
	Key     string
	Ordinal int

	Description  string
	Command      hcl.Expression
	Inputs       hcl.Expression
	Outputs      hcl.Expression
	Instructions hcl.Expression
	DependsOn    []string

	// Manual marks a human-gated step: it has no command and the run pauses
	// on it until timestamp evidence shows the operator acted.
	Manual bool

	// Optional marks a step whose inputs may be entirely absent for a given
	// period without failing the run.
	Optional bool
}

// NewModel builds a Model from an ordered step list and indexes it by key.
func NewModel(name string, roots []string, steps []*Step) *Model {
	m := &Model{
		Name:  name,
		Roots: roots,
		Steps: steps,
		byKey: make(map[string]*Step, len(steps)),
	}
	for i, s := range steps {
		s.Ordinal = i
		m.byKey[s.Key] = s
	}
	return m
}

// Step returns the step with the given key, if it exists.
func (m *Model) Step(key string) (*Step, bool) {
	s, ok := m.byKey[key]
	return s, ok
}
