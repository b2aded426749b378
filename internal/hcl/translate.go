package hcl

import (
	"fmt"

	"github.com/kbbdata/fecho/internal/config"
	"github.com/kbbdata/fecho/internal/schema"
)

// translate converts the HCL-specific pipeline schema into the agnostic
// model, enforcing the structural rules the executor relies on.
func translate(p *schema.Pipeline) (*config.Model, error) {
	if p.Storage == nil || len(p.Storage.Roots) == 0 {
		return nil, fmt.Errorf("pipeline %q: storage block with at least one root is required", p.Name)
	}
	if len(p.Steps) == 0 {
		return nil, fmt.Errorf("pipeline %q: at least one step is required", p.Name)
	}

	steps := make([]*config.Step, 0, len(p.Steps))
	seen := make(map[string]bool, len(p.Steps))
	for _, s := range p.Steps {
		if seen[s.Key] {
			return nil, fmt.Errorf("duplicate step key %q", s.Key)
		}
		seen[s.Key] = true

		if err := validateStep(s); err != nil {
			return nil, err
		}

		steps = append(steps, &config.Step{
			Key:          s.Key,
			Description:  s.Description,
			Command:      s.Command,
			Inputs:       s.Inputs,
			Outputs:      s.Outputs,
			Instructions: s.Instructions,
			DependsOn:    s.DependsOn,
			Manual:       s.Manual,
			Optional:     s.Optional,
		})
	}

	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if !seen[dep] {
				return nil, fmt.Errorf("step %q depends on unknown step %q", s.Key, dep)
			}
		}
	}

	return config.NewModel(p.Name, p.Storage.Roots, steps), nil
}

// validateStep enforces the manual/automatic step shape: a manual step
// carries operator instructions and never a command, an automatic step
// always carries a command.
func validateStep(s *schema.Step) error {
	if s.Manual {
		if exprPresent(s.Command) {
			return fmt.Errorf("manual step %q must not declare a command", s.Key)
		}
		if !exprPresent(s.Instructions) {
			return fmt.Errorf("manual step %q requires instructions", s.Key)
		}
		return nil
	}
	if !exprPresent(s.Command) {
		return fmt.Errorf("step %q requires a command", s.Key)
	}
	return nil
}
