package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// Step represents a `step` block from a pipeline file. Path and command
// attributes are kept as unevaluated expressions; they reference period
// variables (year, month_dir, tag, ...) that only exist at run time.
type Step struct {
	Key          string         `hcl:"key,label"`
	Description  string         `hcl:"description,optional"`
	Command      hcl.Expression `hcl:"command,optional"`
	Inputs       hcl.Expression `hcl:"inputs"`
	Outputs      hcl.Expression `hcl:"outputs"`
	Instructions hcl.Expression `hcl:"instructions,optional"`
	DependsOn    []string       `hcl:"depends_on,optional"`
	Manual       bool           `hcl:"manual,optional"`
	Optional     bool           `hcl:"optional,optional"`
}

// Storage represents the `storage` block listing candidate base roots.
type Storage struct {
	Roots []string `hcl:"roots"`
}

// Pipeline represents a `pipeline` block: one storage declaration plus the
// ordered list of step blocks. Declaration order is execution order.
type Pipeline struct {
	Name    string   `hcl:"name,label"`
	Storage *Storage `hcl:"storage,block"`
	Steps   []*Step  `hcl:"step,block"`
}

// File represents the top-level structure of a pipeline definition file.
type File struct {
	Pipeline *Pipeline `hcl:"pipeline,block"`
	Body     hcl.Body  `hcl:",remain"`
}
