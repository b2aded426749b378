package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/kbbdata/fecho/internal/config"
	"github.com/kbbdata/fecho/internal/ctxlog"
	"github.com/kbbdata/fecho/internal/schema"
)

// Loader reads pipeline definition files and translates them into the
// format-agnostic config model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new pipeline definition loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load parses, translates and validates the pipeline file at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading pipeline definition.", "path", path)

	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}

	var root schema.File
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", path, diags)
	}
	if root.Pipeline == nil {
		return nil, fmt.Errorf("%s: missing required 'pipeline' block", path)
	}

	model, err := translate(root.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Debug("Pipeline definition loaded.",
		"pipeline", model.Name,
		"steps", len(model.Steps),
		"roots", len(model.Roots),
	)
	return model, nil
}
