package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/kbbdata/fecho/internal/period"
)

// ErrNoStorageRoot is returned when none of the candidate base roots exist.
var ErrNoStorageRoot = errors.New("no storage root found")

// SelectRoot probes the candidate roots in order and returns the first one
// that exists and is a directory.
func SelectRoot(roots []string) (string, error) {
	for _, root := range roots {
		info, err := os.Stat(root)
		if err == nil && info.IsDir() {
			return root, nil
		}
	}
	return "", fmt.Errorf("%w: probed %s", ErrNoStorageRoot, strings.Join(roots, ", "))
}

// Resolver evaluates templated path and command expressions for a single
// (period, storage root) pair. It only ever reads the filesystem.
type Resolver struct {
	evalCtx *hcl.EvalContext
}

// New builds a Resolver whose eval context exposes the period-derived
// variables pipeline definitions may reference.
func New(p period.Context, base string) *Resolver {
	return &Resolver{
		evalCtx: &hcl.EvalContext{
			Variables: map[string]cty.Value{
				"base":       cty.StringVal(base),
				"year":       cty.NumberIntVal(int64(p.Year)),
				"month":      cty.NumberIntVal(int64(p.Month)),
				"month_num":  cty.StringVal(p.MonthNum()),
				"month_name": cty.StringVal(p.MonthName()),
				"month_dir":  cty.StringVal(p.MonthDir()),
				"tag":        cty.StringVal(p.Tag()),
			},
		},
	}
}

// Strings evaluates an expression to a list of strings. A lone string value
// is treated as a one-element list; a nil expression yields nil.
func (r *Resolver) Strings(expr hcl.Expression) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(r.evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if val.Type() == cty.String {
		return []string{val.AsString()}, nil
	}

	converted, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("expected a string or list of strings: %w", err)
	}
	var out []string
	for it := converted.ElementIterator(); it.Next(); {
		_, v := it.Element()
		out = append(out, v.AsString())
	}
	return out, nil
}

// String evaluates an expression to a single string.
func (r *Resolver) String(expr hcl.Expression) (string, error) {
	if expr == nil {
		return "", nil
	}
	val, diags := expr.Value(r.evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() {
		return "", nil
	}
	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("expected a string: %w", err)
	}
	return converted.AsString(), nil
}

// Paths evaluates a path expression set and expands each resulting pattern
// against the live filesystem. Only files that currently exist come back;
// a literal path with no wildcard matches itself only if it is on disk.
func (r *Resolver) Paths(expr hcl.Expression) ([]string, error) {
	patterns, err := r.Strings(expr)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad path pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}
