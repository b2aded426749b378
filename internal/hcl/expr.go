package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// exprPresent reports whether an optional attribute was supplied. gohcl
// leaves the expression field nil when the attribute is absent.
func exprPresent(expr hcl.Expression) bool {
	return expr != nil
}
