// Package period defines the (year, month) scope a pipeline run operates on.
// Every templated path in a pipeline definition is expanded against a single
// immutable period Context.
package period

import "fmt"

// monthNames holds the Brazilian Portuguese month names used in the source
// folder layout (e.g. "11-Novembro").
var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril",
	"Maio", "Junho", "Julho", "Agosto",
	"Setembro", "Outubro", "Novembro", "Dezembro",
}

// Context is the immutable (year, month) pair a single run is scoped to.
type Context struct {
	Year  int
	Month int
}

// New validates the raw year and month values and returns a Context.
func New(year, month int) (Context, error) {
	if month < 1 || month > 12 {
		return Context{}, fmt.Errorf("invalid month %d: must be between 1 and 12", month)
	}
	if year < 2000 || year > 2199 {
		return Context{}, fmt.Errorf("invalid year %d: expected a four-digit year", year)
	}
	return Context{Year: year, Month: month}, nil
}

// MonthNum returns the zero-padded numeric month, e.g. "03".
func (c Context) MonthNum() string {
	return fmt.Sprintf("%02d", c.Month)
}

// MonthName returns the localized month name, e.g. "Março".
func (c Context) MonthName() string {
	return monthNames[c.Month-1]
}

// MonthDir returns the month folder name used by the invoice archive,
// e.g. "03-Março".
func (c Context) MonthDir() string {
	return c.MonthNum() + "-" + c.MonthName()
}

// Tag returns the period folder suffix, e.g. "2025_03".
func (c Context) Tag() string {
	return fmt.Sprintf("%d_%02d", c.Year, c.Month)
}

func (c Context) String() string {
	return fmt.Sprintf("%d-%02d", c.Year, c.Month)
}
