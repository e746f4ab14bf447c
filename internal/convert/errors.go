package convert

import "fmt"

// Column/type markers used for structural errors that have no real column.
const (
	markerFile   = "#file"
	markerTable  = "#table"
	markerTypes  = "#types"
	markerHeader = "#header"
	markerData   = "#data"
	markerSystem = "(system)"

	typeFormat = "format"
)

// ValidationError describes one offending cell or structural defect.
// FileLine is the 1-based physical line in the source CSV; 0 marks a
// system-level error with no file location.
type ValidationError struct {
	FileLine   int    `json:"fileLine"`
	ColumnName string `json:"column"`
	Type       string `json:"type"`
	Input      string `json:"input"`
	Reason     string `json:"reason"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("line %d, column %s (%s): %s (input: %q)",
		e.FileLine, e.ColumnName, e.Type, e.Reason, e.Input)
}

// DefaultMaxErrors is the error collector capacity used by the pipeline.
const DefaultMaxErrors = 100

// ErrorCollector accumulates validation errors up to a fixed capacity.
// Every stage of the pipeline shares one collector per run, collecting as
// many errors as capacity allows before failing, so that a user fixing a
// CSV gets the most value out of each round-trip. Once the cap is hit,
// further errors are dropped and the truncated flag stays set.
type ErrorCollector struct {
	maxErrors int
	errors    []ValidationError
	truncated bool
}

// NewErrorCollector creates a collector with the given capacity.
// Capacity must be positive; anything else is a programming error.
func NewErrorCollector(maxErrors int) *ErrorCollector {
	if maxErrors <= 0 {
		panic(fmt.Sprintf("convert: error collector capacity must be positive, got %d", maxErrors))
	}
	return &ErrorCollector{maxErrors: maxErrors}
}

// Add appends the error if capacity allows. On overflow the error is
// dropped and the collector is marked truncated; repeated overflow adds
// keep the flag set without re-counting.
func (c *ErrorCollector) Add(err ValidationError) {
	if len(c.errors) < c.maxErrors {
		c.errors = append(c.errors, err)
		return
	}
	c.truncated = true
}

// HasErrors reports whether at least one error was collected.
func (c *ErrorCollector) HasErrors() bool {
	return len(c.errors) > 0
}

// Size returns the number of collected errors (capacity-bounded).
func (c *ErrorCollector) Size() int {
	return len(c.errors)
}

// Truncated reports whether errors beyond capacity were dropped.
func (c *ErrorCollector) Truncated() bool {
	return c.truncated
}

// MaxErrors returns the collector capacity.
func (c *ErrorCollector) MaxErrors() int {
	return c.maxErrors
}

// Errors returns a stable snapshot of the collected errors in insertion
// order. Mutating the returned slice does not affect the collector.
func (c *ErrorCollector) Errors() []ValidationError {
	out := make([]ValidationError, len(c.errors))
	copy(out, c.errors)
	return out
}
