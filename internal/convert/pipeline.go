package convert

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// fileNameTimestampLayout formats the timestamp embedded in the output
// file name.
const fileNameTimestampLayout = "20060102_150405"

// fileNameUnsafe matches every character that is replaced when a table
// name is embedded into the output file name.
var fileNameUnsafe = regexp.MustCompile(`[^0-9A-Za-z_-]`)

// ErrBlankCSV is returned when a request is built from blank CSV text.
var ErrBlankCSV = errors.New("convert: csv text is blank")

// Request is the pipeline input: the raw CSV text and the display name of
// the uploaded file (used in the script's header comment).
type Request struct {
	CSVText       string
	InputFileName string
}

// NewRequest builds a Request, rejecting blank CSV text. Handing blank
// text to the pipeline is a caller error, not a validation failure.
func NewRequest(csvText, inputFileName string) (Request, error) {
	if strings.TrimSpace(csvText) == "" {
		return Request{}, ErrBlankCSV
	}
	return Request{CSVText: csvText, InputFileName: inputFileName}, nil
}

// Result is the pipeline outcome. On success SQLText, OutputFileName, and
// GeneratedAt are set and Errors is empty; on failure Errors is non-empty
// (with Truncated flagging dropped errors) and the success fields are zero.
type Result struct {
	SQLText        string
	OutputFileName string
	GeneratedAt    time.Time

	Errors    []ValidationError
	Truncated bool
}

// OK reports whether the conversion succeeded.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Pipeline sequences the four conversion stages, short-circuiting on the
// first stage that fails. Each run allocates its own error collectors and
// intermediate tables; a Pipeline holds no per-run state and is safe for
// concurrent use.
type Pipeline struct {
	parser    *FormatParser
	tokenizer *ValueTokenizer
	validator *TypeValidator
	generator *SqlGenerator
	now       func() time.Time
}

// Option adjusts pipeline construction.
type Option func(*Pipeline)

// WithClock fixes the generation timestamp source; used by tests to get
// byte-identical output.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithMaxErrors overrides the per-stage error collector capacity.
func WithMaxErrors(maxErrors int) Option {
	return func(p *Pipeline) {
		p.parser = NewFormatParser(maxErrors)
		p.tokenizer = NewValueTokenizer(maxErrors)
		p.validator = NewTypeValidator(maxErrors)
	}
}

// NewPipeline creates a pipeline with the default error cap and wall
// clock.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		parser:    NewFormatParser(DefaultMaxErrors),
		tokenizer: NewValueTokenizer(DefaultMaxErrors),
		validator: NewTypeValidator(DefaultMaxErrors),
		generator: NewSqlGenerator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Convert runs parse, tokenize, validate, and generate. Any panic inside
// the stages is converted into a single system-level ValidationError so an
// internal fault never escapes to the transport as anything but a failed
// conversion.
func (p *Pipeline) Convert(req Request) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				Errors: []ValidationError{{
					FileLine:   0,
					ColumnName: markerSystem,
					Type:       markerSystem,
					Reason:     fmt.Sprintf("unexpected error during conversion: %v", r),
				}},
			}
		}
	}()

	parsed, errs, truncated := p.parser.Parse(req.CSVText)
	if len(errs) > 0 {
		return Result{Errors: errs, Truncated: truncated}
	}

	tokenized, errs, truncated := p.tokenizer.Tokenize(parsed)
	if len(errs) > 0 {
		return Result{Errors: errs, Truncated: truncated}
	}

	validated, errs, truncated := p.validator.Validate(tokenized)
	if len(errs) > 0 {
		return Result{Errors: errs, Truncated: truncated}
	}

	generatedAt := p.now()
	sqlText := p.generator.Generate(validated, req.InputFileName, generatedAt)

	return Result{
		SQLText:        sqlText,
		OutputFileName: OutputFileName(validated.TableName, generatedAt),
		GeneratedAt:    generatedAt,
	}
}

// OutputFileName builds "insert_<table>_<timestamp>.sql". Characters that
// are unsafe in file names become underscores; a blank table name falls
// back to the literal "table".
func OutputFileName(tableName string, generatedAt time.Time) string {
	safe := strings.TrimSpace(tableName)
	if safe == "" {
		safe = "table"
	} else {
		safe = fileNameUnsafe.ReplaceAllString(safe, "_")
	}
	return "insert_" + safe + "_" + generatedAt.Format(fileNameTimestampLayout) + ".sql"
}
