package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// decimalPattern rejects exponent notation; only plain signed decimal
// digits with an optional fractional part are accepted.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+)(\.\d+)?$`)

const (
	dateLayout           = "2006-01-02"
	timestampSpaceLayout = "2006-01-02 15:04:05"
	timestampTLayout     = "2006-01-02T15:04:05"
)

// TypeValidator checks every raw token of a TokenizedTable against its
// declared column type:
//
//   - NULL and DEFAULT are valid for every type
//   - the empty-string token is valid for text only (re-checked here even
//     though the tokenizer already enforces it)
//   - raw tokens are parsed per type; text is unconstrained
//
// Validation does not stop at the first bad cell: the whole table is
// scanned, bounded only by the error collector's capacity.
type TypeValidator struct {
	maxErrors int
}

// NewTypeValidator creates a validator whose error collector holds up to
// maxErrors entries per run.
func NewTypeValidator(maxErrors int) *TypeValidator {
	return &TypeValidator{maxErrors: maxErrors}
}

// Validate scans every cell. On success it returns the input table
// unchanged, proving all raw cells safe for SQL generation. A
// types/headers count mismatch is a broken caller and panics.
func (v *TypeValidator) Validate(tokenized TokenizedTable) (TokenizedTable, []ValidationError, bool) {
	if len(tokenized.Types) != len(tokenized.Headers) {
		panic(fmt.Sprintf("convert: types/headers count mismatch: types=%d, headers=%d",
			len(tokenized.Types), len(tokenized.Headers)))
	}

	collector := NewErrorCollector(v.maxErrors)
	columnCount := len(tokenized.Headers)

	for _, row := range tokenized.Rows {
		for i := 0; i < columnCount && i < len(row.Tokens); i++ {
			v.validateCell(row.FileLine, tokenized.Headers[i], tokenized.Types[i], row.Tokens[i], collector)
			if collector.Truncated() {
				break
			}
		}
		if collector.Truncated() {
			break
		}
	}

	if collector.HasErrors() {
		return TokenizedTable{}, collector.Errors(), collector.Truncated()
	}
	return tokenized, nil, false
}

func (v *TypeValidator) validateCell(fileLine int, columnName string, colType ColumnType, token ValueToken, collector *ErrorCollector) {
	switch token.Kind {
	case KindNull, KindDefault:
		// Valid for every column type.
		return

	case KindEmptyString:
		if colType != TypeText {
			collector.Add(ValidationError{
				FileLine:   fileLine,
				ColumnName: columnName,
				Type:       colType.ID(),
				Input:      token.Original,
				Reason:     "an empty string is only allowed for text columns",
			})
		}
		return

	case KindRaw:
		// Handled below.

	default:
		// Unreachable with a correct tokenizer; reported instead of
		// panicking so one bad token cannot sink the whole error report.
		collector.Add(ValidationError{
			FileLine:   fileLine,
			ColumnName: columnName,
			Type:       colType.ID(),
			Input:      token.Original,
			Reason:     "unknown value token kind: " + token.Kind.String(),
		})
		return
	}

	// Parse on a trimmed copy so stray surrounding whitespace from manual
	// editing does not fail an otherwise valid value. The original text is
	// kept for error display.
	s := strings.TrimSpace(token.Value)

	fail := func(reason string) {
		collector.Add(ValidationError{
			FileLine:   fileLine,
			ColumnName: columnName,
			Type:       colType.ID(),
			Input:      token.Original,
			Reason:     reason,
		})
	}

	switch colType {
	case TypeText:
		// Unconstrained; the generator escapes it.

	case TypeInt:
		if _, err := strconv.ParseInt(s, 10, 32); err != nil {
			fail("cannot be interpreted as int (examples: 0, 123, -10)")
		}

	case TypeDecimal:
		if !decimalPattern.MatchString(s) {
			fail("cannot be interpreted as decimal (examples: 0, 12.34, -0.5)")
			return
		}
		if _, err := decimal.NewFromString(s); err != nil {
			fail("cannot be interpreted as decimal")
		}

	case TypeBool:
		lower := strings.ToLower(s)
		if lower != "true" && lower != "false" {
			fail("cannot be interpreted as bool (true/false only)")
		}

	case TypeDate:
		if _, err := time.Parse(dateLayout, s); err != nil {
			fail("cannot be interpreted as date (expected format: 2024-01-31)")
		}

	case TypeTimestamp:
		if !parseTimestamp(s) {
			fail("cannot be interpreted as timestamp (expected format: 2024-01-31 23:59:59 or 2024-01-31T23:59:59)")
		}

	case TypeUUID:
		if !isCanonicalUUID(s) {
			fail("cannot be interpreted as uuid (example: 550e8400-e29b-41d4-a716-446655440000)")
		}
	}
}

// parseTimestamp accepts exactly the two supported layouts: space-separated
// and literal-T-separated.
func parseTimestamp(s string) bool {
	if _, err := time.Parse(timestampSpaceLayout, s); err == nil {
		return true
	}
	if _, err := time.Parse(timestampTLayout, s); err == nil {
		return true
	}
	return false
}

// isCanonicalUUID accepts only the 36-character hyphenated textual form.
// uuid.Parse alone is too permissive (braced, URN, and 32-hex forms).
func isCanonicalUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
