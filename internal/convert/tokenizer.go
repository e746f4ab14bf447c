package convert

import "fmt"

const (
	nullKeyword    = "NULL"
	defaultKeyword = "DEFAULT"

	// emptyStringToken is the literal two-character sequence "" a user
	// writes into a cell to mean "empty string, not NULL". After CSV quote
	// processing that cell arrives here as exactly these two characters.
	emptyStringToken = `""`
)

// ValueTokenizer classifies each raw cell of a ParsedTable as NULL,
// DEFAULT, empty string, or raw value. It performs no type checking.
//
// Keyword matching is exact-case with no trimming: "null", "Default", and
// " NULL" are all raw values, not keywords. This is deliberate; relaxing it
// would make legitimate lowercase text values ambiguous.
type ValueTokenizer struct {
	maxErrors int
}

// NewValueTokenizer creates a tokenizer whose error collector holds up to
// maxErrors entries per run.
func NewValueTokenizer(maxErrors int) *ValueTokenizer {
	return &ValueTokenizer{maxErrors: maxErrors}
}

// Tokenize classifies every cell of the parsed table in row-major order.
// On success the error slice is empty and the tokenized table mirrors the
// input shape. The input must come from a successful parse; a types/headers
// count mismatch is a broken caller and panics.
func (tk *ValueTokenizer) Tokenize(parsed ParsedTable) (TokenizedTable, []ValidationError, bool) {
	if len(parsed.Types) != len(parsed.Headers) {
		panic(fmt.Sprintf("convert: types/headers count mismatch: types=%d, headers=%d",
			len(parsed.Types), len(parsed.Headers)))
	}

	collector := NewErrorCollector(tk.maxErrors)
	columnCount := len(parsed.Headers)

	rows := make([]TokenizedRow, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		tokens := make([]ValueToken, 0, columnCount)

		for i := 0; i < columnCount; i++ {
			token := tk.classify(row.Values[i], parsed.Types[i], row.FileLine, parsed.Headers[i], collector)
			tokens = append(tokens, token)

			if collector.Truncated() {
				break
			}
		}

		rows = append(rows, TokenizedRow{FileLine: row.FileLine, Tokens: tokens})
		if collector.Truncated() {
			break
		}
	}

	tokenized := TokenizedTable{
		TableName: parsed.TableName,
		Types:     parsed.Types,
		Headers:   parsed.Headers,
		Rows:      rows,
	}
	if collector.HasErrors() {
		return TokenizedTable{}, collector.Errors(), collector.Truncated()
	}
	return tokenized, nil, false
}

// classify applies the fixed precedence: empty cell, NULL keyword, DEFAULT
// keyword, "" empty-string token, then raw value.
func (tk *ValueTokenizer) classify(raw string, colType ColumnType, fileLine int, columnName string, collector *ErrorCollector) ValueToken {
	if raw == "" {
		return NullToken(raw)
	}

	if raw == nullKeyword {
		return NullToken(raw)
	}

	if raw == defaultKeyword {
		return DefaultToken(raw)
	}

	if raw == emptyStringToken {
		// An explicit empty string only makes sense for text columns.
		// Allowing it elsewhere would blur the line between "" and NULL for
		// types that have no empty value.
		if colType == TypeText {
			return EmptyStringToken(raw)
		}

		collector.Add(ValidationError{
			FileLine:   fileLine,
			ColumnName: columnName,
			Type:       colType.ID(),
			Input:      raw,
			Reason:     `the empty-string token ("") is only allowed for text columns`,
		})

		// The run is already failed, but returning a raw token keeps the
		// row shape intact so the remaining cells are still scanned.
		return RawToken(raw)
	}

	return RawToken(raw)
}
