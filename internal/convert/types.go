// Package convert implements the CSV-to-INSERT conversion pipeline.
//
// The pipeline has four stages, each of which either produces a fully
// formed value for the next stage or a capped list of validation errors:
//
//  1. Parse: read Format D text into a ParsedTable of raw strings
//  2. Tokenize: classify each cell as NULL / DEFAULT / empty string / raw
//  3. Validate: check raw cells against their declared column type
//  4. Generate: emit the transactional INSERT script
//
// No stage ever hands a partially valid table to its successor.
package convert

import "strings"

// ColumnType is the closed set of column types a #types line may declare.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInt
	TypeDecimal
	TypeBool
	TypeDate
	TypeTimestamp
	TypeUUID
)

// columnTypeIDs maps each type to its canonical lowercase identifier as it
// appears in the #types line and in error messages.
var columnTypeIDs = map[ColumnType]string{
	TypeText:      "text",
	TypeInt:       "int",
	TypeDecimal:   "decimal",
	TypeBool:      "bool",
	TypeDate:      "date",
	TypeTimestamp: "timestamp",
	TypeUUID:      "uuid",
}

// ID returns the canonical identifier for the type (e.g. "int").
func (t ColumnType) ID() string {
	return columnTypeIDs[t]
}

// ColumnTypeFromID resolves a type identifier from the #types line.
// Matching is whitespace-trimmed and case-insensitive; unknown identifiers
// return false rather than being coerced to a default.
func ColumnTypeFromID(raw string) (ColumnType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for t, id := range columnTypeIDs {
		if id == normalized {
			return t, true
		}
	}
	return 0, false
}

// DataRow is one data row of the source CSV held as raw cell strings.
// FileLine is the 1-based physical record number within the full file,
// counting the meta and header lines.
type DataRow struct {
	FileLine int
	Values   []string
}

// ParsedTable is the output of the format parser. Once parsing succeeds,
// len(Types) == len(Headers) and every row has exactly len(Headers) values.
type ParsedTable struct {
	TableName string
	Types     []ColumnType
	Headers   []string
	Rows      []DataRow
}

// TokenKind classifies a CSV cell before type checking.
type TokenKind int

const (
	KindNull TokenKind = iota
	KindDefault
	KindEmptyString
	KindRaw
)

func (k TokenKind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindDefault:
		return "DEFAULT"
	case KindEmptyString:
		return "EMPTY_STRING"
	case KindRaw:
		return "RAW"
	default:
		return "UNKNOWN"
	}
}

// ValueToken is the interpreted form of one CSV cell. Original always holds
// the cell text as written (for error display). Value is meaningful for
// KindRaw and KindEmptyString only; NULL and DEFAULT tokens carry no value.
type ValueToken struct {
	Kind     TokenKind
	Original string
	Value    string
}

// NullToken builds a NULL token for the given cell text.
func NullToken(original string) ValueToken {
	return ValueToken{Kind: KindNull, Original: original}
}

// DefaultToken builds a DEFAULT token for the given cell text.
func DefaultToken(original string) ValueToken {
	return ValueToken{Kind: KindDefault, Original: original}
}

// EmptyStringToken builds an explicit empty-string token. Only legal for
// text columns; the tokenizer enforces that.
func EmptyStringToken(original string) ValueToken {
	return ValueToken{Kind: KindEmptyString, Original: original, Value: ""}
}

// RawToken builds a raw-value token whose value is the cell text verbatim.
func RawToken(original string) ValueToken {
	return ValueToken{Kind: KindRaw, Original: original, Value: original}
}

// TokenizedRow is one data row after cell classification.
type TokenizedRow struct {
	FileLine int
	Tokens   []ValueToken
}

// TokenizedTable mirrors ParsedTable with classified cells. It is produced
// by the tokenizer and consumed shape-unchanged by the validator and the
// SQL generator.
type TokenizedTable struct {
	TableName string
	Types     []ColumnType
	Headers   []string
	Rows      []TokenizedRow
}
