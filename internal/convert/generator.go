package convert

import (
	"fmt"
	"strings"
	"time"
)

// headerTimestampLayout formats the generated_at line of the script header.
const headerTimestampLayout = "2006-01-02 15:04:05"

// SqlGenerator turns a validated TokenizedTable into the final INSERT
// script: a comment header, BEGIN;, one INSERT per data row in header
// column order, and COMMIT;.
//
// The input must have passed type validation. Beyond SQL-syntax-safe
// quoting, no re-checking happens here: numeric and date values are
// emitted verbatim.
type SqlGenerator struct{}

// NewSqlGenerator creates a generator.
func NewSqlGenerator() *SqlGenerator {
	return &SqlGenerator{}
}

// Generate produces the full SQL text, newline-terminated. The input file
// name and timestamp only appear in the header comment. A types/headers
// count mismatch is a broken caller and panics.
func (g *SqlGenerator) Generate(tokenized TokenizedTable, inputFileName string, generatedAt time.Time) string {
	if len(tokenized.Types) != len(tokenized.Headers) {
		panic(fmt.Sprintf("convert: types/headers count mismatch: types=%d, headers=%d",
			len(tokenized.Types), len(tokenized.Headers)))
	}

	var sb strings.Builder
	sb.Grow(4096)

	sb.WriteString("-- csv-to-insert-generator\n")
	sb.WriteString("-- table: " + tokenized.TableName + "\n")
	sb.WriteString("-- input: " + inputFileName + "\n")
	sb.WriteString(fmt.Sprintf("-- rows: %d\n", len(tokenized.Rows)))
	sb.WriteString("-- generated_at: " + generatedAt.Format(headerTimestampLayout) + "\n")
	sb.WriteString("\n")

	sb.WriteString("BEGIN;\n\n")

	// The INSERT prefix is identical for every row; build it once.
	prefix := "INSERT INTO " + tokenized.TableName + " (" + strings.Join(tokenized.Headers, ", ") + ") "

	for _, row := range tokenized.Rows {
		sb.WriteString(prefix)
		sb.WriteString("VALUES (")
		for i, token := range row.Tokens {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(Literal(tokenized.Types[i], token))
		}
		sb.WriteString(");\n")
	}

	sb.WriteString("\nCOMMIT;\n")

	return sb.String()
}

// Literal converts one validated token into its SQL representation, e.g.
// NULL, DEFAULT, '', 'O''Reilly', 123, TRUE, '1990-01-02'.
func Literal(colType ColumnType, token ValueToken) string {
	switch token.Kind {
	case KindNull:
		return "NULL"
	case KindDefault:
		return "DEFAULT"
	case KindEmptyString:
		return "''"
	default:
		return rawLiteral(colType, token.Value)
	}
}

// rawLiteral formats a raw value per column type. Values are assumed
// validated; only quoting and normalization happen here.
func rawLiteral(colType ColumnType, raw string) string {
	switch colType {
	case TypeText:
		return quoteString(raw)

	case TypeInt, TypeDecimal:
		// Numeric text goes out unquoted and unreformatted.
		return strings.TrimSpace(raw)

	case TypeBool:
		if strings.EqualFold(strings.TrimSpace(raw), "true") {
			return "TRUE"
		}
		return "FALSE"

	default: // date, timestamp, uuid
		return quoteString(strings.TrimSpace(raw))
	}
}

// quoteString wraps s in single quotes, doubling embedded single quotes.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
