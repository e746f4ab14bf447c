package convert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	tablePrefix = "#table="
	typesPrefix = "#types="
)

// identifierPattern restricts table and column names so they can be embedded
// into generated SQL without quoting: letters/digits/underscore, first
// character a letter or underscore. Schema-qualified names are not supported.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// FormatParser reads Format D text and checks the meta lines, header, and
// data-row shape:
//
//	#table=<table>
//	#types=<type1>,<type2>,...
//	<col1>,<col2>,...
//	<val1>,<val2>,...
//
// It does not interpret cell values (NULL/DEFAULT/empty string) or check
// type grammars; those are the tokenizer's and validator's jobs.
type FormatParser struct {
	maxErrors int
}

// NewFormatParser creates a parser whose error collector holds up to
// maxErrors entries per parse.
func NewFormatParser(maxErrors int) *FormatParser {
	return &FormatParser{maxErrors: maxErrors}
}

// Parse reads Format D text. On success the returned error slice is empty
// and the table upholds len(Types) == len(Headers) with every row exactly
// that wide. On failure the table is a best-effort partial result that is
// informative only and must not be fed to later stages.
func (p *FormatParser) Parse(csvText string) (ParsedTable, []ValidationError, bool) {
	collector := NewErrorCollector(p.maxErrors)

	// Excel and other Windows tools prepend a UTF-8 BOM; it would break the
	// "#table=" prefix check, so strip it before anything else.
	normalized := strings.TrimPrefix(csvText, "\uFEFF")

	if strings.TrimSpace(normalized) == "" {
		collector.Add(ValidationError{
			FileLine: 1, ColumnName: markerFile, Type: typeFormat,
			Reason: "CSV is empty (#table, #types, and header lines are required)",
		})
		return ParsedTable{}, collector.Errors(), collector.Truncated()
	}

	records, errLine, err := splitRecords(normalized)
	if err != nil {
		collector.Add(ValidationError{
			FileLine: errLine, ColumnName: markerFile, Type: typeFormat,
			Reason: "failed to read CSV: " + err.Error(),
		})
		return ParsedTable{}, collector.Errors(), collector.Truncated()
	}

	// Format D needs at least the #table, #types, and header records.
	if len(records) < 3 {
		collector.Add(ValidationError{
			FileLine: 1, ColumnName: markerFile, Type: typeFormat,
			Reason: "CSV has too few lines (#table, #types, and header lines are required)",
		})
		return ParsedTable{}, collector.Errors(), collector.Truncated()
	}

	tableName := p.parseTableLine(records[0], collector)
	if collector.Truncated() {
		return ParsedTable{}, collector.Errors(), true
	}

	types := p.parseTypesLine(records[1], collector)
	if collector.Truncated() {
		return ParsedTable{}, collector.Errors(), true
	}

	headers := p.parseHeaderLine(records[2], collector)
	if collector.Truncated() {
		return ParsedTable{}, collector.Errors(), true
	}

	// Later stages pair types and headers by index, so the counts must
	// agree. Only checked when both lines yielded something; an empty side
	// already produced its own error above.
	if len(types) > 0 && len(headers) > 0 && len(types) != len(headers) {
		collector.Add(ValidationError{
			FileLine:   records[2].fileLine,
			ColumnName: markerHeader,
			Type:       typeFormat,
			Input:      fmt.Sprintf("types=%d, headers=%d", len(types), len(headers)),
			Reason:     "#types column count does not match header column count",
		})
	}
	if collector.Truncated() {
		return ParsedTable{}, collector.Errors(), true
	}

	rows := make([]DataRow, 0, len(records)-3)
	expected := len(headers)

	for _, rec := range records[3:] {
		if len(rec.fields) != expected {
			collector.Add(ValidationError{
				FileLine:   rec.fileLine,
				ColumnName: markerData,
				Type:       typeFormat,
				Input:      strings.Join(rec.fields, ","),
				Reason:     fmt.Sprintf("data row column count does not match header (expected=%d, actual=%d)", expected, len(rec.fields)),
			})
			if collector.Truncated() {
				break
			}
			// The row cannot be positioned against the headers; skip it.
			continue
		}

		values := make([]string, expected)
		copy(values, rec.fields)
		rows = append(rows, DataRow{FileLine: rec.fileLine, Values: values})
	}

	table := ParsedTable{TableName: tableName, Types: types, Headers: headers, Rows: rows}
	if collector.HasErrors() {
		return table, collector.Errors(), collector.Truncated()
	}
	return table, nil, false
}

// parseTableLine validates "#table=<name>" and returns the table name, or
// an empty string after collecting an error.
func (p *FormatParser) parseTableLine(rec csvRecord, collector *ErrorCollector) string {
	line := rec.fileLine

	if len(rec.fields) != 1 {
		collector.Add(ValidationError{
			FileLine: line, ColumnName: markerTable, Type: typeFormat,
			Input:  strings.Join(rec.fields, ","),
			Reason: "the #table line must be a single column",
		})
		return ""
	}

	cell := rec.fields[0]
	if !strings.HasPrefix(cell, tablePrefix) {
		collector.Add(ValidationError{
			FileLine: line, ColumnName: markerTable, Type: typeFormat,
			Input:  cell,
			Reason: "the #table line must have the form '#table=<tableName>'",
		})
		return ""
	}

	tableName := cell[len(tablePrefix):]
	if tableName == "" {
		collector.Add(ValidationError{
			FileLine: line, ColumnName: markerTable, Type: typeFormat,
			Input:  cell,
			Reason: "table name is empty",
		})
		return ""
	}

	if !identifierPattern.MatchString(tableName) {
		collector.Add(ValidationError{
			FileLine: line, ColumnName: markerTable, Type: typeFormat,
			Input:  tableName,
			Reason: "invalid table name (letters, digits, and _ only; first character must be a letter or _)",
		})
		return ""
	}

	return tableName
}

// parseTypesLine validates "#types=<type1>,<type2>,..." and resolves each
// token against the column type set. The first cell carries the prefix plus
// the first type; every following cell is one more type.
func (p *FormatParser) parseTypesLine(rec csvRecord, collector *ErrorCollector) []ColumnType {
	line := rec.fileLine

	if len(rec.fields) < 1 {
		collector.Add(ValidationError{
			FileLine: line, ColumnName: markerTypes, Type: typeFormat,
			Reason: "the #types line is invalid",
		})
		return nil
	}

	first := rec.fields[0]
	if !strings.HasPrefix(first, typesPrefix) {
		collector.Add(ValidationError{
			FileLine: line, ColumnName: markerTypes, Type: typeFormat,
			Input:  first,
			Reason: "the #types line must have the form '#types=<type1>,<type2>,...'",
		})
		return nil
	}

	rawTypes := append([]string{first[len(typesPrefix):]}, rec.fields[1:]...)

	types := make([]ColumnType, 0, len(rawTypes))
	for _, raw := range rawTypes {
		trimmed := strings.TrimSpace(raw)

		if trimmed == "" {
			collector.Add(ValidationError{
				FileLine: line, ColumnName: markerTypes, Type: typeFormat,
				Input:  raw,
				Reason: "type is empty",
			})
			if collector.Truncated() {
				break
			}
			continue
		}

		t, ok := ColumnTypeFromID(trimmed)
		if ok {
			types = append(types, t)
		} else {
			collector.Add(ValidationError{
				FileLine: line, ColumnName: markerTypes, Type: typeFormat,
				Input:  trimmed,
				Reason: "unknown type (allowed types: text/int/decimal/bool/date/timestamp/uuid)",
			})
		}
		if collector.Truncated() {
			break
		}
	}

	return types
}

// parseHeaderLine validates column names (identifier syntax, no duplicates)
// and returns the header sequence. Invalid names are retained (empty cells
// as "") so positional alignment with the types line survives for the
// error-only continuation of a failing parse.
func (p *FormatParser) parseHeaderLine(rec csvRecord, collector *ErrorCollector) []string {
	line := rec.fileLine

	if len(rec.fields) < 1 {
		collector.Add(ValidationError{
			FileLine: line, ColumnName: markerHeader, Type: typeFormat,
			Reason: "the header line is empty",
		})
		return nil
	}

	headers := make([]string, 0, len(rec.fields))
	seen := make(map[string]struct{}, len(rec.fields))

	for i, col := range rec.fields {
		if col == "" {
			collector.Add(ValidationError{
				FileLine: line, ColumnName: markerHeader, Type: typeFormat,
				Reason: fmt.Sprintf("column name is empty (column %d)", i+1),
			})
			if collector.Truncated() {
				break
			}
			headers = append(headers, "")
			continue
		}

		if !identifierPattern.MatchString(col) {
			collector.Add(ValidationError{
				FileLine: line, ColumnName: col, Type: typeFormat,
				Input:  col,
				Reason: "invalid column name (letters, digits, and _ only; first character must be a letter or _)",
			})
			if collector.Truncated() {
				break
			}
		}

		if _, dup := seen[col]; dup {
			collector.Add(ValidationError{
				FileLine: line, ColumnName: col, Type: typeFormat,
				Input:  col,
				Reason: "duplicate column name",
			})
			if collector.Truncated() {
				break
			}
		}
		seen[col] = struct{}{}

		headers = append(headers, col)
	}

	return headers
}

// csvRecord is one CSV record paired with the 1-based physical line it
// starts on.
type csvRecord struct {
	fileLine int
	fields   []string
}

// splitRecords splits Format D text into CSV records. encoding/csv alone is
// not enough here: it silently drops blank lines and does not report
// physical line numbers, both of which this format relies on (a blank line
// is a one-cell record, and error messages point at physical lines). So
// records are assembled line by line, with quoted fields allowed to span
// lines, and each assembled record is handed to encoding/csv for field
// splitting. Quotes inside an unquoted field are ordinary characters (lazy
// quoting), so a TEXT cell like `say "hi"` passes through as written.
//
// On failure it returns the 1-based physical line the failing record starts
// on.
func splitRecords(text string) ([]csvRecord, int, error) {
	lines := splitPhysicalLines(text)

	records := make([]csvRecord, 0, len(lines))
	i := 0
	for i < len(lines) {
		start := i
		buf := lines[i]
		open := scanQuoteState(lines[i], false)
		i++

		// A quoted field left open at the end of a line continues onto the
		// next physical line.
		for open && i < len(lines) {
			buf += "\n" + lines[i]
			open = scanQuoteState(lines[i], true)
			i++
		}

		if buf == "" {
			// Blank physical line: kept as a record with one empty cell so
			// record numbering matches the file and column-count checks see it.
			records = append(records, csvRecord{fileLine: start + 1, fields: []string{""}})
			continue
		}

		r := csv.NewReader(strings.NewReader(buf))
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		fields, err := r.Read()
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// Drop the reader's buffer-relative position; the physical
				// line number is reported by the caller.
				err = parseErr.Err
			}
			return nil, start + 1, err
		}
		records = append(records, csvRecord{fileLine: start + 1, fields: fields})
	}

	return records, 0, nil
}

// scanQuoteState reports whether a quoted field is still open at the end of
// line, given whether one was open at its start. A field is quoted only when
// it begins with a quote character; inside it, "" is an escaped quote.
// Quotes anywhere else are ordinary characters.
func scanQuoteState(line string, open bool) bool {
	atFieldStart := !open
	for i := 0; i < len(line); i++ {
		c := line[i]

		if open {
			if c == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					i++
					continue
				}
				open = false
				atFieldStart = false
			}
			continue
		}

		switch c {
		case '"':
			if atFieldStart {
				open = true
			}
			atFieldStart = false
		case ',':
			atFieldStart = true
		default:
			atFieldStart = false
		}
	}
	return open
}

// splitPhysicalLines splits on \n, strips a trailing \r per line (CRLF),
// and drops the empty slot a trailing newline would otherwise produce.
func splitPhysicalLines(text string) []string {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
