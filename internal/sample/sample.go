// Package sample generates valid Format D CSV text with fake data.
// It is used by the sample CLI command and as demo input for the converter.
package sample

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/seiya-matsuoka/csv-to-insert-generator/internal/convert"
)

// Fake values are drawn from a fixed window so a given seed always
// produces the same file.
var (
	dateRangeStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	dateRangeEnd   = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Column is one column of the generated table.
type Column struct {
	Name string
	Type convert.ColumnType
}

// Schema describes the table to generate.
type Schema struct {
	TableName string
	Columns   []Column
}

// ParseColumns parses a comma-separated "name:type" column list,
// e.g. "id:int,name:text,created_at:timestamp".
func ParseColumns(spec string) ([]Column, error) {
	parts := strings.Split(spec, ",")
	cols := make([]Column, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, typeID, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("column %q must be in name:type form", part)
		}
		colType, ok := convert.ColumnTypeFromID(typeID)
		if !ok {
			return nil, fmt.Errorf("column %q has unknown type %q", name, typeID)
		}
		cols = append(cols, Column{Name: strings.TrimSpace(name), Type: colType})
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("column list is empty")
	}
	return cols, nil
}

// Generator produces Format D CSV text with fake values.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator. The same seed yields the same output.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Generate builds a complete Format D file for the schema with the given
// number of data rows.
func (g *Generator) Generate(schema Schema, rows int) (string, error) {
	if strings.TrimSpace(schema.TableName) == "" {
		return "", fmt.Errorf("table name is required")
	}
	if len(schema.Columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}
	if rows < 1 {
		return "", fmt.Errorf("row count must be positive, got %d", rows)
	}

	var sb strings.Builder

	sb.WriteString("#table=")
	sb.WriteString(schema.TableName)
	sb.WriteString("\n#types=")
	for i, col := range schema.Columns {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(col.Type.ID())
	}
	sb.WriteByte('\n')
	for i, col := range schema.Columns {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(col.Name)
	}
	sb.WriteByte('\n')

	for r := 0; r < rows; r++ {
		for i, col := range schema.Columns {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(quoteCell(g.value(col)))
		}
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}

// value produces one fake cell for a column.
func (g *Generator) value(col Column) string {
	switch col.Type {
	case convert.TypeInt:
		// id-ish columns get small sequential-looking numbers
		if strings.HasSuffix(strings.ToLower(col.Name), "id") {
			return strconv.Itoa(g.faker.Number(1, 9999))
		}
		return strconv.Itoa(g.faker.Number(1, 50000))

	case convert.TypeDecimal:
		return strconv.FormatFloat(g.faker.Price(0.99, 999.99), 'f', 2, 64)

	case convert.TypeBool:
		return strconv.FormatBool(g.faker.Bool())

	case convert.TypeDate:
		return g.faker.DateRange(dateRangeStart, dateRangeEnd).Format("2006-01-02")

	case convert.TypeTimestamp:
		return g.faker.DateRange(dateRangeStart, dateRangeEnd).Format("2006-01-02 15:04:05")

	case convert.TypeUUID:
		return g.faker.UUID()

	default:
		name := strings.ToLower(col.Name)
		switch {
		case strings.Contains(name, "email"):
			return g.faker.Email()
		case strings.Contains(name, "name"):
			return g.faker.Name()
		case strings.Contains(name, "city"):
			return g.faker.City()
		default:
			return g.faker.Word()
		}
	}
}

// quoteCell applies standard CSV quoting when the value needs it.
func quoteCell(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
