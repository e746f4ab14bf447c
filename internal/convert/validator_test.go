package convert

import (
	"strings"
	"testing"
)

func validateCellForTest(t *testing.T, colType ColumnType, token ValueToken) []ValidationError {
	t.Helper()
	table := TokenizedTable{
		TableName: "t",
		Types:     []ColumnType{colType},
		Headers:   []string{"c"},
		Rows:      []TokenizedRow{{FileLine: 4, Tokens: []ValueToken{token}}},
	}
	_, errs, _ := NewTypeValidator(DefaultMaxErrors).Validate(table)
	return errs
}

func TestTypeValidator_RawGrammar(t *testing.T) {
	tests := []struct {
		name    string
		colType ColumnType
		value   string
		valid   bool
	}{
		// text: unconstrained
		{name: "text anything", colType: TypeText, value: "hello 'world' 123", valid: true},

		// int: signed 32-bit
		{name: "int zero", colType: TypeInt, value: "0", valid: true},
		{name: "int negative", colType: TypeInt, value: "-10", valid: true},
		{name: "int with surrounding spaces", colType: TypeInt, value: " 42 ", valid: true},
		{name: "int letters", colType: TypeInt, value: "abc", valid: false},
		{name: "int decimal point", colType: TypeInt, value: "1.5", valid: false},
		{name: "int over 32-bit range", colType: TypeInt, value: "2147483648", valid: false},
		{name: "int min 32-bit", colType: TypeInt, value: "-2147483648", valid: true},

		// decimal: plain signed decimal, no exponent
		{name: "decimal integer form", colType: TypeDecimal, value: "12", valid: true},
		{name: "decimal fraction", colType: TypeDecimal, value: "-0.5", valid: true},
		{name: "decimal plus sign", colType: TypeDecimal, value: "+12.34", valid: true},
		{name: "decimal exponent rejected", colType: TypeDecimal, value: "1e3", valid: false},
		{name: "decimal bare point", colType: TypeDecimal, value: ".5", valid: false},
		{name: "decimal trailing point", colType: TypeDecimal, value: "5.", valid: false},
		{name: "decimal text", colType: TypeDecimal, value: "twelve", valid: false},

		// bool: case-insensitive true/false only
		{name: "bool true", colType: TypeBool, value: "true", valid: true},
		{name: "bool FALSE", colType: TypeBool, value: "FALSE", valid: true},
		{name: "bool True", colType: TypeBool, value: "True", valid: true},
		{name: "bool yes", colType: TypeBool, value: "yes", valid: false},
		{name: "bool 1", colType: TypeBool, value: "1", valid: false},

		// date: strict calendar yyyy-MM-dd
		{name: "date valid", colType: TypeDate, value: "1990-01-02", valid: true},
		{name: "date leap day", colType: TypeDate, value: "2024-02-29", valid: true},
		{name: "date overflow day", colType: TypeDate, value: "2026-02-30", valid: false},
		{name: "date wrong separator", colType: TypeDate, value: "1990/01/02", valid: false},
		{name: "date missing zero pad", colType: TypeDate, value: "1990-1-2", valid: false},

		// timestamp: space or T separator
		{name: "timestamp space", colType: TypeTimestamp, value: "2026-01-05 10:00:00", valid: true},
		{name: "timestamp T", colType: TypeTimestamp, value: "2026-01-05T10:00:00", valid: true},
		{name: "timestamp date only", colType: TypeTimestamp, value: "2026-01-05", valid: false},
		{name: "timestamp with millis", colType: TypeTimestamp, value: "2026-01-05 10:00:00.000", valid: false},

		// uuid: canonical hyphenated form only
		{name: "uuid valid", colType: TypeUUID, value: "550e8400-e29b-41d4-a716-446655440000", valid: true},
		{name: "uuid uppercase", colType: TypeUUID, value: "550E8400-E29B-41D4-A716-446655440000", valid: true},
		{name: "uuid no hyphens", colType: TypeUUID, value: "550e8400e29b41d4a716446655440000", valid: false},
		{name: "uuid too short", colType: TypeUUID, value: "550e8400-e29b-41d4-a716", valid: false},
		{name: "uuid braced", colType: TypeUUID, value: "{550e8400-e29b-41d4-a716-446655440000}", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateCellForTest(t, tt.colType, RawToken(tt.value))

			if tt.valid && len(errs) > 0 {
				t.Errorf("expected %q valid for %s, got %v", tt.value, tt.colType.ID(), errs)
			}
			if !tt.valid {
				if len(errs) != 1 {
					t.Fatalf("expected 1 error for %q as %s, got %v", tt.value, tt.colType.ID(), errs)
				}
				if errs[0].Type != tt.colType.ID() {
					t.Errorf("expected error type %q, got %q", tt.colType.ID(), errs[0].Type)
				}
				if errs[0].Input != tt.value {
					t.Errorf("expected original input %q in error, got %q", tt.value, errs[0].Input)
				}
			}
		})
	}
}

func TestTypeValidator_NullAndDefaultValidForEveryType(t *testing.T) {
	for colType := range columnTypeIDs {
		for _, token := range []ValueToken{NullToken("NULL"), DefaultToken("DEFAULT"), NullToken("")} {
			if errs := validateCellForTest(t, colType, token); len(errs) > 0 {
				t.Errorf("expected %v valid for %s, got %v", token.Kind, colType.ID(), errs)
			}
		}
	}
}

func TestTypeValidator_EmptyStringOnlyForText(t *testing.T) {
	if errs := validateCellForTest(t, TypeText, EmptyStringToken(`""`)); len(errs) > 0 {
		t.Errorf("expected empty string valid for text, got %v", errs)
	}

	errs := validateCellForTest(t, TypeInt, EmptyStringToken(`""`))
	if len(errs) != 1 {
		t.Fatalf("expected 1 error for empty string on int, got %v", errs)
	}
	if !strings.Contains(errs[0].Reason, "text columns") {
		t.Errorf("unexpected reason: %q", errs[0].Reason)
	}
}

func TestTypeValidator_UnknownTokenKindReported(t *testing.T) {
	errs := validateCellForTest(t, TypeInt, ValueToken{Kind: TokenKind(99), Original: "?"})

	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if !strings.Contains(errs[0].Reason, "unknown value token kind") {
		t.Errorf("unexpected reason: %q", errs[0].Reason)
	}
}

func TestTypeValidator_ScansWholeTable(t *testing.T) {
	table := TokenizedTable{
		TableName: "t",
		Types:     []ColumnType{TypeInt, TypeBool},
		Headers:   []string{"n", "b"},
		Rows: []TokenizedRow{
			{FileLine: 4, Tokens: []ValueToken{RawToken("abc"), RawToken("maybe")}},
			{FileLine: 5, Tokens: []ValueToken{RawToken("xyz"), RawToken("true")}},
		},
	}

	_, errs, truncated := NewTypeValidator(DefaultMaxErrors).Validate(table)

	if len(errs) != 3 {
		t.Errorf("expected all 3 bad cells reported, got %d: %v", len(errs), errs)
	}
	if truncated {
		t.Error("unexpected truncation")
	}
}

func TestTypeValidator_TruncationCapsErrors(t *testing.T) {
	rows := make([]TokenizedRow, 10)
	for i := range rows {
		rows[i] = TokenizedRow{FileLine: 4 + i, Tokens: []ValueToken{RawToken("bad")}}
	}
	table := TokenizedTable{
		TableName: "t",
		Types:     []ColumnType{TypeInt},
		Headers:   []string{"n"},
		Rows:      rows,
	}

	_, errs, truncated := NewTypeValidator(4).Validate(table)

	if len(errs) != 4 {
		t.Errorf("expected 4 held errors, got %d", len(errs))
	}
	if !truncated {
		t.Error("expected truncation flag")
	}
}

func TestTypeValidator_SuccessReturnsInputUnchanged(t *testing.T) {
	table := TokenizedTable{
		TableName: "t",
		Types:     []ColumnType{TypeInt},
		Headers:   []string{"n"},
		Rows:      []TokenizedRow{{FileLine: 4, Tokens: []ValueToken{RawToken("1")}}},
	}

	validated, errs, _ := NewTypeValidator(DefaultMaxErrors).Validate(table)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if validated.TableName != "t" || len(validated.Rows) != 1 || validated.Rows[0].Tokens[0].Value != "1" {
		t.Errorf("expected input table returned unchanged, got %+v", validated)
	}
}

func TestTypeValidator_PanicsOnShapeMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for types/headers count mismatch")
		}
	}()

	NewTypeValidator(DefaultMaxErrors).Validate(TokenizedTable{
		Types:   []ColumnType{TypeInt, TypeText},
		Headers: []string{"a"},
	})
}
