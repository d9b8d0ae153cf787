package csvutil

import (
	"strings"
	"testing"
)

func TestParseRoster_ValidRows(t *testing.T) {
	csv := `Name,Email,Manager,Salary,Hire Date
Brad,brad@py.com,,90000,01/02/2015
Ted,ted@py.com,brad@py.com,70000,03/04/2018`

	result, err := ParseRoster(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseRoster() error = %v", err)
	}

	if len(result.Rows) != 2 {
		t.Fatalf("ParseRoster() got %d rows, want 2", len(result.Rows))
	}
	if result.HasErrors() {
		t.Errorf("ParseRoster() unexpected errors: %v", result.Errors)
	}

	row := result.Rows[1]
	if row.Line != 3 {
		t.Errorf("Row 1 Line = %d, want 3", row.Line)
	}
	if row.Fields["Email"] != "ted@py.com" {
		t.Errorf("Row 1 Email = %q, want %q", row.Fields["Email"], "ted@py.com")
	}
	if row.Fields["Manager"] != "brad@py.com" {
		t.Errorf("Row 1 Manager = %q, want %q", row.Fields["Manager"], "brad@py.com")
	}
	if row.Fields["Hire Date"] != "03/04/2018" {
		t.Errorf("Row 1 Hire Date = %q, want %q", row.Fields["Hire Date"], "03/04/2018")
	}
}

func TestParseRoster_BOMHandling(t *testing.T) {
	csv := "\ufeffEmail,Name\nbrad@py.com,Brad"

	result, err := ParseRoster(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseRoster() error = %v", err)
	}
	if result.Header[0] != "Email" {
		t.Errorf("Header[0] = %q, want %q", result.Header[0], "Email")
	}
	if len(result.Rows) != 1 || result.Rows[0].Fields["Email"] != "brad@py.com" {
		t.Errorf("ParseRoster() rows = %+v, want one row keyed by Email", result.Rows)
	}
}

func TestParseRoster_EmptyFile(t *testing.T) {
	result, err := ParseRoster(strings.NewReader(""), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseRoster() error = %v", err)
	}
	if len(result.Rows) != 0 {
		t.Errorf("ParseRoster() got %d rows, want 0", len(result.Rows))
	}
}

func TestParseRoster_HeaderErrors(t *testing.T) {
	tests := []struct {
		name        string
		csv         string
		errContains string
	}{
		{name: "blank header", csv: ",,\nbrad@py.com,Brad,", errContains: "missing header"},
		{name: "duplicate column", csv: "Email,Name,email\nbrad@py.com,Brad,x", errContains: "duplicate column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRoster(strings.NewReader(tt.csv), DefaultParseOptions())
			if err == nil {
				t.Fatal("ParseRoster() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q doesn't contain %q", err, tt.errContains)
			}
		})
	}
}

func TestParseRoster_RaggedRows(t *testing.T) {
	csv := `Email,Name,Salary
brad@py.com,Brad
ted@py.com,Ted,70000,extra`

	result, err := ParseRoster(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseRoster() error = %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("ParseRoster() got %d rows, want 2", len(result.Rows))
	}
	if _, ok := result.Rows[0].Fields["Salary"]; ok {
		t.Error("short row should not carry a Salary field")
	}
	if got := len(result.Rows[1].Fields); got != 3 {
		t.Errorf("long row has %d fields, want 3", got)
	}
}

func TestParseRoster_BadQuoting(t *testing.T) {
	csv := "Email,Name\nbrad@py.com,Br\"ad\nted@py.com,Ted"

	result, err := ParseRoster(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseRoster() error = %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("ParseRoster() got %d errors, want 1", len(result.Errors))
	}
	if result.Errors[0].Line != 2 {
		t.Errorf("error line = %d, want 2", result.Errors[0].Line)
	}
	if len(result.Rows) != 1 || result.Rows[0].Fields["Email"] != "ted@py.com" {
		t.Errorf("ParseRoster() rows = %+v, want only ted", result.Rows)
	}
}

func TestParseRoster_MaxRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Email,Name\n")
	for i := 0; i < 10; i++ {
		sb.WriteString("user@example.com,User\n")
	}

	opts := ParseOptions{MaxRows: 5}
	_, err := ParseRoster(strings.NewReader(sb.String()), opts)

	if err != ErrTooManyRows {
		t.Errorf("ParseRoster() error = %v, want ErrTooManyRows", err)
	}
}

func TestParseRoster_SkipsEmptyRows(t *testing.T) {
	csv := `Email,Name

brad@py.com,Brad
,

ted@py.com,Ted
`

	result, err := ParseRoster(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseRoster() error = %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("ParseRoster() got %d rows, want 2", len(result.Rows))
	}
	if result.Rows[1].Line != 6 {
		t.Errorf("second row Line = %d, want 6", result.Rows[1].Line)
	}
}

func TestRowError_String(t *testing.T) {
	e := RowError{Line: 4, Reason: "bare \" in non-quoted-field"}
	if got := e.String(); got != "line 4: bare \" in non-quoted-field" {
		t.Errorf("String() = %q", got)
	}
}

func TestDefaultParseOptions(t *testing.T) {
	opts := DefaultParseOptions()
	if opts.MaxRows != 0 {
		t.Errorf("DefaultParseOptions().MaxRows = %d, want 0 (unlimited)", opts.MaxRows)
	}
}

func TestConstants(t *testing.T) {
	if MaxUploadSize != 5<<20 {
		t.Errorf("MaxUploadSize = %d, want %d (5MB)", MaxUploadSize, 5<<20)
	}
	if MaxRows != 20000 {
		t.Errorf("MaxRows = %d, want 20000", MaxRows)
	}
}
