package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		// Valid emails
		{"jsmith@performyard.com", true},
		{"JSMITH@PY.NET", true},
		{"j_smith@peformyard.web", true},
		{"j.Smith@py.pizza", true},
		{"jsmith123@perf.org", true},
		{"j-smith@performyard.com", true},
		{"jsmith@perform-yard.com", true},
		{"jsmith@performyard2.com", true},
		{"user+tag@sub.example.co.uk", true},
		{"  padded@example.com  ", true},

		// Invalid emails - empty/whitespace
		{"", false},
		{"   ", false},

		// Invalid emails - structure
		{"jsmith.com", false},
		{"jsmith@performyard", false},
		{"jsmith@performyard@py.com", false},
		{"@example.com", false},
		{"user@", false},

		// Invalid emails - local part
		{"jsmith(1)@performyard.com", false},
		{".user@example.com", false},
		{"user.@example.com", false},
		{"user..name@example.com", false},
		{"user name@example.com", false},

		// Invalid emails - domain labels
		{"jsmith@perform--yard.com", false},
		{"jsmith@-performyard.com", false},
		{"jsmith@performyard-.com", false},
		{"user@example..com", false},

		// Invalid emails - top-level label
		{"jsmith@performyard.c", false},
		{"jsmith@performyard.co2", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := IsValidEmail(tt.email)
			if got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `validate:"required,max=10" label:"Full name"`
		Email string `validate:"required,identity" label:"Email address"`
		Rows  int    `validate:"gte=0" label:"Max rows"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
	}{
		{
			name:       "valid input",
			input:      TestInput{Name: "John", Email: "john@example.com"},
			wantErrors: false,
		},
		{
			name:       "missing name",
			input:      TestInput{Name: "", Email: "john@example.com"},
			wantErrors: true,
			wantFirst:  "Full name is required.",
		},
		{
			name:       "name too long",
			input:      TestInput{Name: "VeryLongNameThatExceedsLimit", Email: "john@example.com"},
			wantErrors: true,
			wantFirst:  "Full name must be at most 10 characters.",
		},
		{
			name:       "invalid email",
			input:      TestInput{Name: "John", Email: "john@example"},
			wantErrors: true,
			wantFirst:  "A valid email address is required.",
		},
		{
			name:       "negative number",
			input:      TestInput{Name: "John", Email: "john@example.com", Rows: -1},
			wantErrors: true,
			wantFirst:  "Max rows must be at least 0.",
		},
		{
			name:       "missing both",
			input:      TestInput{Name: "", Email: ""},
			wantErrors: true,
			wantFirst:  "Full name is required.", // First error
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v", result.HasErrors(), tt.wantErrors)
			}

			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.All() != "" {
			t.Errorf("All() = %q, want empty", r.All())
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{
				{Message: "Error 1"},
				{Message: "Error 2"},
			},
		}
		want := "Error 1; Error 2"
		if r.All() != want {
			t.Errorf("All() = %q, want %q", r.All(), want)
		}
	})
}
