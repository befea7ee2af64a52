package parse

import "testing"

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantDate  string
		wantRest  string
		wantFound bool
	}{
		{
			name:      "short year dashes",
			input:     "Viagem 30-03-26",
			wantDate:  "2026-03-30",
			wantRest:  "Viagem",
			wantFound: true,
		},
		{
			name:      "full year slashes",
			input:     "Reforma 15/08/2027 da casa",
			wantDate:  "2027-08-15",
			wantRest:  "Reforma  da casa",
			wantFound: true,
		},
		{
			name:      "no date",
			input:     "Reserva de emergência",
			wantDate:  "",
			wantRest:  "Reserva de emergência",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, rest, found := ExtractDate(tt.input)
			if found != tt.wantFound {
				t.Fatalf("ExtractDate(%q) found = %v, want %v", tt.input, found, tt.wantFound)
			}
			if date != tt.wantDate {
				t.Errorf("ExtractDate(%q) date = %q, want %q", tt.input, date, tt.wantDate)
			}
			if rest != tt.wantRest {
				t.Errorf("ExtractDate(%q) rest = %q, want %q", tt.input, rest, tt.wantRest)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"30-03-26", "2026-03-30"},
		{"30/03/26", "2026-03-30"},
		{"01-12-2025", "2025-12-01"},
		{"5/7/25", "2025-07-05"},
		{"31-02-26", "31-02-26"}, // impossible date stays verbatim
		{"sem data", "sem data"},
	}

	for _, tt := range tests {
		if got := NormalizeDate(tt.input); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
