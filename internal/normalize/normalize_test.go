package normalize

import "testing"

func TestNumeral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"devanagari digits", "४०", "40"},
		{"mixed digits", "रू १,२३४.५०", "1234.50"},
		{"thousands separator", "1,000", "1000"},
		{"currency marker only", "रू", ""},
		{"already ascii", "45.5", "45.5"},
		{"surrounding whitespace", "  ७५ ", "75"},
		{"empty", "", ""},
		{"non numeric text", "आलु रातो", "आलु रातो"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Numeral(tt.input); got != tt.want {
				t.Fatalf("Numeral(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNumeralIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"४०", "रू १,२३४.५०", "45.5", "", "आलु"}
	for _, in := range inputs {
		once := Numeral(in)
		if twice := Numeral(once); twice != once {
			t.Fatalf("Numeral not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"newlines", "one\ntwo\n\nthree", "one two three"},
		{"tabs and runs", "a \t b   c", "a b c"},
		{"trim", "  पशु सेवा  ", "पशु सेवा"},
		{"only whitespace", " \n\t ", ""},
		{"empty", "", ""},
		{"already clean", "ready text", "ready text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Clean(tt.input); got != tt.want {
				t.Fatalf("Clean(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}
