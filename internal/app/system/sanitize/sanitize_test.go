package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Evening check-in", "Evening check-in"},
		{"trims whitespace", "  hello  ", "hello"},
		{"strips tags", "<script>alert(1)</script>hi", "hi"},
		{"strips markup keeps text", "<b>bold</b> words", "bold words"},
		{"entities unescaped", "fish &amp; chips", "fish & chips"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Text(tc.in); got != tc.want {
				t.Errorf("Text(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestAlias(t *testing.T) {
	if got := Alias("River", 64); got != "River" {
		t.Errorf("Alias = %q, want River", got)
	}
	if got := Alias("abcdefghij", 4); got != "abcd" {
		t.Errorf("Alias = %q, want capped abcd", got)
	}
	if got := Alias("<i>Sky</i>", 64); got != "Sky" {
		t.Errorf("Alias = %q, want Sky", got)
	}

	// The cap counts runes, never bytes, so multi-byte names stay valid
	// UTF-8 after truncation.
	if got := Alias("こんにちは世界", 5); got != "こんにちは" {
		t.Errorf("Alias = %q, want five runes intact", got)
	}
	if got := Alias("Renée", 4); got != "René" {
		t.Errorf("Alias = %q, want the accent preserved", got)
	}
}
