package sanitize

import (
	"strings"
	"testing"
)

func TestEncodeFileName_RoundTrip(t *testing.T) {
	names := []string{
		"plain.txt",
		"with space.txt",
		"a&b=c?.txt",
		"100%.log",
		"日本語.pdf",
		"π≈3.14.md",
	}

	for _, name := range names {
		encoded := EncodeFileName(name)
		if got := DecodeFileName(encoded); got != name {
			t.Errorf("round trip %q -> %q -> %q", name, encoded, got)
		}
	}
}

func TestEncodeFileName_ReservedCharacters(t *testing.T) {
	encoded := EncodeFileName("a&b=c.txt")
	for _, forbidden := range []string{"&", "="} {
		if strings.Contains(encoded, forbidden) {
			t.Errorf("EncodeFileName left %q unescaped in %q", forbidden, encoded)
		}
	}
}

func TestDecodeFileName_Malformed(t *testing.T) {
	// A stray percent sign is not valid encoding; the name passes through.
	if got := DecodeFileName("bad%zz"); got != "bad%zz" {
		t.Errorf("DecodeFileName(bad%%zz) = %q, want unchanged", got)
	}
}

func TestEscapeHTML(t *testing.T) {
	if got := EscapeHTML(`<b>"x" & 'y'</b>`); got == `<b>"x" & 'y'</b>` {
		t.Error("EscapeHTML left markup unescaped")
	}
	if got := EscapeHTML("plain.txt"); got != "plain.txt" {
		t.Errorf("EscapeHTML(plain.txt) = %q", got)
	}
}
