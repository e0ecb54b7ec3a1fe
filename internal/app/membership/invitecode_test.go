package membership

import (
	"strings"
	"testing"
)

func TestNewInviteCode_Length(t *testing.T) {
	code := NewInviteCode()
	if len(code) != CodeLength {
		t.Errorf("code length: got %d, want %d", len(code), CodeLength)
	}
}

func TestNewInviteCode_Alphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := NewInviteCode()
		for _, ch := range code {
			if !strings.ContainsRune(codeAlphabet, ch) {
				t.Fatalf("code %q contains %q, not in alphabet %q", code, ch, codeAlphabet)
			}
		}
	}
}

func TestNewInviteCode_NoAmbiguousCharacters(t *testing.T) {
	// 0, 1, I, and O are excluded so codes can be read aloud.
	for _, banned := range "01IO" {
		if strings.ContainsRune(codeAlphabet, banned) {
			t.Errorf("alphabet contains ambiguous character %q", banned)
		}
	}
}

func TestNewInviteCode_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[NewInviteCode()] = true
	}
	if len(seen) < 45 {
		t.Errorf("expected near-unique codes, got %d distinct out of 50", len(seen))
	}
}
