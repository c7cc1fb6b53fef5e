package phone

import "testing"

func TestE164UsesDefaultRegion(t *testing.T) {
	n := NewNormalizer("")
	if got := n.E164("(11) 98765-4321"); got != "+5511987654321" {
		t.Fatalf("expected +5511987654321, got %q", got)
	}
}

func TestE164KeepsUnparseableInput(t *testing.T) {
	n := NewNormalizer("BR")
	if got := n.E164("  ramal 12 "); got != "ramal 12" {
		t.Fatalf("expected trimmed input, got %q", got)
	}
}

func TestDigitsStripsPlus(t *testing.T) {
	n := NewNormalizer("br")
	digits, ok := n.Digits("+55 11 98765-4321")
	if !ok || digits != "5511987654321" {
		t.Fatalf("expected 5511987654321, got %q (ok=%v)", digits, ok)
	}
	if _, ok := n.Digits("123"); ok {
		t.Fatal("expected short number to be rejected")
	}
}
