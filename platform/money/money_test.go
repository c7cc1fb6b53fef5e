package money

import (
	"testing"
	"time"
)

func TestCurrencyUsesBrazilianGrouping(t *testing.T) {
	f := NewFormatter("pt-BR")
	cases := map[int64]string{
		0:         "R$ 0,00",
		12500:     "R$ 125,00",
		125000:    "R$ 1.250,00",
		123456789: "R$ 1.234.567,89",
	}
	for cents, want := range cases {
		if got := f.Currency(cents); got != want {
			t.Fatalf("Currency(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestInvalidLocaleFallsBack(t *testing.T) {
	f := NewFormatter("??")
	if got := f.Currency(100); got != "R$ 1,00" {
		t.Fatalf("expected pt-BR fallback, got %q", got)
	}
}

func TestDate(t *testing.T) {
	f := NewFormatter("pt-BR")
	if got := f.Date(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)); got != "09/03/2026" {
		t.Fatalf("unexpected date %q", got)
	}
}
