package pdf

import (
	"bytes"
	"testing"
	"time"
)

func TestGenerateQuotePDF(t *testing.T) {
	valid := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	notes := "Entrega em 10 dias úteis."
	data := QuotePDFData{
		QuoteNumber:         "ORC-20260504-133000-000",
		QuoteName:           "Site institucional",
		CreatedAt:           time.Date(2026, 5, 4, 13, 30, 0, 0, time.UTC),
		ValidUntil:          &valid,
		Notes:               &notes,
		Company:             Party{Name: "Acme Ltda", TaxID: "12.345.678/0001-90", Email: "contato@acme.com.br"},
		Client:              Party{Name: "João", Phone: "+5511987654321"},
		Quantity:            1,
		UnitRateCents:       10000,
		SubtotalCents:       10000,
		TotalCents:          10000,
		ProfitMarginPercent: 25,
		FinalPriceCents:     12500,
	}

	out, err := NewGenerator("pt-BR").GenerateQuotePDF(data)
	if err != nil {
		t.Fatalf("GenerateQuotePDF returned error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("expected output to be a PDF document")
	}
}

func TestGenerateQuotePDFWithoutRelations(t *testing.T) {
	out, err := NewGenerator("").GenerateQuotePDF(QuotePDFData{
		QuoteNumber:     "ORC-20260504-133000-001",
		QuoteName:       "Consultoria",
		CreatedAt:       time.Now(),
		Client:          Party{Name: "Maria"},
		Quantity:        2,
		UnitRateCents:   10000,
		SubtotalCents:   20000,
		TotalCents:      20000,
		FinalPriceCents: 20000,
	})
	if err != nil {
		t.Fatalf("GenerateQuotePDF returned error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected a non-empty document")
	}
}

func TestJoinPartsSkipsEmpty(t *testing.T) {
	if got := joinParts([]string{"", "a", "", "b"}, " | "); got != "a | b" {
		t.Fatalf("unexpected join %q", got)
	}
}
