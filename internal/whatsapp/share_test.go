package whatsapp

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestMessage(t *testing.T) {
	s := NewSharer("pt-BR", "BR")
	valid := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	got := s.Message(ShareMessage{ClientName: "João", FinalPriceCents: 125000, ValidUntil: &valid})
	want := "Olá! Segue o orçamento:\n\nCliente: João\nValor: R$ 1.250,00\nValidade: 30/06/2026\n\nAguardo retorno!"
	if got != want {
		t.Fatalf("unexpected message:\n%q\nwant\n%q", got, want)
	}
}

func TestMessageFallsBackToNotInformed(t *testing.T) {
	s := NewSharer("pt-BR", "BR")
	got := s.Message(ShareMessage{FinalPriceCents: 12500})
	if !strings.Contains(got, "Cliente: N/I") || !strings.Contains(got, "Validade: N/I") {
		t.Fatalf("expected N/I placeholders, got %q", got)
	}
}

func TestBuildShareLinkWithoutPhone(t *testing.T) {
	s := NewSharer("pt-BR", "BR")
	link := s.BuildShareLink(ShareMessage{ClientName: "Ana Paula", FinalPriceCents: 100, Phone: "not a phone"})

	if !strings.HasPrefix(link.URL, "https://wa.me/?text=") {
		t.Fatalf("unexpected url %q", link.URL)
	}
	if strings.Contains(link.URL, "+") {
		t.Fatalf("spaces must be encoded as %%20, got %q", link.URL)
	}
	parsed, err := url.Parse(link.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if parsed.Query().Get("text") != link.Message {
		t.Fatal("expected the text parameter to decode to the message")
	}
}

func TestBuildShareLinkWithPhone(t *testing.T) {
	s := NewSharer("pt-BR", "BR")
	link := s.BuildShareLink(ShareMessage{ClientName: "Ana", Phone: "(11) 98765-4321"})
	if !strings.HasPrefix(link.URL, "https://wa.me/5511987654321?text=") {
		t.Fatalf("expected phone-targeted link, got %q", link.URL)
	}
}

func TestQRCodeIsPNG(t *testing.T) {
	png, err := QRCode("https://wa.me/?text=ol%C3%A1", 0)
	if err != nil {
		t.Fatalf("QRCode returned error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatal("expected PNG output")
	}
}
