// Package whatsapp builds click-to-chat links for sharing a quote.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"orcamento_backend/platform/money"
	"orcamento_backend/platform/phone"

	"github.com/skip2/go-qrcode"
)

const (
	baseURL     = "https://wa.me/"
	unknown     = "N/I"
	defaultSize = 256
)

// ShareMessage is the quote summary sent in the chat.
type ShareMessage struct {
	ClientName      string
	FinalPriceCents int64
	ValidUntil      *time.Time
	// Phone targets a specific chat when it parses as a valid number.
	Phone string
}

// ShareLink is a ready-to-open wa.me URL and the text it carries.
type ShareLink struct {
	URL     string
	Message string
}

// Sharer renders share messages for one locale and phone region.
type Sharer struct {
	format *money.Formatter
	phones *phone.Normalizer
}

// NewSharer creates a Sharer.
func NewSharer(locale, region string) *Sharer {
	return &Sharer{
		format: money.NewFormatter(locale),
		phones: phone.NewNormalizer(region),
	}
}

// Message renders the chat text for m.
func (s *Sharer) Message(m ShareMessage) string {
	name := strings.TrimSpace(m.ClientName)
	if name == "" {
		name = unknown
	}
	validity := unknown
	if m.ValidUntil != nil {
		validity = s.format.Date(*m.ValidUntil)
	}
	return fmt.Sprintf("Olá! Segue o orçamento:\n\nCliente: %s\nValor: %s\nValidade: %s\n\nAguardo retorno!",
		name, s.format.Currency(m.FinalPriceCents), validity)
}

// BuildShareLink returns the wa.me link for m. Without a valid phone the
// link opens the contact picker.
func (s *Sharer) BuildShareLink(m ShareMessage) ShareLink {
	message := s.Message(m)
	target := baseURL
	if digits, ok := s.phones.Digits(m.Phone); ok {
		target += digits
	}
	return ShareLink{
		URL:     target + "?text=" + escape(message),
		Message: message,
	}
}

// QRCode encodes link as a PNG. A non-positive size uses 256 pixels.
func QRCode(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = defaultSize
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// escape percent-encodes like encodeURIComponent: spaces become %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
