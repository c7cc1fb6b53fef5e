// Package money formats integer cent amounts for display.
// This is part of the platform layer and contains no business logic.
package money

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts and dates for one locale.
type Formatter struct {
	printer *message.Printer
	symbol  string
	layout  string
}

// NewFormatter builds a Formatter for a BCP 47 locale such as "pt-BR".
// Unknown or empty locales fall back to Brazilian Portuguese.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || locale == "" {
		tag = language.BrazilianPortuguese
	}
	return &Formatter{
		printer: message.NewPrinter(tag),
		symbol:  "R$",
		layout:  "02/01/2006",
	}
}

// Currency renders cents as "R$ 1.250,00" with locale grouping.
func (f *Formatter) Currency(cents int64) string {
	return f.symbol + " " + f.printer.Sprintf("%.2f", float64(cents)/100)
}

// Percent renders a margin such as 12.5 as "12,5%".
func (f *Formatter) Percent(value float64) string {
	return f.printer.Sprintf("%v%%", value)
}

// Number renders a plain quantity such as 3.5 as "3,5".
func (f *Formatter) Number(value float64) string {
	return f.printer.Sprintf("%v", value)
}

// Date renders t as dd/mm/yyyy.
func (f *Formatter) Date(t time.Time) string {
	return t.Format(f.layout)
}
