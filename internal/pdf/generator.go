// Package pdf provides quote PDF generation using maroto/v2.
// The document shows the issuing company, the client, the priced product
// line, the margin and final price, the validity date and any notes.
package pdf

import (
	"fmt"
	"strings"
	"time"

	"orcamento_backend/platform/money"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ── Colour palette ──────────────────────────────────────────────────────

var (
	colorPrimary   = &props.Color{Red: 17, Green: 24, Blue: 39}    // near-black
	colorSecondary = &props.Color{Red: 107, Green: 114, Blue: 128} // gray-500
	colorAccent    = &props.Color{Red: 22, Green: 163, Blue: 74}   // green-600
	colorTableHead = &props.Color{Red: 241, Green: 245, Blue: 249} // slate-100
	colorTableAlt  = &props.Color{Red: 249, Green: 250, Blue: 251} // gray-50
	colorBorder    = &props.Color{Red: 226, Green: 232, Blue: 240} // slate-200
)

// ── Data struct ─────────────────────────────────────────────────────────

// Party is the issuer or recipient block of a quote.
type Party struct {
	Name    string
	TaxID   string
	Email   string
	Phone   string
	Address string
}

// QuotePDFData holds all data needed to generate a quote PDF.
type QuotePDFData struct {
	QuoteNumber string
	QuoteName   string
	CreatedAt   time.Time
	ValidUntil  *time.Time
	Notes       *string

	// Company is the issuer. An empty name leaves the block out.
	Company Party
	Client  Party

	Quantity            float64
	UnitRateCents       int64
	SubtotalCents       int64
	TotalCents          int64
	ProfitMarginPercent float64
	FinalPriceCents     int64
}

// Generator renders quote documents for one locale.
type Generator struct {
	format *money.Formatter
}

// NewGenerator creates a Generator formatting amounts and dates for locale.
func NewGenerator(locale string) *Generator {
	return &Generator{format: money.NewFormatter(locale)}
}

// GenerateQuotePDF creates the PDF document for the given quote data.
func (g *Generator) GenerateQuotePDF(data QuotePDFData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterFooter(g.buildFooter(data)); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	m.AddRows(g.buildHeader(data)...)
	m.AddRows(separator())
	m.AddRows(row.New(6))

	m.AddRows(g.buildPartyBlock(data)...)
	m.AddRows(row.New(6))

	m.AddRows(g.buildItemsTable(data)...)
	m.AddRows(row.New(4))

	m.AddRows(g.buildTotalsBlock(data)...)

	if data.Notes != nil && strings.TrimSpace(*data.Notes) != "" {
		m.AddRows(row.New(6))
		m.AddRows(buildNotesBlock(*data.Notes)...)
	}

	m.AddRows(row.New(8))
	m.AddRows(g.buildTerms(data)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// ── Header ──────────────────────────────────────────────────────────────

func (g *Generator) buildHeader(data QuotePDFData) []core.Row {
	issuer := data.Company.Name
	if issuer == "" {
		issuer = "Orçamento"
	}

	return []core.Row{
		row.New(20).Add(
			col.New(6).Add(text.New(issuer, props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Color: colorPrimary,
				Top:   4,
			})),
			col.New(6).Add(
				text.New("ORÇAMENTO", props.Text{
					Size:  22,
					Style: fontstyle.Bold,
					Align: align.Right,
					Color: colorAccent,
				}),
				text.New(data.QuoteNumber, props.Text{
					Size:  11,
					Align: align.Right,
					Color: colorSecondary,
					Top:   12,
				}),
			),
		),
	}
}

// ── Company / client block ──────────────────────────────────────────────

func (g *Generator) buildPartyBlock(data QuotePDFData) []core.Row {
	label := props.Text{Size: 7, Style: fontstyle.Bold, Color: colorAccent}
	name := props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary}
	detail := props.Text{Size: 8, Color: colorSecondary}
	right := props.Text{Size: 8, Color: colorSecondary, Align: align.Right}

	validity := "Validade: não informada"
	if data.ValidUntil != nil {
		validity = "Validade: " + g.format.Date(*data.ValidUntil)
	}

	rows := []core.Row{
		row.New(5).Add(
			col.New(5).Add(text.New("DE", label)),
			col.New(4).Add(text.New("PARA", label)),
			col.New(3).Add(text.New("DETALHES", props.Text{Size: 7, Style: fontstyle.Bold, Color: colorAccent, Align: align.Right})),
		),
		row.New(5).Add(
			col.New(5).Add(text.New(orDash(data.Company.Name), name)),
			col.New(4).Add(text.New(orDash(data.Client.Name), name)),
			col.New(3).Add(text.New("Data: "+g.format.Date(data.CreatedAt), right)),
		),
		row.New(5).Add(
			col.New(5).Add(text.New(data.Company.Address, detail)),
			col.New(4).Add(text.New(data.Client.Address, detail)),
			col.New(3).Add(text.New(validity, right)),
		),
		row.New(5).Add(
			col.New(5).Add(text.New(joinParts([]string{data.Company.Email, data.Company.Phone}, "  |  "), detail)),
			col.New(4).Add(text.New(joinParts([]string{data.Client.Email, data.Client.Phone}, "  |  "), detail)),
			col.New(3),
		),
	}

	if data.Company.TaxID != "" || data.Client.TaxID != "" {
		rows = append(rows, row.New(5).Add(
			col.New(5).Add(text.New(taxLabel(data.Company.TaxID), detail)),
			col.New(4).Add(text.New(taxLabel(data.Client.TaxID), detail)),
			col.New(3),
		))
	}

	return rows
}

// ── Product line ────────────────────────────────────────────────────────

func (g *Generator) buildItemsTable(data QuotePDFData) []core.Row {
	headerStyle := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Top: 1.5}
	headerStyleRight := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 1.5}
	normalStyle := props.Text{Size: 8, Color: colorPrimary, Top: 1}
	rightStyle := props.Text{Size: 8, Color: colorPrimary, Align: align.Right, Top: 1}

	return []core.Row{
		row.New(7).Add(
			col.New(12).Add(text.New("PRODUTO / SERVIÇO", props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Color: colorAccent,
			})),
		),
		row.New(7).Add(
			col.New(6).Add(text.New("Descrição", headerStyle)),
			col.New(2).Add(text.New("Quantidade", headerStyleRight)),
			col.New(2).Add(text.New("Valor unitário", headerStyleRight)),
			col.New(2).Add(text.New("Subtotal", headerStyleRight)),
		).WithStyle(&props.Cell{
			BackgroundColor: colorTableHead,
			BorderType:      border.Bottom,
			BorderColor:     colorBorder,
		}),
		row.New(7).Add(
			col.New(6).Add(text.New(data.QuoteName, normalStyle)),
			col.New(2).Add(text.New(g.format.Number(data.Quantity), rightStyle)),
			col.New(2).Add(text.New(g.format.Currency(data.UnitRateCents), rightStyle)),
			col.New(2).Add(text.New(g.format.Currency(data.SubtotalCents), rightStyle)),
		).WithStyle(&props.Cell{BackgroundColor: colorTableAlt}),
	}
}

// ── Totals block ────────────────────────────────────────────────────────

func (g *Generator) buildTotalsBlock(data QuotePDFData) []core.Row {
	labelStyle := props.Text{Size: 9, Color: colorSecondary, Align: align.Right}
	valueStyle := props.Text{Size: 9, Color: colorPrimary, Align: align.Right}
	totalStyle := props.Text{Size: 12, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 2}

	marginCents := data.FinalPriceCents - data.TotalCents

	return []core.Row{
		separator(),
		row.New(3),
		row.New(6).Add(
			col.New(9).Add(text.New("Total", labelStyle)),
			col.New(3).Add(text.New(g.format.Currency(data.TotalCents), valueStyle)),
		),
		row.New(6).Add(
			col.New(9).Add(text.New("Margem ("+g.format.Percent(data.ProfitMarginPercent)+")", labelStyle)),
			col.New(3).Add(text.New(g.format.Currency(marginCents), valueStyle)),
		),
		row.New(2),
		row.New(10).Add(
			col.New(9).Add(text.New("VALOR FINAL", totalStyle)),
			col.New(3).Add(text.New(g.format.Currency(data.FinalPriceCents), totalStyle)),
		).WithStyle(&props.Cell{
			BackgroundColor: colorTableHead,
			BorderType:      border.Top | border.Bottom,
			BorderColor:     colorBorder,
		}),
	}
}

// ── Notes ───────────────────────────────────────────────────────────────

func buildNotesBlock(notes string) []core.Row {
	return []core.Row{
		row.New(5).Add(
			col.New(12).Add(text.New("OBSERVAÇÕES", props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Color: colorAccent,
			})),
		),
		row.New(12).Add(
			col.New(12).Add(text.New(notes, props.Text{
				Size:  8,
				Color: colorSecondary,
				Top:   1,
			})),
		),
	}
}

// ── Terms ───────────────────────────────────────────────────────────────

func (g *Generator) buildTerms(data QuotePDFData) []core.Row {
	validity := "1.  Orçamento sem prazo de validade definido."
	if data.ValidUntil != nil {
		validity = "1.  Orçamento válido até " + g.format.Date(*data.ValidUntil) + "."
	}
	terms := []string{
		validity,
		"2.  Valores expressos em reais (R$).",
		"3.  Condições de pagamento a combinar.",
	}

	rows := []core.Row{
		separator(),
		row.New(3),
		row.New(5).Add(
			col.New(12).Add(text.New("CONDIÇÕES", props.Text{
				Size:  7,
				Style: fontstyle.Bold,
				Color: colorAccent,
			})),
		),
	}
	for _, term := range terms {
		rows = append(rows, row.New(4).Add(
			col.New(12).Add(text.New(term, props.Text{Size: 7, Color: colorSecondary})),
		))
	}
	return rows
}

// ── Footer (registered, repeats on every page) ──────────────────────────

func (g *Generator) buildFooter(data QuotePDFData) core.Row {
	parts := []string{data.Company.Name, taxLabel(data.Company.TaxID), data.Company.Phone, data.Company.Email}
	footerText := joinParts(parts, "  ·  ")
	if footerText == "" {
		footerText = data.QuoteNumber
	}

	return row.New(10).Add(
		col.New(12).Add(
			text.New(footerText, props.Text{
				Size:  6.5,
				Color: colorSecondary,
				Align: align.Center,
				Top:   4,
			}),
		),
	).WithStyle(&props.Cell{
		BorderType:  border.Top,
		BorderColor: colorBorder,
	})
}

// ── Helpers ─────────────────────────────────────────────────────────────

func separator() core.Row {
	return row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	})
}

func taxLabel(taxID string) string {
	if taxID == "" {
		return ""
	}
	return "CPF/CNPJ: " + taxID
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func joinParts(parts []string, sep string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
