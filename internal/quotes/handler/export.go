package handler

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"orcamento_backend/internal/quotes/repository"
	"orcamento_backend/internal/quotes/service"
	"orcamento_backend/platform/apperr"
	"orcamento_backend/platform/httpkit"
	"orcamento_backend/platform/store"

	"github.com/gin-gonic/gin"
)

const exportFileName = "orcamentos.csv"

var exportHeaders = []string{
	"Número",
	"Produto",
	"Cliente",
	"Quantidade",
	"Valor unitário",
	"Total",
	"Margem (%)",
	"Valor final",
	"Validade",
	"Criado em",
}

// ExportCSV handles GET /api/v1/quotes/export.csv
// ?fromDate= and ?toDate= (YYYY-MM-DD, inclusive) restrict by creation date.
func (h *Handler) ExportCSV(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(err.Error()))
		return
	}

	items, err := h.svc.ListQuotesWithRelations(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+exportFileName)

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(exportHeaders); err != nil {
		return
	}
	for _, q := range items {
		if !inRange(q.CreatedAt, from, to) {
			continue
		}
		if err := writer.Write(exportRow(q)); err != nil {
			return
		}
	}
	writer.Flush()
}

func exportRow(q repository.QuoteWithRelations) []string {
	validUntil := ""
	if q.ValidUntil != nil {
		validUntil = q.ValidUntil.String()
	}
	return []string{
		csvText(q.QuoteNumber),
		csvText(q.QuoteName),
		csvText(service.DisplayClientName(q)),
		strconv.FormatFloat(q.Quantity, 'f', -1, 64),
		formatCents(q.UnitRateCents),
		formatCents(q.TotalCents),
		strconv.FormatFloat(q.ProfitMarginPercent, 'f', -1, 64),
		formatCents(q.FinalPriceCents),
		validUntil,
		q.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// csvText quotes free text that a spreadsheet would read as a formula.
func csvText(value string) string {
	if value != "" && strings.ContainsRune("=+-@\t\r", rune(value[0])) {
		return "'" + value
	}
	return value
}

// formatCents renders cents as a plain decimal for spreadsheet import.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func parseDateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if raw := strings.TrimSpace(c.Query("fromDate")); raw != "" {
		d, err := store.ParseDate(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("fromDate must be YYYY-MM-DD")
		}
		from = &d.Time
	}
	if raw := strings.TrimSpace(c.Query("toDate")); raw != "" {
		d, err := store.ParseDate(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("toDate must be YYYY-MM-DD")
		}
		end := d.AddDate(0, 0, 1)
		to = &end
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, fmt.Errorf("fromDate must not be after toDate")
	}
	return from, to, nil
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}
