package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"orcamento_backend/internal/pdf"
	"orcamento_backend/internal/quotes/repository"
	"orcamento_backend/internal/quotes/service"
	"orcamento_backend/internal/quotes/transport"
	"orcamento_backend/internal/whatsapp"
	"orcamento_backend/platform/apperr"
	"orcamento_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	contentTypePDF = "application/pdf"
	contentTypePNG = "image/png"

	minQRSize = 128
	maxQRSize = 1024
)

// DownloadPDF handles GET /api/v1/quotes/:id/pdf
func (h *Handler) DownloadPDF(c *gin.Context) {
	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}

	pdfBytes, err := h.pdfGen.GenerateQuotePDF(toPDFData(*quote))
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "PDF generation failed", err))
		return
	}
	servePDFBytes(c, quote.QuoteNumber, pdfBytes)
}

// ArchivePDF handles POST /api/v1/quotes/:id/pdf/archive
// Uploads the generated PDF to object storage and returns a presigned link.
func (h *Handler) ArchivePDF(c *gin.Context) {
	if h.storageSvc == nil || h.pdfBucket == "" {
		httpkit.HandleError(c, apperr.Unavailable("PDF archive storage is not configured"))
		return
	}

	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}

	pdfBytes, err := h.pdfGen.GenerateQuotePDF(toPDFData(*quote))
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "PDF generation failed", err))
		return
	}

	ctx := c.Request.Context()
	fileKey, err := h.storageSvc.UploadFile(ctx, h.pdfBucket, "quotes/"+quote.QuoteNumber,
		pdfFileName(quote.QuoteNumber), contentTypePDF, bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		httpkit.HandleError(c, apperr.Persistence("failed to archive PDF", err))
		return
	}

	link, err := h.storageSvc.GenerateDownloadURL(ctx, h.pdfBucket, fileKey)
	if err != nil {
		httpkit.HandleError(c, apperr.Persistence("failed to sign PDF download", err))
		return
	}

	httpkit.Created(c, transport.ArchiveResponse{
		FileKey:     fileKey,
		DownloadURL: link.URL,
		ExpiresAt:   link.ExpiresAt,
	})
}

// ShareWhatsApp handles GET /api/v1/quotes/:id/share/whatsapp
func (h *Handler) ShareWhatsApp(c *gin.Context) {
	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}
	link := h.sharer.BuildShareLink(toShareMessage(*quote))
	httpkit.OK(c, transport.ShareLinkResponse{URL: link.URL, Message: link.Message})
}

// ShareWhatsAppQR handles GET /api/v1/quotes/:id/share/whatsapp/qr
// ?size= sets the PNG edge in pixels (128 to 1024).
func (h *Handler) ShareWhatsAppQR(c *gin.Context) {
	size := 256
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < minQRSize || parsed > maxQRSize {
			httpkit.HandleError(c, apperr.BadRequest(fmt.Sprintf("size must be between %d and %d", minQRSize, maxQRSize)))
			return
		}
		size = parsed
	}

	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}
	link := h.sharer.BuildShareLink(toShareMessage(*quote))
	png, err := whatsapp.QRCode(link.URL, size)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "QR code generation failed", err))
		return
	}
	c.Data(http.StatusOK, contentTypePNG, png)
}

func servePDFBytes(c *gin.Context, quoteNumber string, pdfBytes []byte) {
	setPDFHeaders(c, quoteNumber)
	c.Data(http.StatusOK, contentTypePDF, pdfBytes)
}

func setPDFHeaders(c *gin.Context, quoteNumber string) {
	c.Header("Content-Type", contentTypePDF)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, pdfFileName(quoteNumber)))
}

func pdfFileName(quoteNumber string) string {
	return fmt.Sprintf("Orcamento-%s.pdf", quoteNumber)
}

func toPDFData(q repository.QuoteWithRelations) pdf.QuotePDFData {
	data := pdf.QuotePDFData{
		QuoteNumber:         q.QuoteNumber,
		QuoteName:           q.QuoteName,
		CreatedAt:           q.CreatedAt,
		ValidUntil:          validUntilTime(q.Quote),
		Notes:               q.AdditionalNotes,
		Client:              pdf.Party{Name: service.DisplayClientName(q)},
		Quantity:            q.Quantity,
		UnitRateCents:       q.UnitRateCents,
		SubtotalCents:       q.SubtotalCents,
		TotalCents:          q.TotalCents,
		ProfitMarginPercent: q.ProfitMarginPercent,
		FinalPriceCents:     q.FinalPriceCents,
	}
	if q.Client != nil {
		data.Client = pdf.Party{
			Name:    q.Client.Name,
			TaxID:   deref(q.Client.TaxID),
			Email:   deref(q.Client.Email),
			Phone:   deref(q.Client.Phone),
			Address: deref(q.Client.Address),
		}
	}
	if q.Company != nil {
		data.Company = pdf.Party{
			Name:    q.Company.Name,
			TaxID:   deref(q.Company.TaxID),
			Email:   deref(q.Company.Email),
			Phone:   deref(q.Company.Phone),
			Address: deref(q.Company.Address),
		}
	}
	return data
}

func toShareMessage(q repository.QuoteWithRelations) whatsapp.ShareMessage {
	msg := whatsapp.ShareMessage{
		ClientName:      service.DisplayClientName(q),
		FinalPriceCents: q.FinalPriceCents,
		ValidUntil:      validUntilTime(q.Quote),
	}
	if q.Client != nil {
		msg.Phone = deref(q.Client.Phone)
	}
	return msg
}

func validUntilTime(q repository.Quote) *time.Time {
	if q.ValidUntil == nil {
		return nil
	}
	t := q.ValidUntil.Time
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
