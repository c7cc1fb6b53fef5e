package handler

import (
	"context"
	"net/http"
	"strings"

	"orcamento_backend/internal/adapters/storage"
	"orcamento_backend/internal/pdf"
	"orcamento_backend/internal/quotes/repository"
	"orcamento_backend/internal/quotes/service"
	"orcamento_backend/internal/quotes/transport"
	"orcamento_backend/internal/whatsapp"
	"orcamento_backend/platform/apperr"
	"orcamento_backend/platform/httpkit"
	"orcamento_backend/platform/money"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	msgInvalidRequest = "invalid request"
	msgQuoteNotFound  = "quote not found"
)

// Notifier forwards submitted forms to the automation webhook.
type Notifier interface {
	Enabled() bool
	Notify(ctx context.Context, payload any) (any, error)
}

// Handler handles HTTP requests for quotes, clients and companies
type Handler struct {
	svc        *service.Service
	notifier   Notifier
	pdfGen     *pdf.Generator
	sharer     *whatsapp.Sharer
	format     *money.Formatter
	storageSvc storage.StorageService
	pdfBucket  string
}

// New creates a new quotes handler. locale drives currency and date
// formatting; region is the default phone region for share links.
func New(svc *service.Service, notifier Notifier, locale, region string) *Handler {
	return &Handler{
		svc:      svc,
		notifier: notifier,
		pdfGen:   pdf.NewGenerator(locale),
		sharer:   whatsapp.NewSharer(locale, region),
		format:   money.NewFormatter(locale),
	}
}

// SetStorageForPDF injects the storage service and bucket for PDF archiving.
func (h *Handler) SetStorageForPDF(svc storage.StorageService, bucket string) {
	h.storageSvc = svc
	h.pdfBucket = bucket
}

// RegisterRoutes registers the quote routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Submit)
	rg.GET("/stats", h.Stats)
	rg.GET("/export.csv", h.ExportCSV)
	rg.POST("/calculate", h.PreviewCalculation)
	rg.GET("/:id", h.GetByID)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/pdf", h.DownloadPDF)
	rg.POST("/:id/pdf/archive", h.ArchivePDF)
	rg.GET("/:id/share/whatsapp", h.ShareWhatsApp)
	rg.GET("/:id/share/whatsapp/qr", h.ShareWhatsAppQR)
}

// Submit handles POST /api/v1/quotes
// A valid form is persisted and forwarded to the webhook concurrently; an
// invalid one is rejected before either happens. The webhook outcome is
// reported but never fails the submit.
func (h *Handler) Submit(c *gin.Context) {
	var form transport.QuoteForm
	if err := c.ShouldBindJSON(&form); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.svc.Validate(form); httpkit.HandleError(c, err) {
		return
	}

	ctx := c.Request.Context()
	var (
		quote        *repository.Quote
		submitErr    error
		notification transport.NotificationResult
	)

	var g errgroup.Group
	g.Go(func() error {
		quote, submitErr = h.svc.Submit(ctx, form)
		return nil
	})
	g.Go(func() error {
		notification = h.notify(context.WithoutCancel(ctx), form)
		return nil
	})
	_ = g.Wait()

	if httpkit.HandleError(c, submitErr) {
		return
	}

	httpkit.Created(c, transport.SubmitQuoteResponse{
		Quote:        toQuoteResponse(repository.QuoteWithRelations{Quote: *quote}),
		Notification: notification,
	})
}

func (h *Handler) notify(ctx context.Context, form transport.QuoteForm) transport.NotificationResult {
	if h.notifier == nil || !h.notifier.Enabled() {
		return transport.NotificationResult{Skipped: true}
	}
	resp, err := h.notifier.Notify(ctx, form.WebhookPayload())
	if err != nil {
		return transport.NotificationResult{Error: err.Error()}
	}
	return transport.NotificationResult{Delivered: true, Response: resp}
}

// List handles GET /api/v1/quotes
// ?relations=false drops client and company; ?search= filters by client,
// product or quote number.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	withRelations := !strings.EqualFold(c.Query("relations"), "false")
	search := strings.TrimSpace(c.Query("search"))

	var items []repository.QuoteWithRelations
	var err error
	switch {
	case search != "":
		items, err = h.svc.SearchQuotes(ctx, search)
	case withRelations:
		items, err = h.svc.ListQuotesWithRelations(ctx)
	default:
		var quotes []repository.Quote
		quotes, err = h.svc.ListQuotes(ctx)
		for _, q := range quotes {
			items = append(items, repository.QuoteWithRelations{Quote: q})
		}
	}
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.QuoteListResponse{Items: make([]transport.QuoteResponse, 0, len(items)), Total: len(items)}
	for _, item := range items {
		if !withRelations {
			item.Client, item.Company = nil, nil
		}
		resp.Items = append(resp.Items, toQuoteResponse(item))
	}
	httpkit.OK(c, resp)
}

// Stats handles GET /api/v1/quotes/stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.QuoteStats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.QuoteStatsResponse{
		Count:                stats.Count,
		TotalFinalPriceCents: stats.TotalFinalPriceCents,
		CreatedThisMonth:     stats.CreatedThisMonth,
	})
}

// PreviewCalculation handles POST /api/v1/quotes/calculate
// Returns calculated totals without persisting anything.
func (h *Handler) PreviewCalculation(c *gin.Context) {
	var req transport.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	pricing, err := h.svc.Preview(req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.CalculationResponse{
		Quantity:            pricing.Quantity,
		UnitRateCents:       pricing.UnitRateCents,
		SubtotalCents:       pricing.SubtotalCents,
		TotalCents:          pricing.TotalCents,
		ProfitMarginPercent: pricing.ProfitMarginPercent,
		FinalPriceCents:     pricing.FinalPriceCents,
		FinalPriceFormatted: h.format.Currency(pricing.FinalPriceCents),
	})
}

// GetByID handles GET /api/v1/quotes/:id
func (h *Handler) GetByID(c *gin.Context) {
	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}
	httpkit.OK(c, toQuoteResponse(*quote))
}

// Delete handles DELETE /api/v1/quotes/:id
// Deleting an unknown or already deleted quote still answers 204.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("id")); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

// loadQuote resolves :id with relations and writes a 404 when it is
// absent, deleted or malformed.
func (h *Handler) loadQuote(c *gin.Context) (*repository.QuoteWithRelations, bool) {
	quote, err := h.svc.GetQuoteWithRelations(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return nil, false
	}
	if quote == nil {
		httpkit.HandleError(c, apperr.NotFound(msgQuoteNotFound))
		return nil, false
	}
	return quote, true
}
