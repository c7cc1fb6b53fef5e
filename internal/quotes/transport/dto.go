package transport

import "time"

// ── Requests ──────────────────────────────────────────────────────────────────

// QuoteForm is the submitted quote form. Field names follow the form the
// automation webhook already expects.
type QuoteForm struct {
	Cliente     string   `json:"cliente" validate:"required,min=2,max=200"`
	Produto     string   `json:"produto" validate:"required,min=2,max=200"`
	Quantidade  string   `json:"quantidade" validate:"required,max=50"`
	MargemLucro *float64 `json:"margemLucro" validate:"required,gte=0,lte=100"`
	Observacoes string   `json:"observacoes" validate:"max=2000"`
	ClientID    string   `json:"clientId,omitempty" validate:"omitempty,uuid"`
	CompanyID   string   `json:"companyId,omitempty" validate:"omitempty,uuid"`
	ValidUntil  string   `json:"validUntil,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// WebhookPayload is the raw form forwarded to the automation webhook.
func (f QuoteForm) WebhookPayload() map[string]any {
	var margin any
	if f.MargemLucro != nil {
		margin = *f.MargemLucro
	}
	return map[string]any{
		"cliente":     f.Cliente,
		"produto":     f.Produto,
		"quantidade":  f.Quantidade,
		"margemLucro": margin,
		"observacoes": f.Observacoes,
	}
}

// CalculateRequest previews pricing without persisting anything.
type CalculateRequest struct {
	Quantidade  string   `json:"quantidade" validate:"required,max=50"`
	MargemLucro *float64 `json:"margemLucro" validate:"required,gte=0,lte=100"`
}

// CreatePartyRequest creates a client or a company.
type CreatePartyRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=200"`
	TaxID   *string `json:"taxId" validate:"omitempty,max=32"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	LogoURL *string `json:"logoUrl" validate:"omitempty,url"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// ClientResponse is a client as returned by the API.
type ClientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     *string   `json:"taxId,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CompanyResponse is a company as returned by the API.
type CompanyResponse struct {
	ClientResponse
	LogoURL *string `json:"logoUrl,omitempty"`
}

// QuoteResponse is a quote as returned by the API. Client and Company are
// null when the reference is empty or no longer resolves.
type QuoteResponse struct {
	ID                  string           `json:"id"`
	QuoteNumber         string           `json:"quoteNumber"`
	Name                string           `json:"name"`
	ClientName          string           `json:"clientName"`
	ClientID            *string          `json:"clientId"`
	CompanyID           *string          `json:"companyId"`
	Quantity            float64          `json:"quantity"`
	UnitRateCents       int64            `json:"unitRateCents"`
	SubtotalCents       int64            `json:"subtotalCents"`
	TotalCents          int64            `json:"totalCents"`
	ProfitMarginPercent float64          `json:"profitMarginPercent"`
	FinalPriceCents     int64            `json:"finalPriceCents"`
	Notes               *string          `json:"notes"`
	ValidUntil          *string          `json:"validUntil"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
	Client              *ClientResponse  `json:"client,omitempty"`
	Company             *CompanyResponse `json:"company,omitempty"`
}

// NotificationResult reports the webhook outcome for one submission.
type NotificationResult struct {
	Delivered bool   `json:"delivered"`
	Skipped   bool   `json:"skipped,omitempty"`
	Response  any    `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SubmitQuoteResponse is returned by POST /quotes.
type SubmitQuoteResponse struct {
	Quote        QuoteResponse      `json:"quote"`
	Notification NotificationResult `json:"notification"`
}

// QuoteListResponse wraps a quote listing.
type QuoteListResponse struct {
	Items []QuoteResponse `json:"items"`
	Total int             `json:"total"`
}

// ClientListResponse wraps a client listing.
type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
	Total int              `json:"total"`
}

// CompanyListResponse wraps a company listing.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Total int               `json:"total"`
}

// QuoteStatsResponse summarizes the active quotes.
type QuoteStatsResponse struct {
	Count                int   `json:"count"`
	TotalFinalPriceCents int64 `json:"totalFinalPriceCents"`
	CreatedThisMonth     int   `json:"createdThisMonth"`
}

// CalculationResponse is the pricing preview.
type CalculationResponse struct {
	Quantity            float64 `json:"quantity"`
	UnitRateCents       int64   `json:"unitRateCents"`
	SubtotalCents       int64   `json:"subtotalCents"`
	TotalCents          int64   `json:"totalCents"`
	ProfitMarginPercent float64 `json:"profitMarginPercent"`
	FinalPriceCents     int64   `json:"finalPriceCents"`
	FinalPriceFormatted string  `json:"finalPriceFormatted"`
}

// ShareLinkResponse is the WhatsApp share link for a quote.
type ShareLinkResponse struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// ArchiveResponse points at an archived PDF.
type ArchiveResponse struct {
	FileKey     string    `json:"fileKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
