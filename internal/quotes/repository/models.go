package repository

import (
	"time"

	"orcamento_backend/platform/store"

	"github.com/google/uuid"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Quote is the stored model for a priced estimate. Column names double as
// JSON keys so the same type decodes from Postgres rows and PostgREST bodies.
type Quote struct {
	ID                  uuid.UUID   `db:"id" json:"id"`
	QuoteNumber         string      `db:"quote_number" json:"quote_number"`
	QuoteName           string      `db:"quote_name" json:"quote_name"`
	ClientName          string      `db:"client_name" json:"client_name"`
	ClientID            *uuid.UUID  `db:"client_id" json:"client_id"`
	CompanyID           *uuid.UUID  `db:"company_id" json:"company_id"`
	Quantity            float64     `db:"quantity" json:"quantity"`
	UnitRateCents       int64       `db:"unit_rate_cents" json:"unit_rate_cents"`
	SubtotalCents       int64       `db:"subtotal_cents" json:"subtotal_cents"`
	TotalCents          int64       `db:"total_cents" json:"total_cents"`
	ProfitMarginPercent float64     `db:"profit_margin_percent" json:"profit_margin_percent"`
	FinalPriceCents     int64       `db:"final_price_cents" json:"final_price_cents"`
	AdditionalNotes     *string     `db:"additional_notes" json:"additional_notes"`
	ValidUntil          *store.Date `db:"valid_until" json:"valid_until"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
	DeletedAt           *time.Time  `db:"deleted_at" json:"deleted_at"`
}

// Client is a contact the business quotes for.
type Client struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	TaxID     *string    `db:"tax_id" json:"tax_id"`
	Email     *string    `db:"email" json:"email"`
	Phone     *string    `db:"phone" json:"phone"`
	Address   *string    `db:"address" json:"address"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at"`
}

// Company is the issuing business shown on a quote.
type Company struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	TaxID     *string    `db:"tax_id" json:"tax_id"`
	Email     *string    `db:"email" json:"email"`
	Phone     *string    `db:"phone" json:"phone"`
	Address   *string    `db:"address" json:"address"`
	LogoURL   *string    `db:"logo_url" json:"logo_url"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at"`
}

// QuoteWithRelations is a quote plus its resolved client and company.
// A nil relation means the reference was empty, missing or soft-deleted.
type QuoteWithRelations struct {
	Quote
	Client  *Client
	Company *Company
}

// NewQuote holds the values persisted for a new quote. The quote number and
// timestamps are assigned by the repository and the store.
type NewQuote struct {
	QuoteName           string
	ClientName          string
	ClientID            *uuid.UUID
	CompanyID           *uuid.UUID
	Quantity            float64
	UnitRateCents       int64
	SubtotalCents       int64
	TotalCents          int64
	ProfitMarginPercent float64
	FinalPriceCents     int64
	AdditionalNotes     *string
	ValidUntil          *store.Date
}

// NewParty holds the values persisted for a new client or company.
type NewParty struct {
	Name    string
	TaxID   *string
	Email   *string
	Phone   *string
	Address *string
	LogoURL *string // companies only
}
