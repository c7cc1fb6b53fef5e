package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orcamento_backend/platform/apperr"
	"orcamento_backend/platform/store"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Table names in the backing store.
const (
	TableQuotes    = "quotes"
	TableClients   = "clients"
	TableCompanies = "companies"
)

const quoteNumberPrefix = "ORC-"

// Tables bundles the three collections the repository works over.
type Tables struct {
	Quotes    store.Table[Quote]
	Clients   store.Table[Client]
	Companies store.Table[Company]
}

// Repository provides store operations for quotes, clients and companies.
type Repository struct {
	quotes    store.Table[Quote]
	clients   store.Table[Client]
	companies store.Table[Company]
	now       func() time.Time
}

// New creates a new quotes repository
func New(tables Tables) *Repository {
	return &Repository{
		quotes:    tables.Quotes,
		clients:   tables.Clients,
		companies: tables.Companies,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for quote numbers and timestamps.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// QuoteNumber derives the human readable number for a quote created at t.
// Two quotes created within the same millisecond get the same number.
func QuoteNumber(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s%s-%03d", quoteNumberPrefix, t.Format("20060102-150405"), t.Nanosecond()/int(time.Millisecond))
}

// CreateQuote assigns a quote number and inserts the quote.
func (r *Repository) CreateQuote(ctx context.Context, in NewQuote) (*Quote, error) {
	now := r.now()
	values := map[string]any{
		"quote_number":          QuoteNumber(now),
		"quote_name":            in.QuoteName,
		"client_name":           in.ClientName,
		"client_id":             in.ClientID,
		"company_id":            in.CompanyID,
		"quantity":              in.Quantity,
		"unit_rate_cents":       in.UnitRateCents,
		"subtotal_cents":        in.SubtotalCents,
		"total_cents":           in.TotalCents,
		"profit_margin_percent": in.ProfitMarginPercent,
		"final_price_cents":     in.FinalPriceCents,
		"additional_notes":      in.AdditionalNotes,
		"valid_until":           in.ValidUntil,
	}

	created, err := r.quotes.Insert(ctx, values)
	if err != nil {
		if errors.Is(err, store.ErrConstraint) {
			return nil, apperr.Persistence("quote conflicts with an existing record", err).WithOp("CreateQuote")
		}
		return nil, persistence("CreateQuote", "failed to create quote", err)
	}
	return &created, nil
}

// GetQuote returns the active quote with id, or nil when it is absent,
// soft-deleted or id is not a valid identifier.
func (r *Repository) GetQuote(ctx context.Context, id string) (*Quote, error) {
	quote, err := getActive(ctx, r.quotes, id)
	if err != nil {
		return nil, persistence("GetQuote", "failed to load quote", err)
	}
	return quote, nil
}

// GetQuoteWithRelations returns the quote with its client and company resolved.
// Missing or soft-deleted relations resolve to nil.
func (r *Repository) GetQuoteWithRelations(ctx context.Context, id string) (*QuoteWithRelations, error) {
	quote, err := r.GetQuote(ctx, id)
	if err != nil || quote == nil {
		return nil, err
	}

	result := &QuoteWithRelations{Quote: *quote}
	g, gctx := errgroup.WithContext(ctx)
	if quote.ClientID != nil {
		g.Go(func() error {
			client, err := getActive(gctx, r.clients, quote.ClientID.String())
			result.Client = client
			return err
		})
	}
	if quote.CompanyID != nil {
		g.Go(func() error {
			company, err := getActive(gctx, r.companies, quote.CompanyID.String())
			result.Company = company
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, persistence("GetQuoteWithRelations", "failed to load quote relations", err)
	}
	return result, nil
}

// ListQuotes returns active quotes, newest first.
func (r *Repository) ListQuotes(ctx context.Context) ([]Quote, error) {
	quotes, err := r.quotes.Select(ctx, store.Query{
		Filters: []store.Filter{store.Active()},
		Order:   []store.Order{store.Desc("created_at")},
	})
	if err != nil {
		return nil, persistence("ListQuotes", "failed to list quotes", err)
	}
	return quotes, nil
}

// ListQuotesWithRelations returns active quotes, newest first, with clients and
// companies resolved through one batched read per related table.
func (r *Repository) ListQuotesWithRelations(ctx context.Context) ([]QuoteWithRelations, error) {
	quotes, err := r.ListQuotes(ctx)
	if err != nil {
		return nil, err
	}

	clientIDs := make([]uuid.UUID, 0, len(quotes))
	companyIDs := make([]uuid.UUID, 0, len(quotes))
	for _, q := range quotes {
		if q.ClientID != nil {
			clientIDs = append(clientIDs, *q.ClientID)
		}
		if q.CompanyID != nil {
			companyIDs = append(companyIDs, *q.CompanyID)
		}
	}

	var clients map[uuid.UUID]*Client
	var companies map[uuid.UUID]*Company
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = activeByID(gctx, r.clients, clientIDs, func(c Client) uuid.UUID { return c.ID })
		return err
	})
	g.Go(func() error {
		var err error
		companies, err = activeByID(gctx, r.companies, companyIDs, func(c Company) uuid.UUID { return c.ID })
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, persistence("ListQuotesWithRelations", "failed to load quote relations", err)
	}

	result := make([]QuoteWithRelations, len(quotes))
	for i, q := range quotes {
		result[i] = QuoteWithRelations{Quote: q}
		if q.ClientID != nil {
			result[i].Client = clients[*q.ClientID]
		}
		if q.CompanyID != nil {
			result[i].Company = companies[*q.CompanyID]
		}
	}
	return result, nil
}

// SoftDeleteQuote stamps deleted_at on an active quote. Deleting an unknown,
// malformed or already deleted id is a no-op.
func (r *Repository) SoftDeleteQuote(ctx context.Context, id string) error {
	if _, err := softDelete(ctx, r.quotes, id, r.now()); err != nil {
		return persistence("SoftDeleteQuote", "failed to delete quote", err)
	}
	return nil
}

// ── Clients ───────────────────────────────────────────────────────────────────

// CreateClient inserts a client.
func (r *Repository) CreateClient(ctx context.Context, in NewParty) (*Client, error) {
	created, err := r.clients.Insert(ctx, partyValues(in, false))
	if err != nil {
		return nil, persistence("CreateClient", "failed to create client", err)
	}
	return &created, nil
}

// GetClient returns the active client with id, or nil.
func (r *Repository) GetClient(ctx context.Context, id string) (*Client, error) {
	client, err := getActive(ctx, r.clients, id)
	if err != nil {
		return nil, persistence("GetClient", "failed to load client", err)
	}
	return client, nil
}

// ListClients returns active clients ordered by name.
func (r *Repository) ListClients(ctx context.Context) ([]Client, error) {
	clients, err := listByName(ctx, r.clients)
	if err != nil {
		return nil, persistence("ListClients", "failed to list clients", err)
	}
	return clients, nil
}

// SoftDeleteClient stamps deleted_at on an active client. Quotes keep their reference.
func (r *Repository) SoftDeleteClient(ctx context.Context, id string) error {
	if _, err := softDelete(ctx, r.clients, id, r.now()); err != nil {
		return persistence("SoftDeleteClient", "failed to delete client", err)
	}
	return nil
}

// ── Companies ─────────────────────────────────────────────────────────────────

// CreateCompany inserts a company.
func (r *Repository) CreateCompany(ctx context.Context, in NewParty) (*Company, error) {
	created, err := r.companies.Insert(ctx, partyValues(in, true))
	if err != nil {
		return nil, persistence("CreateCompany", "failed to create company", err)
	}
	return &created, nil
}

// GetCompany returns the active company with id, or nil.
func (r *Repository) GetCompany(ctx context.Context, id string) (*Company, error) {
	company, err := getActive(ctx, r.companies, id)
	if err != nil {
		return nil, persistence("GetCompany", "failed to load company", err)
	}
	return company, nil
}

// ListCompanies returns active companies ordered by name.
func (r *Repository) ListCompanies(ctx context.Context) ([]Company, error) {
	companies, err := listByName(ctx, r.companies)
	if err != nil {
		return nil, persistence("ListCompanies", "failed to list companies", err)
	}
	return companies, nil
}

// SoftDeleteCompany stamps deleted_at on an active company.
func (r *Repository) SoftDeleteCompany(ctx context.Context, id string) error {
	if _, err := softDelete(ctx, r.companies, id, r.now()); err != nil {
		return persistence("SoftDeleteCompany", "failed to delete company", err)
	}
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func persistence(op, message string, err error) error {
	return apperr.Persistence(message, err).WithOp(op)
}

func partyValues(in NewParty, withLogo bool) map[string]any {
	values := map[string]any{
		"name":    in.Name,
		"tax_id":  in.TaxID,
		"email":   in.Email,
		"phone":   in.Phone,
		"address": in.Address,
	}
	if withLogo {
		values["logo_url"] = in.LogoURL
	}
	return values
}

func getActive[T any](ctx context.Context, table store.Table[T], id string) (*T, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	rows, err := table.Select(ctx, store.Query{
		Filters: []store.Filter{store.Eq("id", parsed), store.Active()},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func activeByID[T any](ctx context.Context, table store.Table[T], ids []uuid.UUID, key func(T) uuid.UUID) (map[uuid.UUID]*T, error) {
	out := make(map[uuid.UUID]*T)
	ids = dedupe(ids)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := table.Select(ctx, store.Query{
		Filters: []store.Filter{store.In("id", ids), store.Active()},
	})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		out[key(rows[i])] = &rows[i]
	}
	return out, nil
}

func listByName[T any](ctx context.Context, table store.Table[T]) ([]T, error) {
	return table.Select(ctx, store.Query{
		Filters: []store.Filter{store.Active()},
		Order:   []store.Order{store.Asc("name")},
	})
}

func softDelete[T any](ctx context.Context, table store.Table[T], id string, now time.Time) (int64, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return 0, nil
	}
	now = now.UTC()
	return table.Update(ctx,
		[]store.Filter{store.Eq("id", parsed), store.Active()},
		map[string]any{"deleted_at": now, "updated_at": now},
	)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
