package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"orcamento_backend/internal/quotes/repository"
	"orcamento_backend/internal/quotes/transport"
	"orcamento_backend/platform/apperr"
	"orcamento_backend/platform/logger"
	"orcamento_backend/platform/store/memstore"
	"orcamento_backend/platform/validator"
)

type quoteConfig struct {
	rate int64
	days int
}

func (c quoteConfig) GetQuoteBaseRateCents() int64 { return c.rate }
func (c quoteConfig) GetQuoteValidityDays() int    { return c.days }

type transitionLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *transitionLog) observe(op string, from, to State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, op+":"+from.String()+">"+to.String())
}

func (l *transitionLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.steps...)
}

type outcomeCounter struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *outcomeCounter) QuoteSubmitted(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = make(map[string]int)
	}
	c.outcomes[outcome]++
}

type harness struct {
	svc       *Service
	quotes    *memstore.Table[repository.Quote]
	clients   *memstore.Table[repository.Client]
	companies *memstore.Table[repository.Company]
	log       *transitionLog
	metrics   *outcomeCounter
}

func newHarness(t *testing.T, cfg quoteConfig) harness {
	t.Helper()
	h := harness{
		quotes:    memstore.NewTable[repository.Quote](memstore.WithUnique("quote_number")),
		clients:   memstore.NewTable[repository.Client](),
		companies: memstore.NewTable[repository.Company](),
		log:       &transitionLog{},
		metrics:   &outcomeCounter{},
	}
	repo := repository.New(repository.Tables{Quotes: h.quotes, Clients: h.clients, Companies: h.companies}).
		WithClock(steppingClock(time.Now()))
	h.svc = New(repo, validator.New(), cfg, logger.Discard())
	h.svc.SetObserver(h.log.observe)
	h.svc.SetMetrics(h.metrics)
	return h
}

// steppingClock keeps quote numbers distinct when submits land in the same millisecond.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Millisecond)
		return current
	}
}

func margin(v float64) *float64 { return &v }

func joaoForm() transport.QuoteForm {
	return transport.QuoteForm{
		Cliente:     "João",
		Produto:     "Site",
		Quantidade:  "1",
		MargemLucro: margin(25),
	}
}

func TestSubmitPricesAndPersists(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000})

	quote, err := h.svc.Submit(context.Background(), joaoForm())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if quote.FinalPriceCents != 12500 {
		t.Fatalf("expected final price 12500, got %d", quote.FinalPriceCents)
	}
	if quote.SubtotalCents != 10000 || quote.TotalCents != 10000 {
		t.Fatalf("expected subtotal and total 10000, got %d/%d", quote.SubtotalCents, quote.TotalCents)
	}
	if quote.QuoteName != "Site" || quote.ClientName != "João" {
		t.Fatalf("unexpected names %q/%q", quote.QuoteName, quote.ClientName)
	}
	if quote.ValidUntil != nil {
		t.Fatalf("expected no validity without a default, got %v", quote.ValidUntil)
	}

	listed, err := h.svc.ListQuotes(context.Background())
	if err != nil {
		t.Fatalf("ListQuotes returned error: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != quote.ID {
		t.Fatalf("expected listing to contain the new quote, got %+v", listed)
	}

	want := []string{"submit:idle>submitting", "submit:submitting>succeeded"}
	if got := h.log.all(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected transitions %v", got)
	}
	if h.metrics.outcomes[OutcomeSucceeded] != 1 {
		t.Fatalf("expected one succeeded outcome, got %v", h.metrics.outcomes)
	}
}

func TestSubmitMatchesCalculator(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 8750})
	form := joaoForm()
	form.Quantidade = "3,5 horas"
	form.MargemLucro = margin(12.5)

	quote, err := h.svc.Submit(context.Background(), form)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	want := ComputeFinalPrice(ComputeBaseTotal(3.5, 8750), 12.5)
	if quote.FinalPriceCents != want {
		t.Fatalf("expected final price %d, got %d", want, quote.FinalPriceCents)
	}
}

func TestSubmitRejectsInvalidFormWithoutStoreCall(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*transport.QuoteForm)
		field string
	}{
		{"margin above range", func(f *transport.QuoteForm) { f.MargemLucro = margin(150) }, "margemLucro"},
		{"negative margin", func(f *transport.QuoteForm) { f.MargemLucro = margin(-1) }, "margemLucro"},
		{"missing margin", func(f *transport.QuoteForm) { f.MargemLucro = nil }, "margemLucro"},
		{"short client", func(f *transport.QuoteForm) { f.Cliente = "J" }, "cliente"},
		{"short product", func(f *transport.QuoteForm) { f.Produto = " " }, "produto"},
		{"zero quantity", func(f *transport.QuoteForm) { f.Quantidade = "0" }, "quantidade"},
		{"text quantity", func(f *transport.QuoteForm) { f.Quantidade = "muitos" }, "quantidade"},
		{"bad client id", func(f *transport.QuoteForm) { f.ClientID = "abc" }, "clientId"},
		{"bad valid until", func(f *transport.QuoteForm) { f.ValidUntil = "31/12/2026" }, "validUntil"},
		{"quantity beyond cents range", func(f *transport.QuoteForm) { f.Quantidade = "99999999999999999999" }, "quantidade"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, quoteConfig{rate: 10000})
			form := joaoForm()
			tc.mut(&form)

			_, err := h.svc.Submit(context.Background(), form)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var appErr *apperr.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *apperr.Error, got %T", err)
			}
			details, _ := appErr.Details.(map[string]string)
			if _, ok := details[tc.field]; !ok {
				t.Fatalf("expected details for %s, got %v", tc.field, details)
			}
			if calls := h.quotes.Calls(); calls.Inserts != 0 {
				t.Fatalf("expected no inserts, got %d", calls.Inserts)
			}
			got := h.log.all()
			if len(got) != 2 || got[1] != "submit:submitting>failed" {
				t.Fatalf("expected failed transition, got %v", got)
			}
		})
	}
}

func TestSubmitPersistenceFailureLeavesCacheUntouched(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000})
	ctx := context.Background()

	if _, err := h.svc.Submit(ctx, joaoForm()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if _, err := h.svc.ListQuotesWithRelations(ctx); err != nil {
		t.Fatalf("list returned error: %v", err)
	}

	h.quotes.Fail(errors.New("connection refused"))
	_, err := h.svc.Submit(ctx, joaoForm())
	if !apperr.Is(err, apperr.KindPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	snapshot, fresh := h.svc.quotes.Snapshot()
	if !fresh || len(snapshot) != 1 {
		t.Fatalf("expected fresh cache with one quote, got fresh=%v len=%d", fresh, len(snapshot))
	}
	if h.metrics.outcomes[OutcomeFailed] != 1 {
		t.Fatalf("expected one failed outcome, got %v", h.metrics.outcomes)
	}
}

func TestSubmitDefaultsValidity(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000, days: 15})
	h.svc.SetClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) })

	quote, err := h.svc.Submit(context.Background(), joaoForm())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if quote.ValidUntil == nil || quote.ValidUntil.String() != "2026-03-16" {
		t.Fatalf("expected validity 2026-03-16, got %v", quote.ValidUntil)
	}

	form := joaoForm()
	form.ValidUntil = "2026-12-31"
	quote, err = h.svc.Submit(context.Background(), form)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if quote.ValidUntil == nil || quote.ValidUntil.String() != "2026-12-31" {
		t.Fatalf("expected explicit validity, got %v", quote.ValidUntil)
	}
}

func TestSoftDeletedClientResolvesToNil(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000})
	ctx := context.Background()

	client, err := h.svc.CreateClient(ctx, transport.CreatePartyRequest{Name: "João Silva"})
	if err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}
	form := joaoForm()
	form.ClientID = client.ID.String()
	quote, err := h.svc.Submit(ctx, form)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if err := h.svc.RemoveClient(ctx, client.ID.String()); err != nil {
		t.Fatalf("RemoveClient returned error: %v", err)
	}

	got, err := h.svc.GetQuoteWithRelations(ctx, quote.ID.String())
	if err != nil {
		t.Fatalf("GetQuoteWithRelations returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected quote to be returned")
	}
	if got.Client != nil {
		t.Fatalf("expected nil client after soft delete, got %+v", got.Client)
	}
	if got.ClientID == nil || *got.ClientID != client.ID {
		t.Fatal("expected the weak reference to be kept on the quote")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000})
	ctx := context.Background()

	if err := h.svc.Remove(ctx, "00000000-0000-0000-0000-000000000000"); err != nil {
		t.Fatalf("removing a nonexistent quote returned error: %v", err)
	}

	quote, err := h.svc.Submit(ctx, joaoForm())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := h.svc.Remove(ctx, quote.ID.String()); err != nil {
			t.Fatalf("Remove #%d returned error: %v", i+1, err)
		}
	}

	listed, err := h.svc.ListQuotes(ctx)
	if err != nil {
		t.Fatalf("ListQuotes returned error: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty listing after remove, got %d", len(listed))
	}
	if got, _ := h.svc.GetQuote(ctx, quote.ID.String()); got != nil {
		t.Fatal("expected removed quote to be hidden")
	}
}

func TestRemoveFailureKeepsCache(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000})
	ctx := context.Background()

	quote, err := h.svc.Submit(ctx, joaoForm())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if _, err := h.svc.ListQuotes(ctx); err != nil {
		t.Fatalf("ListQuotes returned error: %v", err)
	}

	h.quotes.Fail(errors.New("timeout"))
	if err := h.svc.Remove(ctx, quote.ID.String()); !apperr.Is(err, apperr.KindPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if _, fresh := h.svc.quotes.Snapshot(); !fresh {
		t.Fatal("expected cache to stay fresh after failed remove")
	}
	steps := h.log.all()
	if steps[len(steps)-1] != "remove:submitting>failed" {
		t.Fatalf("expected failed remove transition, got %v", steps)
	}
}

func TestSearchIgnoresCaseAndAccents(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000})
	ctx := context.Background()

	if _, err := h.svc.Submit(ctx, joaoForm()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	other := joaoForm()
	other.Cliente = "Maria"
	other.Produto = "Consultoria"
	if _, err := h.svc.Submit(ctx, other); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	got, err := h.svc.SearchQuotes(ctx, "JOAO")
	if err != nil {
		t.Fatalf("SearchQuotes returned error: %v", err)
	}
	if len(got) != 1 || got[0].ClientName != "João" {
		t.Fatalf("expected João's quote, got %+v", got)
	}

	got, _ = h.svc.SearchQuotes(ctx, "consul")
	if len(got) != 1 || got[0].QuoteName != "Consultoria" {
		t.Fatalf("expected product match, got %+v", got)
	}

	got, _ = h.svc.SearchQuotes(ctx, "  ")
	if len(got) != 2 {
		t.Fatalf("expected blank search to return everything, got %d", len(got))
	}
}

func TestQuoteStats(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := h.svc.Submit(ctx, joaoForm()); err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
	}

	stats, err := h.svc.QuoteStats(ctx)
	if err != nil {
		t.Fatalf("QuoteStats returned error: %v", err)
	}
	if stats.Count != 2 || stats.TotalFinalPriceCents != 25000 || stats.CreatedThisMonth != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestPreview(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000})

	pricing, err := h.svc.Preview(transport.CalculateRequest{Quantidade: "2", MargemLucro: margin(10)})
	if err != nil {
		t.Fatalf("Preview returned error: %v", err)
	}
	if pricing.FinalPriceCents != 22000 {
		t.Fatalf("expected 22000, got %d", pricing.FinalPriceCents)
	}
	if calls := h.quotes.Calls(); calls.Inserts != 0 {
		t.Fatal("preview must not persist")
	}

	if _, err := h.svc.Preview(transport.CalculateRequest{Quantidade: "2", MargemLucro: margin(101)}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := h.svc.Preview(transport.CalculateRequest{Quantidade: "99999999999999999999", MargemLucro: margin(10)}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for oversized quantity, got %v", err)
	}
}

func TestValidateRejectsWithoutStoreCall(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000})
	form := joaoForm()
	form.MargemLucro = margin(150)

	if err := h.svc.Validate(form); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls := h.quotes.Calls(); calls.Inserts != 0 {
		t.Fatalf("expected no inserts, got %d", calls.Inserts)
	}
	if h.metrics.outcomes[OutcomeInvalid] != 1 {
		t.Fatalf("expected one invalid outcome, got %v", h.metrics.outcomes)
	}

	if err := h.svc.Validate(joaoForm()); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
	if len(h.log.all()) != 2 {
		t.Fatalf("expected a valid form to leave no transitions, got %v", h.log.all())
	}
}

func TestOversizedQuantityKeepsListingReadable(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000})
	ctx := context.Background()
	if _, err := h.svc.Submit(ctx, joaoForm()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	huge := joaoForm()
	huge.Quantidade = "99999999999999999999"
	if _, err := h.svc.Submit(ctx, huge); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	listed, err := h.svc.ListQuotes(ctx)
	if err != nil {
		t.Fatalf("ListQuotes returned error: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected the first quote only, got %d", len(listed))
	}
}

func TestCreateClientNormalizesPhone(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000})
	phone := "(11) 98765-4321"
	html := "<b>Rua A</b>, 10"

	client, err := h.svc.CreateClient(context.Background(), transport.CreatePartyRequest{
		Name:    "Ana",
		Phone:   &phone,
		Address: &html,
	})
	if err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}
	if client.Phone == nil || *client.Phone != "+5511987654321" {
		t.Fatalf("expected E.164 phone, got %v", client.Phone)
	}
	if client.Address == nil || *client.Address != "Rua A, 10" {
		t.Fatalf("expected stripped address, got %v", client.Address)
	}

	clients, err := h.svc.ListClients(context.Background())
	if err != nil || len(clients) != 1 {
		t.Fatalf("expected one client, got %d (%v)", len(clients), err)
	}
}

func TestCreateCompanyValidates(t *testing.T) {
	h := newHarness(t, quoteConfig{rate: 10000})

	_, err := h.svc.CreateCompany(context.Background(), transport.CreatePartyRequest{Name: "A"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls := h.companies.Calls(); calls.Inserts != 0 {
		t.Fatal("invalid company must not reach the store")
	}

	logo := "https://example.com/logo.png"
	company, err := h.svc.CreateCompany(context.Background(), transport.CreatePartyRequest{Name: "Acme Ltda", LogoURL: &logo})
	if err != nil {
		t.Fatalf("CreateCompany returned error: %v", err)
	}
	if company.LogoURL == nil || *company.LogoURL != logo {
		t.Fatalf("expected logo to be stored, got %v", company.LogoURL)
	}
	if err := h.svc.RemoveCompany(context.Background(), company.ID.String()); err != nil {
		t.Fatalf("RemoveCompany returned error: %v", err)
	}
	companies, _ := h.svc.ListCompanies(context.Background())
	if len(companies) != 0 {
		t.Fatalf("expected no companies after remove, got %d", len(companies))
	}
}
