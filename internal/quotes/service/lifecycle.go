package service

import (
	"context"
	"strings"
	"time"

	"orcamento_backend/internal/quotes/repository"
	"orcamento_backend/internal/quotes/transport"
	"orcamento_backend/platform/apperr"
	"orcamento_backend/platform/config"
	"orcamento_backend/platform/logger"
	"orcamento_backend/platform/phone"
	"orcamento_backend/platform/sanitize"
	"orcamento_backend/platform/store"
	"orcamento_backend/platform/validator"

	"github.com/google/uuid"
)

// State is the phase of a single submit or remove call.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Submission outcomes reported to the metrics recorder.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

const (
	msgPositiveQuantity = "deve ser um número positivo"
	msgAmountTooLarge   = "resulta em um valor acima do limite permitido"
)

const (
	opSubmit = "submit"
	opRemove = "remove"
)

// Observer receives every state transition of the controller.
type Observer func(operation string, from, to State)

// MetricsRecorder counts submission outcomes.
type MetricsRecorder interface {
	QuoteSubmitted(outcome string)
}

// Repository is the persistence surface the controller depends on.
type Repository interface {
	CreateQuote(ctx context.Context, in repository.NewQuote) (*repository.Quote, error)
	GetQuote(ctx context.Context, id string) (*repository.Quote, error)
	GetQuoteWithRelations(ctx context.Context, id string) (*repository.QuoteWithRelations, error)
	ListQuotesWithRelations(ctx context.Context) ([]repository.QuoteWithRelations, error)
	SoftDeleteQuote(ctx context.Context, id string) error

	CreateClient(ctx context.Context, in repository.NewParty) (*repository.Client, error)
	ListClients(ctx context.Context) ([]repository.Client, error)
	SoftDeleteClient(ctx context.Context, id string) error

	CreateCompany(ctx context.Context, in repository.NewParty) (*repository.Company, error)
	ListCompanies(ctx context.Context) ([]repository.Company, error)
	SoftDeleteCompany(ctx context.Context, id string) error
}

// Service is the quote lifecycle controller. It validates and prices
// submitted forms, persists them and keeps the cached listings in step
// with successful writes.
type Service struct {
	repo      Repository
	validator *validator.Validator
	log       *logger.Logger

	quotes    *Cache[repository.QuoteWithRelations]
	clients   *Cache[repository.Client]
	companies *Cache[repository.Company]

	observer      Observer
	metrics       MetricsRecorder
	phones        *phone.Normalizer
	baseRateCents int64
	validityDays  int
	now           func() time.Time
}

// New creates the lifecycle controller.
func New(repo Repository, val *validator.Validator, cfg config.QuoteConfig, log *logger.Logger) *Service {
	s := &Service{
		repo:          repo,
		validator:     val,
		log:           log,
		phones:        phone.NewNormalizer(phone.DefaultRegion),
		baseRateCents: cfg.GetQuoteBaseRateCents(),
		validityDays:  cfg.GetQuoteValidityDays(),
		now:           time.Now,
	}
	s.quotes = NewCache(repo.ListQuotesWithRelations)
	s.clients = NewCache(repo.ListClients)
	s.companies = NewCache(repo.ListCompanies)
	return s
}

// SetObserver registers a transition observer (tests, tracing).
func (s *Service) SetObserver(observer Observer) {
	s.observer = observer
}

// SetMetrics sets the submission outcome recorder.
func (s *Service) SetMetrics(metrics MetricsRecorder) {
	s.metrics = metrics
}

// SetPhoneNormalizer replaces the default BR phone normalizer.
func (s *Service) SetPhoneNormalizer(n *phone.Normalizer) {
	s.phones = n
}

// SetClock replaces the time source used for default validity dates.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// BaseRateCents is the unit rate applied to form quantities.
func (s *Service) BaseRateCents() int64 {
	return s.baseRateCents
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// Submit validates, prices and persists a quote form. Validation failures
// never reach the store, and the quote cache is only invalidated after the
// insert succeeded.
func (s *Service) Submit(ctx context.Context, form transport.QuoteForm) (*repository.Quote, error) {
	s.transition(opSubmit, StateIdle, StateSubmitting)

	in, err := s.prepare(form)
	if err != nil {
		s.transition(opSubmit, StateSubmitting, StateFailed)
		s.record(OutcomeInvalid)
		return nil, err
	}

	quote, err := s.repo.CreateQuote(ctx, in)
	if err != nil {
		s.log.WithContext(ctx).StoreError("CreateQuote", err)
		s.transition(opSubmit, StateSubmitting, StateFailed)
		s.record(OutcomeFailed)
		return nil, err
	}

	s.quotes.Invalidate()
	s.transition(opSubmit, StateSubmitting, StateSucceeded)
	s.record(OutcomeSucceeded)
	return quote, nil
}

// Validate checks a form the same way Submit does, without touching the
// store. A rejected form is reported as a failed, invalid submission, so
// callers that gate side effects on it should not call Submit afterwards.
func (s *Service) Validate(form transport.QuoteForm) error {
	if _, err := s.prepare(form); err != nil {
		s.transition(opSubmit, StateIdle, StateSubmitting)
		s.transition(opSubmit, StateSubmitting, StateFailed)
		s.record(OutcomeInvalid)
		return err
	}
	return nil
}

// Remove soft-deletes a quote. Removing an unknown or already deleted
// quote succeeds.
func (s *Service) Remove(ctx context.Context, id string) error {
	s.transition(opRemove, StateIdle, StateSubmitting)
	if err := s.repo.SoftDeleteQuote(ctx, id); err != nil {
		s.log.WithContext(ctx).StoreError("SoftDeleteQuote", err)
		s.transition(opRemove, StateSubmitting, StateFailed)
		return err
	}
	s.quotes.Invalidate()
	s.transition(opRemove, StateSubmitting, StateSucceeded)
	return nil
}

// Preview prices a quantity and margin without persisting anything.
func (s *Service) Preview(req transport.CalculateRequest) (Pricing, error) {
	fields := validator.FieldErrors(s.validator.Struct(req))
	quantity, ok := ParseQuantity(req.Quantidade)
	if req.Quantidade != "" && (!ok || quantity <= 0) {
		fields = withField(fields, "quantidade", msgPositiveQuantity)
	}
	if ok && req.MargemLucro != nil && !FitsCents(quantity, s.baseRateCents, *req.MargemLucro) {
		fields = withField(fields, "quantidade", msgAmountTooLarge)
	}
	if len(fields) > 0 {
		return Pricing{}, apperr.Validation("dados de cálculo inválidos").WithDetails(fields).WithOp("Preview")
	}
	return Price(quantity, s.baseRateCents, *req.MargemLucro), nil
}

func (s *Service) prepare(form transport.QuoteForm) (repository.NewQuote, error) {
	form.Cliente = sanitize.Text(form.Cliente)
	form.Produto = sanitize.Text(form.Produto)
	form.Quantidade = strings.TrimSpace(form.Quantidade)
	form.Observacoes = sanitize.Text(form.Observacoes)

	fields := validator.FieldErrors(s.validator.Struct(form))
	quantity, ok := ParseQuantity(form.Quantidade)
	if form.Quantidade != "" && (!ok || quantity <= 0) {
		fields = withField(fields, "quantidade", msgPositiveQuantity)
	}
	if ok && form.MargemLucro != nil && !FitsCents(quantity, s.baseRateCents, *form.MargemLucro) {
		fields = withField(fields, "quantidade", msgAmountTooLarge)
	}
	if len(fields) > 0 {
		return repository.NewQuote{}, apperr.Validation("dados do orçamento inválidos").WithDetails(fields).WithOp("Submit")
	}

	pricing := Price(quantity, s.baseRateCents, *form.MargemLucro)
	in := repository.NewQuote{
		QuoteName:           form.Produto,
		ClientName:          form.Cliente,
		ClientID:            parseRef(form.ClientID),
		CompanyID:           parseRef(form.CompanyID),
		Quantity:            pricing.Quantity,
		UnitRateCents:       pricing.UnitRateCents,
		SubtotalCents:       pricing.SubtotalCents,
		TotalCents:          pricing.TotalCents,
		ProfitMarginPercent: pricing.ProfitMarginPercent,
		FinalPriceCents:     pricing.FinalPriceCents,
		AdditionalNotes:     sanitize.TextPtr(&form.Observacoes),
		ValidUntil:          s.validUntil(form.ValidUntil),
	}
	return in, nil
}

func (s *Service) validUntil(value string) *store.Date {
	if value != "" {
		if d, err := store.ParseDate(value); err == nil {
			return &d
		}
	}
	if s.validityDays > 0 {
		d := store.NewDate(s.now().AddDate(0, 0, s.validityDays))
		return &d
	}
	return nil
}

func (s *Service) transition(op string, from, to State) {
	s.log.QuoteTransition(op, from.String(), to.String())
	if s.observer != nil {
		s.observer(op, from, to)
	}
}

func (s *Service) record(outcome string) {
	if s.metrics != nil {
		s.metrics.QuoteSubmitted(outcome)
	}
}

// ── Reads ─────────────────────────────────────────────────────────────────────

// ListQuotesWithRelations returns the cached enriched listing, newest first.
func (s *Service) ListQuotesWithRelations(ctx context.Context) ([]repository.QuoteWithRelations, error) {
	return s.quotes.Get(ctx)
}

// ListQuotes returns the cached listing without relations.
func (s *Service) ListQuotes(ctx context.Context) ([]repository.Quote, error) {
	items, err := s.quotes.Get(ctx)
	if err != nil {
		return nil, err
	}
	quotes := make([]repository.Quote, len(items))
	for i := range items {
		quotes[i] = items[i].Quote
	}
	return quotes, nil
}

// GetQuote returns the active quote or nil.
func (s *Service) GetQuote(ctx context.Context, id string) (*repository.Quote, error) {
	return s.repo.GetQuote(ctx, id)
}

// GetQuoteWithRelations returns the active quote with relations, or nil.
func (s *Service) GetQuoteWithRelations(ctx context.Context, id string) (*repository.QuoteWithRelations, error) {
	return s.repo.GetQuoteWithRelations(ctx, id)
}

func parseRef(value string) *uuid.UUID {
	if value == "" {
		return nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil
	}
	return &id
}

func withField(fields map[string]string, field, message string) map[string]string {
	if fields == nil {
		fields = make(map[string]string)
	}
	if _, exists := fields[field]; !exists {
		fields[field] = message
	}
	return fields
}
