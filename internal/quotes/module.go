// Package quotes provides the quotes domain module: quote submission and
// listing plus the clients and companies quotes refer to.
package quotes

import (
	"orcamento_backend/internal/adapters/storage"
	apphttp "orcamento_backend/internal/http"
	"orcamento_backend/internal/quotes/handler"
	"orcamento_backend/internal/quotes/repository"
	"orcamento_backend/internal/quotes/service"
	"orcamento_backend/platform/config"
	"orcamento_backend/platform/logger"
	"orcamento_backend/platform/phone"
	"orcamento_backend/platform/validator"
)

// Config combines the config interfaces needed by the quotes module.
type Config interface {
	config.QuoteConfig
	config.LocaleConfig
}

// Module represents the quotes domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quotes module with all dependencies wired
func NewModule(tables repository.Tables, val *validator.Validator, cfg Config, notifier handler.Notifier, log *logger.Logger) *Module {
	repo := repository.New(tables)
	svc := service.New(repo, val, cfg, log)
	svc.SetPhoneNormalizer(phone.NewNormalizer(cfg.GetPhoneDefaultRegion()))
	h := handler.New(svc, notifier, cfg.GetLocale(), cfg.GetPhoneDefaultRegion())

	return &Module{
		handler: h,
		service: svc,
	}
}

// SetStorageForPDF enables PDF archiving to object storage.
func (m *Module) SetStorageForPDF(svc storage.StorageService, bucket string) {
	m.handler.SetStorageForPDF(svc, bucket)
}

// SetMetrics sets the submission outcome recorder.
func (m *Module) SetMetrics(metrics service.MetricsRecorder) {
	m.service.SetMetrics(metrics)
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/quotes"))
	m.handler.RegisterClientRoutes(ctx.V1.Group("/clients"))
	m.handler.RegisterCompanyRoutes(ctx.V1.Group("/companies"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
