package service

import (
	"context"

	"orcamento_backend/internal/quotes/repository"
	"orcamento_backend/internal/quotes/transport"
	"orcamento_backend/platform/apperr"
	"orcamento_backend/platform/sanitize"
	"orcamento_backend/platform/validator"
)

// CreateClient validates and stores a client.
func (s *Service) CreateClient(ctx context.Context, req transport.CreatePartyRequest) (*repository.Client, error) {
	req.LogoURL = nil
	in, err := s.party(req, "CreateClient")
	if err != nil {
		return nil, err
	}
	client, err := s.repo.CreateClient(ctx, in)
	if err != nil {
		s.log.WithContext(ctx).StoreError("CreateClient", err)
		return nil, err
	}
	s.clients.Invalidate()
	return client, nil
}

// ListClients returns the cached clients, ordered by name.
func (s *Service) ListClients(ctx context.Context) ([]repository.Client, error) {
	return s.clients.Get(ctx)
}

// RemoveClient soft-deletes a client. Quotes referencing it resolve to no
// client afterwards, so the quote cache is refreshed too.
func (s *Service) RemoveClient(ctx context.Context, id string) error {
	if err := s.repo.SoftDeleteClient(ctx, id); err != nil {
		s.log.WithContext(ctx).StoreError("SoftDeleteClient", err)
		return err
	}
	s.clients.Invalidate()
	s.quotes.Invalidate()
	return nil
}

// CreateCompany validates and stores a company.
func (s *Service) CreateCompany(ctx context.Context, req transport.CreatePartyRequest) (*repository.Company, error) {
	in, err := s.party(req, "CreateCompany")
	if err != nil {
		return nil, err
	}
	company, err := s.repo.CreateCompany(ctx, in)
	if err != nil {
		s.log.WithContext(ctx).StoreError("CreateCompany", err)
		return nil, err
	}
	s.companies.Invalidate()
	return company, nil
}

// ListCompanies returns the cached companies, ordered by name.
func (s *Service) ListCompanies(ctx context.Context) ([]repository.Company, error) {
	return s.companies.Get(ctx)
}

// RemoveCompany soft-deletes a company and refreshes the quote cache.
func (s *Service) RemoveCompany(ctx context.Context, id string) error {
	if err := s.repo.SoftDeleteCompany(ctx, id); err != nil {
		s.log.WithContext(ctx).StoreError("SoftDeleteCompany", err)
		return err
	}
	s.companies.Invalidate()
	s.quotes.Invalidate()
	return nil
}

func (s *Service) party(req transport.CreatePartyRequest, op string) (repository.NewParty, error) {
	req.Name = sanitize.Text(req.Name)
	req.TaxID = sanitize.TextPtr(req.TaxID)
	req.Email = sanitize.TextPtr(req.Email)
	req.Phone = sanitize.TextPtr(req.Phone)
	req.Address = sanitize.TextPtr(req.Address)

	if fields := validator.FieldErrors(s.validator.Struct(req)); len(fields) > 0 {
		return repository.NewParty{}, apperr.Validation("dados inválidos").WithDetails(fields).WithOp(op)
	}

	if req.Phone != nil {
		normalized := s.phones.E164(*req.Phone)
		req.Phone = &normalized
	}
	return repository.NewParty{
		Name:    req.Name,
		TaxID:   req.TaxID,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		LogoURL: req.LogoURL,
	}, nil
}
