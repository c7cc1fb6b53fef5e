package handler

import (
	"orcamento_backend/internal/quotes/repository"
	"orcamento_backend/internal/quotes/transport"

	"github.com/google/uuid"
)

func toQuoteResponse(q repository.QuoteWithRelations) transport.QuoteResponse {
	resp := transport.QuoteResponse{
		ID:                  q.ID.String(),
		QuoteNumber:         q.QuoteNumber,
		Name:                q.QuoteName,
		ClientName:          q.ClientName,
		ClientID:            idString(q.ClientID),
		CompanyID:           idString(q.CompanyID),
		Quantity:            q.Quantity,
		UnitRateCents:       q.UnitRateCents,
		SubtotalCents:       q.SubtotalCents,
		TotalCents:          q.TotalCents,
		ProfitMarginPercent: q.ProfitMarginPercent,
		FinalPriceCents:     q.FinalPriceCents,
		Notes:               q.AdditionalNotes,
		CreatedAt:           q.CreatedAt,
		UpdatedAt:           q.UpdatedAt,
	}
	if q.ValidUntil != nil {
		s := q.ValidUntil.String()
		resp.ValidUntil = &s
	}
	if q.Client != nil {
		client := toClientResponse(*q.Client)
		resp.Client = &client
	}
	if q.Company != nil {
		company := toCompanyResponse(*q.Company)
		resp.Company = &company
	}
	return resp
}

func toClientResponse(c repository.Client) transport.ClientResponse {
	return transport.ClientResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCompanyResponse(c repository.Company) transport.CompanyResponse {
	return transport.CompanyResponse{
		ClientResponse: transport.ClientResponse{
			ID:        c.ID.String(),
			Name:      c.Name,
			TaxID:     c.TaxID,
			Email:     c.Email,
			Phone:     c.Phone,
			Address:   c.Address,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		LogoURL: c.LogoURL,
	}
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
