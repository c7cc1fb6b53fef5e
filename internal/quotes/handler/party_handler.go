package handler

import (
	"net/http"

	"orcamento_backend/internal/quotes/transport"
	"orcamento_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// RegisterClientRoutes registers the client routes
func (h *Handler) RegisterClientRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListClients)
	rg.POST("", h.CreateClient)
	rg.DELETE("/:id", h.DeleteClient)
}

// RegisterCompanyRoutes registers the company routes
func (h *Handler) RegisterCompanyRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListCompanies)
	rg.POST("", h.CreateCompany)
	rg.DELETE("/:id", h.DeleteCompany)
}

// CreateClient handles POST /api/v1/clients
func (h *Handler) CreateClient(c *gin.Context) {
	var req transport.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	client, err := h.svc.CreateClient(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toClientResponse(*client))
}

// ListClients handles GET /api/v1/clients
func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.svc.ListClients(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	resp := transport.ClientListResponse{Items: make([]transport.ClientResponse, 0, len(clients)), Total: len(clients)}
	for _, client := range clients {
		resp.Items = append(resp.Items, toClientResponse(client))
	}
	httpkit.OK(c, resp)
}

// DeleteClient handles DELETE /api/v1/clients/:id
func (h *Handler) DeleteClient(c *gin.Context) {
	if err := h.svc.RemoveClient(c.Request.Context(), c.Param("id")); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

// CreateCompany handles POST /api/v1/companies
func (h *Handler) CreateCompany(c *gin.Context) {
	var req transport.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	company, err := h.svc.CreateCompany(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toCompanyResponse(*company))
}

// ListCompanies handles GET /api/v1/companies
func (h *Handler) ListCompanies(c *gin.Context) {
	companies, err := h.svc.ListCompanies(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	resp := transport.CompanyListResponse{Items: make([]transport.CompanyResponse, 0, len(companies)), Total: len(companies)}
	for _, company := range companies {
		resp.Items = append(resp.Items, toCompanyResponse(company))
	}
	httpkit.OK(c, resp)
}

// DeleteCompany handles DELETE /api/v1/companies/:id
func (h *Handler) DeleteCompany(c *gin.Context) {
	if err := h.svc.RemoveCompany(c.Request.Context(), c.Param("id")); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}
