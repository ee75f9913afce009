package http

import (
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/domainverify"
	"LinkGate-Backend/internal/service"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type DomainsHandler struct {
	domains *service.DomainService
	log     *zap.Logger
}

func NewDomainsHandler(domains *service.DomainService, log *zap.Logger) *DomainsHandler {
	return &DomainsHandler{domains: domains, log: log}
}

// CreateDomainRequest registers a hostname.
type CreateDomainRequest struct {
	Hostname string `json:"hostname"`
}

// VerifyDomainResponse is the outcome of one verification attempt.
type VerifyDomainResponse struct {
	Status           domain.DomainStatus        `json:"status"`
	VerificationType *domain.VerificationMethod `json:"verificationType,omitempty"`
	AlreadyVerified  bool                       `json:"alreadyVerified,omitempty"`
	CheckAttempts    int                        `json:"checkAttempts"`
	DNSInstructions  *domainverify.Instructions `json:"dnsInstructions,omitempty"`
}

func domainID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

// CreateDomain registers a custom domain.
//
//	@Summary		Register a custom domain
//	@Tags			Domains
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateDomainRequest	true	"Hostname"
//	@Success		201		{object}	service.DomainView
//	@Failure		400		{object}	ErrorResponse	"Invalid hostname"
//	@Failure		403		{object}	ErrorResponse	"Domain limit reached"
//	@Failure		409		{object}	ErrorResponse	"Hostname already registered"
//	@Router			/domains [post]
func (h *DomainsHandler) CreateDomain(w http.ResponseWriter, r *http.Request) {
	var req CreateDomainRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	view, err := h.domains.Create(r.Context(), workspaceID(r), req.Hostname)
	if err != nil {
		writeServiceError(w, h.log, err, "create domain")
		return
	}
	writeJSON(w, view, http.StatusCreated)
}

// ListDomains lists the workspace's domains.
//
//	@Summary	List custom domains
//	@Tags		Domains
//	@Produce	json
//	@Success	200	{array}	domain.CustomDomain
//	@Router		/domains [get]
func (h *DomainsHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.domains.List(r.Context(), workspaceID(r))
	if err != nil {
		writeServiceError(w, h.log, err, "list domains")
		return
	}
	if domains == nil {
		domains = []domain.CustomDomain{}
	}
	writeJSON(w, domains, http.StatusOK)
}

// GetDomain returns a domain and, until verified, its DNS instructions.
//
//	@Summary	Get a custom domain
//	@Tags		Domains
//	@Produce	json
//	@Param		id	path		int	true	"Domain ID"
//	@Success	200	{object}	service.DomainView
//	@Failure	404	{object}	ErrorResponse
//	@Router		/domains/{id} [get]
func (h *DomainsHandler) GetDomain(w http.ResponseWriter, r *http.Request) {
	id, ok := domainID(r)
	if !ok {
		writeError(w, "Invalid domain id", http.StatusBadRequest)
		return
	}
	view, err := h.domains.Get(r.Context(), workspaceID(r), id)
	if err != nil {
		writeServiceError(w, h.log, err, "get domain")
		return
	}
	writeJSON(w, view, http.StatusOK)
}

// VerifyDomain runs one DNS ownership check.
//
//	@Summary	Verify a custom domain
//	@Tags		Domains
//	@Produce	json
//	@Param		id	path		int	true	"Domain ID"
//	@Success	200	{object}	VerifyDomainResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	429	{object}	ErrorResponse	"Verification rate limited"
//	@Router		/domains/{id}/verify [post]
func (h *DomainsHandler) VerifyDomain(w http.ResponseWriter, r *http.Request) {
	id, ok := domainID(r)
	if !ok {
		writeError(w, "Invalid domain id", http.StatusBadRequest)
		return
	}
	res, err := h.domains.Verify(r.Context(), workspaceID(r), id)
	if err != nil {
		writeServiceError(w, h.log, err, "verify domain")
		return
	}

	writeJSON(w, VerifyDomainResponse{
		Status:           res.Status,
		VerificationType: res.Method,
		AlreadyVerified:  res.AlreadyVerified,
		CheckAttempts:    res.Domain.CheckAttempts,
		DNSInstructions:  res.Instructions,
	}, http.StatusOK)
}

// ResetDomain moves a failed domain back to pending.
//
//	@Summary	Reset a failed domain
//	@Tags		Domains
//	@Produce	json
//	@Param		id	path		int	true	"Domain ID"
//	@Success	200	{object}	service.DomainView
//	@Router		/domains/{id}/reset [post]
func (h *DomainsHandler) ResetDomain(w http.ResponseWriter, r *http.Request) {
	id, ok := domainID(r)
	if !ok {
		writeError(w, "Invalid domain id", http.StatusBadRequest)
		return
	}
	view, err := h.domains.Reset(r.Context(), workspaceID(r), id)
	if err != nil {
		writeServiceError(w, h.log, err, "reset domain")
		return
	}
	writeJSON(w, view, http.StatusOK)
}

// SetDefaultDomain makes a verified domain the workspace default.
//
//	@Summary	Set the default domain
//	@Tags		Domains
//	@Param		id	path	int	true	"Domain ID"
//	@Success	204
//	@Failure	403	{object}	ErrorResponse	"Domain is not verified"
//	@Router		/domains/{id}/default [post]
func (h *DomainsHandler) SetDefaultDomain(w http.ResponseWriter, r *http.Request) {
	id, ok := domainID(r)
	if !ok {
		writeError(w, "Invalid domain id", http.StatusBadRequest)
		return
	}
	if err := h.domains.SetDefault(r.Context(), workspaceID(r), id); err != nil {
		writeServiceError(w, h.log, err, "set default domain")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDomain removes a domain; its links move to the default scope.
//
//	@Summary	Delete a custom domain
//	@Tags		Domains
//	@Param		id	path	int	true	"Domain ID"
//	@Success	204
//	@Failure	409	{object}	ErrorResponse	"A link code already exists in the default scope"
//	@Router		/domains/{id} [delete]
func (h *DomainsHandler) DeleteDomain(w http.ResponseWriter, r *http.Request) {
	id, ok := domainID(r)
	if !ok {
		writeError(w, "Invalid domain id", http.StatusBadRequest)
		return
	}
	if err := h.domains.Delete(r.Context(), workspaceID(r), id); err != nil {
		writeServiceError(w, h.log, err, "delete domain")
		return
	}
	h.log.Info("domain deleted", zap.Int64("domain_id", id))
	w.WriteHeader(http.StatusNoContent)
}
