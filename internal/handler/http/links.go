package http

import (
	"LinkGate-Backend/internal/auth"
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; a full bulk request fits well below it.
const maxBodyBytes = 1 << 20

// LinksHandler serves link creation, lookup and password verification.
type LinksHandler struct {
	links         *service.LinkService
	baseURL       string
	secureCookies bool
	log           *zap.Logger
}

func NewLinksHandler(links *service.LinkService, baseURL string, secureCookies bool, log *zap.Logger) *LinksHandler {
	return &LinksHandler{
		links:         links,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		secureCookies: secureCookies,
		log:           log,
	}
}

// LinkResponse is a stored link plus its public short URL.
type LinkResponse struct {
	*domain.Link
	ShortURL    string `json:"short_url"`
	HasPassword bool   `json:"has_password"`
}

// BulkCreateRequest wraps the rows of a bulk create.
type BulkCreateRequest struct {
	Links []service.CreateLinkInput `json:"links"`
}

// BulkCreateResponse reports per-row outcomes.
type BulkCreateResponse struct {
	Created []LinkResponse      `json:"created"`
	Errors  []service.BulkError `json:"errors"`
}

// VerifyPasswordRequest is the body of a password attempt.
type VerifyPasswordRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

// VerifyPasswordResponse is returned for both accepted and rejected attempts.
type VerifyPasswordResponse struct {
	Success           bool       `json:"success"`
	Error             string     `json:"error,omitempty"`
	RemainingAttempts *int       `json:"remainingAttempts,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
}

func (h *LinksHandler) toResponse(link *domain.Link) LinkResponse {
	return LinkResponse{
		Link:        link,
		ShortURL:    h.baseURL + "/r/" + link.Code,
		HasPassword: link.HasPassword(),
	}
}

// CreateLink creates a short link.
//
//	@Summary		Create a short link
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Param			X-Workspace-ID	header		string					false	"Workspace"
//	@Param			request			body		service.CreateLinkInput	true	"Link"
//	@Success		201				{object}	LinkResponse
//	@Failure		400				{object}	ErrorResponse	"Invalid request data"
//	@Failure		409				{object}	ErrorResponse	"Code already exists"
//	@Failure		429				{object}	ErrorResponse	"Too many requests"
//	@Router			/links [post]
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req service.CreateLinkInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.log.Debug("invalid create link request", zap.Error(err))
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	link, err := h.links.Create(r.Context(), workspaceID(r), req)
	if err != nil {
		writeServiceError(w, h.log, err, "create link")
		return
	}
	writeJSON(w, h.toResponse(link), http.StatusCreated)
}

// BulkCreateLinks creates up to 100 links in one request.
//
//	@Summary		Create links in bulk
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Param			request	body		BulkCreateRequest	true	"Rows"
//	@Success		201		{object}	BulkCreateResponse
//	@Failure		400		{object}	ErrorResponse	"Too many rows or malformed body"
//	@Router			/links/bulk [post]
func (h *LinksHandler) BulkCreateLinks(w http.ResponseWriter, r *http.Request) {
	var req BulkCreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	res, err := h.links.BulkCreate(r.Context(), workspaceID(r), req.Links)
	if err != nil {
		writeServiceError(w, h.log, err, "bulk create links")
		return
	}

	resp := BulkCreateResponse{Created: make([]LinkResponse, 0, len(res.Created)), Errors: res.Errors}
	for _, link := range res.Created {
		resp.Created = append(resp.Created, h.toResponse(link))
	}
	writeJSON(w, resp, http.StatusCreated)
}

// GetLink returns one link of the caller's workspace.
//
//	@Summary		Get a link
//	@Tags			Links
//	@Produce		json
//	@Param			code	path		string	true	"Short code"
//	@Success		200		{object}	LinkResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/links/{code} [get]
func (h *LinksHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	link, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.toResponse(link), http.StatusOK)
}

// lookup finds {code} in the request host's scope and checks workspace ownership.
func (h *LinksHandler) lookup(w http.ResponseWriter, r *http.Request) (*domain.Link, bool) {
	code := mux.Vars(r)["code"]
	domainID, err := h.links.ScopeForHost(r.Context(), r.Host)
	if err != nil {
		writeServiceError(w, h.log, err, "scope for host")
		return nil, false
	}

	link, err := h.links.Get(r.Context(), domainID, code)
	if err == nil && link.WorkspaceID != workspaceID(r) {
		err = domain.ErrNotFound
	}
	if err != nil {
		writeServiceError(w, h.log, err, "get link")
		return nil, false
	}
	return link, true
}

// VerifyPassword checks a password for a gated link and sets the session cookie.
//
//	@Summary		Unlock a password-protected link
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Param			request	body		VerifyPasswordRequest	true	"Code and password"
//	@Success		200		{object}	VerifyPasswordResponse
//	@Failure		400		{object}	ErrorResponse			"Link is not password protected"
//	@Failure		401		{object}	VerifyPasswordResponse	"Wrong password"
//	@Failure		404		{object}	ErrorResponse			"Unknown code"
//	@Failure		429		{object}	VerifyPasswordResponse	"Too many attempts"
//	@Router			/links/verify-password [post]
func (h *LinksHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req VerifyPasswordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if req.Code == "" || req.Password == "" {
		writeError(w, "code and password are required", http.StatusBadRequest)
		return
	}

	link, res, err := h.links.VerifyPassword(r.Context(), r.Host, req.Code, req.Password)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, "Link not found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrNotPasswordProtected):
		writeError(w, "Link is not password protected", http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrRateLimited):
		remaining := 0
		writeJSON(w, VerifyPasswordResponse{Error: "Too many attempts, try again later", RemainingAttempts: &remaining}, http.StatusTooManyRequests)
		return
	case errors.Is(err, domain.ErrWrongPassword):
		remaining := res.RemainingAttempts
		writeJSON(w, VerifyPasswordResponse{Error: "Incorrect password", RemainingAttempts: &remaining}, http.StatusUnauthorized)
		return
	case err != nil:
		writeServiceError(w, h.log, err, "verify password")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName(link.ID),
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		MaxAge:   int(time.Until(res.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, VerifyPasswordResponse{Success: true, ExpiresAt: &res.ExpiresAt}, http.StatusOK)
}
