package http

import (
	"LinkGate-Backend/internal/analytics"
	"LinkGate-Backend/internal/auth"
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/linkstate"
	"LinkGate-Backend/internal/ratelimit"
	"LinkGate-Backend/internal/service"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	cachePermanent = "public, max-age=31536000"
	cacheTemporary = "no-store, no-cache, must-revalidate, max-age=0"
)

// ClickRecorder accepts clicks for asynchronous persistence.
type ClickRecorder interface {
	Record(req analytics.ClickRequest) error
}

// RedirectHandler resolves short codes and records clicks.
type RedirectHandler struct {
	links    *service.LinkService
	recorder ClickRecorder
	limiter  *ratelimit.Limiter
	proxies  *ProxyList
	gateURL  string
	log      *zap.Logger
}

func NewRedirectHandler(links *service.LinkService, recorder ClickRecorder, limiter *ratelimit.Limiter, proxies *ProxyList, gateURL string, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		links:    links,
		recorder: recorder,
		limiter:  limiter,
		proxies:  proxies,
		gateURL:  strings.TrimSuffix(gateURL, "/"),
		log:      log,
	}
}

// HandleRedirect resolves /r/{code} on any host.
//
//	@Summary		Follow a short link
//	@Tags			Redirect
//	@Param			code	path	string	true	"Short code"
//	@Success		301
//	@Success		302
//	@Failure		403	{object}	ErrorResponse	"Link disabled or not active yet"
//	@Failure		404	{object}	ErrorResponse	"Unknown code"
//	@Failure		410	{object}	ErrorResponse	"Link expired"
//	@Failure		429	{object}	ErrorResponse	"Too many requests"
//	@Router			/r/{code} [get]
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, false)
}

// HandleCustomDomainRedirect resolves /{code} and only answers on verified custom domains.
func (h *RedirectHandler) HandleCustomDomainRedirect(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, true)
}

func (h *RedirectHandler) serve(w http.ResponseWriter, r *http.Request, customDomainOnly bool) {
	code := mux.Vars(r)["code"]
	ip := h.proxies.ClientIP(r)

	if !h.limiter.Allow(r.Context(), ip) {
		writeError(w, "Too many requests", http.StatusTooManyRequests)
		return
	}

	res, err := h.links.Resolve(r.Context(), service.ResolveInput{
		Host:             r.Host,
		Code:             code,
		UserAgent:        r.UserAgent(),
		CustomDomainOnly: customDomainOnly,
		Session: func(linkID int64) (string, bool) {
			c, err := r.Cookie(auth.CookieName(linkID))
			if err != nil {
				return "", false
			}
			return c.Value, true
		},
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.log.Debug("code not found", zap.String("code", code), zap.String("host", r.Host))
			writeError(w, "Link not found", http.StatusNotFound)
			return
		}
		writeServiceError(w, h.log, err, "resolve")
		return
	}

	switch res.Verdict {
	case linkstate.Disabled:
		writeError(w, "This link has been disabled", http.StatusForbidden)
		return
	case linkstate.NotYetActive:
		writeError(w, "This link is not active yet", http.StatusForbidden)
		return
	case linkstate.Expired:
		writeError(w, "This link has expired", http.StatusGone)
		return
	case linkstate.PasswordRequired:
		w.Header().Set("Cache-Control", cacheTemporary)
		w.Header().Set("X-Robots-Tag", "noindex, nofollow")
		http.Redirect(w, r, h.gateURL+"/"+url.PathEscape(res.Link.Code), http.StatusFound)
		return
	}

	status := http.StatusFound
	w.Header().Set("Cache-Control", cacheTemporary)
	if res.Link.Permanent {
		status = http.StatusMovedPermanently
		w.Header().Set("Cache-Control", cachePermanent)
	}
	w.Header().Set("X-Robots-Tag", "noindex, nofollow")
	http.Redirect(w, r, res.Destination, status)

	// link previews send HEAD; only real follows count
	if r.Method == http.MethodHead {
		return
	}

	// recording never affects the response
	if err := h.recorder.Record(analytics.ClickRequest{
		Link:      res.Link,
		IP:        ip,
		UserAgent: optionalHeader(r, "User-Agent"),
		Referrer:  optionalHeader(r, "Referer"),
		Country:   optionalHeader(r, headerCountry),
	}); err != nil {
		h.log.Debug("click not recorded", zap.Int64("link_id", res.Link.ID), zap.Error(err))
	}
}
