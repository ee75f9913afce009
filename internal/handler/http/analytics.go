package http

import (
	"LinkGate-Backend/internal/analytics"
	"LinkGate-Backend/internal/domain"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
	links      *LinksHandler
	clock      domain.Clock
	log        *zap.Logger
}

func NewAnalyticsHandler(aggregator *analytics.Aggregator, links *LinksHandler, clock domain.Clock, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{aggregator: aggregator, links: links, clock: clock, log: log}
}

// WorkspaceAnalytics aggregates clicks across every link of the workspace.
//
//	@Summary	Workspace analytics
//	@Tags		Analytics
//	@Produce	json
//	@Param		range		query		string	false	"24h, 7d, 30d, 90d or 1y"
//	@Param		from		query		string	false	"RFC3339 or YYYY-MM-DD"
//	@Param		to			query		string	false	"RFC3339 or YYYY-MM-DD"
//	@Param		includeBots	query		bool	false	"Count bot traffic"
//	@Param		country		query		string	false	"ISO country code"
//	@Param		compare		query		bool	false	"Compare against the previous window"
//	@Success	200			{object}	analytics.Report
//	@Failure	400			{object}	ErrorResponse
//	@Router		/analytics [get]
func (h *AnalyticsHandler) WorkspaceAnalytics(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		writeServiceError(w, h.log, err, "parse analytics query")
		return
	}
	q.WorkspaceID = workspaceID(r)
	h.respond(w, r, q)
}

// LinkAnalytics aggregates clicks of a single link.
//
//	@Summary	Link analytics
//	@Tags		Analytics
//	@Produce	json
//	@Param		code	path		string	true	"Short code"
//	@Success	200		{object}	analytics.Report
//	@Failure	404		{object}	ErrorResponse
//	@Router		/links/{code}/analytics [get]
func (h *AnalyticsHandler) LinkAnalytics(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		writeServiceError(w, h.log, err, "parse analytics query")
		return
	}
	link, ok := h.links.lookup(w, r)
	if !ok {
		return
	}
	q.LinkID = &link.ID
	h.respond(w, r, q)
}

func (h *AnalyticsHandler) respond(w http.ResponseWriter, r *http.Request, q analytics.Query) {
	report, err := h.aggregator.Aggregate(r.Context(), q)
	if err != nil {
		writeServiceError(w, h.log, err, "aggregate")
		return
	}
	writeJSON(w, report, http.StatusOK)
}

func (h *AnalyticsHandler) parseQuery(r *http.Request) (analytics.Query, error) {
	params := r.URL.Query()

	from, to, err := analytics.ParseWindow(params.Get("range"), params.Get("from"), params.Get("to"), h.clock.Now())
	if err != nil {
		return analytics.Query{}, err
	}

	q := analytics.Query{From: from, To: to}
	if q.IncludeBots, err = parseFlag(params.Get("includeBots"), "includeBots"); err != nil {
		return analytics.Query{}, err
	}
	if q.Compare, err = parseFlag(params.Get("compare"), "compare"); err != nil {
		return analytics.Query{}, err
	}
	if c := strings.ToUpper(strings.TrimSpace(params.Get("country"))); c != "" {
		if len(c) != 2 {
			return analytics.Query{}, validationError("country must be a two-letter code")
		}
		q.Country = &c
	}
	return q, nil
}

func parseFlag(v, name string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, validationError(name + " must be true or false")
	}
	return b, nil
}
