package service

import (
	"LinkGate-Backend/internal/auth"
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/linkstate"
	"LinkGate-Backend/internal/repository"
	"LinkGate-Backend/pkg/random"
	"LinkGate-Backend/pkg/useragent"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	maxRetries       = 5
	MaxBulkLinks     = 100
	defaultWorkspace = "default"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

// CreateLinkInput is the client-facing shape of a new link.
type CreateLinkInput struct {
	URL                string     `json:"url"`
	Code               *string    `json:"code,omitempty"`
	DomainID           *int64     `json:"domain_id,omitempty"`
	Permanent          bool       `json:"permanent"`
	StartsAt           *string    `json:"starts_at,omitempty"`
	ExpiresAt          *string    `json:"expires_at,omitempty"`
	Password           *string    `json:"password,omitempty"`
	IOSURL             *string    `json:"ios_url,omitempty"`
	IOSFallbackURL     *string    `json:"ios_fallback_url,omitempty"`
	AndroidURL         *string    `json:"android_url,omitempty"`
	AndroidFallbackURL *string    `json:"android_fallback_url,omitempty"`
	UTM                domain.UTM `json:"utm"`
}

// BulkError reports why one row of a bulk request was rejected.
type BulkError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BulkResult holds per-row outcomes of a bulk create.
type BulkResult struct {
	Created []*domain.Link `json:"created"`
	Errors  []BulkError    `json:"errors"`
}

// ResolveInput carries what the transport knows about a redirect request.
type ResolveInput struct {
	Host      string
	Code      string
	UserAgent string
	// CustomDomainOnly rejects hosts that are not verified custom domains.
	CustomDomainOnly bool
	// Session returns the password-session token presented for a link, if any.
	Session func(linkID int64) (string, bool)
}

// Resolution is the outcome of resolving a code. Destination is set only when allowed.
type Resolution struct {
	Link        *domain.Link
	Verdict     linkstate.Verdict
	Destination string
}

// DeviceParser is the UA parsing surface used to pick deep-link targets.
type DeviceParser interface {
	ParseUserAgent(userAgent string) *useragent.DeviceInfo
}

// LinkConfig holds link-creation settings.
type LinkConfig struct {
	CodeLength int
}

type LinkService struct {
	storage   repository.Storage
	passwords *auth.PasswordService
	gate      *auth.Gate
	devices   DeviceParser
	clock     domain.Clock
	config    LinkConfig
	log       *zap.Logger
}

func NewLinkService(storage repository.Storage, passwords *auth.PasswordService, gate *auth.Gate, devices DeviceParser, clock domain.Clock, cfg LinkConfig, log *zap.Logger) *LinkService {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 7
	}
	return &LinkService{
		storage:   storage,
		passwords: passwords,
		gate:      gate,
		devices:   devices,
		clock:     clock,
		config:    cfg,
		log:       log,
	}
}

// Create validates the input and stores a new link in the requested domain scope.
func (s *LinkService) Create(ctx context.Context, workspaceID string, in CreateLinkInput) (*domain.Link, error) {
	if workspaceID == "" {
		workspaceID = defaultWorkspace
	}

	link, err := s.buildLink(ctx, workspaceID, in)
	if err != nil {
		return nil, err
	}

	if in.Code != nil && *in.Code != "" {
		link.Code = *in.Code
		if err := s.storage.CreateLink(ctx, link); err != nil {
			return nil, err
		}
	} else if err := s.createWithGeneratedCode(ctx, link); err != nil {
		return nil, err
	}

	s.log.Info("link created",
		zap.Int64("link_id", link.ID),
		zap.String("code", link.Code),
		zap.String("workspace_id", workspaceID))
	return link, nil
}

func (s *LinkService) createWithGeneratedCode(ctx context.Context, link *domain.Link) error {
	for i := 0; i < maxRetries; i++ {
		code, err := random.NewRandomString(s.config.CodeLength)
		if err != nil {
			return fmt.Errorf("failed to generate code: %w", err)
		}
		exists, err := s.storage.CodeExists(ctx, link.DomainID, code)
		if err != nil {
			return fmt.Errorf("failed to check code existence: %w", err)
		}
		if exists {
			continue
		}

		link.Code = code
		err = s.storage.CreateLink(ctx, link)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		return err
	}
	return fmt.Errorf("failed to generate a unique code after %d attempts", maxRetries)
}

func (s *LinkService) buildLink(ctx context.Context, workspaceID string, in CreateLinkInput) (*domain.Link, error) {
	if err := validateURL(in.URL, "url"); err != nil {
		return nil, err
	}
	if in.Code != nil && *in.Code != "" && !codePattern.MatchString(*in.Code) {
		return nil, fmt.Errorf("%w: code must be 3-64 characters of letters, digits, '-' or '_'", domain.ErrValidation)
	}
	for field, v := range map[string]*string{"ios_fallback_url": in.IOSFallbackURL, "android_fallback_url": in.AndroidFallbackURL} {
		if v != nil && *v != "" {
			if err := validateURL(*v, field); err != nil {
				return nil, err
			}
		}
	}
	for field, v := range map[string]*string{"ios_url": in.IOSURL, "android_url": in.AndroidURL} {
		if v != nil && *v != "" {
			if u, err := url.Parse(*v); err != nil || u.Scheme == "" {
				return nil, fmt.Errorf("%w: %s must be an absolute URL or app scheme", domain.ErrValidation, field)
			}
		}
	}

	startsAt, err := parseTime(in.StartsAt, "starts_at")
	if err != nil {
		return nil, err
	}
	expiresAt, err := parseTime(in.ExpiresAt, "expires_at")
	if err != nil {
		return nil, err
	}
	if startsAt != nil && expiresAt != nil && !startsAt.Before(*expiresAt) {
		return nil, fmt.Errorf("%w: starts_at must be before expires_at", domain.ErrValidation)
	}
	if expiresAt != nil && !expiresAt.After(s.clock.Now()) {
		return nil, fmt.Errorf("%w: expires_at must be in the future", domain.ErrValidation)
	}

	if in.DomainID != nil {
		d, err := s.storage.GetDomain(ctx, *in.DomainID)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && d.WorkspaceID != workspaceID) {
			return nil, fmt.Errorf("%w: domain %d does not exist", domain.ErrValidation, *in.DomainID)
		}
		if err != nil {
			return nil, err
		}
		if !d.IsVerified() {
			return nil, fmt.Errorf("%w: domain %s is not verified", domain.ErrValidation, d.Hostname)
		}
	}

	link := &domain.Link{
		DomainID:           in.DomainID,
		WorkspaceID:        workspaceID,
		DestinationURL:     in.URL,
		Permanent:          in.Permanent,
		StartsAt:           startsAt,
		ExpiresAt:          expiresAt,
		IOSURL:             nonEmpty(in.IOSURL),
		IOSFallbackURL:     nonEmpty(in.IOSFallbackURL),
		AndroidURL:         nonEmpty(in.AndroidURL),
		AndroidFallbackURL: nonEmpty(in.AndroidFallbackURL),
		UTM:                in.UTM,
	}

	if in.Password != nil && *in.Password != "" {
		hash, err := s.passwords.HashPassword(*in.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidPassword) {
				return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
			}
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		link.PasswordHash = &hash
	}

	return link, nil
}

// BulkCreate creates up to MaxBulkLinks links. Oversized batches are rejected
// before any row is processed; otherwise each row succeeds or fails on its own.
func (s *LinkService) BulkCreate(ctx context.Context, workspaceID string, rows []CreateLinkInput) (*BulkResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no links given", domain.ErrValidation)
	}
	if len(rows) > MaxBulkLinks {
		return nil, fmt.Errorf("%w: at most %d links per request, got %d", domain.ErrValidation, MaxBulkLinks, len(rows))
	}

	result := &BulkResult{Created: []*domain.Link{}, Errors: []BulkError{}}
	for i, row := range rows {
		link, err := s.Create(ctx, workspaceID, row)
		if err != nil {
			result.Errors = append(result.Errors, BulkError{Index: i, Error: clientMessage(err)})
			continue
		}
		result.Created = append(result.Created, link)
	}

	s.log.Info("bulk create finished",
		zap.Int("requested", len(rows)),
		zap.Int("created", len(result.Created)),
		zap.Int("failed", len(result.Errors)))
	return result, nil
}

// Get returns a link from the default scope, or from the domain scope when domainID is set.
func (s *LinkService) Get(ctx context.Context, domainID *int64, code string) (*domain.Link, error) {
	return s.storage.GetLinkByCode(ctx, domainID, code)
}

// ScopeForHost returns the domain id for a verified custom hostname, or nil for the default scope.
func (s *LinkService) ScopeForHost(ctx context.Context, host string) (*int64, error) {
	host = normalizeHost(host)
	if host == "" {
		return nil, nil
	}
	d, err := s.storage.GetDomainByHostname(ctx, host)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !d.IsVerified() {
		return nil, nil
	}
	return &d.ID, nil
}

// Resolve loads the link for host+code and decides what the redirect should do.
func (s *LinkService) Resolve(ctx context.Context, in ResolveInput) (*Resolution, error) {
	domainID, err := s.ScopeForHost(ctx, in.Host)
	if err != nil {
		return nil, err
	}
	if domainID == nil && in.CustomDomainOnly {
		return nil, domain.ErrNotFound
	}

	link, err := s.storage.GetLinkByCode(ctx, domainID, in.Code)
	if err != nil {
		return nil, err
	}

	hasSession := false
	if link.HasPassword() && in.Session != nil {
		if token, ok := in.Session(link.ID); ok {
			hasSession = s.gate.VerifySession(token, link.ID)
		}
	}

	verdict := linkstate.Evaluate(linkstate.FromLink(link, hasSession), s.clock.Now())
	res := &Resolution{Link: link, Verdict: verdict}
	if verdict != linkstate.Allowed {
		return res, nil
	}

	platform := PlatformOther
	if in.UserAgent != "" && s.devices != nil {
		platform = PlatformFromOS(s.devices.ParseUserAgent(in.UserAgent).OS)
	}
	res.Destination = Destination(link, platform)
	return res, nil
}

// VerifyPassword looks up a link in the host's scope and runs one password attempt.
func (s *LinkService) VerifyPassword(ctx context.Context, host, code, password string) (*domain.Link, *auth.AttemptResult, error) {
	domainID, err := s.ScopeForHost(ctx, host)
	if err != nil {
		return nil, nil, err
	}
	link, err := s.storage.GetLinkByCode(ctx, domainID, code)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.gate.Attempt(ctx, link, password)
	return link, res, err
}

func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an absolute http or https URL", domain.ErrValidation, field)
	}
	return nil
}

func parseTime(v *string, field string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC3339 timestamp", domain.ErrValidation, field)
	}
	t = t.UTC()
	return &t, nil
}

func normalizeHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// clientMessage returns an error text that is safe to show to API clients.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return err.Error()
	case errors.Is(err, domain.ErrConflict):
		return "code already exists"
	default:
		return "internal error"
	}
}
