// Package domainverify proves ownership of custom domains through DNS records.
package domainverify

import (
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/ratelimit"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TXTRecordPrefix is the label under which the TXT ownership record is published.
const TXTRecordPrefix = "_linkgate-verify"

// TXTValuePrefix precedes the verification token in the TXT record value.
const TXTValuePrefix = "linkgate-verify="

// Resolver is the DNS lookup surface used for verification; *net.Resolver satisfies it.
type Resolver interface {
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// Store persists verification state transitions.
type Store interface {
	GetDomain(ctx context.Context, id int64) (*domain.CustomDomain, error)
	UpdateDomainVerification(ctx context.Context, d *domain.CustomDomain) error
}

// DNSRecord is one record the owner must publish.
type DNSRecord struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Instructions tell the owner which records prove ownership; either one is enough.
type Instructions struct {
	CNAME DNSRecord `json:"cname"`
	TXT   DNSRecord `json:"txt"`
}

// Result is the outcome of a verification call. Failing to verify is a result, not an error.
type Result struct {
	Domain          *domain.CustomDomain
	Status          domain.DomainStatus
	Method          *domain.VerificationMethod
	AlreadyVerified bool
	Instructions    *Instructions
}

// Config holds verification policy.
type Config struct {
	CNAMETarget  string
	MaxAttempts  int
	// CheckTimeout bounds the lookups and writes of one attempt. They run detached
	// from the caller's context so a disconnect cannot strand a domain in verifying.
	CheckTimeout time.Duration
}

// Verifier drives a domain through pending -> verifying -> verified | failed.
type Verifier struct {
	store    Store
	resolver Resolver
	limiter  *ratelimit.Limiter
	clock    domain.Clock
	config   Config
	log      *zap.Logger
}

// New creates a verifier. limiter gates calls per domain id (5 per 5 minutes in production).
func New(store Store, resolver Resolver, limiter *ratelimit.Limiter, clock domain.Clock, cfg Config, log *zap.Logger) *Verifier {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 15 * time.Second
	}
	cfg.CNAMETarget = normalizeFQDN(cfg.CNAMETarget)
	return &Verifier{
		store:    store,
		resolver: resolver,
		limiter:  limiter,
		clock:    clock,
		config:   cfg,
		log:      log,
	}
}

// InstructionsFor returns the records that prove ownership of d.
func (v *Verifier) InstructionsFor(d *domain.CustomDomain) *Instructions {
	return &Instructions{
		CNAME: DNSRecord{Type: "CNAME", Name: d.Hostname, Value: v.config.CNAMETarget},
		TXT:   DNSRecord{Type: "TXT", Name: TXTRecordPrefix + "." + d.Hostname, Value: TXTValuePrefix + d.VerificationToken},
	}
}

// Verify performs one verification attempt for the domain.
//
// A verified domain is returned unchanged. A failed domain is returned unchanged
// until it is Reset. Otherwise the domain is marked verifying, a CNAME lookup is
// tried and then a TXT lookup; success marks it verified and starts SSL
// provisioning, failure consumes one attempt.
func (v *Verifier) Verify(ctx context.Context, id int64) (*Result, error) {
	log := v.log.With(zap.Int64("domain_id", id))

	if !v.limiter.Allow(ctx, strconv.FormatInt(id, 10)) {
		return nil, domain.ErrRateLimited
	}

	d, err := v.store.GetDomain(ctx, id)
	if err != nil {
		return nil, err
	}

	switch d.Status {
	case domain.DomainStatusVerified:
		return &Result{Domain: d, Status: d.Status, Method: d.VerificationMethod, AlreadyVerified: true}, nil
	case domain.DomainStatusFailed:
		log.Debug("verification skipped, domain failed", zap.Int("attempts", d.CheckAttempts))
		return &Result{Domain: d, Status: d.Status, Instructions: v.InstructionsFor(d)}, nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.config.CheckTimeout)
	defer cancel()

	d.Status = domain.DomainStatusVerifying
	if err := v.store.UpdateDomainVerification(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to mark domain verifying: %w", err)
	}

	method, ok := v.check(ctx, log, d)
	now := v.clock.Now()
	d.LastCheckedAt = &now

	if ok {
		d.Status = domain.DomainStatusVerified
		d.VerificationMethod = &method
		d.VerifiedAt = &now
		d.SSLStatus = domain.SSLStatusProvisioning
		if err := v.store.UpdateDomainVerification(ctx, d); err != nil {
			return nil, fmt.Errorf("failed to mark domain verified: %w", err)
		}
		log.Info("domain verified", zap.String("hostname", d.Hostname), zap.String("method", string(method)))
		return &Result{Domain: d, Status: d.Status, Method: &method}, nil
	}

	d.CheckAttempts++
	d.Status = domain.DomainStatusPending
	if d.CheckAttempts >= v.config.MaxAttempts {
		d.Status = domain.DomainStatusFailed
	}
	if err := v.store.UpdateDomainVerification(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to record verification attempt: %w", err)
	}

	log.Info("domain verification failed",
		zap.String("hostname", d.Hostname),
		zap.Int("attempts", d.CheckAttempts),
		zap.String("status", string(d.Status)))

	return &Result{Domain: d, Status: d.Status, Instructions: v.InstructionsFor(d)}, nil
}

// Reset returns a failed domain to pending with a fresh attempt budget.
// Verified domains are never reset.
func (v *Verifier) Reset(ctx context.Context, id int64) (*domain.CustomDomain, error) {
	d, err := v.store.GetDomain(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status == domain.DomainStatusVerified {
		return d, nil
	}

	d.Status = domain.DomainStatusPending
	d.CheckAttempts = 0
	if err := v.store.UpdateDomainVerification(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to reset domain: %w", err)
	}
	if err := v.limiter.Reset(ctx, strconv.FormatInt(id, 10)); err != nil {
		v.log.Warn("failed to reset verify limiter", zap.Int64("domain_id", id), zap.Error(err))
	}

	v.log.Info("domain verification reset", zap.Int64("domain_id", id), zap.String("hostname", d.Hostname))
	return d, nil
}

// check tries CNAME first, then TXT. Lookup errors count as a failed check.
func (v *Verifier) check(ctx context.Context, log *zap.Logger, d *domain.CustomDomain) (domain.VerificationMethod, bool) {
	cname, err := v.resolver.LookupCNAME(ctx, d.Hostname)
	if err == nil && normalizeFQDN(cname) == v.config.CNAMETarget {
		return domain.VerificationCNAME, true
	}
	if err != nil {
		log.Debug("CNAME lookup failed", zap.String("hostname", d.Hostname), zap.Error(err))
	} else {
		log.Debug("CNAME mismatch", zap.String("hostname", d.Hostname), zap.String("cname", cname))
	}

	records, err := v.resolver.LookupTXT(ctx, TXTRecordPrefix+"."+d.Hostname)
	if err != nil {
		log.Debug("TXT lookup failed", zap.String("hostname", d.Hostname), zap.Error(err))
		return "", false
	}
	want := TXTValuePrefix + d.VerificationToken
	for _, record := range records {
		if strings.TrimSpace(record) == want {
			return domain.VerificationTXT, true
		}
	}
	return "", false
}

func normalizeFQDN(host string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
}
