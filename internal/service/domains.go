package service

import (
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/domainverify"
	"LinkGate-Backend/internal/repository"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DomainConfig holds custom-domain policy.
type DomainConfig struct {
	MaxPerWorkspace int
}

// DomainView is a domain plus the DNS records the owner must publish.
type DomainView struct {
	*domain.CustomDomain
	Instructions *domainverify.Instructions `json:"dns_instructions,omitempty"`
}

type DomainService struct {
	storage  repository.DomainStore
	verifier *domainverify.Verifier
	config   DomainConfig
	log      *zap.Logger
}

func NewDomainService(storage repository.DomainStore, verifier *domainverify.Verifier, cfg DomainConfig, log *zap.Logger) *DomainService {
	if cfg.MaxPerWorkspace <= 0 {
		cfg.MaxPerWorkspace = 10
	}
	return &DomainService{storage: storage, verifier: verifier, config: cfg, log: log}
}

// Create registers a hostname for a workspace in pending state.
func (s *DomainService) Create(ctx context.Context, workspaceID, rawHostname string) (*DomainView, error) {
	if workspaceID == "" {
		workspaceID = defaultWorkspace
	}

	hostname, err := domainverify.NormalizeHostname(rawHostname)
	if err != nil {
		return nil, err
	}

	count, err := s.storage.CountDomains(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.config.MaxPerWorkspace) {
		return nil, fmt.Errorf("%w: workspace already has %d domains", domain.ErrLimitExceeded, count)
	}

	token, err := domainverify.NewVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	d := &domain.CustomDomain{
		Hostname:          hostname,
		WorkspaceID:       workspaceID,
		VerificationToken: token,
		Status:            domain.DomainStatusPending,
		SSLStatus:         domain.SSLStatusNone,
	}
	if err := s.storage.CreateDomain(ctx, d); err != nil {
		return nil, err
	}

	s.log.Info("domain registered",
		zap.Int64("domain_id", d.ID),
		zap.String("hostname", hostname),
		zap.String("workspace_id", workspaceID))
	return &DomainView{CustomDomain: d, Instructions: s.verifier.InstructionsFor(d)}, nil
}

// Get returns a domain owned by the workspace. Domains of other workspaces are not found.
func (s *DomainService) Get(ctx context.Context, workspaceID string, id int64) (*DomainView, error) {
	d, err := s.owned(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	view := &DomainView{CustomDomain: d}
	if !d.IsVerified() {
		view.Instructions = s.verifier.InstructionsFor(d)
	}
	return view, nil
}

// List returns every domain of the workspace.
func (s *DomainService) List(ctx context.Context, workspaceID string) ([]domain.CustomDomain, error) {
	if workspaceID == "" {
		workspaceID = defaultWorkspace
	}
	return s.storage.ListDomains(ctx, workspaceID)
}

func (s *DomainService) Verify(ctx context.Context, workspaceID string, id int64) (*domainverify.Result, error) {
	if _, err := s.owned(ctx, workspaceID, id); err != nil {
		return nil, err
	}
	return s.verifier.Verify(ctx, id)
}

// Reset moves a failed domain back to pending.
func (s *DomainService) Reset(ctx context.Context, workspaceID string, id int64) (*DomainView, error) {
	if _, err := s.owned(ctx, workspaceID, id); err != nil {
		return nil, err
	}
	d, err := s.verifier.Reset(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &DomainView{CustomDomain: d}
	if !d.IsVerified() {
		view.Instructions = s.verifier.InstructionsFor(d)
	}
	return view, nil
}

func (s *DomainService) SetDefault(ctx context.Context, workspaceID string, id int64) error {
	if _, err := s.owned(ctx, workspaceID, id); err != nil {
		return err
	}
	return s.storage.SetDefaultDomain(ctx, id)
}

// Delete removes the domain; its links move to the default scope.
func (s *DomainService) Delete(ctx context.Context, workspaceID string, id int64) error {
	if _, err := s.owned(ctx, workspaceID, id); err != nil {
		return err
	}
	return s.storage.DeleteDomain(ctx, id)
}

func (s *DomainService) owned(ctx context.Context, workspaceID string, id int64) (*domain.CustomDomain, error) {
	if workspaceID == "" {
		workspaceID = defaultWorkspace
	}
	d, err := s.storage.GetDomain(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.WorkspaceID != workspaceID {
		return nil, domain.ErrNotFound
	}
	return d, nil
}
