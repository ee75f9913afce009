package repository

import (
	"LinkGate-Backend/internal/domain"
	"context"
	"time"
)

// LinkStore persists short links. Code uniqueness is scoped per domain; a nil
// domain id is the default scope. Conflicts return domain.ErrConflict, missing
// rows domain.ErrNotFound.
type LinkStore interface {
	CreateLink(ctx context.Context, link *domain.Link) error
	GetLinkByCode(ctx context.Context, domainID *int64, code string) (*domain.Link, error)
	CodeExists(ctx context.Context, domainID *int64, code string) (bool, error)
	// IncrementClickCount atomically adds one click and sets last_clicked_at.
	IncrementClickCount(ctx context.Context, linkID int64, at time.Time) error
	// DeleteLink removes the link and cascades its click events.
	DeleteLink(ctx context.Context, linkID int64) error
}

// ClickFilter selects click events for aggregation. From is inclusive, To exclusive.
type ClickFilter struct {
	LinkID      *int64
	WorkspaceID string
	From        time.Time
	To          time.Time
	IncludeBots bool
	Country     *string
}

// ClickStore persists click events. Events are immutable: there is no update path.
type ClickStore interface {
	InsertClickEvent(ctx context.Context, event *domain.ClickEvent) error
	ListClickEvents(ctx context.Context, filter ClickFilter) ([]domain.ClickEvent, error)
}

// DomainStore persists custom domains.
type DomainStore interface {
	CreateDomain(ctx context.Context, d *domain.CustomDomain) error
	GetDomain(ctx context.Context, id int64) (*domain.CustomDomain, error)
	GetDomainByHostname(ctx context.Context, hostname string) (*domain.CustomDomain, error)
	ListDomains(ctx context.Context, workspaceID string) ([]domain.CustomDomain, error)
	CountDomains(ctx context.Context, workspaceID string) (int64, error)
	// UpdateDomainVerification writes verification fields. A verified row is never
	// moved back to another status.
	UpdateDomainVerification(ctx context.Context, d *domain.CustomDomain) error
	// SetDefaultDomain marks a verified domain as its workspace default and clears
	// any other default there. Unverified domains yield domain.ErrDomainNotVerified.
	SetDefaultDomain(ctx context.Context, id int64) error
	// DeleteDomain moves the domain's links to the default scope and deletes it.
	// A code collision in the default scope yields domain.ErrConflict.
	DeleteDomain(ctx context.Context, id int64) error
}

// Storage is the full persistence surface used by the service.
type Storage interface {
	LinkStore
	ClickStore
	DomainStore
	Ping(ctx context.Context) error
}
