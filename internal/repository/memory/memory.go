package memory

import (
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/repository"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type scopedCode struct {
	scope int64
	code  string
}

// MemStorage is an in-process repository.Storage. Returned values are copies.
type MemStorage struct {
	mu        sync.RWMutex
	links     map[scopedCode]*domain.Link
	linksByID map[int64]*domain.Link
	events    []domain.ClickEvent
	domains   map[int64]*domain.CustomDomain
	linkSeq   int64
	domainSeq int64
	now       func() time.Time
}

var _ repository.Storage = (*MemStorage)(nil)

func New() *MemStorage {
	return &MemStorage{
		links:     make(map[scopedCode]*domain.Link),
		linksByID: make(map[int64]*domain.Link),
		domains:   make(map[int64]*domain.CustomDomain),
		now:       time.Now,
	}
}

// --- Link Methods ---

func (s *MemStorage) CreateLink(_ context.Context, link *domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link.DomainScope = domain.ScopeOf(link.DomainID)
	key := scopedCode{scope: link.DomainScope, code: link.Code}
	if _, exists := s.links[key]; exists {
		return domain.ErrConflict
	}

	s.linkSeq++
	link.ID = s.linkSeq
	now := s.now()
	link.CreatedAt, link.UpdatedAt = now, now

	stored := *link
	s.links[key] = &stored
	s.linksByID[stored.ID] = &stored
	return nil
}

func (s *MemStorage) GetLinkByCode(_ context.Context, domainID *int64, code string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[scopedCode{scope: domain.ScopeOf(domainID), code: code}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (s *MemStorage) CodeExists(_ context.Context, domainID *int64, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.links[scopedCode{scope: domain.ScopeOf(domainID), code: code}]
	return ok, nil
}

func (s *MemStorage) IncrementClickCount(_ context.Context, linkID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.linksByID[linkID]
	if !ok {
		return domain.ErrNotFound
	}
	link.ClickCount++
	link.LastClickedAt = &at
	return nil
}

func (s *MemStorage) DeleteLink(_ context.Context, linkID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.linksByID[linkID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.linksByID, linkID)
	delete(s.links, scopedCode{scope: link.DomainScope, code: link.Code})

	kept := s.events[:0]
	for _, e := range s.events {
		if e.LinkID != linkID {
			kept = append(kept, e)
		}
	}
	s.events = kept
	return nil
}

// --- Click Methods ---

func (s *MemStorage) InsertClickEvent(_ context.Context, event *domain.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.linksByID[event.LinkID]; !ok {
		return fmt.Errorf("insert click event: link %d: %w", event.LinkID, domain.ErrNotFound)
	}
	s.events = append(s.events, *event)
	return nil
}

func (s *MemStorage) ListClickEvents(_ context.Context, f repository.ClickFilter) ([]domain.ClickEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ClickEvent
	for _, e := range s.events {
		if e.ClickedAt.Before(f.From) || !e.ClickedAt.Before(f.To) {
			continue
		}
		if f.LinkID != nil && e.LinkID != *f.LinkID {
			continue
		}
		if f.WorkspaceID != "" {
			link, ok := s.linksByID[e.LinkID]
			if !ok || link.WorkspaceID != f.WorkspaceID {
				continue
			}
		}
		if !f.IncludeBots && e.IsBot {
			continue
		}
		if f.Country != nil && (e.Country == nil || *e.Country != *f.Country) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ClickedAt.Equal(out[j].ClickedAt) {
			return out[i].ClickedAt.Before(out[j].ClickedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// --- Domain Methods ---

func (s *MemStorage) CreateDomain(_ context.Context, d *domain.CustomDomain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.domains {
		if existing.Hostname == d.Hostname {
			return domain.ErrConflict
		}
	}
	s.domainSeq++
	d.ID = s.domainSeq
	now := s.now()
	d.CreatedAt, d.UpdatedAt = now, now

	stored := *d
	s.domains[d.ID] = &stored
	return nil
}

func (s *MemStorage) GetDomain(_ context.Context, id int64) (*domain.CustomDomain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.domains[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *MemStorage) GetDomainByHostname(_ context.Context, hostname string) (*domain.CustomDomain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.domains {
		if d.Hostname == hostname {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemStorage) ListDomains(_ context.Context, workspaceID string) ([]domain.CustomDomain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.CustomDomain
	for _, d := range s.domains {
		if d.WorkspaceID == workspaceID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStorage) CountDomains(_ context.Context, workspaceID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, d := range s.domains {
		if d.WorkspaceID == workspaceID {
			n++
		}
	}
	return n, nil
}

func (s *MemStorage) UpdateDomainVerification(_ context.Context, d *domain.CustomDomain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.domains[d.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.IsVerified() && d.Status != domain.DomainStatusVerified {
		return nil
	}
	stored.Status = d.Status
	stored.CheckAttempts = d.CheckAttempts
	stored.LastCheckedAt = d.LastCheckedAt
	stored.VerifiedAt = d.VerifiedAt
	stored.VerificationMethod = d.VerificationMethod
	stored.SSLStatus = d.SSLStatus
	stored.UpdatedAt = s.now()
	return nil
}

func (s *MemStorage) SetDefaultDomain(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.domains[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !target.IsVerified() {
		return domain.ErrDomainNotVerified
	}
	for _, d := range s.domains {
		if d.WorkspaceID == target.WorkspaceID {
			d.IsDefault = d.ID == id
		}
	}
	return nil
}

func (s *MemStorage) DeleteDomain(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.domains[id]; !ok {
		return domain.ErrNotFound
	}

	var moving []*domain.Link
	for _, link := range s.linksByID {
		if link.DomainScope != id {
			continue
		}
		if _, taken := s.links[scopedCode{scope: 0, code: link.Code}]; taken {
			return fmt.Errorf("%w: code %q already exists in the default scope", domain.ErrConflict, link.Code)
		}
		moving = append(moving, link)
	}

	for _, link := range moving {
		delete(s.links, scopedCode{scope: id, code: link.Code})
		link.DomainID = nil
		link.DomainScope = 0
		s.links[scopedCode{scope: 0, code: link.Code}] = link
	}
	delete(s.domains, id)
	return nil
}

func (s *MemStorage) Ping(context.Context) error { return nil }
