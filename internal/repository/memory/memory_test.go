package memory

import (
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStorage_ScopedCodes(t *testing.T) {
	s := New()
	ctx := context.Background()
	d := &domain.CustomDomain{Hostname: "go.acme.com", WorkspaceID: "ws", Status: domain.DomainStatusVerified}
	require.NoError(t, s.CreateDomain(ctx, d))

	require.NoError(t, s.CreateLink(ctx, &domain.Link{Code: "x", WorkspaceID: "ws"}))
	require.NoError(t, s.CreateLink(ctx, &domain.Link{Code: "x", DomainID: &d.ID, WorkspaceID: "ws"}))
	assert.ErrorIs(t, s.CreateLink(ctx, &domain.Link{Code: "x", WorkspaceID: "ws"}), domain.ErrConflict)

	exists, err := s.CodeExists(ctx, &d.ID, "x")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemStorage_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateLink(ctx, &domain.Link{Code: "c", DestinationURL: "https://example.com"}))

	got, err := s.GetLinkByCode(ctx, nil, "c")
	require.NoError(t, err)
	got.DestinationURL = "https://evil.example"

	again, err := s.GetLinkByCode(ctx, nil, "c")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", again.DestinationURL)
}

func TestMemStorage_ClickEventsAndCascade(t *testing.T) {
	s := New()
	ctx := context.Background()
	link := &domain.Link{Code: "c", WorkspaceID: "ws"}
	require.NoError(t, s.CreateLink(ctx, link))

	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertClickEvent(ctx, &domain.ClickEvent{ID: "b", LinkID: link.ID, ClickedAt: at}))
	require.NoError(t, s.InsertClickEvent(ctx, &domain.ClickEvent{ID: "a", LinkID: link.ID, ClickedAt: at}))
	require.NoError(t, s.InsertClickEvent(ctx, &domain.ClickEvent{ID: "bot", LinkID: link.ID, ClickedAt: at, IsBot: true}))
	assert.ErrorIs(t, s.InsertClickEvent(ctx, &domain.ClickEvent{ID: "z", LinkID: 99, ClickedAt: at}), domain.ErrNotFound)

	events, err := s.ListClickEvents(ctx, repository.ClickFilter{WorkspaceID: "ws", From: at, To: at.Add(time.Second)})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ID)

	require.NoError(t, s.DeleteLink(ctx, link.ID))
	events, err = s.ListClickEvents(ctx, repository.ClickFilter{From: at, To: at.Add(time.Second), IncludeBots: true})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMemStorage_DeleteDomain(t *testing.T) {
	s := New()
	ctx := context.Background()
	d := &domain.CustomDomain{Hostname: "go.acme.com", WorkspaceID: "ws", Status: domain.DomainStatusVerified}
	require.NoError(t, s.CreateDomain(ctx, d))
	require.NoError(t, s.CreateLink(ctx, &domain.Link{Code: "move", DomainID: &d.ID}))
	require.NoError(t, s.CreateLink(ctx, &domain.Link{Code: "dup", DomainID: &d.ID}))
	require.NoError(t, s.CreateLink(ctx, &domain.Link{Code: "dup"}))

	assert.ErrorIs(t, s.DeleteDomain(ctx, d.ID), domain.ErrConflict)
	_, err := s.GetLinkByCode(ctx, &d.ID, "move")
	require.NoError(t, err, "links stay put when delete is rejected")

	dup, err := s.GetLinkByCode(ctx, &d.ID, "dup")
	require.NoError(t, err)
	require.NoError(t, s.DeleteLink(ctx, dup.ID))
	require.NoError(t, s.DeleteDomain(ctx, d.ID))

	moved, err := s.GetLinkByCode(ctx, nil, "move")
	require.NoError(t, err)
	assert.Nil(t, moved.DomainID)
}

func TestMemStorage_VerifiedIsMonotonic(t *testing.T) {
	s := New()
	ctx := context.Background()
	d := &domain.CustomDomain{Hostname: "go.acme.com", Status: domain.DomainStatusVerified}
	require.NoError(t, s.CreateDomain(ctx, d))

	d.Status = domain.DomainStatusPending
	require.NoError(t, s.UpdateDomainVerification(ctx, d))
	got, err := s.GetDomain(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified())
}
