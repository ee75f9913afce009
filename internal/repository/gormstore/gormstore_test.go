package gormstore

import (
	"LinkGate-Backend/internal/config"
	"LinkGate-Backend/internal/database"
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/repository"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Database{
		Driver:          database.DriverSQLite,
		SQLitePath:      fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		ConnMaxLifetime: "1h",
	}
	log := zap.NewNop()

	db, err := database.NewConnection(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db, log) })
	require.NoError(t, database.AutoMigrate(db, log))

	return New(db, log)
}

func ptr[T any](v T) *T { return &v }

func newVerifiedDomain(t *testing.T, s *Storage, host, workspace string) *domain.CustomDomain {
	t.Helper()
	d := &domain.CustomDomain{
		Hostname:          host,
		WorkspaceID:       workspace,
		VerificationToken: "tok",
		Status:            domain.DomainStatusVerified,
		SSLStatus:         domain.SSLStatusNone,
	}
	require.NoError(t, s.CreateDomain(context.Background(), d))
	return d
}

func TestStorage_LinkCodesAreScopedPerDomain(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	d := newVerifiedDomain(t, s, "go.acme.com", "ws")

	require.NoError(t, s.CreateLink(ctx, &domain.Link{Code: "promo", WorkspaceID: "ws", DestinationURL: "https://a.example"}))
	require.NoError(t, s.CreateLink(ctx, &domain.Link{Code: "promo", DomainID: &d.ID, WorkspaceID: "ws", DestinationURL: "https://b.example"}))

	err := s.CreateLink(ctx, &domain.Link{Code: "promo", WorkspaceID: "ws", DestinationURL: "https://c.example"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	def, err := s.GetLinkByCode(ctx, nil, "promo")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", def.DestinationURL)

	scoped, err := s.GetLinkByCode(ctx, &d.ID, "promo")
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", scoped.DestinationURL)

	_, err = s.GetLinkByCode(ctx, nil, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStorage_IncrementClickCount(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	link := &domain.Link{Code: "abc", WorkspaceID: "ws", DestinationURL: "https://example.com"}
	require.NoError(t, s.CreateLink(ctx, link))

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.IncrementClickCount(ctx, link.ID, at))
	}

	got, err := s.GetLinkByCode(ctx, nil, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ClickCount)
	require.NotNil(t, got.LastClickedAt)
	assert.True(t, got.LastClickedAt.Equal(at))

	assert.ErrorIs(t, s.IncrementClickCount(ctx, 9999, at), domain.ErrNotFound)
}

func TestStorage_ListClickEventsFilters(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	a := &domain.Link{Code: "a", WorkspaceID: "ws1", DestinationURL: "https://a.example"}
	b := &domain.Link{Code: "b", WorkspaceID: "ws2", DestinationURL: "https://b.example"}
	require.NoError(t, s.CreateLink(ctx, a))
	require.NoError(t, s.CreateLink(ctx, b))

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	insert := func(linkID int64, at time.Time, bot bool, country *string) {
		require.NoError(t, s.InsertClickEvent(ctx, &domain.ClickEvent{
			ID: uuid.NewString(), LinkID: linkID, ClickedAt: at, Source: "direct",
			DeviceType: "desktop", IsBot: bot, IPHash: "h", Country: country,
		}))
	}
	insert(a.ID, base.Add(1*time.Hour), false, ptr("US"))
	insert(a.ID, base.Add(2*time.Hour), true, ptr("US"))
	insert(a.ID, base.Add(3*time.Hour), false, ptr("DE"))
	insert(b.ID, base.Add(1*time.Hour), false, nil)
	insert(a.ID, base.Add(48*time.Hour), false, nil) // outside window

	window := repository.ClickFilter{From: base, To: base.Add(24 * time.Hour)}

	t.Run("workspace scope excludes bots by default", func(t *testing.T) {
		f := window
		f.WorkspaceID = "ws1"
		events, err := s.ListClickEvents(ctx, f)
		require.NoError(t, err)
		assert.Len(t, events, 2)
		for _, e := range events {
			assert.False(t, e.IsBot)
			assert.Equal(t, a.ID, e.LinkID)
		}
	})

	t.Run("include bots", func(t *testing.T) {
		f := window
		f.LinkID = &a.ID
		f.IncludeBots = true
		events, err := s.ListClickEvents(ctx, f)
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})

	t.Run("country filter", func(t *testing.T) {
		f := window
		f.LinkID = &a.ID
		f.Country = ptr("DE")
		events, err := s.ListClickEvents(ctx, f)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "DE", *events[0].Country)
	})
}

func TestStorage_DeleteLinkCascadesEvents(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	link := &domain.Link{Code: "gone", WorkspaceID: "ws", DestinationURL: "https://example.com"}
	require.NoError(t, s.CreateLink(ctx, link))
	require.NoError(t, s.InsertClickEvent(ctx, &domain.ClickEvent{
		ID: uuid.NewString(), LinkID: link.ID, ClickedAt: time.Now().UTC(), Source: "direct", DeviceType: "desktop", IPHash: "h",
	}))

	require.NoError(t, s.DeleteLink(ctx, link.ID))

	events, err := s.ListClickEvents(ctx, repository.ClickFilter{
		LinkID: &link.ID, From: time.Now().Add(-time.Hour), To: time.Now().Add(time.Hour), IncludeBots: true,
	})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.ErrorIs(t, s.DeleteLink(ctx, link.ID), domain.ErrNotFound)
}

func TestStorage_DomainHostnameUnique(t *testing.T) {
	s := newTestStorage(t)
	newVerifiedDomain(t, s, "go.acme.com", "ws")

	err := s.CreateDomain(context.Background(), &domain.CustomDomain{
		Hostname: "go.acme.com", WorkspaceID: "other", VerificationToken: "x", Status: domain.DomainStatusPending,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStorage_UpdateDomainVerificationKeepsVerified(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	d := newVerifiedDomain(t, s, "go.acme.com", "ws")

	d.Status = domain.DomainStatusFailed
	require.NoError(t, s.UpdateDomainVerification(ctx, d))

	got, err := s.GetDomain(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DomainStatusVerified, got.Status)
}

func TestStorage_SetDefaultDomain(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	first := newVerifiedDomain(t, s, "one.acme.com", "ws")
	second := newVerifiedDomain(t, s, "two.acme.com", "ws")
	pending := &domain.CustomDomain{Hostname: "three.acme.com", WorkspaceID: "ws", VerificationToken: "x", Status: domain.DomainStatusPending}
	require.NoError(t, s.CreateDomain(ctx, pending))

	require.NoError(t, s.SetDefaultDomain(ctx, first.ID))
	require.NoError(t, s.SetDefaultDomain(ctx, second.ID))
	assert.ErrorIs(t, s.SetDefaultDomain(ctx, pending.ID), domain.ErrDomainNotVerified)
	assert.ErrorIs(t, s.SetDefaultDomain(ctx, 4242), domain.ErrNotFound)

	domains, err := s.ListDomains(ctx, "ws")
	require.NoError(t, err)
	defaults := 0
	for _, d := range domains {
		if d.IsDefault {
			defaults++
			assert.Equal(t, second.ID, d.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestStorage_DeleteDomainReassignsLinks(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	d := newVerifiedDomain(t, s, "go.acme.com", "ws")
	require.NoError(t, s.CreateLink(ctx, &domain.Link{Code: "keep", DomainID: &d.ID, WorkspaceID: "ws", DestinationURL: "https://example.com"}))

	require.NoError(t, s.DeleteDomain(ctx, d.ID))

	link, err := s.GetLinkByCode(ctx, nil, "keep")
	require.NoError(t, err)
	assert.Nil(t, link.DomainID)
	_, err = s.GetDomain(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStorage_DeleteDomainRejectsCollidingCodes(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	d := newVerifiedDomain(t, s, "go.acme.com", "ws")
	require.NoError(t, s.CreateLink(ctx, &domain.Link{Code: "dup", WorkspaceID: "ws", DestinationURL: "https://a.example"}))
	require.NoError(t, s.CreateLink(ctx, &domain.Link{Code: "dup", DomainID: &d.ID, WorkspaceID: "ws", DestinationURL: "https://b.example"}))

	assert.ErrorIs(t, s.DeleteDomain(ctx, d.ID), domain.ErrConflict)

	count, err := s.CountDomains(ctx, "ws")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
