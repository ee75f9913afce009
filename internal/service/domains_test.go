package service

import (
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/domainverify"
	"LinkGate-Backend/internal/ratelimit"
	"LinkGate-Backend/internal/repository/memory"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// staticResolver answers CNAME lookups from a map; everything else is NXDOMAIN.
type staticResolver map[string]string

func (r staticResolver) LookupCNAME(_ context.Context, host string) (string, error) {
	if target, ok := r[host]; ok {
		return target, nil
	}
	return "", errors.New("no such host")
}

func (r staticResolver) LookupTXT(context.Context, string) ([]string, error) {
	return nil, errors.New("no such host")
}

func newDomainService(t *testing.T, resolver staticResolver, max int) (*DomainService, *memory.MemStorage) {
	t.Helper()
	clock := domain.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	store := memory.New()
	limiter := ratelimit.New(ratelimit.NewMemoryStore(clock), "domain:verify", 5, 5*time.Minute, zap.NewNop())
	verifier := domainverify.New(store, resolver, limiter, clock, domainverify.Config{CNAMETarget: "cname.linkgate.io"}, zap.NewNop())
	return NewDomainService(store, verifier, DomainConfig{MaxPerWorkspace: max}, zap.NewNop()), store
}

func TestDomainService_Create(t *testing.T) {
	svc, _ := newDomainService(t, nil, 2)
	ctx := context.Background()

	view, err := svc.Create(ctx, "ws", "Go.Acme.COM")
	require.NoError(t, err)
	assert.Equal(t, "go.acme.com", view.Hostname)
	assert.Equal(t, domain.DomainStatusPending, view.Status)
	assert.NotEmpty(t, view.VerificationToken)
	require.NotNil(t, view.Instructions)
	assert.Equal(t, "cname.linkgate.io", view.Instructions.CNAME.Value)

	_, err = svc.Create(ctx, "other", "go.acme.com")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Create(ctx, "ws", "not a host")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, "ws", "two.acme.com")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "ws", "three.acme.com")
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
}

func TestDomainService_VerifyAndDefault(t *testing.T) {
	svc, _ := newDomainService(t, staticResolver{"go.acme.com": "cname.linkgate.io."}, 10)
	ctx := context.Background()

	good, err := svc.Create(ctx, "ws", "go.acme.com")
	require.NoError(t, err)
	bad, err := svc.Create(ctx, "ws", "bad.acme.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.SetDefault(ctx, "ws", good.ID), domain.ErrDomainNotVerified)

	res, err := svc.Verify(ctx, "ws", good.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DomainStatusVerified, res.Status)
	require.NotNil(t, res.Method)
	assert.Equal(t, domain.VerificationCNAME, *res.Method)

	res, err = svc.Verify(ctx, "ws", bad.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DomainStatusPending, res.Status)
	assert.NotNil(t, res.Instructions)

	require.NoError(t, svc.SetDefault(ctx, "ws", good.ID))
	view, err := svc.Get(ctx, "ws", good.ID)
	require.NoError(t, err)
	assert.True(t, view.IsDefault)
	assert.Nil(t, view.Instructions)
}

func TestDomainService_WorkspaceIsolation(t *testing.T) {
	svc, _ := newDomainService(t, nil, 10)
	ctx := context.Background()
	view, err := svc.Create(ctx, "ws", "go.acme.com")
	require.NoError(t, err)

	_, err = svc.Get(ctx, "intruder", view.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Verify(ctx, "intruder", view.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "intruder", view.ID), domain.ErrNotFound)
}

func TestDomainService_ResetAfterFailure(t *testing.T) {
	svc, store := newDomainService(t, nil, 10)
	ctx := context.Background()
	view, err := svc.Create(ctx, "ws", "go.acme.com")
	require.NoError(t, err)

	d, err := store.GetDomain(ctx, view.ID)
	require.NoError(t, err)
	d.Status = domain.DomainStatusFailed
	d.CheckAttempts = 10
	require.NoError(t, store.UpdateDomainVerification(ctx, d))

	reset, err := svc.Reset(ctx, "ws", view.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DomainStatusPending, reset.Status)
	assert.Zero(t, reset.CheckAttempts)
}

func TestDomainService_DeleteMovesLinks(t *testing.T) {
	svc, store := newDomainService(t, staticResolver{"go.acme.com": "cname.linkgate.io"}, 10)
	ctx := context.Background()
	view, err := svc.Create(ctx, "ws", "go.acme.com")
	require.NoError(t, err)
	_, err = svc.Verify(ctx, "ws", view.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateLink(ctx, &domain.Link{Code: fmt.Sprintf("c%d", i), DomainID: &view.ID, WorkspaceID: "ws"}))
	}
	require.NoError(t, svc.Delete(ctx, "ws", view.ID))

	for i := 0; i < 3; i++ {
		link, err := store.GetLinkByCode(ctx, nil, fmt.Sprintf("c%d", i))
		require.NoError(t, err)
		assert.Nil(t, link.DomainID)
	}
	domains, err := svc.List(ctx, "ws")
	require.NoError(t, err)
	assert.Empty(t, domains)
}
