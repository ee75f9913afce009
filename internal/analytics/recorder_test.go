package analytics

import (
	"LinkGate-Backend/internal/classifier"
	"LinkGate-Backend/internal/domain"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockClickWriter struct {
	mock.Mock
}

func (m *MockClickWriter) InsertClickEvent(ctx context.Context, event *domain.ClickEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockClickWriter) IncrementClickCount(ctx context.Context, linkID int64, at time.Time) error {
	args := m.Called(ctx, linkID, at)
	return args.Error(0)
}

type stubClassifier struct{}

func (stubClassifier) Classify(ip string, _, _ *string) classifier.Classification {
	host := "news.ycombinator.com"
	return classifier.Classification{
		IPHash:       "hash-" + ip,
		DeviceType:   "mobile",
		OS:           "iOS",
		Browser:      "Mobile Safari",
		ReferrerHost: &host,
		Source:       classifier.SourceWeb,
	}
}

type stubGeo map[string]string

func (g stubGeo) Country(ip string) (string, bool) {
	c, ok := g[ip]
	return c, ok
}

func strp(s string) *string { return &s }

func newTestRecorder(w ClickWriter, geo GeoLocator, cfg RecorderConfig) (*Recorder, *domain.MockClock) {
	clock := domain.NewMockClock(time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))
	return NewRecorder(w, stubClassifier{}, geo, clock, cfg, zap.NewNop()), clock
}

func TestRecorder_WritesEventAndCounter(t *testing.T) {
	w := new(MockClickWriter)
	link := &domain.Link{ID: 7, UTM: domain.UTM{Source: strp("newsletter")}}
	at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	w.On("InsertClickEvent", mock.Anything, mock.MatchedBy(func(e *domain.ClickEvent) bool {
		return e.LinkID == 7 &&
			e.ID != "" &&
			e.IPHash == "hash-203.0.113.9" &&
			e.DeviceType == "mobile" &&
			e.ClickedAt.Equal(at) &&
			e.UTM.Source != nil && *e.UTM.Source == "newsletter" &&
			e.Country != nil && *e.Country == "DE"
	})).Return(nil).Once()
	w.On("IncrementClickCount", mock.Anything, int64(7), at).Return(nil).Once()

	r, _ := newTestRecorder(w, nil, RecorderConfig{WorkerCount: 2, BufferSize: 10})
	require.NoError(t, r.Start())

	require.NoError(t, r.Record(ClickRequest{
		Link:      link,
		IP:        "203.0.113.9",
		UserAgent: strp("Mozilla/5.0 (iPhone)"),
		Referrer:  strp("https://news.ycombinator.com/item"),
		Country:   strp("de"),
	}))
	require.NoError(t, r.Stop())

	w.AssertExpectations(t)
	stats := r.Stats()
	assert.Equal(t, int64(1), stats.Processed)
	assert.Zero(t, stats.Failed)
	assert.False(t, stats.Running)
}

func TestRecorder_AttemptsBothWritesWhenOneFails(t *testing.T) {
	w := new(MockClickWriter)
	w.On("InsertClickEvent", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	w.On("IncrementClickCount", mock.Anything, int64(1), mock.Anything).Return(nil).Once()

	r, _ := newTestRecorder(w, nil, RecorderConfig{WorkerCount: 1, BufferSize: 4})
	require.NoError(t, r.Start())
	require.NoError(t, r.Record(ClickRequest{Link: &domain.Link{ID: 1}, IP: "198.51.100.1"}))
	require.NoError(t, r.Stop())

	w.AssertExpectations(t)
	assert.Equal(t, int64(1), r.Stats().Failed)
	assert.Zero(t, r.Stats().Processed)
}

func TestRecorder_CombinesBothErrors(t *testing.T) {
	w := new(MockClickWriter)
	w.On("InsertClickEvent", mock.Anything, mock.Anything).Return(errors.New("insert boom"))
	w.On("IncrementClickCount", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("incr boom"))

	r, clock := newTestRecorder(w, nil, RecorderConfig{})
	err := r.process(job{req: ClickRequest{Link: &domain.Link{ID: 3}}, at: clock.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert boom")
	assert.Contains(t, err.Error(), "incr boom")
}

// blockingWriter parks every insert until released.
type blockingWriter struct {
	entered chan struct{}
	release chan struct{}
	mu      sync.Mutex
	ctxErrs []error
}

func (b *blockingWriter) InsertClickEvent(ctx context.Context, _ *domain.ClickEvent) error {
	b.entered <- struct{}{}
	<-b.release
	b.mu.Lock()
	b.ctxErrs = append(b.ctxErrs, ctx.Err())
	b.mu.Unlock()
	return nil
}

func (b *blockingWriter) IncrementClickCount(context.Context, int64, time.Time) error { return nil }

func TestRecorder_DropsWhenQueueFull(t *testing.T) {
	w := &blockingWriter{entered: make(chan struct{}, 4), release: make(chan struct{})}
	r, _ := newTestRecorder(w, nil, RecorderConfig{WorkerCount: 1, BufferSize: 1})
	require.NoError(t, r.Start())

	link := &domain.Link{ID: 1}
	require.NoError(t, r.Record(ClickRequest{Link: link}))
	<-w.entered // worker is busy with the first click

	require.NoError(t, r.Record(ClickRequest{Link: link}))
	assert.ErrorIs(t, r.Record(ClickRequest{Link: link}), ErrQueueFull)
	assert.Equal(t, int64(1), r.Stats().Dropped)

	close(w.release)
	require.NoError(t, r.Stop())
	assert.Equal(t, int64(2), r.Stats().Processed)
	for _, err := range w.ctxErrs {
		assert.NoError(t, err)
	}
}

func TestRecorder_RejectsWhenStopped(t *testing.T) {
	r, _ := newTestRecorder(new(MockClickWriter), nil, RecorderConfig{})
	assert.ErrorIs(t, r.Record(ClickRequest{Link: &domain.Link{ID: 1}}), ErrRecorderStopped)
	assert.ErrorIs(t, r.Stop(), ErrRecorderStopped)
	assert.ErrorIs(t, r.Record(ClickRequest{}), domain.ErrValidation)
}

func TestRecorder_CountrySources(t *testing.T) {
	geo := stubGeo{"192.0.2.1": "fr", "192.0.2.2": "XX"}
	r, clock := newTestRecorder(new(MockClickWriter), geo, RecorderConfig{})
	link := &domain.Link{ID: 1}

	tests := []struct {
		name string
		req  ClickRequest
		want *string
	}{
		{name: "edge header wins", req: ClickRequest{Link: link, IP: "192.0.2.1", Country: strp("US")}, want: strp("US")},
		{name: "locator fallback", req: ClickRequest{Link: link, IP: "192.0.2.1"}, want: strp("FR")},
		{name: "unknown code dropped", req: ClickRequest{Link: link, IP: "192.0.2.2"}},
		{name: "tor header falls back to locator", req: ClickRequest{Link: link, IP: "192.0.2.1", Country: strp("T1")}, want: strp("FR")},
		{name: "no data", req: ClickRequest{Link: link, IP: "192.0.2.9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := r.buildEvent(job{req: tt.req, at: clock.Now()})
			assert.Equal(t, tt.want, e.Country)
		})
	}
}
