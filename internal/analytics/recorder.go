package analytics

import (
	"LinkGate-Backend/internal/classifier"
	"LinkGate-Backend/internal/domain"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrQueueFull        = errors.New("click queue is full")
	ErrRecorderStopped  = errors.New("click recorder is not running")
	errAlreadyStarted   = errors.New("click recorder already started")
	errShutdownTimedOut = errors.New("click recorder shutdown timeout reached")
)

// ClickRequest is the transport-level view of one redirect to be recorded.
type ClickRequest struct {
	Link      *domain.Link
	IP        string
	UserAgent *string
	Referrer  *string
	// Country is an ISO code supplied by the edge (CF-IPCountry), if any.
	Country *string
}

// ClickWriter is the storage surface the recorder writes to.
type ClickWriter interface {
	InsertClickEvent(ctx context.Context, event *domain.ClickEvent) error
	IncrementClickCount(ctx context.Context, linkID int64, at time.Time) error
}

// Classifier turns request metadata into analytics attributes.
type Classifier interface {
	Classify(ip string, userAgent, referrer *string) classifier.Classification
}

// GeoLocator resolves a country for an IP. Optional; nil disables lookups.
type GeoLocator interface {
	Country(ip string) (string, bool)
}

// RecorderConfig holds worker pool settings.
type RecorderConfig struct {
	WorkerCount     int
	BufferSize      int
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultRecorderConfig returns sensible defaults.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		WorkerCount:     4,
		BufferSize:      10000,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// RecorderStats is a point-in-time snapshot of the recorder.
type RecorderStats struct {
	Running       bool  `json:"running"`
	QueueLength   int   `json:"queue_length"`
	QueueCapacity int   `json:"queue_capacity"`
	Workers       int   `json:"workers"`
	Processed     int64 `json:"processed"`
	Failed        int64 `json:"failed"`
	Dropped       int64 `json:"dropped"`
}

type job struct {
	req ClickRequest
	at  time.Time
}

// Recorder persists click events off the request path. Delivery is at-most-once:
// a full queue drops the click and nothing is retried.
type Recorder struct {
	config     RecorderConfig
	writer     ClickWriter
	classifier Classifier
	geo        GeoLocator
	clock      domain.Clock
	log        *zap.Logger

	queue   chan job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool

	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

func NewRecorder(writer ClickWriter, cls Classifier, geo GeoLocator, clock domain.Clock, config RecorderConfig, log *zap.Logger) *Recorder {
	defaults := DefaultRecorderConfig()
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}

	return &Recorder{
		config:     config,
		writer:     writer,
		classifier: cls,
		geo:        geo,
		clock:      clock,
		log:        log,
		queue:      make(chan job, config.BufferSize),
	}
}

// Start launches the worker pool.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return errAlreadyStarted
	}

	r.log.Info("starting click recorder",
		zap.Int("workers", r.config.WorkerCount),
		zap.Int("buffer_size", r.config.BufferSize))

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.started = true
	return nil
}

// Stop closes the queue and waits for workers to drain it.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return ErrRecorderStopped
	}
	r.started = false
	close(r.queue)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info("click recorder stopped",
			zap.Int64("processed", r.processed.Load()),
			zap.Int64("failed", r.failed.Load()),
			zap.Int64("dropped", r.dropped.Load()))
		return nil
	case <-time.After(r.config.ShutdownTimeout):
		r.log.Warn("click recorder shutdown timeout reached", zap.Int("pending", len(r.queue)))
		return errShutdownTimedOut
	}
}

// Record enqueues a click and returns immediately. The click timestamp is taken here.
func (r *Recorder) Record(req ClickRequest) error {
	if req.Link == nil {
		return fmt.Errorf("%w: click without link", domain.ErrValidation)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.started {
		r.dropped.Add(1)
		return ErrRecorderStopped
	}

	select {
	case r.queue <- job{req: req, at: r.clock.Now().UTC()}:
		return nil
	default:
		r.dropped.Add(1)
		r.log.Warn("click queue is full, dropping click",
			zap.Int64("link_id", req.Link.ID),
			zap.Int("queue_capacity", cap(r.queue)))
		return ErrQueueFull
	}
}

func (r *Recorder) worker(id int) {
	defer r.wg.Done()

	log := r.log.With(zap.Int("worker_id", id))
	log.Debug("click worker started")

	for j := range r.queue {
		if err := r.process(j); err != nil {
			r.failed.Add(1)
			log.Error("failed to record click", zap.Int64("link_id", j.req.Link.ID), zap.Error(err))
			continue
		}
		r.processed.Add(1)
	}
	log.Debug("click worker stopped")
}

// process performs both writes for one click. Neither write is skipped when the
// other fails, and neither inherits the request context.
func (r *Recorder) process(j job) error {
	event := r.buildEvent(j)

	errs := make([]error, 2)
	var g errgroup.Group
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
		defer cancel()
		if err := r.writer.InsertClickEvent(ctx, event); err != nil {
			errs[0] = fmt.Errorf("insert click event: %w", err)
		}
		return errs[0]
	})
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
		defer cancel()
		if err := r.writer.IncrementClickCount(ctx, j.req.Link.ID, j.at); err != nil {
			errs[1] = fmt.Errorf("increment click count: %w", err)
		}
		return errs[1]
	})
	_ = g.Wait()

	return multierr.Combine(errs...)
}

func (r *Recorder) buildEvent(j job) *domain.ClickEvent {
	req := j.req
	c := r.classifier.Classify(req.IP, req.UserAgent, req.Referrer)

	country := normalizeCountry(req.Country)
	if country == nil && r.geo != nil && req.IP != "" {
		if code, ok := r.geo.Country(req.IP); ok {
			country = normalizeCountry(&code)
		}
	}

	return &domain.ClickEvent{
		ID:           uuid.NewString(),
		LinkID:       req.Link.ID,
		ClickedAt:    j.at,
		Referrer:     nonEmpty(req.Referrer),
		ReferrerHost: c.ReferrerHost,
		Source:       c.Source,
		UserAgent:    nonEmpty(req.UserAgent),
		DeviceType:   c.DeviceType,
		OS:           c.OS,
		Browser:      c.Browser,
		IsBot:        c.IsBot,
		IPHash:       c.IPHash,
		Country:      country,
		UTM:          req.Link.UTM,
	}
}

// Stats returns counters for the metrics endpoint.
func (r *Recorder) Stats() RecorderStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RecorderStats{
		Running:       r.started,
		QueueLength:   len(r.queue),
		QueueCapacity: cap(r.queue),
		Workers:       r.config.WorkerCount,
		Processed:     r.processed.Load(),
		Failed:        r.failed.Load(),
		Dropped:       r.dropped.Load(),
	}
}

// normalizeCountry upper-cases a two-letter code. "XX" (unknown) and "T1" (Tor) are dropped.
func normalizeCountry(c *string) *string {
	if c == nil {
		return nil
	}
	code := strings.ToUpper(strings.TrimSpace(*c))
	if len(code) != 2 || code == "XX" || code == "T1" {
		return nil
	}
	return &code
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
