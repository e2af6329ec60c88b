package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"govdash/internal/backend"
	"govdash/internal/region"
	"govdash/internal/snapshot/metrics"
)

const pollKey = "poll"

// Source is the subset of the backend the poller reads.
type Source interface {
	MapData(ctx context.Context) (*region.Bundle, error)
	Stats(ctx context.Context) (*backend.Stats, error)
	Logs(ctx context.Context) ([]backend.UploadLog, error)
}

// Poller refreshes the snapshot on a fixed interval and on demand.
type Poller struct {
	source   Source
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	current atomic.Pointer[Snapshot]
	group   singleflight.Group

	subMu       sync.Mutex
	subscribers map[int]func(*Snapshot)
	nextSubID   int
}

// Option configures a Poller.
type Option func(*Poller)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) {
		p.metrics = m
	}
}

// WithInterval sets the polling period (default 5s).
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithTimeout bounds one poll (default: the interval).
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithClock overrides time.Now for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		p.now = now
	}
}

func New(source Source, opts ...Option) *Poller {
	p := &Poller{
		source:      source,
		interval:    5 * time.Second,
		logger:      slog.Default(),
		now:         time.Now,
		subscribers: make(map[int]func(*Snapshot)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.timeout == 0 {
		p.timeout = p.interval
	}
	p.current.Store(empty())
	return p
}

// Current returns the latest snapshot. It is never nil.
func (p *Poller) Current() *Snapshot {
	return p.current.Load()
}

// Run polls immediately and then every interval until ctx is done. Polls
// never overlap.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	_, _ = p.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, _ = p.Refresh(ctx)
		}
	}
}

// Refresh polls now, or joins a poll already in flight. The poll outlives a
// cancelled caller so other waiters still get a result.
func (p *Poller) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := p.group.Do(pollKey, func() (any, error) {
		pollCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		return p.poll(pollCtx), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Subscribe registers fn to receive every new snapshot. fn runs on the poll
// goroutine and must not block. The returned func unsubscribes.
func (p *Poller) Subscribe(fn func(*Snapshot)) func() {
	p.subMu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	p.metrics.SetSubscribers(len(p.subscribers))
	p.subMu.Unlock()

	return func() {
		p.subMu.Lock()
		delete(p.subscribers, id)
		p.metrics.SetSubscribers(len(p.subscribers))
		p.subMu.Unlock()
	}
}

func (p *Poller) poll(ctx context.Context) *Snapshot {
	start := p.now()
	prev := p.Current()

	var (
		g        errgroup.Group
		bundle   *region.Bundle
		stats    *backend.Stats
		logs     []backend.UploadLog
		errs     [3]error
		resource = [3]Resource{ResourceMapData, ResourceStats, ResourceLogs}
	)
	g.Go(func() error {
		bundle, errs[0] = p.source.MapData(ctx)
		return nil
	})
	g.Go(func() error {
		stats, errs[1] = p.source.Stats(ctx)
		return nil
	})
	g.Go(func() error {
		logs, errs[2] = p.source.Logs(ctx)
		return nil
	})
	_ = g.Wait()

	next := &Snapshot{
		Seq:       prev.Seq + 1,
		Bundle:    prev.Bundle,
		Stats:     prev.Stats,
		Logs:      prev.Logs,
		PolledAt:  start,
		Refreshed: make(map[Resource]time.Time, len(prev.Refreshed)),
		Notices:   []Notice{},
	}
	for k, v := range prev.Refreshed {
		next.Refreshed[k] = v
	}

	for i, err := range errs {
		ok := err == nil
		p.metrics.ObserveFetch(string(resource[i]), ok, start)
		if ok {
			next.Refreshed[resource[i]] = start
			continue
		}
		next.Notices = append(next.Notices, Notice{
			Resource: resource[i],
			Key:      NoticeBackendUnavailable,
			Detail:   backend.Detail(err),
		})
		p.logger.WarnContext(ctx, "snapshot resource refresh failed, keeping last known value",
			"resource", resource[i],
			"error", err,
		)
	}
	if errs[0] == nil && bundle != nil {
		next.Bundle = bundle
	}
	if errs[1] == nil && stats != nil {
		next.Stats = stats
	}
	if errs[2] == nil && logs != nil {
		next.Logs = logs
	}

	p.current.Store(next)
	p.metrics.ObservePoll(p.now().Sub(start))
	p.publish(next)
	return next
}

func (p *Poller) publish(s *Snapshot) {
	p.subMu.Lock()
	fns := make([]func(*Snapshot), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		fns = append(fns, fn)
	}
	p.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
