package sitemap

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/masoudtahsiri/sitemap-extractor/infrastructure/logger"
)

// Default resolution bounds.
const (
	DefaultMaxSitemaps  = 50
	DefaultMaxDepth     = 3
	DefaultConcurrency  = 1
	DefaultFetchTimeout = 10 * time.Second
)

// Limits bounds one resolution run.
type Limits struct {
	// MaxSitemaps caps the distinct sitemap documents fetched per run,
	// across all branches.
	MaxSitemaps int
	// MaxDepth is the deepest index nesting followed; the root is depth 0,
	// so MaxDepth 0 fetches the root only.
	MaxDepth int
	// Concurrency caps in-flight fetches. 1 fetches depth-first in
	// document order. Above 1, the children of each index are claimed in
	// document order before any of them is fetched, so truncation of a
	// single index matches the sequential walk; across nested indexes the
	// claim order of different subtrees may interleave.
	Concurrency  int
	FetchTimeout time.Duration
}

// DefaultLimits returns 50 sitemaps, depth 3, sequential fetching and a
// 10s fetch timeout.
func DefaultLimits() Limits {
	return Limits{
		MaxSitemaps:  DefaultMaxSitemaps,
		MaxDepth:     DefaultMaxDepth,
		Concurrency:  DefaultConcurrency,
		FetchTimeout: DefaultFetchTimeout,
	}
}

// normalized replaces out-of-range fields with their defaults. MaxDepth
// only falls back when negative.
func (l Limits) normalized() Limits {
	if l.MaxSitemaps <= 0 {
		l.MaxSitemaps = DefaultMaxSitemaps
	}
	if l.MaxDepth < 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.Concurrency <= 0 {
		l.Concurrency = DefaultConcurrency
	}
	if l.FetchTimeout <= 0 {
		l.FetchTimeout = DefaultFetchTimeout
	}
	return l
}

// Branch is the outcome of fetching one sitemap document. A failed branch
// has Err set and contributes no URLs.
type Branch struct {
	URL      string
	Depth    int
	Kind     Kind
	Children int // sitemap locs listed, for an index
	Entries  int // page locs listed, for a leaf
	Added    int // page URLs not already collected
	Duration time.Duration
	Err      error
}

// Result is the outcome of a resolution run.
type Result struct {
	// URLs holds the distinct page URLs in ascending order. Never nil.
	URLs []string
	// Branches is ordered by depth, then URL.
	Branches []Branch
	Visited  int
	Skipped  map[SkipReason]int
}

// Failed returns the branches that contributed nothing because of an error.
func (r *Result) Failed() []Branch {
	var out []Branch
	for _, b := range r.Branches {
		if b.Err != nil {
			out = append(out, b)
		}
	}
	return out
}

// Resolver expands a root sitemap into its page URLs. It holds no state
// between calls and is safe for concurrent use.
type Resolver struct {
	fetcher Fetcher
	log     logger.Logger
	limits  Limits
	metrics *Metrics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLimits sets the resolution bounds.
func WithLimits(l Limits) Option {
	return func(r *Resolver) { r.limits = l.normalized() }
}

// WithMetrics records fetch and resolution metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver creates a Resolver using DefaultLimits unless overridden.
func NewResolver(fetcher Fetcher, log logger.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = logger.NewNop()
	}

	r := &Resolver{
		fetcher: fetcher,
		log:     log,
		limits:  DefaultLimits(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Limits returns the bounds in effect.
func (r *Resolver) Limits() Limits {
	return r.limits
}

// Resolve fetches rootURL and every sitemap it reaches within the limits and
// returns the page URLs found. Fetch and parse failures only shorten the
// result. An error is returned when ctx ends before the run completes or
// when a branch fails internally (ErrInternal); the partial result is
// returned alongside it.
func (r *Resolver) Resolve(ctx context.Context, rootURL string) (*Result, error) {
	start := time.Now()
	ctx, runLog := logger.WithRunID(ctx, r.log, uuid.NewString())
	rn := &run{
		Resolver: r,
		log:      runLog.With(logger.String("root_url", rootURL)),
		visited:  NewVisitedSet(r.limits.MaxSitemaps),
		pages:    NewAccumulator(),
		sem:      semaphore.NewWeighted(int64(r.limits.Concurrency)),
		skipped:  make(map[SkipReason]int),
	}

	rn.log.Info("Sitemap resolution started",
		logger.Int("max_sitemaps", r.limits.MaxSitemaps),
		logger.Int("max_depth", r.limits.MaxDepth),
		logger.Int("concurrency", r.limits.Concurrency),
	)

	err := rn.visit(ctx, rootURL, 0)
	res := rn.result()
	took := time.Since(start)

	fields := []logger.Field{
		logger.Int("visited", res.Visited),
		logger.Int("failed", len(res.Failed())),
		logger.Int("url_count", len(res.URLs)),
		logger.Duration("duration", took),
	}

	switch {
	case err == nil:
		outcome := outcomeOK
		if len(res.URLs) == 0 {
			outcome = outcomeEmpty
		}
		r.metrics.resolved(outcome, took, len(res.URLs))
		rn.log.Info("Sitemap resolution finished", fields...)
		return res, nil
	case errors.Is(err, ErrInternal):
		r.metrics.resolved(outcomeError, took, len(res.URLs))
		rn.log.Error("Sitemap resolution failed", append(fields, logger.Error(err))...)
		return res, err
	default:
		r.metrics.resolved(outcomeCanceled, took, len(res.URLs))
		rn.log.Warn("Sitemap resolution aborted", append(fields, logger.Error(err))...)
		return res, fmt.Errorf("resolve %s: %w", rootURL, err)
	}
}

// run is the state of one Resolve call. Nothing in it outlives the call.
type run struct {
	*Resolver

	log     logger.Logger
	visited *VisitedSet
	pages   *Accumulator
	sem     *semaphore.Weighted

	mu       sync.Mutex
	branches []Branch
	skipped  map[SkipReason]int
}

// visit claims url and expands it. Only context and internal errors are
// returned; every other failure is recorded on the branch.
func (rn *run) visit(ctx context.Context, url string, depth int) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if !rn.claim(url, depth) {
		return nil
	}
	return rn.process(ctx, url, depth)
}

// claim reserves a visit slot for url at depth, recording a skip when the
// depth or the visited set refuses it.
func (rn *run) claim(url string, depth int) bool {
	if depth > rn.limits.MaxDepth {
		rn.skip(url, depth, SkipMaxDepth)
		return false
	}
	if ok, reason := rn.visited.TryVisit(url); !ok {
		rn.skip(url, depth, reason)
		return false
	}
	return true
}

// process fetches an already claimed url and expands it.
func (rn *run) process(ctx context.Context, url string, depth int) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic resolving %s: %v", ErrInternal, url, p)
		}
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	start := time.Now()
	doc, fetchErr := rn.fetchDocument(ctx, url)
	branch := Branch{URL: url, Depth: depth, Duration: time.Since(start)}

	if fetchErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		branch.Err = fetchErr
		rn.record(branch)
		rn.logFailure(branch)
		return nil
	}

	branch.Kind = doc.Kind
	if doc.Kind == KindLeaf {
		branch.Entries = len(doc.Pages)
		branch.Added = rn.pages.Add(doc.Pages...)
		rn.record(branch)
		rn.log.Debug("Sitemap collected",
			logger.String("url", url),
			logger.Int("depth", depth),
			logger.Int("entries", branch.Entries),
			logger.Int("added", branch.Added),
		)
		return nil
	}

	branch.Children = len(doc.Sitemaps)
	rn.record(branch)
	rn.log.Debug("Sitemap index expanding",
		logger.String("url", url),
		logger.Int("depth", depth),
		logger.Int("children", branch.Children),
	)

	return rn.expand(ctx, doc.Sitemaps, depth+1)
}

// expand visits the children of an index. With a concurrency of one it
// walks them depth-first on the calling goroutine. Otherwise it claims
// them in document order first and starts goroutines only for claimed
// children, at most Concurrency at a time per index.
func (rn *run) expand(ctx context.Context, children []string, depth int) error {
	if rn.limits.Concurrency == 1 {
		for _, child := range children {
			if err := rn.visit(ctx, child, depth); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rn.limits.Concurrency)

	for _, child := range children {
		if gctx.Err() != nil {
			break
		}
		if !rn.claim(child, depth) {
			continue
		}
		g.Go(func() error {
			return rn.process(gctx, child, depth)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// fetchDocument fetches and parses url. Failures come back as *FetchError
// unless ctx itself has ended.
func (rn *run) fetchDocument(ctx context.Context, url string) (*Document, error) {
	resp, err := rn.fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = ClassifyNetworkError(err, url)
		}
		rn.metrics.fetched(string(ErrorTypeOf(err)))
		return nil, err
	}

	doc, err := ParseDocument(resp.Body)
	if err != nil {
		rn.metrics.fetched(string(ErrTypeParse))
		return nil, ClassifyParseError(err, url)
	}

	rn.metrics.fetched(outcomeOK)
	return doc, nil
}

// fetch holds one semaphore slot for the duration of a single request,
// never across recursion.
func (rn *run) fetch(ctx context.Context, url string) (*FetchResponse, error) {
	if err := rn.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer rn.sem.Release(1)

	fctx, cancel := context.WithTimeout(ctx, rn.limits.FetchTimeout)
	defer cancel()

	return rn.fetcher.Fetch(fctx, url)
}

func (rn *run) record(b Branch) {
	rn.mu.Lock()
	rn.branches = append(rn.branches, b)
	rn.mu.Unlock()
}

func (rn *run) skip(url string, depth int, reason SkipReason) {
	rn.mu.Lock()
	rn.skipped[reason]++
	rn.mu.Unlock()

	rn.metrics.skipped(reason)
	rn.log.Debug("Sitemap skipped",
		logger.String("url", url),
		logger.Int("depth", depth),
		logger.String("reason", string(reason)),
	)
}

func (rn *run) logFailure(b Branch) {
	fields := []logger.Field{
		logger.String("url", b.URL),
		logger.Int("depth", b.Depth),
		logger.Error(b.Err),
	}

	var fe *FetchError
	if errors.As(b.Err, &fe) {
		fields = append(fields, logger.String("error_type", string(fe.Type)))
		if fe.StatusCode > 0 {
			fields = append(fields, logger.Int("status_code", fe.StatusCode))
		}
		if fe.Level == LevelError {
			rn.log.Error("Sitemap branch failed", fields...)
			return
		}
	}

	rn.log.Warn("Sitemap branch failed", fields...)
}

func (rn *run) result() *Result {
	rn.mu.Lock()
	branches := slices.Clone(rn.branches)
	skipped := make(map[SkipReason]int, len(rn.skipped))
	for k, v := range rn.skipped {
		skipped[k] = v
	}
	rn.mu.Unlock()

	slices.SortFunc(branches, func(a, b Branch) int {
		if a.Depth != b.Depth {
			return a.Depth - b.Depth
		}
		return strings.Compare(a.URL, b.URL)
	})

	return &Result{
		URLs:     rn.pages.Sorted(),
		Branches: branches,
		Visited:  rn.visited.Len(),
		Skipped:  skipped,
	}
}
