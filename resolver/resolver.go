// Package resolver memoises the resolution of named children of one parent
// node.
//
// Each parent owns one Resolver. The first lookup of a member browses the
// session; every later lookup of the same member, including lookups that
// arrive while the browse is still running, shares the same result:
//
//	r := resolver.New(sess, parent, factory)
//	f := r.ResolveAsync(ctx, resolver.MemberKey{
//	    NamespaceURI:  ua.NamespaceURI,
//	    BrowseName:    "ServerStatus",
//	    ReferenceType: ua.HasComponent,
//	})
//
// # Caching Rules
//
// Members are identified by namespace URI and browse name. A member that does
// not exist is remembered as absent and never browsed again. A failed browse
// is forgotten before its failure is reported, so the next lookup browses
// again. Entries are never evicted.
//
// # Type Checks
//
// When a key carries an ExpectedType and the resolver has a TypeChecker, a
// member whose type definition is not a subtype of the expectation fails that
// lookup with Bad_TypeMismatch. The check runs per lookup; the cached entry is
// unaffected.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/smnsjas/go-uaproxy/future"
	"github.com/smnsjas/go-uaproxy/internal/logx"
	"github.com/smnsjas/go-uaproxy/internal/trace"
	"github.com/smnsjas/go-uaproxy/metrics"
	"github.com/smnsjas/go-uaproxy/session"
	"github.com/smnsjas/go-uaproxy/ua"
	"github.com/zhangyunhao116/skipmap"
)

// ErrEmptyBrowseName is returned for a key without a browse name.
var ErrEmptyBrowseName = errors.New("empty browse name")

// MemberKey names a child of the parent.
type MemberKey struct {
	// NamespaceURI qualifies BrowseName. Empty matches any namespace.
	NamespaceURI string
	BrowseName   string
	// ExpectedType is the type definition the member must have, or the null
	// id for no check.
	ExpectedType ua.NodeID
	// ReferenceType is the reference followed from the parent, or the null
	// id for any hierarchical reference.
	ReferenceType ua.NodeID
}

func (k MemberKey) String() string {
	if k.NamespaceURI == "" {
		return k.BrowseName
	}
	return k.NamespaceURI + ":" + k.BrowseName
}

// cacheKey is the identity of a member in the cache.
type cacheKey struct {
	namespaceURI string
	browseName   string
}

func lessKey(a, b cacheKey) bool {
	if c := strings.Compare(a.namespaceURI, b.namespaceURI); c != 0 {
		return c < 0
	}
	return a.browseName < b.browseName
}

// Member is the outcome of a resolution.
type Member[N any] struct {
	// Node is the member, the zero N when not found.
	Node  N
	Found bool
	// Reference is the browse result the node was built from.
	Reference session.Reference
}

// Factory builds a member node from the reference returned by the browse.
type Factory[N any] func(ref session.Reference) (N, error)

// TypeChecker answers subtype queries between type definitions.
type TypeChecker interface {
	IsSubtype(actual, expected ua.NodeID) bool
}

// Resolver resolves and caches the members of one parent node. It is safe
// for concurrent use.
type Resolver[N any] struct {
	session session.Session
	parent  ua.NodeID
	factory Factory[N]
	checker TypeChecker
	cache   *skipmap.FuncMap[cacheKey, *future.Future[Member[N]]]

	log     *logx.Sink
	metrics *metrics.Collector
	tracer  opentracing.Tracer
}

// Option configures a Resolver.
type Option func(*config)

type config struct {
	checker TypeChecker
	logger  logx.Logger
	slog    *slog.Logger
	metrics *metrics.Collector
	tracer  opentracing.Tracer
}

// WithTypeChecker enables ExpectedType checks.
func WithTypeChecker(c TypeChecker) Option {
	return func(cfg *config) { cfg.checker = c }
}

// WithLogger enables debug logging through a Printf-style logger.
func WithLogger(l logx.Logger) Option {
	return func(cfg *config) { cfg.logger = l }
}

// WithSlogLogger enables debug logging through slog.
func WithSlogLogger(l *slog.Logger) Option {
	return func(cfg *config) { cfg.slog = l }
}

// WithMetrics records lookups and browses in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(cfg *config) { cfg.metrics = c }
}

// WithTracer opens browse spans with t instead of the global tracer.
func WithTracer(t opentracing.Tracer) Option {
	return func(cfg *config) { cfg.tracer = t }
}

// New returns a resolver for the children of parent.
func New[N any](s session.Session, parent ua.NodeID, factory Factory[N], opts ...Option) *Resolver[N] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Resolver[N]{
		session: s,
		parent:  parent,
		factory: factory,
		checker: cfg.checker,
		cache:   skipmap.NewFunc[cacheKey, *future.Future[Member[N]]](lessKey),
		log:     logx.New(cfg.logger, cfg.slog),
		metrics: cfg.metrics,
		tracer:  cfg.tracer,
	}
}

// Parent returns the node whose members are resolved.
func (r *Resolver[N]) Parent() ua.NodeID {
	return r.parent
}

// LookupAsync returns the shared resolution of key. The browse keeps the
// values of the caller that started it but not its cancellation, so one
// caller giving up does not fail the others; each caller bounds its own wait.
func (r *Resolver[N]) LookupAsync(ctx context.Context, key MemberKey) *future.Future[Member[N]] {
	if key.BrowseName == "" {
		return future.Failed[Member[N]](ua.WrapStatus(ua.StatusBadBrowseNameInvalid, ErrEmptyBrowseName))
	}

	ck := cacheKey{namespaceURI: key.NamespaceURI, browseName: key.BrowseName}
	f, loaded := r.cache.LoadOrStoreLazy(ck, future.New[Member[N]])
	r.metrics.ResolverLookup(loaded)
	if loaded {
		return f
	}

	go r.browse(context.WithoutCancel(ctx), ck, key, f)
	return f
}

// ResolveAsync resolves key to its node, the zero N when the member does not
// exist.
func (r *Resolver[N]) ResolveAsync(ctx context.Context, key MemberKey) *future.Future[N] {
	return future.Then(r.LookupAsync(ctx, key), func(m Member[N]) (N, error) {
		if err := r.check(key, m); err != nil {
			var zero N
			return zero, err
		}
		return m.Node, nil
	})
}

// Resolve is the blocking form of ResolveAsync.
func (r *Resolver[N]) Resolve(ctx context.Context, key MemberKey) (N, error) {
	return future.Block(ctx, r.ResolveAsync(ctx, key))
}

// Resolved returns the completed resolution of key, if any. Pending and
// failed resolutions report false.
func (r *Resolver[N]) Resolved(key MemberKey) (Member[N], bool) {
	f, ok := r.cache.Load(cacheKey{namespaceURI: key.NamespaceURI, browseName: key.BrowseName})
	if !ok || !f.IsDone() {
		return Member[N]{}, false
	}
	m, err := f.Wait()
	if err != nil {
		return Member[N]{}, false
	}
	return m, true
}

// Len returns the number of cached entries, pending ones included.
func (r *Resolver[N]) Len() int {
	return r.cache.Len()
}

// Range calls fn for every completed member in browse name order until fn
// returns false.
func (r *Resolver[N]) Range(fn func(key MemberKey, m Member[N]) bool) {
	r.cache.Range(func(ck cacheKey, f *future.Future[Member[N]]) bool {
		if !f.IsDone() {
			return true
		}
		m, err := f.Wait()
		if err != nil {
			return true
		}
		return fn(MemberKey{NamespaceURI: ck.namespaceURI, BrowseName: ck.browseName}, m)
	})
}

func (r *Resolver[N]) browse(ctx context.Context, ck cacheKey, key MemberKey, f *future.Future[Member[N]]) {
	span, ctx := trace.ChildOf(ctx, r.tracer, "")
	trace.SetupResolve(span, r.parent, key.NamespaceURI, key.BrowseName)

	m, err := r.browseMember(ctx, key)
	switch {
	case err != nil:
		r.metrics.ResolverBrowse(metrics.BrowseError)
		r.log.Logf(r.parent, "resolve %s failed: %v", key, err)
		trace.Finish(span, err)
		r.cache.Delete(ck)
		f.Fail(err)
	case !m.Found:
		r.metrics.ResolverBrowse(metrics.BrowseNotFound)
		r.log.Logf(r.parent, "resolve %s: not found", key)
		trace.LogNotFound(span)
		span.Finish()
		f.Complete(m)
	default:
		r.metrics.ResolverBrowse(metrics.BrowseFound)
		r.log.Logf(r.parent, "resolve %s: %s", key, m.Reference.NodeID)
		trace.Finish(span, nil)
		f.Complete(m)
	}
}

func (r *Resolver[N]) browseMember(ctx context.Context, key MemberKey) (m Member[N], err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", future.ErrPanic, p)
		}
	}()

	ref, found, err := r.session.BrowseChild(ctx, r.parent, key.NamespaceURI, key.BrowseName, key.ReferenceType)
	if errors.Is(err, session.ErrNotFound) {
		return Member[N]{}, nil
	}
	if err != nil {
		return Member[N]{}, fmt.Errorf("browse %s of %s: %w", key, r.parent, err)
	}
	if !found {
		return Member[N]{}, nil
	}

	node, err := r.factory(ref)
	if err != nil {
		return Member[N]{}, fmt.Errorf("build member %s of %s: %w", key, r.parent, err)
	}
	return Member[N]{Node: node, Found: true, Reference: ref}, nil
}

func (r *Resolver[N]) check(key MemberKey, m Member[N]) error {
	if !m.Found || key.ExpectedType.IsNull() || r.checker == nil {
		return nil
	}
	if r.checker.IsSubtype(m.Reference.TypeDefinition, key.ExpectedType) {
		return nil
	}
	return ua.NewStatusError(ua.StatusBadTypeMismatch,
		fmt.Sprintf("member %s of %s has type %s, want %s", key, r.parent, m.Reference.TypeDefinition, key.ExpectedType))
}
