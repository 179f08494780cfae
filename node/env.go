package node

import (
	"log/slog"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/smnsjas/go-uaproxy/attribute"
	"github.com/smnsjas/go-uaproxy/catalog"
	"github.com/smnsjas/go-uaproxy/codec"
	"github.com/smnsjas/go-uaproxy/internal/logx"
	"github.com/smnsjas/go-uaproxy/metrics"
	"github.com/smnsjas/go-uaproxy/resolver"
	"github.com/smnsjas/go-uaproxy/session"
)

// Env is the environment shared by every proxy of one session: the session,
// the attribute accessor and the descriptor catalog.
type Env struct {
	session  session.Session
	accessor *attribute.Accessor
	catalog  *catalog.Catalog

	resolverOpts []resolver.Option
}

// Option configures an Env.
type Option func(*envConfig)

type envConfig struct {
	catalog *catalog.Catalog
	logger  logx.Logger
	slog    *slog.Logger
	metrics *metrics.Collector
	tracer  opentracing.Tracer
}

// WithCatalog sets the descriptor catalog used for typed access and member
// type checks. The default is catalog.Standard().
func WithCatalog(c *catalog.Catalog) Option {
	return func(cfg *envConfig) { cfg.catalog = c }
}

// WithLogger enables debug logging through a Printf-style logger.
func WithLogger(l logx.Logger) Option {
	return func(cfg *envConfig) { cfg.logger = l }
}

// WithSlogLogger enables debug logging through slog.
func WithSlogLogger(l *slog.Logger) Option {
	return func(cfg *envConfig) { cfg.slog = l }
}

// WithMetrics records resolution and attribute metrics in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(cfg *envConfig) { cfg.metrics = c }
}

// WithTracer opens spans with t instead of the global tracer.
func WithTracer(t opentracing.Tracer) Option {
	return func(cfg *envConfig) { cfg.tracer = t }
}

// NewEnv returns the proxy environment of s.
func NewEnv(s session.Session, opts ...Option) *Env {
	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.catalog == nil {
		cfg.catalog = catalog.Standard()
	}

	accessorOpts := []attribute.Option{
		attribute.WithMetrics(cfg.metrics),
		attribute.WithTracer(cfg.tracer),
	}
	resolverOpts := []resolver.Option{
		resolver.WithTypeChecker(cfg.catalog),
		resolver.WithMetrics(cfg.metrics),
		resolver.WithTracer(cfg.tracer),
	}
	if cfg.logger != nil {
		accessorOpts = append(accessorOpts, attribute.WithLogger(cfg.logger))
		resolverOpts = append(resolverOpts, resolver.WithLogger(cfg.logger))
	}
	if cfg.slog != nil {
		accessorOpts = append(accessorOpts, attribute.WithSlogLogger(cfg.slog))
		resolverOpts = append(resolverOpts, resolver.WithSlogLogger(cfg.slog))
	}

	return &Env{
		session:      s,
		accessor:     attribute.New(s, accessorOpts...),
		catalog:      cfg.catalog,
		resolverOpts: resolverOpts,
	}
}

// Session returns the session of the environment.
func (e *Env) Session() session.Session { return e.session }

// Accessor returns the attribute accessor.
func (e *Env) Accessor() *attribute.Accessor { return e.accessor }

// Catalog returns the descriptor catalog.
func (e *Env) Catalog() *catalog.Catalog { return e.catalog }

// Serialization returns the structure registry of the session.
func (e *Env) Serialization() *codec.Context { return e.session.SerializationContext() }
