// Package attribute reads and writes single node attributes through a
// session.
//
// Accessor is stateless apart from its configuration: it never caches. Each
// operation has an asynchronous form returning a *future.Future and a
// blocking form built on future.Block, so blocking callers always receive a
// *ua.StatusError on failure.
//
// # Status Handling
//
// A bad status returned by the session, either as an error or inside the
// DataValue of a read, fails the operation with that status. Uncertain
// values are delivered unchanged.
package attribute

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/smnsjas/go-uaproxy/future"
	"github.com/smnsjas/go-uaproxy/internal/logx"
	"github.com/smnsjas/go-uaproxy/internal/trace"
	"github.com/smnsjas/go-uaproxy/metrics"
	"github.com/smnsjas/go-uaproxy/session"
	"github.com/smnsjas/go-uaproxy/ua"
)

// Accessor performs attribute services for proxies. It is safe for
// concurrent use.
type Accessor struct {
	session session.Session
	log     *logx.Sink
	metrics *metrics.Collector
	tracer  opentracing.Tracer
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithLogger enables debug logging through a Printf-style logger.
func WithLogger(logger logx.Logger) Option {
	return func(a *Accessor) {
		a.log.SetLogger(logger)
	}
}

// WithSlogLogger enables debug logging through slog.
func WithSlogLogger(logger *slog.Logger) Option {
	return func(a *Accessor) {
		a.log.SetSlogLogger(logger)
	}
}

// WithMetrics records every operation in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(a *Accessor) {
		a.metrics = c
	}
}

// WithTracer opens spans with t instead of the global tracer.
func WithTracer(t opentracing.Tracer) Option {
	return func(a *Accessor) {
		a.tracer = t
	}
}

// New returns an Accessor over s.
func New(s session.Session, opts ...Option) *Accessor {
	a := &Accessor{
		session: s,
		log:     logx.New(nil, nil),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Session returns the session the accessor talks through.
func (a *Accessor) Session() session.Session {
	return a.session
}

// ReadAsync reads attr of node.
func (a *Accessor) ReadAsync(ctx context.Context, node ua.NodeID, attr ua.AttributeID) *future.Future[ua.DataValue] {
	return future.Go(func() (ua.DataValue, error) {
		return a.read(ctx, node, attr)
	})
}

// Read is the blocking form of ReadAsync.
func (a *Accessor) Read(ctx context.Context, node ua.NodeID, attr ua.AttributeID) (ua.DataValue, error) {
	return future.Block(ctx, a.ReadAsync(ctx, node, attr))
}

// WriteAsync writes value to attr of node and yields the operation status.
func (a *Accessor) WriteAsync(ctx context.Context, node ua.NodeID, attr ua.AttributeID, value ua.DataValue) *future.Future[ua.StatusCode] {
	return future.Go(func() (ua.StatusCode, error) {
		return a.write(ctx, node, attr, value)
	})
}

// Write is the blocking form of WriteAsync.
func (a *Accessor) Write(ctx context.Context, node ua.NodeID, attr ua.AttributeID, value ua.DataValue) (ua.StatusCode, error) {
	return future.Block(ctx, a.WriteAsync(ctx, node, attr, value))
}

func (a *Accessor) read(ctx context.Context, node ua.NodeID, attr ua.AttributeID) (dv ua.DataValue, err error) {
	span, ctx := trace.ChildOf(ctx, a.tracer, "")
	trace.SetupAttribute(span, "read", node, attr)
	start := time.Now()
	defer func() {
		a.metrics.AttributeOp("read", err, time.Since(start))
		trace.Finish(span, err)
	}()

	if !attr.IsValid() {
		return ua.DataValue{}, ua.NewStatusError(ua.StatusBadAttributeIDInvalid, fmt.Sprintf("attribute %d", uint32(attr)))
	}

	a.log.Logf(node, "read %s", attr)
	dv, err = a.session.Read(ctx, node, attr)
	if err != nil {
		a.log.Logf(node, "read %s failed: %v", attr, err)
		return ua.DataValue{}, fmt.Errorf("read %s of %s: %w", attr, node, err)
	}
	if dv.Status.IsBad() {
		a.log.Logf(node, "read %s returned %s", attr, dv.Status)
		return ua.DataValue{}, ua.NewStatusError(dv.Status, fmt.Sprintf("read %s of %s", attr, node))
	}
	return dv, nil
}

func (a *Accessor) write(ctx context.Context, node ua.NodeID, attr ua.AttributeID, value ua.DataValue) (code ua.StatusCode, err error) {
	span, ctx := trace.ChildOf(ctx, a.tracer, "")
	trace.SetupAttribute(span, "write", node, attr)
	start := time.Now()
	defer func() {
		a.metrics.AttributeOp("write", err, time.Since(start))
		trace.Finish(span, err)
	}()

	if !attr.IsValid() {
		return ua.StatusBadAttributeIDInvalid, ua.NewStatusError(ua.StatusBadAttributeIDInvalid, fmt.Sprintf("attribute %d", uint32(attr)))
	}

	a.log.Logf(node, "write %s = %v", attr, value.Value)
	code, err = a.session.Write(ctx, node, attr, value)
	if err != nil {
		a.log.Logf(node, "write %s failed: %v", attr, err)
		return ua.StatusBadUnexpectedError, fmt.Errorf("write %s of %s: %w", attr, node, err)
	}
	if code.IsBad() {
		a.log.Logf(node, "write %s returned %s", attr, code)
		return code, ua.NewStatusError(code, fmt.Sprintf("write %s of %s", attr, node))
	}
	return code, nil
}
