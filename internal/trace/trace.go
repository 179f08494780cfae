// Package trace opens opentracing spans around proxy operations.
package trace

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"
	"github.com/smnsjas/go-uaproxy/ua"
)

// Component is the value of the component tag on every span.
const Component = "go-uaproxy"

var (
	successEvent  = log.String("event", "success")
	errorEvent    = log.String("event", "error")
	notFoundEvent = log.String("event", "not-found")
)

// ChildOf starts a span with a child-of relationship to the span in ctx, if
// any. The parent's tracer wins over tracer; a nil tracer means the global
// tracer.
func ChildOf(ctx context.Context, tracer opentracing.Tracer, operation string) (opentracing.Span, context.Context) {
	var opts []opentracing.StartSpanOption
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
		tracer = parent.Tracer()
	}
	if tracer == nil {
		tracer = opentracing.GlobalTracer()
	}

	span := tracer.StartSpan(operation, opts...)
	ext.Component.Set(span, Component)
	ext.SpanKindRPCClient.Set(span)

	return span, opentracing.ContextWithSpan(ctx, span)
}

// SetupAttribute configures s as an attribute read or write span.
func SetupAttribute(s opentracing.Span, op string, node ua.NodeID, attr ua.AttributeID) {
	s.SetOperationName(op + " " + attr.String())

	s.SetTag("subsystem", "attribute")
	s.SetTag("node_id", node.String())
	s.SetTag("attribute", attr.String())
}

// SetupResolve configures s as a member resolution span.
func SetupResolve(s opentracing.Span, parent ua.NodeID, namespaceURI, browseName string) {
	s.SetOperationName("resolve " + browseName)

	s.SetTag("subsystem", "resolver")
	s.SetTag("node_id", parent.String())
	s.SetTag("namespace", namespaceURI)
	s.SetTag("browse_name", browseName)
}

// LogSuccess logs a successful completion to s.
func LogSuccess(s opentracing.Span) {
	s.LogFields(successEvent)
}

// LogNotFound logs a resolution that found no member.
func LogNotFound(s opentracing.Span) {
	s.LogFields(notFoundEvent)
}

// LogError marks s as failed and logs err with its status code.
func LogError(s opentracing.Span, err error) {
	ext.Error.Set(s, true)

	se := ua.Translate(err)
	s.LogFields(
		errorEvent,
		log.String("error.kind", se.Code.String()),
		log.String("message", err.Error()),
	)
}

// Finish logs the outcome of an operation and finishes s.
func Finish(s opentracing.Span, err error) {
	if err != nil {
		LogError(s, err)
	} else {
		LogSuccess(s)
	}
	s.Finish()
}
