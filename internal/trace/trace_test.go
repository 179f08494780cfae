package trace

import (
	"context"
	"errors"
	"testing"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/smnsjas/go-uaproxy/ua"
)

func TestChildOf_UsesParentTracer(t *testing.T) {
	tracer := mocktracer.New()
	parent := tracer.StartSpan("parent")
	ctx := opentracing.ContextWithSpan(context.Background(), parent)

	span, ctx := ChildOf(ctx, nil, "child")
	if opentracing.SpanFromContext(ctx) != span {
		t.Error("returned context must carry the new span")
	}
	span.Finish()

	finished := tracer.FinishedSpans()
	if len(finished) != 1 {
		t.Fatalf("expected 1 finished span, got %d", len(finished))
	}
	child := finished[0]
	if child.ParentID != parent.(*mocktracer.MockSpan).SpanContext.SpanID {
		t.Error("span is not a child of the context span")
	}
	if child.Tag("component") != Component {
		t.Errorf("component tag = %v", child.Tag("component"))
	}
}

func TestSetupAttribute(t *testing.T) {
	tracer := mocktracer.New()
	span, _ := ChildOf(context.Background(), tracer, "")

	SetupAttribute(span, "read", ua.Server, ua.AttributeValue)
	Finish(span, nil)

	s := tracer.FinishedSpans()[0]
	if s.OperationName != "read Value" {
		t.Errorf("operation = %q", s.OperationName)
	}
	tests := []struct {
		key  string
		want string
	}{
		{"subsystem", "attribute"},
		{"node_id", "i=2253"},
		{"attribute", "Value"},
	}
	for _, tt := range tests {
		if got := s.Tag(tt.key); got != tt.want {
			t.Errorf("tag %s = %v, want %s", tt.key, got, tt.want)
		}
	}
	if s.Tag("error") != nil {
		t.Error("successful span must not carry the error tag")
	}
}

func TestFinish_Error(t *testing.T) {
	tracer := mocktracer.New()
	span, _ := ChildOf(context.Background(), tracer, "")
	SetupResolve(span, ua.Server, ua.NamespaceURI, "ServerStatus")

	Finish(span, ua.NewStatusError(ua.StatusBadNotReadable, "denied"))

	s := tracer.FinishedSpans()[0]
	if s.Tag("error") != true {
		t.Error("expected error tag")
	}
	fields := map[string]string{}
	for _, rec := range s.Logs() {
		for _, f := range rec.Fields {
			fields[f.Key] = f.ValueString
		}
	}
	if fields["event"] != "error" {
		t.Errorf("event = %q", fields["event"])
	}
	if fields["error.kind"] != "Bad_NotReadable" {
		t.Errorf("error.kind = %q", fields["error.kind"])
	}
}

func TestLogError_ExecutionFault(t *testing.T) {
	tracer := mocktracer.New()
	span, _ := ChildOf(context.Background(), tracer, "op")
	LogError(span, errors.New("boom"))
	span.Finish()

	s := tracer.FinishedSpans()[0]
	var kind string
	for _, rec := range s.Logs() {
		for _, f := range rec.Fields {
			if f.Key == "error.kind" {
				kind = f.ValueString
			}
		}
	}
	if kind != "Bad_UnexpectedError" {
		t.Errorf("error.kind = %q", kind)
	}
}
