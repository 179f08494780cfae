package uaproxy

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smnsjas/go-uaproxy/catalog"
	"github.com/smnsjas/go-uaproxy/metrics"
	"github.com/smnsjas/go-uaproxy/model"
	"github.com/smnsjas/go-uaproxy/node"
	"github.com/smnsjas/go-uaproxy/session/memsession"
	"github.com/smnsjas/go-uaproxy/ua"
)

type bufferLogger struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *bufferLogger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.WriteString(format)
	l.buf.WriteByte('\n')
}

func (l *bufferLogger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Len()
}

func TestClient_NodeIsShared(t *testing.T) {
	c := NewClient(memsession.Standard())

	const callers = 16
	var wg sync.WaitGroup
	got := make([]*node.Proxy, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = c.Server()
		}(i)
	}
	wg.Wait()

	for i := range got {
		if got[i] != got[0] {
			t.Fatalf("caller %d got a different proxy", i)
		}
	}
	if c.ObjectsFolder() == c.Server() {
		t.Error("distinct ids must yield distinct proxies")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestClient_NodeKeysByIdentity(t *testing.T) {
	c := NewClient(memsession.Standard())

	a := ua.NewStringNodeID(0, "a").WithNamespaceURI("urn:x;s=b")
	b := ua.NewStringNodeID(0, "b;s=a").WithNamespaceURI("urn:x")
	if a.String() != b.String() {
		t.Fatalf("ids must format alike: %s, %s", a, b)
	}

	pa, pb := c.Node(a), c.Node(b)
	if pa == pb {
		t.Fatal("distinct ids must not share a proxy")
	}
	if pa.ID() != a || pb.ID() != b {
		t.Errorf("proxies carry %v, %v", pa.ID(), pb.ID())
	}
	if c.Node(b) != pb {
		t.Error("repeated lookup must return the same proxy")
	}
}

func TestClient_SharedCache(t *testing.T) {
	s := memsession.Standard()
	c := NewClient(s)
	ctx := context.Background()

	if _, err := node.Read(ctx, c.Server(), model.ServerServiceLevel); err != nil {
		t.Fatal(err)
	}
	level, err := node.Get(ctx, c.Node(ua.Server), model.ServerServiceLevel)
	if err != nil || level != 255 {
		t.Errorf("Get through a second lookup = %d, %v", level, err)
	}
}

func TestClient_Typed(t *testing.T) {
	c := NewClient(memsession.Standard())
	ctx := context.Background()

	server, err := c.Typed(ua.Server, "ServerType")
	if err != nil {
		t.Fatal(err)
	}
	v, err := server.ReadDynamic(ctx, "ServiceLevel")
	if err != nil || v != byte(255) {
		t.Errorf("ReadDynamic = %v, %v", v, err)
	}

	_, err = c.Typed(ua.Server, "NoSuchType")
	if !errors.Is(err, catalog.ErrUnknownTable) || ua.Code(err) != ua.StatusBadNotFound {
		t.Errorf("unexpected error %v", err)
	}
}

func TestClient_Options(t *testing.T) {
	logger := &bufferLogger{}
	tracer := mocktracer.New()
	collector := metrics.New()
	reg := prometheus.NewRegistry()
	if err := collector.Register(reg); err != nil {
		t.Fatal(err)
	}

	c := NewClient(memsession.Standard(),
		WithLogger(logger),
		WithTracer(tracer),
		WithMetrics(collector),
		WithCatalog(catalog.Standard()),
	)
	if _, err := node.Read(context.Background(), c.Server(), model.ServerAuditing); err != nil {
		t.Fatal(err)
	}

	if logger.Len() == 0 {
		t.Error("expected log output")
	}
	if len(tracer.FinishedSpans()) < 2 {
		t.Errorf("expected resolve and read spans, got %d", len(tracer.FinishedSpans()))
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) == 0 {
		t.Error("expected gathered metrics")
	}
}

type closingSession struct {
	*memsession.Session
	closed bool
}

func (s *closingSession) Close() error {
	s.closed = true
	return nil
}

func TestClient_Close(t *testing.T) {
	s := &closingSession{Session: memsession.Standard()}
	if err := NewClient(s).Close(); err != nil {
		t.Fatal(err)
	}
	if !s.closed {
		t.Error("Close must close a closable session")
	}
	if err := NewClient(memsession.Standard()).Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}
