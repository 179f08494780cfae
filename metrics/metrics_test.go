package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smnsjas/go-uaproxy/ua"
)

// counterValue returns the value of the counter in family name whose labels
// match want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if v, ok := want[lp.GetName()]; ok && v != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCollector_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New()
	if err := c.Register(reg); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	c.ResolverLookup(true)
	c.ResolverLookup(true)
	c.ResolverLookup(false)
	c.ResolverBrowse(BrowseFound)
	c.ResolverBrowse(BrowseNotFound)
	c.AttributeOp("read", nil, 5*time.Millisecond)
	c.AttributeOp("read", ua.NewStatusError(ua.StatusBadNotReadable, ""), time.Millisecond)
	c.AttributeOp("write", errors.New("boom"), time.Millisecond)

	tests := []struct {
		name   string
		metric string
		labels map[string]string
		want   float64
	}{
		{"Hits", "uaproxy_resolver_lookups_total", map[string]string{"result": "hit"}, 2},
		{"Misses", "uaproxy_resolver_lookups_total", map[string]string{"result": "miss"}, 1},
		{"BrowseFound", "uaproxy_resolver_browses_total", map[string]string{"result": BrowseFound}, 1},
		{"BrowseError", "uaproxy_resolver_browses_total", map[string]string{"result": BrowseError}, 0},
		{"ReadGood", "uaproxy_attribute_ops_total", map[string]string{"op": "read", "result": "Good"}, 1},
		{"ReadBad", "uaproxy_attribute_ops_total", map[string]string{"op": "read", "result": "Bad_NotReadable"}, 1},
		{"WriteFault", "uaproxy_attribute_ops_total", map[string]string{"op": "write", "result": "Bad_UnexpectedError"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counterValue(t, reg, tt.metric, tt.labels); got != tt.want {
				t.Errorf("%s%v = %v, want %v", tt.metric, tt.labels, got, tt.want)
			}
		})
	}
}

func TestCollector_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New()
	if err := c.Register(reg); err != nil {
		t.Fatal(err)
	}
	if err := c.Register(reg); err == nil {
		t.Error("second registration should fail")
	}
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	c.ResolverLookup(true)
	c.ResolverBrowse(BrowseError)
	c.AttributeOp("read", nil, time.Millisecond)
}
