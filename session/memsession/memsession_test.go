package memsession

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smnsjas/go-uaproxy/codec"
	"github.com/smnsjas/go-uaproxy/objects"
	"github.com/smnsjas/go-uaproxy/ua"
)

func TestSession_BrowseChild(t *testing.T) {
	s := Standard()
	ctx := context.Background()

	tests := []struct {
		name      string
		parent    ua.NodeID
		ns        string
		browse    string
		ref       ua.NodeID
		wantFound bool
		wantID    ua.NodeID
	}{
		{"Property", ua.Server, ua.NamespaceURI, "ServiceLevel", ua.HasProperty, true, ua.StandardNodeID(ua.IDServerServiceLevel)},
		{"Component", ua.Server, ua.NamespaceURI, "ServerStatus", ua.HasComponent, true, ua.StandardNodeID(ua.IDServerServerStatus)},
		{"WrongReference", ua.Server, ua.NamespaceURI, "ServiceLevel", ua.HasComponent, false, ua.NodeID{}},
		{"Aggregates", ua.Server, ua.NamespaceURI, "ServiceLevel", aggregates, true, ua.StandardNodeID(ua.IDServerServiceLevel)},
		{"AnyReference", ua.ObjectsFolder, "", "Server", ua.NodeID{}, true, ua.Server},
		{"WrongNamespace", ua.Server, "urn:other", "ServiceLevel", ua.HasProperty, false, ua.NodeID{}},
		{"Missing", ua.Server, ua.NamespaceURI, "Nope", ua.HasProperty, false, ua.NodeID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, found, err := s.BrowseChild(ctx, tt.parent, tt.ns, tt.browse, tt.ref)
			if err != nil {
				t.Fatalf("BrowseChild failed: %v", err)
			}
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if found && ref.NodeID != tt.wantID {
				t.Errorf("NodeID = %v, want %v", ref.NodeID, tt.wantID)
			}
		})
	}

	_, _, err := s.BrowseChild(ctx, ua.NewNumericNodeID(9, 9), "", "X", ua.NodeID{})
	if !errors.Is(err, ua.StatusBadNodeIDUnknown) {
		t.Errorf("expected Bad_NodeIdUnknown for unknown parent, got %v", err)
	}
}

func TestSession_Read(t *testing.T) {
	s := Standard()
	ctx := context.Background()
	level := ua.StandardNodeID(ua.IDServerServiceLevel)

	dv, err := s.Read(ctx, level, ua.AttributeValue)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got, ok := dv.Value.Value().(uint8); !ok || got != 255 {
		t.Errorf("ServiceLevel = %v", dv.Value)
	}

	dv, _ = s.Read(ctx, level, ua.AttributeBrowseName)
	if q, _ := dv.Value.Value().(ua.QualifiedName); q.Name != "ServiceLevel" {
		t.Errorf("BrowseName = %v", dv.Value)
	}

	tests := []struct {
		name string
		node ua.NodeID
		attr ua.AttributeID
		want ua.StatusCode
	}{
		{"UnknownNode", ua.NewNumericNodeID(4, 4), ua.AttributeValue, ua.StatusBadNodeIDUnknown},
		{"ObjectValue", ua.Server, ua.AttributeValue, ua.StatusBadAttributeIDInvalid},
		{"UnsupportedAttribute", level, ua.AttributeAccessLevelEx, ua.StatusBadAttributeIDInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dv, err := s.Read(ctx, tt.node, tt.attr)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if dv.Status != tt.want {
				t.Errorf("Status = %v, want %v", dv.Status, tt.want)
			}
		})
	}
}

func TestSession_ReadStructure(t *testing.T) {
	s := Standard()
	dv, err := s.Read(context.Background(), ua.StandardNodeID(ua.IDServerServerStatus), ua.AttributeValue)
	if err != nil {
		t.Fatal(err)
	}
	status, err := codec.DecodeStructure[objects.ServerStatusDataType](dv.Value, s.SerializationContext())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if status.State != objects.ServerStateRunning || status.BuildInfo.ProductName != "memsession" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestSession_Write(t *testing.T) {
	s := Standard()
	ctx := context.Background()
	level := ua.StandardNodeID(ua.IDServerServiceLevel)

	tests := []struct {
		name  string
		node  ua.NodeID
		attr  ua.AttributeID
		value any
		want  ua.StatusCode
	}{
		{"Writable", level, ua.AttributeValue, uint8(100), ua.StatusGood},
		{"TypeMismatch", level, ua.AttributeValue, int32(100), ua.StatusBadTypeMismatch},
		{"ReadOnly", ua.StandardNodeID(ua.IDServerAuditing), ua.AttributeValue, true, ua.StatusBadNotWritable},
		{"OtherAttribute", level, ua.AttributeDisplayName, ua.NewLocalizedText("x"), ua.StatusBadNotWritable},
		{"UnknownNode", ua.NewNumericNodeID(4, 4), ua.AttributeValue, true, ua.StatusBadNodeIDUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := s.Write(ctx, tt.node, tt.attr, ua.NewDataValue(ua.MustVariant(tt.value)))
			if err != nil {
				t.Fatalf("Write returned error: %v", err)
			}
			if code != tt.want {
				t.Errorf("status = %v, want %v", code, tt.want)
			}
		})
	}

	if v, _ := s.Value(level); v.Value() != uint8(100) {
		t.Errorf("value after write = %v", v)
	}
	if s.WriteCalls() != int64(len(tests)) {
		t.Errorf("WriteCalls = %d", s.WriteCalls())
	}
}

func TestSession_Fail(t *testing.T) {
	s := Standard()
	ctx := context.Background()
	boom := errors.New("link down")

	s.Fail(OpBrowse, ua.Server, boom, 1)
	if _, _, err := s.BrowseChild(ctx, ua.Server, "", "ServiceLevel", ua.HasProperty); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if _, found, err := s.BrowseChild(ctx, ua.Server, "", "ServiceLevel", ua.HasProperty); err != nil || !found {
		t.Fatalf("second browse should succeed: found=%v err=%v", found, err)
	}
	if s.BrowseCalls() != 2 {
		t.Errorf("BrowseCalls = %d, want 2", s.BrowseCalls())
	}

	s.Fail(OpRead, ua.Server, boom, 0)
	for i := 0; i < 3; i++ {
		if _, err := s.Read(ctx, ua.Server, ua.AttributeBrowseName); !errors.Is(err, boom) {
			t.Fatalf("read %d: expected injected error, got %v", i, err)
		}
	}
	s.ClearFaults()
	if _, err := s.Read(ctx, ua.Server, ua.AttributeBrowseName); err != nil {
		t.Errorf("read after ClearFaults failed: %v", err)
	}
}

func TestSession_LatencyHonoursContext(t *testing.T) {
	s := Standard(WithLatency(time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Read(ctx, ua.Server, ua.AttributeBrowseName)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestSession_AddNamespaceUpdatesNamespaceArray(t *testing.T) {
	s := Standard()
	idx := s.AddNamespace("urn:example:plant")
	if idx != 1 {
		t.Errorf("index = %d, want 1", idx)
	}
	if again := s.AddNamespace("urn:example:plant"); again != idx {
		t.Errorf("re-adding returned %d", again)
	}
	v, _ := s.Value(ua.StandardNodeID(ua.IDServerNamespaceArray))
	ns, _ := v.Value().([]string)
	if len(ns) != 2 || ns[1] != "urn:example:plant" {
		t.Errorf("NamespaceArray = %v", ns)
	}
}

func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpBrowse, "Browse"},
		{OpRead, "Read"},
		{OpWrite, "Write"},
		{Op(9), "Unknown(9)"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", int(tt.op), got, tt.want)
		}
	}
}
