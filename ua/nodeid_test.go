package ua

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestParseNodeID(t *testing.T) {
	g := uuid.MustParse("09087e75-8e5e-499b-954f-f2a9603db28a")

	tests := []struct {
		name  string
		input string
		want  NodeID
		str   string
	}{
		{"NumericNS0", "i=2253", NewNumericNodeID(0, 2253), "i=2253"},
		{"NumericExplicitNS0", "ns=0;i=85", NewNumericNodeID(0, 85), "i=85"},
		{"String", "ns=2;s=Line1.Motor", NewStringNodeID(2, "Line1.Motor"), "ns=2;s=Line1.Motor"},
		{"StringWithSemicolon", "ns=2;s=a;b", NewStringNodeID(2, "a;b"), "ns=2;s=a;b"},
		{"GUID", "ns=3;g=" + g.String(), NewGUIDNodeID(3, g), "ns=3;g=" + g.String()},
		{"Opaque", "ns=1;b=AQID", NewOpaqueNodeID(1, []byte{1, 2, 3}), "ns=1;b=AQID"},
		{
			"Expanded",
			"nsu=urn:example:plant;i=1001",
			NewNumericNodeID(0, 1001).WithNamespaceURI("urn:example:plant"),
			"nsu=urn:example:plant;i=1001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNodeID(tt.input)
			if err != nil {
				t.Fatalf("ParseNodeID(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseNodeID(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.String() != tt.str {
				t.Errorf("String() = %q, want %q", got.String(), tt.str)
			}
		})
	}
}

func TestParseNodeID_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"x=1",
		"i=abc",
		"i=-1",
		"ns=70000;i=1",
		"ns=1",
		"nsu=;i=1",
		"ns=1;s=",
		"g=not-a-guid",
		"b=***",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseNodeID(input)
			if err == nil {
				t.Fatalf("expected error for %q", input)
			}
			if !errors.Is(err, StatusBadNodeIDInvalid) {
				t.Errorf("expected Bad_NodeIdInvalid, got %v", err)
			}
		})
	}
}

func TestNodeID_Accessors(t *testing.T) {
	n := NewOpaqueNodeID(4, []byte{0xde, 0xad})
	if n.Type() != IDTypeOpaque {
		t.Errorf("Type() = %v, want Opaque", n.Type())
	}
	if !bytes.Equal(n.OpaqueID(), []byte{0xde, 0xad}) {
		t.Errorf("OpaqueID() = %x", n.OpaqueID())
	}
	if n.StringID() != "" {
		t.Errorf("StringID() on opaque id = %q, want empty", n.StringID())
	}
	if n.Namespace() != 4 {
		t.Errorf("Namespace() = %d, want 4", n.Namespace())
	}

	var zero NodeID
	if !zero.IsNull() {
		t.Error("zero NodeID should be null")
	}
	if Server.IsNull() {
		t.Error("Server node id should not be null")
	}
}

func TestNodeID_MapKey(t *testing.T) {
	m := map[NodeID]string{
		NewNumericNodeID(0, 2253):      "server",
		NewStringNodeID(0, "2253"):     "string",
		MustParseNodeID("ns=1;b=AQ=="): "opaque",
	}

	if m[MustParseNodeID("i=2253")] != "server" {
		t.Error("numeric lookup failed")
	}
	if m[NewOpaqueNodeID(1, []byte{1})] != "opaque" {
		t.Error("opaque lookup failed")
	}
	if len(m) != 3 {
		t.Errorf("expected 3 distinct keys, got %d", len(m))
	}
}

func TestCompareNodeID(t *testing.T) {
	g := uuid.MustParse("09087e75-8e5e-499b-954f-f2a9603db28a")

	tests := []struct {
		name string
		a, b NodeID
		want int
	}{
		{"Equal", NewNumericNodeID(0, 2253), MustParseNodeID("i=2253"), 0},
		{"Namespace", NewNumericNodeID(0, 9), NewNumericNodeID(1, 1), -1},
		{"NamespaceURI", NewNumericNodeID(0, 1).WithNamespaceURI("urn:b"), NewNumericNodeID(0, 1).WithNamespaceURI("urn:a"), 1},
		{"IDType", NewNumericNodeID(0, 1), NewStringNodeID(0, "1"), -1},
		{"Numeric", NewNumericNodeID(0, 2), NewNumericNodeID(0, 10), -1},
		{"Text", NewStringNodeID(0, "b"), NewStringNodeID(0, "a"), 1},
		{"GUID", NewGUIDNodeID(0, uuid.Nil), NewGUIDNodeID(0, g), -1},
		{"SameText", NewStringNodeID(0, "a").WithNamespaceURI("urn:x;s=b"), NewStringNodeID(0, "b;s=a").WithNamespaceURI("urn:x"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareNodeID(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareNodeID(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := CompareNodeID(tt.b, tt.a); got != -tt.want {
				t.Errorf("CompareNodeID(%v, %v) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestNodeID_TextMarshal(t *testing.T) {
	want := NewStringNodeID(5, "Tank.Level")
	text, err := want.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var got NodeID
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
