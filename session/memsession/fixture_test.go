package memsession

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smnsjas/go-uaproxy/codec"
	"github.com/smnsjas/go-uaproxy/objects"
	"github.com/smnsjas/go-uaproxy/ua"
)

const plantFixture = `
namespaces:
  - urn:example:plant
nodes:
  - id: "nsu=urn:example:plant;s=Pump1"
    parent: "i=85"
    reference: Organizes
    browseName: Pump1
    typeDefinition: "i=58"
  - id: "nsu=urn:example:plant;s=Pump1.Speed"
    parent: "nsu=urn:example:plant;s=Pump1"
    browseName: Speed
    typeDefinition: "i=2368"
    value: {type: Double, value: 1450.5}
    writable: true
  - id: "nsu=urn:example:plant;s=Pump1.Speed.EURange"
    parent: "nsu=urn:example:plant;s=Pump1.Speed"
    reference: HasProperty
    browseName: "0:EURange"
    typeDefinition: "i=68"
    value:
      type: Range
      value: {low: 0, high: 3000}
  - id: "nsu=urn:example:plant;s=Pump1.Tags"
    parent: "nsu=urn:example:plant;s=Pump1"
    reference: HasProperty
    browseName: Tags
    value: {type: "String[]", value: [inlet, north]}
`

func TestSession_LoadFixture(t *testing.T) {
	s := Standard()
	if err := s.LoadFixture([]byte(plantFixture)); err != nil {
		t.Fatalf("LoadFixture failed: %v", err)
	}
	ctx := context.Background()

	pump, found, err := s.BrowseChild(ctx, ua.ObjectsFolder, "urn:example:plant", "Pump1", ua.NodeID{})
	if err != nil || !found {
		t.Fatalf("Pump1 not found: found=%v err=%v", found, err)
	}
	if pump.NodeID != ua.NewStringNodeID(1, "Pump1") {
		t.Errorf("Pump1 id = %v", pump.NodeID)
	}
	if pump.NodeClass != ua.NodeClassObject {
		t.Errorf("Pump1 class = %v", pump.NodeClass)
	}

	speed, found, _ := s.BrowseChild(ctx, pump.NodeID, "urn:example:plant", "Speed", ua.HasComponent)
	if !found {
		t.Fatal("Speed not found")
	}
	dv, _ := s.Read(ctx, speed.NodeID, ua.AttributeValue)
	if got, _ := dv.Value.Value().(float64); got != 1450.5 {
		t.Errorf("Speed = %v", dv.Value)
	}

	eur, found, _ := s.BrowseChild(ctx, speed.NodeID, ua.NamespaceURI, "EURange", ua.HasProperty)
	if !found {
		t.Fatal("EURange not found")
	}
	dv, _ = s.Read(ctx, eur.NodeID, ua.AttributeValue)
	r, err := codec.DecodeStructure[objects.Range](dv.Value, s.SerializationContext())
	if err != nil {
		t.Fatalf("decode EURange: %v", err)
	}
	if r.Low != 0 || r.High != 3000 {
		t.Errorf("EURange = %+v", r)
	}

	tags, found, _ := s.BrowseChild(ctx, pump.NodeID, "urn:example:plant", "Tags", ua.HasProperty)
	if !found {
		t.Fatal("Tags not found")
	}
	dv, _ = s.Read(ctx, tags.NodeID, ua.AttributeValue)
	if got, _ := dv.Value.Value().([]string); len(got) != 2 || got[1] != "north" {
		t.Errorf("Tags = %v", dv.Value)
	}
}

func TestSession_LoadFixture_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"Malformed", "nodes: ["},
		{"BadID", "nodes:\n  - id: nonsense\n    browseName: X\n"},
		{"MissingBrowseName", "nodes:\n  - id: \"ns=0;i=99999\"\n"},
		{"UnknownNamespace", "nodes:\n  - id: \"nsu=urn:missing;i=1\"\n    browseName: X\n"},
		{"BadValue", "nodes:\n  - id: \"i=99999\"\n    browseName: X\n    value: {type: Int32, value: abc}\n"},
		{"UnknownType", "nodes:\n  - id: \"i=99999\"\n    browseName: X\n    value: {type: Matrix, value: 1}\n"},
		{"UnknownParent", "nodes:\n  - id: \"i=99999\"\n    browseName: X\n    parent: \"i=88888\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Standard().LoadFixture([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.name == "UnknownParent" {
				if !errors.Is(err, ErrUnknownNode) {
					t.Errorf("expected ErrUnknownNode, got %v", err)
				}
				return
			}
			if tt.name != "UnknownNamespace" && !errors.Is(err, ErrInvalidFixture) {
				t.Errorf("expected ErrInvalidFixture, got %v", err)
			}
		})
	}
}

func TestSession_LoadFixtureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plant.yaml")
	if err := os.WriteFile(path, []byte(plantFixture), 0o600); err != nil {
		t.Fatal(err)
	}
	s := Standard()
	if err := s.LoadFixtureFile(path); err != nil {
		t.Fatalf("LoadFixtureFile failed: %v", err)
	}
	if err := s.LoadFixtureFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSession_BrowseExpandsTypeDefinition(t *testing.T) {
	s := Standard()
	fixture := `
namespaces: [urn:example:plant]
nodes:
  - id: "nsu=urn:example:plant;i=5"
    parent: "i=85"
    reference: Organizes
    browseName: Pump
    typeDefinition: "nsu=urn:example:plant;i=1001"
`
	if err := s.LoadFixture([]byte(fixture)); err != nil {
		t.Fatal(err)
	}
	ref, found, err := s.BrowseChild(context.Background(), ua.ObjectsFolder, "", "Pump", Organizes)
	if err != nil || !found {
		t.Fatalf("browse failed: found=%v err=%v", found, err)
	}
	want := ua.NewNumericNodeID(0, 1001).WithNamespaceURI("urn:example:plant")
	if ref.TypeDefinition != want {
		t.Errorf("TypeDefinition = %v, want %v", ref.TypeDefinition, want)
	}
}
