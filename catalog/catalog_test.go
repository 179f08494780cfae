package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smnsjas/go-uaproxy/ua"
)

func TestTable_LookupInherited(t *testing.T) {
	tests := []struct {
		table  *Table
		member string
		owner  string
		want   bool
	}{
		{AnalogItemType, "EURange", "AnalogItemType", true},
		{AnalogItemType, "Definition", "DataItemType", true},
		{ArrayItemType, "AxisScaleType", "ArrayItemType", true},
		{DataItemType, "EURange", "", false},
		{ServerType, "ServerStatus", "ServerType", true},
		{OperationLimitsType, "MaxNodesPerRead", "OperationLimitsType", true},
		{ServerType, "Nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.table.Name()+"/"+tt.member, func(t *testing.T) {
			d, ok := tt.table.Lookup(tt.member)
			if ok != tt.want {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.member, ok, tt.want)
			}
			if !ok {
				return
			}
			if d.BrowseName != tt.member {
				t.Errorf("BrowseName = %q", d.BrowseName)
			}
			found := false
			for cur := tt.table; cur != nil; cur = cur.Parent() {
				if cur.Name() == tt.owner {
					for _, own := range cur.Own() {
						found = found || own.BrowseName == tt.member
					}
				}
			}
			if !found {
				t.Errorf("member %q not declared on %s", tt.member, tt.owner)
			}
		})
	}
}

func TestTable_DescriptorsOverride(t *testing.T) {
	base := NewTable("Base", ua.NewNumericNodeID(2, 1), nil,
		Property("A", ua.IDInt32, KindPrimitive),
		Property("B", ua.IDInt32, KindPrimitive),
	)
	derived := base.Extend("Derived", ua.NewNumericNodeID(2, 2),
		Property("B", ua.IDString, KindPrimitive),
		Property("C", ua.IDDouble, KindPrimitive),
	)

	ds := derived.Descriptors()
	if len(ds) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(ds))
	}
	order := []string{"A", "B", "C"}
	for i, d := range ds {
		if d.BrowseName != order[i] {
			t.Errorf("descriptor %d = %q, want %q", i, d.BrowseName, order[i])
		}
	}
	if ds[1].DataType != ua.StandardNodeID(ua.IDString) {
		t.Errorf("override not applied: B has data type %v", ds[1].DataType)
	}

	if b, _ := base.Lookup("B"); b.DataType != ua.StandardNodeID(ua.IDInt32) {
		t.Error("parent table must be unaffected by the override")
	}
	if !derived.Inherits(base) || base.Inherits(derived) {
		t.Error("Inherits relation wrong")
	}
}

func TestDescriptor_BuiltinType(t *testing.T) {
	tests := []struct {
		d    Descriptor
		want ua.TypeID
		ok   bool
	}{
		{ServerType.MustLookup("ServiceLevel"), ua.TypeByte, true},
		{ServerType.MustLookup("NamespaceArray"), ua.TypeString, true},
		{ServerType.MustLookup("ServerStatus"), ua.TypeExtensionObject, true},
		{ServerRedundancyType.MustLookup("RedundancySupport"), ua.TypeInt32, true},
		{ServerType.MustLookup("ServerCapabilities"), ua.TypeNull, false},
	}

	for _, tt := range tests {
		t.Run(tt.d.BrowseName, func(t *testing.T) {
			got, ok := tt.d.BuiltinType()
			if got != tt.want || ok != tt.ok {
				t.Errorf("BuiltinType() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}

	if !ServerType.MustLookup("NamespaceArray").IsArray() {
		t.Error("NamespaceArray should be an array")
	}
}

func TestCatalog_IsSubtype(t *testing.T) {
	c := Standard()
	id := ua.StandardNodeID

	tests := []struct {
		name             string
		actual, expected ua.NodeID
		want             bool
	}{
		{"Same", id(ua.IDAnalogItemType), id(ua.IDAnalogItemType), true},
		{"Subtype", id(ua.IDAnalogItemType), id(ua.IDDataItemType), true},
		{"Supertype", id(ua.IDDataItemType), id(ua.IDAnalogItemType), false},
		{"Sibling", id(ua.IDArrayItemType), id(ua.IDAnalogItemType), false},
		{"NoExpectation", id(ua.IDServerType), ua.NodeID{}, true},
		{"UnknownActual", ua.NewNumericNodeID(5, 1), id(ua.IDAnalogItemType), true},
		{"UnknownExpected", id(ua.IDServerType), ua.NewNumericNodeID(5, 1), false},
		{"PropertyIsVariable", id(ua.IDPropertyType), id(ua.IDBaseVariableType), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsSubtype(tt.actual, tt.expected); got != tt.want {
				t.Errorf("IsSubtype = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCatalog_AddDuplicate(t *testing.T) {
	c := Standard()
	err := c.Add(NewTable("ServerType", ua.NewNumericNodeID(3, 3), nil))
	if !errors.Is(err, ErrDuplicateTable) {
		t.Errorf("expected ErrDuplicateTable, got %v", err)
	}
	err = c.Add(NewTable("Other", ua.StandardNodeID(ua.IDServerType), nil))
	if !errors.Is(err, ErrDuplicateTable) {
		t.Errorf("expected ErrDuplicateTable for duplicate type, got %v", err)
	}
}

const pumpYAML = `
namespaceURI: urn:example:plant
tables:
  - name: PumpType
    typeDefinition: "nsu=urn:example:plant;i=1001"
    extends: BaseObjectType
    members:
      - browseName: Speed
        typeDefinition: "i=2368"
        dataType: "i=11"
      - browseName: Mode
        reference: HasProperty
        typeDefinition: "i=68"
        dataType: "i=6"
        kind: enum
      - browseName: Motor
        nodeClass: Object
        typeDefinition: "nsu=urn:example:plant;i=1002"
  - name: BoosterPumpType
    typeDefinition: "nsu=urn:example:plant;i=1003"
    extends: PumpType
    members:
      - browseName: Stages
        dataType: "i=7"
        valueRank: 1
        optional: true
`

func TestCatalog_LoadYAML(t *testing.T) {
	c := Standard()
	if err := c.LoadYAML([]byte(pumpYAML)); err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}

	booster, ok := c.Table("BoosterPumpType")
	if !ok {
		t.Fatal("BoosterPumpType not loaded")
	}
	pump, _ := c.Table("PumpType")
	if !booster.Inherits(pump) || !booster.Inherits(BaseObjectType) {
		t.Error("BoosterPumpType should inherit PumpType and BaseObjectType")
	}

	speed, ok := booster.Lookup("Speed")
	if !ok {
		t.Fatal("Speed should be inherited")
	}
	if speed.NamespaceURI != "urn:example:plant" {
		t.Errorf("namespace = %q", speed.NamespaceURI)
	}
	if speed.ReferenceType != ua.HasComponent || speed.Kind != KindPrimitive {
		t.Errorf("defaults not applied: %+v", speed)
	}

	mode, _ := pump.Lookup("Mode")
	if mode.ReferenceType != ua.HasProperty || mode.Kind != KindEnum {
		t.Errorf("Mode = %+v", mode)
	}

	motor, _ := pump.Lookup("Motor")
	if motor.NodeClass != ua.NodeClassObject || motor.Kind != KindNone {
		t.Errorf("Motor = %+v", motor)
	}

	stages, _ := booster.Lookup("Stages")
	if !stages.IsArray() || !stages.Optional {
		t.Errorf("Stages = %+v", stages)
	}

	typeID := ua.NewNumericNodeID(0, 1003).WithNamespaceURI("urn:example:plant")
	if got, ok := c.ByType(typeID); !ok || got != booster {
		t.Error("ByType lookup failed")
	}
}

func TestCatalog_LoadYAML_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "UnknownParent",
			yaml:    "tables:\n  - name: X\n    typeDefinition: \"ns=2;i=1\"\n    extends: Missing\n",
			wantErr: ErrUnknownTable,
		},
		{
			name:    "BadTypeDefinition",
			yaml:    "tables:\n  - name: X\n    typeDefinition: \"nonsense\"\n",
			wantErr: ErrInvalidTable,
		},
		{
			name:    "BadKind",
			yaml:    "tables:\n  - name: X\n    typeDefinition: \"ns=2;i=1\"\n    members:\n      - browseName: A\n        kind: blob\n",
			wantErr: ErrInvalidTable,
		},
		{
			name:    "DuplicateExisting",
			yaml:    "tables:\n  - name: ServerType\n    typeDefinition: \"ns=2;i=1\"\n",
			wantErr: ErrDuplicateTable,
		},
		{
			name:    "Malformed",
			yaml:    "tables: [",
			wantErr: ErrInvalidTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Standard()
			before := len(c.Tables())
			err := c.LoadYAML([]byte(tt.yaml))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if len(c.Tables()) != before {
				t.Error("failed load must not add tables")
			}
		})
	}
}

func TestCatalog_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pump.yaml")
	if err := os.WriteFile(path, []byte(pumpYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	c := Standard()
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if _, ok := c.Table("PumpType"); !ok {
		t.Error("PumpType not loaded")
	}

	if err := c.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
