package catalog

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/smnsjas/go-uaproxy/ua"
)

// yamlFile is the on-disk layout of a table file:
//
//	namespaceURI: urn:example:plant
//	tables:
//	  - name: PumpType
//	    typeDefinition: "nsu=urn:example:plant;i=1001"
//	    extends: BaseObjectType
//	    members:
//	      - browseName: Speed
//	        reference: HasComponent
//	        nodeClass: Variable
//	        typeDefinition: "i=2368"
//	        dataType: "i=11"
//	        kind: primitive
type yamlFile struct {
	NamespaceURI string      `yaml:"namespaceURI"`
	Tables       []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name           string       `yaml:"name"`
	TypeDefinition string       `yaml:"typeDefinition"`
	Extends        string       `yaml:"extends"`
	NamespaceURI   string       `yaml:"namespaceURI"`
	Members        []yamlMember `yaml:"members"`
}

type yamlMember struct {
	BrowseName      string   `yaml:"browseName"`
	NamespaceURI    string   `yaml:"namespaceURI"`
	Reference       string   `yaml:"reference"`
	NodeClass       string   `yaml:"nodeClass"`
	TypeDefinition  string   `yaml:"typeDefinition"`
	DataType        string   `yaml:"dataType"`
	Kind            string   `yaml:"kind"`
	ValueRank       *int32   `yaml:"valueRank"`
	ArrayDimensions []uint32 `yaml:"arrayDimensions"`
	Optional        bool     `yaml:"optional"`
}

// LoadFile reads a YAML table file into c.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalog load failed (%s): %w", path, err)
	}
	if err := c.LoadYAML(data); err != nil {
		return fmt.Errorf("catalog load failed (%s): %w", path, err)
	}
	return nil
}

// LoadYAML parses table definitions and adds them to c. Tables are added in
// file order; extends may name a table already in c or defined earlier in
// the same file. Nothing is added when any table is invalid.
func (c *Catalog) LoadYAML(data []byte) error {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	pending := make(map[string]*Table, len(f.Tables))
	ordered := make([]*Table, 0, len(f.Tables))
	for i, yt := range f.Tables {
		t, err := c.buildTable(yt, f.NamespaceURI, pending)
		if err != nil {
			return fmt.Errorf("table %d (%s): %w", i, yt.Name, err)
		}
		if _, dup := pending[t.name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTable, t.name)
		}
		pending[t.name] = t
		ordered = append(ordered, t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range ordered {
		if _, ok := c.byName[t.name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateTable, t.name)
		}
		if _, ok := c.byType[t.typeDefinition]; ok {
			return fmt.Errorf("%w: type %v", ErrDuplicateTable, t.typeDefinition)
		}
	}
	for _, t := range ordered {
		c.byName[t.name] = t
		c.byType[t.typeDefinition] = t
	}
	return nil
}

func (c *Catalog) buildTable(yt yamlTable, fileNS string, pending map[string]*Table) (*Table, error) {
	if yt.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidTable)
	}
	typeDef, err := ua.ParseNodeID(yt.TypeDefinition)
	if err != nil {
		return nil, fmt.Errorf("%w: typeDefinition: %w", ErrInvalidTable, err)
	}

	var parent *Table
	if yt.Extends != "" {
		var ok bool
		if parent, ok = pending[yt.Extends]; !ok {
			if parent, ok = c.Table(yt.Extends); !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownTable, yt.Extends)
			}
		}
	}

	ns := firstNonEmpty(yt.NamespaceURI, fileNS, ua.NamespaceURI)
	members := make([]Descriptor, 0, len(yt.Members))
	for _, ym := range yt.Members {
		d, err := buildDescriptor(ym, ns)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", ym.BrowseName, err)
		}
		members = append(members, d)
	}

	return NewTable(yt.Name, typeDef, parent, members...), nil
}

func buildDescriptor(ym yamlMember, ns string) (Descriptor, error) {
	if ym.BrowseName == "" {
		return Descriptor{}, fmt.Errorf("%w: missing browseName", ErrInvalidTable)
	}

	d := Descriptor{
		BrowseName:      ym.BrowseName,
		NamespaceURI:    firstNonEmpty(ym.NamespaceURI, ns),
		ArrayDimensions: ym.ArrayDimensions,
		Optional:        ym.Optional,
		ValueRank:       ValueRankScalar,
	}
	if ym.ValueRank != nil {
		d.ValueRank = *ym.ValueRank
	}

	switch ym.Reference {
	case "", "HasComponent":
		d.ReferenceType = ua.HasComponent
	case "HasProperty":
		d.ReferenceType = ua.HasProperty
	default:
		ref, err := ua.ParseNodeID(ym.Reference)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: reference %q", ErrInvalidTable, ym.Reference)
		}
		d.ReferenceType = ref
	}

	d.NodeClass = ua.NodeClassVariable
	if ym.NodeClass != "" {
		nc, ok := ua.ParseNodeClass(ym.NodeClass)
		if !ok {
			return Descriptor{}, fmt.Errorf("%w: nodeClass %q", ErrInvalidTable, ym.NodeClass)
		}
		d.NodeClass = nc
	}

	var err error
	if ym.TypeDefinition != "" {
		if d.TypeDefinition, err = ua.ParseNodeID(ym.TypeDefinition); err != nil {
			return Descriptor{}, fmt.Errorf("%w: typeDefinition: %w", ErrInvalidTable, err)
		}
	}
	if ym.DataType != "" {
		if d.DataType, err = ua.ParseNodeID(ym.DataType); err != nil {
			return Descriptor{}, fmt.Errorf("%w: dataType: %w", ErrInvalidTable, err)
		}
	}

	if ym.Kind == "" {
		if d.NodeClass == ua.NodeClassVariable {
			d.Kind = KindPrimitive
		}
	} else {
		k, ok := ParseKind(ym.Kind)
		if !ok {
			return Descriptor{}, fmt.Errorf("%w: kind %q", ErrInvalidTable, ym.Kind)
		}
		d.Kind = k
	}

	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
