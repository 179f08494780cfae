// Package catalog holds the descriptor tables that describe the well-known
// members of each node type.
//
// A Table lists the members a type adds and links to its parent table.
// Lookups walk the parent chain, so a subtype only declares what it adds or
// overrides. Tables replace per-type generated classes: a typed proxy is a
// generic proxy plus a table.
//
//	t, _ := catalog.Standard().Table("AnalogItemType")
//	d, ok := t.Lookup("EURange") // declared on AnalogItemType
//	d, ok = t.Lookup("Definition") // inherited from DataItemType
//
// Additional tables can be loaded from YAML, see LoadYAML.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/smnsjas/go-uaproxy/ua"
)

var (
	// ErrDuplicateTable is returned when a table name or type is already registered.
	ErrDuplicateTable = errors.New("duplicate table")
	// ErrUnknownTable is returned when a referenced table does not exist.
	ErrUnknownTable = errors.New("unknown table")
	// ErrInvalidTable is returned for malformed table definitions.
	ErrInvalidTable = errors.New("invalid table")
	// ErrUnknownMember is returned by MustLookup-style helpers for missing members.
	ErrUnknownMember = errors.New("unknown member")
)

// Kind is the native representation of a member value.
type Kind uint8

const (
	// KindNone marks members without a value (objects).
	KindNone Kind = iota
	// KindPrimitive is a builtin scalar or array.
	KindPrimitive
	// KindEnum is an enumeration carried as Int32.
	KindEnum
	// KindStructure is a structure carried as ExtensionObject.
	KindStructure
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	case KindStructure:
		return "structure"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// ParseKind parses the names returned by Kind.String.
func ParseKind(s string) (Kind, bool) {
	for _, k := range []Kind{KindNone, KindPrimitive, KindEnum, KindStructure} {
		if k.String() == s {
			return k, true
		}
	}
	return KindNone, false
}

// Value ranks.
const (
	ValueRankScalar         int32 = -1
	ValueRankOneDimension   int32 = 1
	ValueRankScalarOrOneDim int32 = -3
)

// Descriptor describes one well-known member of a node type.
type Descriptor struct {
	// BrowseName and NamespaceURI identify the member below its parent.
	BrowseName   string
	NamespaceURI string
	// ReferenceType is the hierarchical reference from parent to member,
	// HasProperty or HasComponent.
	ReferenceType ua.NodeID
	NodeClass     ua.NodeClass
	// TypeDefinition is the expected type of the member node.
	TypeDefinition ua.NodeID

	// DataType, Kind and ValueRank describe the value of variable members.
	DataType        ua.NodeID
	Kind            Kind
	ValueRank       int32
	ArrayDimensions []uint32

	Optional bool
}

// IsArray reports whether the member value is a one-dimensional array.
func (d Descriptor) IsArray() bool {
	return d.ValueRank == ValueRankOneDimension
}

// BuiltinType returns the builtin type tag of primitive members whose data
// type is a builtin type.
func (d Descriptor) BuiltinType() (ua.TypeID, bool) {
	switch d.Kind {
	case KindEnum:
		return ua.TypeInt32, true
	case KindStructure:
		return ua.TypeExtensionObject, true
	case KindPrimitive:
		if d.DataType.Namespace() == 0 && d.DataType.NamespaceURI() == "" &&
			d.DataType.Type() == ua.IDTypeNumeric && d.DataType.IntID() >= 1 && d.DataType.IntID() <= 21 {
			return ua.TypeID(d.DataType.IntID()), true
		}
	}
	return ua.TypeNull, false
}

// Table is the descriptor table of one node type.
type Table struct {
	name           string
	typeDefinition ua.NodeID
	parent         *Table

	own   []Descriptor
	index map[string]int
}

// NewTable returns a table for the type typeDefinition. parent may be nil for
// root types.
func NewTable(name string, typeDefinition ua.NodeID, parent *Table, members ...Descriptor) *Table {
	t := &Table{
		name:           name,
		typeDefinition: typeDefinition,
		parent:         parent,
		index:          make(map[string]int, len(members)),
	}
	for _, d := range members {
		if i, ok := t.index[d.BrowseName]; ok {
			t.own[i] = d
			continue
		}
		t.index[d.BrowseName] = len(t.own)
		t.own = append(t.own, d)
	}
	return t
}

// Extend returns a child table of t.
func (t *Table) Extend(name string, typeDefinition ua.NodeID, members ...Descriptor) *Table {
	return NewTable(name, typeDefinition, t, members...)
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// TypeDefinition returns the node id of the type described by t.
func (t *Table) TypeDefinition() ua.NodeID { return t.typeDefinition }

// Parent returns the parent table, or nil.
func (t *Table) Parent() *Table { return t.parent }

// Lookup finds a member by browse name, searching t and then its ancestors.
func (t *Table) Lookup(browseName string) (Descriptor, bool) {
	for cur := t; cur != nil; cur = cur.parent {
		if i, ok := cur.index[browseName]; ok {
			return cur.own[i], true
		}
	}
	return Descriptor{}, false
}

// MustLookup is like Lookup but panics when the member does not exist.
// It is intended for package-level property declarations.
func (t *Table) MustLookup(browseName string) Descriptor {
	d, ok := t.Lookup(browseName)
	if !ok {
		panic(fmt.Errorf("%w: %s.%s", ErrUnknownMember, t.name, browseName))
	}
	return d
}

// Own returns the members declared by t itself.
func (t *Table) Own() []Descriptor {
	out := make([]Descriptor, len(t.own))
	copy(out, t.own)
	return out
}

// Descriptors returns every member of t including inherited ones, ancestors
// first. Members redeclared by a subtype replace the inherited declaration.
func (t *Table) Descriptors() []Descriptor {
	var chain []*Table
	for cur := t; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}

	var out []Descriptor
	pos := make(map[string]int)
	for i := len(chain) - 1; i >= 0; i-- {
		for _, d := range chain[i].own {
			if j, ok := pos[d.BrowseName]; ok {
				out[j] = d
				continue
			}
			pos[d.BrowseName] = len(out)
			out = append(out, d)
		}
	}
	return out
}

// Inherits reports whether t is other or a descendant of other.
func (t *Table) Inherits(other *Table) bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Catalog is a set of tables indexed by name and by type definition.
// It is safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	byName map[string]*Table
	byType map[ua.NodeID]*Table
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		byName: make(map[string]*Table),
		byType: make(map[ua.NodeID]*Table),
	}
}

// Add registers t. Names and type definitions must be unique.
func (c *Catalog) Add(t *Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byName[t.name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, t.name)
	}
	if _, ok := c.byType[t.typeDefinition]; ok {
		return fmt.Errorf("%w: type %v", ErrDuplicateTable, t.typeDefinition)
	}
	c.byName[t.name] = t
	c.byType[t.typeDefinition] = t
	return nil
}

// Table returns the table with the given name.
func (c *Catalog) Table(name string) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byName[name]
	return t, ok
}

// ByType returns the table describing a type definition.
func (c *Catalog) ByType(typeDefinition ua.NodeID) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byType[typeDefinition]
	return t, ok
}

// Tables returns every table sorted by name.
func (c *Catalog) Tables() []*Table {
	c.mu.RLock()
	out := make([]*Table, 0, len(c.byName))
	for _, t := range c.byName {
		out = append(out, t)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// IsSubtype reports whether a node of type actual satisfies expected.
//
// A null expectation always matches. A known actual type matches when its
// table inherits the expected table. An actual type the catalog does not know
// cannot be disproved and matches too; a known type outside the expected
// branch does not.
func (c *Catalog) IsSubtype(actual, expected ua.NodeID) bool {
	if expected.IsNull() || actual == expected {
		return true
	}
	ta, ok := c.ByType(actual)
	if !ok {
		return true
	}
	te, ok := c.ByType(expected)
	if !ok {
		return false
	}
	return ta.Inherits(te)
}
