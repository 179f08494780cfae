package ua

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QualifiedName is a browse name qualified by a namespace index.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           string
}

// NewQualifiedName returns a qualified name.
func NewQualifiedName(ns uint16, name string) QualifiedName {
	return QualifiedName{NamespaceIndex: ns, Name: name}
}

// String returns "ns:name", or just the name in namespace 0.
func (q QualifiedName) String() string {
	if q.NamespaceIndex == 0 {
		return q.Name
	}
	return strconv.FormatUint(uint64(q.NamespaceIndex), 10) + ":" + q.Name
}

// ParseQualifiedName parses the "ns:name" notation. A missing or
// non-numeric prefix yields namespace 0 and the whole string as the name.
func ParseQualifiedName(s string) QualifiedName {
	if i := strings.IndexByte(s, ':'); i > 0 {
		if ns, err := strconv.ParseUint(s[:i], 10, 16); err == nil {
			return QualifiedName{NamespaceIndex: uint16(ns), Name: s[i+1:]}
		}
	}
	return QualifiedName{Name: s}
}

// LocalizedText is human readable text with an optional locale.
type LocalizedText struct {
	Locale string
	Text   string
}

// NewLocalizedText returns text without a locale.
func NewLocalizedText(text string) LocalizedText {
	return LocalizedText{Text: text}
}

func (l LocalizedText) String() string {
	if l.Locale == "" {
		return l.Text
	}
	return l.Locale + ":" + l.Text
}

// AttributeID identifies one attribute of a node.
type AttributeID uint32

// Attribute identifiers.
const (
	AttributeNodeID AttributeID = iota + 1
	AttributeNodeClass
	AttributeBrowseName
	AttributeDisplayName
	AttributeDescription
	AttributeWriteMask
	AttributeUserWriteMask
	AttributeIsAbstract
	AttributeSymmetric
	AttributeInverseName
	AttributeContainsNoLoops
	AttributeEventNotifier
	AttributeValue
	AttributeDataType
	AttributeValueRank
	AttributeArrayDimensions
	AttributeAccessLevel
	AttributeUserAccessLevel
	AttributeMinimumSamplingInterval
	AttributeHistorizing
	AttributeExecutable
	AttributeUserExecutable
	AttributeDataTypeDefinition
	AttributeRolePermissions
	AttributeUserRolePermissions
	AttributeAccessRestrictions
	AttributeAccessLevelEx
)

var attributeNames = [...]string{
	"", "NodeId", "NodeClass", "BrowseName", "DisplayName", "Description",
	"WriteMask", "UserWriteMask", "IsAbstract", "Symmetric", "InverseName",
	"ContainsNoLoops", "EventNotifier", "Value", "DataType", "ValueRank",
	"ArrayDimensions", "AccessLevel", "UserAccessLevel", "MinimumSamplingInterval",
	"Historizing", "Executable", "UserExecutable", "DataTypeDefinition",
	"RolePermissions", "UserRolePermissions", "AccessRestrictions", "AccessLevelEx",
}

// IsValid reports whether a is a defined attribute.
func (a AttributeID) IsValid() bool {
	return a >= AttributeNodeID && a <= AttributeAccessLevelEx
}

// String returns the attribute name.
func (a AttributeID) String() string {
	if a.IsValid() {
		return attributeNames[a]
	}
	return fmt.Sprintf("Unknown(%d)", uint32(a))
}

// ParseAttributeID accepts an attribute name (case-insensitive) or number.
func ParseAttributeID(s string) (AttributeID, error) {
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		if a := AttributeID(n); a.IsValid() {
			return a, nil
		}
	}
	for i := 1; i < len(attributeNames); i++ {
		if strings.EqualFold(attributeNames[i], s) {
			return AttributeID(i), nil
		}
	}
	return 0, NewStatusError(StatusBadAttributeIDInvalid, fmt.Sprintf("unknown attribute %q", s))
}

// NodeClass is the class of a node.
type NodeClass uint32

// Node classes.
const (
	NodeClassUnspecified   NodeClass = 0
	NodeClassObject        NodeClass = 1
	NodeClassVariable      NodeClass = 2
	NodeClassMethod        NodeClass = 4
	NodeClassObjectType    NodeClass = 8
	NodeClassVariableType  NodeClass = 16
	NodeClassReferenceType NodeClass = 32
	NodeClassDataType      NodeClass = 64
	NodeClassView          NodeClass = 128
)

// String returns a string representation of the node class.
func (c NodeClass) String() string {
	switch c {
	case NodeClassUnspecified:
		return "Unspecified"
	case NodeClassObject:
		return "Object"
	case NodeClassVariable:
		return "Variable"
	case NodeClassMethod:
		return "Method"
	case NodeClassObjectType:
		return "ObjectType"
	case NodeClassVariableType:
		return "VariableType"
	case NodeClassReferenceType:
		return "ReferenceType"
	case NodeClassDataType:
		return "DataType"
	case NodeClassView:
		return "View"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(c))
	}
}

// ParseNodeClass parses a node class name as returned by String.
func ParseNodeClass(s string) (NodeClass, bool) {
	for _, c := range []NodeClass{
		NodeClassObject, NodeClassVariable, NodeClassMethod, NodeClassObjectType,
		NodeClassVariableType, NodeClassReferenceType, NodeClassDataType, NodeClassView,
	} {
		if strings.EqualFold(c.String(), s) {
			return c, true
		}
	}
	return NodeClassUnspecified, false
}

// ExtensionObject carries an encoded structure. TypeID is the binary encoding
// id of the structure, Body its binary encoding.
type ExtensionObject struct {
	TypeID NodeID
	Body   []byte
}

// DataValue is an attribute value as returned by a read.
type DataValue struct {
	Value           Variant
	Status          StatusCode
	SourceTimestamp time.Time
	ServerTimestamp time.Time
}

// NewDataValue returns a good data value holding v.
func NewDataValue(v Variant) DataValue {
	return DataValue{Value: v, Status: StatusGood}
}

// Err returns a *StatusError when the status is bad.
func (d DataValue) Err() error {
	if d.Status.IsBad() {
		return NewStatusError(d.Status, "")
	}
	return nil
}
