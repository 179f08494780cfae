package ua

import (
	"bytes"
	"cmp"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// IDType identifies which identifier variant a NodeID carries.
type IDType uint8

const (
	// IDTypeNumeric is a 32-bit unsigned integer identifier.
	IDTypeNumeric IDType = iota
	// IDTypeString is a string identifier.
	IDTypeString
	// IDTypeGUID is a GUID identifier.
	IDTypeGUID
	// IDTypeOpaque is a byte string identifier.
	IDTypeOpaque
)

// String returns a string representation of the identifier type.
func (t IDType) String() string {
	switch t {
	case IDTypeNumeric:
		return "Numeric"
	case IDTypeString:
		return "String"
	case IDTypeGUID:
		return "Guid"
	case IDTypeOpaque:
		return "Opaque"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// NodeID identifies a node in the server address space.
//
// The zero value is the null node id (ns=0;i=0). Opaque identifiers are kept
// as strings so that NodeID stays comparable.
type NodeID struct {
	namespace    uint16
	namespaceURI string
	idType       IDType
	numeric      uint32
	text         string
	guid         uuid.UUID
}

// NewNumericNodeID returns a numeric node id.
func NewNumericNodeID(ns uint16, id uint32) NodeID {
	return NodeID{namespace: ns, idType: IDTypeNumeric, numeric: id}
}

// NewStringNodeID returns a string node id.
func NewStringNodeID(ns uint16, id string) NodeID {
	return NodeID{namespace: ns, idType: IDTypeString, text: id}
}

// NewGUIDNodeID returns a GUID node id.
func NewGUIDNodeID(ns uint16, id uuid.UUID) NodeID {
	return NodeID{namespace: ns, idType: IDTypeGUID, guid: id}
}

// NewOpaqueNodeID returns a byte string node id.
func NewOpaqueNodeID(ns uint16, id []byte) NodeID {
	return NodeID{namespace: ns, idType: IDTypeOpaque, text: string(id)}
}

// StandardNodeID returns a numeric node id in the standard namespace.
func StandardNodeID(id uint32) NodeID {
	return NewNumericNodeID(0, id)
}

// WithNamespaceURI returns a copy of n qualified by a namespace URI instead of
// a namespace index. Such ids are only meaningful to a session that can map the
// URI back to an index.
func (n NodeID) WithNamespaceURI(uri string) NodeID {
	n.namespaceURI = uri
	if uri != "" {
		n.namespace = 0
	}
	return n
}

// Namespace returns the namespace index.
func (n NodeID) Namespace() uint16 { return n.namespace }

// NamespaceURI returns the namespace URI, empty unless the id is expanded.
func (n NodeID) NamespaceURI() string { return n.namespaceURI }

// Type returns the identifier variant.
func (n NodeID) Type() IDType { return n.idType }

// IntID returns the numeric identifier, zero for other variants.
func (n NodeID) IntID() uint32 { return n.numeric }

// StringID returns the string identifier, empty for other variants.
func (n NodeID) StringID() string {
	if n.idType != IDTypeString {
		return ""
	}
	return n.text
}

// GUIDID returns the GUID identifier, uuid.Nil for other variants.
func (n NodeID) GUIDID() uuid.UUID { return n.guid }

// OpaqueID returns a copy of the byte string identifier.
func (n NodeID) OpaqueID() []byte {
	if n.idType != IDTypeOpaque {
		return nil
	}
	return []byte(n.text)
}

// IsNull reports whether n is the null node id.
func (n NodeID) IsNull() bool {
	return n == NodeID{}
}

// CompareNodeID orders node ids field by field. It returns 0 only when
// a == b.
func CompareNodeID(a, b NodeID) int {
	if c := cmp.Compare(a.namespace, b.namespace); c != 0 {
		return c
	}
	if c := strings.Compare(a.namespaceURI, b.namespaceURI); c != 0 {
		return c
	}
	if c := cmp.Compare(a.idType, b.idType); c != 0 {
		return c
	}
	if c := cmp.Compare(a.numeric, b.numeric); c != 0 {
		return c
	}
	if c := strings.Compare(a.text, b.text); c != 0 {
		return c
	}
	return bytes.Compare(a.guid[:], b.guid[:])
}

// String formats the node id in its textual notation.
func (n NodeID) String() string {
	var b strings.Builder
	switch {
	case n.namespaceURI != "":
		b.WriteString("nsu=")
		b.WriteString(n.namespaceURI)
		b.WriteByte(';')
	case n.namespace != 0:
		b.WriteString("ns=")
		b.WriteString(strconv.FormatUint(uint64(n.namespace), 10))
		b.WriteByte(';')
	}

	switch n.idType {
	case IDTypeNumeric:
		b.WriteString("i=")
		b.WriteString(strconv.FormatUint(uint64(n.numeric), 10))
	case IDTypeString:
		b.WriteString("s=")
		b.WriteString(n.text)
	case IDTypeGUID:
		b.WriteString("g=")
		b.WriteString(n.guid.String())
	case IDTypeOpaque:
		b.WriteString("b=")
		b.WriteString(base64.StdEncoding.EncodeToString([]byte(n.text)))
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (n NodeID) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *NodeID) UnmarshalText(text []byte) error {
	id, err := ParseNodeID(string(text))
	if err != nil {
		return err
	}
	*n = id
	return nil
}

// ParseNodeID parses the textual notation produced by NodeID.String.
// Malformed input fails with Bad_NodeIdInvalid.
func ParseNodeID(s string) (NodeID, error) {
	var n NodeID
	rest := s

	switch {
	case strings.HasPrefix(rest, "nsu="):
		end := strings.IndexByte(rest, ';')
		if end < 0 {
			return NodeID{}, nodeIDError(s, "missing identifier")
		}
		n.namespaceURI = rest[len("nsu="):end]
		if n.namespaceURI == "" {
			return NodeID{}, nodeIDError(s, "empty namespace uri")
		}
		rest = rest[end+1:]
	case strings.HasPrefix(rest, "ns="):
		end := strings.IndexByte(rest, ';')
		if end < 0 {
			return NodeID{}, nodeIDError(s, "missing identifier")
		}
		ns, err := strconv.ParseUint(rest[len("ns="):end], 10, 16)
		if err != nil {
			return NodeID{}, nodeIDError(s, "bad namespace index")
		}
		n.namespace = uint16(ns)
		rest = rest[end+1:]
	}

	if len(rest) < 2 || rest[1] != '=' {
		return NodeID{}, nodeIDError(s, "missing identifier type")
	}
	body := rest[2:]

	switch rest[0] {
	case 'i':
		v, err := strconv.ParseUint(body, 10, 32)
		if err != nil {
			return NodeID{}, nodeIDError(s, "bad numeric identifier")
		}
		n.idType = IDTypeNumeric
		n.numeric = uint32(v)
	case 's':
		if body == "" {
			return NodeID{}, nodeIDError(s, "empty string identifier")
		}
		n.idType = IDTypeString
		n.text = body
	case 'g':
		g, err := uuid.Parse(body)
		if err != nil {
			return NodeID{}, nodeIDError(s, "bad guid identifier")
		}
		n.idType = IDTypeGUID
		n.guid = g
	case 'b':
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return NodeID{}, nodeIDError(s, "bad opaque identifier")
		}
		n.idType = IDTypeOpaque
		n.text = string(raw)
	default:
		return NodeID{}, nodeIDError(s, "unknown identifier type")
	}

	return n, nil
}

// MustParseNodeID is like ParseNodeID but panics on error.
// It is intended for package-level tables.
func MustParseNodeID(s string) NodeID {
	n, err := ParseNodeID(s)
	if err != nil {
		panic(err)
	}
	return n
}

func nodeIDError(s, reason string) error {
	return NewStatusError(StatusBadNodeIDInvalid, fmt.Sprintf("parse node id %q: %s", s, reason))
}
