package ua

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnsupportedValue is returned by NewVariant for Go values that have no
// builtin representation.
var ErrUnsupportedValue = errors.New("unsupported variant value")

// TypeID is the builtin type tag of a Variant. Values follow the builtin
// type numbering of the protocol.
type TypeID uint8

// Builtin type tags.
const (
	TypeNull            TypeID = 0
	TypeBoolean         TypeID = 1
	TypeSByte           TypeID = 2
	TypeByte            TypeID = 3
	TypeInt16           TypeID = 4
	TypeUInt16          TypeID = 5
	TypeInt32           TypeID = 6
	TypeUInt32          TypeID = 7
	TypeInt64           TypeID = 8
	TypeUInt64          TypeID = 9
	TypeFloat           TypeID = 10
	TypeDouble          TypeID = 11
	TypeString          TypeID = 12
	TypeDateTime        TypeID = 13
	TypeGUID            TypeID = 14
	TypeByteString      TypeID = 15
	TypeNodeID          TypeID = 17
	TypeStatusCode      TypeID = 19
	TypeQualifiedName   TypeID = 20
	TypeLocalizedText   TypeID = 21
	TypeExtensionObject TypeID = 22
)

// String returns the builtin type name.
func (t TypeID) String() string {
	switch t {
	case TypeNull:
		return "Null"
	case TypeBoolean:
		return "Boolean"
	case TypeSByte:
		return "SByte"
	case TypeByte:
		return "Byte"
	case TypeInt16:
		return "Int16"
	case TypeUInt16:
		return "UInt16"
	case TypeInt32:
		return "Int32"
	case TypeUInt32:
		return "UInt32"
	case TypeInt64:
		return "Int64"
	case TypeUInt64:
		return "UInt64"
	case TypeFloat:
		return "Float"
	case TypeDouble:
		return "Double"
	case TypeString:
		return "String"
	case TypeDateTime:
		return "DateTime"
	case TypeGUID:
		return "Guid"
	case TypeByteString:
		return "ByteString"
	case TypeNodeID:
		return "NodeId"
	case TypeStatusCode:
		return "StatusCode"
	case TypeQualifiedName:
		return "QualifiedName"
	case TypeLocalizedText:
		return "LocalizedText"
	case TypeExtensionObject:
		return "ExtensionObject"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// IsInteger reports whether t is one of the integer tags.
func (t TypeID) IsInteger() bool {
	return t >= TypeSByte && t <= TypeUInt64
}

// Variant is a tagged union over the builtin types.
//
// Scalars hold the matching Go value (int32 for TypeInt32, ExtensionObject
// for TypeExtensionObject, ...). Arrays hold a slice of that Go value
// ([]int32, []ExtensionObject, ...). ByteString scalars hold []byte, so
// arrays of Byte are not representable and travel as ByteString.
type Variant struct {
	typ   TypeID
	array bool
	value any
}

// NewVariant wraps a Go value. Supported scalar types are bool, int8, uint8,
// int16, uint16, int32, uint32, int64, uint64, float32, float64, string,
// time.Time, uuid.UUID, []byte, NodeID, StatusCode, QualifiedName,
// LocalizedText and ExtensionObject, and slices of each of them except uint8.
// nil yields the null variant.
func NewVariant(v any) (Variant, error) {
	switch x := v.(type) {
	case nil:
		return Variant{}, nil
	case Variant:
		return x, nil
	case bool:
		return Variant{typ: TypeBoolean, value: x}, nil
	case int8:
		return Variant{typ: TypeSByte, value: x}, nil
	case uint8:
		return Variant{typ: TypeByte, value: x}, nil
	case int16:
		return Variant{typ: TypeInt16, value: x}, nil
	case uint16:
		return Variant{typ: TypeUInt16, value: x}, nil
	case int32:
		return Variant{typ: TypeInt32, value: x}, nil
	case uint32:
		return Variant{typ: TypeUInt32, value: x}, nil
	case int64:
		return Variant{typ: TypeInt64, value: x}, nil
	case uint64:
		return Variant{typ: TypeUInt64, value: x}, nil
	case float32:
		return Variant{typ: TypeFloat, value: x}, nil
	case float64:
		return Variant{typ: TypeDouble, value: x}, nil
	case string:
		return Variant{typ: TypeString, value: x}, nil
	case time.Time:
		return Variant{typ: TypeDateTime, value: x}, nil
	case uuid.UUID:
		return Variant{typ: TypeGUID, value: x}, nil
	case []byte:
		return Variant{typ: TypeByteString, value: x}, nil
	case NodeID:
		return Variant{typ: TypeNodeID, value: x}, nil
	case StatusCode:
		return Variant{typ: TypeStatusCode, value: x}, nil
	case QualifiedName:
		return Variant{typ: TypeQualifiedName, value: x}, nil
	case LocalizedText:
		return Variant{typ: TypeLocalizedText, value: x}, nil
	case ExtensionObject:
		return Variant{typ: TypeExtensionObject, value: x}, nil

	case []bool:
		return arrayVariant(TypeBoolean, x), nil
	case []int8:
		return arrayVariant(TypeSByte, x), nil
	case []int16:
		return arrayVariant(TypeInt16, x), nil
	case []uint16:
		return arrayVariant(TypeUInt16, x), nil
	case []int32:
		return arrayVariant(TypeInt32, x), nil
	case []uint32:
		return arrayVariant(TypeUInt32, x), nil
	case []int64:
		return arrayVariant(TypeInt64, x), nil
	case []uint64:
		return arrayVariant(TypeUInt64, x), nil
	case []float32:
		return arrayVariant(TypeFloat, x), nil
	case []float64:
		return arrayVariant(TypeDouble, x), nil
	case []string:
		return arrayVariant(TypeString, x), nil
	case []time.Time:
		return arrayVariant(TypeDateTime, x), nil
	case []uuid.UUID:
		return arrayVariant(TypeGUID, x), nil
	case [][]byte:
		return arrayVariant(TypeByteString, x), nil
	case []NodeID:
		return arrayVariant(TypeNodeID, x), nil
	case []StatusCode:
		return arrayVariant(TypeStatusCode, x), nil
	case []QualifiedName:
		return arrayVariant(TypeQualifiedName, x), nil
	case []LocalizedText:
		return arrayVariant(TypeLocalizedText, x), nil
	case []ExtensionObject:
		return arrayVariant(TypeExtensionObject, x), nil
	}
	return Variant{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

// MustVariant is like NewVariant but panics on unsupported values.
func MustVariant(v any) Variant {
	vv, err := NewVariant(v)
	if err != nil {
		panic(err)
	}
	return vv
}

func arrayVariant[T any](typ TypeID, v []T) Variant {
	if v == nil {
		v = []T{}
	}
	return Variant{typ: typ, array: true, value: v}
}

// Type returns the builtin type tag (the element tag for arrays).
func (v Variant) Type() TypeID { return v.typ }

// IsArray reports whether v holds a one-dimensional array.
func (v Variant) IsArray() bool { return v.array }

// IsNull reports whether v is the null variant.
func (v Variant) IsNull() bool { return v.typ == TypeNull }

// Value returns the wrapped Go value.
func (v Variant) Value() any { return v.value }

// Len returns the number of array elements, or -1 for scalars.
func (v Variant) Len() int {
	if !v.array {
		return -1
	}
	switch a := v.value.(type) {
	case []bool:
		return len(a)
	case []int8:
		return len(a)
	case []int16:
		return len(a)
	case []uint16:
		return len(a)
	case []int32:
		return len(a)
	case []uint32:
		return len(a)
	case []int64:
		return len(a)
	case []uint64:
		return len(a)
	case []float32:
		return len(a)
	case []float64:
		return len(a)
	case []string:
		return len(a)
	case []time.Time:
		return len(a)
	case []uuid.UUID:
		return len(a)
	case [][]byte:
		return len(a)
	case []NodeID:
		return len(a)
	case []StatusCode:
		return len(a)
	case []QualifiedName:
		return len(a)
	case []LocalizedText:
		return len(a)
	case []ExtensionObject:
		return len(a)
	}
	return 0
}

// String returns a short debug representation.
func (v Variant) String() string {
	if v.typ == TypeNull {
		return "Null"
	}
	if v.array {
		return fmt.Sprintf("%s[%d]%v", v.typ, v.Len(), v.value)
	}
	return fmt.Sprintf("%s(%v)", v.typ, v.value)
}
