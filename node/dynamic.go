package node

import (
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/smnsjas/go-uaproxy/ua"
)

// Coerce converts a loosely typed value, as produced by decoding JSON or YAML,
// into a variant of builtin type typ. Numbers convert to any numeric type
// they fit in exactly. Strings convert to DateTime (RFC 3339), Guid, NodeId,
// QualifiedName, LocalizedText and ByteString (base64). Arrays are given as
// []any or as a slice of the matching Go type.
func Coerce(v any, typ ua.TypeID, array bool) (ua.Variant, error) {
	if !array {
		x, err := coerceScalar(v, typ)
		if err != nil {
			return ua.Variant{}, err
		}
		return newVariant(x)
	}

	items, ok := v.([]any)
	if !ok {
		out, err := ua.NewVariant(v)
		if err == nil && out.IsArray() && out.Type() == typ {
			return out, nil
		}
		return ua.Variant{}, coerceError(v, typ, true)
	}

	switch typ {
	case ua.TypeBoolean:
		return coerceArray[bool](items, typ)
	case ua.TypeSByte:
		return coerceArray[int8](items, typ)
	case ua.TypeInt16:
		return coerceArray[int16](items, typ)
	case ua.TypeUInt16:
		return coerceArray[uint16](items, typ)
	case ua.TypeInt32:
		return coerceArray[int32](items, typ)
	case ua.TypeUInt32:
		return coerceArray[uint32](items, typ)
	case ua.TypeInt64:
		return coerceArray[int64](items, typ)
	case ua.TypeUInt64:
		return coerceArray[uint64](items, typ)
	case ua.TypeFloat:
		return coerceArray[float32](items, typ)
	case ua.TypeDouble:
		return coerceArray[float64](items, typ)
	case ua.TypeString:
		return coerceArray[string](items, typ)
	case ua.TypeDateTime:
		return coerceArray[time.Time](items, typ)
	case ua.TypeGUID:
		return coerceArray[uuid.UUID](items, typ)
	case ua.TypeByteString:
		return coerceArray[[]byte](items, typ)
	case ua.TypeNodeID:
		return coerceArray[ua.NodeID](items, typ)
	case ua.TypeStatusCode:
		return coerceArray[ua.StatusCode](items, typ)
	case ua.TypeQualifiedName:
		return coerceArray[ua.QualifiedName](items, typ)
	case ua.TypeLocalizedText:
		return coerceArray[ua.LocalizedText](items, typ)
	}
	return ua.Variant{}, coerceError(v, typ, true)
}

func coerceArray[T any](items []any, typ ua.TypeID) (ua.Variant, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		x, err := coerceScalar(item, typ)
		if err != nil {
			return ua.Variant{}, err
		}
		out = append(out, x.(T))
	}
	return newVariant(out)
}

func coerceScalar(v any, typ ua.TypeID) (any, error) {
	if x, err := ua.NewVariant(v); err == nil && x.Type() == typ && !x.IsArray() {
		return x.Value(), nil
	}

	switch typ {
	case ua.TypeSByte:
		return integer[int8](v, typ)
	case ua.TypeByte:
		return integer[uint8](v, typ)
	case ua.TypeInt16:
		return integer[int16](v, typ)
	case ua.TypeUInt16:
		return integer[uint16](v, typ)
	case ua.TypeInt32:
		return integer[int32](v, typ)
	case ua.TypeUInt32:
		return integer[uint32](v, typ)
	case ua.TypeInt64:
		return integer[int64](v, typ)
	case ua.TypeUInt64:
		return integer[uint64](v, typ)
	case ua.TypeStatusCode:
		n, err := integer[uint32](v, typ)
		if err != nil {
			return nil, err
		}
		return ua.StatusCode(n), nil
	case ua.TypeFloat:
		if f, ok := number(v); ok {
			if math.Abs(f) > math.MaxFloat32 {
				return nil, outOfRange(v, typ)
			}
			return float32(f), nil
		}
	case ua.TypeDouble:
		if f, ok := number(v); ok {
			return f, nil
		}
	}

	s, ok := v.(string)
	if !ok {
		return nil, coerceError(v, typ, false)
	}
	switch typ {
	case ua.TypeDateTime:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, ua.WrapStatus(ua.StatusBadTypeMismatch, err)
		}
		return t, nil
	case ua.TypeGUID:
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, ua.WrapStatus(ua.StatusBadTypeMismatch, err)
		}
		return u, nil
	case ua.TypeByteString:
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, ua.WrapStatus(ua.StatusBadTypeMismatch, err)
		}
		return b, nil
	case ua.TypeNodeID:
		n, err := ua.ParseNodeID(s)
		if err != nil {
			return nil, ua.WrapStatus(ua.StatusBadTypeMismatch, err)
		}
		return n, nil
	case ua.TypeQualifiedName:
		return ua.ParseQualifiedName(s), nil
	case ua.TypeLocalizedText:
		return ua.NewLocalizedText(s), nil
	}
	return nil, coerceError(v, typ, false)
}

type integerType interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

func integer[T integerType](v any, typ ua.TypeID) (T, error) {
	f, ok := number(v)
	if !ok || f != math.Trunc(f) {
		return 0, coerceError(v, typ, false)
	}
	n := T(f)
	if float64(n) != f {
		return 0, outOfRange(v, typ)
	}
	return n, nil
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

func newVariant(v any) (ua.Variant, error) {
	out, err := ua.NewVariant(v)
	if err != nil {
		return ua.Variant{}, ua.WrapStatus(ua.StatusBadTypeMismatch, err)
	}
	return out, nil
}

func coerceError(v any, typ ua.TypeID, array bool) error {
	want := typ.String()
	if array {
		want += "[]"
	}
	return ua.NewStatusError(ua.StatusBadTypeMismatch, fmt.Sprintf("cannot convert %T to %s", v, want))
}

func outOfRange(v any, typ ua.TypeID) error {
	return ua.NewStatusError(ua.StatusBadOutOfRange, fmt.Sprintf("%v does not fit in %s", v, typ))
}
