package codec

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smnsjas/go-uaproxy/ua"
)

// Primitive is the set of Go types a variant can hold as a scalar.
// []byte is a ByteString scalar.
type Primitive interface {
	bool | int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 |
		float32 | float64 | string | time.Time | uuid.UUID | []byte |
		ua.NodeID | ua.StatusCode | ua.QualifiedName | ua.LocalizedText
}

// DecodePrimitive returns the scalar held by v. The variant must hold exactly
// T; no numeric widening is performed.
func DecodePrimitive[T Primitive](v ua.Variant) (T, error) {
	var zero T
	if v.IsNull() {
		return zero, nil
	}
	if v.IsArray() {
		return zero, mismatch(fmt.Sprintf("%T", zero), v)
	}
	x, ok := v.Value().(T)
	if !ok {
		return zero, mismatch(fmt.Sprintf("%T", zero), v)
	}
	return x, nil
}

// EncodePrimitive wraps v in a variant.
func EncodePrimitive[T Primitive](v T) (ua.Variant, error) {
	out, err := ua.NewVariant(v)
	if err != nil {
		return ua.Variant{}, ua.WrapStatus(ua.StatusBadEncodingError, fmt.Errorf("%w: %w", ErrEncode, err))
	}
	return out, nil
}

// DecodePrimitiveArray returns the array held by v. A null variant decodes to
// a nil slice.
func DecodePrimitiveArray[T Primitive](v ua.Variant) ([]T, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, mismatch(fmt.Sprintf("%T", []T(nil)), v)
	}
	x, ok := v.Value().([]T)
	if !ok {
		return nil, mismatch(fmt.Sprintf("%T", []T(nil)), v)
	}
	out := make([]T, len(x))
	copy(out, x)
	return out, nil
}

// EncodePrimitiveArray wraps vs in an array variant. Byte slices are encoded
// as a ByteString scalar; use DecodePrimitive[[]byte] to read them back.
func EncodePrimitiveArray[T Primitive](vs []T) (ua.Variant, error) {
	out, err := ua.NewVariant(vs)
	if err != nil {
		return ua.Variant{}, ua.WrapStatus(ua.StatusBadEncodingError, fmt.Errorf("%w: %w", ErrEncode, err))
	}
	return out, nil
}
