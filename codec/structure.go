package codec

import (
	"fmt"

	"github.com/smnsjas/go-uaproxy/ua"
)

// DecodeStructure decodes the extension object held by v into T using the
// decoders registered in ctx.
func DecodeStructure[T Structure](v ua.Variant, ctx *Context) (T, error) {
	var zero T
	if v.IsNull() {
		return zero, nil
	}
	if v.IsArray() || v.Type() != ua.TypeExtensionObject {
		return zero, mismatch(fmt.Sprintf("%T", zero), v)
	}
	return decodeOne[T](v.Value().(ua.ExtensionObject), ctx)
}

// DecodeStructureArray decodes every element of an ExtensionObject array.
// It fails as a whole if any element fails; no partial result is returned.
func DecodeStructureArray[T Structure](v ua.Variant, ctx *Context) ([]T, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsArray() || v.Type() != ua.TypeExtensionObject {
		return nil, mismatch(fmt.Sprintf("%T", []T(nil)), v)
	}

	eos := v.Value().([]ua.ExtensionObject)
	out := make([]T, 0, len(eos))
	for i, eo := range eos {
		s, err := decodeOne[T](eo, ctx)
		if err != nil {
			return nil, fmt.Errorf("decode element %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// EncodeStructure encodes s into an ExtensionObject variant.
func EncodeStructure[T Structure](s T, ctx *Context) (ua.Variant, error) {
	eo, err := ctx.Encode(s)
	if err != nil {
		return ua.Variant{}, err
	}
	return ua.MustVariant(eo), nil
}

// EncodeStructureArray encodes every element of vs into an ExtensionObject
// array variant.
func EncodeStructureArray[T Structure](vs []T, ctx *Context) (ua.Variant, error) {
	eos := make([]ua.ExtensionObject, 0, len(vs))
	for i, s := range vs {
		eo, err := ctx.Encode(s)
		if err != nil {
			return ua.Variant{}, fmt.Errorf("encode element %d: %w", i, err)
		}
		eos = append(eos, eo)
	}
	return ua.MustVariant(eos), nil
}

func decodeOne[T Structure](eo ua.ExtensionObject, ctx *Context) (T, error) {
	var zero T
	s, err := ctx.Decode(eo)
	if err != nil {
		return zero, err
	}
	typed, ok := s.(T)
	if !ok {
		return zero, ua.WrapStatus(ua.StatusBadTypeMismatch,
			fmt.Errorf("%w: want %T, encoding %v decodes to %T", ErrTypeMismatch, zero, eo.TypeID, s))
	}
	return typed, nil
}
