package codec

import "github.com/smnsjas/go-uaproxy/ua"

// ToNative converts v into a plain Go value without knowing its type up
// front. Structures are decoded through ctx, arrays become []any.
func ToNative(v ua.Variant, ctx *Context) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if v.Type() != ua.TypeExtensionObject {
		return v.Value(), nil
	}

	if !v.IsArray() {
		return ctx.Decode(v.Value().(ua.ExtensionObject))
	}

	eos := v.Value().([]ua.ExtensionObject)
	out := make([]any, 0, len(eos))
	for _, eo := range eos {
		s, err := ctx.Decode(eo)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// FromNative converts a plain Go value into a variant. Structures are encoded
// through ctx.
func FromNative(v any, ctx *Context) (ua.Variant, error) {
	switch x := v.(type) {
	case Structure:
		return EncodeStructure(x, ctx)
	case []Structure:
		return EncodeStructureArray(x, ctx)
	}
	out, err := ua.NewVariant(v)
	if err != nil {
		return ua.Variant{}, ua.WrapStatus(ua.StatusBadTypeMismatch, err)
	}
	return out, nil
}
