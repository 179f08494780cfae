package codec

import (
	"math"

	"github.com/smnsjas/go-uaproxy/ua"
)

// Enumeration is a named int32 type with a fixed set of defined values.
type Enumeration interface {
	~int32
	// IsValid reports whether the receiver is a defined value.
	IsValid() bool
}

// DecodeEnum maps an integer ordinal onto E. Any integer width is accepted.
// It returns None when the payload is not an integer scalar or the ordinal
// is not a defined value of E.
func DecodeEnum[E Enumeration](v ua.Variant) Option[E] {
	if v.IsArray() {
		return None[E]()
	}
	ord, ok := ordinal(v.Value())
	if !ok || ord < math.MinInt32 || ord > math.MaxInt32 {
		return None[E]()
	}
	e := E(ord)
	if !e.IsValid() {
		return None[E]()
	}
	return Some(e)
}

// EncodeEnum wraps the ordinal of e in an Int32 variant.
func EncodeEnum[E Enumeration](e E) ua.Variant {
	return ua.MustVariant(int32(e))
}

// EncodeEnumOption encodes a present option and fails for None.
func EncodeEnumOption[E Enumeration](o Option[E]) (ua.Variant, error) {
	e, ok := o.Get()
	if !ok {
		return ua.Variant{}, ua.NewStatusError(ua.StatusBadEncodingError, "cannot encode an absent enumeration value")
	}
	return EncodeEnum(e), nil
}

func ordinal(v any) (int64, bool) {
	switch x := v.(type) {
	case int8:
		return int64(x), true
	case uint8:
		return int64(x), true
	case int16:
		return int64(x), true
	case uint16:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint32:
		return int64(x), true
	case int64:
		return x, true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}
