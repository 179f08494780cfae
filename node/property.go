package node

import (
	"context"
	"fmt"

	"github.com/smnsjas/go-uaproxy/catalog"
	"github.com/smnsjas/go-uaproxy/codec"
	"github.com/smnsjas/go-uaproxy/future"
	"github.com/smnsjas/go-uaproxy/resolver"
	"github.com/smnsjas/go-uaproxy/ua"
)

// Property is typed access to the Value attribute of a well-known member.
// It pairs the member key with the conversion between variants and T.
type Property[T any] struct {
	Key resolver.MemberKey

	decode func(v ua.Variant, ctx *codec.Context) (T, error)
	encode func(v T, ctx *codec.Context) (ua.Variant, error)
}

// Name returns the browse name of the member.
func (p Property[T]) Name() string { return p.Key.BrowseName }

// Decode converts a variant into T.
func (p Property[T]) Decode(v ua.Variant, ctx *codec.Context) (T, error) {
	return p.decode(v, ctx)
}

// Encode converts T into a variant.
func (p Property[T]) Encode(v T, ctx *codec.Context) (ua.Variant, error) {
	return p.encode(v, ctx)
}

// KeyOf returns the member key described by d.
func KeyOf(d catalog.Descriptor) resolver.MemberKey {
	return resolver.MemberKey{
		NamespaceURI:  d.NamespaceURI,
		BrowseName:    d.BrowseName,
		ExpectedType:  d.TypeDefinition,
		ReferenceType: d.ReferenceType,
	}
}

// Primitive returns a property holding a builtin scalar.
func Primitive[T codec.Primitive](d catalog.Descriptor) Property[T] {
	return Property[T]{
		Key: KeyOf(d),
		decode: func(v ua.Variant, _ *codec.Context) (T, error) {
			return codec.DecodePrimitive[T](v)
		},
		encode: func(v T, _ *codec.Context) (ua.Variant, error) {
			return codec.EncodePrimitive(v)
		},
	}
}

// PrimitiveArray returns a property holding an array of a builtin type.
func PrimitiveArray[T codec.Primitive](d catalog.Descriptor) Property[[]T] {
	return Property[[]T]{
		Key: KeyOf(d),
		decode: func(v ua.Variant, _ *codec.Context) ([]T, error) {
			return codec.DecodePrimitiveArray[T](v)
		},
		encode: func(v []T, _ *codec.Context) (ua.Variant, error) {
			return codec.EncodePrimitiveArray(v)
		},
	}
}

// Enum returns a property holding an enumeration. Unknown ordinals decode to
// None; encoding None fails.
func Enum[E codec.Enumeration](d catalog.Descriptor) Property[codec.Option[E]] {
	return Property[codec.Option[E]]{
		Key: KeyOf(d),
		decode: func(v ua.Variant, _ *codec.Context) (codec.Option[E], error) {
			return codec.DecodeEnum[E](v), nil
		},
		encode: func(v codec.Option[E], _ *codec.Context) (ua.Variant, error) {
			return codec.EncodeEnumOption(v)
		},
	}
}

// Structure returns a property holding a structure.
func Structure[S codec.Structure](d catalog.Descriptor) Property[S] {
	return Property[S]{
		Key: KeyOf(d),
		decode: func(v ua.Variant, ctx *codec.Context) (S, error) {
			return codec.DecodeStructure[S](v, ctx)
		},
		encode: func(v S, ctx *codec.Context) (ua.Variant, error) {
			return codec.EncodeStructure(v, ctx)
		},
	}
}

// StructureArray returns a property holding an array of structures.
func StructureArray[S codec.Structure](d catalog.Descriptor) Property[[]S] {
	return Property[[]S]{
		Key: KeyOf(d),
		decode: func(v ua.Variant, ctx *codec.Context) ([]S, error) {
			return codec.DecodeStructureArray[S](v, ctx)
		},
		encode: func(v []S, ctx *codec.Context) (ua.Variant, error) {
			return codec.EncodeStructureArray(v, ctx)
		},
	}
}

// GetAsync decodes the cached Value of the member of p named by prop.
func GetAsync[T any](ctx context.Context, p *Proxy, prop Property[T]) *future.Future[T] {
	return future.Then(p.memberAsync(ctx, prop.Key), func(m *Proxy) (T, error) {
		return localValue(m, prop)
	})
}

// Get is the blocking form of GetAsync.
func Get[T any](ctx context.Context, p *Proxy, prop Property[T]) (T, error) {
	return future.Block(ctx, GetAsync(ctx, p, prop))
}

// SetAsync encodes v into the cached Value of the member without contacting
// the server.
func SetAsync[T any](ctx context.Context, p *Proxy, prop Property[T], v T) *future.Future[struct{}] {
	return future.Then(p.memberAsync(ctx, prop.Key), func(m *Proxy) (struct{}, error) {
		return struct{}{}, setLocalValue(m, prop, v)
	})
}

// Set is the blocking form of SetAsync.
func Set[T any](ctx context.Context, p *Proxy, prop Property[T], v T) error {
	_, err := future.Block(ctx, SetAsync(ctx, p, prop, v))
	return err
}

// ReadAsync reads the Value of the member from the server, caches it and
// decodes it.
func ReadAsync[T any](ctx context.Context, p *Proxy, prop Property[T]) *future.Future[T] {
	return future.Compose(p.memberAsync(ctx, prop.Key), func(m *Proxy) *future.Future[T] {
		return readValueAsync(ctx, m, prop)
	})
}

// Read is the blocking form of ReadAsync.
func Read[T any](ctx context.Context, p *Proxy, prop Property[T]) (T, error) {
	return future.Block(ctx, ReadAsync(ctx, p, prop))
}

// WriteAsync encodes v and writes it to the Value of the member. On success
// the written value is cached.
func WriteAsync[T any](ctx context.Context, p *Proxy, prop Property[T], v T) *future.Future[struct{}] {
	return future.Compose(p.memberAsync(ctx, prop.Key), func(m *Proxy) *future.Future[struct{}] {
		return writeValueAsync(ctx, m, prop, v)
	})
}

// Write is the blocking form of WriteAsync.
func Write[T any](ctx context.Context, p *Proxy, prop Property[T], v T) error {
	_, err := future.Block(ctx, WriteAsync(ctx, p, prop, v))
	return err
}

// GetValue decodes the cached Value attribute of p itself. Only the
// conversion of prop is used, so it may be built from a zero Descriptor.
func GetValue[T any](p *Proxy, prop Property[T]) (T, error) {
	v, err := localValue(p, prop)
	if err != nil {
		return v, ua.Translate(err)
	}
	return v, nil
}

// ReadValue reads and decodes the Value attribute of p itself.
func ReadValue[T any](ctx context.Context, p *Proxy, prop Property[T]) (T, error) {
	return future.Block(ctx, readValueAsync(ctx, p, prop))
}

// WriteValue encodes v and writes it to the Value attribute of p itself.
func WriteValue[T any](ctx context.Context, p *Proxy, prop Property[T], v T) error {
	_, err := future.Block(ctx, writeValueAsync(ctx, p, prop, v))
	return err
}

func localValue[T any](m *Proxy, prop Property[T]) (T, error) {
	dv, ok := m.LocalAttribute(ua.AttributeValue)
	if !ok {
		var zero T
		return zero, ua.WrapStatus(ua.StatusBadWaitingForInitialData,
			fmt.Errorf("%w: %s", ErrUnset, m))
	}
	return prop.decode(dv.Value, m.env.Serialization())
}

func setLocalValue[T any](m *Proxy, prop Property[T], v T) error {
	variant, err := prop.encode(v, m.env.Serialization())
	if err != nil {
		return err
	}
	m.SetLocalAttribute(ua.AttributeValue, ua.NewDataValue(variant))
	return nil
}

func readValueAsync[T any](ctx context.Context, m *Proxy, prop Property[T]) *future.Future[T] {
	return future.Then(m.ReadAttributeAsync(ctx, ua.AttributeValue), func(dv ua.DataValue) (T, error) {
		return prop.decode(dv.Value, m.env.Serialization())
	})
}

func writeValueAsync[T any](ctx context.Context, m *Proxy, prop Property[T], v T) *future.Future[struct{}] {
	variant, err := prop.encode(v, m.env.Serialization())
	if err != nil {
		return future.Failed[struct{}](err)
	}
	return future.Then(m.WriteAttributeAsync(ctx, ua.AttributeValue, ua.NewDataValue(variant)),
		func(ua.StatusCode) (struct{}, error) {
			return struct{}{}, nil
		})
}
