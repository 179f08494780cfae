package node

import (
	"context"
	"fmt"

	"github.com/smnsjas/go-uaproxy/catalog"
	"github.com/smnsjas/go-uaproxy/codec"
	"github.com/smnsjas/go-uaproxy/future"
	"github.com/smnsjas/go-uaproxy/ua"
)

// Typed is a proxy viewed through the descriptor table of its type.
type Typed struct {
	*Proxy
	Table *catalog.Table
}

// As views p through t. No check is made that p is of type t.
func As(p *Proxy, t *catalog.Table) Typed {
	return Typed{Proxy: p, Table: t}
}

// Cast views p through the table of its type definition. It fails when the
// type definition is unknown or not in the catalog.
func Cast(p *Proxy) (Typed, bool) {
	if p == nil || p.typeDefinition.IsNull() {
		return Typed{}, false
	}
	t, ok := p.env.catalog.ByType(p.typeDefinition)
	if !ok {
		return Typed{}, false
	}
	return Typed{Proxy: p, Table: t}, true
}

// Descriptor returns the descriptor of the member browseName. Unknown names
// fail with Bad_NotFound.
func (t Typed) Descriptor(browseName string) (catalog.Descriptor, error) {
	d, ok := t.Table.Lookup(browseName)
	if !ok {
		return catalog.Descriptor{}, ua.WrapStatus(ua.StatusBadNotFound,
			fmt.Errorf("%w: %s on %s", catalog.ErrUnknownMember, browseName, t.Table.Name()))
	}
	return d, nil
}

// Child resolves the member browseName declared by the table. The future
// semantics are those of Proxy.Child: nil when the server has no such node.
func (t Typed) Child(ctx context.Context, browseName string) (*Proxy, error) {
	d, err := t.Descriptor(browseName)
	if err != nil {
		return nil, err
	}
	return t.Proxy.Child(ctx, KeyOf(d))
}

// TypedChild resolves the member browseName and views it through the table
// of its declared type definition.
func (t Typed) TypedChild(ctx context.Context, browseName string) (Typed, error) {
	d, err := t.Descriptor(browseName)
	if err != nil {
		return Typed{}, err
	}
	child, err := t.Proxy.Child(ctx, KeyOf(d))
	if err != nil {
		return Typed{}, err
	}
	if child == nil {
		return Typed{}, ua.WrapStatus(ua.StatusBadNotFound,
			fmt.Errorf("%w: %s below %s", ErrMemberNotFound, browseName, t.Proxy))
	}
	if typed, ok := Cast(child); ok {
		return typed, nil
	}
	table, ok := t.env.catalog.ByType(d.TypeDefinition)
	if !ok {
		return Typed{}, ua.NewStatusError(ua.StatusBadDataTypeIDUnknown,
			fmt.Sprintf("no table for type %s of %s", d.TypeDefinition, browseName))
	}
	return As(child, table), nil
}

// ReadDynamic reads the member browseName and returns its value as a plain Go
// value: structures decoded to their registered types, arrays of structures
// as []any, other values as held by the variant.
func (t Typed) ReadDynamic(ctx context.Context, browseName string) (any, error) {
	d, err := t.Descriptor(browseName)
	if err != nil {
		return nil, err
	}
	if d.Kind == catalog.KindNone {
		return nil, ua.NewStatusError(ua.StatusBadAttributeIDInvalid, browseName+" has no value")
	}
	m, err := future.Block(ctx, t.memberAsync(ctx, KeyOf(d)))
	if err != nil {
		return nil, err
	}
	dv, err := m.ReadAttribute(ctx, ua.AttributeValue)
	if err != nil {
		return nil, err
	}
	v, err := codec.ToNative(dv.Value, t.env.Serialization())
	if err != nil {
		return nil, ua.Translate(err)
	}
	return v, nil
}

// WriteDynamic converts v to the builtin type declared for the member
// browseName and writes it. Numbers are converted between Go numeric types
// when the value fits.
func (t Typed) WriteDynamic(ctx context.Context, browseName string, v any) error {
	d, err := t.Descriptor(browseName)
	if err != nil {
		return err
	}
	typ, ok := d.BuiltinType()
	if !ok || typ == ua.TypeExtensionObject {
		return ua.NewStatusError(ua.StatusBadNotWritable,
			fmt.Sprintf("%s cannot be written from a plain value", browseName))
	}
	variant, err := Coerce(v, typ, d.IsArray())
	if err != nil {
		return err
	}
	m, err := future.Block(ctx, t.memberAsync(ctx, KeyOf(d)))
	if err != nil {
		return err
	}
	_, err = m.WriteAttribute(ctx, ua.AttributeValue, ua.NewDataValue(variant))
	return err
}
