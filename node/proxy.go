// Package node implements the client-side proxy of a server node.
//
// A Proxy caches the attributes it has read or written and memoises the
// resolution of its named children. Typed access to well-known children goes
// through Property values built from catalog descriptors:
//
//	env := node.NewEnv(sess)
//	server := node.New(env, ua.Server)
//
//	level := node.Primitive[byte](catalog.ServerType.MustLookup("ServiceLevel"))
//	v, err := node.Read(ctx, server, level)   // network read, updates the cache
//	v, err = node.Get(ctx, server, level)     // cached value only
//
// # Access Patterns
//
// Get and Set touch the cached Value attribute of the member only. Read and
// Write go to the server; a successful Write also updates the cache. Every
// operation has an Async form returning a *future.Future; the blocking forms
// return a *ua.StatusError on failure.
//
// # Errors
//
// A missing member fails property access with Bad_NotFound (ErrMemberNotFound).
// Getting a value that was never read nor set fails with
// Bad_WaitingForInitialData (ErrUnset).
package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/smnsjas/go-uaproxy/future"
	"github.com/smnsjas/go-uaproxy/resolver"
	"github.com/smnsjas/go-uaproxy/session"
	"github.com/smnsjas/go-uaproxy/ua"
	"github.com/zhangyunhao116/skipmap"
)

var (
	// ErrMemberNotFound is returned when a property's member does not exist.
	ErrMemberNotFound = errors.New("member not found")
	// ErrUnset is returned when a cached value is requested before any read or set.
	ErrUnset = errors.New("value not read or set")
)

// Proxy is the client-side view of one node. It is safe for concurrent use.
type Proxy struct {
	env            *Env
	id             ua.NodeID
	class          ua.NodeClass
	browseName     ua.QualifiedName
	typeDefinition ua.NodeID

	slots   *skipmap.OrderedMap[ua.AttributeID, ua.DataValue]
	members *resolver.Resolver[*Proxy]
}

// New returns a proxy for id. Its class, browse name and type definition are
// unknown until read.
func New(env *Env, id ua.NodeID) *Proxy {
	return newProxy(env, session.Reference{NodeID: id})
}

// FromReference returns a proxy for the target of a browse result. The
// identity attributes carried by ref are cached.
func FromReference(env *Env, ref session.Reference) *Proxy {
	p := newProxy(env, ref)
	p.SetLocalAttribute(ua.AttributeNodeID, ua.NewDataValue(ua.MustVariant(ref.NodeID)))
	if ref.NodeClass != ua.NodeClassUnspecified {
		p.SetLocalAttribute(ua.AttributeNodeClass, ua.NewDataValue(ua.MustVariant(int32(ref.NodeClass))))
	}
	if ref.BrowseName.Name != "" {
		p.SetLocalAttribute(ua.AttributeBrowseName, ua.NewDataValue(ua.MustVariant(ref.BrowseName)))
	}
	return p
}

func newProxy(env *Env, ref session.Reference) *Proxy {
	p := &Proxy{
		env:            env,
		id:             ref.NodeID,
		class:          ref.NodeClass,
		browseName:     ref.BrowseName,
		typeDefinition: ref.TypeDefinition,
		slots:          skipmap.New[ua.AttributeID, ua.DataValue](),
	}
	p.members = resolver.New(env.session, ref.NodeID, func(child session.Reference) (*Proxy, error) {
		return FromReference(env, child), nil
	}, env.resolverOpts...)
	return p
}

// ID returns the node id.
func (p *Proxy) ID() ua.NodeID { return p.id }

// NodeClass returns the node class, NodeClassUnspecified if unknown.
func (p *Proxy) NodeClass() ua.NodeClass { return p.class }

// BrowseName returns the browse name, empty if unknown.
func (p *Proxy) BrowseName() ua.QualifiedName { return p.browseName }

// TypeDefinition returns the type definition, the null id if unknown.
func (p *Proxy) TypeDefinition() ua.NodeID { return p.typeDefinition }

// Env returns the environment of the proxy.
func (p *Proxy) Env() *Env { return p.env }

// Members returns the member resolver of the proxy.
func (p *Proxy) Members() *resolver.Resolver[*Proxy] { return p.members }

func (p *Proxy) String() string {
	if p.browseName.Name == "" {
		return p.id.String()
	}
	return fmt.Sprintf("%s (%s)", p.browseName, p.id)
}

// ReadAttributeAsync reads attr from the server and caches the result.
func (p *Proxy) ReadAttributeAsync(ctx context.Context, attr ua.AttributeID) *future.Future[ua.DataValue] {
	return future.Then(p.env.accessor.ReadAsync(ctx, p.id, attr), func(dv ua.DataValue) (ua.DataValue, error) {
		p.slots.Store(attr, dv)
		return dv, nil
	})
}

// ReadAttribute is the blocking form of ReadAttributeAsync.
func (p *Proxy) ReadAttribute(ctx context.Context, attr ua.AttributeID) (ua.DataValue, error) {
	return future.Block(ctx, p.ReadAttributeAsync(ctx, attr))
}

// WriteAttributeAsync writes value to attr and, on success, caches it.
func (p *Proxy) WriteAttributeAsync(ctx context.Context, attr ua.AttributeID, value ua.DataValue) *future.Future[ua.StatusCode] {
	return future.Then(p.env.accessor.WriteAsync(ctx, p.id, attr, value), func(code ua.StatusCode) (ua.StatusCode, error) {
		p.slots.Store(attr, value)
		return code, nil
	})
}

// WriteAttribute is the blocking form of WriteAttributeAsync.
func (p *Proxy) WriteAttribute(ctx context.Context, attr ua.AttributeID, value ua.DataValue) (ua.StatusCode, error) {
	return future.Block(ctx, p.WriteAttributeAsync(ctx, attr, value))
}

// LocalAttribute returns the cached value of attr.
func (p *Proxy) LocalAttribute(attr ua.AttributeID) (ua.DataValue, bool) {
	return p.slots.Load(attr)
}

// SetLocalAttribute replaces the cached value of attr without contacting the
// server.
func (p *Proxy) SetLocalAttribute(attr ua.AttributeID, value ua.DataValue) {
	p.slots.Store(attr, value)
}

// LocalAttributes calls fn for every cached attribute in id order.
func (p *Proxy) LocalAttributes(fn func(attr ua.AttributeID, value ua.DataValue) bool) {
	p.slots.Range(fn)
}

// ChildAsync resolves the member named by key. The future yields nil when no
// such member exists.
func (p *Proxy) ChildAsync(ctx context.Context, key resolver.MemberKey) *future.Future[*Proxy] {
	return p.members.ResolveAsync(ctx, key)
}

// Child is the blocking form of ChildAsync.
func (p *Proxy) Child(ctx context.Context, key resolver.MemberKey) (*Proxy, error) {
	return future.Block(ctx, p.ChildAsync(ctx, key))
}

// ChildByName resolves a member by browse name over any hierarchical
// reference. An empty namespaceURI matches any namespace.
func (p *Proxy) ChildByName(ctx context.Context, namespaceURI, browseName string) (*Proxy, error) {
	return p.Child(ctx, resolver.MemberKey{NamespaceURI: namespaceURI, BrowseName: browseName})
}

// MemberAsync resolves key like ChildAsync but fails with ErrMemberNotFound
// (Bad_NotFound) when the member does not exist.
func (p *Proxy) MemberAsync(ctx context.Context, key resolver.MemberKey) *future.Future[*Proxy] {
	return p.memberAsync(ctx, key)
}

// Member is the blocking form of MemberAsync.
func (p *Proxy) Member(ctx context.Context, key resolver.MemberKey) (*Proxy, error) {
	return future.Block(ctx, p.memberAsync(ctx, key))
}

func (p *Proxy) memberAsync(ctx context.Context, key resolver.MemberKey) *future.Future[*Proxy] {
	return future.Then(p.ChildAsync(ctx, key), func(m *Proxy) (*Proxy, error) {
		if m == nil {
			return nil, ua.WrapStatus(ua.StatusBadNotFound,
				fmt.Errorf("%w: %s below %s", ErrMemberNotFound, key, p))
		}
		return m, nil
	})
}
