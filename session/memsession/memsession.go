// Package memsession implements session.Session over an in-memory address
// space.
//
// It is used by tests and by the inspection tool. Besides the services it
// counts calls, can delay every call and can inject failures, which makes
// caching and error propagation observable:
//
//	s := memsession.Standard()
//	s.Fail(memsession.OpBrowse, ua.Server, errors.New("link down"), 1)
//
//	// first browse below Server fails, the next one succeeds
package memsession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smnsjas/go-uaproxy/codec"
	"github.com/smnsjas/go-uaproxy/objects"
	"github.com/smnsjas/go-uaproxy/session"
	"github.com/smnsjas/go-uaproxy/ua"
)

var (
	// ErrDuplicateNode is returned when a node id is already present.
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrUnknownNode is returned when a referenced node does not exist.
	ErrUnknownNode = errors.New("unknown node")
)

// Organizes is the reference type linking folders to their content.
var Organizes = ua.StandardNodeID(35)

// Reference types accepted as wildcards by BrowseChild.
var (
	hierarchicalReferences = ua.StandardNodeID(33)
	aggregates             = ua.StandardNodeID(44)
)

// Op identifies a session service for fault injection.
type Op int

const (
	// OpBrowse is BrowseChild.
	OpBrowse Op = iota
	// OpRead is Read.
	OpRead
	// OpWrite is Write.
	OpWrite
)

// String returns a string representation of the operation.
func (o Op) String() string {
	switch o {
	case OpBrowse:
		return "Browse"
	case OpRead:
		return "Read"
	case OpWrite:
		return "Write"
	default:
		return fmt.Sprintf("Unknown(%d)", int(o))
	}
}

// Node is a node of the in-memory address space.
type Node struct {
	ID             ua.NodeID
	Class          ua.NodeClass
	BrowseName     ua.QualifiedName
	DisplayName    ua.LocalizedText
	TypeDefinition ua.NodeID

	// Value is the Value attribute of variables.
	Value ua.Variant
	// Writable allows writes of the Value attribute.
	Writable bool
	// Unreadable makes reads of the Value attribute fail with Bad_NotReadable.
	Unreadable bool
}

type node struct {
	Node
	attrs    map[ua.AttributeID]ua.DataValue
	children []edge
}

type edge struct {
	referenceType ua.NodeID
	target        ua.NodeID
}

type faultKey struct {
	op   Op
	node ua.NodeID
}

type fault struct {
	err       error
	remaining int
}

// Session is an in-memory session.Session. It is safe for concurrent use.
type Session struct {
	mu         sync.RWMutex
	nodes      map[ua.NodeID]*node
	namespaces []string
	faults     map[faultKey]*fault

	serialization *codec.Context
	latency       time.Duration
	now           func() time.Time

	browseCalls atomic.Int64
	readCalls   atomic.Int64
	writeCalls  atomic.Int64
}

// Option configures a Session.
type Option func(*Session)

// WithLatency delays every service call by d.
func WithLatency(d time.Duration) Option {
	return func(s *Session) {
		s.latency = d
	}
}

// WithSerializationContext replaces the default serialization context, which
// knows the structures of package objects.
func WithSerializationContext(ctx *codec.Context) Option {
	return func(s *Session) {
		s.serialization = ctx
	}
}

// WithClock sets the source of server timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New returns an empty address space with only the standard namespace.
func New(opts ...Option) *Session {
	s := &Session{
		nodes:         make(map[ua.NodeID]*node),
		namespaces:    []string{ua.NamespaceURI},
		faults:        make(map[faultKey]*fault),
		serialization: objects.NewContext(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ session.Session = (*Session)(nil)

// AddNamespace registers a namespace URI and returns its index. Registering
// an existing URI returns the existing index.
func (s *Session) AddNamespace(uri string) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ns := range s.namespaces {
		if ns == uri {
			return uint16(i)
		}
	}
	s.namespaces = append(s.namespaces, uri)
	if n, ok := s.nodes[ua.StandardNodeID(ua.IDServerNamespaceArray)]; ok {
		n.Value = ua.MustVariant(append([]string(nil), s.namespaces...))
	}
	return uint16(len(s.namespaces) - 1)
}

// Namespaces returns the namespace table.
func (s *Session) Namespaces() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.namespaces))
	copy(out, s.namespaces)
	return out
}

// AddNode adds n to the address space. Expanded node ids are resolved
// against the namespace table.
func (s *Session) AddNode(n Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.localID(n.ID)
	if err != nil {
		return err
	}
	n.ID = id
	if _, ok := s.nodes[id]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateNode, id)
	}
	if n.DisplayName.Text == "" {
		n.DisplayName = ua.NewLocalizedText(n.BrowseName.Name)
	}
	s.nodes[id] = &node{Node: n, attrs: make(map[ua.AttributeID]ua.DataValue)}
	return nil
}

// AddReference adds a hierarchical reference from parent to child.
func (s *Session) AddReference(parent, referenceType, child ua.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.nodes[parent]
	if !ok {
		return fmt.Errorf("%w: parent %v", ErrUnknownNode, parent)
	}
	if _, ok := s.nodes[child]; !ok {
		return fmt.Errorf("%w: child %v", ErrUnknownNode, child)
	}
	p.children = append(p.children, edge{referenceType: referenceType, target: child})
	return nil
}

// AddChild adds n and a reference to it from parent.
func (s *Session) AddChild(parent, referenceType ua.NodeID, n Node) error {
	if err := s.AddNode(n); err != nil {
		return err
	}
	return s.AddReference(parent, referenceType, n.ID)
}

// SetValue replaces the Value attribute of a node without going through
// Write, as a server-side change would.
func (s *Session) SetValue(id ua.NodeID, v ua.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownNode, id)
	}
	n.Value = v
	return nil
}

// SetAttribute overrides a non-Value attribute.
func (s *Session) SetAttribute(id ua.NodeID, attr ua.AttributeID, dv ua.DataValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownNode, id)
	}
	n.attrs[attr] = dv
	return nil
}

// Value returns the current Value attribute of a node.
func (s *Session) Value(id ua.NodeID) (ua.Variant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return ua.Variant{}, false
	}
	return n.Value, true
}

// Fail makes the next times calls of op on node fail with err. The node is
// the parent for OpBrowse. times <= 0 fails every call until ClearFaults.
func (s *Session) Fail(op Op, node ua.NodeID, err error, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[faultKey{op: op, node: node}] = &fault{err: err, remaining: times}
}

// ClearFaults removes every injected fault.
func (s *Session) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[faultKey]*fault)
}

// BrowseCalls returns the number of BrowseChild calls.
func (s *Session) BrowseCalls() int64 { return s.browseCalls.Load() }

// ReadCalls returns the number of Read calls.
func (s *Session) ReadCalls() int64 { return s.readCalls.Load() }

// WriteCalls returns the number of Write calls.
func (s *Session) WriteCalls() int64 { return s.writeCalls.Load() }

// SerializationContext implements session.Session.
func (s *Session) SerializationContext() *codec.Context {
	return s.serialization
}

// BrowseChild implements session.Session.
func (s *Session) BrowseChild(ctx context.Context, parent ua.NodeID, namespaceURI, browseName string, referenceType ua.NodeID) (session.Reference, bool, error) {
	s.browseCalls.Add(1)
	if err := s.enter(ctx, OpBrowse, parent); err != nil {
		return session.Reference{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.nodes[parent]
	if !ok {
		return session.Reference{}, false, ua.NewStatusError(ua.StatusBadNodeIDUnknown, parent.String())
	}

	for _, e := range p.children {
		if !referenceMatches(e.referenceType, referenceType) {
			continue
		}
		child := s.nodes[e.target]
		if child.BrowseName.Name != browseName {
			continue
		}
		if namespaceURI != "" && s.namespaceURI(child.BrowseName.NamespaceIndex) != namespaceURI {
			continue
		}
		return session.Reference{
			NodeID:         child.ID,
			NodeClass:      child.Class,
			BrowseName:     child.BrowseName,
			TypeDefinition: s.expand(child.TypeDefinition),
		}, true, nil
	}
	return session.Reference{}, false, nil
}

// Read implements session.Session.
func (s *Session) Read(ctx context.Context, id ua.NodeID, attr ua.AttributeID) (ua.DataValue, error) {
	s.readCalls.Add(1)
	if err := s.enter(ctx, OpRead, id); err != nil {
		return ua.DataValue{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return ua.DataValue{Status: ua.StatusBadNodeIDUnknown}, nil
	}
	now := s.now()

	if dv, ok := n.attrs[attr]; ok {
		dv.ServerTimestamp = now
		return dv, nil
	}

	var v any
	switch attr {
	case ua.AttributeNodeID:
		v = n.ID
	case ua.AttributeNodeClass:
		v = int32(n.Class)
	case ua.AttributeBrowseName:
		v = n.BrowseName
	case ua.AttributeDisplayName:
		v = n.DisplayName
	case ua.AttributeValue:
		if n.Class != ua.NodeClassVariable {
			return ua.DataValue{Status: ua.StatusBadAttributeIDInvalid, ServerTimestamp: now}, nil
		}
		if n.Unreadable {
			return ua.DataValue{Status: ua.StatusBadNotReadable, ServerTimestamp: now}, nil
		}
		return ua.DataValue{Value: n.Value, Status: ua.StatusGood, SourceTimestamp: now, ServerTimestamp: now}, nil
	default:
		return ua.DataValue{Status: ua.StatusBadAttributeIDInvalid, ServerTimestamp: now}, nil
	}

	return ua.DataValue{Value: ua.MustVariant(v), Status: ua.StatusGood, ServerTimestamp: now}, nil
}

// Write implements session.Session. Only the Value attribute of writable
// variables can be written, and only with a value of the same builtin type
// as the current one.
func (s *Session) Write(ctx context.Context, id ua.NodeID, attr ua.AttributeID, value ua.DataValue) (ua.StatusCode, error) {
	s.writeCalls.Add(1)
	if err := s.enter(ctx, OpWrite, id); err != nil {
		return ua.StatusBadUnexpectedError, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return ua.StatusBadNodeIDUnknown, nil
	}
	if attr != ua.AttributeValue || n.Class != ua.NodeClassVariable || !n.Writable {
		return ua.StatusBadNotWritable, nil
	}
	cur := n.Value
	if !cur.IsNull() && (cur.Type() != value.Value.Type() || cur.IsArray() != value.Value.IsArray()) {
		return ua.StatusBadTypeMismatch, nil
	}
	n.Value = value.Value
	return ua.StatusGood, nil
}

// enter applies latency and injected faults.
func (s *Session) enter(ctx context.Context, op Op, id ua.NodeID) error {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := faultKey{op: op, node: id}
	f, ok := s.faults[key]
	if !ok {
		return nil
	}
	if f.remaining > 0 {
		f.remaining--
		if f.remaining == 0 {
			delete(s.faults, key)
		}
	}
	return f.err
}

func (s *Session) localID(id ua.NodeID) (ua.NodeID, error) {
	uri := id.NamespaceURI()
	if uri == "" {
		return id, nil
	}
	for i, ns := range s.namespaces {
		if ns != uri {
			continue
		}
		switch id.Type() {
		case ua.IDTypeString:
			return ua.NewStringNodeID(uint16(i), id.StringID()), nil
		case ua.IDTypeGUID:
			return ua.NewGUIDNodeID(uint16(i), id.GUIDID()), nil
		case ua.IDTypeOpaque:
			return ua.NewOpaqueNodeID(uint16(i), id.OpaqueID()), nil
		default:
			return ua.NewNumericNodeID(uint16(i), id.IntID()), nil
		}
	}
	return ua.NodeID{}, fmt.Errorf("%w: namespace %q", ErrUnknownNode, uri)
}

// expand qualifies ids outside the standard namespace by URI, as browse
// results report type definitions.
func (s *Session) expand(id ua.NodeID) ua.NodeID {
	if id.Namespace() == 0 || id.NamespaceURI() != "" {
		return id
	}
	uri := s.namespaceURI(id.Namespace())
	if uri == "" {
		return id
	}
	return id.WithNamespaceURI(uri)
}

func (s *Session) namespaceURI(index uint16) string {
	if int(index) < len(s.namespaces) {
		return s.namespaces[index]
	}
	return ""
}

func referenceMatches(actual, wanted ua.NodeID) bool {
	switch {
	case wanted.IsNull(), wanted == actual, wanted == hierarchicalReferences:
		return true
	case wanted == aggregates:
		return actual == ua.HasComponent || actual == ua.HasProperty
	}
	return false
}
