// Package session defines the connection a proxy talks through.
//
// The proxy layer never opens sockets or encodes service messages itself.
// A Session is supplied by the caller and performs the three services the
// proxy needs: resolving a named child, reading an attribute and writing an
// attribute. Every method may block and must honour ctx.
//
// # Errors
//
// A service-level failure should be returned as a *ua.StatusError (or a bare
// ua.StatusCode) so that callers see the protocol status unchanged. Any other
// error is reported to callers as Bad_UnexpectedError.
//
// Package memsession provides an in-memory implementation for tests and
// tooling.
package session

import (
	"context"
	"errors"

	"github.com/smnsjas/go-uaproxy/codec"
	"github.com/smnsjas/go-uaproxy/ua"
)

// ErrNotFound may be returned by BrowseChild instead of found == false.
// Callers treat both the same way.
var ErrNotFound = errors.New("child not found")

// Reference is the target of a hierarchical reference returned by a browse.
type Reference struct {
	NodeID         ua.NodeID
	NodeClass      ua.NodeClass
	BrowseName     ua.QualifiedName
	TypeDefinition ua.NodeID
}

// Session performs services against a server.
type Session interface {
	// BrowseChild resolves the child of parent named browseName in the
	// namespace namespaceURI, following references of referenceType or its
	// subtypes. found is false when no such child exists; that is not an
	// error.
	BrowseChild(ctx context.Context, parent ua.NodeID, namespaceURI, browseName string, referenceType ua.NodeID) (ref Reference, found bool, err error)

	// Read reads one attribute. A bad status may be reported either as an
	// error or in the returned DataValue.
	Read(ctx context.Context, node ua.NodeID, attr ua.AttributeID) (ua.DataValue, error)

	// Write writes one attribute and returns the operation status.
	Write(ctx context.Context, node ua.NodeID, attr ua.AttributeID, value ua.DataValue) (ua.StatusCode, error)

	// SerializationContext returns the structure registry of the session.
	SerializationContext() *codec.Context
}
