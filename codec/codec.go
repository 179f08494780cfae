// Package codec converts between wire-level variants and native Go values.
//
// A property access always goes through one of four shapes:
//
//   - primitives: the variant must hold exactly the requested Go type
//   - enumerations: integer ordinals mapped onto a named int32 type
//   - structures: an ExtensionObject whose binary body is decoded through a
//     serialization Context
//   - arrays of any of the above, decoded atomically
//
// # Failure Policy
//
// Scalar and structure mismatches fail with Bad_TypeMismatch (ErrTypeMismatch).
// Malformed structure bodies and unknown encodings fail with
// Bad_DecodingError (ErrDecode). Enumerations never fail: a non-integer
// payload or an ordinal with no defined value decodes to None.
//
// A null variant decodes to the zero value of the requested type.
//
// # Structures
//
// Structured types implement Structure and register a decoder for their
// binary encoding id:
//
//	ctx := codec.NewContext()
//	ctx.Register(objects.RangeEncodingID, objects.DecodeRange)
//
//	r, err := codec.DecodeStructure[objects.Range](v, ctx)
package codec

import (
	"errors"
	"fmt"
	"sync"

	"github.com/smnsjas/go-uaproxy/ua"
)

// DefaultMaxDepth is the default maximum nesting depth for structure bodies.
const DefaultMaxDepth = 100

var (
	// ErrTypeMismatch is returned when a value does not have the requested type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrDecode is returned when a structure body cannot be decoded.
	ErrDecode = errors.New("decode failed")
	// ErrEncode is returned when a value cannot be encoded.
	ErrEncode = errors.New("encode failed")
	// ErrTruncated is returned when a structure body ends early.
	ErrTruncated = errors.New("truncated body")
	// ErrUnknownEncoding is returned for an encoding id with no registered decoder.
	ErrUnknownEncoding = errors.New("unknown structure encoding")
	// ErrMaxDepth is returned when nesting exceeds the context limit.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")
)

// Structure is a native structured value with a binary encoding.
type Structure interface {
	// EncodingID returns the node id of the binary encoding.
	EncodingID() ua.NodeID
	// Encode writes the binary body.
	Encode(e *Encoder) error
}

// StructDecoder decodes a binary body into a Structure.
type StructDecoder func(d *Decoder) (Structure, error)

// Context is the serialization context of a session: the registry of known
// structure encodings plus encoding limits. It is safe for concurrent use.
// A nil *Context has no registered encodings and the default limits.
type Context struct {
	mu       sync.RWMutex
	decoders map[ua.NodeID]StructDecoder
	maxDepth int
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithMaxDepth sets the maximum structure nesting depth.
func WithMaxDepth(depth int) ContextOption {
	return func(c *Context) {
		c.maxDepth = depth
	}
}

// NewContext returns an empty serialization context.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		decoders: make(map[ua.NodeID]StructDecoder),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds the decoder for an encoding id, replacing any previous one.
func (c *Context) Register(encodingID ua.NodeID, dec StructDecoder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decoders[encodingID] = dec
}

// Lookup returns the decoder for an encoding id.
func (c *Context) Lookup(encodingID ua.NodeID) (StructDecoder, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	dec, ok := c.decoders[encodingID]
	return dec, ok
}

// MaxDepth returns the maximum structure nesting depth.
func (c *Context) MaxDepth() int {
	if c == nil {
		return DefaultMaxDepth
	}
	return c.maxDepth
}

// Decode decodes an extension object through its registered decoder.
// The whole body must be consumed.
func (c *Context) Decode(eo ua.ExtensionObject) (Structure, error) {
	dec, ok := c.Lookup(eo.TypeID)
	if !ok {
		return nil, decodeError(fmt.Errorf("%w: %w %v", ErrDecode, ErrUnknownEncoding, eo.TypeID))
	}

	d := NewDecoder(eo.Body, c.MaxDepth())
	defer d.Close()

	var s Structure
	err := d.Nested(func() error {
		var err error
		s, err = dec(d)
		return err
	})
	if err != nil {
		return nil, decodeError(fmt.Errorf("%w: %v: %w", ErrDecode, eo.TypeID, err))
	}
	if n := d.Remaining(); n != 0 {
		return nil, decodeError(fmt.Errorf("%w: %v: %d trailing bytes", ErrDecode, eo.TypeID, n))
	}
	return s, nil
}

// Encode encodes s into an extension object.
func (c *Context) Encode(s Structure) (ua.ExtensionObject, error) {
	e := NewEncoder(c.MaxDepth())
	defer e.Close()

	if err := e.Nested(func() error { return s.Encode(e) }); err != nil {
		return ua.ExtensionObject{}, ua.WrapStatus(ua.StatusBadEncodingError,
			fmt.Errorf("%w: %v: %w", ErrEncode, s.EncodingID(), err))
	}
	return ua.ExtensionObject{TypeID: s.EncodingID(), Body: e.Bytes()}, nil
}

func decodeError(err error) error {
	return ua.WrapStatus(ua.StatusBadDecodingError, err)
}

func mismatch(want string, v ua.Variant) error {
	kind := v.Type().String()
	if v.IsArray() {
		kind += "[]"
	}
	return ua.WrapStatus(ua.StatusBadTypeMismatch, fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, want, kind))
}
