package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smnsjas/go-uaproxy/ua"
)

// ticksEpochOffset is the number of 100ns ticks between 1601-01-01 and the
// Unix epoch.
const ticksEpochOffset = 116444736000000000

// NodeID binary encoding bytes.
const (
	nodeIDTwoByte    = 0x00
	nodeIDFourByte   = 0x01
	nodeIDNumeric    = 0x02
	nodeIDString     = 0x03
	nodeIDGUID       = 0x04
	nodeIDByteString = 0x05
	nodeIDURIFlag    = 0x80
	nodeIDServerFlag = 0x40
)

// Encoder writes structure bodies in the binary encoding: little endian
// integers, int32 length-prefixed strings (-1 for null), 100ns DateTime ticks
// since 1601 and mixed-endian GUIDs.
//
// Encoders are pooled. Obtain one with NewEncoder and release it with Close.
type Encoder struct {
	buf      bytes.Buffer
	scratch  [8]byte
	depth    int
	maxDepth int
	err      error
}

var encoderPool = sync.Pool{
	New: func() interface{} {
		return &Encoder{}
	},
}

// NewEncoder returns an empty encoder from the pool.
func NewEncoder(maxDepth int) *Encoder {
	e := encoderPool.Get().(*Encoder)
	e.Reset()
	e.maxDepth = maxDepth
	return e
}

// Close returns the encoder to the pool. The encoder must not be used after.
func (e *Encoder) Close() {
	if e == nil {
		return
	}
	e.Reset()
	encoderPool.Put(e)
}

// Reset clears the encoder for reuse.
func (e *Encoder) Reset() {
	e.buf.Reset()
	e.depth = 0
	e.err = nil
}

// Bytes returns a copy of the encoded bytes.
func (e *Encoder) Bytes() []byte {
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	return out
}

// Err returns the first error encountered.
func (e *Encoder) Err() error { return e.err }

// Nested runs fn one nesting level deeper, failing once the maximum depth is
// exceeded.
func (e *Encoder) Nested(fn func() error) error {
	if e.err != nil {
		return e.err
	}
	if e.maxDepth > 0 && e.depth >= e.maxDepth {
		e.err = fmt.Errorf("%w: %d", ErrMaxDepth, e.maxDepth)
		return e.err
	}
	e.depth++
	defer func() { e.depth-- }()
	if err := fn(); err != nil && e.err == nil {
		e.err = err
	}
	return e.err
}

// WriteBool writes a boolean as one byte.
func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

// WriteByte writes one byte. It never fails.
func (e *Encoder) WriteByte(v byte) error {
	return e.buf.WriteByte(v)
}

func (e *Encoder) WriteSByte(v int8) { e.buf.WriteByte(byte(v)) }

func (e *Encoder) WriteUint16(v uint16) {
	binary.LittleEndian.PutUint16(e.scratch[:2], v)
	e.buf.Write(e.scratch[:2])
}

func (e *Encoder) WriteInt16(v int16) { e.WriteUint16(uint16(v)) }

func (e *Encoder) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(e.scratch[:4], v)
	e.buf.Write(e.scratch[:4])
}

func (e *Encoder) WriteInt32(v int32) { e.WriteUint32(uint32(v)) }

func (e *Encoder) WriteUint64(v uint64) {
	binary.LittleEndian.PutUint64(e.scratch[:8], v)
	e.buf.Write(e.scratch[:8])
}

func (e *Encoder) WriteInt64(v int64) { e.WriteUint64(uint64(v)) }

func (e *Encoder) WriteFloat(v float32) { e.WriteUint32(math.Float32bits(v)) }

func (e *Encoder) WriteDouble(v float64) { e.WriteUint64(math.Float64bits(v)) }

// WriteString writes an int32 length followed by the UTF-8 bytes. The empty
// string is written as null (-1).
func (e *Encoder) WriteString(v string) {
	if v == "" {
		e.WriteInt32(-1)
		return
	}
	if len(v) > math.MaxInt32 {
		e.setErr(fmt.Errorf("%w: string of %d bytes", ErrEncode, len(v)))
		return
	}
	e.WriteInt32(int32(len(v)))
	e.buf.WriteString(v)
}

// WriteByteString writes an int32 length followed by the bytes; nil is null.
func (e *Encoder) WriteByteString(v []byte) {
	if v == nil {
		e.WriteInt32(-1)
		return
	}
	if len(v) > math.MaxInt32 {
		e.setErr(fmt.Errorf("%w: byte string of %d bytes", ErrEncode, len(v)))
		return
	}
	e.WriteInt32(int32(len(v)))
	e.buf.Write(v)
}

// WriteDateTime writes t as 100ns ticks since 1601-01-01 UTC. The zero time
// is written as 0.
func (e *Encoder) WriteDateTime(t time.Time) {
	if t.IsZero() {
		e.WriteInt64(0)
		return
	}
	e.WriteInt64(t.UnixNano()/100 + ticksEpochOffset)
}

// WriteGUID writes a GUID in the mixed-endian layout: the first three
// components little endian, the last eight bytes as is.
func (e *Encoder) WriteGUID(u uuid.UUID) {
	var b [16]byte
	b[0], b[1], b[2], b[3] = u[3], u[2], u[1], u[0]
	b[4], b[5] = u[5], u[4]
	b[6], b[7] = u[7], u[6]
	copy(b[8:], u[8:])
	e.buf.Write(b[:])
}

// WriteNodeID writes the most compact encoding of n.
func (e *Encoder) WriteNodeID(n ua.NodeID) {
	var flag byte
	if n.NamespaceURI() != "" {
		flag = nodeIDURIFlag
	}

	switch n.Type() {
	case ua.IDTypeNumeric:
		switch {
		case n.Namespace() == 0 && n.IntID() <= 0xFF && flag == 0:
			e.buf.WriteByte(nodeIDTwoByte)
			e.buf.WriteByte(byte(n.IntID()))
		case n.Namespace() <= 0xFF && n.IntID() <= 0xFFFF:
			e.buf.WriteByte(nodeIDFourByte | flag)
			e.buf.WriteByte(byte(n.Namespace()))
			e.WriteUint16(uint16(n.IntID()))
		default:
			e.buf.WriteByte(nodeIDNumeric | flag)
			e.WriteUint16(n.Namespace())
			e.WriteUint32(n.IntID())
		}
	case ua.IDTypeString:
		e.buf.WriteByte(nodeIDString | flag)
		e.WriteUint16(n.Namespace())
		e.WriteString(n.StringID())
	case ua.IDTypeGUID:
		e.buf.WriteByte(nodeIDGUID | flag)
		e.WriteUint16(n.Namespace())
		e.WriteGUID(n.GUIDID())
	case ua.IDTypeOpaque:
		e.buf.WriteByte(nodeIDByteString | flag)
		e.WriteUint16(n.Namespace())
		e.WriteByteString(n.OpaqueID())
	}

	if flag != 0 {
		e.WriteString(n.NamespaceURI())
	}
}

func (e *Encoder) WriteStatusCode(c ua.StatusCode) { e.WriteUint32(uint32(c)) }

func (e *Encoder) WriteQualifiedName(q ua.QualifiedName) {
	e.WriteUint16(q.NamespaceIndex)
	e.WriteString(q.Name)
}

// WriteLocalizedText writes the encoding mask followed by the present fields.
func (e *Encoder) WriteLocalizedText(l ua.LocalizedText) {
	var mask byte
	if l.Locale != "" {
		mask |= 0x01
	}
	if l.Text != "" {
		mask |= 0x02
	}
	e.buf.WriteByte(mask)
	if l.Locale != "" {
		e.WriteString(l.Locale)
	}
	if l.Text != "" {
		e.WriteString(l.Text)
	}
}

// WriteStringArray writes an int32 count followed by the strings. nil is
// written as a null array.
func (e *Encoder) WriteStringArray(v []string) {
	if v == nil {
		e.WriteInt32(-1)
		return
	}
	e.WriteInt32(int32(len(v)))
	for _, s := range v {
		e.WriteString(s)
	}
}

func (e *Encoder) setErr(err error) {
	if e.err == nil {
		e.err = err
	}
}

// Decoder reads structure bodies written by Encoder.
//
// Errors are sticky: after the first failure every read returns a zero value
// and Err reports the failure.
type Decoder struct {
	data     []byte
	pos      int
	depth    int
	maxDepth int
	err      error
}

var decoderPool = sync.Pool{
	New: func() interface{} {
		return &Decoder{}
	},
}

// NewDecoder returns a decoder over data from the pool.
func NewDecoder(data []byte, maxDepth int) *Decoder {
	d := decoderPool.Get().(*Decoder)
	*d = Decoder{data: data, maxDepth: maxDepth}
	return d
}

// Close returns the decoder to the pool.
func (d *Decoder) Close() {
	if d == nil {
		return
	}
	*d = Decoder{}
	decoderPool.Put(d)
}

// Err returns the first error encountered.
func (d *Decoder) Err() error { return d.err }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.data) - d.pos }

// Nested runs fn one nesting level deeper, failing once the maximum depth is
// exceeded.
func (d *Decoder) Nested(fn func() error) error {
	if d.err != nil {
		return d.err
	}
	if d.maxDepth > 0 && d.depth >= d.maxDepth {
		d.err = fmt.Errorf("%w: %d", ErrMaxDepth, d.maxDepth)
		return d.err
	}
	d.depth++
	defer func() { d.depth-- }()
	if err := fn(); err != nil && d.err == nil {
		d.err = err
	}
	return d.err
}

func (d *Decoder) next(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.pos+n > len(d.data) {
		d.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, d.pos, len(d.data)-d.pos)
		return nil
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b
}

func (d *Decoder) ReadBool() bool {
	b := d.next(1)
	return b != nil && b[0] != 0
}

func (d *Decoder) ReadByte() (byte, error) {
	b := d.next(1)
	if b == nil {
		return 0, d.err
	}
	return b[0], nil
}

func (d *Decoder) ReadSByte() int8 {
	b := d.next(1)
	if b == nil {
		return 0
	}
	return int8(b[0])
}

func (d *Decoder) ReadUint16() uint16 {
	b := d.next(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *Decoder) ReadInt16() int16 { return int16(d.ReadUint16()) }

func (d *Decoder) ReadUint32() uint32 {
	b := d.next(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *Decoder) ReadInt32() int32 { return int32(d.ReadUint32()) }

func (d *Decoder) ReadUint64() uint64 {
	b := d.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *Decoder) ReadInt64() int64 { return int64(d.ReadUint64()) }

func (d *Decoder) ReadFloat() float32 { return math.Float32frombits(d.ReadUint32()) }

func (d *Decoder) ReadDouble() float64 { return math.Float64frombits(d.ReadUint64()) }

// ReadString reads a length-prefixed string; null reads as "".
func (d *Decoder) ReadString() string {
	n := d.ReadInt32()
	if n < 0 {
		return ""
	}
	return string(d.next(int(n)))
}

// ReadByteString reads a length-prefixed byte string; null reads as nil.
func (d *Decoder) ReadByteString() []byte {
	n := d.ReadInt32()
	if n < 0 || d.err != nil {
		return nil
	}
	b := d.next(int(n))
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ReadDateTime reads 100ns ticks since 1601; 0 reads as the zero time.
func (d *Decoder) ReadDateTime() time.Time {
	ticks := d.ReadInt64()
	if ticks == 0 || d.err != nil {
		return time.Time{}
	}
	return time.Unix(0, (ticks-ticksEpochOffset)*100).UTC()
}

// ReadGUID reads a mixed-endian GUID.
func (d *Decoder) ReadGUID() uuid.UUID {
	b := d.next(16)
	if b == nil {
		return uuid.Nil
	}
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	copy(u[8:], b[8:])
	return u
}

// ReadNodeID reads any of the node id encodings written by WriteNodeID.
func (d *Decoder) ReadNodeID() ua.NodeID {
	flag, err := d.ReadByte()
	if err != nil {
		return ua.NodeID{}
	}

	var n ua.NodeID
	switch flag &^ (nodeIDURIFlag | nodeIDServerFlag) {
	case nodeIDTwoByte:
		b, _ := d.ReadByte()
		n = ua.NewNumericNodeID(0, uint32(b))
	case nodeIDFourByte:
		ns, _ := d.ReadByte()
		n = ua.NewNumericNodeID(uint16(ns), uint32(d.ReadUint16()))
	case nodeIDNumeric:
		ns := d.ReadUint16()
		n = ua.NewNumericNodeID(ns, d.ReadUint32())
	case nodeIDString:
		ns := d.ReadUint16()
		n = ua.NewStringNodeID(ns, d.ReadString())
	case nodeIDGUID:
		ns := d.ReadUint16()
		n = ua.NewGUIDNodeID(ns, d.ReadGUID())
	case nodeIDByteString:
		ns := d.ReadUint16()
		n = ua.NewOpaqueNodeID(ns, d.ReadByteString())
	default:
		d.setErr(fmt.Errorf("%w: node id encoding 0x%02x", ErrDecode, flag))
		return ua.NodeID{}
	}

	if flag&nodeIDURIFlag != 0 {
		n = n.WithNamespaceURI(d.ReadString())
	}
	if flag&nodeIDServerFlag != 0 {
		// server index; only local servers are addressed
		d.ReadUint32()
	}
	return n
}

func (d *Decoder) ReadStatusCode() ua.StatusCode { return ua.StatusCode(d.ReadUint32()) }

func (d *Decoder) ReadQualifiedName() ua.QualifiedName {
	ns := d.ReadUint16()
	return ua.NewQualifiedName(ns, d.ReadString())
}

func (d *Decoder) ReadLocalizedText() ua.LocalizedText {
	mask, err := d.ReadByte()
	if err != nil {
		return ua.LocalizedText{}
	}
	var l ua.LocalizedText
	if mask&0x01 != 0 {
		l.Locale = d.ReadString()
	}
	if mask&0x02 != 0 {
		l.Text = d.ReadString()
	}
	return l
}

// ReadStringArray reads an int32 count followed by strings; null reads as nil.
func (d *Decoder) ReadStringArray() []string {
	n := d.ReadInt32()
	if n < 0 || d.err != nil {
		return nil
	}
	if int(n) > d.Remaining()/4 {
		d.setErr(fmt.Errorf("%w: array length %d exceeds body", ErrTruncated, n))
		return nil
	}
	out := make([]string, 0, n)
	for i := int32(0); i < n && d.err == nil; i++ {
		out = append(out, d.ReadString())
	}
	return out
}

func (d *Decoder) setErr(err error) {
	if d.err == nil {
		d.err = err
	}
}
