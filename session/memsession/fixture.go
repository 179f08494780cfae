package memsession

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/smnsjas/go-uaproxy/codec"
	"github.com/smnsjas/go-uaproxy/objects"
	"github.com/smnsjas/go-uaproxy/ua"
)

// ErrInvalidFixture is returned for malformed fixture documents.
var ErrInvalidFixture = errors.New("invalid fixture")

// fixtureFile is the layout of an address space fixture:
//
//	namespaces:
//	  - urn:example:plant
//	nodes:
//	  - id: "nsu=urn:example:plant;s=Pump1"
//	    parent: "i=85"
//	    reference: Organizes
//	    browseName: Pump1
//	    class: Object
//	    typeDefinition: "nsu=urn:example:plant;i=1001"
//	  - id: "nsu=urn:example:plant;s=Pump1.Speed"
//	    parent: "nsu=urn:example:plant;s=Pump1"
//	    browseName: Speed
//	    typeDefinition: "i=2368"
//	    value: {type: Double, value: 1450.5}
//	    writable: true
//
// Browse names without a namespace prefix take the namespace of the node id.
type fixtureFile struct {
	Namespaces []string      `yaml:"namespaces"`
	Nodes      []fixtureNode `yaml:"nodes"`
}

type fixtureNode struct {
	ID             string        `yaml:"id"`
	Parent         string        `yaml:"parent"`
	Reference      string        `yaml:"reference"`
	BrowseName     string        `yaml:"browseName"`
	DisplayName    string        `yaml:"displayName"`
	Class          string        `yaml:"class"`
	TypeDefinition string        `yaml:"typeDefinition"`
	Value          *fixtureValue `yaml:"value"`
	Writable       bool          `yaml:"writable"`
	Unreadable     bool          `yaml:"unreadable"`
}

type fixtureValue struct {
	Type  string `yaml:"type"`
	Value any    `yaml:"value"`
}

// LoadFixtureFile reads a YAML fixture into s.
func (s *Session) LoadFixtureFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("fixture load failed (%s): %w", path, err)
	}
	if err := s.LoadFixture(data); err != nil {
		return fmt.Errorf("fixture load failed (%s): %w", path, err)
	}
	return nil
}

// LoadFixture adds the namespaces and nodes of a YAML fixture to s. Nodes are
// added in document order, so parents must precede their children.
func (s *Session) LoadFixture(data []byte) error {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}

	for _, uri := range f.Namespaces {
		s.AddNamespace(uri)
	}

	for i, fn := range f.Nodes {
		if err := s.addFixtureNode(fn); err != nil {
			return fmt.Errorf("node %d (%s): %w", i, fn.ID, err)
		}
	}
	return nil
}

func (s *Session) addFixtureNode(fn fixtureNode) error {
	id, err := s.parseLocal(fn.ID)
	if err != nil {
		return err
	}

	n := Node{
		ID:          id,
		BrowseName:  ua.ParseQualifiedName(fn.BrowseName),
		DisplayName: ua.NewLocalizedText(fn.DisplayName),
		Writable:    fn.Writable,
		Unreadable:  fn.Unreadable,
	}
	if n.BrowseName.Name == "" {
		return fmt.Errorf("%w: missing browseName", ErrInvalidFixture)
	}
	if !strings.Contains(fn.BrowseName, ":") {
		n.BrowseName.NamespaceIndex = id.Namespace()
	}

	switch {
	case fn.Class != "":
		nc, ok := ua.ParseNodeClass(fn.Class)
		if !ok {
			return fmt.Errorf("%w: class %q", ErrInvalidFixture, fn.Class)
		}
		n.Class = nc
	case fn.Value != nil:
		n.Class = ua.NodeClassVariable
	default:
		n.Class = ua.NodeClassObject
	}

	if fn.TypeDefinition != "" {
		if n.TypeDefinition, err = s.parseLocal(fn.TypeDefinition); err != nil {
			return err
		}
	} else if n.Class == ua.NodeClassVariable {
		n.TypeDefinition = ua.StandardNodeID(ua.IDBaseDataVariableType)
	} else {
		n.TypeDefinition = ua.StandardNodeID(ua.IDBaseObjectType)
	}

	if fn.Value != nil {
		if n.Value, err = s.variantOf(*fn.Value); err != nil {
			return err
		}
	}

	if fn.Parent == "" {
		return s.AddNode(n)
	}
	parent, err := s.parseLocal(fn.Parent)
	if err != nil {
		return err
	}
	ref, err := referenceType(fn.Reference)
	if err != nil {
		return err
	}
	return s.AddChild(parent, ref, n)
}

func (s *Session) parseLocal(text string) (ua.NodeID, error) {
	id, err := ua.ParseNodeID(text)
	if err != nil {
		return ua.NodeID{}, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localID(id)
}

func referenceType(name string) (ua.NodeID, error) {
	switch name {
	case "", "HasComponent":
		return ua.HasComponent, nil
	case "HasProperty":
		return ua.HasProperty, nil
	case "Organizes":
		return Organizes, nil
	}
	id, err := ua.ParseNodeID(name)
	if err != nil {
		return ua.NodeID{}, fmt.Errorf("%w: reference %q", ErrInvalidFixture, name)
	}
	return id, nil
}

// variantOf converts a typed fixture value. Array types carry a "[]"
// suffix, for example "String[]".
func (s *Session) variantOf(fv fixtureValue) (ua.Variant, error) {
	typ, array := strings.CutSuffix(fv.Type, "[]")

	if !array {
		v, err := s.scalar(typ, fv.Value)
		if err != nil {
			return ua.Variant{}, fmt.Errorf("%w: value of type %s: %w", ErrInvalidFixture, fv.Type, err)
		}
		return v, nil
	}

	raw, ok := fv.Value.([]any)
	if !ok {
		return ua.Variant{}, fmt.Errorf("%w: value of type %s is not a list", ErrInvalidFixture, fv.Type)
	}
	var out any
	var err error
	switch typ {
	case "Boolean":
		out, err = convertAll(raw, toBool)
	case "Int32":
		out, err = convertAll(raw, func(x any) (int32, error) { return toInt[int32](x, math.MinInt32, math.MaxInt32) })
	case "UInt32":
		out, err = convertAll(raw, func(x any) (uint32, error) { return toInt[uint32](x, 0, math.MaxUint32) })
	case "Double":
		out, err = convertAll(raw, toFloat)
	case "String":
		out, err = convertAll(raw, toString)
	case "LocalizedText":
		out, err = convertAll(raw, func(x any) (ua.LocalizedText, error) {
			text, err := toString(x)
			return ua.NewLocalizedText(text), err
		})
	case "Range", "EUInformation", "BuildInfo", "ServerStatusDataType":
		out, err = convertAll(raw, func(x any) (ua.ExtensionObject, error) {
			v, err := s.scalar(typ, x)
			if err != nil {
				return ua.ExtensionObject{}, err
			}
			return v.Value().(ua.ExtensionObject), nil
		})
	default:
		return ua.Variant{}, fmt.Errorf("%w: unsupported array type %s", ErrInvalidFixture, fv.Type)
	}
	if err != nil {
		return ua.Variant{}, fmt.Errorf("%w: value of type %s: %w", ErrInvalidFixture, fv.Type, err)
	}
	return ua.NewVariant(out)
}

func (s *Session) scalar(typ string, x any) (ua.Variant, error) {
	var (
		v   any
		err error
	)
	switch typ {
	case "Null":
		return ua.Variant{}, nil
	case "Boolean":
		v, err = toBool(x)
	case "Byte":
		v, err = toInt[uint8](x, 0, math.MaxUint8)
	case "Int16":
		v, err = toInt[int16](x, math.MinInt16, math.MaxInt16)
	case "UInt16":
		v, err = toInt[uint16](x, 0, math.MaxUint16)
	case "Int32":
		v, err = toInt[int32](x, math.MinInt32, math.MaxInt32)
	case "UInt32":
		v, err = toInt[uint32](x, 0, math.MaxUint32)
	case "Int64":
		v, err = toInt[int64](x, math.MinInt64, math.MaxInt64)
	case "Float":
		var f float64
		f, err = toFloat(x)
		v = float32(f)
	case "Double":
		v, err = toFloat(x)
	case "String":
		v, err = toString(x)
	case "DateTime":
		v, err = toTime(x)
	case "LocalizedText":
		var text string
		text, err = toString(x)
		v = ua.NewLocalizedText(text)
	case "NodeID":
		var text string
		if text, err = toString(x); err == nil {
			v, err = ua.ParseNodeID(text)
		}
	case "Range", "EUInformation", "BuildInfo", "ServerStatusDataType":
		var st codec.Structure
		if st, err = structureOf(typ, x); err == nil {
			return codec.EncodeStructure(st, s.serialization)
		}
	default:
		return ua.Variant{}, fmt.Errorf("unsupported type %s", typ)
	}
	if err != nil {
		return ua.Variant{}, err
	}
	return ua.NewVariant(v)
}

func structureOf(typ string, x any) (codec.Structure, error) {
	m, ok := x.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s value must be a mapping", typ)
	}
	f := fields{m: m}

	var st codec.Structure
	switch typ {
	case "Range":
		st = objects.Range{Low: f.float("low"), High: f.float("high")}
	case "EUInformation":
		st = objects.EUInformation{
			NamespaceURI: f.str("namespaceUri"),
			UnitID:       int32(f.int("unitId")),
			DisplayName:  ua.NewLocalizedText(f.str("displayName")),
			Description:  ua.NewLocalizedText(f.str("description")),
		}
	case "BuildInfo":
		st = f.buildInfo()
	case "ServerStatusDataType":
		status := objects.ServerStatusDataType{
			StartTime:           f.time("startTime"),
			CurrentTime:         f.time("currentTime"),
			State:               objects.ServerState(f.int("state")),
			SecondsTillShutdown: uint32(f.int("secondsTillShutdown")),
			ShutdownReason:      ua.NewLocalizedText(f.str("shutdownReason")),
		}
		if sub, ok := m["buildInfo"].(map[string]any); ok {
			bf := fields{m: sub}
			status.BuildInfo = bf.buildInfo()
			if bf.err != nil {
				return nil, bf.err
			}
		}
		st = status
	}
	if f.err != nil {
		return nil, f.err
	}
	return st, nil
}

// fields reads structure fields from a mapping and keeps the first error.
type fields struct {
	m   map[string]any
	err error
}

func (f *fields) keep(err error) {
	if f.err == nil && err != nil {
		f.err = err
	}
}

func (f *fields) float(key string) float64 {
	x, ok := f.m[key]
	if !ok {
		return 0
	}
	v, err := toFloat(x)
	f.keep(err)
	return v
}

func (f *fields) int(key string) int64 {
	x, ok := f.m[key]
	if !ok {
		return 0
	}
	v, err := toInt[int64](x, math.MinInt32, math.MaxUint32)
	f.keep(err)
	return v
}

func (f *fields) str(key string) string {
	x, ok := f.m[key]
	if !ok {
		return ""
	}
	v, err := toString(x)
	f.keep(err)
	return v
}

func (f *fields) time(key string) time.Time {
	x, ok := f.m[key]
	if !ok {
		return time.Time{}
	}
	v, err := toTime(x)
	f.keep(err)
	return v
}

func (f *fields) buildInfo() objects.BuildInfo {
	return objects.BuildInfo{
		ProductURI:       f.str("productUri"),
		ManufacturerName: f.str("manufacturerName"),
		ProductName:      f.str("productName"),
		SoftwareVersion:  f.str("softwareVersion"),
		BuildNumber:      f.str("buildNumber"),
		BuildDate:        f.time("buildDate"),
	}
}

func convertAll[T any](raw []any, conv func(any) (T, error)) ([]T, error) {
	out := make([]T, 0, len(raw))
	for i, x := range raw {
		v, err := conv(x)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func toBool(x any) (bool, error) {
	switch v := x.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	}
	return false, fmt.Errorf("%v is not a boolean", x)
}

type integer interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

func toInt[T integer](x any, lo, hi float64) (T, error) {
	var f float64
	switch v := x.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint64:
		f = float64(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		f = v
	case string:
		n, err := strconv.ParseInt(v, 0, 64)
		if err != nil {
			return 0, err
		}
		f = float64(n)
	default:
		return 0, fmt.Errorf("%v is not an integer", x)
	}
	if f < lo || f > hi {
		return 0, fmt.Errorf("%v out of range", x)
	}
	return T(f), nil
}

func toFloat(x any) (float64, error) {
	switch v := x.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	}
	return 0, fmt.Errorf("%v is not a number", x)
}

func toString(x any) (string, error) {
	switch v := x.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("%v is not a string", x)
}

func toTime(x any) (time.Time, error) {
	switch v := x.(type) {
	case time.Time:
		return v, nil
	case string:
		return time.Parse(time.RFC3339, v)
	}
	return time.Time{}, fmt.Errorf("%v is not a timestamp", x)
}
