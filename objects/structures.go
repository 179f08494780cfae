package objects

import (
	"time"

	"github.com/smnsjas/go-uaproxy/codec"
	"github.com/smnsjas/go-uaproxy/ua"
)

// Binary encoding ids of the structures in this package.
var (
	BuildInfoEncodingID     = ua.StandardNodeID(ua.IDBuildInfoEncodingBinary)
	ServerStatusEncodingID  = ua.StandardNodeID(ua.IDServerStatusDataTypeEncodingBinary)
	EUInformationEncodingID = ua.StandardNodeID(ua.IDEUInformationEncodingBinary)
	RangeEncodingID         = ua.StandardNodeID(ua.IDRangeEncodingBinary)
)

// BuildInfo describes the software build of a server.
type BuildInfo struct {
	ProductURI       string
	ManufacturerName string
	ProductName      string
	SoftwareVersion  string
	BuildNumber      string
	BuildDate        time.Time
}

// EncodingID implements codec.Structure.
func (b BuildInfo) EncodingID() ua.NodeID { return BuildInfoEncodingID }

// Encode implements codec.Structure.
func (b BuildInfo) Encode(e *codec.Encoder) error {
	e.WriteString(b.ProductURI)
	e.WriteString(b.ManufacturerName)
	e.WriteString(b.ProductName)
	e.WriteString(b.SoftwareVersion)
	e.WriteString(b.BuildNumber)
	e.WriteDateTime(b.BuildDate)
	return e.Err()
}

// DecodeBuildInfo is the codec.StructDecoder for BuildInfo.
func DecodeBuildInfo(d *codec.Decoder) (codec.Structure, error) {
	b := readBuildInfo(d)
	return b, d.Err()
}

func readBuildInfo(d *codec.Decoder) BuildInfo {
	return BuildInfo{
		ProductURI:       d.ReadString(),
		ManufacturerName: d.ReadString(),
		ProductName:      d.ReadString(),
		SoftwareVersion:  d.ReadString(),
		BuildNumber:      d.ReadString(),
		BuildDate:        d.ReadDateTime(),
	}
}

// ServerStatusDataType is the value of the Server.ServerStatus variable.
type ServerStatusDataType struct {
	StartTime           time.Time
	CurrentTime         time.Time
	State               ServerState
	BuildInfo           BuildInfo
	SecondsTillShutdown uint32
	ShutdownReason      ua.LocalizedText
}

// EncodingID implements codec.Structure.
func (s ServerStatusDataType) EncodingID() ua.NodeID { return ServerStatusEncodingID }

// Encode implements codec.Structure.
func (s ServerStatusDataType) Encode(e *codec.Encoder) error {
	e.WriteDateTime(s.StartTime)
	e.WriteDateTime(s.CurrentTime)
	e.WriteInt32(int32(s.State))
	if err := e.Nested(func() error { return s.BuildInfo.Encode(e) }); err != nil {
		return err
	}
	e.WriteUint32(s.SecondsTillShutdown)
	e.WriteLocalizedText(s.ShutdownReason)
	return e.Err()
}

// DecodeServerStatus is the codec.StructDecoder for ServerStatusDataType.
func DecodeServerStatus(d *codec.Decoder) (codec.Structure, error) {
	var s ServerStatusDataType
	s.StartTime = d.ReadDateTime()
	s.CurrentTime = d.ReadDateTime()
	// the raw ordinal is kept even when it is not a defined state
	s.State = ServerState(d.ReadInt32())
	if err := d.Nested(func() error {
		s.BuildInfo = readBuildInfo(d)
		return d.Err()
	}); err != nil {
		return nil, err
	}
	s.SecondsTillShutdown = d.ReadUint32()
	s.ShutdownReason = d.ReadLocalizedText()
	return s, d.Err()
}

// EUInformation describes an engineering unit.
type EUInformation struct {
	NamespaceURI string
	UnitID       int32
	DisplayName  ua.LocalizedText
	Description  ua.LocalizedText
}

// EncodingID implements codec.Structure.
func (u EUInformation) EncodingID() ua.NodeID { return EUInformationEncodingID }

// Encode implements codec.Structure.
func (u EUInformation) Encode(e *codec.Encoder) error {
	e.WriteString(u.NamespaceURI)
	e.WriteInt32(u.UnitID)
	e.WriteLocalizedText(u.DisplayName)
	e.WriteLocalizedText(u.Description)
	return e.Err()
}

// DecodeEUInformation is the codec.StructDecoder for EUInformation.
func DecodeEUInformation(d *codec.Decoder) (codec.Structure, error) {
	u := EUInformation{
		NamespaceURI: d.ReadString(),
		UnitID:       d.ReadInt32(),
		DisplayName:  d.ReadLocalizedText(),
		Description:  d.ReadLocalizedText(),
	}
	return u, d.Err()
}

// Range is a closed interval of doubles.
type Range struct {
	Low  float64
	High float64
}

// EncodingID implements codec.Structure.
func (r Range) EncodingID() ua.NodeID { return RangeEncodingID }

// Encode implements codec.Structure.
func (r Range) Encode(e *codec.Encoder) error {
	e.WriteDouble(r.Low)
	e.WriteDouble(r.High)
	return e.Err()
}

// DecodeRange is the codec.StructDecoder for Range.
func DecodeRange(d *codec.Decoder) (codec.Structure, error) {
	r := Range{Low: d.ReadDouble(), High: d.ReadDouble()}
	return r, d.Err()
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}
