// Package objects defines the standard enumerations and structured data
// types exposed by server nodes.
//
// Enumerations are named int32 types satisfying codec.Enumeration.
// Structures are plain value types satisfying codec.Structure; their binary
// decoders are installed into a serialization context with Register:
//
//	ctx := codec.NewContext()
//	objects.Register(ctx)
//
//	status, err := codec.DecodeStructure[objects.ServerStatusDataType](v, ctx)
//
// # Reference
//
// OPC 10000-5 (Information Model), OPC 10000-8 (Data Access).
package objects

import (
	"fmt"

	"github.com/smnsjas/go-uaproxy/codec"
)

// ServerState is the operational state of a server.
type ServerState int32

const (
	// ServerStateRunning indicates the server is running normally.
	ServerStateRunning ServerState = iota
	// ServerStateFailed indicates a vendor-specific fatal error.
	ServerStateFailed
	// ServerStateNoConfiguration indicates the server has no configuration.
	ServerStateNoConfiguration
	// ServerStateSuspended indicates the server is suspended.
	ServerStateSuspended
	// ServerStateShutdown indicates the server is shutting down.
	ServerStateShutdown
	// ServerStateTest indicates the server is in test mode.
	ServerStateTest
	// ServerStateCommunicationFault indicates the server's data sources are unreachable.
	ServerStateCommunicationFault
	// ServerStateUnknown indicates the state cannot be determined.
	ServerStateUnknown
)

// IsValid reports whether s is a defined state.
func (s ServerState) IsValid() bool {
	return s >= ServerStateRunning && s <= ServerStateUnknown
}

// String returns a string representation of the state.
func (s ServerState) String() string {
	switch s {
	case ServerStateRunning:
		return "Running"
	case ServerStateFailed:
		return "Failed"
	case ServerStateNoConfiguration:
		return "NoConfiguration"
	case ServerStateSuspended:
		return "Suspended"
	case ServerStateShutdown:
		return "Shutdown"
	case ServerStateTest:
		return "Test"
	case ServerStateCommunicationFault:
		return "CommunicationFault"
	case ServerStateUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(s))
	}
}

// MarshalText renders the state by name.
func (s ServerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AxisScaleEnumeration is the scale of an array item axis.
type AxisScaleEnumeration int32

const (
	AxisScaleLinear AxisScaleEnumeration = iota
	AxisScaleLog
	AxisScaleLn
)

// IsValid reports whether a is a defined scale.
func (a AxisScaleEnumeration) IsValid() bool {
	return a >= AxisScaleLinear && a <= AxisScaleLn
}

// String returns a string representation of the scale.
func (a AxisScaleEnumeration) String() string {
	switch a {
	case AxisScaleLinear:
		return "Linear"
	case AxisScaleLog:
		return "Log"
	case AxisScaleLn:
		return "Ln"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(a))
	}
}

func (a AxisScaleEnumeration) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// RedundancySupport is the redundancy mode of a server.
type RedundancySupport int32

const (
	RedundancyNone RedundancySupport = iota
	RedundancyCold
	RedundancyWarm
	RedundancyHot
	RedundancyTransparent
	RedundancyHotAndMirrored
)

// IsValid reports whether r is a defined mode.
func (r RedundancySupport) IsValid() bool {
	return r >= RedundancyNone && r <= RedundancyHotAndMirrored
}

// String returns a string representation of the mode.
func (r RedundancySupport) String() string {
	switch r {
	case RedundancyNone:
		return "None"
	case RedundancyCold:
		return "Cold"
	case RedundancyWarm:
		return "Warm"
	case RedundancyHot:
		return "Hot"
	case RedundancyTransparent:
		return "Transparent"
	case RedundancyHotAndMirrored:
		return "HotAndMirrored"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(r))
	}
}

func (r RedundancySupport) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Register installs the decoders of every structure in this package.
func Register(ctx *codec.Context) {
	ctx.Register(BuildInfoEncodingID, DecodeBuildInfo)
	ctx.Register(ServerStatusEncodingID, DecodeServerStatus)
	ctx.Register(EUInformationEncodingID, DecodeEUInformation)
	ctx.Register(RangeEncodingID, DecodeRange)
}

// NewContext returns a serialization context with every structure in this
// package registered.
func NewContext(opts ...codec.ContextOption) *codec.Context {
	ctx := codec.NewContext(opts...)
	Register(ctx)
	return ctx
}
