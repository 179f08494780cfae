// Package model provides typed properties and member keys for the standard
// node types of the catalog package.
//
// Each property is declared once from its catalog descriptor and used with
// the generic access functions of package node:
//
//	level, err := node.Read(ctx, server, model.ServerServiceLevel)
//	status, err := node.Get(ctx, server, model.ServerServerStatus)
//
// Member keys name the object and variable components of a type and resolve
// to child proxies:
//
//	caps, err := server.Member(ctx, model.ServerCapabilities)
package model

import (
	"context"
	"time"

	"github.com/smnsjas/go-uaproxy/catalog"
	"github.com/smnsjas/go-uaproxy/node"
	"github.com/smnsjas/go-uaproxy/objects"
	"github.com/smnsjas/go-uaproxy/ua"
)

// ServerType properties.
var (
	ServerServerArray         = node.PrimitiveArray[string](catalog.ServerType.MustLookup("ServerArray"))
	ServerNamespaceArray      = node.PrimitiveArray[string](catalog.ServerType.MustLookup("NamespaceArray"))
	ServerServerStatus        = node.Structure[objects.ServerStatusDataType](catalog.ServerType.MustLookup("ServerStatus"))
	ServerServiceLevel        = node.Primitive[byte](catalog.ServerType.MustLookup("ServiceLevel"))
	ServerAuditing            = node.Primitive[bool](catalog.ServerType.MustLookup("Auditing"))
	ServerEstimatedReturnTime = node.Primitive[time.Time](catalog.ServerType.MustLookup("EstimatedReturnTime"))
)

// ServerType components.
var (
	ServerStatus       = node.KeyOf(catalog.ServerType.MustLookup("ServerStatus"))
	ServerCapabilities = node.KeyOf(catalog.ServerType.MustLookup("ServerCapabilities"))
	ServerRedundancy   = node.KeyOf(catalog.ServerType.MustLookup("ServerRedundancy"))
)

// ServerStatusType properties.
var (
	StatusStartTime           = node.Primitive[time.Time](catalog.ServerStatusType.MustLookup("StartTime"))
	StatusCurrentTime         = node.Primitive[time.Time](catalog.ServerStatusType.MustLookup("CurrentTime"))
	StatusState               = node.Enum[objects.ServerState](catalog.ServerStatusType.MustLookup("State"))
	StatusBuildInfo           = node.Structure[objects.BuildInfo](catalog.ServerStatusType.MustLookup("BuildInfo"))
	StatusSecondsTillShutdown = node.Primitive[uint32](catalog.ServerStatusType.MustLookup("SecondsTillShutdown"))
	StatusShutdownReason      = node.Primitive[ua.LocalizedText](catalog.ServerStatusType.MustLookup("ShutdownReason"))
)

// StatusBuildInfoNode is the BuildInfo component of a ServerStatusType variable.
var StatusBuildInfoNode = node.KeyOf(catalog.ServerStatusType.MustLookup("BuildInfo"))

// BuildInfoType properties.
var (
	BuildProductURI       = node.Primitive[string](catalog.BuildInfoType.MustLookup("ProductUri"))
	BuildManufacturerName = node.Primitive[string](catalog.BuildInfoType.MustLookup("ManufacturerName"))
	BuildProductName      = node.Primitive[string](catalog.BuildInfoType.MustLookup("ProductName"))
	BuildSoftwareVersion  = node.Primitive[string](catalog.BuildInfoType.MustLookup("SoftwareVersion"))
	BuildNumber           = node.Primitive[string](catalog.BuildInfoType.MustLookup("BuildNumber"))
	BuildDate             = node.Primitive[time.Time](catalog.BuildInfoType.MustLookup("BuildDate"))
)

// ServerCapabilitiesType properties and components.
var (
	CapabilitiesServerProfileArray          = node.PrimitiveArray[string](catalog.ServerCapabilitiesType.MustLookup("ServerProfileArray"))
	CapabilitiesLocaleIDArray               = node.PrimitiveArray[string](catalog.ServerCapabilitiesType.MustLookup("LocaleIdArray"))
	CapabilitiesMinSupportedSampleRate      = node.Primitive[float64](catalog.ServerCapabilitiesType.MustLookup("MinSupportedSampleRate"))
	CapabilitiesMaxBrowseContinuationPoints = node.Primitive[uint16](catalog.ServerCapabilitiesType.MustLookup("MaxBrowseContinuationPoints"))

	CapabilitiesOperationLimits = node.KeyOf(catalog.ServerCapabilitiesType.MustLookup("OperationLimits"))
)

// OperationLimitsType properties.
var (
	LimitsMaxNodesPerRead   = node.Primitive[uint32](catalog.OperationLimitsType.MustLookup("MaxNodesPerRead"))
	LimitsMaxNodesPerWrite  = node.Primitive[uint32](catalog.OperationLimitsType.MustLookup("MaxNodesPerWrite"))
	LimitsMaxNodesPerBrowse = node.Primitive[uint32](catalog.OperationLimitsType.MustLookup("MaxNodesPerBrowse"))
)

// RedundancySupport is the property of ServerRedundancyType.
var RedundancySupport = node.Enum[objects.RedundancySupport](catalog.ServerRedundancyType.MustLookup("RedundancySupport"))

// DataItemType, AnalogItemType and ArrayItemType properties. The analog and
// array item descriptors share browse names, so one property serves both.
var (
	ItemDefinition     = node.Primitive[string](catalog.DataItemType.MustLookup("Definition"))
	ItemValuePrecision = node.Primitive[float64](catalog.DataItemType.MustLookup("ValuePrecision"))

	AnalogInstrumentRange  = node.Structure[objects.Range](catalog.AnalogItemType.MustLookup("InstrumentRange"))
	AnalogEURange          = node.Structure[objects.Range](catalog.AnalogItemType.MustLookup("EURange"))
	AnalogEngineeringUnits = node.Structure[objects.EUInformation](catalog.AnalogItemType.MustLookup("EngineeringUnits"))

	ArrayTitle         = node.Primitive[ua.LocalizedText](catalog.ArrayItemType.MustLookup("Title"))
	ArrayAxisScaleType = node.Enum[objects.AxisScaleEnumeration](catalog.ArrayItemType.MustLookup("AxisScaleType"))
)

// Server returns the proxy of the standard Server object.
func Server(env *node.Env) *node.Proxy {
	return node.New(env, ua.Server)
}

// ServerState reads the State component of the server status. An ordinal
// outside ServerState reads as ServerStateUnknown.
func ServerState(ctx context.Context, server *node.Proxy) (objects.ServerState, error) {
	status, err := server.Member(ctx, ServerStatus)
	if err != nil {
		return objects.ServerStateUnknown, err
	}
	state, err := node.Read(ctx, status, StatusState)
	if err != nil {
		return objects.ServerStateUnknown, err
	}
	return state.OrElse(objects.ServerStateUnknown), nil
}
