package catalog

import "github.com/smnsjas/go-uaproxy/ua"

var (
	hasProperty  = ua.HasProperty
	hasComponent = ua.HasComponent

	propertyType         = ua.StandardNodeID(ua.IDPropertyType)
	baseDataVariableType = ua.StandardNodeID(ua.IDBaseDataVariableType)
)

// Property returns the descriptor of a scalar property in the standard
// namespace.
func Property(name string, dataType uint32, kind Kind) Descriptor {
	return Descriptor{
		BrowseName:     name,
		NamespaceURI:   ua.NamespaceURI,
		ReferenceType:  hasProperty,
		NodeClass:      ua.NodeClassVariable,
		TypeDefinition: propertyType,
		DataType:       ua.StandardNodeID(dataType),
		Kind:           kind,
		ValueRank:      ValueRankScalar,
	}
}

// ArrayProperty returns the descriptor of a one-dimensional array property
// in the standard namespace.
func ArrayProperty(name string, dataType uint32, kind Kind) Descriptor {
	d := Property(name, dataType, kind)
	d.ValueRank = ValueRankOneDimension
	d.ArrayDimensions = []uint32{0}
	return d
}

// Variable returns the descriptor of a component variable in the standard
// namespace.
func Variable(name string, typeDefinition, dataType uint32, kind Kind) Descriptor {
	return Descriptor{
		BrowseName:     name,
		NamespaceURI:   ua.NamespaceURI,
		ReferenceType:  hasComponent,
		NodeClass:      ua.NodeClassVariable,
		TypeDefinition: ua.StandardNodeID(typeDefinition),
		DataType:       ua.StandardNodeID(dataType),
		Kind:           kind,
		ValueRank:      ValueRankScalar,
	}
}

// Object returns the descriptor of a component object in the standard
// namespace.
func Object(name string, typeDefinition uint32) Descriptor {
	return Descriptor{
		BrowseName:     name,
		NamespaceURI:   ua.NamespaceURI,
		ReferenceType:  hasComponent,
		NodeClass:      ua.NodeClassObject,
		TypeDefinition: ua.StandardNodeID(typeDefinition),
	}
}

func optional(d Descriptor) Descriptor {
	d.Optional = true
	return d
}

// Standard tables.
var (
	BaseObjectType = NewTable("BaseObjectType", ua.StandardNodeID(ua.IDBaseObjectType), nil)
	FolderType     = BaseObjectType.Extend("FolderType", ua.StandardNodeID(ua.IDFolderType))

	ServerType = BaseObjectType.Extend("ServerType", ua.StandardNodeID(ua.IDServerType),
		ArrayProperty("ServerArray", ua.IDString, KindPrimitive),
		ArrayProperty("NamespaceArray", ua.IDString, KindPrimitive),
		Variable("ServerStatus", ua.IDServerStatusType, ua.IDServerStatusDataType, KindStructure),
		Property("ServiceLevel", ua.IDByte, KindPrimitive),
		Property("Auditing", ua.IDBoolean, KindPrimitive),
		optional(Property("EstimatedReturnTime", ua.IDDateTime, KindPrimitive)),
		Object("ServerCapabilities", ua.IDServerCapabilitiesType),
		Object("ServerRedundancy", ua.IDServerRedundancyType),
	)

	ServerCapabilitiesType = BaseObjectType.Extend("ServerCapabilitiesType", ua.StandardNodeID(ua.IDServerCapabilitiesType),
		ArrayProperty("ServerProfileArray", ua.IDString, KindPrimitive),
		ArrayProperty("LocaleIdArray", ua.IDString, KindPrimitive),
		Property("MinSupportedSampleRate", ua.IDDouble, KindPrimitive),
		Property("MaxBrowseContinuationPoints", ua.IDUInt16, KindPrimitive),
		optional(Object("OperationLimits", ua.IDOperationLimitsType)),
	)

	OperationLimitsType = FolderType.Extend("OperationLimitsType", ua.StandardNodeID(ua.IDOperationLimitsType),
		optional(Property("MaxNodesPerRead", ua.IDUInt32, KindPrimitive)),
		optional(Property("MaxNodesPerWrite", ua.IDUInt32, KindPrimitive)),
		optional(Property("MaxNodesPerBrowse", ua.IDUInt32, KindPrimitive)),
	)

	ServerRedundancyType = BaseObjectType.Extend("ServerRedundancyType", ua.StandardNodeID(ua.IDServerRedundancyType),
		Property("RedundancySupport", ua.IDRedundancySupport, KindEnum),
	)

	BaseVariableType     = NewTable("BaseVariableType", ua.StandardNodeID(ua.IDBaseVariableType), nil)
	BaseDataVariableType = BaseVariableType.Extend("BaseDataVariableType", baseDataVariableType)
	PropertyType         = BaseVariableType.Extend("PropertyType", propertyType)

	ServerStatusType = BaseDataVariableType.Extend("ServerStatusType", ua.StandardNodeID(ua.IDServerStatusType),
		Variable("StartTime", ua.IDBaseDataVariableType, ua.IDDateTime, KindPrimitive),
		Variable("CurrentTime", ua.IDBaseDataVariableType, ua.IDDateTime, KindPrimitive),
		Variable("State", ua.IDBaseDataVariableType, ua.IDServerState, KindEnum),
		Variable("BuildInfo", ua.IDBuildInfoType, ua.IDBuildInfo, KindStructure),
		Variable("SecondsTillShutdown", ua.IDBaseDataVariableType, ua.IDUInt32, KindPrimitive),
		Variable("ShutdownReason", ua.IDBaseDataVariableType, ua.IDLocalizedText, KindPrimitive),
	)

	BuildInfoType = BaseDataVariableType.Extend("BuildInfoType", ua.StandardNodeID(ua.IDBuildInfoType),
		Variable("ProductUri", ua.IDBaseDataVariableType, ua.IDString, KindPrimitive),
		Variable("ManufacturerName", ua.IDBaseDataVariableType, ua.IDString, KindPrimitive),
		Variable("ProductName", ua.IDBaseDataVariableType, ua.IDString, KindPrimitive),
		Variable("SoftwareVersion", ua.IDBaseDataVariableType, ua.IDString, KindPrimitive),
		Variable("BuildNumber", ua.IDBaseDataVariableType, ua.IDString, KindPrimitive),
		Variable("BuildDate", ua.IDBaseDataVariableType, ua.IDDateTime, KindPrimitive),
	)

	DataItemType = BaseDataVariableType.Extend("DataItemType", ua.StandardNodeID(ua.IDDataItemType),
		optional(Property("Definition", ua.IDString, KindPrimitive)),
		optional(Property("ValuePrecision", ua.IDDouble, KindPrimitive)),
	)

	AnalogItemType = DataItemType.Extend("AnalogItemType", ua.StandardNodeID(ua.IDAnalogItemType),
		optional(Property("InstrumentRange", ua.IDRange, KindStructure)),
		Property("EURange", ua.IDRange, KindStructure),
		optional(Property("EngineeringUnits", ua.IDEUInformation, KindStructure)),
	)

	ArrayItemType = DataItemType.Extend("ArrayItemType", ua.StandardNodeID(ua.IDArrayItemType),
		optional(Property("InstrumentRange", ua.IDRange, KindStructure)),
		Property("EURange", ua.IDRange, KindStructure),
		Property("EngineeringUnits", ua.IDEUInformation, KindStructure),
		Property("Title", ua.IDLocalizedText, KindPrimitive),
		Property("AxisScaleType", ua.IDAxisScaleEnumeration, KindEnum),
	)
)

var standardTables = []*Table{
	BaseObjectType, FolderType, ServerType, ServerCapabilitiesType, OperationLimitsType,
	ServerRedundancyType, BaseVariableType, BaseDataVariableType, PropertyType,
	ServerStatusType, BuildInfoType, DataItemType, AnalogItemType, ArrayItemType,
}

// Standard returns a new catalog holding the standard tables. The returned
// catalog can be extended with Add or LoadYAML.
func Standard() *Catalog {
	c := New()
	for _, t := range standardTables {
		if err := c.Add(t); err != nil {
			panic(err)
		}
	}
	return c
}
