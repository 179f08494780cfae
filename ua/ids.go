package ua

// NamespaceURI is the URI of the standard namespace (index 0).
const NamespaceURI = "http://opcfoundation.org/UA/"

// Numeric identifiers of standard nodes used by the proxy layer.
const (
	// reference types
	IDHasComponent uint32 = 47
	IDHasProperty  uint32 = 46

	// object and variable types
	IDBaseObjectType         uint32 = 58
	IDFolderType             uint32 = 61
	IDBaseVariableType       uint32 = 62
	IDBaseDataVariableType   uint32 = 63
	IDPropertyType           uint32 = 68
	IDServerType             uint32 = 2004
	IDServerCapabilitiesType uint32 = 2013
	IDServerStatusType       uint32 = 2138
	IDDataItemType           uint32 = 2365
	IDAnalogItemType         uint32 = 2368
	IDBuildInfoType          uint32 = 3051
	IDOperationLimitsType    uint32 = 11564
	IDArrayItemType          uint32 = 12021
	IDServerRedundancyType   uint32 = 2034

	// data types
	IDBoolean              uint32 = 1
	IDByte                 uint32 = 3
	IDUInt16               uint32 = 5
	IDInt32                uint32 = 6
	IDUInt32               uint32 = 7
	IDDouble               uint32 = 11
	IDString               uint32 = 12
	IDDateTime             uint32 = 13
	IDLocalizedText        uint32 = 21
	IDBuildInfo            uint32 = 338
	IDServerState          uint32 = 852
	IDServerStatusDataType uint32 = 862
	IDRange                uint32 = 884
	IDEUInformation        uint32 = 887
	IDAxisScaleEnumeration uint32 = 12077
	IDRedundancySupport    uint32 = 851

	// binary encodings
	IDBuildInfoEncodingBinary            uint32 = 340
	IDServerStatusDataTypeEncodingBinary uint32 = 864
	IDRangeEncodingBinary                uint32 = 886
	IDEUInformationEncodingBinary        uint32 = 889

	// instances
	IDObjectsFolder        uint32 = 85
	IDServer               uint32 = 2253
	IDServerServerArray    uint32 = 2254
	IDServerNamespaceArray uint32 = 2255
	IDServerServerStatus   uint32 = 2256
	IDServerServiceLevel   uint32 = 2267
	IDServerAuditing       uint32 = 2994
)

// Frequently used standard node ids.
var (
	HasComponent  = StandardNodeID(IDHasComponent)
	HasProperty   = StandardNodeID(IDHasProperty)
	ObjectsFolder = StandardNodeID(IDObjectsFolder)
	Server        = StandardNodeID(IDServer)
)
