package memsession

import (
	"time"

	"github.com/smnsjas/go-uaproxy/codec"
	"github.com/smnsjas/go-uaproxy/objects"
	"github.com/smnsjas/go-uaproxy/ua"
)

// Node ids of the standard Server object tree built by Standard.
var (
	ServerStatusStartTime           = ua.StandardNodeID(2257)
	ServerStatusCurrentTime         = ua.StandardNodeID(2258)
	ServerStatusState               = ua.StandardNodeID(2259)
	ServerStatusBuildInfo           = ua.StandardNodeID(2260)
	ServerStatusSecondsTillShutdown = ua.StandardNodeID(2992)
	ServerStatusShutdownReason      = ua.StandardNodeID(2993)
	ServerCapabilities              = ua.StandardNodeID(2268)
	ServerOperationLimits           = ua.StandardNodeID(11704)
	ServerRedundancy                = ua.StandardNodeID(2296)
	ServerRedundancySupport         = ua.StandardNodeID(3709)
)

// StandardInfo parameterises the Server object built by Standard.
type StandardInfo struct {
	StartTime         time.Time
	Build             objects.BuildInfo
	ServiceLevel      byte
	RedundancySupport objects.RedundancySupport
}

// DefaultInfo returns the StandardInfo used by Standard.
func DefaultInfo() StandardInfo {
	return StandardInfo{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Build: objects.BuildInfo{
			ProductURI:       "urn:smnsjas:uaproxy:memsession",
			ManufacturerName: "go-uaproxy",
			ProductName:      "memsession",
			SoftwareVersion:  "1.0.0",
			BuildNumber:      "1",
			BuildDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		ServiceLevel:      255,
		RedundancySupport: objects.RedundancyNone,
	}
}

// Standard returns an address space holding the Objects folder and the
// standard Server object, filled from DefaultInfo.
func Standard(opts ...Option) *Session {
	s := New(opts...)
	if err := s.AddStandardNodes(DefaultInfo()); err != nil {
		panic(err)
	}
	return s
}

// AddStandardNodes adds the Objects folder and the Server object tree.
// ServiceLevel is the only writable variable.
func (s *Session) AddStandardNodes(info StandardInfo) error {
	status := objects.ServerStatusDataType{
		StartTime:   info.StartTime,
		CurrentTime: info.StartTime,
		State:       objects.ServerStateRunning,
		BuildInfo:   info.Build,
	}
	statusValue, err := codec.EncodeStructure(status, s.serialization)
	if err != nil {
		return err
	}
	buildValue, err := codec.EncodeStructure(info.Build, s.serialization)
	if err != nil {
		return err
	}

	id := ua.StandardNodeID
	hasComponent := ua.HasComponent
	hasProperty := ua.HasProperty

	b := &builder{s: s}
	b.node(Node{ID: ua.ObjectsFolder, Class: ua.NodeClassObject, BrowseName: ua.NewQualifiedName(0, "Objects"), TypeDefinition: id(ua.IDFolderType)})
	b.child(ua.ObjectsFolder, Organizes, object(ua.Server, "Server", ua.IDServerType))

	b.child(ua.Server, hasProperty, property(id(ua.IDServerServerArray), "ServerArray", []string{info.Build.ProductURI}))
	b.child(ua.Server, hasProperty, property(id(ua.IDServerNamespaceArray), "NamespaceArray", s.Namespaces()))
	level := property(id(ua.IDServerServiceLevel), "ServiceLevel", info.ServiceLevel)
	level.Writable = true
	b.child(ua.Server, hasProperty, level)
	b.child(ua.Server, hasProperty, property(id(ua.IDServerAuditing), "Auditing", false))

	serverStatus := id(ua.IDServerServerStatus)
	b.child(ua.Server, hasComponent, Node{
		ID: serverStatus, Class: ua.NodeClassVariable, BrowseName: ua.NewQualifiedName(0, "ServerStatus"),
		TypeDefinition: id(ua.IDServerStatusType), Value: statusValue,
	})
	b.child(serverStatus, hasComponent, variable(ServerStatusStartTime, "StartTime", status.StartTime))
	b.child(serverStatus, hasComponent, variable(ServerStatusCurrentTime, "CurrentTime", status.CurrentTime))
	b.child(serverStatus, hasComponent, variable(ServerStatusState, "State", int32(status.State)))
	b.child(serverStatus, hasComponent, Node{
		ID: ServerStatusBuildInfo, Class: ua.NodeClassVariable, BrowseName: ua.NewQualifiedName(0, "BuildInfo"),
		TypeDefinition: id(ua.IDBuildInfoType), Value: buildValue,
	})
	b.child(serverStatus, hasComponent, variable(ServerStatusSecondsTillShutdown, "SecondsTillShutdown", uint32(0)))
	b.child(serverStatus, hasComponent, variable(ServerStatusShutdownReason, "ShutdownReason", ua.LocalizedText{}))

	buildFields := []struct {
		id    uint32
		name  string
		value any
	}{
		{2262, "ProductUri", info.Build.ProductURI},
		{2263, "ManufacturerName", info.Build.ManufacturerName},
		{2261, "ProductName", info.Build.ProductName},
		{2264, "SoftwareVersion", info.Build.SoftwareVersion},
		{2265, "BuildNumber", info.Build.BuildNumber},
		{2266, "BuildDate", info.Build.BuildDate},
	}
	for _, f := range buildFields {
		b.child(ServerStatusBuildInfo, hasComponent, variable(id(f.id), f.name, f.value))
	}

	b.child(ua.Server, hasComponent, object(ServerCapabilities, "ServerCapabilities", ua.IDServerCapabilitiesType))
	b.child(ServerCapabilities, hasProperty, property(id(2269), "ServerProfileArray", []string{"http://opcfoundation.org/UA-Profile/Server/StandardUA2017"}))
	b.child(ServerCapabilities, hasProperty, property(id(2271), "LocaleIdArray", []string{"en"}))
	b.child(ServerCapabilities, hasProperty, property(id(2272), "MinSupportedSampleRate", float64(0)))
	b.child(ServerCapabilities, hasProperty, property(id(2735), "MaxBrowseContinuationPoints", uint16(0)))
	b.child(ServerCapabilities, hasComponent, object(ServerOperationLimits, "OperationLimits", ua.IDOperationLimitsType))
	b.child(ServerOperationLimits, hasProperty, property(id(11705), "MaxNodesPerRead", uint32(1000)))
	b.child(ServerOperationLimits, hasProperty, property(id(11707), "MaxNodesPerWrite", uint32(1000)))

	b.child(ua.Server, hasComponent, object(ServerRedundancy, "ServerRedundancy", ua.IDServerRedundancyType))
	b.child(ServerRedundancy, hasProperty, property(ServerRedundancySupport, "RedundancySupport", int32(info.RedundancySupport)))

	return b.err
}

// builder stops at the first error.
type builder struct {
	s   *Session
	err error
}

func (b *builder) node(n Node) {
	if b.err == nil {
		b.err = b.s.AddNode(n)
	}
}

func (b *builder) child(parent, referenceType ua.NodeID, n Node) {
	if b.err == nil {
		b.err = b.s.AddChild(parent, referenceType, n)
	}
}

func object(id ua.NodeID, name string, typeDefinition uint32) Node {
	return Node{
		ID:             id,
		Class:          ua.NodeClassObject,
		BrowseName:     ua.NewQualifiedName(0, name),
		TypeDefinition: ua.StandardNodeID(typeDefinition),
	}
}

func variable(id ua.NodeID, name string, value any) Node {
	return Node{
		ID:             id,
		Class:          ua.NodeClassVariable,
		BrowseName:     ua.NewQualifiedName(0, name),
		TypeDefinition: ua.StandardNodeID(ua.IDBaseDataVariableType),
		Value:          ua.MustVariant(value),
	}
}

func property(id ua.NodeID, name string, value any) Node {
	n := variable(id, name, value)
	n.TypeDefinition = ua.StandardNodeID(ua.IDPropertyType)
	return n
}
