// Package uaproxy provides typed, cached access to the nodes of an OPC UA
// style address space.
//
// This library implements the client-side proxy layer only. It handles member
// resolution, attribute caching and value conversion, with no transport code.
// Consumers provide a session.Session that performs browse, read and write
// service calls (a real secure channel, or memsession in tests and tools).
//
// # Architecture
//
// The library is organized into layers:
//
//   - Client: root lookups sharing one environment per session
//   - node: proxies, attribute slots and generic typed properties
//   - resolver: memoised resolution of named children
//   - attribute: asynchronous attribute reads and writes with blocking wrappers
//   - codec: conversion between variants and Go values
//   - catalog: descriptor tables of well-known members per node type
//   - model: typed properties for the standard node types
//   - ua: node ids, variants, status codes and error translation
//
// # Basic Usage
//
//	// Create a client over your session
//	client := uaproxy.NewClient(sess)
//
//	// Read a typed property of the Server object
//	level, err := node.Read(ctx, client.Server(), model.ServerServiceLevel)
//	if err != nil {
//	    return err
//	}
//
//	// Navigate by browse name
//	pump, err := client.ObjectsFolder().ChildByName(ctx, "urn:example:plant", "Pump1")
//
// # Caching
//
// Every proxy caches the attributes it has read or written. Get and Set work on
// the cache only; Read and Write contact the server, and a successful Write
// updates the cache. Resolved children are memoised per parent: concurrent
// lookups of the same name share one browse. Failed browses are retried on
// the next lookup.
//
// # Errors
//
// Blocking calls return *ua.StatusError. Protocol status codes can be matched
// directly:
//
//	if errors.Is(err, ua.StatusBadNotWritable) { ... }
package uaproxy

// Version is the library version.
const Version = "0.1.0-dev"
