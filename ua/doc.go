// Package ua defines the builtin data model shared by every layer of the proxy.
//
// It contains node identities, qualified names, status codes, attribute
// identifiers, the tagged Variant value and the DataValue attribute envelope.
// None of the types in this package perform I/O.
//
// # Node Identities
//
// A NodeID is comparable and can be used as a map key. Its textual form
// follows the usual address-space notation:
//
//	i=2253                      numeric, namespace 0
//	ns=2;s=Line1.Motor          string
//	ns=3;g=09087e75-8e5e-499b-954f-f2a9603db28a
//	ns=1;b=M/RbKBsRVkePCePcx24oRA==
//	nsu=urn:example:plant;i=1001
//
// # Errors
//
// Every failure that crosses a blocking API boundary is a *StatusError
// carrying a StatusCode. Translate converts arbitrary errors into that form:
// a status fault anywhere in the error chain is kept as is, anything else
// becomes Bad_UnexpectedError with the original error as its cause.
//
//	_, err := node.Read(ctx, p, model.ServerStatus)
//	if errors.Is(err, ua.StatusBadNotFound) {
//	    // member does not exist on this server
//	}
package ua
