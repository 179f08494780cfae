package ua

import "fmt"

// StatusCode is a 32-bit protocol result code. The two high bits carry the
// severity: 00 good, 01 uncertain, 10 bad.
//
// StatusCode implements error so that codes can be used as errors.Is targets:
//
//	errors.Is(err, ua.StatusBadNotWritable)
type StatusCode uint32

// Status codes used by the proxy layer.
const (
	StatusGood                       StatusCode = 0x00000000
	StatusUncertainInitialValue      StatusCode = 0x40920000
	StatusBadUnexpectedError         StatusCode = 0x80010000
	StatusBadInternalError           StatusCode = 0x80020000
	StatusBadCommunicationError      StatusCode = 0x80050000
	StatusBadEncodingError           StatusCode = 0x80060000
	StatusBadDecodingError           StatusCode = 0x80070000
	StatusBadEncodingLimitsExceeded  StatusCode = 0x80080000
	StatusBadTimeout                 StatusCode = 0x800A0000
	StatusBadServiceUnsupported      StatusCode = 0x800B0000
	StatusBadShutdown                StatusCode = 0x800C0000
	StatusBadDataTypeIDUnknown       StatusCode = 0x80110000
	StatusBadUserAccessDenied        StatusCode = 0x801F0000
	StatusBadWaitingForInitialData   StatusCode = 0x80320000
	StatusBadNodeIDInvalid           StatusCode = 0x80330000
	StatusBadNodeIDUnknown           StatusCode = 0x80340000
	StatusBadAttributeIDInvalid      StatusCode = 0x80350000
	StatusBadNotReadable             StatusCode = 0x803A0000
	StatusBadNotWritable             StatusCode = 0x803B0000
	StatusBadOutOfRange              StatusCode = 0x803C0000
	StatusBadNotFound                StatusCode = 0x803E0000
	StatusBadBrowseNameInvalid       StatusCode = 0x80600000
	StatusBadNoMatch                 StatusCode = 0x806F0000
	StatusBadTypeMismatch            StatusCode = 0x80740000
	StatusBadRequestInterrupted      StatusCode = 0x80840000
)

var statusNames = map[StatusCode]string{
	StatusGood:                      "Good",
	StatusUncertainInitialValue:     "Uncertain_InitialValue",
	StatusBadUnexpectedError:        "Bad_UnexpectedError",
	StatusBadInternalError:          "Bad_InternalError",
	StatusBadCommunicationError:     "Bad_CommunicationError",
	StatusBadEncodingError:          "Bad_EncodingError",
	StatusBadDecodingError:          "Bad_DecodingError",
	StatusBadEncodingLimitsExceeded: "Bad_EncodingLimitsExceeded",
	StatusBadTimeout:                "Bad_Timeout",
	StatusBadServiceUnsupported:     "Bad_ServiceUnsupported",
	StatusBadShutdown:               "Bad_Shutdown",
	StatusBadDataTypeIDUnknown:      "Bad_DataTypeIdUnknown",
	StatusBadUserAccessDenied:       "Bad_UserAccessDenied",
	StatusBadWaitingForInitialData:  "Bad_WaitingForInitialData",
	StatusBadNodeIDInvalid:          "Bad_NodeIdInvalid",
	StatusBadNodeIDUnknown:          "Bad_NodeIdUnknown",
	StatusBadAttributeIDInvalid:     "Bad_AttributeIdInvalid",
	StatusBadNotReadable:            "Bad_NotReadable",
	StatusBadNotWritable:            "Bad_NotWritable",
	StatusBadOutOfRange:             "Bad_OutOfRange",
	StatusBadNotFound:               "Bad_NotFound",
	StatusBadBrowseNameInvalid:      "Bad_BrowseNameInvalid",
	StatusBadNoMatch:                "Bad_NoMatch",
	StatusBadTypeMismatch:           "Bad_TypeMismatch",
	StatusBadRequestInterrupted:     "Bad_RequestInterrupted",
}

// severity mask and values
const (
	severityMask      = 0xC0000000
	severityUncertain = 0x40000000
	severityBad       = 0x80000000
)

// IsGood reports whether the code has good severity.
func (c StatusCode) IsGood() bool { return uint32(c)&severityMask == 0 }

// IsUncertain reports whether the code has uncertain severity.
func (c StatusCode) IsUncertain() bool { return uint32(c)&severityMask == severityUncertain }

// IsBad reports whether the code has bad severity.
func (c StatusCode) IsBad() bool { return uint32(c)&severityMask == severityBad }

// Name returns the symbolic name of the code, ignoring the info bits.
func (c StatusCode) Name() string {
	if name, ok := statusNames[c&0xFFFF0000]; ok {
		return name
	}
	return ""
}

// String returns the symbolic name, or the hex value for unknown codes.
func (c StatusCode) String() string {
	if name := c.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(c))
}

// Error implements the error interface.
func (c StatusCode) Error() string {
	return c.String()
}
