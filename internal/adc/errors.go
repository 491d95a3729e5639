package adc

import "fmt"

// ParseError describes a malformed ADC line. It is never propagated past
// the dispatcher's boundary — callers that decode a raw line themselves
// are expected to log and drop it (§4.B).
type ParseError struct {
	Reason string
	Input  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("adc: parse error: %s (input %q)", e.Reason, e.Input)
}

// STA severity levels, carried in the first digit of a STA status code.
type Severity int

const (
	SeverityInfo    Severity = 0
	SeverityWarning Severity = 1
	SeverityFatal   Severity = 2
)

// STA error codes, the fixed two-digit enum named in §6, transcribed from
// the codec header's Error enum (AdcCommand.h).
const (
	ErrCodeGeneric              = 0
	ErrCodeHubGeneric           = 10
	ErrCodeHubFull              = 11
	ErrCodeHubDisabled          = 12
	ErrCodeLoginGeneric         = 20
	ErrCodeNickInvalid          = 21
	ErrCodeNickTaken            = 22
	ErrCodeBadPassword          = 23
	ErrCodeCIDTaken             = 24
	ErrCodeCommandAccess        = 25
	ErrCodeRegisteredOnly       = 26
	ErrCodeInvalidPID           = 27
	ErrCodeBannedGeneric        = 30
	ErrCodePermanentlyBanned    = 31
	ErrCodeTemporarilyBanned    = 32
	ErrCodeProtocolGeneric      = 40
	ErrCodeProtocolUnsupported  = 41
	ErrCodeConnectFailed        = 42
	ErrCodeINFMissing           = 43
	ErrCodeBadState             = 44
	ErrCodeFeatureMissing       = 45
	ErrCodeBadIP                = 46
	ErrCodeNoHubHash            = 47
	ErrCodeTransferGeneric      = 50
	ErrCodeFileNotAvailable     = 51
	ErrCodeFilePartNotAvailable = 52
	ErrCodeSlotsFull            = 53
	ErrCodeNoClientHash         = 54
	ErrCodeHBRITimeout          = 55
	ErrCodeFileAccessDenied     = 60
	ErrCodeUnknownUser          = 61
	ErrCodeTLSRequired          = 62
)

// StatusCode packs a severity and error code into a STA status payload,
// e.g. (SeverityFatal, ErrCodePermanentlyBanned) -> "231".
func StatusCode(sev Severity, code int) string {
	return fmt.Sprintf("%d%02d", sev, code)
}
