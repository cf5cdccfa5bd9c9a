package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Submission validation errors (rejected before sandbox acquisition)
// 12000-12999: Sandbox errors
// 13000-13999: Judge execution errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	TooManyRequests     ErrorCode = 10004
	ServiceUnavailable  ErrorCode = 10005
	Timeout             ErrorCode = 10006
	Canceled            ErrorCode = 10007

	// Cache errors (10200-10299)
	CacheError ErrorCode = 10200
	CacheMiss  ErrorCode = 10201

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	RequiredFieldEmpty ErrorCode = 10301

	// ========== Submission Validation Errors (11000-11999) ==========

	ConfigInvalid          ErrorCode = 11000
	LanguageNotSupported   ErrorCode = 11001
	SourceTooLarge         ErrorCode = 11002
	DuplicateParameterName ErrorCode = 11003
	UnknownTypeTag         ErrorCode = 11004
	ValueTypeMismatch      ErrorCode = 11005
	UnknownExpectedKey     ErrorCode = 11006
	LimitsExceedCeiling    ErrorCode = 11007
	BatchTooLarge          ErrorCode = 11008
	EmptyBatch             ErrorCode = 11009
	InvalidStandard        ErrorCode = 11010

	// ========== Sandbox Errors (12000-12999) ==========

	SandboxUnavailable   ErrorCode = 12000
	SandboxCreateFailed  ErrorCode = 12001
	SandboxUploadFailed  ErrorCode = 12002
	SandboxExecFailed    ErrorCode = 12003
	SandboxFetchFailed   ErrorCode = 12004
	SandboxReleaseFailed ErrorCode = 12005
	SandboxQueueFull     ErrorCode = 12006
	ImageNotRegistered   ErrorCode = 12007
	RemoteDialFailed     ErrorCode = 12008

	// ========== Judge Execution Errors (13000-13999) ==========

	JudgeSystemError   ErrorCode = 13000
	ResultDocMissing   ErrorCode = 13001
	ResultDocMalformed ErrorCode = 13002
	HarnessInternal    ErrorCode = 13003
	EventPublishFailed ErrorCode = 13004
	VerdictCacheFailed ErrorCode = 13005
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",
	Canceled:            "Request canceled",

	CacheError: "Cache operation failed",
	CacheMiss:  "Cache miss",

	ValidationFailed:   "Validation failed",
	RequiredFieldEmpty: "Required field is empty",

	ConfigInvalid:          "Submission configuration is invalid",
	LanguageNotSupported:   "Programming language not supported",
	SourceTooLarge:         "Source code is too large",
	DuplicateParameterName: "Duplicate parameter name",
	UnknownTypeTag:         "Unknown parameter type tag",
	ValueTypeMismatch:      "Value does not conform to declared type",
	UnknownExpectedKey:     "Expected key does not match any parameter",
	LimitsExceedCeiling:    "Resource limits exceed the allowed ceiling",
	BatchTooLarge:          "Batch exceeds the maximum size",
	EmptyBatch:             "Batch contains no tests",
	InvalidStandard:        "Unsupported language standard",

	SandboxUnavailable:   "Sandbox runtime is unavailable",
	SandboxCreateFailed:  "Failed to create sandbox",
	SandboxUploadFailed:  "Failed to upload file into sandbox",
	SandboxExecFailed:    "Failed to execute command in sandbox",
	SandboxFetchFailed:   "Failed to fetch file from sandbox",
	SandboxReleaseFailed: "Failed to release sandbox",
	SandboxQueueFull:     "Sandbox queue is full, please try again later",
	ImageNotRegistered:   "No container image registered for language",
	RemoteDialFailed:     "Failed to dial remote sandbox runtime",

	JudgeSystemError:   "Judge system error",
	ResultDocMissing:   "Harness result document is missing",
	ResultDocMalformed: "Harness result document is malformed",
	HarnessInternal:    "Harness reported an internal error",
	EventPublishFailed: "Failed to publish verdict event",
	VerdictCacheFailed: "Verdict cache operation failed",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound:
		return 404
	case c == TooManyRequests, c == SandboxQueueFull:
		return 429
	case c == ServiceUnavailable, c == SandboxUnavailable:
		return 503
	case c >= 11000 && c < 12000: // submission validation
		return 400
	case c >= 10300 && c < 10400: // generic validation
		return 400
	case c == InvalidParams:
		return 400
	default:
		return 500
	}
}
