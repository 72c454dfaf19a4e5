// In file: internal/api/envelope.go

// Package api defines the public request and response shapes of the gateway.
// Every pipeline outcome, successful or not, is reported to callers as an Envelope.
package api

// ErrorCode is a stable, machine-readable failure classification.
type ErrorCode string

const (
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeLLMError           ErrorCode = "LLM_ERROR"
	CodeInvalidResponse    ErrorCode = "INVALID_RESPONSE"
	CodeInvalidToolCall    ErrorCode = "INVALID_TOOL_CALL"
	CodeToolNotFound       ErrorCode = "TOOL_NOT_FOUND"
	CodeToolExecutionError ErrorCode = "TOOL_EXECUTION_ERROR"
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
)

// userMessages holds the fixed user-facing text for each code.
// Raw error text never goes here; it belongs in Envelope.Details.
var userMessages = map[ErrorCode]string{
	CodeUnauthorized:       "Please log in to access this feature.",
	CodeLLMError:           "I encountered an error while processing your request.",
	CodeInvalidResponse:    "I had trouble understanding your request.",
	CodeInvalidToolCall:    "I had trouble processing that request. Please try rephrasing it.",
	CodeToolNotFound:       "That action is not available.",
	CodeToolExecutionError: "I couldn't complete that action. Please try again.",
	CodeInternalError:      "An unexpected error occurred. Please try again later.",
	CodeBadRequest:         "The request body is invalid.",
}

// Message returns the fixed user-facing message for a code.
func (c ErrorCode) Message() string {
	if msg, ok := userMessages[c]; ok {
		return msg
	}
	return userMessages[CodeInternalError]
}

// Envelope is the uniform response returned for every request.
type Envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Message string    `json:"message"`
	Error   ErrorCode `json:"error,omitempty"`
	Details any       `json:"details,omitempty"`
}

// OK builds a successful envelope.
func OK(data any, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message}
}

// Fail builds a failed envelope carrying the code's fixed message.
func Fail(code ErrorCode, details any) Envelope {
	return Envelope{Success: false, Message: code.Message(), Error: code, Details: details}
}

// FailWithMessage builds a failed envelope with a caller-chosen, user-safe message.
// An empty message falls back to the code's fixed text.
func FailWithMessage(code ErrorCode, message string, details any) Envelope {
	if message == "" {
		message = code.Message()
	}
	return Envelope{Success: false, Message: message, Error: code, Details: details}
}
