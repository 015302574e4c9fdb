package response

import "github.com/quizora/quizora-backend/internal/fault"

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrForbidden     ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Generation ────────────────────────────────────────────────────
	ErrQuotaExhausted ErrCode = "QUOTA_EXHAUSTED"
	ErrNoContent      ErrCode = "NO_CONTENT"
	ErrAPI            ErrCode = "API_ERROR"
	ErrNetwork        ErrCode = "NETWORK_ERROR"
	ErrUnknown        ErrCode = "UNKNOWN_ERROR"

	// ─── Uploads ───────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal    ErrCode = "INTERNAL_ERROR"
	ErrUnavailable ErrCode = "SERVICE_UNAVAILABLE"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or has expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	case ErrNotFound:
		return "The requested resource was not found."

	case ErrQuotaExhausted:
		return "No generation credits left. Add your own API key to continue."
	case ErrNoContent:
		return "There is nothing to work with. Supply a topic, a prompt, or a file."
	case ErrAPI:
		return "The AI service rejected the request."
	case ErrNetwork:
		return "Could not reach the AI service. Please try again."
	case ErrUnknown:
		return "Something went wrong while generating. Please try again."

	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "This file type is not supported."
	case ErrFileTooLarge:
		return "The file exceeds the size limit."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrUnavailable:
		return "The service is temporarily unavailable. Please try again."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}

// FaultStatus maps a fault kind to its HTTP status and error code.
func FaultStatus(kind fault.Kind) (int, ErrCode) {
	switch kind {
	case fault.QuotaExhausted:
		return 429, ErrQuotaExhausted
	case fault.Validation:
		return 400, ErrValidation
	case fault.NoContent:
		return 400, ErrNoContent
	case fault.API:
		return 502, ErrAPI
	case fault.Network:
		return 504, ErrNetwork
	default:
		return 500, ErrUnknown
	}
}
