package response

// Коды ошибок, которые видит клиент
const (
	CodeInvalidInput    = "invalid-input"
	CodeEmptyName       = "empty-name"
	CodeNeedConfirm     = "need-confirm"
	CodeNotFound        = "not-found"
	CodeNameTaken       = "name-taken"
	CodeInvalidRequest  = "invalid-request"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeFileTooLarge    = "file-too-large"
	CodeInvalidFileType = "invalid-file-type"
	CodeRateLimited     = "rate-limited"
	CodeInternal        = "internal-error"
)

const (
	MessageInvalidInput = "Missing IDs"
	MessageEmptyName    = "Empty gallery name"
	MessageNeedConfirm  = "Are you sure you want to replace this gallery?"
)

var (
	ErrInvalidRequestFormat = ErrorResponse(CodeInvalidRequest, "Invalid request format")
	ErrInvalidInput         = ErrorResponse(CodeInvalidInput, MessageInvalidInput)
	ErrEmptyName            = ErrorResponse(CodeEmptyName, MessageEmptyName)
	ErrGalleryNotFound      = ErrorResponse(CodeNotFound, "Gallery not found")
	ErrDraftNotFound        = ErrorResponse(CodeNotFound, "Draft not found")
	ErrNameTaken            = ErrorResponse(CodeNameTaken, "Another gallery already uses this name")
	ErrFileTooLarge         = ErrorResponse(CodeFileTooLarge, "File size exceeds limit")
	ErrInvalidFileType      = ErrorResponse(CodeInvalidFileType, "Only JPEG, PNG, GIF and WebP images are allowed")
	ErrInternal             = ErrorResponse(CodeInternal, "Internal server error")
)
