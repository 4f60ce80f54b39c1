package model

// ErrorResponse represents a standardised JSON error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for responses
const (
	ErrCodeInvalidForm         = "INVALID_FORM"
	ErrCodePastaKindRequired   = "PASTA_KIND_REQUIRED"
	ErrCodeLogNotFound         = "LOG_NOT_FOUND"
	ErrCodeMasterNotFound      = "MASTER_NOT_FOUND"
	ErrCodeMasterInUse         = "MASTER_IN_USE"
	ErrCodeRecipeNameRequired  = "RECIPE_NAME_REQUIRED"
	ErrCodePastaKindIncomplete = "PASTA_KIND_INCOMPLETE"
	ErrCodeCheeseNameRequired  = "CHEESE_NAME_REQUIRED"
	ErrCodeInvalidEmail        = "INVALID_EMAIL"
	ErrCodeInvalidMagicLink    = "INVALID_MAGIC_LINK"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeUnknownStage        = "UNKNOWN_STAGE"
	ErrCodeStageRecorded       = "STAGE_ALREADY_RECORDED"
	ErrCodeInvalidSaltInput    = "INVALID_SALT_INPUT"
	ErrCodeBackendUnavailable  = "BACKEND_UNAVAILABLE"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidForm               = NewDomainError(ErrCodeInvalidForm, "Some fields could not be read")
	ErrPastaKindRequired         = NewDomainError(ErrCodePastaKindRequired, "Please choose a pasta kind")
	ErrLogNotFound               = NewDomainError(ErrCodeLogNotFound, "Log entry not found")
	ErrMasterNotFound            = NewDomainError(ErrCodeMasterNotFound, "Item not found")
	ErrMasterInUse               = NewDomainError(ErrCodeMasterInUse, "This item is used by saved logs and cannot be deleted")
	ErrRecipeNameRequired        = NewDomainError(ErrCodeRecipeNameRequired, "Please enter a category name")
	ErrPastaKindIdentityRequired = NewDomainError(ErrCodePastaKindIncomplete, "Please enter a brand or a thickness")
	ErrCheeseNameRequired        = NewDomainError(ErrCodeCheeseNameRequired, "Please enter a cheese name")
	ErrInvalidEmail              = NewDomainError(ErrCodeInvalidEmail, "Please enter a valid email address")
	ErrInvalidMagicLink          = NewDomainError(ErrCodeInvalidMagicLink, "This sign-in link is invalid or has expired")
	ErrUnauthenticated           = NewDomainError(ErrCodeUnauthorised, "Please sign in")
	ErrUnknownStage              = NewDomainError(ErrCodeUnknownStage, "Unknown cooking stage")
	ErrStageAlreadyRecorded      = NewDomainError(ErrCodeStageRecorded, "This stage has already been recorded")
	ErrInvalidSaltInput          = NewDomainError(ErrCodeInvalidSaltInput, "Water must be greater than zero, salt cannot be negative and the salt ratio must stay below 1000%")
)
