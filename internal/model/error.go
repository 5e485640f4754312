package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON           = "INVALID_JSON"
	ErrCodeValidation            = "VALIDATION_FAILED"
	ErrCodeProductNotFound       = "PRODUCT_NOT_FOUND"
	ErrCodeProductUnavailable    = "PRODUCT_UNAVAILABLE"
	ErrCodeInvalidQuantity       = "INVALID_QUANTITY"
	ErrCodeLineNotFound          = "LINE_NOT_FOUND"
	ErrCodeEmptyCart             = "EMPTY_CART"
	ErrCodeSubmissionInProgress  = "SUBMISSION_IN_PROGRESS"
	ErrCodeGuestCheckoutDisabled = "GUEST_CHECKOUT_DISABLED"
	ErrCodeFeatureDisabled       = "FEATURE_DISABLED"
	ErrCodeUnauthorised          = "UNAUTHORIZED"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeBackendUnavailable    = "BACKEND_UNAVAILABLE"
	ErrCodeOrderSubmissionFailed = "ORDER_SUBMISSION_FAILED"
	ErrCodeListingNotActive      = "LISTING_NOT_ACTIVE"
	ErrCodeInternalError         = "INTERNAL_ERROR"
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
	ErrProductNotFound       = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrProductUnavailable    = NewDomainError(ErrCodeProductUnavailable, "This product is currently unavailable")
	ErrInvalidQuantity       = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrLineNotFound          = NewDomainError(ErrCodeLineNotFound, "Product is not in the cart")
	ErrEmptyCart             = NewDomainError(ErrCodeEmptyCart, "Your cart is empty")
	ErrSubmissionInProgress  = NewDomainError(ErrCodeSubmissionInProgress, "An order is already being submitted for this cart")
	ErrGuestCheckoutDisabled = NewDomainError(ErrCodeGuestCheckoutDisabled, "You must be signed in to place an order")
	ErrWishlistDisabled      = NewDomainError(ErrCodeFeatureDisabled, "Wishlist is not available")
	ErrSignInRequired        = NewDomainError(ErrCodeUnauthorised, "Please sign in to use your wishlist")
	ErrCategoryNotFound      = NewDomainError(ErrCodeNotFound, "Category not found")
	ErrBrandNotFound         = NewDomainError(ErrCodeNotFound, "Brand not found")
	ErrListingNotActive      = NewDomainError(ErrCodeListingNotActive, "No active product listing for this session")
)
