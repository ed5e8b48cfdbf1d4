package errors

// User-friendly error messages
const (
	MsgPropertyNotFound = "Property not found."
	MsgNoContent        = "No properties found."
	MsgRateLimited      = "Too many requests. Please wait a moment and try again."
	MsgUnauthorized     = "A valid bearer token is required for this operation."
	MsgInternalError    = "Something went wrong on our end. Please try again later."
)
