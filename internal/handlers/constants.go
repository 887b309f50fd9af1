package handlers

// Common error message constants shared across handlers
const (
	ErrMsgUserNotFound       = "User not found"
	ErrMsgRecordNotFound     = "Record not found"
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgInvalidRecordID    = "Invalid record ID"
	ErrMsgInvalidUserID      = "Invalid user ID"
	ErrMsgUnauthorized       = "Unauthorized"
	ErrMsgUserIDNotFound     = "User ID not found"
)

// API path constants
const (
	AuthAPIBasePath = "/api/v1/auth"
)
