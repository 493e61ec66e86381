package utils

import "errors"

// ----------------- storage ------------------
var (
	ErrStorageEmptyHostName       = errors.New("host name is empty")
	ErrStorageInvalidPortNumber   = errors.New("port number is invalid")
	ErrStorageEmptyUsername       = errors.New("username is empty")
	ErrStorageEmptyPassword       = errors.New("password is empty")
	ErrStorageInvalidDatabaseName = errors.New("database name is empty")
	ErrStorageInvalidSslMode      = errors.New("SSL mode is invalid")
	ErrStorageInvalidPoolSize     = errors.New("pool size is invalid")
	ErrStorageInvalidTimeout      = errors.New("timeout is invalid")
	ErrUnknownStoreDriver         = errors.New("unknown store driver")
	ErrStorageClosed              = errors.New("storage is closed")
)

// ----------------- product sync ------------------
var (
	ErrInvalidDraft   = errors.New("draft is missing required fields")
	ErrSaveInProgress = errors.New("save already in progress")
	ErrNilProduct     = errors.New("product is nil")
	ErrEmptyProductID = errors.New("product id is empty")
)

// ----------------- api ------------------
var (
	ErrDraftNotFound       = errors.New("draft not found")
	ErrMarketplaceNotFound = errors.New("marketplace not found")
)
