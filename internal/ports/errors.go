package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Source Specific Errors
	ErrSourceUnavailable    = errors.New("kline source is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the kline source")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("source authentication failed (check API token or keys)")
	ErrEmptySnapshot        = errors.New("source returned no symbols")

	// Pipeline Errors
	ErrMisalignedSeries = errors.New("indicator output is not aligned with source candles")
	ErrInvalidParams    = errors.New("invalid indicator parameters")
	ErrUnknownTransform = errors.New("unknown indicator transform")
	ErrIndicatorPanic   = errors.New("indicator calculation panicked")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrUpdateFailed = errors.New("database update failed")
	ErrDeleteFailed = errors.New("database delete failed")
	ErrCorruptCache = errors.New("cached snapshot could not be decoded")
)
