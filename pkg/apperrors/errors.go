package apperrors

import "errors"

var (
	ErrSecurityRejection     = errors.New("query rejected by security screening")
	ErrSchemaMismatch        = errors.New("query references objects missing from the schema")
	ErrIntentTooVague        = errors.New("request is too vague to generate a query")
	ErrExecutionStructural   = errors.New("execution failed due to a structural SQL error")
	ErrExecutionData         = errors.New("execution failed due to a data error")
	ErrExecutionPermission   = errors.New("execution denied by the database engine")
	ErrRegenerationExhausted = errors.New("regeneration attempt ceiling reached")
	ErrSessionNotFound       = errors.New("session not found")
	ErrEmptyCandidate        = errors.New("empty SQL candidate")
)
