package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrUnknownColumn = errors.New("db: unknown column")
	ErrConnection    = errors.New("db: connection failed")
)

// Op constants name the failing operation for error context.
const (
	OpPing            = "PING"
	OpGet             = "GET"
	OpSet             = "SET"
	OpMatchNormalized = "jobs.match_normalized"
	OpFullText        = "jobs.full_text"
	OpTrigram         = "jobs.trigram"
	OpNearest         = "jobs.nearest"
	OpAnyToken        = "jobs.any_token"
	OpRecent          = "jobs.recent"
	OpDistinct        = "jobs.distinct"
	OpInsertEvent     = "search_events.insert"
	OpAttachClick     = "search_events.attach_click"
	OpMigrate         = "migrate"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
