package jobqueue

import "errors"

// Sentinel errors surfaced by Repository operations. Handlers translate
// these to HTTP status codes per spec §7; workers never let them escape.
var (
	ErrDuplicateID = errors.New("jobqueue: id already exists")
	ErrNotFound    = errors.New("jobqueue: no matching job")
	ErrNoChange    = errors.New("jobqueue: patch modifies nothing")
)
