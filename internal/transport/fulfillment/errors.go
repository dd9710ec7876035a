package fulfillment

import "errors"

var (
	ErrNoJobs    = errors.New("no due jobs")
	ErrLockHeld  = errors.New("lock is held by another replica")
	ErrNoLockKey = errors.New("lock key is required")
)
