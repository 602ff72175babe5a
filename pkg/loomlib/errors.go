package loomlib

import "errors"

var (
	ErrNilDestructor = errors.New("value requires a destructor")
	ErrValueDropped  = errors.New("value handle has already been dropped")

	ErrValueBorrowed     = errors.New("value is borrowed")
	ErrValueBorrowedMut  = errors.New("value is exclusively borrowed")
	ErrTypeMismatch      = errors.New("value type tag does not match")
	ErrBorrowNotHeld     = errors.New("borrow has already been released")
	ErrBorrowOutstanding = errors.New("value still has an unreleased borrow")

	ErrBadCronExpr = errors.New("invalid cron expression")

	ErrTimerNotFound   = errors.New("timer is not registered")
	ErrTaskNotFound    = errors.New("task is not registered")
	ErrSchedulerClosed = errors.New("scheduler has been closed")
)
