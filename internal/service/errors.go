package service

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNoActiveShift       = errors.New("no active shift")
	ErrShiftAlreadyActive  = errors.New("machine already has an active shift")
	ErrReportImageRequired = errors.New("report image is required to end a shift")
	ErrNoPendingLocation   = errors.New("no pending location")
)
