package rig

import "errors"

var (
	// ErrIndexOutOfRange reports a list operation addressing a slot that
	// does not exist. The list is left unchanged.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotAMember reports an element passed to an operation on a list it
	// does not belong to.
	ErrNotAMember = errors.New("not a member")

	// ErrEmptyBuffer reports a paste from a copy buffer that holds nothing.
	ErrEmptyBuffer = errors.New("copy buffer is empty")
)
