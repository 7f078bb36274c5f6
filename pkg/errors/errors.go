// Package errors provides structured error handling for the datatree library.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInvalidOp indicates a misuse of the tree API, such as
	// attaching a node that already has a parent.
	KindInvalidOp
	// KindUndoMismatch indicates a disagreement between a caller's undo
	// expectation and the node's actual history binding.
	KindUndoMismatch
	// KindCodec indicates a markup or binary stream decoding failure.
	KindCodec
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidOp:
		return "invalid-op"
	case KindUndoMismatch:
		return "undo-mismatch"
	case KindCodec:
		return "codec"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// TreeError represents a structured error in the datatree library.
type TreeError struct {
	// Op is the operation that failed (e.g., "tree.AddChild").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// NodeType is the type id of the node involved, if applicable.
	NodeType string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *TreeError) Error() string {
	if e.NodeType != "" {
		return fmt.Sprintf("%s [%s] node=%s: %v", e.Op, e.Kind, e.NodeType, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *TreeError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "tree.notifyProperty").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the datatree library.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *TreeError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
