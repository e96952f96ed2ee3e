package common

import "errors"

var (
	// ErrNoControlCharacteristic is returned when capability mapping finds no
	// writable characteristic on the connected device
	ErrNoControlCharacteristic = errors.New(`no writable control characteristic found`)
	// ErrWriteFailed wraps a transport-reported write failure. Writes are never
	// retried.
	ErrWriteFailed = errors.New(`write failed`)
	// ErrProbeCancelled is returned when a probe plan is cancelled by the caller
	// before it was exhausted
	ErrProbeCancelled = errors.New(`probe cancelled`)
	// ErrUnboundProtocol is returned when encoding is attempted before a device
	// profile has been bound
	ErrUnboundProtocol = errors.New(`no protocol bound`)
	// ErrAnalysisUnavailable is returned by audio sources and analyzers when no
	// usable input signal exists
	ErrAnalysisUnavailable = errors.New(`audio analysis unavailable`)
	// ErrUnsupportedCommand is returned when a bound format has no template for
	// a command kind
	ErrUnsupportedCommand = errors.New(`command not supported by protocol`)
	// ErrUnknownFormat is returned when a format name is not in the catalog
	ErrUnknownFormat = errors.New(`unknown protocol format`)
	// ErrClosed is returned when operating on a closed resource
	ErrClosed = errors.New(`closed`)
	// ErrTimeout is returned when an operation times out
	ErrTimeout = errors.New(`timeout`)
	// ErrNotFound is returned when a lookup fails
	ErrNotFound = errors.New(`not found`)
	// ErrDuplicate is returned when an item is registered twice
	ErrDuplicate = errors.New(`duplicate`)
	// ErrNotConnected is returned when the transport has no connected device
	ErrNotConnected = errors.New(`not connected`)
)
