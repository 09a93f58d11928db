package core

import "errors"

// Configuration errors. Any of these returned at startup is fatal.
var (
	// ErrMatrixDimension indicates a matrix, pin list or keymap whose shape
	// does not match the board.
	ErrMatrixDimension = errors.New("matrix dimension mismatch")

	// ErrPinConfig indicates a GPIO pin that could not be configured.
	ErrPinConfig = errors.New("pin configuration failed")

	// ErrTickRate indicates an unsupported scan/report tick rate.
	ErrTickRate = errors.New("invalid tick rate")

	// ErrSettleCount indicates a debounce settle count of zero.
	ErrSettleCount = errors.New("invalid debounce settle count")

	// ErrTooManyLayers indicates a keymap with more layers than the layout
	// engine can track.
	ErrTooManyLayers = errors.New("too many layers")

	// ErrLayerIndex indicates an action referring to a layer that does not exist.
	ErrLayerIndex = errors.New("layer index out of range")

	// ErrInvalidAction indicates a malformed action, such as a hold-tap with
	// no configuration or a hold-tap nested inside another.
	ErrInvalidAction = errors.New("invalid action")

	// ErrPriority indicates a task priority outside the two supported tiers.
	ErrPriority = errors.New("unsupported task priority")

	// ErrTooManyTasks indicates the scheduler task table is full.
	ErrTooManyTasks = errors.New("too many tasks")

	// ErrNilDriver indicates a required hardware handle was not provided.
	ErrNilDriver = errors.New("hardware driver not provided")
)
