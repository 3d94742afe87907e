package mining

import "errors"

// Caller-recoverable failures. Handlers translate these with errors.Is;
// anything else coming out of the engine is a storage failure and surfaces
// as an internal error.
var (
	ErrActivationRequired = errors.New("daily activation required before claiming")
	ErrMiningDisabled     = errors.New("automatic mining is disabled")
	ErrAlreadyClaimed     = errors.New("reward already claimed today")
	ErrMiningNotActive    = errors.New("mining is not active for this user")
	ErrInvalidHours       = errors.New("offline hours must be a positive finite number")
)
