package model

import "errors"

var (
	// ErrConfiguration is wrapped by every setup failure: unknown rule or
	// distribution names, invalid layouts and out of range parameters.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrAllocationInvariant signals an allocation above the grid ceiling or a
	// station limit. It indicates a bug and stops the run.
	ErrAllocationInvariant = errors.New("allocation invariant violated")
)
