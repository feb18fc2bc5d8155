package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	// ErrNotFound: entity does not exist in the store. An expired Redis
	// session reads back as this too; once the key is gone the store
	// cannot tell the cases apart.
	ErrNotFound = errors.New("not found")
)
