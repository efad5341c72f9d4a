package cidstore

import "errors"

// Sentinel errors returned by Store. HTTP handlers map these to the wire
// discriminants in §6 via errors.Is.
var (
	// ErrCIDNotFound is returned by Get when the requested CID is not
	// present in the store.
	ErrCIDNotFound = errors.New("cid not found")

	// ErrCIDMismatch is returned by Store/StoreMany when data does not
	// hash to the declared CID.
	ErrCIDMismatch = errors.New("cid mismatch")
)
