package domain

import "time"

// CollectionOptions configure the backing collection at creation time. The
// first creation wins; later CreateOrGet calls for the same name ignore them.
type CollectionOptions struct {
	Unique       []string
	TTL          time.Duration
	TTLInterval  time.Duration
	TrackChanges bool
}

// ModelOptions tune how a declared model treats incoming documents.
type ModelOptions struct {
	// AllowExtra keeps undeclared properties on write instead of dropping them.
	AllowExtra bool
	Collection CollectionOptions
}
