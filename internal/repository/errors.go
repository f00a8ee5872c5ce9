// Package repository is the menu data layer: the instance registry, the
// per-instance dish store and the per-instance price store, all on top of a
// kv.Store.  Reads never fail; they degrade to seed or default data and log
// the branch taken.  Writes return wrapped storage errors.
package repository

import "errors"

// ErrProtectedInstance is returned when the caller tries to delete the
// master instance.  Handlers should translate this into an HTTP 403.
var ErrProtectedInstance = errors.New("protected instance")

// ErrInstanceNotFound is returned by lookups of an unknown instance id.
var ErrInstanceNotFound = errors.New("instance not found")
