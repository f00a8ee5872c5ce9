// Package queue defines the menu change payload exchanged over the message
// broker and the relay that feeds remote changes back into the process.
package queue

import (
	"time"

	"github.com/lucsky/cuid"
)

// ChangeKind names what changed.
type ChangeKind string

const (
	DishAdded         ChangeKind = "dish.added"
	DishUpdated       ChangeKind = "dish.updated"
	DishRemoved       ChangeKind = "dish.removed"
	DishesReordered   ChangeKind = "dishes.reordered"
	PriceChanged      ChangeKind = "price.changed"
	InstanceCreated   ChangeKind = "instance.created"
	InstanceDeleted   ChangeKind = "instance.deleted"
	InstanceActivated ChangeKind = "instance.activated"
)

// ProcessOrigin identifies this process on the broker so the relay can skip
// its own events.
var ProcessOrigin = cuid.New()

// MenuChangedEvent is published after every successful mutation of the data
// layer.  It carries identifiers only; consumers re-read the snapshot.
type MenuChangedEvent struct {
	ID         string     `json:"id"`
	Origin     string     `json:"origin"`
	InstanceID string     `json:"instance_id"`
	Kind       ChangeKind `json:"kind"`
	DishID     int        `json:"dish_id,omitempty"`
	At         string     `json:"at"`
}

// NewEvent stamps a change with a fresh id, this process as origin and the
// current UTC time.
func NewEvent(instanceID string, kind ChangeKind, dishID int) MenuChangedEvent {
	return MenuChangedEvent{
		ID:         cuid.New(),
		Origin:     ProcessOrigin,
		InstanceID: instanceID,
		Kind:       kind,
		DishID:     dishID,
		At:         time.Now().UTC().Format(time.RFC3339Nano),
	}
}
