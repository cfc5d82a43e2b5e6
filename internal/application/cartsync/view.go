// internal/application/cartsync/view.go
package cartsync

import (
	cartdom "costtracker/internal/domain/cart"
)

// State is the consumer-visible lifecycle state of a mirror.
// The four values are mutually exclusive; "loading", "error" and "empty"
// must never be conflated in anything shown to a consumer.
type State string

const (
	StateLoading   State = "loading"
	StateError     State = "error"
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

// View is one immutable snapshot of a session's cart as consumers see it:
// the mirror state, the owning user, and the resolved summary (lines,
// unavailable entries, running total).
//
// ErrMessage is set only when State == StateError. The summary of the last
// good emission is NOT retained for the cart (a cart subscription error is
// terminal for that scope); the catalog mirror is the one that keeps its
// last good snapshot on error.
type View struct {
	State      State           `json:"state"`
	UserID     string          `json:"userId,omitempty"`
	Summary    cartdom.Summary `json:"summary"`
	ErrMessage string          `json:"error,omitempty"`

	// Pending reports point reads still in flight: the summary is current
	// for what is known, but unresolved entries may yet resolve.
	Pending bool `json:"pending,omitempty"`
}

// Settled reports whether the view is past loading with no fetches in
// flight — the state a one-shot reader should wait for.
func (v View) Settled() bool {
	return v.State != StateLoading && !v.Pending
}

func stateForEntries(entries []cartdom.Entry) State {
	if len(entries) == 0 {
		return StateEmpty
	}
	return StatePopulated
}
