package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrTransmissionNotLoaded marks a transmission reference whose backing data
// has not arrived yet. It is a suspension signal, not a failure: the session
// stays in PhasePresenting until the data loads.
var ErrTransmissionNotLoaded = errors.New("transmission data not loaded")

// ErrSessionComplete is returned when an action arrives after the session
// reached the sink state.
var ErrSessionComplete = errors.New("session is complete")

// ErrStaleResult marks a validation outcome whose ticket no longer matches
// the session's pending evaluation. The engine discards it silently; the
// sentinel exists so hosts can recognize the discard.
var ErrStaleResult = errors.New("stale validation result")

// ErrNodeNotVisited is returned when a rewind targets a node the session
// has never been through.
var ErrNodeNotVisited = errors.New("node not visited")

// StructuralError is a fatal graph defect: a dangling edge endpoint or a
// node missing data the router depends on. The session cannot start.
type StructuralError struct {
	NodeID string // offending node or edge endpoint
	Detail string
}

func (e *StructuralError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("structural error: %s", e.Detail)
	}
	return fmt.Sprintf("structural error at %q: %s", e.NodeID, e.Detail)
}

// DuplicateIDError reports a node id declared more than once.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate node id: %q", e.ID)
}

// InvalidTransitionError reports a navigation call that is not legal in the
// session's current phase (e.g. acknowledging while awaiting input).
type InvalidTransitionError struct {
	Phase  Phase
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %q not allowed in phase %q", e.Action, e.Phase)
}

// UnknownNodeError reports a reference to a node the graph does not contain.
type UnknownNodeError struct {
	ID string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node: %q", e.ID)
}
