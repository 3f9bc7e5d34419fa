// Package services holds the cellar business rules on top of the store and
// the assistant gateway: the signed-in user gate, the confirmation flows for
// destructive edits, the quantity policy, dashboard aggregates, search, and
// the sommelier conversation.
//
// This file centralizes service-level error values so callers can check them
// with errors.Is / errors.As. Translation into HTTP status codes happens in
// the handler layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNoUser is returned by every cellar operation invoked without a
	// resolved user. The store is never touched in that case.
	ErrNoUser = errors.New("no signed-in user")

	// ErrWineNotFound indicates the wine does not exist for this user.
	ErrWineNotFound = errors.New("wine not found")

	// ErrConfirmationRequired is returned by Delete until the user confirmed
	// the removal.
	ErrConfirmationRequired = errors.New("deletion requires confirmation")

	// ErrChoiceRequired is returned when a decrement would leave zero
	// bottles and the user has not yet chosen to keep or discard the record.
	ErrChoiceRequired = errors.New("keep-or-discard choice required")

	// ErrEmptyQuery is returned for blank chat or search queries.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrEmptyPatch is returned when an update would change nothing.
	ErrEmptyPatch = errors.New("nothing to update")
)

// Prompts shown to the user for the two confirmation flows.
const (
	PromptConfirmDelete = "Remove this vintage from your collection?"
	PromptZeroQuantity  = "Last bottle removed. Keep this record with 0 quantity?"
)

// WriteError reports a store write that failed after validation passed.
type WriteError struct {
	Op  string // create, update, delete
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cellar %s failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
